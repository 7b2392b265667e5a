package components

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

/**
 * @brief One view/projection pair and the part of the window it is drawn to.
 */
type ViewSetup struct {
	Name string
	/** @brief The constant buffer slot holding this setup's matrices. */
	Slot       uint32
	View       math.Mat4
	Projection math.Mat4
	Viewport   metadata.Viewport
	/** @brief The view comes from the orbit camera every frame and View is unused. */
	FollowsCamera bool
}

// ViewMatrix returns the camera view for camera-following setups and the
// fixed view otherwise.
func (vs *ViewSetup) ViewMatrix(cameraView math.Mat4) math.Mat4 {
	if vs.FollowsCamera {
		return cameraView
	}
	return vs.View
}

/**
 * @brief Every projection the editor draws with, for one window size.
 */
type ViewLayout struct {
	Width  uint32
	Height uint32
	/** @brief The full window. */
	Single metadata.Viewport
	/** @brief The four quad-view setups, indexed by slot. */
	Quad [config.QuadSlots]ViewSetup
	/** @brief The overview setups of the indicator lines, drawn full window. */
	Indicators []ViewSetup
}

/**
 * @brief Builds the layout for a window of width x height pixels.
 * @param projection Clip planes, field of view and orthographic divisors.
 * @param viewports One entry per quad slot (already validated).
 * @param indicators The overview views.
 */
func NewViewLayout(width, height uint32, projection config.ProjectionConfig, viewports []config.ViewportConfig, indicators []config.IndicatorConfig) *ViewLayout {
	l := &ViewLayout{
		Width:  width,
		Height: height,
		Single: metadata.Viewport{
			Width:    float32(width),
			Height:   float32(height),
			MaxDepth: 1,
		},
	}

	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	perspective := math.NewMat4PerspectiveLH(math.DegToRad(projection.FOVDegrees), aspect, projection.Near, projection.Far)
	quadOrtho := math.NewMat4OrthographicLH(
		orthoExtent(width, projection.QuadDivisor, projection.OrthoPixelsPerUnit),
		orthoExtent(height, projection.QuadDivisor, projection.OrthoPixelsPerUnit),
		projection.Near, projection.Far)

	for _, vp := range viewports {
		if vp.Slot >= config.QuadSlots {
			continue
		}
		setup := ViewSetup{
			Name:          vp.Name,
			Slot:          vp.Slot,
			FollowsCamera: vp.FollowCamera,
			Viewport:      rectToViewport(vp.Rect, width, height),
		}
		if vp.Projection == config.ProjectionPerspective {
			setup.Projection = perspective
		} else {
			setup.Projection = quadOrtho
		}
		if vp.FollowCamera {
			setup.View = math.NewMat4Identity()
		} else {
			setup.View = lookAtOrigin(vp.Eye, vp.Up)
		}
		l.Quad[vp.Slot] = setup
	}

	overview := math.NewMat4OrthographicLH(
		orthoExtent(width, projection.OverviewDivisor, projection.OrthoPixelsPerUnit),
		orthoExtent(height, projection.OverviewDivisor, projection.OrthoPixelsPerUnit),
		projection.Near, projection.Far)
	for _, ind := range indicators {
		l.Indicators = append(l.Indicators, ViewSetup{
			Name:       ind.Name,
			Slot:       0,
			View:       lookAtOrigin(ind.Eye, ind.Up),
			Projection: overview,
			Viewport:   l.Single,
		})
	}
	return l
}

// orthoExtent is size/divisor/pixelsPerUnit in integer arithmetic. Windows too
// small for one unit still get an extent of 1 so the projection stays finite.
func orthoExtent(size, divisor, pixelsPerUnit uint32) float32 {
	if divisor == 0 || pixelsPerUnit == 0 {
		return 1
	}
	extent := size / divisor / pixelsPerUnit
	if extent == 0 {
		return 1
	}
	return float32(extent)
}

func rectToViewport(rect [4]float32, width, height uint32) metadata.Viewport {
	w, h := float32(width), float32(height)
	return metadata.Viewport{
		X:        math32.Floor(rect[0] * w),
		Y:        math32.Floor(rect[1] * h),
		Width:    math32.Floor(rect[2] * w),
		Height:   math32.Floor(rect[3] * h),
		MinDepth: 0,
		MaxDepth: 1,
	}
}

func lookAtOrigin(eye, up [3]float32) math.Mat4 {
	return math.NewMat4LookAtLH(
		math.NewVec3(eye[0], eye[1], eye[2]),
		math.NewVec3Zero(),
		math.NewVec3(up[0], up[1], up[2]))
}
