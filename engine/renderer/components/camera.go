package components

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/math"
)

/**
 * @brief A camera orbiting a target on a sphere. Theta is the angle around
 * the y axis, Phi the angle down from +y and Radius the distance from the
 * origin.
 */
type OrbitCamera struct {
	Theta  float32
	Phi    float32
	Radius float32
	/** @brief The point the camera looks at. */
	Target math.Vec3

	config config.CameraConfig
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	isDirty    bool
	viewMatrix math.Mat4
}

func NewOrbitCamera(cfg config.CameraConfig) *OrbitCamera {
	c := &OrbitCamera{config: cfg}
	c.Reset()
	return c
}

// Reset restores the configured angles and radius and recentres the target.
func (c *OrbitCamera) Reset() {
	c.Theta = c.config.Theta
	c.Phi = c.config.Phi
	c.Radius = c.config.Radius
	c.Target = math.NewVec3Zero()
	c.isDirty = true
}

/**
 * @brief Rotates the camera by mouse travel.
 * @param dx Horizontal travel in pixels; changes theta.
 * @param dy Vertical travel in pixels; changes phi, which stays away from the poles.
 */
func (c *OrbitCamera) Orbit(dx, dy float32) {
	c.Theta += math.DegToRad(c.config.OrbitSensitivity * dx)
	c.Phi += math.DegToRad(c.config.OrbitSensitivity * dy)
	c.Phi = math.Clamp(c.Phi, c.config.PhiMargin, math.K_PI-c.config.PhiMargin)
	c.isDirty = true
}

/**
 * @brief Moves the camera in or out by mouse travel. Right and up both
 * move it away.
 */
func (c *OrbitCamera) Zoom(dx, dy float32) {
	c.Radius += c.config.ZoomSensitivity*dx - c.config.ZoomSensitivity*dy
	c.Radius = math.Clamp(c.Radius, c.config.MinRadius, c.config.MaxRadius)
	c.isDirty = true
}

// MoveTarget nudges the look-at point.
func (c *OrbitCamera) MoveTarget(delta math.Vec3) {
	if delta == (math.Vec3{}) {
		return
	}
	c.Target = c.Target.Add(delta)
	c.isDirty = true
}

// TargetStep is the configured distance of one target nudge.
func (c *OrbitCamera) TargetStep() float32 {
	return c.config.TargetStep
}

/**
 * @brief The camera position from its spherical coordinates. The sphere is
 * centred on the origin, not on the target.
 */
func (c *OrbitCamera) Position() math.Vec3 {
	sinPhi, cosPhi := math32.Sin(c.Phi), math32.Cos(c.Phi)
	return math.NewVec3(
		c.Radius*sinPhi*math32.Cos(c.Theta),
		c.Radius*cosPhi,
		c.Radius*sinPhi*math32.Sin(c.Theta),
	)
}

/**
 * @brief Obtains the view matrix of the camera. The matrix is recalculated
 * only if anything changed since the last call.
 */
func (c *OrbitCamera) GetView() math.Mat4 {
	if c.isDirty {
		c.viewMatrix = math.NewMat4LookAtLH(c.Position(), c.Target, math.NewVec3Up())
		c.isDirty = false
	}
	return c.viewMatrix
}
