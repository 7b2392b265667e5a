package core

import "github.com/spaghettifunk/multiview/engine/containers"

const AVG_COUNT = 30

// FrameMetrics keeps a rolling frame-time average and a frames-per-second counter.
type FrameMetrics struct {
	msTimes            *containers.RingQueue[float64]
	msAVG              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
	totalFrames        uint64
}

func NewFrameMetrics() *FrameMetrics {
	return &FrameMetrics{
		msTimes: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

// Update records one frame that took frameElapsedTime seconds.
func (fm *FrameMetrics) Update(frameElapsedTime float64) {
	// Average over the last AVG_COUNT frames.
	frameMS := frameElapsedTime * 1000.0
	fm.msTimes.Push(frameMS)
	sum := 0.0
	fm.msTimes.Each(func(ms float64) { sum += ms })
	fm.msAVG = sum / float64(fm.msTimes.Len())

	// Count this frame before checking the one second window.
	fm.frames++
	fm.totalFrames++

	fm.accumulatedFrameMS += frameMS
	if fm.accumulatedFrameMS > 1000 {
		fm.fps = float64(fm.frames)
		fm.accumulatedFrameMS -= 1000
		fm.frames = 0
	}
}

func (fm *FrameMetrics) FPS() float64 {
	return fm.fps
}

// FrameTime is the average frame time in milliseconds.
func (fm *FrameMetrics) FrameTime() float64 {
	return fm.msAVG
}

func (fm *FrameMetrics) TotalFrames() uint64 {
	return fm.totalFrames
}
