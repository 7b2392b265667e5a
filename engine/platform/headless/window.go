package headless

import (
	"sync/atomic"

	"github.com/spaghettifunk/multiview/engine/core"
)

// Window is a fixed-size window that exists only in memory. It backs
// headless runs.
type Window struct {
	events *core.EventSystem
	width  uint32
	height uint32
	closed atomic.Bool
}

func New(events *core.EventSystem) *Window {
	return &Window{events: events}
}

func (w *Window) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	w.width = width
	w.height = height
	w.closed.Store(false)
	core.LogInfo("Virtual window '%s' created (%dx%d).", applicationName, width, height)
	return nil
}

func (w *Window) Shutdown() error {
	w.closed.Store(true)
	return nil
}

func (w *Window) PumpMessages() bool {
	return !w.closed.Load()
}

func (w *Window) FramebufferSize() (uint32, uint32) {
	return w.width, w.height
}

// Close makes the next PumpMessages report the window as closed.
func (w *Window) Close() {
	w.closed.Store(true)
}

// Resize changes the framebuffer size and fires the resize event the way a
// real window does.
func (w *Window) Resize(width, height uint32) {
	w.width = width
	w.height = height
	if w.events != nil {
		w.events.Fire(core.EventContext{
			Type: core.EVENT_CODE_RESIZED,
			Data: &core.SystemEvent{WindowWidth: width, WindowHeight: height},
		})
	}
}
