package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventSystemHandledStopsPropagation(t *testing.T) {
	es := NewEventSystem()
	first, second := &struct{ n int }{}, &struct{ n int }{}

	calls := 0
	es.Register(EVENT_CODE_APPLICATION_QUIT, first, func(EventContext) bool {
		calls++
		return true
	})
	es.Register(EVENT_CODE_APPLICATION_QUIT, second, func(EventContext) bool {
		calls++
		return false
	})

	assert.True(t, es.Fire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT}))
	assert.Equal(t, 1, calls)
}

func TestEventSystemRegistration(t *testing.T) {
	es := NewEventSystem()
	listener := &struct{}{}
	noop := func(EventContext) bool { return true }

	assert.True(t, es.Register(EVENT_CODE_RESIZED, listener, noop))
	assert.False(t, es.Register(EVENT_CODE_RESIZED, listener, noop), "duplicate listener")
	assert.True(t, es.Fire(EventContext{Type: EVENT_CODE_RESIZED, Data: &SystemEvent{WindowWidth: 1, WindowHeight: 1}}))

	assert.True(t, es.Unregister(EVENT_CODE_RESIZED, listener))
	assert.False(t, es.Unregister(EVENT_CODE_RESIZED, listener))
	assert.False(t, es.Fire(EventContext{Type: EVENT_CODE_RESIZED}))
	assert.False(t, es.Fire(EventContext{Type: EVENT_CODE_MOUSE_WHEEL}))
}
