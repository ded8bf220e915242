package handler_test

import (
	"testing"
	"time"

	"github.com/joeycumines/go-looptime/handler"
	"github.com/joeycumines/go-looptime/looper"
	"github.com/joeycumines/go-looptime/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := handler.New(nil, scheduler.MainThread)
	assert.ErrorIs(t, err, scheduler.ErrInvalidArgument)

	h, err := handler.New(scheduler.NewRegistry(), "worker")
	require.NoError(t, err)
	assert.Equal(t, scheduler.ThreadID("worker"), h.Thread())

	// not registered yet
	_, err = h.Scheduler()
	assert.ErrorIs(t, err, scheduler.ErrThreadNotRegistered)
	assert.ErrorIs(t, h.Post(scheduler.Func(func() {})), scheduler.ErrThreadNotRegistered)
}

func TestHandler_ownedScheduler(t *testing.T) {
	registry := scheduler.NewRegistry()
	s, err := scheduler.New(scheduler.WithPaused(true))
	require.NoError(t, err)
	require.NoError(t, registry.Register(scheduler.MainThread, s))

	h, err := handler.New(registry, scheduler.MainThread)
	require.NoError(t, err)

	var log []string
	require.NoError(t, h.Post(scheduler.Func(func() { log = append(log, "A") })))
	require.NoError(t, h.PostDelayed(scheduler.Func(func() { log = append(log, "B") }), time.Second))
	require.NoError(t, h.PostAtFrontOfQueue(scheduler.Func(func() { log = append(log, "F") })))
	cancelled, err := h.PostDelayedFunc(func() { log = append(log, "cancelled") }, time.Millisecond)
	require.NoError(t, err)
	_, err = h.PostFunc(func() { log = append(log, "C") })
	require.NoError(t, err)

	require.NoError(t, h.RemoveCallbacks(cancelled))
	s.RunToEndOfTasks()
	assert.Equal(t, []string{"F", "A", "C", "B"}, log)

	_, err = h.PostFunc(nil)
	assert.ErrorIs(t, err, scheduler.ErrInvalidArgument)
}

func TestHandler_resolvesOnEveryCall(t *testing.T) {
	registry := scheduler.NewRegistry()
	h, err := handler.New(registry, "worker")
	require.NoError(t, err)

	first, err := scheduler.New(scheduler.WithPaused(true))
	require.NoError(t, err)
	require.NoError(t, registry.Register("worker", first))
	_, err = h.PostFunc(func() {})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Len())

	registry.Unregister("worker")
	second, err := scheduler.New(scheduler.WithPaused(true))
	require.NoError(t, err)
	require.NoError(t, registry.Register("worker", second))
	_, err = h.PostFunc(func() {})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 1, second.Len())
}

func TestHandler_delegatingRemovesLooperMessages(t *testing.T) {
	registry := scheduler.NewRegistry()
	l, err := looper.New(scheduler.NewClock(0), looper.WithMain(true))
	require.NoError(t, err)
	d, err := scheduler.NewDelegating(l)
	require.NoError(t, err)
	require.NoError(t, registry.Register(scheduler.MainThread, d))

	h, err := handler.New(registry, scheduler.MainThread)
	require.NoError(t, err)

	var ran bool
	r, err := h.PostDelayedFunc(func() { ran = true }, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len())

	require.NoError(t, h.RemoveCallbacks(r))
	assert.Equal(t, 0, l.Len())
	d.RunToEndOfTasks()
	assert.False(t, ran)
}

func TestHandler_delegatingDriveOnlyRejectsPostsAndRemoval(t *testing.T) {
	registry := scheduler.NewRegistry()
	l, err := looper.New(scheduler.NewClock(0), looper.WithMain(true))
	require.NoError(t, err)
	d, err := scheduler.NewDelegating(l, scheduler.WithDelegateMode(scheduler.DelegateDriveOnly))
	require.NoError(t, err)
	require.NoError(t, registry.Register(scheduler.MainThread, d))

	h, err := handler.New(registry, scheduler.MainThread)
	require.NoError(t, err)
	_, err = h.PostFunc(func() {})
	assert.ErrorIs(t, err, scheduler.ErrUnsupportedOperation)
	assert.Equal(t, 0, l.Len())

	r := scheduler.Func(func() {})
	require.NoError(t, l.Post(r, time.Second))
	assert.ErrorIs(t, h.RemoveCallbacks(r), scheduler.ErrUnsupportedOperation)
	assert.Equal(t, 1, l.Len())
}
