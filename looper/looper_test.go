package looper

import (
	"testing"
	"time"

	"github.com/joeycumines/go-looptime/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	clock *scheduler.Clock
	log   []string
	at    []time.Duration
}

func (x *recorder) task(name string) scheduler.Runnable {
	return scheduler.Func(func() {
		x.log = append(x.log, name)
		x.at = append(x.at, x.clock.Now())
	})
}

func newMain(t *testing.T) (*Looper, *recorder) {
	t.Helper()
	clock := scheduler.NewClock(0)
	l, err := New(clock, WithMain(true), WithName("main"))
	require.NoError(t, err)
	return l, &recorder{clock: clock}
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoClock)
	assert.ErrorIs(t, err, scheduler.ErrInvalidArgument)

	clock := scheduler.NewClock(0)
	main, err := New(clock, WithMain(true), WithPaused(false))
	require.NoError(t, err)
	assert.True(t, main.IsMain())
	assert.True(t, main.IsPaused())
	assert.Same(t, clock, main.Clock())

	bg, err := New(clock, nil)
	require.NoError(t, err)
	assert.False(t, bg.IsMain())
	assert.False(t, bg.IsPaused())

	pausedBg, err := New(clock, WithPaused(true))
	require.NoError(t, err)
	assert.True(t, pausedBg.IsPaused())
}

func TestLooper_Post_validation(t *testing.T) {
	l, _ := newMain(t)
	assert.ErrorIs(t, l.Post(nil, 0), scheduler.ErrInvalidArgument)
	assert.ErrorIs(t, l.Post(scheduler.Func(func() {}), -1), scheduler.ErrInvalidArgument)
	assert.ErrorIs(t, l.PostAtFrontOfQueue(nil), scheduler.ErrInvalidArgument)
	assert.ErrorIs(t, l.IdleFor(-1), scheduler.ErrInvalidArgument)
	assert.Equal(t, 0, l.Len())
}

func TestLooper_IsIdle(t *testing.T) {
	l, rec := newMain(t)
	assert.True(t, l.IsIdle())

	require.NoError(t, l.Post(rec.task("delayed"), 100))
	assert.True(t, l.IsIdle())

	require.NoError(t, l.Post(rec.task("now"), 0))
	assert.False(t, l.IsIdle())

	l.Idle()
	assert.True(t, l.IsIdle())
	assert.Equal(t, []string{"now"}, rec.log)
}

func TestLooper_IdleFor_stepsThroughEachMessage(t *testing.T) {
	l, rec := newMain(t)
	require.NoError(t, l.Post(rec.task("A"), 3))
	require.NoError(t, l.Post(rec.task("B"), 7))
	require.NoError(t, l.Post(rec.task("C"), 12))

	require.NoError(t, l.IdleFor(10))
	assert.Equal(t, []string{"A", "B"}, rec.log)
	assert.Equal(t, []time.Duration{3, 7}, rec.at)
	assert.Equal(t, time.Duration(10), l.Now())
	assert.Equal(t, 1, l.Len())
}

func TestLooper_IdleFor_runsMessagesPostedInWindow(t *testing.T) {
	l, rec := newMain(t)
	require.NoError(t, l.Post(scheduler.Func(func() {
		rec.log = append(rec.log, "first")
		_ = l.Post(rec.task("second"), 4)
	}), 1))

	require.NoError(t, l.IdleFor(5))
	assert.Equal(t, []string{"first", "second"}, rec.log)
	assert.Equal(t, []time.Duration{5}, rec.at)
}

func TestLooper_RunOneTask(t *testing.T) {
	l, rec := newMain(t)
	assert.False(t, l.RunOneTask())

	require.NoError(t, l.Post(rec.task("A"), 50))
	require.True(t, l.RunOneTask())
	assert.Equal(t, time.Duration(50), l.Now())
	assert.Equal(t, []time.Duration{50}, rec.at)
}

func TestLooper_RunToNextTask(t *testing.T) {
	l, rec := newMain(t)
	require.NoError(t, l.Post(rec.task("A"), 5))
	require.NoError(t, l.Post(rec.task("B"), 5))
	require.NoError(t, l.Post(rec.task("C"), 9))

	require.True(t, l.RunToNextTask())
	assert.Equal(t, []string{"A", "B"}, rec.log)
	assert.Equal(t, time.Duration(5), l.Now())
}

func TestLooper_RunToEndOfTasks(t *testing.T) {
	l, rec := newMain(t)
	require.NoError(t, l.Post(scheduler.Func(func() {
		rec.log = append(rec.log, "A")
		_ = l.Post(rec.task("late"), 100)
	}), 0))
	require.NoError(t, l.Post(rec.task("B"), 10))
	require.NoError(t, l.Post(rec.task("C"), 5))

	l.RunToEndOfTasks()
	assert.Equal(t, []string{"A", "C", "B", "late"}, rec.log)
	assert.Equal(t, time.Duration(100), l.Now())
	_, ok := l.LastScheduledTaskTime()
	assert.False(t, ok)
}

func TestLooper_PostAtFrontOfQueue(t *testing.T) {
	l, rec := newMain(t)
	require.NoError(t, l.Post(rec.task("A"), 0))
	require.NoError(t, l.PostAtFrontOfQueue(rec.task("F")))
	l.Idle()
	assert.Equal(t, []string{"F", "A"}, rec.log)
}

func TestLooper_background(t *testing.T) {
	clock := scheduler.NewClock(0)
	rec := &recorder{clock: clock}
	bg, err := New(clock, WithName("bg"))
	require.NoError(t, err)

	require.NoError(t, bg.Post(rec.task("now"), 0))
	assert.Equal(t, []string{"now"}, rec.log)

	require.NoError(t, bg.Post(rec.task("later"), 5))
	assert.Equal(t, []string{"now"}, rec.log)

	// moving the shared clock elsewhere does not wake it
	require.NoError(t, clock.AdvanceBy(5))
	assert.Equal(t, []string{"now"}, rec.log)
	assert.False(t, bg.IsIdle())

	bg.Pause()
	require.NoError(t, bg.Post(rec.task("paused"), 0))
	assert.Equal(t, []string{"now"}, rec.log)

	require.NoError(t, bg.Unpause())
	assert.Equal(t, []string{"now", "later", "paused"}, rec.log)
}

func TestLooper_mainCannotUnpause(t *testing.T) {
	l, _ := newMain(t)
	err := l.Unpause()
	var ue *scheduler.UnsupportedError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Unpause", ue.Op)
	assert.True(t, l.IsPaused())
}

func TestLooper_reentrantIdle(t *testing.T) {
	clock := scheduler.NewClock(0)
	rec := &recorder{clock: clock}
	bg, err := New(clock)
	require.NoError(t, err)

	require.NoError(t, bg.Post(scheduler.Func(func() {
		rec.log = append(rec.log, "outer:start")
		_ = bg.Post(rec.task("inner"), 0)
		rec.log = append(rec.log, "outer:end")
	}), 0))
	assert.Equal(t, []string{"outer:start", "outer:end", "inner"}, rec.log)
}

func TestLooper_RemoveMessages(t *testing.T) {
	l, rec := newMain(t)
	a := rec.task("A")
	require.NoError(t, l.Post(a, 1))
	require.NoError(t, l.Post(rec.task("B"), 2))
	assert.True(t, l.RemoveMessages(a))
	assert.False(t, l.RemoveMessages(a))
	l.RunToEndOfTasks()
	assert.Equal(t, []string{"B"}, rec.log)
}

func TestLooper_Reset(t *testing.T) {
	clock := scheduler.NewClock(0)
	bg, err := New(clock)
	require.NoError(t, err)
	bg.Pause()
	require.NoError(t, bg.Post(scheduler.Func(func() {}), 3))
	bg.Reset()
	assert.False(t, bg.IsPaused())
	assert.Equal(t, 0, bg.Len())

	main, err := New(clock, WithMain(true))
	require.NoError(t, err)
	main.Reset()
	assert.True(t, main.IsPaused())
}
