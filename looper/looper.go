// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package looper simulates a paused message loop: a queue of messages bound
// to a simulated thread, dispatched against a system clock shared by every
// looper in a test environment.
//
// Loopers are the externally-owned backend that [scheduler.Delegating]
// drives. Like schedulers, they are single-threaded and cooperative.
package looper

import (
	"fmt"
	"time"

	"github.com/joeycumines/go-looptime/scheduler"
	"github.com/joeycumines/logiface"
)

// ErrNoClock is returned by New when no clock is provided.
var ErrNoClock = fmt.Errorf("%w: looper: nil clock", scheduler.ErrInvalidArgument)

var _ scheduler.Looper = (*Looper)(nil)

// Looper is a simulated message loop. It must be initialized using New.
//
// A paused looper only dispatches messages when driven. An unpaused
// (background) looper also dispatches every due message as soon as it is
// posted, or when it is unpaused. Moving the shared clock from another
// looper does not wake it.
type Looper struct {
	// Prevent copying
	_ [0]func()

	clock  *scheduler.Clock
	logger *logiface.Logger[logiface.Event]
	name   string

	queue scheduler.TaskQueue

	main          bool
	defaultPaused bool
	paused        bool
	dispatching   bool
}

// New creates a looper dispatching against clock, which is typically shared
// with other loopers.
func New(clock *scheduler.Clock, opts ...Option) (*Looper, error) {
	if clock == nil {
		return nil, ErrNoClock
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	l := &Looper{
		clock:  clock,
		logger: cfg.logger,
		name:   cfg.name,
		main:   cfg.main,
	}
	switch {
	case cfg.main:
		l.defaultPaused = true
	case cfg.paused != nil:
		l.defaultPaused = *cfg.paused
	}
	l.paused = l.defaultPaused
	return l, nil
}

// Name returns the name configured via WithName.
func (l *Looper) Name() string {
	return l.name
}

// IsMain reports whether this is the main looper.
func (l *Looper) IsMain() bool {
	return l.main
}

// Clock returns the shared clock.
func (l *Looper) Clock() *scheduler.Clock {
	return l.clock
}

// Now returns the current time of the shared clock.
func (l *Looper) Now() time.Duration {
	return l.clock.Now()
}

// Post queues r for now+delay, then, if unpaused, dispatches everything due.
func (l *Looper) Post(r scheduler.Runnable, delay time.Duration) error {
	if r == nil {
		return fmt.Errorf("%w: nil runnable", scheduler.ErrInvalidArgument)
	}
	if delay < 0 {
		return fmt.Errorf("%w: negative delay %v", scheduler.ErrInvalidArgument, delay)
	}
	t := l.queue.Insert(r, l.clock.Now()+delay)
	l.logger.Trace().
		Str("looper", l.name).
		Dur("when", t.Due).
		Log("message enqueued")
	if !l.paused {
		l.Idle()
	}
	return nil
}

// PostAtFrontOfQueue queues r ahead of every message due now, then, if
// unpaused, dispatches everything due.
func (l *Looper) PostAtFrontOfQueue(r scheduler.Runnable) error {
	if r == nil {
		return fmt.Errorf("%w: nil runnable", scheduler.ErrInvalidArgument)
	}
	l.queue.InsertAtFront(r, l.clock.Now())
	l.logger.Trace().
		Str("looper", l.name).
		Log("message enqueued at front of queue")
	if !l.paused {
		l.Idle()
	}
	return nil
}

// RemoveMessages dequeues every pending message running r.
func (l *Looper) RemoveMessages(r scheduler.Runnable) bool {
	return l.queue.Remove(r)
}

// Pause stops the looper dispatching messages as they are posted.
func (l *Looper) Pause() {
	if !l.paused {
		l.paused = true
		l.logger.Debug().Str("looper", l.name).Log("paused")
	}
}

// Unpause resumes a background looper, dispatching everything due. The main
// looper cannot be unpaused.
func (l *Looper) Unpause() error {
	if l.main {
		return &scheduler.UnsupportedError{Op: "Unpause", Backend: "main looper"}
	}
	if l.paused {
		l.paused = false
		l.logger.Debug().Str("looper", l.name).Log("unpaused")
	}
	l.Idle()
	return nil
}

// IsPaused reports whether the looper is paused.
func (l *Looper) IsPaused() bool {
	return l.paused
}

// IsIdle reports whether no message is due now. Messages due in the future
// do not count.
func (l *Looper) IsIdle() bool {
	t, ok := l.queue.Peek()
	return !ok || t.Due > l.clock.Now()
}

// Len returns the number of pending messages.
func (l *Looper) Len() int {
	return l.queue.Len()
}

// Idle dispatches every message due now, including messages they post for
// now. Called from within a dispatched message it does nothing, the outer
// dispatch loop picks up the work.
func (l *Looper) Idle() {
	if l.dispatching {
		return
	}
	for {
		t, ok := l.queue.Peek()
		if !ok || t.Due > l.clock.Now() {
			return
		}
		l.queue.Pop()
		l.dispatch(t)
	}
}

// IdleFor steps the shared clock forward through a window of d, landing on
// the due time of each message inside it, and idling each time. It finishes
// on exactly now+d, idling once more. Called from within a dispatched message
// it only moves the clock.
func (l *Looper) IdleFor(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: negative duration %v", scheduler.ErrInvalidArgument, d)
	}
	end := l.clock.Now() + d
	if !l.dispatching {
		for {
			t, ok := l.queue.Peek()
			if !ok || t.Due > end {
				break
			}
			l.advanceTo(t.Due)
			l.Idle()
		}
	}
	l.advanceTo(end)
	l.Idle()
	l.logger.Debug().
		Str("looper", l.name).
		Dur("now", l.clock.Now()).
		Log("idled")
	return nil
}

// RunOneTask dispatches the next message, advancing the shared clock to it
// if needed. It returns false if no messages were pending.
func (l *Looper) RunOneTask() bool {
	t, ok := l.queue.Pop()
	if !ok {
		return false
	}
	l.advanceTo(t.Due)
	l.dispatch(t)
	return true
}

// RunToNextTask idles for as long as it takes to reach the next message.
func (l *Looper) RunToNextTask() bool {
	next, ok := l.queue.Peek()
	if !ok {
		return false
	}
	_ = l.IdleFor(max(next.Due-l.clock.Now(), 0))
	return true
}

// RunToEndOfTasks idles until the last pending message (including those
// posted along the way) has been dispatched.
func (l *Looper) RunToEndOfTasks() {
	if l.dispatching {
		return
	}
	for {
		last, ok := l.queue.Last()
		if !ok {
			return
		}
		_ = l.IdleFor(max(last.Due-l.clock.Now(), 0))
	}
}

// NextScheduledTaskTime returns the due time of the next message.
func (l *Looper) NextScheduledTaskTime() (time.Duration, bool) {
	t, ok := l.queue.Peek()
	if !ok {
		return 0, false
	}
	return t.Due, true
}

// LastScheduledTaskTime returns the due time of the last message.
func (l *Looper) LastScheduledTaskTime() (time.Duration, bool) {
	t, ok := l.queue.Last()
	if !ok {
		return 0, false
	}
	return t.Due, true
}

// Reset drops every pending message and restores the default run mode. The
// shared clock is reset by its owner.
func (l *Looper) Reset() {
	l.queue.Clear()
	l.paused = l.defaultPaused
	l.logger.Debug().
		Str("looper", l.name).
		Bool("paused", l.paused).
		Log("reset")
}

func (l *Looper) advanceTo(t time.Duration) {
	if t > l.clock.Now() {
		// cannot fail, t is ahead of the clock
		_ = l.clock.AdvanceTo(t)
	}
}

func (l *Looper) dispatch(t *scheduler.Task) {
	prev := l.dispatching
	l.dispatching = true
	defer func() { l.dispatching = prev }()
	l.logger.Trace().
		Str("looper", l.name).
		Dur("when", t.Due).
		Log("dispatching message")
	t.Runnable.Run()
}
