// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package scheduler

import (
	"time"

	"github.com/joeycumines/logiface"
)

// Scheduler is the owned-queue backend: it owns a [Clock] and a [TaskQueue],
// plus the paused flag. It must be initialized using New.
//
// Scheduler is not safe for concurrent use. Every method runs synchronously
// on the calling goroutine, and tasks run on whichever goroutine drives the
// scheduler. Callers posting from other goroutines must synchronize with the
// driver themselves.
type Scheduler struct {
	// Prevent copying
	_ [0]func()

	logger *logiface.Logger[logiface.Event]
	name   string

	clock Clock
	queue TaskQueue

	// deferred holds zero-delay tasks posted while a task was executing
	// inline, flushed in order once the outermost inline task returns
	deferred []*Task

	// inline is set only for the duration of runInline
	inline bool

	startTime     time.Duration
	defaultPaused bool
	paused        bool
	executing     bool
}

// New creates a scheduler, unpaused at time zero unless configured otherwise.
func New(opts ...Option) (*Scheduler, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		logger:        cfg.logger,
		name:          cfg.name,
		startTime:     cfg.startTime,
		defaultPaused: cfg.paused,
		paused:        cfg.paused,
	}
	s.clock.Reset(cfg.startTime)
	return s, nil
}

// Name returns the name configured via WithName.
func (s *Scheduler) Name() string {
	return s.name
}

// Now returns the current virtual time.
func (s *Scheduler) Now() time.Duration {
	return s.clock.Now()
}

// State returns the current run mode.
func (s *Scheduler) State() State {
	return stateOf(s.paused)
}

// Post runs r before returning if the scheduler is unpaused, otherwise it
// queues r for the current time.
//
// A post made by a task that is itself running inline is queued, then run
// once the outermost inline task returns. A post made by a task run from
// RunOneTask, RunToEndOfTasks or AdvanceTo is only queued.
func (s *Scheduler) Post(r Runnable) error {
	return s.PostDelayed(r, 0)
}

// PostDelayed queues r for now+delay. If the scheduler is unpaused and delay
// is zero, it behaves like Post.
func (s *Scheduler) PostDelayed(r Runnable, delay time.Duration) error {
	if r == nil {
		return invalidArgument("nil runnable")
	}
	if delay < 0 {
		return invalidArgument("negative delay %v", delay)
	}

	if s.paused || delay > 0 {
		s.enqueue(r, s.clock.Now()+delay)
		return nil
	}

	if s.executing {
		t := s.enqueue(r, s.clock.Now())
		// posts made by drained tasks keep their place in the queue
		if s.inline {
			s.deferred = append(s.deferred, t)
		}
		return nil
	}

	s.runInline(r)
	return nil
}

// PostAtFrontOfQueue queues r for the current time, ahead of every task
// already due then. It never runs r inline, even if unpaused.
func (s *Scheduler) PostAtFrontOfQueue(r Runnable) error {
	if r == nil {
		return invalidArgument("nil runnable")
	}
	t := s.queue.InsertAtFront(r, s.clock.Now())
	s.logger.Trace().
		Str("scheduler", s.name).
		Dur("due", t.Due).
		Int64("seq", t.Seq).
		Log("task posted at front of queue")
	return nil
}

// Remove dequeues every pending task running r. It never fails.
func (s *Scheduler) Remove(r Runnable) error {
	if s.queue.Remove(r) {
		s.logger.Trace().
			Str("scheduler", s.name).
			Log("task removed")
	}
	return nil
}

// Pause switches to queueing every post.
func (s *Scheduler) Pause() {
	if !s.paused {
		s.paused = true
		s.logger.Debug().Str("scheduler", s.name).Log("paused")
	}
}

// Unpause switches to running zero-delay posts inline. Tasks already queued
// are left queued. It never fails.
func (s *Scheduler) Unpause() error {
	if s.paused {
		s.paused = false
		s.logger.Debug().Str("scheduler", s.name).Log("unpaused")
	}
	return nil
}

// IsPaused reports whether the scheduler is paused.
func (s *Scheduler) IsPaused() bool {
	return s.paused
}

// RunOneTask pops the earliest task, advances the clock to its due time (if
// that is in the future), and runs it. It returns false if the queue was
// empty. A panicking task propagates, with the task already dequeued.
func (s *Scheduler) RunOneTask() bool {
	t, ok := s.queue.Pop()
	if !ok {
		return false
	}
	if t.Due > s.clock.Now() {
		s.clock.now = t.Due
	}
	s.logger.Trace().
		Str("scheduler", s.name).
		Dur("due", t.Due).
		Int64("seq", t.Seq).
		Log("running task")
	s.execute(t.Runnable)
	return true
}

// RunToNextTask is an alias of RunOneTask.
func (s *Scheduler) RunToNextTask() bool {
	return s.RunOneTask()
}

// RunToEndOfTasks runs tasks until the queue is empty, including any posted
// by the tasks it runs. A task that keeps re-posting itself never lets this
// return.
func (s *Scheduler) RunToEndOfTasks() {
	var n int
	for s.RunOneTask() {
		n++
	}
	s.logger.Debug().
		Str("scheduler", s.name).
		Int("tasks", n).
		Dur("now", s.clock.Now()).
		Log("ran to end of tasks")
}

// Idle runs every task due now, including tasks they post for now.
func (s *Scheduler) Idle() {
	_, _ = s.AdvanceTo(s.clock.Now())
}

// IdleFor is an alias of AdvanceBy.
func (s *Scheduler) IdleFor(d time.Duration) (bool, error) {
	return s.AdvanceBy(d)
}

// AdvanceBy is AdvanceTo(Now()+d), failing with ErrInvalidArgument if d is
// negative.
func (s *Scheduler) AdvanceBy(d time.Duration) (bool, error) {
	if d < 0 {
		return false, invalidArgument("negative duration %v", d)
	}
	return s.AdvanceTo(s.clock.Now() + d)
}

// AdvanceTo runs, in (due, sequence) order, every task due at or before t,
// including tasks posted along the way, then sets the clock to t. Moving the
// clock backwards fails with ErrInvalidArgument. It reports whether any task
// ran.
func (s *Scheduler) AdvanceTo(t time.Duration) (bool, error) {
	if t < s.clock.Now() {
		return false, invalidArgument("cannot advance from %v back to %v", s.clock.Now(), t)
	}

	var ran bool
	for {
		next, ok := s.queue.Peek()
		if !ok || next.Due > t {
			break
		}
		s.RunOneTask()
		ran = true
	}

	// a task driving this scheduler may already have moved past t
	if t > s.clock.Now() {
		s.clock.now = t
	}

	s.logger.Debug().
		Str("scheduler", s.name).
		Dur("now", s.clock.Now()).
		Bool("ran", ran).
		Log("clock advanced")

	return ran, nil
}

// Size returns the number of pending tasks. It never fails.
func (s *Scheduler) Size() (int, error) {
	return s.queue.Len(), nil
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	return s.queue.Len()
}

// AreAnyRunnable reports whether any task is queued.
func (s *Scheduler) AreAnyRunnable() bool {
	return !s.queue.IsEmpty()
}

// NextScheduledTaskTime returns the due time of the task that would run next.
func (s *Scheduler) NextScheduledTaskTime() (time.Duration, bool) {
	t, ok := s.queue.Peek()
	if !ok {
		return 0, false
	}
	return t.Due, true
}

// LastScheduledTaskTime returns the due time of the task that would run last.
func (s *Scheduler) LastScheduledTaskTime() (time.Duration, bool) {
	t, ok := s.queue.Last()
	if !ok {
		return 0, false
	}
	return t.Due, true
}

// Reset clears the queue, rewinds the clock to its start time, and restores
// the default run mode. It never fails.
func (s *Scheduler) Reset() error {
	s.queue.Clear()
	s.dropDeferred()
	s.clock.Reset(s.startTime)
	s.paused = s.defaultPaused
	s.logger.Debug().
		Str("scheduler", s.name).
		Stringer("state", s.State()).
		Log("reset")
	return nil
}

// Capabilities reports that every operation is supported.
func (s *Scheduler) Capabilities() Capability {
	return capAll
}

func (s *Scheduler) enqueue(r Runnable, due time.Duration) *Task {
	t := s.queue.Insert(r, due)
	s.logger.Trace().
		Str("scheduler", s.name).
		Dur("due", t.Due).
		Int64("seq", t.Seq).
		Log("task posted")
	return t
}

// runInline runs r, then every task deferred while it ran. It must only be
// called when no task is executing.
func (s *Scheduler) runInline(r Runnable) {
	s.inline = true
	defer func() {
		s.inline = false
		s.dropDeferred()
	}()

	s.logger.Trace().
		Str("scheduler", s.name).
		Log("running task inline")
	s.execute(r)

	for len(s.deferred) != 0 && !s.paused {
		t := s.deferred[0]
		s.deferred[0] = nil
		s.deferred = s.deferred[1:]
		// removed, reset, or already run by a drain
		if !s.queue.Delete(t) {
			continue
		}
		s.execute(t.Runnable)
	}
}

func (s *Scheduler) execute(r Runnable) {
	prev := s.executing
	s.executing = true
	defer func() { s.executing = prev }()
	r.Run()
}

func (s *Scheduler) dropDeferred() {
	clear(s.deferred)
	s.deferred = s.deferred[:0]
}
