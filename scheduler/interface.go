// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package scheduler

import (
	"strings"
	"time"
)

// Interface is the contract shared by the owned [Scheduler] and the
// [Delegating] adapter. Operations a backend cannot serve fail with
// [ErrUnsupportedOperation], use [Interface.Capabilities] to check up front.
//
// Implementations are driven by a single caller at a time, see the package
// documentation.
type Interface interface {
	// Now returns the current virtual time.
	Now() time.Duration

	// Post runs r inline if unpaused, otherwise queues it for now.
	Post(r Runnable) error

	// PostDelayed queues r for now+delay, or behaves like Post if unpaused
	// and delay is zero. A negative delay fails with ErrInvalidArgument.
	PostDelayed(r Runnable, delay time.Duration) error

	// PostAtFrontOfQueue always queues r for now, ahead of every other task
	// due now.
	PostAtFrontOfQueue(r Runnable) error

	// Remove dequeues every pending task running r. Removing a task that
	// already ran, or was never queued, is a no-op.
	Remove(r Runnable) error

	Pause()
	Unpause() error
	IsPaused() bool

	// RunOneTask runs the earliest queued task, even if it is due in the
	// future, advancing the clock to it. It returns false if nothing was
	// queued.
	RunOneTask() bool

	// RunToNextTask runs exactly one task, landing the clock on its due time.
	RunToNextTask() bool

	// RunToEndOfTasks runs tasks until none remain, including tasks posted
	// along the way.
	RunToEndOfTasks()

	// Idle runs every task due now.
	Idle()

	// AdvanceBy is AdvanceTo(Now()+d), failing for negative d.
	AdvanceBy(d time.Duration) (bool, error)

	// AdvanceTo runs every task due at or before t, in order, then sets the
	// clock to exactly t. It reports whether any task ran.
	AdvanceTo(t time.Duration) (bool, error)

	// Size returns the number of pending tasks.
	Size() (int, error)

	// AreAnyRunnable reports whether there is pending work.
	AreAnyRunnable() bool

	NextScheduledTaskTime() (time.Duration, bool)
	LastScheduledTaskTime() (time.Duration, bool)

	// Reset clears pending work, rewinds the clock and restores the default
	// run mode, keeping the instance's identity.
	Reset() error

	Capabilities() Capability
}

// Capability is a bitmask of optional operations a backend supports.
type Capability uint8

const (
	// CapPost covers Post, PostDelayed and PostAtFrontOfQueue.
	CapPost Capability = 1 << iota
	// CapRemove covers Remove.
	CapRemove
	// CapIntrospect covers Size.
	CapIntrospect
	// CapReset covers Reset.
	CapReset

	capNone Capability = 0
	capAll             = CapPost | CapRemove | CapIntrospect | CapReset
)

// Has reports whether every capability in c is present.
func (x Capability) Has(c Capability) bool {
	return x&c == c
}

// String lists the capabilities, e.g. "post|reset".
func (x Capability) String() string {
	if x == capNone {
		return "none"
	}
	var parts []string
	for _, c := range [...]struct {
		c    Capability
		name string
	}{
		{CapPost, "post"},
		{CapRemove, "remove"},
		{CapIntrospect, "introspect"},
		{CapReset, "reset"},
	} {
		if x.Has(c.c) {
			parts = append(parts, c.name)
		}
	}
	return strings.Join(parts, "|")
}

var (
	_ Interface = (*Scheduler)(nil)
	_ Interface = (*Delegating)(nil)
)
