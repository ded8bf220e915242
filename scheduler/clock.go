// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package scheduler

import (
	"time"
)

// Clock is a monotonic virtual clock. Virtual time is a [time.Duration],
// measured from the clock's zero value, and only moves when advanced
// explicitly. The zero value is ready to use.
//
// A Clock may be shared, e.g. by every looper of an environment.
type Clock struct {
	now time.Duration
}

// NewClock returns a clock starting at the given time.
func NewClock(start time.Duration) *Clock {
	return &Clock{now: start}
}

// Now returns the current virtual time.
func (c *Clock) Now() time.Duration {
	return c.now
}

// AdvanceTo moves the clock to t, failing with [ErrInvalidArgument] if t is
// before the current time.
func (c *Clock) AdvanceTo(t time.Duration) error {
	if t < c.now {
		return invalidArgument("cannot move clock from %v back to %v", c.now, t)
	}
	c.now = t
	return nil
}

// AdvanceBy moves the clock forward by delta, failing with
// [ErrInvalidArgument] if delta is negative.
func (c *Clock) AdvanceBy(delta time.Duration) error {
	if delta < 0 {
		return invalidArgument("negative clock delta %v", delta)
	}
	return c.AdvanceTo(c.now + delta)
}

// Reset moves the clock to t unconditionally. It exists for test environment
// teardown, where a fresh timeline begins.
func (c *Clock) Reset(t time.Duration) {
	c.now = t
}
