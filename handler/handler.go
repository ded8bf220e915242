// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package handler provides the producer side of a simulated thread: code
// under test posts work through a Handler, which routes it to whichever
// scheduler is registered for the thread.
package handler

import (
	"fmt"
	"time"

	"github.com/joeycumines/go-looptime/scheduler"
)

// Handler posts work to the scheduler registered for a thread.
type Handler struct {
	registry *scheduler.Registry
	thread   scheduler.ThreadID
}

// New binds a handler to thread. The scheduler is resolved on every call, so
// the thread need not be registered yet.
func New(registry *scheduler.Registry, thread scheduler.ThreadID) (*Handler, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: nil registry", scheduler.ErrInvalidArgument)
	}
	return &Handler{registry: registry, thread: thread}, nil
}

// Thread returns the bound thread identity.
func (x *Handler) Thread() scheduler.ThreadID {
	return x.thread
}

// Scheduler returns the scheduler currently registered for the thread.
func (x *Handler) Scheduler() (scheduler.Interface, error) {
	return x.registry.Get(x.thread)
}

func (x *Handler) Post(r scheduler.Runnable) error {
	s, err := x.Scheduler()
	if err != nil {
		return err
	}
	return s.Post(r)
}

func (x *Handler) PostDelayed(r scheduler.Runnable, delay time.Duration) error {
	s, err := x.Scheduler()
	if err != nil {
		return err
	}
	return s.PostDelayed(r, delay)
}

func (x *Handler) PostAtFrontOfQueue(r scheduler.Runnable) error {
	s, err := x.Scheduler()
	if err != nil {
		return err
	}
	return s.PostAtFrontOfQueue(r)
}

// PostFunc posts fn, returning the Runnable it was wrapped in, for use with
// RemoveCallbacks.
func (x *Handler) PostFunc(fn func()) (scheduler.Runnable, error) {
	return x.PostDelayedFunc(fn, 0)
}

// PostDelayedFunc is the PostDelayed equivalent of PostFunc.
func (x *Handler) PostDelayedFunc(fn func(), delay time.Duration) (scheduler.Runnable, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil func", scheduler.ErrInvalidArgument)
	}
	r := scheduler.Func(fn)
	if err := x.PostDelayed(r, delay); err != nil {
		return nil, err
	}
	return r, nil
}

// RemoveCallbacks drops every pending post of r. It fails if the registered
// scheduler lacks scheduler.CapRemove.
func (x *Handler) RemoveCallbacks(r scheduler.Runnable) error {
	s, err := x.Scheduler()
	if err != nil {
		return err
	}
	return s.Remove(r)
}
