// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package environment wires up the simulated threads of a test: it owns the
// scheduler registry, creates a scheduler (or looper) per thread, resets
// them between tests, and tears them down.
package environment

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/go-looptime/handler"
	"github.com/joeycumines/go-looptime/looper"
	"github.com/joeycumines/go-looptime/scheduler"
	"github.com/joeycumines/logiface"
)

// ErrClosed is returned by every operation on a closed Environment.
var ErrClosed = errors.New("environment: closed")

// Environment owns the [scheduler.Registry] for a test. It must be
// initialized using New or Setup.
type Environment struct {
	mu       sync.Mutex
	registry *scheduler.Registry
	logger   *logiface.Logger[logiface.Event]
	// clock is shared by every looper, nil in ModeLegacy
	clock   *scheduler.Clock
	loopers map[scheduler.ThreadID]*looper.Looper
	cfg     environmentOptions
	closed  bool
}

// New creates an environment, with the main thread registered.
func New(opts ...Option) (*Environment, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	e := &Environment{
		registry: scheduler.NewRegistry(),
		logger:   cfg.logger,
		cfg:      *cfg,
	}
	if cfg.mode == ModePaused {
		e.clock = scheduler.NewClock(cfg.startTime)
		e.loopers = make(map[scheduler.ThreadID]*looper.Looper)
	}
	if _, err := e.newThread(scheduler.MainThread); err != nil {
		return nil, err
	}
	e.logger.Debug().
		Stringer("mode", cfg.mode).
		Dur("start", cfg.startTime).
		Log("environment created")
	return e, nil
}

// Setup is New for tests, closing the environment on cleanup.
func Setup(tb testing.TB, opts ...Option) *Environment {
	tb.Helper()
	e, err := New(opts...)
	if err != nil {
		tb.Fatalf("environment: setup failed: %v", err)
	}
	tb.Cleanup(func() {
		if err := e.Close(); err != nil && !errors.Is(err, ErrClosed) {
			tb.Errorf("environment: close failed: %v", err)
		}
	})
	return e
}

// Mode returns the backend mode.
func (e *Environment) Mode() Mode {
	return e.cfg.mode
}

// Registry returns the registry. It is emptied by Close.
func (e *Environment) Registry() *scheduler.Registry {
	return e.registry
}

// Main returns the scheduler of the main thread.
func (e *Environment) Main() (scheduler.Interface, error) {
	return e.Scheduler(scheduler.MainThread)
}

// Scheduler returns the scheduler registered for id.
func (e *Environment) Scheduler(id scheduler.ThreadID) (scheduler.Interface, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	return e.registry.Get(id)
}

// Looper returns the looper of id. It is only available in ModePaused.
func (e *Environment) Looper(id scheduler.ThreadID) (*looper.Looper, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	if e.cfg.mode != ModePaused {
		return nil, &scheduler.UnsupportedError{Op: "Looper", Backend: "environment (" + e.cfg.mode.String() + ")"}
	}
	l, ok := e.loopers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", scheduler.ErrThreadNotRegistered, id)
	}
	return l, nil
}

// Handler returns a handler posting to id.
func (e *Environment) Handler(id scheduler.ThreadID) (*handler.Handler, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	return handler.New(e.registry, id)
}

// Clock returns the clock shared by every looper, or nil in ModeLegacy,
// where each scheduler has its own.
func (e *Environment) Clock() *scheduler.Clock {
	return e.clock
}

// NewThread creates and registers the scheduler for a background thread.
func (e *Environment) NewThread(id scheduler.ThreadID) (scheduler.Interface, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	return e.newThread(id)
}

// Reset returns every thread to its initial state, between tests. Threads
// stay registered.
func (e *Environment) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	var err error
	switch e.cfg.mode {
	case ModePaused:
		for _, l := range e.loopers {
			l.Reset()
		}
		e.clock.Reset(e.cfg.startTime)
	default:
		err = e.registry.Reset()
	}
	e.logger.Debug().
		Stringer("mode", e.cfg.mode).
		Int("threads", e.registry.Len()).
		Log("environment reset")
	return err
}

// Close drops every thread. Subsequent calls fail with ErrClosed.
func (e *Environment) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	e.registry.Clear()
	clear(e.loopers)
	e.logger.Debug().Log("environment closed")
	return nil
}

func (e *Environment) checkOpen() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return nil
}

func (e *Environment) newThread(id scheduler.ThreadID) (scheduler.Interface, error) {
	if _, ok := e.registry.Lookup(id); ok {
		return nil, fmt.Errorf("%w: %q", scheduler.ErrThreadRegistered, id)
	}

	var (
		s   scheduler.Interface
		l   *looper.Looper
		err error
	)
	switch e.cfg.mode {
	case ModePaused:
		l, err = looper.New(
			e.clock,
			looper.WithMain(id == scheduler.MainThread),
			looper.WithPaused(e.cfg.pausedDefault),
			looper.WithName(string(id)),
			looper.WithLogger(e.logger),
		)
		if err != nil {
			return nil, err
		}
		s, err = scheduler.NewDelegating(
			l,
			scheduler.WithDelegateMode(e.cfg.delegateMode),
			scheduler.WithDelegateName(string(id)),
			scheduler.WithDelegateLogger(e.logger),
		)
	default:
		s, err = scheduler.New(
			scheduler.WithPaused(e.cfg.pausedDefault),
			scheduler.WithStartTime(e.cfg.startTime),
			scheduler.WithName(string(id)),
			scheduler.WithLogger(e.logger),
		)
	}
	if err != nil {
		return nil, err
	}

	if err := e.registry.Register(id, s); err != nil {
		return nil, err
	}
	if l != nil {
		e.mu.Lock()
		e.loopers[id] = l
		e.mu.Unlock()
	}

	e.logger.Debug().
		Str("thread", string(id)).
		Stringer("capabilities", s.Capabilities()).
		Log("thread registered")
	return s, nil
}

// Now returns the current time of the main thread.
func (e *Environment) Now() (time.Duration, error) {
	s, err := e.Main()
	if err != nil {
		return 0, err
	}
	return s.Now(), nil
}
