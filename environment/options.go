// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package environment

import (
	"fmt"
	"io"
	"time"

	"github.com/joeycumines/go-looptime/scheduler"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Mode selects the scheduler backend used for every simulated thread.
type Mode uint8

const (
	// ModeLegacy gives each thread an owned [scheduler.Scheduler], with its
	// own clock.
	ModeLegacy Mode = iota
	// ModePaused gives each thread a [looper.Looper], sharing one clock, and
	// registers a [scheduler.Delegating] adapter driving it. The main looper
	// is always paused.
	ModePaused
)

// String returns a human-readable representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeLegacy:
		return "Legacy"
	case ModePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// environmentOptions holds configuration options for Environment creation.
type environmentOptions struct {
	logger        *logiface.Logger[logiface.Event]
	startTime     time.Duration
	mode          Mode
	delegateMode  scheduler.DelegateMode
	pausedDefault bool
}

// Option configures an Environment instance.
type Option interface {
	applyEnvironment(*environmentOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyEnvironmentFunc func(*environmentOptions) error
}

func (o *optionImpl) applyEnvironment(opts *environmentOptions) error {
	return o.applyEnvironmentFunc(opts)
}

// WithMode sets the backend. Defaults to ModeLegacy.
func WithMode(mode Mode) Option {
	return &optionImpl{func(opts *environmentOptions) error {
		switch mode {
		case ModeLegacy, ModePaused:
		default:
			return fmt.Errorf("%w: unknown mode %d", scheduler.ErrInvalidArgument, mode)
		}
		opts.mode = mode
		return nil
	}}
}

// WithPausedDefault sets whether new schedulers start paused, restored by
// Reset. In ModePaused it only applies to background threads. Defaults to
// false.
func WithPausedDefault(paused bool) Option {
	return &optionImpl{func(opts *environmentOptions) error {
		opts.pausedDefault = paused
		return nil
	}}
}

// WithStartTime sets the virtual time every clock starts at, and returns to
// on Reset.
func WithStartTime(t time.Duration) Option {
	return &optionImpl{func(opts *environmentOptions) error {
		if t < 0 {
			return fmt.Errorf("%w: negative start time %v", scheduler.ErrInvalidArgument, t)
		}
		opts.startTime = t
		return nil
	}}
}

// WithDelegateMode sets the capability split of the adapters registered in
// ModePaused.
func WithDelegateMode(mode scheduler.DelegateMode) Option {
	return &optionImpl{func(opts *environmentOptions) error {
		opts.delegateMode = mode
		return nil
	}}
}

// WithLogger attaches a structured logger, shared by every component.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *environmentOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithLogOutput logs newline-delimited JSON to w, for events at or above
// level. It replaces any logger set by WithLogger.
func WithLogOutput(w io.Writer, level logiface.Level) Option {
	return &optionImpl{func(opts *environmentOptions) error {
		if w == nil {
			return fmt.Errorf("%w: nil log writer", scheduler.ErrInvalidArgument)
		}
		opts.logger = stumpy.L.New(
			stumpy.L.WithStumpy(stumpy.WithWriter(w)),
			stumpy.L.WithLevel(level),
		).Logger()
		return nil
	}}
}

func resolveOptions(opts []Option) (*environmentOptions, error) {
	cfg := &environmentOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyEnvironment(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
