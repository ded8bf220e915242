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

// schedulerOptions holds configuration options for Scheduler creation.
type schedulerOptions struct {
	logger    *logiface.Logger[logiface.Event]
	name      string
	startTime time.Duration
	paused    bool
}

// --- Scheduler Options ---

// Option configures a Scheduler instance.
type Option interface {
	applyScheduler(*schedulerOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applySchedulerFunc func(*schedulerOptions) error
}

func (o *optionImpl) applyScheduler(opts *schedulerOptions) error {
	return o.applySchedulerFunc(opts)
}

// WithPaused sets the default run mode, applied on creation and restored by
// Reset. Schedulers are unpaused by default.
func WithPaused(paused bool) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.paused = paused
		return nil
	}}
}

// WithStartTime sets the clock value used on creation and restored by Reset.
// Defaults to zero. Negative values are rejected.
func WithStartTime(t time.Duration) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		if t < 0 {
			return invalidArgument("negative start time %v", t)
		}
		opts.startTime = t
		return nil
	}}
}

// WithName labels the scheduler, e.g. with its thread identity, in log output.
func WithName(name string) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.name = name
		return nil
	}}
}

// WithLogger attaches a structured logger. Nil (the default) disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// resolveOptions applies Option instances to schedulerOptions.
func resolveOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
