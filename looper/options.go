// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package looper

import (
	"github.com/joeycumines/logiface"
)

// looperOptions holds configuration options for Looper creation.
type looperOptions struct {
	logger *logiface.Logger[logiface.Event]
	name   string
	paused *bool
	main   bool
}

// Option configures a Looper instance.
type Option interface {
	applyLooper(*looperOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyLooperFunc func(*looperOptions) error
}

func (o *optionImpl) applyLooper(opts *looperOptions) error {
	return o.applyLooperFunc(opts)
}

// WithMain marks the looper as the main looper, which is always paused, and
// cannot be unpaused.
func WithMain(main bool) Option {
	return &optionImpl{func(opts *looperOptions) error {
		opts.main = main
		return nil
	}}
}

// WithPaused sets the default run mode of a background looper, restored by
// Reset. Background loopers are unpaused by default. It is ignored for the
// main looper.
func WithPaused(paused bool) Option {
	return &optionImpl{func(opts *looperOptions) error {
		opts.paused = &paused
		return nil
	}}
}

// WithName labels the looper in log output.
func WithName(name string) Option {
	return &optionImpl{func(opts *looperOptions) error {
		opts.name = name
		return nil
	}}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *looperOptions) error {
		opts.logger = logger
		return nil
	}}
}

func resolveOptions(opts []Option) (*looperOptions, error) {
	cfg := &looperOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyLooper(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
