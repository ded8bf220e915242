// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package scheduler

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrInvalidArgument is returned for arguments that would violate an
	// invariant, e.g. moving the clock backwards, or a negative delay.
	ErrInvalidArgument = errors.New("scheduler: invalid argument")

	// ErrUnsupportedOperation is returned by backends that cannot serve an
	// operation. It is never substituted with an approximate value.
	ErrUnsupportedOperation = errors.New("scheduler: unsupported operation")

	// ErrThreadRegistered is returned when registering a thread identity that
	// already has a scheduler. It wraps ErrInvalidArgument.
	ErrThreadRegistered = fmt.Errorf("%w: thread already registered", ErrInvalidArgument)

	// ErrThreadNotRegistered is returned when looking up an unknown thread.
	ErrThreadNotRegistered = errors.New("scheduler: thread not registered")
)

// UnsupportedError describes an operation rejected by a backend.
type UnsupportedError struct {
	// Op is the name of the rejected operation, e.g. "Size".
	Op string
	// Backend names the rejecting backend, including its mode.
	Backend string
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("scheduler: %s: unsupported operation", e.Op)
	}
	return fmt.Sprintf("scheduler: %s: unsupported operation for %s", e.Op, e.Backend)
}

// Is matches ErrUnsupportedOperation, and any other *UnsupportedError.
func (e *UnsupportedError) Is(target error) bool {
	if target == ErrUnsupportedOperation {
		return true
	}
	_, ok := target.(*UnsupportedError)
	return ok
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}
