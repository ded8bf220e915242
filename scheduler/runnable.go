// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package scheduler

import (
	"reflect"
)

// Runnable is a unit of work. Its identity (interface equality) is what
// [Scheduler.Remove] matches on, so implementations are typically pointers.
type Runnable interface {
	Run()
}

type funcRunnable struct {
	fn func()
}

func (x *funcRunnable) Run() { x.fn() }

// Func wraps fn as a Runnable. Every call returns a distinct identity, keep
// the result to remove it later.
func Func(fn func()) Runnable {
	return &funcRunnable{fn: fn}
}

// sameRunnable compares by identity. Values of non-comparable dynamic types
// (e.g. a bare func type implementing Runnable) never match, rather than
// panicking.
func sameRunnable(a, b Runnable) bool {
	if a == nil || b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
