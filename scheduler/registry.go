// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package scheduler

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ThreadID identifies a simulated thread.
type ThreadID string

// MainThread is the identity of the main (foreground) thread.
const MainThread ThreadID = "main"

// Registry maps simulated thread identities to their schedulers. Unlike the
// schedulers it holds, Registry is safe for concurrent use. It must be
// initialized using NewRegistry.
type Registry struct {
	mu         sync.RWMutex
	schedulers map[ThreadID]Interface
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schedulers: make(map[ThreadID]Interface)}
}

// Register binds s to id. Each identity may be registered once, see
// ErrThreadRegistered.
func (x *Registry) Register(id ThreadID, s Interface) error {
	if s == nil {
		return invalidArgument("nil scheduler for thread %q", id)
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.schedulers[id]; ok {
		return fmt.Errorf("%w: %q", ErrThreadRegistered, id)
	}
	x.schedulers[id] = s
	return nil
}

// Lookup returns the scheduler registered for id, if any.
func (x *Registry) Lookup(id ThreadID) (Interface, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	s, ok := x.schedulers[id]
	return s, ok
}

// Get is like Lookup, but fails with ErrThreadNotRegistered.
func (x *Registry) Get(id ThreadID) (Interface, error) {
	if s, ok := x.Lookup(id); ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrThreadNotRegistered, id)
}

// Unregister removes id, reporting whether it was registered.
func (x *Registry) Unregister(id ThreadID) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.schedulers[id]; !ok {
		return false
	}
	delete(x.schedulers, id)
	return true
}

// Threads returns every registered identity, sorted.
func (x *Registry) Threads() []ThreadID {
	x.mu.RLock()
	ids := make([]ThreadID, 0, len(x.schedulers))
	for id := range x.schedulers {
		ids = append(ids, id)
	}
	x.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered identities.
func (x *Registry) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.schedulers)
}

// Reset resets every registered scheduler that supports it, in thread order,
// keeping the registrations. Schedulers lacking CapReset are skipped. Errors
// are joined.
func (x *Registry) Reset() error {
	var errs []error
	for _, id := range x.Threads() {
		s, ok := x.Lookup(id)
		if !ok || !s.Capabilities().Has(CapReset) {
			continue
		}
		if err := s.Reset(); err != nil {
			errs = append(errs, fmt.Errorf("thread %q: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Clear drops every registration.
func (x *Registry) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	clear(x.schedulers)
}
