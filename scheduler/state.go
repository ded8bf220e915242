// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package scheduler

// State is the run mode of a scheduler.
//
//	StateUnpaused ⇄ StatePaused   [Pause() / Unpause()]
//
// There is no terminal state, schedulers are reset rather than destroyed.
type State uint8

const (
	// StateUnpaused runs zero-delay posts inline, before the post returns.
	StateUnpaused State = iota
	// StatePaused queues every post until the scheduler is driven.
	StatePaused
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateUnpaused:
		return "Unpaused"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

func stateOf(paused bool) State {
	if paused {
		return StatePaused
	}
	return StateUnpaused
}
