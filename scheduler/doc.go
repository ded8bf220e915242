// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package scheduler provides a deterministic, virtual-time task scheduler,
// intended to stand in for real message loops and timers under test.
//
// # Architecture
//
// A [Clock] holds the current virtual time, which only ever moves when a
// scheduler is driven. A [TaskQueue] orders pending [Runnable] tasks by due
// time, then by insertion sequence, so tasks due together run first-in,
// first-out. Two backends implement [Interface]:
//   - [Scheduler] owns its clock and queue, and supports every operation
//   - [Delegating] drives an externally-owned [Looper], and rejects
//     operations that the looper cannot answer exactly, see [Capability]
//
// A [Registry] maps simulated thread identities to their schedulers. It is
// created by the test environment and passed around explicitly.
//
// # Run Modes
//
// An unpaused scheduler runs zero-delay posts before the post returns. A
// paused scheduler queues every post until driven, by one of
// [Interface.RunOneTask], [Interface.RunToEndOfTasks],
// [Interface.AdvanceBy], [Interface.AdvanceTo] or [Interface.Idle]. Delayed
// posts are always queued.
//
// # Thread Safety
//
// Schedulers are single-threaded and cooperative: tasks run synchronously on
// the goroutine driving the scheduler, and nothing ever blocks or waits on
// wall-clock time. Having more than one goroutine drive or post to the same
// scheduler concurrently is not supported, and is not detected. [Registry]
// is the exception, and is safe for concurrent use.
//
// # Usage
//
//	s, err := scheduler.New(scheduler.WithPaused(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = s.PostDelayed(scheduler.Func(func() { fmt.Println("tick") }), time.Second)
//	_, _ = s.AdvanceBy(time.Second) // prints "tick"
package scheduler
