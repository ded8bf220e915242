// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package scheduler

import (
	"container/heap"
	"time"
)

// Task is a queued Runnable.
type Task struct {
	Runnable Runnable

	// Due is the virtual time the task becomes runnable.
	Due time.Duration

	// Seq breaks ties between tasks with the same Due, ascending.
	// Regular inserts count up from 1, front inserts count down from 0.
	Seq int64

	index int
	alive bool
}

// Alive reports whether the task is still queued.
func (t *Task) Alive() bool {
	return t != nil && t.alive
}

// taskHeap is a min-heap ordered by (Due, Seq)
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].Due != h[j].Due {
		return h[i].Due < h[j].Due
	}
	return h[i].Seq < h[j].Seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// TaskQueue orders pending tasks by due time, then insertion sequence, so
// tasks due at the same time pop in FIFO order. The zero value is ready to
// use. TaskQueue is not safe for concurrent use.
type TaskQueue struct {
	heap     taskHeap
	nextSeq  int64
	frontSeq int64
}

// Insert queues r, due at the given time.
func (q *TaskQueue) Insert(r Runnable, due time.Duration) *Task {
	q.nextSeq++
	t := &Task{Runnable: r, Due: due, Seq: q.nextSeq, alive: true}
	heap.Push(&q.heap, t)
	return t
}

// InsertAtFront queues r, due at asOf, ahead of every task currently queued
// for asOf (including earlier front inserts).
func (q *TaskQueue) InsertAtFront(r Runnable, asOf time.Duration) *Task {
	t := &Task{Runnable: r, Due: asOf, Seq: q.frontSeq, alive: true}
	q.frontSeq--
	heap.Push(&q.heap, t)
	return t
}

// Peek returns the earliest task without removing it.
func (q *TaskQueue) Peek() (*Task, bool) {
	if len(q.heap) == 0 {
		return nil, false
	}
	return q.heap[0], true
}

// Pop removes and returns the earliest task.
func (q *TaskQueue) Pop() (*Task, bool) {
	if len(q.heap) == 0 {
		return nil, false
	}
	t := heap.Pop(&q.heap).(*Task)
	t.alive = false
	return t, true
}

// Last returns the task that would pop last, without removing it.
func (q *TaskQueue) Last() (*Task, bool) {
	if len(q.heap) == 0 {
		return nil, false
	}
	last := q.heap[0]
	for _, t := range q.heap[1:] {
		if t.Due > last.Due || (t.Due == last.Due && t.Seq > last.Seq) {
			last = t
		}
	}
	return last, true
}

// Remove dequeues every task running r, reporting whether any were removed.
func (q *TaskQueue) Remove(r Runnable) bool {
	n := len(q.heap)
	kept := q.heap[:0]
	for _, t := range q.heap {
		if sameRunnable(t.Runnable, r) {
			t.alive = false
			t.index = -1
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == n {
		return false
	}
	clear(q.heap[len(kept):n])
	q.heap = kept
	for i, t := range q.heap {
		t.index = i
	}
	heap.Init(&q.heap)
	return true
}

// Delete dequeues a single task, returning false if it was no longer queued.
func (q *TaskQueue) Delete(t *Task) bool {
	if !t.Alive() || t.index < 0 || t.index >= len(q.heap) || q.heap[t.index] != t {
		return false
	}
	heap.Remove(&q.heap, t.index)
	t.alive = false
	return true
}

// Len returns the number of queued tasks.
func (q *TaskQueue) Len() int {
	return len(q.heap)
}

// IsEmpty reports whether no tasks are queued.
func (q *TaskQueue) IsEmpty() bool {
	return len(q.heap) == 0
}

// Clear drops every queued task. Sequence numbering continues.
func (q *TaskQueue) Clear() {
	for i, t := range q.heap {
		t.alive = false
		t.index = -1
		q.heap[i] = nil
	}
	q.heap = q.heap[:0]
}
