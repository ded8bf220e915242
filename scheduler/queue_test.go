package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func popAll(q *TaskQueue) (out []*Task) {
	for {
		t, ok := q.Pop()
		if !ok {
			return out
		}
		out = append(out, t)
	}
}

func TestTaskQueue_ordering(t *testing.T) {
	var q TaskQueue
	a, b, c, d := Func(func() {}), Func(func() {}), Func(func() {}), Func(func() {})
	q.Insert(a, 10)
	q.Insert(b, 5)
	q.Insert(c, 10)
	q.Insert(d, 5)

	var got []Runnable
	for _, task := range popAll(&q) {
		assert.False(t, task.Alive())
		got = append(got, task.Runnable)
	}
	assert.Equal(t, []Runnable{b, d, a, c}, got)
}

func TestTaskQueue_InsertAtFront(t *testing.T) {
	var q TaskQueue
	a, b, c, d := Func(func() {}), Func(func() {}), Func(func() {}), Func(func() {})
	q.Insert(a, 0)
	q.Insert(b, 0)
	q.InsertAtFront(c, 0)
	q.InsertAtFront(d, 0)
	q.Insert(Func(func() {}), 1)

	tasks := popAll(&q)
	require.Len(t, tasks, 5)
	assert.Same(t, d, tasks[0].Runnable)
	assert.Same(t, c, tasks[1].Runnable)
	assert.Same(t, a, tasks[2].Runnable)
	assert.Same(t, b, tasks[3].Runnable)
	assert.Equal(t, time.Duration(1), tasks[4].Due)
}

func TestTaskQueue_PeekAndLast(t *testing.T) {
	var q TaskQueue
	_, ok := q.Peek()
	assert.False(t, ok)
	_, ok = q.Last()
	assert.False(t, ok)

	first := q.Insert(Func(func() {}), 3)
	q.Insert(Func(func() {}), 7)
	last := q.Insert(Func(func() {}), 7)
	q.Insert(Func(func() {}), 4)

	got, ok := q.Peek()
	require.True(t, ok)
	assert.Same(t, first, got)
	got, ok = q.Last()
	require.True(t, ok)
	assert.Same(t, last, got)
	assert.Equal(t, 4, q.Len())
}

func TestTaskQueue_Remove(t *testing.T) {
	var q TaskQueue
	target := Func(func() {})
	other := Func(func() {})
	for i := range 20 {
		if i%3 == 0 {
			q.Insert(target, time.Duration(20-i))
		} else {
			q.Insert(other, time.Duration(i))
		}
	}
	before := q.Len()

	assert.True(t, q.Remove(target))
	assert.False(t, q.Remove(target))
	assert.Equal(t, before-7, q.Len())

	var prev time.Duration
	for _, task := range popAll(&q) {
		assert.Same(t, other, task.Runnable)
		assert.GreaterOrEqual(t, task.Due, prev)
		prev = task.Due
	}
}

type funcType func()

func (f funcType) Run() { f() }

func TestTaskQueue_Remove_nonComparable(t *testing.T) {
	var q TaskQueue
	r := funcType(func() {})
	q.Insert(r, 0)
	assert.False(t, q.Remove(r))
	assert.False(t, q.Remove(nil))
	assert.Equal(t, 1, q.Len())
}

func TestTaskQueue_Delete(t *testing.T) {
	var q TaskQueue
	a := q.Insert(Func(func() {}), 1)
	b := q.Insert(Func(func() {}), 2)
	c := q.Insert(Func(func() {}), 3)

	assert.True(t, q.Delete(b))
	assert.False(t, b.Alive())
	assert.False(t, q.Delete(b))

	popped, ok := q.Pop()
	require.True(t, ok)
	assert.Same(t, a, popped)
	assert.False(t, q.Delete(a))

	assert.True(t, c.Alive())
	assert.Equal(t, 1, q.Len())
}

func TestTaskQueue_Clear(t *testing.T) {
	var q TaskQueue
	a := q.Insert(Func(func() {}), 1)
	q.Insert(Func(func() {}), 1)
	q.Clear()
	assert.True(t, q.IsEmpty())
	assert.False(t, a.Alive())
	assert.False(t, q.Delete(a))

	// numbering continues, FIFO still holds
	x := q.Insert(Func(func() {}), 0)
	y := q.Insert(Func(func() {}), 0)
	assert.Less(t, x.Seq, y.Seq)
}
