package queue

import (
	"context"
	"time"
)

// LocalQueue is an in-process queue used when Redis is disabled.
// Pending tasks are lost when the process exits.
type LocalQueue struct {
	ch chan Task
}

// NewLocalQueue returns a queue holding up to size tasks.
func NewLocalQueue(size int) *LocalQueue {
	if size <= 0 {
		size = 100
	}
	return &LocalQueue{ch: make(chan Task, size)}
}

// Enqueue adds task without blocking. It returns ErrQueueFull when the buffer is full.
func (q *LocalQueue) Enqueue(ctx context.Context, task Task) error {
	select {
	case q.ch <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Dequeue waits up to timeout for a task.
func (q *LocalQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case t := <-q.ch:
		return &t, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of pending tasks.
func (q *LocalQueue) Len() int { return len(q.ch) }
