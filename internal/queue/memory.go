package queue

import (
	"context"
	"errors"
)

// ErrQueueFull is returned when the in-memory buffer cannot take more jobs.
var ErrQueueFull = errors.New("thumbnail queue full")

// MemoryQueue is a buffered channel for single-process deployments and tests.
type MemoryQueue struct {
	jobs chan ThumbnailJob
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 64
	}
	return &MemoryQueue{jobs: make(chan ThumbnailJob, capacity)}
}

// EnqueueThumbnail never blocks; a full buffer is reported to the caller.
func (q *MemoryQueue) EnqueueThumbnail(ctx context.Context, job ThumbnailJob) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Consume returns the job stream. Jobs are handed out once; run several
// readers for concurrency.
func (q *MemoryQueue) Consume() <-chan ThumbnailJob {
	return q.jobs
}

func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}
