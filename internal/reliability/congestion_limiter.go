package reliability

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// RetransmitLimiter bounds how many retransmissions a writer has in flight
// at once, independent of the per-reader congestion backoff in backoff.go.
// Uses a weighted semaphore to cap concurrent outbound work rather than an
// unbounded goroutine-per-send fan-out.
type RetransmitLimiter struct {
	sem *semaphore.Weighted
}

// NewRetransmitLimiter returns a limiter admitting at most maxConcurrent
// simultaneous retransmissions.
func NewRetransmitLimiter(maxConcurrent int64) *RetransmitLimiter {
	return &RetransmitLimiter{sem: semaphore.NewWeighted(maxConcurrent)}
}

// Acquire blocks until a retransmission slot is free or ctx is cancelled.
func (l *RetransmitLimiter) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// Release frees a retransmission slot.
func (l *RetransmitLimiter) Release() {
	l.sem.Release(1)
}
