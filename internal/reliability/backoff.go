package reliability

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// NewCongestionBackoff returns the retry schedule a reliable writer follows
// when retransmission hits WOULD_BLOCK (a full transport send buffer):
// exponential backoff starting at 10ms with the interval capped at
// maxInterval, each delay jittered by up to ±50% of the current interval
// (so a single delay can reach 1.5×maxInterval), retried indefinitely until
// the caller abandons it via context cancellation.
func NewCongestionBackoff(maxInterval time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = maxInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
