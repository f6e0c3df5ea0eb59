// Package reliability implements the RTPS reliability engine: per-matched-reader writer-side change tracking,
// per-matched-writer reader-side ACKNACK bitmap tracking, heartbeat
// cadence, and congestion backoff. Uses a bag/multiset (utils/bag) to
// tally acks across matched readers, and a semaphore-bounded worker pool
// (RetransmitLimiter) to cap concurrent retransmits in
// DataWriter.Retransmit.
package reliability

import (
	"sync"

	"github.com/hdds-io/hdds/internal/guid"
	"github.com/hdds-io/hdds/utils/bag"
)

// WriterReaderState is a reliable writer's per-matched-reader bookkeeping:
// which sequence numbers that reader has not yet been sent, and which it
// has not yet acknowledged.
type WriterReaderState struct {
	mu             sync.Mutex
	reader         guid.GUID
	unsentChanges  map[uint64]bool
	unackedChanges map[uint64]bool
	highestAcked   uint64
}

// NewWriterReaderState returns tracking state for a newly matched reader,
// with every sequence number in backlog (samples already present in the
// writer's history cache) queued as unsent (TRANSIENT_LOCAL/KEEP_ALL
// replay).
func NewWriterReaderState(reader guid.GUID, backlog []uint64) *WriterReaderState {
	s := &WriterReaderState{
		reader:         reader,
		unsentChanges:  make(map[uint64]bool, len(backlog)),
		unackedChanges: make(map[uint64]bool, len(backlog)),
	}
	for _, seq := range backlog {
		s.unsentChanges[seq] = true
	}
	return s
}

// Sent moves seq from unsent to unacked, called right after the writer
// transmits a DATA submessage for it.
func (s *WriterReaderState) Sent(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.unsentChanges, seq)
	s.unackedChanges[seq] = true
}

// Ack processes an ACKNACK: everything up to but excluding base is
// acknowledged, and every sequence number in missing is re-queued as
// unsent for retransmission. It returns the sequence numbers newly
// acknowledged by this call (base-covered and not named in missing), for
// a caller tallying acks across every matched reader.
func (s *WriterReaderState) Ack(base uint64, missing []uint64) []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	missingSet := make(map[uint64]bool, len(missing))
	for _, seq := range missing {
		missingSet[seq] = true
	}

	var newlyAcked []uint64
	for seq := range s.unackedChanges {
		if seq < base && !missingSet[seq] {
			delete(s.unackedChanges, seq)
			newlyAcked = append(newlyAcked, seq)
		}
	}
	if base > s.highestAcked {
		s.highestAcked = base
	}
	for _, seq := range missing {
		delete(s.unackedChanges, seq)
		s.unsentChanges[seq] = true
	}
	return newlyAcked
}

// PendingUnsent returns every sequence number still owed to the reader.
func (s *WriterReaderState) PendingUnsent() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint64, 0, len(s.unsentChanges))
	for seq := range s.unsentChanges {
		out = append(out, seq)
	}
	return out
}

// IsFullyAcked reports whether the reader has acknowledged every sequence
// number the writer has sent it so far.
func (s *WriterReaderState) IsFullyAcked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unackedChanges) == 0 && len(s.unsentChanges) == 0
}

// AckTally counts, across every matched reader, how many have
// acknowledged at least up to seq — used to decide when a KEEP_ALL
// writer's history cache entry can be trimmed.
type AckTally struct {
	mu    sync.Mutex
	votes bag.Bag[uint64]
}

// NewAckTally returns an empty tally.
func NewAckTally() *AckTally {
	return &AckTally{votes: bag.New[uint64]()}
}

// RecordAck adds one vote for seq.
func (t *AckTally) RecordAck(seq uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.votes.Add(seq)
}

// Count returns how many readers have acknowledged seq.
func (t *AckTally) Count(seq uint64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.votes.Count(seq)
}
