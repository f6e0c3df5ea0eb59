package reliability

import (
	"sync"

	mathutil "github.com/hdds-io/hdds/utils/math"
)

// ReaderWriterState is a reliable reader's per-matched-writer bookkeeping:
// which sequence numbers it has received and which are still missing,
// used to build the ACKNACK bitmap sent back to the writer.
type ReaderWriterState struct {
	mu       sync.Mutex
	received map[uint64]bool
	highest  uint64
}

// NewReaderWriterState returns empty tracking state for a newly matched
// writer.
func NewReaderWriterState() *ReaderWriterState {
	return &ReaderWriterState{received: make(map[uint64]bool)}
}

// Receive records that seq arrived. Out-of-order and duplicate arrivals
// are both handled: duplicates are idempotent, and a sample arriving
// after a gap is recorded without requiring the gap to fill first.
func (s *ReaderWriterState) Receive(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received[seq] = true
	if seq > s.highest {
		s.highest = seq
	}
}

// ACKNACK computes the (base, missing) pair to report to the writer: base
// is the lowest sequence number not yet received, and missing lists every
// gap strictly between base and the highest sequence number seen so far.
func (s *ReaderWriterState) ACKNACK() (base uint64, missing []uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base = 1
	for s.received[base] {
		base++
	}
	for seq := base + 1; seq <= s.highest; seq++ {
		if !s.received[seq] {
			missing = append(missing, seq)
		}
	}
	return base, missing
}

// Highest returns the highest sequence number observed so far.
func (s *ReaderWriterState) Highest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highest
}

// GapCount reports how many sequence numbers below the highest seen are
// still missing, a cheap health signal surfaced without walking the full
// ACKNACK bitmap.
func (s *ReaderWriterState) GapCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.highest == 0 {
		return 0
	}
	return mathutil.AbsDiff(s.highest, uint64(len(s.received)))
}
