package reliability

import (
	"sync"
	"time"

	"github.com/hdds-io/hdds/internal/guid"
)

// fragmentKey identifies one in-flight fragmented sample: a single writer
// can have at most one DATAFRAG reassembly in flight per sequence number.
type fragmentKey struct {
	writer guid.GUID
	seq    uint64
}

type fragmentBuffer struct {
	fragmentSize int
	sampleSize   int
	have         map[uint32][]byte
	received     int
	deadline     time.Time
}

// Reassembler holds partially-received DATAFRAG sequences for every
// matched writer, discarding any buffer that has not completed within its
// timeout.
type Reassembler struct {
	mu      sync.Mutex
	timeout time.Duration
	bufs    map[fragmentKey]*fragmentBuffer
}

// NewReassembler returns an empty Reassembler that discards incomplete
// samples after timeout.
func NewReassembler(timeout time.Duration) *Reassembler {
	return &Reassembler{timeout: timeout, bufs: make(map[fragmentKey]*fragmentBuffer)}
}

// Fragment records one received DATAFRAG fragment. fragmentStartingNum is
// 1-based per RTPS convention. It returns the reassembled sample and true
// once every fragment has arrived, after which the buffer is discarded.
func (r *Reassembler) Fragment(writer guid.GUID, seq uint64, fragmentStartingNum uint32, fragmentsInSubmessage uint32, fragmentSize, sampleSize int, data []byte, now time.Time) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fragmentKey{writer: writer, seq: seq}
	buf, ok := r.bufs[key]
	if !ok {
		buf = &fragmentBuffer{
			fragmentSize: fragmentSize,
			sampleSize:   sampleSize,
			have:         make(map[uint32][]byte),
		}
		r.bufs[key] = buf
	}
	buf.deadline = now.Add(r.timeout)

	for i := uint32(0); i < fragmentsInSubmessage; i++ {
		num := fragmentStartingNum + i
		if _, seen := buf.have[num]; seen {
			continue
		}
		start := int(i) * fragmentSize
		end := start + fragmentSize
		if end > len(data) {
			end = len(data)
		}
		if start >= end {
			continue
		}
		buf.have[num] = append([]byte(nil), data[start:end]...)
		buf.received++
	}

	totalFragments := (sampleSize + fragmentSize - 1) / fragmentSize
	if buf.received < totalFragments {
		return nil, false
	}

	out := make([]byte, 0, sampleSize)
	for num := uint32(1); num <= uint32(totalFragments); num++ {
		out = append(out, buf.have[num]...)
	}
	delete(r.bufs, key)
	return out[:sampleSize], true
}

// SweepExpired discards any reassembly buffer whose deadline has passed,
// returning how many were dropped.
func (r *Reassembler) SweepExpired(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for key, buf := range r.bufs {
		if now.After(buf.deadline) {
			delete(r.bufs, key)
			dropped++
		}
	}
	return dropped
}

// Pending returns the number of in-flight reassembly buffers.
func (r *Reassembler) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bufs)
}
