package hdds

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hdds-io/hdds/config"
	"github.com/hdds-io/hdds/internal/discovery"
	"github.com/hdds-io/hdds/internal/guid"
	"github.com/hdds-io/hdds/internal/history"
	"github.com/hdds-io/hdds/internal/keyhash"
	"github.com/hdds-io/hdds/internal/qosfsm"
	"github.com/hdds-io/hdds/internal/registry"
	"github.com/hdds-io/hdds/internal/reliability"
	"github.com/hdds-io/hdds/utils/constants"
	"github.com/hdds-io/hdds/waitset"
)

// maxConcurrentRetransmits bounds how many in-flight DATA resends one
// writer issues at once under RetransmitLimiter.
const maxConcurrentRetransmits = 8

// DataWriter publishes samples of one topic under RELIABILITY/DURABILITY/
// HISTORY and the other writer-side QoS policies.
type DataWriter struct {
	participant *DomainParticipant
	topic       *Topic
	guid        guid.GUID
	qos         config.DataWriterQoS

	mu         sync.Mutex
	cache      *history.Cache
	nextSeq    uint64
	matched    map[guid.GUID]*reliability.WriterReaderState
	heartbeat  *reliability.HeartbeatPacer
	retransmit *reliability.RetransmitLimiter
	acks       *reliability.AckTally

	deadline            *qosfsm.DeadlineWatchdog
	deadlineMissedCount int64

	statusCondition *waitset.StatusCondition
}

func newDataWriter(p *DomainParticipant, topic *Topic, entityKind byte, q config.DataWriterQoS) (*DataWriter, error) {
	entity := p.rp.NextEntityID(entityKind)
	ep, err := p.factory.reg.CreateEndpoint(p.rp.GUID(), entity, registry.KindWriter, topic.rt.GUID())
	if err != nil {
		return nil, err
	}

	w := &DataWriter{
		participant:     p,
		topic:           topic,
		guid:            ep.GUID(),
		qos:             q,
		cache:           history.New(q.History, q.ResourceLimits, q.Lifespan),
		matched:         make(map[guid.GUID]*reliability.WriterReaderState),
		heartbeat:       reliability.NewHeartbeatPacer(0, constants.DefaultHeartbeatPeriod),
		retransmit:      reliability.NewRetransmitLimiter(maxConcurrentRetransmits),
		acks:            reliability.NewAckTally(),
		statusCondition: waitset.NewStatusCondition(),
	}
	w.deadline = qosfsm.NewDeadlineWatchdog(q.Deadline.Period, func(keyhash.KeyHash) {
		atomic.AddInt64(&w.deadlineMissedCount, 1)
		w.statusCondition.SetTriggered(true)
	})

	p.mu.Lock()
	p.writers[w.guid] = w
	p.mu.Unlock()

	p.sedp.Announce(discovery.EndpointData{
		GUID:     w.guid,
		Kind:     discovery.EndpointWriter,
		Topic:    topic.Name(),
		TypeName: topic.TypeName(),
		Offered:  offeredOf(q),
	})

	return w, nil
}

// GUID returns this writer's identity.
func (w *DataWriter) GUID() guid.GUID {
	return w.guid
}

// StatusCondition returns the condition a WaitSet attaches to in order to
// wake on this writer's PUBLICATION_MATCHED / OFFERED_DEADLINE_MISSED
// status changes.
func (w *DataWriter) StatusCondition() *waitset.StatusCondition {
	return w.statusCondition
}

// Write encodes sample, assigns it the next sequence number, admits it to
// the history cache, and queues it for delivery to every matched reader.
func (w *DataWriter) Write(sample Marshaler) error {
	data, err := encode(sample)
	if err != nil {
		return err
	}
	key, err := keyhash.Of(sample)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextSeq++
	seq := w.nextSeq
	now := time.Now()

	s := &history.Sample{
		WriterGUID:       w.guid,
		SequenceNumber:   seq,
		InstanceKey:      key,
		Data:             data,
		SourceTimestamp:  now,
		ReceiveTimestamp: now,
	}
	if err := w.cache.Admit(key, s); err != nil {
		return err
	}
	w.deadline.Touch(key, now)

	for _, rs := range w.matched {
		rs.Sent(seq)
	}
	w.heartbeat.RecordSample()

	// This write does not assert LIVELINESS, and neither does the
	// participant's tick: no writer-side assertion exists for any of the
	// AUTOMATIC, MANUAL_BY_PARTICIPANT or MANUAL_BY_TOPIC kinds.

	return nil
}

// Dispose marks sample's instance NOT_ALIVE_DISPOSED, withdrawing it from
// future history-cache admission windows without emitting new data.
func (w *DataWriter) Dispose(sample Marshaler) error {
	key, err := keyhash.Of(sample)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cache.Dispose(key)
	return nil
}

// onMatched wires a newly matched remote reader, replaying any
// TRANSIENT_LOCAL-eligible backlog still in the cache.
func (w *DataWriter) onMatched(reader discovery.EndpointData) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var backlog []uint64
	if w.qos.Durability.Kind >= 1 {
		for _, s := range w.cache.All() {
			backlog = append(backlog, s.SequenceNumber)
		}
	}
	w.matched[reader.GUID] = reliability.NewWriterReaderState(reader.GUID, backlog)
	w.statusCondition.SetTriggered(true)
}

// onUnmatched forgets a remote reader that no longer matches.
func (w *DataWriter) onUnmatched(reader guid.GUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.matched, reader)
	w.statusCondition.SetTriggered(true)
}

// ReceiveAck is called by the reception path with one decoded ACKNACK from
// reader: every sequence number below base is acknowledged except those
// named in missing, which are re-queued for retransmission. Once every
// matched reader has acknowledged a sequence number, its sample is
// garbage-collected from the history cache.
func (w *DataWriter) ReceiveAck(reader guid.GUID, base uint64, missing []uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rs, ok := w.matched[reader]
	if !ok {
		return
	}
	for _, seq := range rs.Ack(base, missing) {
		w.acks.RecordAck(seq)
		if w.acks.Count(seq) >= len(w.matched) {
			w.cache.ForgetAcked(seq)
		}
	}
}

// tick drives this writer's heartbeat cadence; callers (DomainParticipant)
// invoke this from the shared clock tick.
func (w *DataWriter) tick(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.heartbeat.Due(now) {
		w.heartbeat.MarkSent(now)
	}
	w.deadline.Check(now)
}

// DeadlineMissedCount returns the cumulative OFFERED_DEADLINE_MISSED count:
// how many times this writer failed to produce a sample for a matched
// instance within its offered DEADLINE period.
func (w *DataWriter) DeadlineMissedCount() int64 {
	return atomic.LoadInt64(&w.deadlineMissedCount)
}

// PendingUnsentCount reports how many samples across every matched reader
// are still queued for (re)transmission, used by tests and health checks.
func (w *DataWriter) PendingUnsentCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	total := 0
	for _, rs := range w.matched {
		total += len(rs.PendingUnsent())
	}
	return total
}

// Retransmit resends every sample still owed to a matched reader, calling
// send once per (reader, sequence number) pair. Concurrent sends are capped
// by RetransmitLimiter so a reader with a large backlog cannot starve the
// transport for every other matched reader. A send failure for one pair does not stop the others; the
// first error observed is returned once every pair has been attempted.
func (w *DataWriter) Retransmit(ctx context.Context, send func(reader guid.GUID, seq uint64, data []byte) error) error {
	w.mu.Lock()
	type job struct {
		reader guid.GUID
		seq    uint64
		state  *reliability.WriterReaderState
	}
	var jobs []job
	for reader, rs := range w.matched {
		for _, seq := range rs.PendingUnsent() {
			jobs = append(jobs, job{reader, seq, rs})
		}
	}
	bySeq := make(map[uint64][]byte, len(jobs))
	for _, s := range w.cache.All() {
		bySeq[s.SequenceNumber] = s.Data
	}
	w.mu.Unlock()

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	for _, j := range jobs {
		data, ok := bySeq[j.seq]
		if !ok {
			continue
		}
		if err := w.retransmit.Acquire(ctx); err != nil {
			return err
		}
		wg.Add(1)
		go func(j job, data []byte) {
			defer wg.Done()
			defer w.retransmit.Release()
			if err := send(j.reader, j.seq, data); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				return
			}
			j.state.Sent(j.seq)
		}(j, data)
	}
	wg.Wait()
	return firstErr
}
