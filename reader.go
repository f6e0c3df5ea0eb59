package hdds

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hdds-io/hdds/choices"
	"github.com/hdds-io/hdds/config"
	"github.com/hdds-io/hdds/internal/discovery"
	"github.com/hdds-io/hdds/internal/guid"
	"github.com/hdds-io/hdds/internal/herr"
	"github.com/hdds-io/hdds/internal/history"
	"github.com/hdds-io/hdds/internal/keyhash"
	"github.com/hdds-io/hdds/internal/qosfsm"
	"github.com/hdds-io/hdds/internal/registry"
	"github.com/hdds-io/hdds/internal/reliability"
	"github.com/hdds-io/hdds/qos"
	"github.com/hdds-io/hdds/waitset"
)

// DataReader subscribes to samples of one topic, applying DEADLINE,
// OWNERSHIP and TIME_BASED_FILTER as they arrive. An arriving sample does
// not assert its writer's LIVELINESS lease.
type DataReader struct {
	participant *DomainParticipant
	topic       *Topic
	guid        guid.GUID
	qos         config.DataReaderQoS

	mu      sync.Mutex
	cache   *history.Cache
	matched map[guid.GUID]*reliability.ReaderWriterState

	deadline            *qosfsm.DeadlineWatchdog
	deadlineMissedCount int64
	liveliness          *qosfsm.LivelinessTracker
	ownership           *qosfsm.OwnershipArbiter
	filter              *qosfsm.TimeBasedFilter

	statusCondition *waitset.StatusCondition
	readCondition   *waitset.ReadCondition
}

func newDataReader(p *DomainParticipant, topic *Topic, entityKind byte, q config.DataReaderQoS) (*DataReader, error) {
	entity := p.rp.NextEntityID(entityKind)
	ep, err := p.factory.reg.CreateEndpoint(p.rp.GUID(), entity, registry.KindReader, topic.rt.GUID())
	if err != nil {
		return nil, err
	}

	r := &DataReader{
		participant: p,
		topic:       topic,
		guid:        ep.GUID(),
		qos:         q,
		cache:       history.New(q.History, q.ResourceLimits, qos.Lifespan{}),
		matched:     make(map[guid.GUID]*reliability.ReaderWriterState),
		filter:      qosfsm.NewTimeBasedFilter(q.TimeBasedFilter.MinimumSeparation),
		ownership:   qosfsm.NewOwnershipArbiter(),

		statusCondition: waitset.NewStatusCondition(),
	}
	r.deadline = qosfsm.NewDeadlineWatchdog(q.Deadline.Period, func(keyhash.KeyHash) {
		atomic.AddInt64(&r.deadlineMissedCount, 1)
		r.statusCondition.SetTriggered(true)
	})
	r.liveliness = qosfsm.NewLivelinessTracker(r.onWriterLost, r.onWriterBack)
	r.readCondition = waitset.NewReadCondition(r.hasUnread)

	p.mu.Lock()
	p.readers[r.guid] = r
	p.mu.Unlock()

	p.sedp.Announce(discovery.EndpointData{
		GUID:      r.guid,
		Kind:      discovery.EndpointReader,
		Topic:     topic.Name(),
		TypeName:  topic.TypeName(),
		Requested: requestedOf(q),
	})

	return r, nil
}

// GUID returns this reader's identity.
func (r *DataReader) GUID() guid.GUID {
	return r.guid
}

// StatusCondition returns the condition a WaitSet attaches to for this
// reader's status changes (matched, deadline missed, liveliness changed).
func (r *DataReader) StatusCondition() *waitset.StatusCondition {
	return r.statusCondition
}

// DeadlineMissedCount returns the cumulative REQUESTED_DEADLINE_MISSED
// count: how many times an instance's DEADLINE period has elapsed without
// a new sample arriving.
func (r *DataReader) DeadlineMissedCount() int64 {
	return atomic.LoadInt64(&r.deadlineMissedCount)
}

// ReadCondition returns the condition that triggers while this reader has
// at least one unread sample.
func (r *DataReader) ReadCondition() *waitset.ReadCondition {
	return r.readCondition
}

func (r *DataReader) hasUnread() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.cache.All() {
		if s.SampleState == choices.NotRead {
			return true
		}
	}
	return false
}

// Take returns and removes every unread sample admitted so far, the
// "taken ⇒ removed" contract.
func (r *DataReader) Take() []*history.Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.cache.TakeAll()
	if r.cache.Len() == 0 {
		r.statusCondition.SetTriggered(false)
	}
	return out
}

// Read returns every unread sample admitted so far without removing them,
// marking each READ.
func (r *DataReader) Read() []*history.Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.ReadAll()
}

// deliver is called by the reception path with one decoded sample from
// writer. It applies OWNERSHIP=EXCLUSIVE arbitration, TIME_BASED_FILTER
// and reliability tracking before admission, and DEADLINE bookkeeping
// after it.
func (r *DataReader) deliver(writer guid.GUID, seq uint64, key keyhash.KeyHash, data []byte, strength int32, sourceTimestamp time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.qos.Ownership.Kind == qos.Exclusive {
		if !r.ownership.Offer(key, writer, strength) {
			return nil
		}
	}
	if !r.filter.Admit(key, time.Now()) {
		return nil
	}

	if rs, ok := r.matched[writer]; ok {
		rs.Receive(seq)
	}

	s := &history.Sample{
		WriterGUID:       writer,
		SequenceNumber:   seq,
		InstanceKey:      key,
		Data:             data,
		SourceTimestamp:  sourceTimestamp,
		ReceiveTimestamp: time.Now(),
	}
	if err := r.cache.Admit(key, s); err != nil {
		if herr.Is(err, herr.AlreadyAdmitted) {
			return nil
		}
		return err
	}

	r.deadline.Touch(key, time.Now())
	r.statusCondition.SetTriggered(true)
	return nil
}

func (r *DataReader) onMatched(writer discovery.EndpointData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matched[writer.GUID] = reliability.NewReaderWriterState()
	r.statusCondition.SetTriggered(true)
}

func (r *DataReader) onUnmatched(writer guid.GUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.matched, writer)
	r.liveliness.Forget(writer)
	r.ownership.Forget(writer)
	if len(r.matched) == 0 {
		r.cache.MarkNoWriters()
	}
	r.statusCondition.SetTriggered(true)
}

func (r *DataReader) onWriterLost(writer guid.GUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ownership.Forget(writer)
	if len(r.matched) == 0 {
		r.cache.MarkNoWriters()
	}
	r.statusCondition.SetTriggered(true)
}

func (r *DataReader) onWriterBack(guid.GUID) {
	r.statusCondition.SetTriggered(true)
}

// tick drives this reader's DEADLINE and LIVELINESS timers.
func (r *DataReader) tick(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deadline.Check(now)
	r.liveliness.CheckExpired(now)
}
