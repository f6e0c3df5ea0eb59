// Package history implements the per-endpoint history cache: ordered sample retention, KEEP_LAST/KEEP_ALL eviction,
// RESOURCE_LIMITS backpressure, LIFESPAN expiry and TRANSIENT_LOCAL replay.
// Uses utils/linked (ordered map + list) for ordered per-instance
// retention.
package history

import (
	"time"

	"github.com/hdds-io/hdds/choices"
	"github.com/hdds-io/hdds/internal/guid"
	"github.com/hdds-io/hdds/internal/herr"
	"github.com/hdds-io/hdds/internal/keyhash"
	"github.com/hdds-io/hdds/qos"
	"github.com/hdds-io/hdds/utils/linked"
)

// Sample is one admitted change: user payload plus the bookkeeping fields
// the data model attaches to it.
type Sample struct {
	WriterGUID     guid.GUID
	SequenceNumber uint64
	InstanceKey    keyhash.KeyHash
	Data           []byte
	Disposed       bool
	SourceTimestamp time.Time
	ReceiveTimestamp time.Time

	SampleState   choices.SampleState
	ViewState     choices.ViewState
	InstanceState choices.InstanceState
}

// dedupeKey identifies a change by its origin, independent of which
// instance it belongs to.
type dedupeKey struct {
	writer guid.GUID
	seq    uint64
}

// instance tracks the ordered samples and lifecycle state of one key.
type instance struct {
	state   choices.InstanceState
	samples linked.List[*Sample]
}

// Cache is the ordered, bounded retention store for one writer or reader
// endpoint. All methods are safe only when serialized by the caller (the
// reliability engine and the public reader API each own exactly one
// Cache and already serialize access to it through their own locks); Cache
// itself does no locking, building on the bare (non-mutex'd) utils/linked
// collections.
type Cache struct {
	history  qos.History
	limits   qos.ResourceLimits
	lifespan qos.Lifespan

	instances    *linked.Hashmap[keyhash.KeyHash, *instance]
	totalSamples int

	seen map[dedupeKey]bool
}

// New returns an empty Cache configured by the given HISTORY,
// RESOURCE_LIMITS and LIFESPAN policies.
func New(h qos.History, limits qos.ResourceLimits, lifespan qos.Lifespan) *Cache {
	return &Cache{
		history:   h,
		limits:    limits,
		lifespan:  lifespan,
		instances: linked.NewHashmap[keyhash.KeyHash, *instance](),
		seen:      make(map[dedupeKey]bool),
	}
}

// Admit inserts a new sample for the given instance key. It enforces, in
// order:
//  0. duplicate (writer GUID, sequence number) — rejected outright, giving
//     at-most-once delivery across retransmits and redundant paths.
//  1. RESOURCE_LIMITS.max_instances — a brand new instance beyond the
//     limit is rejected even if max_samples has room.
//  2. RESOURCE_LIMITS.max_samples_per_instance / KEEP_LAST eviction — the
//     oldest sample of this instance is discarded to make room.
//  3. RESOURCE_LIMITS.max_samples (cache-wide) — if still at the limit
//     after per-instance eviction, KEEP_ALL rejects the sample and
//     KEEP_LAST evicts the oldest sample of this instance instead.
//  4. LIFESPAN expiry sweep of the whole cache.
func (c *Cache) Admit(key keyhash.KeyHash, s *Sample) error {
	dk := dedupeKey{writer: s.WriterGUID, seq: s.SequenceNumber}
	if c.seen[dk] {
		return herr.New(herr.AlreadyAdmitted, "history cache: duplicate sample from writer %s seq %d", s.WriterGUID, s.SequenceNumber)
	}

	inst, found := c.instances.Get(key)
	if !found {
		if c.limits.MaxInstances > 0 && c.instances.Len() >= c.limits.MaxInstances {
			return herr.New(herr.OutOfResources, "history cache: max_instances (%d) reached", c.limits.MaxInstances)
		}
		inst = &instance{state: choices.Alive}
		c.instances.Put(key, inst)
	}

	if c.history.Kind == qos.KeepLast && c.history.Depth > 0 {
		for inst.samples.Len() >= c.history.Depth {
			c.evictOldest(inst)
		}
	}
	if c.limits.MaxSamplesPerInstance > 0 {
		for inst.samples.Len() >= c.limits.MaxSamplesPerInstance {
			c.evictOldest(inst)
		}
	}

	if c.limits.MaxSamples > 0 && c.totalSamples >= c.limits.MaxSamples {
		if c.history.Kind == qos.KeepAll {
			return herr.New(herr.OutOfResources, "history cache: max_samples (%d) reached", c.limits.MaxSamples)
		}
		c.evictOldest(inst)
	}

	s.ViewState = choices.New
	if found {
		s.ViewState = choices.NotNew
	}
	s.SampleState = choices.NotRead
	s.InstanceState = inst.state

	inst.samples.PushBack(s)
	c.totalSamples++
	c.seen[dk] = true

	if c.lifespan.Duration > 0 {
		c.sweepExpired()
	}
	return nil
}

// evictOldest discards the oldest sample of inst, as prescribed when a
// depth or resource limit is exceeded.
func (c *Cache) evictOldest(inst *instance) {
	front := inst.samples.Front()
	if front == nil {
		return
	}
	inst.samples.Remove(front)
	c.totalSamples--
}

// sweepExpired discards every sample across every instance whose lifespan
// has elapsed relative to now.
func (c *Cache) sweepExpired() {
	c.sweepExpiredAt(time.Now())
}

func (c *Cache) sweepExpiredAt(now time.Time) {
	if c.lifespan.Duration <= 0 {
		return
	}
	it := c.instances.NewIterator()
	for it.Next() {
		inst := it.Value()
		for node := inst.samples.Front(); node != nil; {
			next := node.Next
			if now.Sub(node.Value.SourceTimestamp) >= c.lifespan.Duration {
				inst.samples.Remove(node)
				c.totalSamples--
			}
			node = next
		}
	}
}

// ForgetAcked removes the sample bearing sequence number seq from whichever
// instance holds it, independent of HISTORY/RESOURCE_LIMITS/LIFESPAN
// eviction. A reliable writer calls this once every matched reader has
// acknowledged seq, reclaiming the sample's backlog slot early.
func (c *Cache) ForgetAcked(seq uint64) {
	it := c.instances.NewIterator()
	for it.Next() {
		inst := it.Value()
		for node := inst.samples.Front(); node != nil; node = node.Next {
			if node.Value.SequenceNumber == seq {
				inst.samples.Remove(node)
				c.totalSamples--
				return
			}
		}
	}
}

// Dispose marks the instance identified by key NOT_ALIVE_DISPOSED,
// matching a writer's dispose() call.
func (c *Cache) Dispose(key keyhash.KeyHash) {
	if inst, ok := c.instances.Get(key); ok {
		inst.state = choices.NotAliveDisposed
		for node := inst.samples.Front(); node != nil; node = node.Next {
			node.Value.InstanceState = choices.NotAliveDisposed
		}
	}
}

// MarkNoWriters transitions every ALIVE instance to NOT_ALIVE_NO_WRITERS,
// called when the last writer of a reader's matched set is lost.
func (c *Cache) MarkNoWriters() {
	it := c.instances.NewIterator()
	for it.Next() {
		inst := it.Value()
		if inst.state == choices.Alive {
			inst.state = choices.NotAliveNoWriters
		}
	}
}

// Samples returns every retained sample for key in admission order,
// oldest first.
func (c *Cache) Samples(key keyhash.KeyHash) []*Sample {
	inst, ok := c.instances.Get(key)
	if !ok {
		return nil
	}
	out := make([]*Sample, 0, inst.samples.Len())
	for node := inst.samples.Front(); node != nil; node = node.Next {
		out = append(out, node.Value)
	}
	return out
}

// All returns every retained sample across every instance, oldest-admitted
// instance first, matching TRANSIENT_LOCAL replay order to a newly
// matched reader.
func (c *Cache) All() []*Sample {
	out := make([]*Sample, 0, c.totalSamples)
	it := c.instances.NewIterator()
	for it.Next() {
		inst := it.Value()
		for node := inst.samples.Front(); node != nil; node = node.Next {
			out = append(out, node.Value)
		}
	}
	return out
}

// TakeAll returns every unread sample across every instance, oldest first,
// and removes each of them from the cache — the reader-side take()
// semantics ("taken ⇒ removed").
func (c *Cache) TakeAll() []*Sample {
	var out []*Sample
	it := c.instances.NewIterator()
	for it.Next() {
		inst := it.Value()
		for node := inst.samples.Front(); node != nil; {
			next := node.Next
			if node.Value.SampleState == choices.NotRead {
				out = append(out, node.Value)
				inst.samples.Remove(node)
				c.totalSamples--
			}
			node = next
		}
	}
	return out
}

// ReadAll returns every unread sample across every instance, oldest first,
// marking each READ without removing it from the cache — the reader-side
// read() semantics.
func (c *Cache) ReadAll() []*Sample {
	var out []*Sample
	it := c.instances.NewIterator()
	for it.Next() {
		inst := it.Value()
		for node := inst.samples.Front(); node != nil; node = node.Next {
			if node.Value.SampleState == choices.NotRead {
				node.Value.SampleState = choices.Read
				out = append(out, node.Value)
			}
		}
	}
	return out
}

// Len returns the total number of retained samples across all instances.
func (c *Cache) Len() int {
	return c.totalSamples
}

// InstanceCount returns the number of distinct instances currently
// tracked, alive or not.
func (c *Cache) InstanceCount() int {
	return c.instances.Len()
}
