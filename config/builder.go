// Package config provides fluent builders for the three QoS bundles an
// application assembles (participant, writer, reader) and a way to derive
// process-level transport/logging configuration from the environment.
package config

import (
	"time"

	"github.com/hdds-io/hdds/internal/herr"
	"github.com/hdds-io/hdds/qos"
)

// DomainParticipantQoS bundles the policies a participant offers by
// default to every entity it creates, unless overridden per-entity.
type DomainParticipantQoS struct {
	err error

	Liveliness qos.Liveliness
}

// NewDomainParticipantQoS returns a builder seeded with sensible defaults:
// automatic liveliness with no lease requirement.
func NewDomainParticipantQoS() *DomainParticipantQoS {
	return &DomainParticipantQoS{
		Liveliness: qos.Liveliness{Kind: qos.Automatic},
	}
}

// WithLiveliness overrides the default participant liveliness policy.
func (b *DomainParticipantQoS) WithLiveliness(kind qos.LivelinessKind, lease time.Duration) *DomainParticipantQoS {
	if b.err != nil {
		return b
	}
	if lease < 0 {
		b.err = herr.New(herr.BadParameter, "liveliness lease duration must be non-negative, got %s", lease)
		return b
	}
	b.Liveliness = qos.Liveliness{Kind: kind, LeaseDuration: lease}
	return b
}

// Build validates the accumulated policies and returns them, or the first
// error recorded during the chain.
func (b *DomainParticipantQoS) Build() (DomainParticipantQoS, error) {
	if b.err != nil {
		return DomainParticipantQoS{}, b.err
	}
	return *b, nil
}

// DataWriterQoS bundles the policies a writer offers.
type DataWriterQoS struct {
	err error

	Reliability     qos.Reliability
	Durability      qos.Durability
	History         qos.History
	Deadline        qos.Deadline
	LatencyBudget   qos.LatencyBudget
	Liveliness      qos.Liveliness
	Ownership       qos.Ownership
	Lifespan        qos.Lifespan
	ResourceLimits  qos.ResourceLimits
	Partition       qos.Partition
	TransportPriority qos.TransportPriority
}

// NewDataWriterQoS returns a builder seeded with the default policies:
// best-effort reliability, volatile durability, keep-last(1) history.
func NewDataWriterQoS() *DataWriterQoS {
	return &DataWriterQoS{
		Reliability: qos.Reliability{Kind: qos.BestEffort},
		Durability:  qos.Durability{Kind: qos.Volatile},
		History:     qos.History{Kind: qos.KeepLast, Depth: 1},
		Liveliness:  qos.Liveliness{Kind: qos.Automatic},
		Ownership:   qos.Ownership{Kind: qos.Shared},
	}
}

// WithReliability sets the RELIABILITY policy. MaxBlockingTime applies only
// when Kind is Reliable and the history cache is full under RESOURCE_LIMITS.
func (b *DataWriterQoS) WithReliability(kind qos.ReliabilityKind, maxBlockingTime time.Duration) *DataWriterQoS {
	if b.err != nil {
		return b
	}
	if maxBlockingTime < 0 {
		b.err = herr.New(herr.BadParameter, "max_blocking_time must be non-negative, got %s", maxBlockingTime)
		return b
	}
	b.Reliability = qos.Reliability{Kind: kind, MaxBlockingTime: maxBlockingTime}
	return b
}

// WithDurability sets the DURABILITY policy.
func (b *DataWriterQoS) WithDurability(kind qos.DurabilityKind) *DataWriterQoS {
	if b.err != nil {
		return b
	}
	b.Durability = qos.Durability{Kind: kind}
	return b
}

// WithHistory sets the HISTORY policy. A KeepLast depth of 0 is accepted
// and treated as KeepAll (see DESIGN.md Open Question decision), matching
// qos.History's own documented behavior.
func (b *DataWriterQoS) WithHistory(kind qos.HistoryKind, depth int) *DataWriterQoS {
	if b.err != nil {
		return b
	}
	if depth < 0 {
		b.err = herr.New(herr.BadParameter, "history depth must be non-negative, got %d", depth)
		return b
	}
	if kind == qos.KeepLast && depth == 0 {
		kind = qos.KeepAll
	}
	b.History = qos.History{Kind: kind, Depth: depth}
	return b
}

// WithDeadline sets the DEADLINE policy.
func (b *DataWriterQoS) WithDeadline(period time.Duration) *DataWriterQoS {
	if b.err != nil {
		return b
	}
	b.Deadline = qos.Deadline{Period: period}
	return b
}

// WithLatencyBudget sets the LATENCY_BUDGET policy.
func (b *DataWriterQoS) WithLatencyBudget(duration time.Duration) *DataWriterQoS {
	if b.err != nil {
		return b
	}
	b.LatencyBudget = qos.LatencyBudget{Duration: duration}
	return b
}

// WithLiveliness sets the LIVELINESS policy.
func (b *DataWriterQoS) WithLiveliness(kind qos.LivelinessKind, lease time.Duration) *DataWriterQoS {
	if b.err != nil {
		return b
	}
	b.Liveliness = qos.Liveliness{Kind: kind, LeaseDuration: lease}
	return b
}

// WithOwnership sets the OWNERSHIP policy. Strength is ignored unless Kind
// is Exclusive.
func (b *DataWriterQoS) WithOwnership(kind qos.OwnershipKind, strength int32) *DataWriterQoS {
	if b.err != nil {
		return b
	}
	b.Ownership = qos.Ownership{Kind: kind, Strength: strength}
	return b
}

// WithLifespan sets the LIFESPAN policy.
func (b *DataWriterQoS) WithLifespan(d time.Duration) *DataWriterQoS {
	if b.err != nil {
		return b
	}
	b.Lifespan = qos.Lifespan{Duration: d}
	return b
}

// WithResourceLimits sets the RESOURCE_LIMITS policy. Zero fields mean
// unlimited.
func (b *DataWriterQoS) WithResourceLimits(rl qos.ResourceLimits) *DataWriterQoS {
	if b.err != nil {
		return b
	}
	if rl.MaxSamples < 0 || rl.MaxInstances < 0 || rl.MaxSamplesPerInstance < 0 {
		b.err = herr.New(herr.BadParameter, "resource limits must be non-negative: %+v", rl)
		return b
	}
	b.ResourceLimits = rl
	return b
}

// WithPartition sets the PARTITION policy.
func (b *DataWriterQoS) WithPartition(names ...string) *DataWriterQoS {
	if b.err != nil {
		return b
	}
	b.Partition = qos.Partition{Names: names}
	return b
}

// WithTransportPriority sets the TRANSPORT_PRIORITY policy. The value is
// stored in the QoS only; no transport applies it as a DSCP code point.
func (b *DataWriterQoS) WithTransportPriority(value int32) *DataWriterQoS {
	if b.err != nil {
		return b
	}
	b.TransportPriority = qos.TransportPriority{Value: value}
	return b
}

// Build validates the accumulated policies for internal consistency
// (INCONSISTENT_QOS when two requested policies conflict with each other)
// and returns them.
func (b *DataWriterQoS) Build() (DataWriterQoS, error) {
	if b.err != nil {
		return DataWriterQoS{}, b.err
	}
	if b.Ownership.Kind == qos.Exclusive && b.Reliability.Kind != qos.Reliable {
		return DataWriterQoS{}, herr.New(herr.InconsistentPolicy, "EXCLUSIVE ownership requires RELIABLE reliability")
	}
	return *b, nil
}

// DataReaderQoS bundles the policies a reader requests.
type DataReaderQoS struct {
	err error

	Reliability     qos.Reliability
	Durability      qos.Durability
	History         qos.History
	Deadline        qos.Deadline
	LatencyBudget   qos.LatencyBudget
	Liveliness      qos.Liveliness
	Ownership       qos.Ownership
	TimeBasedFilter qos.TimeBasedFilter
	ResourceLimits  qos.ResourceLimits
	Partition       qos.Partition
}

// NewDataReaderQoS returns a builder seeded with the same default policies,
// matching NewDataWriterQoS's defaults so unmodified readers and writers
// always match.
func NewDataReaderQoS() *DataReaderQoS {
	return &DataReaderQoS{
		Reliability: qos.Reliability{Kind: qos.BestEffort},
		Durability:  qos.Durability{Kind: qos.Volatile},
		History:     qos.History{Kind: qos.KeepLast, Depth: 1},
		Liveliness:  qos.Liveliness{Kind: qos.Automatic},
		Ownership:   qos.Ownership{Kind: qos.Shared},
	}
}

func (b *DataReaderQoS) WithReliability(kind qos.ReliabilityKind, maxBlockingTime time.Duration) *DataReaderQoS {
	if b.err != nil {
		return b
	}
	b.Reliability = qos.Reliability{Kind: kind, MaxBlockingTime: maxBlockingTime}
	return b
}

func (b *DataReaderQoS) WithDurability(kind qos.DurabilityKind) *DataReaderQoS {
	if b.err != nil {
		return b
	}
	b.Durability = qos.Durability{Kind: kind}
	return b
}

func (b *DataReaderQoS) WithHistory(kind qos.HistoryKind, depth int) *DataReaderQoS {
	if b.err != nil {
		return b
	}
	if depth < 0 {
		b.err = herr.New(herr.BadParameter, "history depth must be non-negative, got %d", depth)
		return b
	}
	if kind == qos.KeepLast && depth == 0 {
		kind = qos.KeepAll
	}
	b.History = qos.History{Kind: kind, Depth: depth}
	return b
}

func (b *DataReaderQoS) WithDeadline(period time.Duration) *DataReaderQoS {
	if b.err != nil {
		return b
	}
	b.Deadline = qos.Deadline{Period: period}
	return b
}

func (b *DataReaderQoS) WithLatencyBudget(duration time.Duration) *DataReaderQoS {
	if b.err != nil {
		return b
	}
	b.LatencyBudget = qos.LatencyBudget{Duration: duration}
	return b
}

func (b *DataReaderQoS) WithLiveliness(kind qos.LivelinessKind, lease time.Duration) *DataReaderQoS {
	if b.err != nil {
		return b
	}
	b.Liveliness = qos.Liveliness{Kind: kind, LeaseDuration: lease}
	return b
}

func (b *DataReaderQoS) WithOwnership(kind qos.OwnershipKind, strength int32) *DataReaderQoS {
	if b.err != nil {
		return b
	}
	b.Ownership = qos.Ownership{Kind: kind, Strength: strength}
	return b
}

func (b *DataReaderQoS) WithTimeBasedFilter(minSeparation time.Duration) *DataReaderQoS {
	if b.err != nil {
		return b
	}
	b.TimeBasedFilter = qos.TimeBasedFilter{MinimumSeparation: minSeparation}
	return b
}

func (b *DataReaderQoS) WithResourceLimits(rl qos.ResourceLimits) *DataReaderQoS {
	if b.err != nil {
		return b
	}
	if rl.MaxSamples < 0 || rl.MaxInstances < 0 || rl.MaxSamplesPerInstance < 0 {
		b.err = herr.New(herr.BadParameter, "resource limits must be non-negative: %+v", rl)
		return b
	}
	b.ResourceLimits = rl
	return b
}

func (b *DataReaderQoS) WithPartition(names ...string) *DataReaderQoS {
	if b.err != nil {
		return b
	}
	b.Partition = qos.Partition{Names: names}
	return b
}

// Build validates the accumulated policies and returns them.
func (b *DataReaderQoS) Build() (DataReaderQoS, error) {
	if b.err != nil {
		return DataReaderQoS{}, b.err
	}
	return *b, nil
}
