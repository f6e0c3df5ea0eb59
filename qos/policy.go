// Package qos defines the DDS QoS policy types and the request/offered
// compatibility rule that governs writer/reader matching.
package qos

import "time"

// ReliabilityKind selects at-most-once versus reliable delivery.
type ReliabilityKind int

const (
	BestEffort ReliabilityKind = iota
	Reliable
)

// Reliability controls retransmission and the writer's blocking behavior
// under RESOURCE_LIMITS pressure.
type Reliability struct {
	Kind             ReliabilityKind
	MaxBlockingTime  time.Duration
}

// DurabilityKind orders the data-persistence strength a writer offers.
// Ranks increase with strength so compatibility is a simple >= comparison.
type DurabilityKind int

const (
	Volatile DurabilityKind = iota
	TransientLocal
	Transient
	Persistent
)

// Durability controls whether late-joining readers receive historical data.
// Persistent is treated as equivalent to TransientLocal at the core (see
// DESIGN.md); it is accepted and ranked but does not survive a process
// restart.
type Durability struct {
	Kind DurabilityKind
}

// HistoryKind selects whether the history cache retains the last N samples
// per instance or every sample admitted under RESOURCE_LIMITS.
type HistoryKind int

const (
	KeepLast HistoryKind = iota
	KeepAll
)

// History bounds how many samples per instance the history cache retains.
// Depth == 0 is treated as KeepAll (see DESIGN.md Open Question decision);
// Depth is otherwise ignored when Kind is KeepAll.
type History struct {
	Kind  HistoryKind
	Depth int
}

// Deadline is the maximum expected period between samples of an instance.
// Zero means no deadline is enforced.
type Deadline struct {
	Period time.Duration
}

// LatencyBudget bounds acceptable end-to-end delay. A reader's requested
// budget must be at least as large as the writer's offered budget for the
// two to match.
type LatencyBudget struct {
	Duration time.Duration
}

// LivelinessKind selects how an entity's liveliness is asserted.
type LivelinessKind int

const (
	Automatic LivelinessKind = iota
	ManualByParticipant
	ManualByTopic
)

// Liveliness bounds the time within which an entity must assert liveliness.
type Liveliness struct {
	Kind         LivelinessKind
	LeaseDuration time.Duration
}

// OwnershipKind selects whether multiple writers may publish the same
// instance concurrently or whether one writer exclusively owns it.
type OwnershipKind int

const (
	Shared OwnershipKind = iota
	Exclusive
)

// Ownership controls EXCLUSIVE-mode writer arbitration by Strength, with
// the incumbent winning ties.
type Ownership struct {
	Kind     OwnershipKind
	Strength int32
}

// Lifespan bounds how long a sample remains valid after it is written.
// Zero means samples never expire.
type Lifespan struct {
	Duration time.Duration
}

// TimeBasedFilter drops samples of the same instance delivered to a reader
// more often than MinimumSeparation; it is reader-local and never affects
// matching compatibility.
type TimeBasedFilter struct {
	MinimumSeparation time.Duration
}

// ResourceLimits bounds history-cache growth. Zero/unset fields mean
// unlimited.
type ResourceLimits struct {
	MaxSamples           int
	MaxInstances         int
	MaxSamplesPerInstance int
}

// Partition names the logical partitions an endpoint belongs to. Two
// endpoints match if any of their partition names match by glob, or if
// both lists are empty.
type Partition struct {
	Names []string
}

// TransportPriority is an opaque per-writer value. It is stored in the
// writer's QoS only: no transport reads it, and the UDP socket's DSCP code
// point comes from HDDS_DSCP instead.
type TransportPriority struct {
	Value int32
}
