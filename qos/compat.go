package qos

import "path/filepath"

// Offered is the set of QoS policies a writer publishes.
type Offered struct {
	Reliability   Reliability
	Durability    Durability
	Deadline      Deadline
	LatencyBudget LatencyBudget
	Liveliness    Liveliness
	Ownership     Ownership
	Partition     Partition
}

// Requested is the set of QoS policies a reader requires of a matching
// writer.
type Requested struct {
	Reliability   Reliability
	Durability    Durability
	Deadline      Deadline
	LatencyBudget LatencyBudget
	Liveliness    Liveliness
	Ownership     Ownership
	Partition     Partition
}

// Mismatch names a single incompatible policy, reported so callers can
// surface which policy caused a REQUESTED_INCOMPATIBLE_QOS status change.
type Mismatch string

const (
	MismatchReliability Mismatch = "RELIABILITY"
	MismatchDurability  Mismatch = "DURABILITY"
	MismatchDeadline      Mismatch = "DEADLINE"
	MismatchLatencyBudget Mismatch = "LATENCY_BUDGET"
	MismatchLiveliness    Mismatch = "LIVELINESS"
	MismatchOwnership     Mismatch = "OWNERSHIP"
	MismatchPartition     Mismatch = "PARTITION"
)

// Compatible evaluates the §4.5/§6 compatibility table between what a
// writer offers and what a reader requests. It returns every mismatch so
// callers can report the complete reason, not just the first failure.
func Compatible(offered Offered, requested Requested) []Mismatch {
	var mismatches []Mismatch

	if requested.Reliability.Kind == Reliable && offered.Reliability.Kind != Reliable {
		mismatches = append(mismatches, MismatchReliability)
	}

	if offered.Durability.Kind < requested.Durability.Kind {
		mismatches = append(mismatches, MismatchDurability)
	}

	if requested.Deadline.Period > 0 {
		if offered.Deadline.Period == 0 || offered.Deadline.Period > requested.Deadline.Period {
			mismatches = append(mismatches, MismatchDeadline)
		}
	}

	if requested.LatencyBudget.Duration > 0 && requested.LatencyBudget.Duration < offered.LatencyBudget.Duration {
		mismatches = append(mismatches, MismatchLatencyBudget)
	}

	if requested.Liveliness.LeaseDuration > 0 {
		tooWeakKind := offered.Liveliness.Kind > requested.Liveliness.Kind
		tooSlow := offered.Liveliness.LeaseDuration > requested.Liveliness.LeaseDuration
		if tooWeakKind || tooSlow {
			mismatches = append(mismatches, MismatchLiveliness)
		}
	}

	if offered.Ownership.Kind != requested.Ownership.Kind {
		mismatches = append(mismatches, MismatchOwnership)
	}

	if !partitionsOverlap(offered.Partition, requested.Partition) {
		mismatches = append(mismatches, MismatchPartition)
	}

	return mismatches
}

// partitionsOverlap reports whether two endpoints share a partition. Two
// endpoints with no partitions configured are both implicitly members of
// the empty-string default partition and therefore match.
func partitionsOverlap(a, b Partition) bool {
	if len(a.Names) == 0 && len(b.Names) == 0 {
		return true
	}
	an, bn := a.Names, b.Names
	if len(an) == 0 {
		an = []string{""}
	}
	if len(bn) == 0 {
		bn = []string{""}
	}
	for _, x := range an {
		for _, y := range bn {
			if globMatch(x, y) {
				return true
			}
		}
	}
	return false
}

// globMatch reports whether a and b match, treating either as a
// filepath.Match-style glob pattern against the other.
func globMatch(a, b string) bool {
	if a == b {
		return true
	}
	if ok, err := filepath.Match(a, b); err == nil && ok {
		return true
	}
	if ok, err := filepath.Match(b, a); err == nil && ok {
		return true
	}
	return false
}
