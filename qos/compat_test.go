package qos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCompatibleReliability(t *testing.T) {
	offered := Offered{Reliability: Reliability{Kind: BestEffort}}
	requested := Requested{Reliability: Reliability{Kind: Reliable}}
	require.Contains(t, Compatible(offered, requested), MismatchReliability)

	offered.Reliability.Kind = Reliable
	require.Empty(t, Compatible(offered, requested))
}

func TestCompatibleDurabilityRanking(t *testing.T) {
	offered := Offered{Durability: Durability{Kind: Volatile}}
	requested := Requested{Durability: Durability{Kind: TransientLocal}}
	require.Contains(t, Compatible(offered, requested), MismatchDurability)

	offered.Durability.Kind = Persistent
	require.NotContains(t, Compatible(offered, requested), MismatchDurability)
}

func TestCompatibleDeadline(t *testing.T) {
	offered := Offered{Deadline: Deadline{Period: 500 * time.Millisecond}}
	requested := Requested{Deadline: Deadline{Period: 100 * time.Millisecond}}
	require.Contains(t, Compatible(offered, requested), MismatchDeadline)

	requested.Deadline.Period = time.Second
	require.NotContains(t, Compatible(offered, requested), MismatchDeadline)
}

func TestCompatibleLatencyBudget(t *testing.T) {
	offered := Offered{LatencyBudget: LatencyBudget{Duration: 500 * time.Millisecond}}
	requested := Requested{LatencyBudget: LatencyBudget{Duration: 100 * time.Millisecond}}
	require.Contains(t, Compatible(offered, requested), MismatchLatencyBudget)

	requested.LatencyBudget.Duration = time.Second
	require.NotContains(t, Compatible(offered, requested), MismatchLatencyBudget)
}

func TestCompatibleLatencyBudgetZeroRequestMatchesAny(t *testing.T) {
	offered := Offered{LatencyBudget: LatencyBudget{Duration: time.Hour}}
	requested := Requested{}
	require.NotContains(t, Compatible(offered, requested), MismatchLatencyBudget)
}

func TestCompatibleLiveliness(t *testing.T) {
	offered := Offered{Liveliness: Liveliness{Kind: ManualByTopic, LeaseDuration: time.Second}}
	requested := Requested{Liveliness: Liveliness{Kind: Automatic, LeaseDuration: time.Second}}
	require.Contains(t, Compatible(offered, requested), MismatchLiveliness)

	requested.Liveliness.Kind = ManualByTopic
	require.NotContains(t, Compatible(offered, requested), MismatchLiveliness)
}

func TestCompatibleOwnershipMustMatchKind(t *testing.T) {
	offered := Offered{Ownership: Ownership{Kind: Exclusive}}
	requested := Requested{Ownership: Ownership{Kind: Shared}}
	require.Contains(t, Compatible(offered, requested), MismatchOwnership)
}

func TestCompatiblePartitionDefaultsOverlap(t *testing.T) {
	require.Empty(t, Compatible(Offered{}, Requested{}))
}

func TestCompatiblePartitionGlob(t *testing.T) {
	offered := Offered{Partition: Partition{Names: []string{"sensors/*"}}}
	requested := Requested{Partition: Partition{Names: []string{"sensors/temp"}}}
	require.Empty(t, Compatible(offered, requested))

	requested.Partition.Names = []string{"actuators/arm"}
	require.Contains(t, Compatible(offered, requested), MismatchPartition)
}
