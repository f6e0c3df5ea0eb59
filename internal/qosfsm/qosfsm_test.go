package qosfsm

import (
	"testing"
	"time"

	"github.com/hdds-io/hdds/internal/guid"
	"github.com/hdds-io/hdds/internal/keyhash"
	"github.com/stretchr/testify/require"
)

func writerGUID(b byte) guid.GUID {
	var g guid.GUID
	g.Prefix[0] = b
	return g
}

func instanceKey(b byte) keyhash.KeyHash {
	var k keyhash.KeyHash
	k[0] = b
	return k
}

func TestLivelinessTrackerReportsLossOnce(t *testing.T) {
	var lostCount int
	tr := NewLivelinessTracker(func(guid.GUID) { lostCount++ }, nil)
	w := writerGUID(1)
	now := time.Now()
	tr.Assert(w, now.Add(time.Second))

	tr.CheckExpired(now.Add(2 * time.Second))
	tr.CheckExpired(now.Add(3 * time.Second))
	require.Equal(t, 1, lostCount, "a lost writer is reported exactly once")
	require.False(t, tr.IsAlive(w))
}

func TestLivelinessTrackerReportsRecovery(t *testing.T) {
	var backCount int
	tr := NewLivelinessTracker(nil, func(guid.GUID) { backCount++ })
	w := writerGUID(1)
	now := time.Now()
	tr.Assert(w, now.Add(time.Millisecond))
	tr.CheckExpired(now.Add(time.Second))

	tr.Assert(w, now.Add(time.Hour))
	require.Equal(t, 1, backCount)
	require.True(t, tr.IsAlive(w))
}

func TestOwnershipArbiterHighestStrengthWins(t *testing.T) {
	a := NewOwnershipArbiter()
	inst := instanceKey(1)
	w1, w2 := writerGUID(1), writerGUID(2)

	require.True(t, a.Offer(inst, w1, 5))
	require.False(t, a.Offer(inst, w2, 3))

	owner, ok := a.Owner(inst)
	require.True(t, ok)
	require.Equal(t, w1, owner)

	require.True(t, a.Offer(inst, w2, 10))
	owner, _ = a.Owner(inst)
	require.Equal(t, w2, owner)
}

func TestOwnershipArbiterIncumbentWinsTie(t *testing.T) {
	a := NewOwnershipArbiter()
	inst := instanceKey(1)
	w1, w2 := writerGUID(1), writerGUID(2)

	a.Offer(inst, w1, 5)
	require.False(t, a.Offer(inst, w2, 5))
	owner, _ := a.Owner(inst)
	require.Equal(t, w1, owner)
}

func TestDeadlineWatchdogReportsMiss(t *testing.T) {
	var missed int
	d := NewDeadlineWatchdog(time.Second, func(keyhash.KeyHash) { missed++ })
	inst := instanceKey(1)
	now := time.Now()
	d.Touch(inst, now)

	d.Check(now.Add(500 * time.Millisecond))
	require.Equal(t, 0, missed)

	d.Check(now.Add(2 * time.Second))
	require.Equal(t, 1, missed)
}

func TestTimeBasedFilterDropsFastSamples(t *testing.T) {
	f := NewTimeBasedFilter(100 * time.Millisecond)
	inst := instanceKey(1)
	now := time.Now()

	require.True(t, f.Admit(inst, now))
	require.False(t, f.Admit(inst, now.Add(50*time.Millisecond)))
	require.True(t, f.Admit(inst, now.Add(150*time.Millisecond)))
}
