package waitset

import (
	"testing"
	"time"

	"github.com/hdds-io/hdds/internal/herr"
	"github.com/stretchr/testify/require"
)

func TestWaitReturnsImmediatelyWhenAlreadyTriggered(t *testing.T) {
	ws := New()
	g := NewGuardCondition()
	g.Set(true)
	ws.Attach(g)

	triggered, err := ws.Wait(time.Second)
	require.NoError(t, err)
	require.Equal(t, []Condition{g}, triggered)
}

func TestWaitWakesOnGuardConditionSet(t *testing.T) {
	ws := New()
	g := NewGuardCondition()
	ws.Attach(g)

	done := make(chan []Condition, 1)
	go func() {
		triggered, err := ws.Wait(5 * time.Second)
		require.NoError(t, err)
		done <- triggered
	}()

	time.Sleep(20 * time.Millisecond)
	g.Set(true)

	select {
	case triggered := <-done:
		require.Equal(t, []Condition{g}, triggered)
	case <-time.After(time.Second):
		t.Fatal("Wait did not wake on guard condition")
	}
}

func TestWaitTimesOut(t *testing.T) {
	ws := New()
	g := NewGuardCondition()
	ws.Attach(g)

	_, err := ws.Wait(10 * time.Millisecond)
	require.Error(t, err)
	require.Equal(t, herr.Timeout, herr.CodeOf(err))
}

func TestAttachIsIdempotent(t *testing.T) {
	ws := New()
	g := NewGuardCondition()
	ws.Attach(g)
	ws.Attach(g)
	g.Set(true)
	triggered, err := ws.Wait(time.Second)
	require.NoError(t, err)
	require.Len(t, triggered, 1)
}

func TestDetachUnattachedFails(t *testing.T) {
	ws := New()
	g := NewGuardCondition()
	err := ws.Detach(g)
	require.Error(t, err)
	require.Equal(t, herr.PreconditionNotMet, herr.CodeOf(err))
}

func TestConcurrentWaitersRejected(t *testing.T) {
	ws := New()
	g := NewGuardCondition()
	ws.Attach(g)

	go ws.Wait(time.Second)
	time.Sleep(20 * time.Millisecond)

	_, err := ws.Wait(time.Millisecond)
	require.Error(t, err)
	require.Equal(t, herr.PreconditionNotMet, herr.CodeOf(err))
}

func TestDestroyInterruptsWaiter(t *testing.T) {
	ws := New()
	g := NewGuardCondition()
	ws.Attach(g)

	done := make(chan error, 1)
	go func() {
		_, err := ws.Wait(5 * time.Second)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	ws.Destroy()

	select {
	case err := <-done:
		require.Error(t, err)
		require.Equal(t, herr.Interrupted, herr.CodeOf(err))
	case <-time.After(time.Second):
		t.Fatal("Destroy did not interrupt waiter")
	}
}

func TestTriggeredOrderMatchesAttachmentOrder(t *testing.T) {
	ws := New()
	g1 := NewGuardCondition()
	g2 := NewGuardCondition()
	ws.Attach(g2)
	ws.Attach(g1)
	g1.Set(true)
	g2.Set(true)

	triggered, err := ws.Wait(time.Second)
	require.NoError(t, err)
	require.Equal(t, []Condition{g2, g1}, triggered)
}
