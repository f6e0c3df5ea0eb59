package transport

import (
	"context"
	"testing"
	"time"

	"github.com/hdds-io/hdds/internal/herr"
	"github.com/stretchr/testify/require"
)

func TestIntraProcessSendReceive(t *testing.T) {
	domain := int32(7001)
	a := NewIntraProcessTransport(domain, "a")
	defer a.Close()
	b := NewIntraProcessTransport(domain, "b")
	defer b.Close()

	require.NoError(t, a.Send(context.Background(), "b", []byte("hello")))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d, err := b.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, "hello", string(d.Payload))
	require.Equal(t, "a", d.Locator)
}

func TestIntraProcessSendToUnknownLocator(t *testing.T) {
	domain := int32(7002)
	a := NewIntraProcessTransport(domain, "a")
	defer a.Close()

	err := a.Send(context.Background(), "nowhere", []byte("x"))
	require.Error(t, err)
	require.Equal(t, herr.NotFound, herr.CodeOf(err))
}

func TestIntraProcessReceiveCancelled(t *testing.T) {
	domain := int32(7003)
	a := NewIntraProcessTransport(domain, "a")
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Receive(ctx)
	require.Error(t, err)
}

func TestIntraProcessIsolatedByDomain(t *testing.T) {
	a := NewIntraProcessTransport(7004, "x")
	defer a.Close()
	b := NewIntraProcessTransport(7005, "x")
	defer b.Close()

	err := a.Send(context.Background(), "x", []byte("cross-domain"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = b.Receive(ctx)
	require.Error(t, err, "domain 7005's transport should not see domain 7004's traffic")
}

func TestIntraProcessCloseUnregisters(t *testing.T) {
	domain := int32(7006)
	a := NewIntraProcessTransport(domain, "a")
	require.NoError(t, a.Close())

	b := NewIntraProcessTransport(domain, "b")
	defer b.Close()
	err := b.Send(context.Background(), "a", []byte("x"))
	require.Error(t, err)
}
