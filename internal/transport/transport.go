// Package transport implements two wire transports: an in-memory
// intra-process ring for single-process use and tests, and a UDP
// multicast/unicast transport for real RTPS interop. Both satisfy a small
// send/receive Transport interface the rest of the stack codes against, never
// touching a raw socket directly.
package transport

import "context"

// Datagram is one inbound or outbound unit of wire bytes, addressed the
// way RTPS addresses submessages: by the destination/source locator string
// ("host:port" for UDP, a process-local channel id for intra-process).
type Datagram struct {
	Locator string
	Payload []byte
}

// Transport is the abstraction every RTPS-speaking component (discovery,
// reliability) sends and receives through, so they never depend on whether
// the underlying medium is a socket or an in-memory channel.
type Transport interface {
	// Send transmits payload to locator. Returns herr.OutOfResources
	// (WOULD_BLOCK) if the underlying medium's send buffer is full.
	Send(ctx context.Context, locator string, payload []byte) error
	// Receive blocks until a datagram arrives or ctx is cancelled.
	Receive(ctx context.Context) (Datagram, error)
	// LocalLocator returns the locator other participants should use to
	// reach this transport.
	LocalLocator() string
	// Close releases the transport's resources.
	Close() error
}
