package transport

import (
	"context"
	"sync"

	"github.com/hdds-io/hdds/internal/herr"
)

// intraProcessHub routes datagrams between every IntraProcessTransport
// registered under the same domain, replacing a socket with a map of
// buffered Go channels.
type intraProcessHub struct {
	mu    sync.Mutex
	ports map[string]chan Datagram
}

var hubs sync.Map // domain id (int32) -> *intraProcessHub

func hubFor(domainID int32) *intraProcessHub {
	v, _ := hubs.LoadOrStore(domainID, &intraProcessHub{ports: make(map[string]chan Datagram)})
	return v.(*intraProcessHub)
}

// IntraProcessTransport is a Transport backed by a buffered channel per
// locator, scoped to a domain id the way every participant in the same
// process and domain shares one multicast group on UDP.
type IntraProcessTransport struct {
	hub     *intraProcessHub
	locator string
	inbox   chan Datagram
}

// NewIntraProcessTransport registers locator on domainID's hub and returns
// a Transport other intra-process participants in the same domain can send
// to by locator.
func NewIntraProcessTransport(domainID int32, locator string) *IntraProcessTransport {
	h := hubFor(domainID)
	inbox := make(chan Datagram, 256)

	h.mu.Lock()
	h.ports[locator] = inbox
	h.mu.Unlock()

	return &IntraProcessTransport{hub: h, locator: locator, inbox: inbox}
}

// Send delivers payload to locator's inbox, returning OUT_OF_RESOURCES if
// that inbox's buffer is full (the intra-process analogue of WOULD_BLOCK).
func (t *IntraProcessTransport) Send(ctx context.Context, locator string, payload []byte) error {
	t.hub.mu.Lock()
	dst, ok := t.hub.ports[locator]
	t.hub.mu.Unlock()
	if !ok {
		return herr.New(herr.NotFound, "no intra-process participant registered at locator %q", locator)
	}

	select {
	case dst <- Datagram{Locator: t.locator, Payload: payload}:
		return nil
	default:
		return herr.New(herr.OutOfResources, "intra-process inbox for %q is full", locator)
	}
}

// Receive blocks until a datagram is delivered or ctx is cancelled.
func (t *IntraProcessTransport) Receive(ctx context.Context) (Datagram, error) {
	select {
	case d := <-t.inbox:
		return d, nil
	case <-ctx.Done():
		return Datagram{}, ctx.Err()
	}
}

// LocalLocator returns this transport's registered locator.
func (t *IntraProcessTransport) LocalLocator() string {
	return t.locator
}

// Close unregisters this transport from its domain hub.
func (t *IntraProcessTransport) Close() error {
	t.hub.mu.Lock()
	delete(t.hub.ports, t.locator)
	t.hub.mu.Unlock()
	return nil
}
