package discovery

import (
	"sync"

	"github.com/hdds-io/hdds/internal/guid"
	"github.com/hdds-io/hdds/qos"
)

// EndpointKind distinguishes a publication from a subscription in an SEDP
// announcement.
type EndpointKind int

const (
	EndpointWriter EndpointKind = iota
	EndpointReader
)

// EndpointData is the content of an SEDP announcement for one writer or
// reader: enough for a remote participant to decide whether to match it.
type EndpointData struct {
	GUID     guid.GUID
	Kind     EndpointKind
	Topic    string
	TypeName string
	Offered  qos.Offered
	Requested qos.Requested
}

// SEDPAgent tracks every locally- and remotely-announced endpoint, reliably
// and transient-locally per RTPS convention (unlike SPDP, SEDP announcements
// are never dropped even if the matching participant is momentarily
// unreachable).
type SEDPAgent struct {
	mu        sync.Mutex
	endpoints map[guid.GUID]EndpointData

	onMatch   func(writer, reader EndpointData)
	onUnmatch func(writer, reader guid.GUID)

	matched map[guid.GUID]map[guid.GUID]bool
}

// NewSEDPAgent returns an empty SEDPAgent. onMatch fires once per newly
// formed writer/reader pair; onUnmatch fires once when either side of a
// matched pair is withdrawn.
func NewSEDPAgent(onMatch func(writer, reader EndpointData), onUnmatch func(writer, reader guid.GUID)) *SEDPAgent {
	return &SEDPAgent{
		endpoints: make(map[guid.GUID]EndpointData),
		matched:   make(map[guid.GUID]map[guid.GUID]bool),
		onMatch:   onMatch,
		onUnmatch: onUnmatch,
	}
}

// Announce registers or updates an endpoint's SEDP data and evaluates it
// against every endpoint of the opposite kind for a possible match.
func (a *SEDPAgent) Announce(data EndpointData) {
	a.mu.Lock()
	a.endpoints[data.GUID] = data
	var candidates []EndpointData
	for _, other := range a.endpoints {
		if other.Kind != data.Kind && other.GUID != data.GUID {
			candidates = append(candidates, other)
		}
	}
	a.mu.Unlock()

	for _, other := range candidates {
		a.evaluate(data, other)
	}
}

func (a *SEDPAgent) evaluate(x, y EndpointData) {
	var writer, reader EndpointData
	switch {
	case x.Kind == EndpointWriter && y.Kind == EndpointReader:
		writer, reader = x, y
	case x.Kind == EndpointReader && y.Kind == EndpointWriter:
		writer, reader = y, x
	default:
		return
	}

	if !Matches(writer, reader) {
		a.unmatch(writer.GUID, reader.GUID)
		return
	}

	a.mu.Lock()
	if a.matched[writer.GUID] == nil {
		a.matched[writer.GUID] = make(map[guid.GUID]bool)
	}
	alreadyMatched := a.matched[writer.GUID][reader.GUID]
	a.matched[writer.GUID][reader.GUID] = true
	a.mu.Unlock()

	if !alreadyMatched && a.onMatch != nil {
		a.onMatch(writer, reader)
	}
}

func (a *SEDPAgent) unmatch(writer, reader guid.GUID) {
	a.mu.Lock()
	was := a.matched[writer][reader]
	delete(a.matched[writer], reader)
	a.mu.Unlock()
	if was && a.onUnmatch != nil {
		a.onUnmatch(writer, reader)
	}
}

// Withdraw removes an endpoint entirely, unmatching it from every partner.
func (a *SEDPAgent) Withdraw(g guid.GUID) {
	a.mu.Lock()
	data, ok := a.endpoints[g]
	delete(a.endpoints, g)
	var partners []guid.GUID
	if ok {
		switch data.Kind {
		case EndpointWriter:
			for reader := range a.matched[g] {
				partners = append(partners, reader)
			}
			delete(a.matched, g)
		case EndpointReader:
			for writer, readers := range a.matched {
				if readers[g] {
					partners = append(partners, writer)
				}
			}
		}
	}
	a.mu.Unlock()

	if !ok {
		return
	}
	for _, p := range partners {
		if data.Kind == EndpointWriter {
			a.unmatch(g, p)
		} else {
			a.unmatch(p, g)
		}
	}
}

// Matches evaluates the full §4.2 matching rule: topic name equality, type
// name equality, and QoS compatibility. Partition overlap is
// folded into qos.Compatible.
func Matches(writer, reader EndpointData) bool {
	if writer.Topic != reader.Topic || writer.TypeName != reader.TypeName {
		return false
	}
	return len(qos.Compatible(writer.Offered, reader.Requested)) == 0
}
