// Package discovery implements the RTPS Simple Discovery Protocol: SPDP participant announcement and liveliness, SEDP
// endpoint announcement, and the writer/reader matching rule. Layers on top
// of internal/registry for entity identity and
// internal/qosfsm.LivelinessTracker for lease bookkeeping rather than
// reimplementing membership tracking here.
package discovery

import (
	"sync"
	"time"

	"github.com/hdds-io/hdds/internal/guid"
	"github.com/hdds-io/hdds/internal/qosfsm"
	"github.com/hdds-io/hdds/utils/constants"
	"github.com/hdds-io/hdds/utils/version"
)

// ProtocolVersion is the RTPS wire protocol version this module speaks. An
// SPDP announcement carrying a different major version is from an
// incompatible implementation and is ignored rather than matched.
var ProtocolVersion = version.Semantic{Major: constants.ProtocolVersionMajor, Minor: constants.ProtocolVersionMinor}

// ParticipantData is the content of an SPDP announcement: enough for a
// remote participant to locate and start matching this one's endpoints.
type ParticipantData struct {
	GUID            guid.GUID
	DomainID        int32
	ProtocolVersion version.Semantic
	MetaUnicast     []string
	UserUnicast     []string
	LeaseDuration   time.Duration
}

// SPDPAgent tracks remote participants discovered via periodic best-effort
// multicast announcement, and fires OnDiscovered/OnLost as they appear and
// as their liveliness lease expires.
type SPDPAgent struct {
	mu      sync.Mutex
	period  time.Duration
	remote  map[guid.GUID]ParticipantData
	liveness *qosfsm.LivelinessTracker

	onDiscovered func(ParticipantData)
	onLost       func(guid.GUID)
}

// NewSPDPAgent returns an SPDPAgent configured with the announcement period
// (reported by Period; the agent itself sends nothing) that expects a
// refreshed announcement from each remote participant before its lease
// runs out.
func NewSPDPAgent(period time.Duration, onDiscovered func(ParticipantData), onLost func(guid.GUID)) *SPDPAgent {
	a := &SPDPAgent{
		period:       period,
		remote:       make(map[guid.GUID]ParticipantData),
		onDiscovered: onDiscovered,
		onLost:       onLost,
	}
	a.liveness = qosfsm.NewLivelinessTracker(
		func(g guid.GUID) { a.forget(g) },
		func(guid.GUID) {},
	)
	return a
}

// Period returns the announcement cadence this agent was configured with.
func (a *SPDPAgent) Period() time.Duration {
	return a.period
}

// ReceiveAnnouncement processes one SPDP DATA submessage. A participant
// seen for the first time fires OnDiscovered. An announcement from an
// incompatible major protocol version is dropped silently, the way a
// well-behaved RTPS implementation ignores vendors it cannot interoperate
// with rather than treating the mismatch as an error.
func (a *SPDPAgent) ReceiveAnnouncement(data ParticipantData, now time.Time) {
	if data.ProtocolVersion.Major != 0 && data.ProtocolVersion.Major != ProtocolVersion.Major {
		return
	}

	a.mu.Lock()
	_, known := a.remote[data.GUID]
	a.remote[data.GUID] = data
	a.mu.Unlock()

	a.liveness.Assert(data.GUID, now.Add(data.LeaseDuration))

	if !known && a.onDiscovered != nil {
		a.onDiscovered(data)
	}
}

// CheckLiveliness expires any remote participant whose lease has run out,
// called on a ticker at a cadence finer than the shortest lease in use.
func (a *SPDPAgent) CheckLiveliness(now time.Time) {
	a.liveness.CheckExpired(now)
}

func (a *SPDPAgent) forget(g guid.GUID) {
	a.mu.Lock()
	delete(a.remote, g)
	a.mu.Unlock()
	if a.onLost != nil {
		a.onLost(g)
	}
}

// Lookup returns the last-known announcement for a remote participant.
func (a *SPDPAgent) Lookup(g guid.GUID) (ParticipantData, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.remote[g]
	return d, ok
}

// Participants returns every currently-alive remote participant.
func (a *SPDPAgent) Participants() []ParticipantData {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ParticipantData, 0, len(a.remote))
	for _, d := range a.remote {
		out = append(out, d)
	}
	return out
}
