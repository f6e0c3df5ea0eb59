package discovery

import (
	"testing"
	"time"

	"github.com/hdds-io/hdds/internal/guid"
	"github.com/hdds-io/hdds/qos"
	"github.com/hdds-io/hdds/utils/version"
	"github.com/stretchr/testify/require"
)

func testGUID(b byte) guid.GUID {
	var prefix guid.Prefix
	prefix[0] = b
	return guid.New(prefix, guid.EntityIDParticipant)
}

func TestSPDPAgentDiscoversNewParticipantOnce(t *testing.T) {
	var discovered []guid.GUID
	a := NewSPDPAgent(time.Second, func(p ParticipantData) { discovered = append(discovered, p.GUID) }, nil)

	g := testGUID(1)
	now := time.Now()
	a.ReceiveAnnouncement(ParticipantData{GUID: g, LeaseDuration: time.Second}, now)
	a.ReceiveAnnouncement(ParticipantData{GUID: g, LeaseDuration: time.Second}, now.Add(time.Millisecond))

	require.Equal(t, []guid.GUID{g}, discovered)
}

func TestSPDPAgentIgnoresIncompatibleMajorVersion(t *testing.T) {
	var discovered []guid.GUID
	a := NewSPDPAgent(time.Second, func(p ParticipantData) { discovered = append(discovered, p.GUID) }, nil)

	g := testGUID(9)
	a.ReceiveAnnouncement(ParticipantData{
		GUID:            g,
		ProtocolVersion: version.Semantic{Major: ProtocolVersion.Major + 1},
		LeaseDuration:   time.Second,
	}, time.Now())

	require.Empty(t, discovered)
	_, ok := a.Lookup(g)
	require.False(t, ok)
}

func TestSPDPAgentExpiresOnMissedLease(t *testing.T) {
	var lost []guid.GUID
	a := NewSPDPAgent(time.Second, nil, func(g guid.GUID) { lost = append(lost, g) })

	g := testGUID(2)
	now := time.Now()
	a.ReceiveAnnouncement(ParticipantData{GUID: g, LeaseDuration: 10 * time.Millisecond}, now)

	_, ok := a.Lookup(g)
	require.True(t, ok)

	a.CheckLiveliness(now.Add(20 * time.Millisecond))
	require.Equal(t, []guid.GUID{g}, lost)

	_, ok = a.Lookup(g)
	require.False(t, ok)
}

func TestSEDPAgentMatchesCompatibleWriterReader(t *testing.T) {
	var matched [][2]guid.GUID
	a := NewSEDPAgent(func(w, r EndpointData) { matched = append(matched, [2]guid.GUID{w.GUID, r.GUID}) }, nil)

	writer := testGUID(10)
	reader := testGUID(20)

	a.Announce(EndpointData{
		GUID: writer, Kind: EndpointWriter, Topic: "Temperature", TypeName: "Sensor",
		Offered: qos.Offered{Reliability: qos.Reliability{Kind: qos.Reliable}},
	})
	a.Announce(EndpointData{
		GUID: reader, Kind: EndpointReader, Topic: "Temperature", TypeName: "Sensor",
		Requested: qos.Requested{Reliability: qos.Reliability{Kind: qos.Reliable}},
	})

	require.Len(t, matched, 1)
	require.Equal(t, writer, matched[0][0])
	require.Equal(t, reader, matched[0][1])
}

func TestSEDPAgentDoesNotMatchDifferentTopics(t *testing.T) {
	var matched int
	a := NewSEDPAgent(func(w, r EndpointData) { matched++ }, nil)

	a.Announce(EndpointData{GUID: testGUID(1), Kind: EndpointWriter, Topic: "A", TypeName: "T"})
	a.Announce(EndpointData{GUID: testGUID(2), Kind: EndpointReader, Topic: "B", TypeName: "T"})

	require.Zero(t, matched)
}

func TestSEDPAgentUnmatchesOnIncompatibleQoSUpdate(t *testing.T) {
	var matchCount, unmatchCount int
	a := NewSEDPAgent(
		func(w, r EndpointData) { matchCount++ },
		func(w, r guid.GUID) { unmatchCount++ },
	)

	writer := testGUID(1)
	reader := testGUID(2)

	a.Announce(EndpointData{GUID: writer, Kind: EndpointWriter, Topic: "A", TypeName: "T",
		Offered: qos.Offered{Reliability: qos.Reliability{Kind: qos.Reliable}}})
	a.Announce(EndpointData{GUID: reader, Kind: EndpointReader, Topic: "A", TypeName: "T",
		Requested: qos.Requested{Reliability: qos.Reliability{Kind: qos.Reliable}}})
	require.Equal(t, 1, matchCount)

	a.Announce(EndpointData{GUID: writer, Kind: EndpointWriter, Topic: "A", TypeName: "T",
		Offered: qos.Offered{Reliability: qos.Reliability{Kind: qos.BestEffort}}})
	require.Equal(t, 1, unmatchCount)
}

func TestSEDPAgentWithdrawUnmatches(t *testing.T) {
	var unmatchCount int
	a := NewSEDPAgent(nil, func(w, r guid.GUID) { unmatchCount++ })

	writer := testGUID(1)
	reader := testGUID(2)
	a.Announce(EndpointData{GUID: writer, Kind: EndpointWriter, Topic: "A", TypeName: "T"})
	a.Announce(EndpointData{GUID: reader, Kind: EndpointReader, Topic: "A", TypeName: "T"})

	a.Withdraw(writer)
	require.Equal(t, 1, unmatchCount)
}
