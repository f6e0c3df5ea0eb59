// Package constants collects the fixed numbers the wire protocol and
// transport mapping depend on, kept as a standalone package rather than
// scattered as magic numbers across the modules that use them.
package constants

import "time"

// ProtocolVersion is the RTPS protocol major.minor this module speaks.
const (
	ProtocolVersionMajor = 2
	ProtocolVersionMinor = 3
)

// VendorID identifies HDDS on the wire, in the unallocated range reserved
// for vendor-specific implementations.
var VendorID = [2]byte{0x01, 0xff}

// MaxDomainID is the largest domain id the discovery/user port formula
// supports without colliding with the ephemeral port range.
const MaxDomainID = 232

// MaxParticipantsPerHost bounds the participant-id pool that supplies the
// low byte of each participant's GUID prefix.
const MaxParticipantsPerHost = 120

// ParticipantIDSentinel marks "no participant id assigned"; it is never a
// valid allocated id.
const ParticipantIDSentinel = 0xff

// Default SPDP announcement cadence, used when no participant QoS
// overrides it.
const DefaultSPDPAnnouncementPeriod = 1 * time.Second

// DefaultHeartbeatPeriod is the default cadence a reliable writer sends
// HEARTBEAT submessages at, absent an explicit reliability QoS override.
const DefaultHeartbeatPeriod = 200 * time.Millisecond

// DefaultReassemblyTimeout bounds how long a partially-received fragmented
// sample is retained before being discarded.
const DefaultReassemblyTimeout = 5 * time.Second

// BuiltinTopicParticipant and the SEDP builtin topic names, per RTPS 2.3
// Annex A.
const (
	BuiltinTopicParticipant        = "DCPSParticipant"
	BuiltinTopicPublication        = "DCPSPublication"
	BuiltinTopicSubscription       = "DCPSSubscription"
)

// MaxUDPPayload is the largest RTPS message this module will assemble into
// a single UDP datagram before DATAFRAG fragmentation kicks in.
const MaxUDPPayload = 1472
