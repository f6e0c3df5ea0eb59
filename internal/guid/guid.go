// Package guid implements the 16-byte RTPS entity identity: a 12-byte
// participant prefix followed by a 4-byte entity id.
package guid

import (
	"encoding/hex"
	"sync"
)

// Size is the length in bytes of a GUID.
const Size = 16

// PrefixSize is the length in bytes of a participant prefix.
const PrefixSize = 12

// EntityIDSize is the length in bytes of an entity id.
const EntityIDSize = 4

// Prefix identifies a participant: vendor id (2 bytes), host id (4 bytes),
// process id (4 bytes) and a random salt (2 bytes).
type Prefix [PrefixSize]byte

// EntityID identifies an endpoint or built-in entity within a participant.
type EntityID [EntityIDSize]byte

// Well-known entity-id kind bytes, the low byte of EntityID, per RTPS 2.3.
const (
	KindUnknown        byte = 0x00
	KindWriterWithKey   byte = 0x02
	KindWriterNoKey     byte = 0x03
	KindReaderNoKey     byte = 0x04
	KindReaderWithKey   byte = 0x07
	KindParticipant     byte = 0xc1
)

// Built-in entity ids for SPDP/SEDP, per RTPS 2.3 Annex A.
var (
	EntityIDParticipant          = EntityID{0x00, 0x00, 0x01, KindParticipant}
	EntityIDSPDPWriter            = EntityID{0x00, 0x01, 0x00, 0xc2}
	EntityIDSPDPReader            = EntityID{0x00, 0x01, 0x00, 0xc7}
	EntityIDSEDPPubWriter         = EntityID{0x00, 0x00, 0x03, 0xc2}
	EntityIDSEDPPubReader         = EntityID{0x00, 0x00, 0x03, 0xc7}
	EntityIDSEDPSubWriter         = EntityID{0x00, 0x00, 0x04, 0xc2}
	EntityIDSEDPSubReader         = EntityID{0x00, 0x00, 0x04, 0xc7}
)

// GUID is the globally-unique identity of a DDS entity.
type GUID struct {
	Prefix Prefix
	Entity EntityID
}

// Unknown is the zero-value GUID, used to represent "no entity".
var Unknown GUID

// New builds a GUID from a prefix and entity id.
func New(prefix Prefix, entity EntityID) GUID {
	return GUID{Prefix: prefix, Entity: entity}
}

// Bytes returns the 16-byte wire representation, prefix followed by entity id.
func (g GUID) Bytes() [Size]byte {
	var b [Size]byte
	copy(b[:PrefixSize], g.Prefix[:])
	copy(b[PrefixSize:], g.Entity[:])
	return b
}

// FromBytes parses a 16-byte wire representation into a GUID.
func FromBytes(b [Size]byte) GUID {
	var g GUID
	copy(g.Prefix[:], b[:PrefixSize])
	copy(g.Entity[:], b[PrefixSize:])
	return g
}

// IsUnknown reports whether g is the zero GUID.
func (g GUID) IsUnknown() bool {
	return g == Unknown
}

// Kind returns the entity-id kind byte (the low byte of the entity id).
func (g GUID) Kind() byte {
	return g.Entity[EntityIDSize-1]
}

// IsWriter reports whether the GUID addresses a data writer.
func (g GUID) IsWriter() bool {
	k := g.Kind()
	return k == KindWriterWithKey || k == KindWriterNoKey || k == 0xc2
}

// IsReader reports whether the GUID addresses a data reader.
func (g GUID) IsReader() bool {
	k := g.Kind()
	return k == KindReaderWithKey || k == KindReaderNoKey || k == 0xc7
}

// String renders the GUID as the conventional RTPS hex form,
// "<prefix-hex>.<entity-hex>".
func (g GUID) String() string {
	b := g.Bytes()
	return hex.EncodeToString(b[:PrefixSize]) + "." + hex.EncodeToString(b[PrefixSize:])
}

// EntityIDAllocator allocates sequential user entity ids within a
// participant.
type EntityIDAllocator struct {
	mu   sync.Mutex
	next uint32
}

// Next returns the next user entity id of the given kind byte. Entity ids
// 0x000001–0x0000ff are reserved for built-ins; user endpoints start at
// 0x000100 and count up, the usual convention for sequential handle
// allocation.
func (c *EntityIDAllocator) Next(kind byte) EntityID {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.next + 0x100
	c.next++
	return EntityID{byte(n >> 16), byte(n >> 8), byte(n), kind}
}

// NewEntityIDAllocator returns a fresh per-participant entity-id allocator.
func NewEntityIDAllocator() *EntityIDAllocator {
	return &EntityIDAllocator{}
}
