// Package codec implements the CDR v2 little-endian wire encoding
//: primitive types, natural-size alignment
// relative to an encapsulation header, bounded and unbounded strings and
// sequences, and discriminated unions. The codec is stateless: a Writer or
// Reader holds only a byte slice and a cursor, and never retains a
// caller-supplied buffer past the call that provided it.
package codec

import "github.com/hdds-io/hdds/internal/herr"

// EncapsulationID identifies the representation that follows the 4-byte
// encapsulation header, per the XCDR2 scheme HDDS implements.
type EncapsulationID uint16

const (
	// CDR2LE is plain CDR2, little-endian. This module encodes and
	// decodes only this representation; any other header is rejected.
	CDR2LE EncapsulationID = 0x0001
)

// HeaderSize is the size in bytes of the encapsulation header every
// top-level encoded sample carries: a 2-byte representation id followed by
// 2 bytes of representation options (always zero here).
const HeaderSize = 4

// errBadEncapsulation builds the error returned when a buffer's encapsulation header
// does not identify CDR2LE.
func errBadEncapsulation(got uint16) error {
	return herr.New(herr.BadParameter, "unsupported CDR encapsulation id 0x%04x, want CDR2LE (0x%04x)", got, CDR2LE)
}
