package codec

import (
	"math"

	"github.com/hdds-io/hdds/internal/herr"
)

// Reader deserializes values from a fixed byte slice using CDR v2
// little-endian decoding with the same natural-size alignment Writer
// applies. A Reader never copies or retains the slice beyond reading from
// it; the caller owns its lifetime.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader over buf starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// ReadHeader consumes and validates the 4-byte CDR2LE encapsulation
// header.
func (r *Reader) ReadHeader() error {
	id, err := r.readUint16Unaligned()
	if err != nil {
		return err
	}
	if EncapsulationID(id) != CDR2LE {
		return errBadEncapsulation(id)
	}
	if _, err := r.take(2); err != nil {
		return err
	}
	return nil
}

func (r *Reader) readUint16Unaligned() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, herr.New(herr.BadParameter, "CDR buffer truncated: need %d bytes at offset %d, have %d total", n, r.pos, len(r.buf))
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) align(n int) {
	rem := r.pos % n
	if rem != 0 {
		r.pos += n - rem
	}
}

// ReadBool reads a 1-byte boolean.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.take(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// ReadByte reads a single unaligned byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBytes reads n raw bytes with no alignment.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadInt16 reads a 2-byte aligned signed integer.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint16 reads a 2-byte aligned unsigned integer.
func (r *Reader) ReadUint16() (uint16, error) {
	r.align(2)
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadInt32 reads a 4-byte aligned signed integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint32 reads a 4-byte aligned unsigned integer.
func (r *Reader) ReadUint32() (uint32, error) {
	r.align(4)
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// ReadInt64 reads an 8-byte aligned signed integer.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadUint64 reads an 8-byte aligned unsigned integer.
func (r *Reader) ReadUint64() (uint64, error) {
	r.align(8)
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// ReadFloat32 reads a 4-byte aligned IEEE-754 single-precision float.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads an 8-byte aligned IEEE-754 double-precision float.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadString reads a CDR string: a 4-byte length (including the NUL
// terminator) followed by that many bytes, the last of which is dropped.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", herr.New(herr.BadParameter, "CDR string length must include a NUL terminator, got 0")
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b[:n-1]), nil
}

// ReadSequenceLen reads the 4-byte element count preceding a sequence.
func (r *Reader) ReadSequenceLen() (int, error) {
	n, err := r.ReadUint32()
	return int(n), err
}

// ReadOptionalPresence reads the presence flag preceding an optional
// member's value.
func (r *Reader) ReadOptionalPresence() (bool, error) {
	return r.ReadBool()
}
