package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	w := NewWriter(16)
	w.WriteHeader()
	w.WriteInt32(42)

	r := NewReader(w.Bytes())
	require.NoError(t, r.ReadHeader())
	v, err := r.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(42), v)
}

func TestHeaderRejectsUnknownEncapsulation(t *testing.T) {
	buf := []byte{0xff, 0xff, 0, 0}
	r := NewReader(buf)
	require.Error(t, r.ReadHeader())
}

func TestPrimitiveRoundTrip(t *testing.T) {
	w := NewWriter(64)
	w.WriteHeader()
	w.WriteBool(true)
	w.WriteByte(0xab)
	w.WriteInt16(-7)
	w.WriteUint32(0xdeadbeef)
	w.WriteInt64(-123456789012345)
	w.WriteFloat32(3.25)
	w.WriteFloat64(-2.5)

	r := NewReader(w.Bytes())
	require.NoError(t, r.ReadHeader())

	b, err := r.ReadBool()
	require.NoError(t, err)
	require.True(t, b)

	by, err := r.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xab), by)

	i16, err := r.ReadInt16()
	require.NoError(t, err)
	require.Equal(t, int16(-7), i16)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), u32)

	i64, err := r.ReadInt64()
	require.NoError(t, err)
	require.Equal(t, int64(-123456789012345), i64)

	f32, err := r.ReadFloat32()
	require.NoError(t, err)
	require.Equal(t, float32(3.25), f32)

	f64, err := r.ReadFloat64()
	require.NoError(t, err)
	require.Equal(t, -2.5, f64)

	require.Equal(t, 0, r.Remaining())
}

func TestStringRoundTrip(t *testing.T) {
	w := NewWriter(32)
	w.WriteHeader()
	w.WriteString("hello, dds")

	r := NewReader(w.Bytes())
	require.NoError(t, r.ReadHeader())
	s, err := r.ReadString()
	require.NoError(t, err)
	require.Equal(t, "hello, dds", s)
}

func TestEmptyStringRoundTrip(t *testing.T) {
	w := NewWriter(16)
	w.WriteHeader()
	w.WriteString("")

	r := NewReader(w.Bytes())
	require.NoError(t, r.ReadHeader())
	s, err := r.ReadString()
	require.NoError(t, err)
	require.Equal(t, "", s)
}

func TestSequenceRoundTrip(t *testing.T) {
	values := []int32{1, 2, 3, -4, 5}

	w := NewWriter(64)
	w.WriteHeader()
	w.WriteSequenceLen(len(values))
	for _, v := range values {
		w.WriteInt32(v)
	}

	r := NewReader(w.Bytes())
	require.NoError(t, r.ReadHeader())
	n, err := r.ReadSequenceLen()
	require.NoError(t, err)
	require.Equal(t, len(values), n)

	got := make([]int32, n)
	for i := range got {
		got[i], err = r.ReadInt32()
		require.NoError(t, err)
	}
	require.Equal(t, values, got)
}

func TestOptionalPresenceRoundTrip(t *testing.T) {
	w := NewWriter(32)
	w.WriteHeader()
	w.WriteOptionalPresence(true)
	w.WriteInt32(99)
	w.WriteOptionalPresence(false)

	r := NewReader(w.Bytes())
	require.NoError(t, r.ReadHeader())

	present, err := r.ReadOptionalPresence()
	require.NoError(t, err)
	require.True(t, present)
	v, err := r.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(99), v)

	present, err = r.ReadOptionalPresence()
	require.NoError(t, err)
	require.False(t, present)
}

func TestAlignmentInsertsPadding(t *testing.T) {
	w := NewWriter(16)
	w.WriteHeader()
	w.WriteByte(1)
	w.WriteInt32(7) // must be padded to a 4-byte boundary from buffer start

	// header(4) + byte(1) + pad(3) + int32(4) = 12
	require.Len(t, w.Bytes(), 12)
}

func TestTruncatedBufferErrors(t *testing.T) {
	w := NewWriter(8)
	w.WriteHeader()
	w.WriteInt16(5)

	r := NewReader(w.Bytes())
	require.NoError(t, r.ReadHeader())
	_, err := r.ReadInt16()
	require.NoError(t, err)
	_, err = r.ReadInt64()
	require.Error(t, err)
}
