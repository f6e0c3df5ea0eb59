package keyhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type shapeSample struct {
	Color string `hdds:"key"`
	ID    int32  `hdds:"key"`
	X     int32
	Y     int32
}

type keylessSample struct {
	X int32
	Y int32
}

func TestOfIsDeterministic(t *testing.T) {
	a := shapeSample{Color: "RED", ID: 1, X: 10, Y: 20}
	b := shapeSample{Color: "RED", ID: 1, X: 999, Y: -5}

	ha, err := Of(a)
	require.NoError(t, err)
	hb, err := Of(b)
	require.NoError(t, err)
	require.Equal(t, ha, hb, "non-key fields must not affect the instance key-hash")
}

func TestOfDistinguishesKeys(t *testing.T) {
	a := shapeSample{Color: "RED", ID: 1}
	b := shapeSample{Color: "BLUE", ID: 1}

	ha, err := Of(a)
	require.NoError(t, err)
	hb, err := Of(b)
	require.NoError(t, err)
	require.NotEqual(t, ha, hb)
}

func TestOfKeylessTypeIsZero(t *testing.T) {
	h, err := Of(keylessSample{X: 1, Y: 2})
	require.NoError(t, err)
	require.True(t, h.IsZero())
}

func TestOfAcceptsPointer(t *testing.T) {
	s := &shapeSample{Color: "GREEN", ID: 7}
	h, err := Of(s)
	require.NoError(t, err)
	require.False(t, h.IsZero())
}

func TestOfFieldOrderMatters(t *testing.T) {
	type reversed struct {
		ID    int32  `hdds:"key"`
		Color string `hdds:"key"`
	}
	h1, err := Of(shapeSample{Color: "X", ID: 1})
	require.NoError(t, err)
	h2, err := Of(reversed{ID: 1, Color: "X"})
	require.NoError(t, err)
	require.NotEqual(t, h1, h2, "declaration order participates in the hash")
}
