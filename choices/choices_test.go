package choices

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSampleStateStringAndValid(t *testing.T) {
	require.Equal(t, "READ", Read.String())
	require.Equal(t, "NOT_READ", NotRead.String())
	require.True(t, Read.Valid())
	require.False(t, SampleState(99).Valid())
}

func TestViewStateStringAndValid(t *testing.T) {
	require.Equal(t, "NEW", New.String())
	require.Equal(t, "NOT_NEW", NotNew.String())
	require.True(t, NotNew.Valid())
	require.False(t, ViewState(99).Valid())
}

func TestInstanceStateNotAlive(t *testing.T) {
	require.False(t, Alive.NotAlive())
	require.True(t, NotAliveDisposed.NotAlive())
	require.True(t, NotAliveNoWriters.NotAlive())
	require.False(t, InstanceState(99).Valid())
}
