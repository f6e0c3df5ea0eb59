package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromEnvironmentDefaults(t *testing.T) {
	env, err := FromEnvironment()
	require.NoError(t, err)
	require.Equal(t, int32(0), env.DomainID)
	require.Equal(t, TransportUDPMulticast, env.Transport)
	require.Equal(t, 7400, env.DiscoveryPort())
	require.Equal(t, 7410, env.UserPort())
}

func TestFromEnvironmentDomainID(t *testing.T) {
	t.Setenv("HDDS_DOMAIN_ID", "3")
	env, err := FromEnvironment()
	require.NoError(t, err)
	require.Equal(t, int32(3), env.DomainID)
	require.Equal(t, 8150, env.DiscoveryPort())
}

func TestFromEnvironmentInvalidDomainID(t *testing.T) {
	t.Setenv("HDDS_DOMAIN_ID", "not-a-number")
	_, err := FromEnvironment()
	require.Error(t, err)
}

func TestFromEnvironmentInvalidTransport(t *testing.T) {
	t.Setenv("HDDS_TRANSPORT", "carrier-pigeon")
	_, err := FromEnvironment()
	require.Error(t, err)
}

func TestFromEnvironmentDSCP(t *testing.T) {
	t.Setenv("HDDS_DSCP", "46")
	env, err := FromEnvironment()
	require.NoError(t, err)
	require.Equal(t, 46, env.DSCP)

	t.Setenv("HDDS_DSCP", "200")
	_, err = FromEnvironment()
	require.Error(t, err)
}
