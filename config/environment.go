package config

import (
	"os"
	"strconv"

	"github.com/hdds-io/hdds/internal/herr"
)

// TransportKind selects how a participant moves bytes on the wire.
type TransportKind string

const (
	// TransportIntraProcess routes samples through an in-memory ring,
	// never touching a socket; useful for tests and single-process apps.
	TransportIntraProcess TransportKind = "intra-process"
	// TransportUDPMulticast speaks RTPS over UDP, using multicast for
	// discovery and unicast or multicast for user data.
	TransportUDPMulticast TransportKind = "udp-multicast"
)

// Environment is the process-level configuration read once at startup.
// There is no file format at the core; everything here comes
// from environment variables via os.LookupEnv.
type Environment struct {
	DomainID  int32
	Transport TransportKind
	LogLevel  string
	DSCP      int
}

// FromEnvironment reads HDDS_DOMAIN_ID, HDDS_TRANSPORT, HDDS_LOG_LEVEL and
// HDDS_DSCP, applying sensible defaults for anything unset.
func FromEnvironment() (Environment, error) {
	env := Environment{
		DomainID:  0,
		Transport: TransportUDPMulticast,
		LogLevel:  "info",
		DSCP:      0,
	}

	if v, ok := os.LookupEnv("HDDS_DOMAIN_ID"); ok {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 || n > 232 {
			return Environment{}, herr.New(herr.BadParameter, "HDDS_DOMAIN_ID must be an integer in [0, 232], got %q", v)
		}
		env.DomainID = int32(n)
	}

	if v, ok := os.LookupEnv("HDDS_TRANSPORT"); ok {
		switch TransportKind(v) {
		case TransportIntraProcess, TransportUDPMulticast:
			env.Transport = TransportKind(v)
		default:
			return Environment{}, herr.New(herr.BadParameter, "HDDS_TRANSPORT must be %q or %q, got %q", TransportIntraProcess, TransportUDPMulticast, v)
		}
	}

	if v, ok := os.LookupEnv("HDDS_LOG_LEVEL"); ok {
		env.LogLevel = v
	}

	if v, ok := os.LookupEnv("HDDS_DSCP"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 63 {
			return Environment{}, herr.New(herr.BadParameter, "HDDS_DSCP must be an integer in [0, 63], got %q", v)
		}
		env.DSCP = n
	}

	return env, nil
}

// DiscoveryPort returns the multicast SPDP port for the domain:
// discovery_port = 7400 + 250*domain_id.
func (e Environment) DiscoveryPort() int {
	return 7400 + 250*int(e.DomainID)
}

// UserPort returns the unicast user-data port for the domain:
// user_port = discovery_port + 10.
func (e Environment) UserPort() int {
	return e.DiscoveryPort() + 10
}
