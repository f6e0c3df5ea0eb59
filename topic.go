package hdds

import (
	"github.com/hdds-io/hdds/internal/guid"
	"github.com/hdds-io/hdds/internal/registry"
)

// Topic is a (name, type-name) pairing shared by any number of writers and
// readers under one participant. Topics are not first-class
// entities on the wire; matching is by (topic-name, type-name, QoS) tuple
// (internal/discovery.Matches).
type Topic struct {
	participant *DomainParticipant
	rt          *registry.Topic
}

// GUID returns this topic's local registry identity.
func (t *Topic) GUID() guid.GUID {
	return t.rt.GUID()
}

// Name returns the topic name.
func (t *Topic) Name() string {
	return t.rt.Name
}

// TypeName returns the registered type name.
func (t *Topic) TypeName() string {
	return t.rt.TypeName
}
