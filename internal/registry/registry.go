// Package registry implements the entity registry: participant/writer/reader/topic lifecycle, GUID
// allocation and lookup, and the all-or-nothing construction and ordered
// teardown invariants. Built around a mutex-protected map keyed by id,
// with Add/Remove and bulk lookups.
package registry

import (
	"sync"

	"github.com/hdds-io/hdds/internal/guid"
	"github.com/hdds-io/hdds/internal/herr"
	"github.com/hdds-io/hdds/utils/set"
)

// EntityKind discriminates the four kinds of registered entity.
type EntityKind int

const (
	KindParticipant EntityKind = iota
	KindTopic
	KindWriter
	KindReader
)

// Entity is the common shape every registered object satisfies; concrete
// participant/writer/reader/topic types embed entityBase (below) to get it
// for free.
type Entity interface {
	GUID() guid.GUID
	Kind() EntityKind
	ParticipantGUID() guid.GUID
}

type entityBase struct {
	guid            guid.GUID
	kind            EntityKind
	participantGUID guid.GUID
}

func (e *entityBase) GUID() guid.GUID               { return e.guid }
func (e *entityBase) Kind() EntityKind               { return e.kind }
func (e *entityBase) ParticipantGUID() guid.GUID     { return e.participantGUID }

// Participant is the registered record for a domain participant: its
// identity and the guard condition that fires whenever the entity graph
// rooted at it changes.
type Participant struct {
	entityBase

	DomainID int32

	mu        sync.Mutex
	entityIDs *guid.EntityIDAllocator
	onChange  func()
}

// NextEntityID allocates the next sequential user entity id for an
// endpoint created under this participant.
func (p *Participant) NextEntityID(kind byte) guid.EntityID {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entityIDs == nil {
		p.entityIDs = guid.NewEntityIDAllocator()
	}
	return p.entityIDs.Next(kind)
}

// OnChange installs the callback fired whenever this participant's entity
// graph changes, backing the public API's graph guard condition.
func (p *Participant) OnChange(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

func (p *Participant) notifyChange() {
	p.mu.Lock()
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Topic is a registered topic: a name/type pairing shared by any number of
// writers and readers.
type Topic struct {
	entityBase

	Name     string
	TypeName string
}

// Endpoint is a registered writer or reader.
type Endpoint struct {
	entityBase

	TopicGUID guid.GUID
}

// Registry is the entity table of one participant factory. One Registry
// instance backs every participant that factory creates; entities are partitioned by
// participant GUID for destruction ordering but share a single GUID
// lookup table, the way one manager can index several independent sets
// of members behind a single lookup.
type Registry struct {
	mu sync.RWMutex

	participants map[guid.GUID]*Participant
	topics       map[guid.GUID]*Topic
	writers      map[guid.GUID]*Endpoint
	readers      map[guid.GUID]*Endpoint

	// childrenOf indexes every entity GUID owned (directly or
	// transitively) by a participant, for ordered teardown.
	childrenOf map[guid.GUID]*set.Set[guid.GUID]

	participantIDs *participantIDPool
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		participants:   make(map[guid.GUID]*Participant),
		topics:         make(map[guid.GUID]*Topic),
		writers:        make(map[guid.GUID]*Endpoint),
		readers:        make(map[guid.GUID]*Endpoint),
		childrenOf:     make(map[guid.GUID]*set.Set[guid.GUID]),
		participantIDs: newParticipantIDPool(),
	}
}

// CreateParticipant allocates a participant id and a prefix, registers the
// participant, and returns it. Returns OUT_OF_RESOURCES if the
// per-host participant-id pool (constants.MaxParticipantsPerHost) is
// exhausted.
func (r *Registry) CreateParticipant(hostPrefix guid.Prefix, domainID int32) (*Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pid, err := r.participantIDs.allocate()
	if err != nil {
		return nil, err
	}

	prefix := hostPrefix
	prefix[11] = pid
	g := guid.New(prefix, guid.EntityIDParticipant)

	if _, exists := r.participants[g]; exists {
		r.participantIDs.release(pid)
		return nil, herr.New(herr.AlreadyDeleted, "participant GUID %s already registered", g)
	}

	p := &Participant{
		entityBase: entityBase{guid: g, kind: KindParticipant, participantGUID: g},
		DomainID:   domainID,
	}
	r.participants[g] = p
	s := set.NewSet[guid.GUID](0)
	r.childrenOf[g] = &s
	return p, nil
}

// LookupByGUID returns the registered entity with the given GUID, or
// (nil, false) if none exists.
func (r *Registry) LookupByGUID(g guid.GUID) (Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.participants[g]; ok {
		return p, true
	}
	if t, ok := r.topics[g]; ok {
		return t, true
	}
	if w, ok := r.writers[g]; ok {
		return w, true
	}
	if rd, ok := r.readers[g]; ok {
		return rd, true
	}
	return nil, false
}

// CreateTopic registers a new topic owned by participant.
func (r *Registry) CreateTopic(participant guid.GUID, entity guid.EntityID, name, typeName string) (*Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participant]
	if !ok {
		return nil, herr.New(herr.PreconditionNotMet, "unknown participant %s", participant)
	}

	g := guid.New(participant.Prefix, entity)
	t := &Topic{
		entityBase: entityBase{guid: g, kind: KindTopic, participantGUID: participant},
		Name:       name,
		TypeName:   typeName,
	}
	r.topics[g] = t
	r.childrenOf[participant].Add(g)
	p.notifyChange()
	return t, nil
}

// CreateEndpoint registers a new writer or reader owned by participant,
// attached to topic.
func (r *Registry) CreateEndpoint(participant guid.GUID, entity guid.EntityID, kind EntityKind, topic guid.GUID) (*Endpoint, error) {
	if kind != KindWriter && kind != KindReader {
		return nil, herr.New(herr.BadParameter, "CreateEndpoint: kind must be writer or reader")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participant]
	if !ok {
		return nil, herr.New(herr.PreconditionNotMet, "unknown participant %s", participant)
	}
	if _, ok := r.topics[topic]; !ok {
		return nil, herr.New(herr.PreconditionNotMet, "unknown topic %s", topic)
	}

	g := guid.New(participant.Prefix, entity)
	e := &Endpoint{
		entityBase: entityBase{guid: g, kind: kind, participantGUID: participant},
		TopicGUID:  topic,
	}

	switch kind {
	case KindWriter:
		if _, exists := r.writers[g]; exists {
			return nil, herr.New(herr.AlreadyDeleted, "writer GUID %s already registered", g)
		}
		r.writers[g] = e
	case KindReader:
		if _, exists := r.readers[g]; exists {
			return nil, herr.New(herr.AlreadyDeleted, "reader GUID %s already registered", g)
		}
		r.readers[g] = e
	}
	r.childrenOf[participant].Add(g)
	p.notifyChange()
	return e, nil
}

// DestroyEndpoint removes a writer or reader. It is idempotent-unsafe by
// design: destroying an already-destroyed GUID returns
// PRECONDITION_NOT_MET, since operations on a destroyed entity always do.
func (r *Registry) DestroyEndpoint(participant, g guid.GUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.writers[g]; ok {
		delete(r.writers, g)
	} else if _, ok := r.readers[g]; ok {
		delete(r.readers, g)
	} else {
		return herr.New(herr.PreconditionNotMet, "endpoint %s is not registered", g)
	}
	if children, ok := r.childrenOf[participant]; ok {
		children.Remove(g)
	}
	if p, ok := r.participants[participant]; ok {
		p.notifyChange()
	}
	return nil
}

// DestroyTopic removes a topic. PRECONDITION_NOT_MET if any writer or
// reader still references it, matching DDS's delete_topic contract.
func (r *Registry) DestroyTopic(participant, g guid.GUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.topics[g]; !ok {
		return herr.New(herr.PreconditionNotMet, "topic %s is not registered", g)
	}
	for _, w := range r.writers {
		if w.TopicGUID == g {
			return herr.New(herr.PreconditionNotMet, "topic %s still has a writer attached", g)
		}
	}
	for _, rd := range r.readers {
		if rd.TopicGUID == g {
			return herr.New(herr.PreconditionNotMet, "topic %s still has a reader attached", g)
		}
	}
	delete(r.topics, g)
	if children, ok := r.childrenOf[participant]; ok {
		children.Remove(g)
	}
	if p, ok := r.participants[participant]; ok {
		p.notifyChange()
	}
	return nil
}

// DestroyParticipant tears down a participant and everything it owns, in
// dependency order: readers, then writers, then topics (publishers and
// subscribers are not modeled as separate entities — see DESIGN.md), then
// the participant itself.
func (r *Registry) DestroyParticipant(g guid.GUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[g]
	if !ok {
		return herr.New(herr.PreconditionNotMet, "participant %s is not registered", g)
	}

	children := r.childrenOf[g]
	var readers, writers, topics []guid.GUID
	for _, child := range children.List() {
		switch {
		case r.readers[child] != nil:
			readers = append(readers, child)
		case r.writers[child] != nil:
			writers = append(writers, child)
		case r.topics[child] != nil:
			topics = append(topics, child)
		}
	}

	for _, rg := range readers {
		delete(r.readers, rg)
	}
	for _, wg := range writers {
		delete(r.writers, wg)
	}
	for _, tg := range topics {
		delete(r.topics, tg)
	}

	delete(r.childrenOf, g)
	delete(r.participants, g)
	r.participantIDs.release(p.entityBase.guid.Prefix[11])
	return nil
}

// Entities returns every entity currently owned by participant, used to
// implement the public API's graph-guard-condition-triggered enumeration.
func (r *Registry) Entities(participant guid.GUID) []Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	children, ok := r.childrenOf[participant]
	if !ok {
		return nil
	}
	out := make([]Entity, 0, children.Len())
	for _, g := range children.List() {
		if t, ok := r.topics[g]; ok {
			out = append(out, t)
		} else if w, ok := r.writers[g]; ok {
			out = append(out, w)
		} else if rd, ok := r.readers[g]; ok {
			out = append(out, rd)
		}
	}
	return out
}
