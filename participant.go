package hdds

import (
	"crypto/rand"
	"os"
	"sync"
	"time"

	"github.com/hdds-io/hdds/config"
	"github.com/hdds-io/hdds/internal/discovery"
	"github.com/hdds-io/hdds/internal/guid"
	"github.com/hdds-io/hdds/internal/herr"
	"github.com/hdds-io/hdds/internal/hlog"
	"github.com/hdds-io/hdds/internal/registry"
	"github.com/hdds-io/hdds/internal/transport"
	"github.com/hdds-io/hdds/metrics"
	"github.com/hdds-io/hdds/qos"
	"github.com/hdds-io/hdds/utils/constants"
	"github.com/hdds-io/hdds/waitset"
	"go.uber.org/zap"
)

// DomainParticipantFactory is the application's single entry point: it
// owns the entity registry shared by every participant it creates and
// mints participants, mirroring
// the single create_participant entry point of the domain participant API.
type DomainParticipantFactory struct {
	reg *registry.Registry
	log hlog.Logger
}

// NewDomainParticipantFactory returns a factory logging at the level
// HDDS_LOG_LEVEL selects, falling back to a no-op logger if the logging
// backend fails to build.
func NewDomainParticipantFactory() *DomainParticipantFactory {
	log, err := hlog.New()
	if err != nil {
		log = hlog.NoLog
	}
	return &DomainParticipantFactory{
		reg: registry.New(),
		log: log,
	}
}

// hostPrefix builds this process's 12-byte GUID prefix: HDDS's vendor id,
// a host identifier derived at random, the OS process id, and a random salt.
func hostPrefix() guid.Prefix {
	var p guid.Prefix
	p[0], p[1] = constants.VendorID[0], constants.VendorID[1]

	host := make([]byte, 4)
	_, _ = rand.Read(host)
	copy(p[2:6], host)

	pid := os.Getpid()
	p[6] = byte(pid >> 24)
	p[7] = byte(pid >> 16)
	p[8] = byte(pid >> 8)
	p[9] = byte(pid)

	salt := make([]byte, 2)
	_, _ = rand.Read(salt)
	copy(p[10:12], salt)

	return p
}

// CreateParticipant creates a new DomainParticipant on domainID, configured
// with transportKind and qos. Construction is all-or-nothing: a failure at
// any step leaves nothing registered.
func (f *DomainParticipantFactory) CreateParticipant(domainID int32, transportKind config.TransportKind, dscp int, participantQoS config.DomainParticipantQoS) (*DomainParticipant, error) {
	if domainID < 0 || domainID > constants.MaxDomainID {
		return nil, herr.New(herr.BadParameter, "domain id %d out of range [0, %d]", domainID, constants.MaxDomainID)
	}

	rp, err := f.reg.CreateParticipant(hostPrefix(), domainID)
	if err != nil {
		return nil, err
	}

	env := config.Environment{DomainID: domainID, Transport: transportKind, DSCP: dscp}
	tp, err := newTransport(env, rp.GUID())
	if err != nil {
		_ = f.reg.DestroyParticipant(rp.GUID())
		return nil, err
	}

	p := &DomainParticipant{
		factory:    f,
		rp:         rp,
		qos:        participantQoS,
		transport:  tp,
		topics:     make(map[guid.GUID]*Topic),
		writers:    make(map[guid.GUID]*DataWriter),
		readers:    make(map[guid.GUID]*DataReader),
		graphGuard: waitset.NewGuardCondition(),
		metrics:    metrics.NewRegistry(),
	}

	p.spdp = discovery.NewSPDPAgent(constants.DefaultSPDPAnnouncementPeriod, p.onParticipantDiscovered, p.onParticipantLost)
	p.sedp = discovery.NewSEDPAgent(p.onEndpointMatched, p.onEndpointUnmatched)

	rp.OnChange(func() { p.graphGuard.Set(true) })

	f.log.Info("participant created", zap.String("guid", rp.GUID().String()), zap.Int32("domain", domainID))
	return p, nil
}

func newTransport(env config.Environment, participant guid.GUID) (transport.Transport, error) {
	switch env.Transport {
	case config.TransportIntraProcess, "":
		return transport.NewIntraProcessTransport(env.DomainID, participant.String()), nil
	case config.TransportUDPMulticast:
		return transport.NewUDPMulticastTransport(env.DiscoveryPort(), "239.255.0.1", env.DSCP)
	default:
		return nil, herr.New(herr.BadParameter, "unknown transport kind %q", env.Transport)
	}
}

// DomainParticipant owns a set of topics, writers and readers within one
// RTPS domain.
type DomainParticipant struct {
	factory *DomainParticipantFactory
	rp      *registry.Participant
	qos     config.DomainParticipantQoS
	transport transport.Transport

	spdp *discovery.SPDPAgent
	sedp *discovery.SEDPAgent

	mu      sync.Mutex
	topics  map[guid.GUID]*Topic
	writers map[guid.GUID]*DataWriter
	readers map[guid.GUID]*DataReader

	graphGuard *waitset.GuardCondition
	metrics    metrics.Registry
}

// GUID returns this participant's identity.
func (p *DomainParticipant) GUID() guid.GUID {
	return p.rp.GUID()
}

// GraphGuardCondition returns the guard condition that fires whenever this
// participant's owned entity graph changes.
func (p *DomainParticipant) GraphGuardCondition() *waitset.GuardCondition {
	return p.graphGuard
}

// CreateTopic registers a (name, typeName) pairing under this participant.
func (p *DomainParticipant) CreateTopic(name, typeName string) (*Topic, error) {
	entity := p.rp.NextEntityID(guid.KindUnknown)
	rt, err := p.factory.reg.CreateTopic(p.rp.GUID(), entity, name, typeName)
	if err != nil {
		return nil, err
	}
	t := &Topic{participant: p, rt: rt}

	p.mu.Lock()
	p.topics[rt.GUID()] = t
	p.mu.Unlock()
	return t, nil
}

// DestroyTopic removes topic; PRECONDITION_NOT_MET if any writer or reader
// still references it.
func (p *DomainParticipant) DestroyTopic(t *Topic) error {
	if err := p.factory.reg.DestroyTopic(p.rp.GUID(), t.rt.GUID()); err != nil {
		return err
	}
	p.mu.Lock()
	delete(p.topics, t.rt.GUID())
	p.mu.Unlock()
	return nil
}

// CreateWriter creates a DataWriter of topic under this participant with
// the given QoS.
func (p *DomainParticipant) CreateWriter(topic *Topic, q config.DataWriterQoS) (*DataWriter, error) {
	return newDataWriter(p, topic, guid.KindWriterWithKey, q)
}

// CreateReader creates a DataReader of topic under this participant with
// the given QoS.
func (p *DomainParticipant) CreateReader(topic *Topic, q config.DataReaderQoS) (*DataReader, error) {
	return newDataReader(p, topic, guid.KindReaderWithKey, q)
}

// EntityKind classifies a registered entity for LookupByGUID.
type EntityKind int

// The four kinds of entity the registry tracks.
const (
	EntityParticipant EntityKind = iota
	EntityTopic
	EntityWriter
	EntityReader
)

func entityKindOf(k registry.EntityKind) EntityKind {
	switch k {
	case registry.KindTopic:
		return EntityTopic
	case registry.KindWriter:
		return EntityWriter
	case registry.KindReader:
		return EntityReader
	default:
		return EntityParticipant
	}
}

// LookupByGUID reports whether g identifies a currently-registered entity
// (participant, topic, writer or reader) and, if so, its kind.
func (p *DomainParticipant) LookupByGUID(g guid.GUID) (EntityKind, bool) {
	e, ok := p.factory.reg.LookupByGUID(g)
	if !ok {
		return 0, false
	}
	return entityKindOf(e.Kind()), true
}

// DestroyWriter detaches and destroys w.
func (p *DomainParticipant) DestroyWriter(w *DataWriter) error {
	if err := p.factory.reg.DestroyEndpoint(p.rp.GUID(), w.guid); err != nil {
		return err
	}
	p.sedp.Withdraw(w.guid)
	p.mu.Lock()
	delete(p.writers, w.guid)
	p.mu.Unlock()
	return nil
}

// DestroyReader detaches and destroys r.
func (p *DomainParticipant) DestroyReader(r *DataReader) error {
	if err := p.factory.reg.DestroyEndpoint(p.rp.GUID(), r.guid); err != nil {
		return err
	}
	p.sedp.Withdraw(r.guid)
	p.mu.Lock()
	delete(p.readers, r.guid)
	p.mu.Unlock()
	return nil
}

// Delete tears down every endpoint and topic owned by this participant, in
// dependency order (readers and writers before topics), then the
// participant itself.
func (p *DomainParticipant) Delete() error {
	p.mu.Lock()
	readers := make([]*DataReader, 0, len(p.readers))
	for _, r := range p.readers {
		readers = append(readers, r)
	}
	writers := make([]*DataWriter, 0, len(p.writers))
	for _, w := range p.writers {
		writers = append(writers, w)
	}
	p.mu.Unlock()

	for _, r := range readers {
		_ = p.DestroyReader(r)
	}
	for _, w := range writers {
		_ = p.DestroyWriter(w)
	}
	return p.factory.reg.DestroyParticipant(p.rp.GUID())
}

func (p *DomainParticipant) onParticipantDiscovered(data discovery.ParticipantData) {
	p.factory.log.Debug("remote participant discovered", zap.String("guid", data.GUID.String()))
}

func (p *DomainParticipant) onParticipantLost(g guid.GUID) {
	p.factory.log.Debug("remote participant lost", zap.String("guid", g.String()))
}

func (p *DomainParticipant) onEndpointMatched(writer, reader discovery.EndpointData) {
	p.mu.Lock()
	w, wok := p.writers[writer.GUID]
	r, rok := p.readers[reader.GUID]
	p.mu.Unlock()

	if wok {
		w.onMatched(reader)
	}
	if rok {
		r.onMatched(writer)
	}
}

func (p *DomainParticipant) onEndpointUnmatched(writer, reader guid.GUID) {
	p.mu.Lock()
	w, wok := p.writers[writer]
	r, rok := p.readers[reader]
	p.mu.Unlock()

	if wok {
		w.onUnmatched(reader)
	}
	if rok {
		r.onUnmatched(writer)
	}
}

// tick drives the per-participant timers from a single shared clock tick:
// the SPDP lease check, then each writer's tick (heartbeat, DEADLINE) and
// each reader's tick (DEADLINE, LIVELINESS expiry). It sends no SPDP
// announcement; LIFESPAN expiry runs inside history-cache admission, not
// here.
func (p *DomainParticipant) tick(now time.Time) {
	p.spdp.CheckLiveliness(now)

	p.mu.Lock()
	writers := make([]*DataWriter, 0, len(p.writers))
	for _, w := range p.writers {
		writers = append(writers, w)
	}
	readers := make([]*DataReader, 0, len(p.readers))
	for _, r := range p.readers {
		readers = append(readers, r)
	}
	p.mu.Unlock()

	for _, w := range writers {
		w.tick(now)
	}
	for _, r := range readers {
		r.tick(now)
	}
}

// offeredOf derives the writer-matching view of a DataWriterQoS.
func offeredOf(q config.DataWriterQoS) qos.Offered {
	return qos.Offered{
		Reliability:   q.Reliability,
		Durability:    q.Durability,
		Deadline:      q.Deadline,
		LatencyBudget: q.LatencyBudget,
		Liveliness:    q.Liveliness,
		Ownership:     q.Ownership,
		Partition:     q.Partition,
	}
}

// requestedOf derives the reader-matching view of a DataReaderQoS.
func requestedOf(q config.DataReaderQoS) qos.Requested {
	return qos.Requested{
		Reliability:   q.Reliability,
		Durability:    q.Durability,
		Deadline:      q.Deadline,
		LatencyBudget: q.LatencyBudget,
		Liveliness:    q.Liveliness,
		Ownership:     q.Ownership,
		Partition:     q.Partition,
	}
}
