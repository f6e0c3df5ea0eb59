package registry

import (
	"github.com/hdds-io/hdds/internal/herr"
	"github.com/hdds-io/hdds/utils/constants"
)

// participantIDPool hands out the low byte of a participant's GUID prefix
// from a fixed pool (0 to constants.MaxParticipantsPerHost-1). Ports do
// not depend on it; they derive from the domain id alone.
type participantIDPool struct {
	used [constants.MaxParticipantsPerHost]bool
}

func newParticipantIDPool() *participantIDPool {
	return &participantIDPool{}
}

// allocate returns the lowest-numbered free participant id, or
// OUT_OF_RESOURCES if the pool is exhausted.
func (p *participantIDPool) allocate() (byte, error) {
	for i := range p.used {
		if !p.used[i] {
			p.used[i] = true
			return byte(i), nil
		}
	}
	return 0, herr.New(herr.OutOfResources, "participant-id pool exhausted (max %d participants per host)", constants.MaxParticipantsPerHost)
}

func (p *participantIDPool) release(id byte) {
	if int(id) < len(p.used) {
		p.used[id] = false
	}
}
