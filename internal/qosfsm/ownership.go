package qosfsm

import (
	"sync"

	"github.com/hdds-io/hdds/internal/guid"
	"github.com/hdds-io/hdds/internal/keyhash"
)

// OwnershipArbiter tracks, per instance, which writer currently owns it
// under OWNERSHIP=EXCLUSIVE: the highest-strength writer
// wins, and the incumbent wins ties rather than being displaced by a new
// writer of equal strength.
type OwnershipArbiter struct {
	mu       sync.Mutex
	owner    map[keyhash.KeyHash]guid.GUID
	strength map[keyhash.KeyHash]int32
}

// NewOwnershipArbiter returns an empty arbiter.
func NewOwnershipArbiter() *OwnershipArbiter {
	return &OwnershipArbiter{
		owner:    make(map[keyhash.KeyHash]guid.GUID),
		strength: make(map[keyhash.KeyHash]int32),
	}
}

// Offer registers writer's strength for instance and returns whether
// writer is (or becomes) the instance's owner. The incumbent keeps
// ownership on a strength tie.
func (a *OwnershipArbiter) Offer(instance keyhash.KeyHash, writer guid.GUID, strength int32) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	cur, ok := a.owner[instance]
	if !ok {
		a.owner[instance] = writer
		a.strength[instance] = strength
		return true
	}
	if cur == writer {
		a.strength[instance] = strength
		return true
	}
	if strength > a.strength[instance] {
		a.owner[instance] = writer
		a.strength[instance] = strength
		return true
	}
	return false
}

// Owner returns the current owning writer of instance, if any.
func (a *OwnershipArbiter) Owner(instance keyhash.KeyHash) (guid.GUID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	w, ok := a.owner[instance]
	return w, ok
}

// Forget removes writer as a candidate owner of every instance, called
// when writer is deleted or loses liveliness. The next writer to Offer for
// a freed instance becomes its owner whatever its strength; a stronger
// writer takes over on its own next Offer.
func (a *OwnershipArbiter) Forget(writer guid.GUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for inst, w := range a.owner {
		if w == writer {
			delete(a.owner, inst)
			delete(a.strength, inst)
		}
	}
}
