// Package waitset implements DDS conditions and the WaitSet that blocks
// until one or more of them trigger: a context-cancellable condition
// variable one goroutine waits on while others signal it.
package waitset

import "sync"

// Condition is anything a WaitSet can wait on: a boolean that may flip
// from false to true (or back) as the system underneath it changes.
type Condition interface {
	// Triggered reports the condition's current boolean value.
	Triggered() bool
}

// GuardCondition is a condition the application sets and clears directly,
// independent of any entity.
type GuardCondition struct {
	mu        sync.Mutex
	triggered bool
	notify    func()
}

// NewGuardCondition returns a guard condition, initially untriggered.
func NewGuardCondition() *GuardCondition {
	return &GuardCondition{}
}

// Triggered implements Condition.
func (g *GuardCondition) Triggered() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.triggered
}

// Set sets the guard condition's trigger value, waking any WaitSet
// attached to it whenever the value flips to true.
func (g *GuardCondition) Set(value bool) {
	g.mu.Lock()
	wasFalse := !g.triggered && value
	g.triggered = value
	notify := g.notify
	g.mu.Unlock()
	if wasFalse && notify != nil {
		notify()
	}
}

func (g *GuardCondition) setNotify(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notify = fn
}

// StatusCondition tracks one entity's communication-status flags (e.g.
// "data available", "deadline missed"). The owning entity flips it via
// SetTriggered as events occur; applications never set it directly.
type StatusCondition struct {
	mu        sync.Mutex
	triggered bool
	notify    func()
}

// NewStatusCondition returns a status condition, initially untriggered.
func NewStatusCondition() *StatusCondition {
	return &StatusCondition{}
}

// Triggered implements Condition.
func (s *StatusCondition) Triggered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.triggered
}

// SetTriggered is called by the owning entity (reader, writer) when its
// status changes.
func (s *StatusCondition) SetTriggered(value bool) {
	s.mu.Lock()
	wasFalse := !s.triggered && value
	s.triggered = value
	notify := s.notify
	s.mu.Unlock()
	if wasFalse && notify != nil {
		notify()
	}
}

func (s *StatusCondition) setNotify(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

// ReadCondition triggers whenever its reader has at least one sample
// matching the sample/view/instance state masks it was created with.
// HasMatch is supplied by the reader implementation and re-evaluated on
// every Triggered call, so a ReadCondition reflects live cache contents.
type ReadCondition struct {
	HasMatch func() bool
}

// NewReadCondition returns a condition that triggers whenever hasMatch
// returns true.
func NewReadCondition(hasMatch func() bool) *ReadCondition {
	return &ReadCondition{HasMatch: hasMatch}
}

// Triggered implements Condition.
func (r *ReadCondition) Triggered() bool {
	return r.HasMatch != nil && r.HasMatch()
}
