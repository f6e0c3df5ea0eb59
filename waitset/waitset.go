package waitset

import (
	"sync"
	"time"

	"github.com/hdds-io/hdds/internal/herr"
)

// WaitSet blocks a single goroutine until one or more attached conditions
// trigger, or until a timeout elapses. Conditions are evaluated in
// attachment order and Wait reports the triggered subset in that same
// order, confirmed against
// original_source/sdk/c/tests/waitset_demo.c.
type WaitSet struct {
	mu         sync.Mutex
	order      []Condition
	attached   map[Condition]bool
	wake       chan struct{}
	waiting    bool
	destroyed  bool
}

// New returns an empty WaitSet.
func New() *WaitSet {
	return &WaitSet{
		attached: make(map[Condition]bool),
		wake:     make(chan struct{}, 1),
	}
}

// Attach adds cond to the set this WaitSet evaluates. Attaching a
// condition already attached is a no-op.
func (w *WaitSet) Attach(cond Condition) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.attached[cond] {
		return
	}
	w.attached[cond] = true
	w.order = append(w.order, cond)

	switch c := cond.(type) {
	case *GuardCondition:
		c.setNotify(w.signal)
	case *StatusCondition:
		c.setNotify(w.signal)
	}
}

// Detach removes cond. Detaching a condition that was never attached
// returns PRECONDITION_NOT_MET.
func (w *WaitSet) Detach(cond Condition) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.attached[cond] {
		return herr.New(herr.PreconditionNotMet, "condition is not attached to this WaitSet")
	}
	delete(w.attached, cond)
	for i, c := range w.order {
		if c == cond {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	switch c := cond.(type) {
	case *GuardCondition:
		c.setNotify(nil)
	case *StatusCondition:
		c.setNotify(nil)
	}
	return nil
}

// signal wakes a goroutine blocked in Wait; it is safe to call from any
// goroutine and from within a Condition's own trigger path.
func (w *WaitSet) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Notify is the equivalent of signal for conditions this WaitSet cannot
// subscribe to directly, such as a ReadCondition whose underlying reader
// just admitted a new sample. Callers that mutate state a ReadCondition
// depends on should call Notify afterward.
func (w *WaitSet) Notify() {
	w.signal()
}

// Wait blocks until at least one attached condition is triggered or
// timeout elapses (zero means wait forever), returning the triggered
// subset in attachment order. Only one goroutine may call Wait at a time;
// a concurrent call returns PRECONDITION_NOT_MET. Destroying the WaitSet
// while a call is blocked returns INTERRUPTED to that call.
func (w *WaitSet) Wait(timeout time.Duration) ([]Condition, error) {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return nil, herr.New(herr.AlreadyDeleted, "WaitSet has been destroyed")
	}
	if w.waiting {
		w.mu.Unlock()
		return nil, herr.New(herr.PreconditionNotMet, "WaitSet already has a waiter")
	}
	w.waiting = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.waiting = false
		w.mu.Unlock()
	}()

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		if triggered, any := w.evaluate(); any {
			return triggered, nil
		}

		w.mu.Lock()
		destroyed := w.destroyed
		w.mu.Unlock()
		if destroyed {
			return nil, herr.New(herr.Interrupted, "WaitSet was destroyed while waiting")
		}

		select {
		case <-w.wake:
			continue
		case <-deadline:
			return nil, herr.New(herr.Timeout, "WaitSet.Wait timed out with no condition triggered")
		}
	}
}

// evaluate returns the currently triggered conditions in attachment order.
func (w *WaitSet) evaluate() ([]Condition, bool) {
	w.mu.Lock()
	order := append([]Condition(nil), w.order...)
	w.mu.Unlock()

	var out []Condition
	for _, c := range order {
		if c.Triggered() {
			out = append(out, c)
		}
	}
	return out, len(out) > 0
}

// Destroy releases any goroutine blocked in Wait with INTERRUPTED.
func (w *WaitSet) Destroy() {
	w.mu.Lock()
	w.destroyed = true
	w.mu.Unlock()
	w.signal()
}
