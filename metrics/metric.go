// Package metrics provides a small Counter/Gauge/Averager abstraction. An
// Averager from NewAverager is backed by github.com/prometheus/client_golang
// behind the interface rather than exposing prometheus types directly;
// Counter and Gauge are plain in-memory values.
package metrics

import (
	"fmt"
	"sync"

	"github.com/hdds-io/hdds/internal/herr"
	"github.com/prometheus/client_golang/prometheus"
)

// Averager tracks a running average, e.g. per-sample latency.
type Averager interface {
	Observe(value float64)
	Read() float64
}

type averager struct {
	mu    sync.RWMutex
	sum   float64
	count float64

	promCount prometheus.Counter
	promSum   prometheus.Gauge
}

// NewAverager registers a count/sum prometheus pair under name and returns
// an Averager backed by them.
func NewAverager(name, help string, reg prometheus.Registerer) (Averager, error) {
	count := prometheus.NewCounter(prometheus.CounterOpts{
		Name: name + "_count",
		Help: "Total # of observations of " + help,
	})
	sum := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name + "_sum",
		Help: "Sum of " + help,
	})

	if err := reg.Register(count); err != nil {
		return nil, err
	}
	if err := reg.Register(sum); err != nil {
		return nil, err
	}

	return &averager{promCount: count, promSum: sum}, nil
}

// NewAveragerWithErrs returns an Averager, collecting any registration
// failure into errs rather than returning it, and falling back to a no-op
// Averager so callers never need a nil check.
func NewAveragerWithErrs(name, help string, reg prometheus.Registerer, errs *herr.Collector) Averager {
	a, err := NewAverager(name, help, reg)
	if err != nil {
		if errs != nil {
			errs.Add(err)
		}
		return &averager{}
	}
	return a
}

// Observe records one sample.
func (a *averager) Observe(value float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sum += value
	a.count++

	if a.promCount != nil {
		a.promCount.Inc()
	}
	if a.promSum != nil {
		a.promSum.Add(value)
	}
}

// Read returns the mean of every value observed so far, or 0 if none.
func (a *averager) Read() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.count == 0 {
		return 0
	}
	return a.sum / a.count
}

// Counter is a monotonically increasing count.
type Counter interface {
	Inc()
	Add(delta int64)
	Read() int64
}

type counter struct {
	mu    sync.RWMutex
	value int64
}

// NewCounter returns a Counter not backed by prometheus.
func NewCounter() Counter {
	return &counter{}
}

func (c *counter) Inc() { c.Add(1) }

func (c *counter) Add(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += delta
}

func (c *counter) Read() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Gauge is a value that can move up or down.
type Gauge interface {
	Set(value float64)
	Add(delta float64)
	Read() float64
}

type gauge struct {
	mu    sync.RWMutex
	value float64
}

// NewGauge returns a Gauge not backed by prometheus.
func NewGauge() Gauge {
	return &gauge{}
}

func (g *gauge) Set(value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = value
}

func (g *gauge) Add(delta float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value += delta
}

func (g *gauge) Read() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.value
}

// Registry is a named collection of counters, gauges and averagers, used
// by callers (such as DomainParticipant) that want string-keyed lookup instead of
// holding each metric's handle directly.
type Registry interface {
	NewCounter(name string) Counter
	NewGauge(name string) Gauge
	NewAverager(name string) Averager
	GetCounter(name string) (Counter, error)
	GetGauge(name string) (Gauge, error)
	GetAverager(name string) (Averager, error)
}

type registry struct {
	mu        sync.RWMutex
	counters  map[string]Counter
	gauges    map[string]Gauge
	averagers map[string]Averager
}

// NewRegistry returns an empty Registry.
func NewRegistry() Registry {
	return &registry{
		counters:  make(map[string]Counter),
		gauges:    make(map[string]Gauge),
		averagers: make(map[string]Averager),
	}
}

func (r *registry) NewCounter(name string) Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := NewCounter()
	r.counters[name] = c
	return c
}

func (r *registry) NewGauge(name string) Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := NewGauge()
	r.gauges[name] = g
	return g
}

func (r *registry) NewAverager(name string) Averager {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := &averager{}
	r.averagers[name] = a
	return a
}

func (r *registry) GetCounter(name string) (Counter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.counters[name]
	if !ok {
		return nil, fmt.Errorf("counter %q not found", name)
	}
	return c, nil
}

func (r *registry) GetGauge(name string) (Gauge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gauges[name]
	if !ok {
		return nil, fmt.Errorf("gauge %q not found", name)
	}
	return g, nil
}

func (r *registry) GetAverager(name string) (Averager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.averagers[name]
	if !ok {
		return nil, fmt.Errorf("averager %q not found", name)
	}
	return a, nil
}
