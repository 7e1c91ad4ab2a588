package metrics

import (
	"sync"
	"sync/atomic"
)

// BasicProvider is an in-memory Provider. Instruments are created on first use and
// reused for the same name; their configuration is kept for Describe.
type BasicProvider struct {
	counters   registry[*BasicCounter]
	updowns    registry[*BasicUpDownCounter]
	histograms registry[*BasicHistogram]

	mu   sync.Mutex
	meta map[string]InstrumentConfig
}

// NewBasicProvider constructs a new BasicProvider.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{meta: make(map[string]InstrumentConfig)}
}

// registry is a name -> instrument map with create-once semantics.
type registry[I any] struct {
	m sync.Map
}

func (r *registry[I]) getOrCreate(name string, create func() I) (I, bool) {
	if v, ok := r.m.Load(name); ok {
		return v.(I), false
	}
	v, loaded := r.m.LoadOrStore(name, create())
	return v.(I), !loaded
}

func (r *registry[I]) lookup(name string) (I, bool) {
	v, ok := r.m.Load(name)
	if !ok {
		var zero I
		return zero, false
	}
	return v.(I), true
}

func (p *BasicProvider) remember(name string, opts []InstrumentOption) {
	var cfg InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	p.mu.Lock()
	p.meta[name] = cfg
	p.mu.Unlock()
}

// Counter returns the counter registered under name.
func (p *BasicProvider) Counter(name string, opts ...InstrumentOption) Counter {
	c, created := p.counters.getOrCreate(name, func() *BasicCounter { return &BasicCounter{} })
	if created {
		p.remember(name, opts)
	}
	return c
}

// UpDownCounter returns the up/down counter registered under name.
func (p *BasicProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	u, created := p.updowns.getOrCreate(name, func() *BasicUpDownCounter { return &BasicUpDownCounter{} })
	if created {
		p.remember(name, opts)
	}
	return u
}

// Histogram returns the histogram registered under name.
func (p *BasicProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	h, created := p.histograms.getOrCreate(name, func() *BasicHistogram { return &BasicHistogram{} })
	if created {
		p.remember(name, opts)
	}
	return h
}

// CounterValue returns the current value of the named counter, or 0 if it was never created.
func (p *BasicProvider) CounterValue(name string) int64 {
	if c, ok := p.counters.lookup(name); ok {
		return c.Snapshot()
	}
	return 0
}

// UpDownValue returns the current value of the named up/down counter, or 0 if it was never created.
func (p *BasicProvider) UpDownValue(name string) int64 {
	if u, ok := p.updowns.lookup(name); ok {
		return u.Snapshot()
	}
	return 0
}

// HistogramSnapshot returns the state of the named histogram.
func (p *BasicProvider) HistogramSnapshot(name string) (HistSnapshot, bool) {
	h, ok := p.histograms.lookup(name)
	if !ok {
		return HistSnapshot{}, false
	}
	return h.Snapshot(), true
}

// Describe returns the configuration the named instrument was created with.
func (p *BasicProvider) Describe(name string) (InstrumentConfig, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cfg, ok := p.meta[name]
	return cfg, ok
}

// BasicCounter is a thread-safe monotonic counter.
type BasicCounter struct {
	val atomic.Int64
}

func (c *BasicCounter) Add(n int64) { c.val.Add(n) }

// Snapshot returns the current value.
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

// BasicUpDownCounter is a thread-safe up/down counter.
type BasicUpDownCounter struct {
	val atomic.Int64
}

func (u *BasicUpDownCounter) Add(n int64) { u.val.Add(n) }

// Snapshot returns the current value.
func (u *BasicUpDownCounter) Snapshot() int64 { return u.val.Load() }

// BasicHistogram tracks count, sum, min and max of recorded values. It keeps no buckets.
type BasicHistogram struct {
	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 || v < h.min {
		h.min = v
	}
	if h.count == 0 || v > h.max {
		h.max = v
	}
	h.count++
	h.sum += v
}

// HistSnapshot is an immutable snapshot of a BasicHistogram.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
}

// Snapshot returns a copy of the histogram state at the time of call.
func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := HistSnapshot{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
	if h.count > 0 {
		s.Mean = h.sum / float64(h.count)
	}
	return s
}
