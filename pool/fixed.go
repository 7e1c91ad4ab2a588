package pool

import "sync"

type fixed[W any] struct {
	available chan W
	newFn     func() W

	mu       sync.Mutex
	created  uint
	capacity uint
}

// NewFixed returns a pool that creates at most capacity workers with newFn.
// Get blocks while every worker is checked out. A zero capacity blocks Get forever.
func NewFixed[W any](capacity uint, newFn func() W) Pool[W] {
	return &fixed[W]{
		available: make(chan W, capacity),
		newFn:     newFn,
		capacity:  capacity,
	}
}

func (p *fixed[W]) Get() W {
	select {
	case w := <-p.available:
		return w
	default:
	}

	p.mu.Lock()
	if p.created < p.capacity {
		p.created++
		p.mu.Unlock()
		return p.newFn()
	}
	p.mu.Unlock()

	return <-p.available
}

// Put returns w to the pool. It never blocks for workers obtained from Get.
func (p *fixed[W]) Put(w W) {
	p.available <- w
}
