package pool

import "sync"

type dynamic[W any] struct {
	p sync.Pool
}

// NewDynamic returns an uncapped pool. Get never blocks; idle workers may be
// dropped by the runtime and recreated with newFn.
func NewDynamic[W any](newFn func() W) Pool[W] {
	return &dynamic[W]{p: sync.Pool{New: func() any { return newFn() }}}
}

func (d *dynamic[W]) Get() W { return d.p.Get().(W) }

func (d *dynamic[W]) Put(w W) { d.p.Put(w) }
