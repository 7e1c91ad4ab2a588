package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type worker struct{ id int }

func TestFixedPool_TableDriven(t *testing.T) {
	tests := []struct {
		name     string
		capacity uint
		setup    func(p *fixed[*worker])
		run      func(t *testing.T, p *fixed[*worker])
		// bounds on newFn calls after run
		createdMin, createdMax int32
	}{
		{
			name:     "Get creates up to capacity, then blocks until Put",
			capacity: 2,
			run: func(t *testing.T, p *fixed[*worker]) {
				w1 := p.Get()
				w2 := p.Get()
				require.NotSame(t, w1, w2)

				gotCh := make(chan *worker, 1)
				go func() { gotCh <- p.Get() }()

				select {
				case <-gotCh:
					t.Fatalf("third Get should block until Put")
				case <-time.After(100 * time.Millisecond):
				}

				p.Put(w1)

				select {
				case got := <-gotCh:
					require.Same(t, w1, got)
				case <-time.After(time.Second):
					t.Fatalf("blocked Get did not resume after Put")
				}
			},
			createdMin: 2, createdMax: 2,
		},
		{
			name:     "Get reuses an available worker before creating one",
			capacity: 3,
			setup:    func(p *fixed[*worker]) { p.available <- &worker{id: 42} },
			run: func(t *testing.T, p *fixed[*worker]) {
				got := p.Get()
				require.Equal(t, 42, got.id)
			},
			createdMin: 0, createdMax: 0,
		},
		{
			name:     "Put then Get returns the same instance",
			capacity: 1,
			run: func(t *testing.T, p *fixed[*worker]) {
				w := p.Get()
				p.Put(w)
				require.Same(t, w, p.Get())
			},
			createdMin: 1, createdMax: 1,
		},
		{
			name:     "concurrent Get/Put never exceeds capacity",
			capacity: 5,
			run: func(t *testing.T, p *fixed[*worker]) {
				const goroutines = 20
				var (
					wg      sync.WaitGroup
					active  atomic.Int32
					maxSeen atomic.Int32
				)
				wg.Add(goroutines)
				for i := 0; i < goroutines; i++ {
					go func() {
						defer wg.Done()
						w := p.Get()
						n := active.Add(1)
						for {
							m := maxSeen.Load()
							if n <= m || maxSeen.CompareAndSwap(m, n) {
								break
							}
						}
						time.Sleep(5 * time.Millisecond)
						active.Add(-1)
						p.Put(w)
					}()
				}
				wg.Wait()
				require.LessOrEqual(t, maxSeen.Load(), int32(5))
			},
			createdMin: 1, createdMax: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var counter atomic.Int32
			newFn := func() *worker {
				return &worker{id: int(counter.Add(1))}
			}
			p := NewFixed(tt.capacity, newFn).(*fixed[*worker])
			if tt.setup != nil {
				tt.setup(p)
			}

			tt.run(t, p)

			created := counter.Load()
			require.GreaterOrEqual(t, created, tt.createdMin)
			require.LessOrEqual(t, created, tt.createdMax)
		})
	}
}

func TestDynamicPool_CreatesOnDemand(t *testing.T) {
	var counter atomic.Int32
	p := NewDynamic(func() *worker { return &worker{id: int(counter.Add(1))} })

	w1 := p.Get()
	w2 := p.Get()
	require.NotSame(t, w1, w2)
	require.EqualValues(t, 2, counter.Load())

	p.Put(w1)
	p.Put(w2)
}
