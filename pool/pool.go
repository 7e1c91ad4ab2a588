// Package pool hands out the workers tasks execute on.
//
// A dynamic pool never blocks and creates workers on demand. A fixed pool creates at most
// capacity workers; Get blocks while all of them are in use, which bounds the number of
// tasks executing at the same time.
package pool

// Pool lends workers of type W.
type Pool[W any] interface {
	// Get checks out a worker, creating one if the pool allows it.
	Get() W

	// Put returns a worker obtained from Get.
	Put(W)
}
