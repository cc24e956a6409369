// Package pool provides reusable worker-slot pools for the scheduler package:
// a scheduler with W concurrent goroutines recycles W worker values instead
// of allocating one per Tasklet.Call dispatch.
package pool

// Pool is an interface that defines methods on a pool of workers.
type Pool interface {
	// Get returns a worker from the pool.
	Get() interface{}

	// Put returns a worker back to the pool.
	Put(interface{})

	// InUse reports how many values are currently checked out via Get and
	// not yet returned via Put. Both Pool implementations keep it with an
	// atomic counter, so reading it never blocks.
	InUse() uint
}
