package pool

import "sync/atomic"

// fixed bounds the number of distinct worker values it ever creates to
// capacity; a Scheduler uses it when WithWorkerCount pins a fixed goroutine
// count, so worker-slot allocation is bounded for the scheduler's lifetime.
// It tracks inUse so the scheduler can report how much of that bound is
// actually occupied at any moment.
type fixed struct {
	available chan interface{}
	all       chan interface{}
	buf       chan interface{}
	newFn     func() interface{}
	inUse     int64
}

func NewFixed(capacity uint, newFn func() interface{}) Pool {
	return &fixed{
		available: make(chan interface{}, capacity),
		all:       make(chan interface{}, capacity),
		buf:       make(chan interface{}, 1024),
		newFn:     newFn,
	}
}

func (p *fixed) Get() interface{} {
	atomic.AddInt64(&p.inUse, 1)

	select {
	case el := <-p.available:
		return el

	case el := <-p.buf:
		return el

	default:
		var el interface{}

		if len(p.all) < cap(p.all) {
			el = p.newFn()
		} else {
			el = <-p.all
		}

		select {
		case p.all <- el:
		case p.buf <- el:
		default:
		}
		return el
	}
}

func (p *fixed) Put(el interface{}) {
	atomic.AddInt64(&p.inUse, -1)

	select {
	case p.available <- el:
	case p.all <- el:
	case p.buf <- el:
	default:
	}
}

func (p *fixed) InUse() uint { return uint(atomic.LoadInt64(&p.inUse)) }
