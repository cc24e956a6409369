package pool

import (
	"sync"
	"sync/atomic"
)

// dynamic is an unbounded pool of workers, for a Scheduler that lets its
// goroutine count grow with the registered tasklet count instead of pinning
// one with WithWorkerCount. It wraps sync.Pool, which has no way to report
// how many values are currently checked out, so it layers its own inUse
// counter on top to satisfy Pool's InUse contract the same way fixed does.
type dynamic struct {
	underlying sync.Pool
	inUse      int64
}

func NewDynamic(newFn func() interface{}) Pool {
	return &dynamic{underlying: sync.Pool{New: newFn}}
}

func (p *dynamic) Get() interface{} {
	atomic.AddInt64(&p.inUse, 1)
	return p.underlying.Get()
}

func (p *dynamic) Put(el interface{}) {
	atomic.AddInt64(&p.inUse, -1)
	p.underlying.Put(el)
}

func (p *dynamic) InUse() uint { return uint(atomic.LoadInt64(&p.inUse)) }
