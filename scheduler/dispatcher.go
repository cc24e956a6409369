package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flowcore/tasklet"
	"github.com/flowcore/tasklet/logging"
	"github.com/flowcore/tasklet/metrics"
	"github.com/flowcore/tasklet/pool"
)

// entry pairs a Tasklet with the name it is registered under, for diagnostics
// and error correlation.
type entry struct {
	name string
	task *tasklet.Tasklet
}

// dispatcher reads ready entries from ready and executes one Tasklet.Call
// per pop via a pooled worker. An entry that did not reach Done is pushed
// back onto ready, giving every registered tasklet a cooperative, round-robin
// turn. The dispatcher stops when ctx.Done() closes; it never drains ready
// after cancellation.
type dispatcher struct {
	ready    chan *entry
	inflight *sync.WaitGroup
	pool     pool.Pool
	errorsIn chan<- error
	logger   logging.Logger

	cycles        metrics.Counter
	stalls        metrics.Counter
	activeWorkers metrics.UpDownCounter
	callDuration  metrics.Histogram
}

func newDispatcher(
	ready chan *entry, inflight *sync.WaitGroup, p pool.Pool, errorsIn chan<- error, m metrics.Provider, l logging.Logger,
) *dispatcher {
	return &dispatcher{
		ready:         ready,
		inflight:      inflight,
		pool:          p,
		errorsIn:      errorsIn,
		logger:        l,
		cycles:        m.Counter("scheduling_cycles"),
		stalls:        m.Counter("tasklet_stalls"),
		activeWorkers: m.UpDownCounter("active_workers"),
		callDuration: m.Histogram(
			"tasklet_call_duration_seconds",
			metrics.WithUnit("seconds"),
			metrics.WithDescription("wall-clock time spent inside one Tasklet.Call invocation"),
		),
	}
}

func (d *dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-d.ready:
			d.inflight.Add(1)
			go func(ee *entry) {
				defer d.inflight.Done()
				d.execute(ctx, ee)
			}(e)
		}
	}
}

func (d *dispatcher) execute(ctx context.Context, e *entry) {
	ww := d.pool.Get().(*worker)
	d.activeWorkers.Add(1)
	start := time.Now()
	state, err := ww.run(e.task)
	d.callDuration.Record(time.Since(start).Seconds())
	d.pool.Put(ww)
	d.activeWorkers.Add(-1)

	d.cycles.Add(1)

	if err != nil {
		d.logger.Errorf("tasklet %q: %v", e.name, err)
		d.errorsIn <- fmt.Errorf("tasklet %q: %w", e.name, err)
		return
	}

	if state == tasklet.NoProgress {
		d.stalls.Add(1)
		d.logger.Debugf("tasklet %q made no progress this cycle", e.name)
	}

	if state == tasklet.Done {
		return
	}

	select {
	case d.ready <- e:
	case <-ctx.Done():
	}
}
