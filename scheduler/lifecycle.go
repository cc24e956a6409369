package scheduler

import "sync"

// lifecycleCoordinator encapsulates the shutdown sequence for Scheduler. It
// is a wiring helper: it doesn't own channels; it orchestrates cancellation,
// waits, and channel closure in a deterministic order.
//
// Close() is safe for concurrent calls; the sequence executes exactly once.
type lifecycleCoordinator struct {
	cancel      func()
	inflight    *sync.WaitGroup
	closeCh     chan struct{}
	forwarderWG *sync.WaitGroup
	sendWG      *sync.WaitGroup
	closeErrors func()

	once sync.Once
}

func newLifecycleCoordinator(
	cancel func(),
	inflight *sync.WaitGroup,
	closeCh chan struct{},
	forwarderWG *sync.WaitGroup,
	sendWG *sync.WaitGroup,
	closeErrors func(),
) *lifecycleCoordinator {
	return &lifecycleCoordinator{
		cancel:      cancel,
		inflight:    inflight,
		closeCh:     closeCh,
		forwarderWG: forwarderWG,
		sendWG:      sendWG,
		closeErrors: closeErrors,
	}
}

// Close executes the shutdown sequence exactly once:
// 1) cancel the scheduler's context, stopping the dispatch loop
// 2) wait for in-flight Tasklet.Call invocations to return
// 3) close closeCh to stop the error forwarder and any detached senders
// 4) wait for the forwarder goroutine and any detached senders
// 5) close the outward errors channel
func (lc *lifecycleCoordinator) Close() {
	lc.once.Do(func() {
		if lc.cancel != nil {
			lc.cancel()
		}
		if lc.inflight != nil {
			lc.inflight.Wait()
		}
		if lc.closeCh != nil {
			close(lc.closeCh)
		}
		if lc.forwarderWG != nil {
			lc.forwarderWG.Wait()
		}
		if lc.sendWG != nil {
			lc.sendWG.Wait()
		}
		if lc.closeErrors != nil {
			lc.closeErrors()
		}
	})
}
