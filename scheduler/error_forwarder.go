package scheduler

import (
	"context"
	"sync"

	"github.com/flowcore/tasklet/logging"
)

// errorForwarder consumes fatal tasklet errors (in) and, on the first one,
// cancels the scheduler's context via cancel() and forwards exactly one error
// to the outward errors channel (out). If out is not immediately writable, it
// uses a detached sender goroutine tracked by sendWG that will either deliver
// later or drop on closeCh. After closeCh is closed, it drains any remaining
// internal errors and exits.
//
// One tasklet's fatal error (a ProcessorError or ErrUnexpectedSnapshotID)
// ends the whole job, since a cooperative dataflow graph has no way to run
// one tasklet without its upstream or downstream peers. The owner controls
// channel lifecycle; errorForwarder does not close any channels.
type errorForwarder struct {
	in      <-chan error    // fatal tasklet errors
	out     chan<- error    // outward errors, read via Scheduler.Errors()
	closeCh <-chan struct{} // closed during Scheduler.Close()
	cancel  context.CancelFunc
	sendWG  *sync.WaitGroup // tracks detached sender goroutines
	logger  logging.Logger
}

func newErrorForwarder(
	in <-chan error, out chan<- error, closeCh <-chan struct{}, cancel context.CancelFunc, sendWG *sync.WaitGroup,
	l logging.Logger,
) *errorForwarder {
	return &errorForwarder{in: in, out: out, closeCh: closeCh, cancel: cancel, sendWG: sendWG, logger: l}
}

func (f *errorForwarder) run() {
	forwardedFirst := false
	for {
		select {
		case e := <-f.in:
			// Cancel first so the dispatch loop stops promptly.
			f.cancel()
			f.logger.Warnf("cancelling job: %v", e)
			if !forwardedFirst {
				forwardedFirst = true
				select {
				case f.out <- e:
					// forwarded synchronously
				default:
					f.sendWG.Add(1)
					go func(err error) {
						defer f.sendWG.Done()
						select {
						case f.out <- err:
							// delivered when reader appears
						case <-f.closeCh:
							// drop if closing
						}
					}(e)
				}
			}
		case <-f.closeCh:
			// Drain any remaining internal errors (drop them), then exit.
			for {
				select {
				case <-f.in:
					// drop
				default:
					return
				}
			}
		}
	}
}
