package scheduler

import (
	"fmt"

	"github.com/flowcore/tasklet"
)

// worker executes a single Tasklet.Call and recovers a panicking Processor so
// one misbehaving operator cannot take down the dispatch loop.
type worker struct{}

func newWorker() *worker { return &worker{} }

func (w *worker) run(tl *tasklet.Tasklet) (state tasklet.ProgressState, err error) {
	defer func() {
		if r := recover(); r != nil {
			state = tasklet.NoProgress
			err = fmt.Errorf("tasklet call panicked: %v", r)
		}
	}()
	return tl.Call()
}
