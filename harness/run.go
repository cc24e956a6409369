package harness

import (
	"fmt"
	"reflect"

	"github.com/flowcore/tasklet"
)

// Run drives one Processor instance (obtained from supplier) against input,
// a preloaded list of items delivered on ordinal 0, and asserts the
// collected output equals expectedOutput in order. assertProgress enables
// the per-step progress invariant; doSnapshots exercises a save/restore
// round-trip between every processing step, requiring a repeatable
// supplier.
//
// Run returns a *tasklet.HarnessAssertionFailure wrapping any violated
// invariant, or a wrapped tasklet.ErrProcessorInitFailure /
// tasklet.ErrProcessorExecutionFailure if the processor itself errors.
func Run(supplier Supplier, input, expectedOutput []tasklet.Item, assertProgress, doSnapshots bool) error {
	processor := supplier()
	if processor == nil {
		return &tasklet.HarnessAssertionFailure{Message: "processor supplier yielded no instance"}
	}

	r := &run{
		supplier:       supplier,
		processor:      processor,
		assertProgress: assertProgress,
		doSnapshots:    doSnapshots,
	}
	return r.execute(input, expectedOutput)
}

type run struct {
	supplier       Supplier
	processor      tasklet.Processor
	assertProgress bool
	doSnapshots    bool

	dataEdge     *testEdge
	snapshotEdge *testEdge
	snapCtx      *tasklet.SnapshotContext
	outbox       *tasklet.Outbox
	actual       []tasklet.Item
}

func (r *run) execute(input, expectedOutput []tasklet.Item) error {
	capacity := 0
	if r.processor.IsCooperative() {
		capacity = 1
	}
	r.dataEdge = newTestEdge(0, capacity)
	r.snapshotEdge = newTestEdge(0, 0)
	r.snapCtx = tasklet.NewSnapshotContext(tasklet.GuaranteeNone)
	r.outbox = tasklet.NewOutbox([]tasklet.OutboundEdge{r.dataEdge}, r.snapshotEdge)

	if err := r.processor.Init(r.outbox, r.snapCtx); err != nil {
		return fmt.Errorf("%w: %w", tasklet.ErrProcessorInitFailure, err)
	}

	inbox := tasklet.NewInbox()
	for _, it := range input {
		inbox.Add(it)
	}

	if err := r.processPhase(inbox); err != nil {
		return err
	}
	if err := r.completePhase(); err != nil {
		return err
	}

	if !itemsEqual(r.actual, expectedOutput) {
		return &tasklet.HarnessAssertionFailure{
			Message: fmt.Sprintf("output mismatch: got %v, want %v", r.actual, expectedOutput),
		}
	}
	return nil
}

func (r *run) processPhase(inbox *tasklet.Inbox) error {
	for !inbox.IsEmpty() {
		lastInboxSize := inbox.Size()

		if err := r.processor.Process(0, inbox); err != nil {
			return fmt.Errorf("%w: %w", tasklet.ErrProcessorExecutionFailure, err)
		}

		if r.processor.IsCooperative() && r.dataEdge.size() == 1 {
			// Re-entrant call verifies the processor tolerates a full
			// (capacity-1) outbox without making further progress.
			if err := r.processor.Process(0, inbox); err != nil {
				return fmt.Errorf("%w: %w", tasklet.ErrProcessorExecutionFailure, err)
			}
		}

		if r.assertProgress {
			progressed := lastInboxSize > inbox.Size() || r.dataEdge.size() > 0
			if !progressed {
				return &tasklet.HarnessAssertionFailure{Message: "process phase made no progress"}
			}
		}

		r.drainDataEdge()

		if r.doSnapshots {
			if err := r.snapshotAndRestore(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *run) completePhase() error {
	for {
		done, err := r.processor.Complete()
		if err != nil {
			return fmt.Errorf("%w: %w", tasklet.ErrProcessorExecutionFailure, err)
		}

		if r.assertProgress {
			if !(done || r.dataEdge.size() > 0) {
				return &tasklet.HarnessAssertionFailure{Message: "complete phase made no progress"}
			}
		}

		r.drainDataEdge()

		if r.doSnapshots {
			if err := r.snapshotAndRestore(); err != nil {
				return err
			}
		}

		if done {
			return nil
		}
	}
}

func (r *run) drainDataEdge() {
	r.actual = append(r.actual, r.dataEdge.drainAll()...)
}

func (r *run) snapshotAndRestore() error {
	snap, ok := r.processor.(tasklet.Snapshottable)
	if !ok {
		return nil
	}

	for {
		snapshotSizeBefore := r.snapshotEdge.size()
		dataSizeBefore := r.dataEdge.size()

		done, err := snap.SaveSnapshot()
		if err != nil {
			return fmt.Errorf("%w: %w", tasklet.ErrProcessorExecutionFailure, err)
		}

		if r.assertProgress {
			progressed := done || r.snapshotEdge.size() > snapshotSizeBefore || r.dataEdge.size() > dataSizeBefore
			if !progressed {
				return &tasklet.HarnessAssertionFailure{Message: "snapshot save made no progress"}
			}
		}

		r.drainDataEdge()

		if done {
			break
		}
	}

	restoreItems := r.snapshotEdge.drainAll()

	fresh := r.supplier()
	if fresh == nil {
		return &tasklet.HarnessAssertionFailure{Message: "supplier exhausted before snapshot restore"}
	}
	if err := fresh.Init(r.outbox, r.snapCtx); err != nil {
		return fmt.Errorf("%w: %w", tasklet.ErrProcessorInitFailure, err)
	}

	if len(restoreItems) > 0 {
		freshSnap, ok := fresh.(tasklet.Snapshottable)
		if !ok {
			return &tasklet.HarnessAssertionFailure{Message: "restored processor is not snapshottable"}
		}

		restoreInbox := tasklet.NewInbox()
		for _, it := range restoreItems {
			restoreInbox.Add(it)
		}

		for !restoreInbox.IsEmpty() {
			before := restoreInbox.Size()
			if err := freshSnap.RestoreSnapshot(restoreInbox); err != nil {
				return fmt.Errorf("%w: %w", tasklet.ErrProcessorExecutionFailure, err)
			}
			if r.assertProgress && restoreInbox.Size() == before {
				return &tasklet.HarnessAssertionFailure{Message: "snapshot restore made no progress"}
			}
		}
		if err := freshSnap.FinishSnapshotRestore(); err != nil {
			return fmt.Errorf("%w: %w", tasklet.ErrProcessorExecutionFailure, err)
		}
	}

	r.processor = fresh
	return nil
}

func itemsEqual(got, want []tasklet.Item) bool {
	return reflect.DeepEqual(got, want)
}
