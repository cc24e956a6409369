package tasklet

import (
	"context"
	"fmt"
)

// State identifies one position in the tasklet's lifecycle state machine.
type State int

const (
	StateNullaryProcess State = iota
	StateProcessInbox
	StateSaveSnapshot
	StateEmitBarrier
	StateEmitDoneItem
	StateComplete
	StateEnd
)

func (s State) String() string {
	switch s {
	case StateNullaryProcess:
		return "NULLARY_PROCESS"
	case StateProcessInbox:
		return "PROCESS_INBOX"
	case StateSaveSnapshot:
		return "SAVE_SNAPSHOT"
	case StateEmitBarrier:
		return "EMIT_BARRIER"
	case StateEmitDoneItem:
		return "EMIT_DONE_ITEM"
	case StateComplete:
		return "COMPLETE"
	case StateEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// Tasklet drives a single Processor instance through its lifecycle. Call
// executes at most one state transition per invocation, never blocks, and
// reports a ternary progress verdict. A Tasklet is bound to one Processor
// for the lifetime of one job; it is not safe for concurrent use by more
// than one worker at a time.
type Tasklet struct {
	processor     Processor
	snapshottable Snapshottable // nil if processor does not implement it

	cursor  *edgeCursor
	inbox   *Inbox
	outbox  *Outbox
	snapCtx *SnapshotContext
	cfg     config

	state            State
	tracker          progressTracker
	currInboxOrdinal int
	jobCancel        context.Context
	emitStallCount   int
}

// New constructs a Tasklet over processor, its inbound edges, and its
// outbox. edges may be empty, in which case the tasklet starts directly in
// the COMPLETE state and emits only the done sentinel.
func New(processor Processor, edges []InboundEdge, outbox *Outbox, snapCtx *SnapshotContext, opts ...Option) (*Tasklet, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	var snapshottable Snapshottable
	if s, ok := processor.(Snapshottable); ok {
		snapshottable = s
	}

	initial := StateNullaryProcess
	if len(edges) == 0 {
		initial = StateComplete
	}

	return &Tasklet{
		processor:        processor,
		snapshottable:    snapshottable,
		cursor:           newEdgeCursor(edges, cfg.Guarantee),
		inbox:            NewInbox(),
		outbox:           outbox,
		snapCtx:          snapCtx,
		cfg:              cfg,
		state:            initial,
		currInboxOrdinal: -1,
	}, nil
}

// Init attaches the job-cancel future and initializes the processor. It
// must be called exactly once, before the first Call.
func (t *Tasklet) Init(jobCancel context.Context) error {
	t.jobCancel = jobCancel
	if err := t.processor.Init(t.outbox, t.snapCtx); err != nil {
		t.cfg.Logger.Errorf("tasklet %s: processor init failed: %v", t.cfg.VertexName, err)
		return newProcessorError(ErrProcessorInitFailure, err, t.cfg.VertexName, t.state)
	}
	return nil
}

// String reports the vertex name, processor type, and current state for
// diagnostics.
func (t *Tasklet) String() string {
	return fmt.Sprintf("Tasklet{vertex=%s, processor=%T, state=%s}", t.cfg.VertexName, t.processor, t.state)
}

// Call executes a single pass: at most one state transition, no blocking.
func (t *Tasklet) Call() (ProgressState, error) {
	if t.jobCancel != nil {
		select {
		case <-t.jobCancel.Done():
			t.state = StateEnd
			return Done, t.jobCancel.Err()
		default:
		}
	}

	t.tracker.reset()

	switch t.state {
	case StateNullaryProcess:
		if err := t.stepNullaryProcess(); err != nil {
			return NoProgress, err
		}
	case StateProcessInbox:
		if err := t.stepProcessInbox(); err != nil {
			return NoProgress, err
		}
	case StateSaveSnapshot:
		if err := t.stepSaveSnapshot(); err != nil {
			return NoProgress, err
		}
	case StateEmitBarrier:
		t.stepEmitBarrier()
	case StateEmitDoneItem:
		t.stepEmitDoneItem()
	case StateComplete:
		t.state = StateEmitDoneItem
		t.tracker.madeProgress(true)
	case StateEnd:
		return Done, nil
	}

	return t.tracker.toProgressState(), nil
}

func (t *Tasklet) stepNullaryProcess() error {
	done, err := t.processor.TryProcess()
	if err != nil {
		return t.execErr(err)
	}
	if done {
		t.state = StateProcessInbox
		t.tracker.madeProgress(true)
		return nil
	}
	t.tracker.notDone()
	return nil
}

func (t *Tasklet) stepProcessInbox() error {
	if t.inbox.IsEmpty() {
		state, ordinal, err := t.cursor.tryFillInbox(t.inbox)
		if err != nil {
			t.cfg.Logger.Errorf("tasklet %s: %v", t.cfg.VertexName, err)
			return err
		}
		if state == MadeProgress {
			t.tracker.madeProgress(true)
			t.currInboxOrdinal = ordinal
		}
	}

	// A barrier landing as the sole remaining item is control-plane: the
	// processor never sees it. It was already recorded via observeSnapshot
	// at drain time, so here it is only discarded and, once every active
	// ordinal has aligned, the state advances.
	if last, ok := t.inbox.PeekLast(); ok && last.IsBarrier() && t.inbox.Size() == 1 {
		t.inbox.Poll()
		t.tracker.madeProgress(true)
		if t.barrierAlignmentReady() {
			t.state = StateSaveSnapshot
		} else {
			t.tracker.notDone()
		}
		return nil
	}

	// Alignment can also complete without a new barrier, when the last
	// unaligned ordinal reports DONE and leaves the active set.
	if t.inbox.IsEmpty() && t.barrierAlignmentReady() {
		t.state = StateSaveSnapshot
		t.tracker.madeProgress(true)
		return nil
	}

	if !t.inbox.IsEmpty() {
		before := t.inbox.Size()
		if err := t.processor.Process(t.currInboxOrdinal, t.inbox); err != nil {
			return t.execErr(err)
		}
		if t.inbox.Size() < before {
			t.tracker.madeProgress(true)
		} else {
			t.tracker.notDone()
		}
		return nil
	}

	if t.cursor.exhausted() {
		done, err := t.processor.Complete()
		if err != nil {
			return t.execErr(err)
		}
		if done {
			t.state = StateEmitDoneItem
			t.tracker.madeProgress(true)
		} else {
			t.tracker.notDone()
		}
		return nil
	}

	t.tracker.notDone()
	return nil
}

func (t *Tasklet) stepSaveSnapshot() error {
	if t.snapshottable == nil {
		t.state = StateEmitBarrier
		t.tracker.madeProgress(true)
		return nil
	}

	done, err := t.snapshottable.SaveSnapshot()
	if err != nil {
		return t.execErr(err)
	}
	if done {
		t.state = StateEmitBarrier
		t.tracker.madeProgress(true)
	} else {
		t.tracker.notDone()
	}
	return nil
}

func (t *Tasklet) stepEmitBarrier() {
	state := t.outbox.OfferToEdgesAndSnapshot(BarrierItem(t.cursor.currSnapshot))
	if state == Done {
		t.cursor.clearBarriers()
		t.state = StateNullaryProcess
		t.tracker.madeProgress(true)
		t.emitStallCount = 0
		return
	}
	t.tracker.notDone()
	t.noteEmitStall()
}

func (t *Tasklet) stepEmitDoneItem() {
	state := t.outbox.OfferToEdgesAndSnapshot(DoneItem())
	if state == Done {
		t.state = StateEnd
		t.tracker.madeProgress(true)
		t.emitStallCount = 0
		return
	}
	t.tracker.notDone()
	t.noteEmitStall()
}

func (t *Tasklet) noteEmitStall() {
	t.emitStallCount++
	if t.emitStallCount%128 == 0 {
		t.cfg.Logger.Warnf(
			"tasklet %s: stalled in %s for %d consecutive calls (outbox backpressure)",
			t.cfg.VertexName, t.state, t.emitStallCount,
		)
	}
}

// barrierAlignmentReady reports whether the barrier(s) observed so far are
// sufficient to proceed to SAVE_SNAPSHOT. Under EXACTLY_ONCE every active
// ordinal must have aligned; otherwise a single observed barrier is enough,
// since alignment is unnecessary when forwarding immediately.
func (t *Tasklet) barrierAlignmentReady() bool {
	if !t.cursor.anyBarrierReceived() {
		return false
	}
	if t.cfg.Guarantee == GuaranteeExactlyOnce {
		return t.cursor.allActiveBarriersAligned()
	}
	return true
}

func (t *Tasklet) execErr(cause error) error {
	t.cfg.Logger.Errorf("tasklet %s: processor execution failed in state %s: %v", t.cfg.VertexName, t.state, cause)
	return newProcessorError(ErrProcessorExecutionFailure, cause, t.cfg.VertexName, t.state)
}
