package tasklet

// Processor is the user-implemented operator a Tasklet drives through its
// lifecycle. Implementations must never block: every method is invoked from
// within a single Tasklet.Call and must return promptly.
type Processor interface {
	// Init is called exactly once, before any other method. It must not
	// emit to outbox.
	Init(outbox *Outbox, ctx *SnapshotContext) error

	// TryProcess does work that needs no inbox, such as driving a source.
	// It returns true once there is nothing more to do in this call. It
	// must never emit more than the outbox can currently absorb.
	TryProcess() (bool, error)

	// Process consumes zero or more items from inbox and emits to the
	// outbox supplied at Init. It must tolerate being called against a full
	// outbox by making no further progress; the tasklet retries later.
	Process(ordinal int, inbox *Inbox) error

	// Complete is called once all inputs are drained. It returns true when
	// the processor has nothing further to emit. It may emit.
	Complete() (bool, error)

	// IsCooperative governs outbox capacity selection in the test harness
	// and scheduling policy in production: a cooperative processor commits
	// to bounded per-call emission.
	IsCooperative() bool
}

// Snapshottable is the optional capability a stateful Processor implements.
// A Tasklet checks for this capability once, at construction, and holds the
// result as a fixed handle for the tasklet's lifetime rather than asserting
// on every call.
type Snapshottable interface {
	Processor

	// SaveSnapshot emits all outstanding snapshot state to the snapshot
	// sink, a chunk at a time if needed. It returns true once all state has
	// been emitted.
	SaveSnapshot() (bool, error)

	// RestoreSnapshot consumes restore items from inbox, rebuilding local
	// state. Called repeatedly until the restore inbox is drained.
	RestoreSnapshot(inbox *Inbox) error

	// FinishSnapshotRestore is called once, after every restore item has
	// been consumed.
	FinishSnapshotRestore() error
}
