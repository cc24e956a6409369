package tasklet

import "sync/atomic"

// Guarantee is the processing-guarantee level a job runs under.
type Guarantee int

const (
	// GuaranteeNone disables snapshotting entirely; barriers are never
	// produced or aligned.
	GuaranteeNone Guarantee = iota
	// GuaranteeAtLeastOnce forwards barriers immediately without aligning
	// across inbound edges.
	GuaranteeAtLeastOnce
	// GuaranteeExactlyOnce aligns barriers across all active inbound edges
	// before saving local state and forwarding a single barrier downstream.
	GuaranteeExactlyOnce
)

func (g Guarantee) String() string {
	switch g {
	case GuaranteeNone:
		return "NONE"
	case GuaranteeAtLeastOnce:
		return "AT_LEAST_ONCE"
	case GuaranteeExactlyOnce:
		return "EXACTLY_ONCE"
	default:
		return "UNKNOWN"
	}
}

// SnapshotContext is shared across every tasklet of the same job. It is
// read-mostly: the processing guarantee is fixed for the job's lifetime, and
// currentSnapshotId/completedSnapshotId are published by the job's snapshot
// coordinator (an external collaborator, out of scope here). A tasklet
// neither reads nor writes them: it only hands the context to its
// Processor's Init. Field access is safe for
// concurrent use via atomics, since tasklets run on arbitrary worker threads.
type SnapshotContext struct {
	guarantee Guarantee

	currentSnapshotID   atomic.Int64
	completedSnapshotID atomic.Int64
}

// NewSnapshotContext constructs a SnapshotContext fixed at the given
// guarantee level, with both snapshot ids starting at zero.
func NewSnapshotContext(guarantee Guarantee) *SnapshotContext {
	return &SnapshotContext{guarantee: guarantee}
}

// Guarantee reports the job's fixed processing-guarantee level.
func (c *SnapshotContext) Guarantee() Guarantee { return c.guarantee }

// CurrentSnapshotID reports the snapshot id the coordinator most recently
// initiated.
func (c *SnapshotContext) CurrentSnapshotID() int64 { return c.currentSnapshotID.Load() }

// CompletedSnapshotID reports the most recently fully-acknowledged snapshot.
func (c *SnapshotContext) CompletedSnapshotID() int64 { return c.completedSnapshotID.Load() }

// PublishCurrentSnapshotID is called by the job's snapshot coordinator to
// advance the globally observable current snapshot id. A tasklet never
// calls this; it tracks its own local expected snapshot id independently
// (see edgeCursor.currSnapshot) and takes its guarantee level from its own
// options (WithExactlyOnce, WithAtLeastOnce), not from this context.
func (c *SnapshotContext) PublishCurrentSnapshotID(id int64) { c.currentSnapshotID.Store(id) }

// PublishCompletedSnapshotID is called by the job's snapshot coordinator
// once every tasklet has acknowledged a snapshot.
func (c *SnapshotContext) PublishCompletedSnapshotID(id int64) { c.completedSnapshotID.Store(id) }
