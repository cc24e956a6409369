package tasklet

// InboundEdge is an ordered source of Items tagged with an ordinal and a
// priority. Ordinals are dense non-negative integers unique per tasklet.
// Priorities group edges; lower priority numbers are exhausted before
// higher ones.
type InboundEdge interface {
	// Ordinal identifies this edge, unique within the owning tasklet.
	Ordinal() int

	// Priority groups this edge with other edges sharing the same value.
	// Lower values are drained to completion before higher ones.
	Priority() int

	// DrainTo pulls whatever is immediately available into sink and reports
	// a ProgressState. Implementations must not block. A call that adds at
	// least one item must report MadeProgress, never Done; Done is reserved
	// for a call that adds nothing because the edge is exhausted and will
	// yield no further items.
	DrainTo(sink *Inbox) ProgressState
}

// OutboundEdge is an ordered sink tagged with an ordinal. Offer and
// OfferBroadcast must not block; a full sink reports NoProgress and is
// retried by the caller on a subsequent Tasklet.Call.
type OutboundEdge interface {
	// Ordinal identifies this edge, unique within the owning tasklet.
	Ordinal() int

	// Offer routes a single data element via the edge's own partitioning
	// function.
	Offer(item Item) ProgressState

	// OfferBroadcast delivers item to this edge unconditionally, used for
	// watermarks, snapshot barriers, and the done sentinel.
	OfferBroadcast(item Item) ProgressState
}
