package harness

import "github.com/flowcore/tasklet"

// testEdge is a minimal in-memory tasklet.OutboundEdge: an unbounded or
// capacity-1 queue the harness can drain directly, standing in for both the
// processor's single outbound edge and its snapshot sink.
type testEdge struct {
	ordinal  int
	capacity int // 0 means unbounded
	queue    []tasklet.Item
}

func newTestEdge(ordinal, capacity int) *testEdge {
	return &testEdge{ordinal: ordinal, capacity: capacity}
}

func (e *testEdge) Ordinal() int { return e.ordinal }

func (e *testEdge) Offer(item tasklet.Item) tasklet.ProgressState {
	return e.offer(item)
}

func (e *testEdge) OfferBroadcast(item tasklet.Item) tasklet.ProgressState {
	return e.offer(item)
}

func (e *testEdge) offer(item tasklet.Item) tasklet.ProgressState {
	if e.capacity > 0 && len(e.queue) >= e.capacity {
		return tasklet.NoProgress
	}
	e.queue = append(e.queue, item)
	return tasklet.Done
}

func (e *testEdge) size() int { return len(e.queue) }

// drainAll removes and returns every queued item, in order.
func (e *testEdge) drainAll() []tasklet.Item {
	items := e.queue
	e.queue = nil
	return items
}
