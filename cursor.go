package tasklet

import "sort"

// edgeGroup holds all inbound edges sharing one priority, plus a rotating
// position for circular round-robin iteration within the group.
type edgeGroup struct {
	priority int
	edges    []InboundEdge
	pos      int
}

// edgeCursor iterates inbound edges grouped by ascending priority, circling
// within the current group until it is exhausted before moving to the next.
// It also owns the exactly-once barrier-alignment bookkeeping, since barrier
// observation is inseparable from the edge-drain walk that discovers it.
type edgeCursor struct {
	groups    []*edgeGroup
	guarantee Guarantee

	currSnapshot    int64
	barrierReceived []bool // indexed by ordinal
}

// newEdgeCursor groups edges by priority (ascending) and returns a cursor
// positioned at the first edge of the lowest-priority group. An empty edges
// slice yields an already-exhausted cursor.
func newEdgeCursor(edges []InboundEdge, guarantee Guarantee) *edgeCursor {
	byPriority := make(map[int][]InboundEdge)
	maxOrdinal := -1
	for _, e := range edges {
		byPriority[e.Priority()] = append(byPriority[e.Priority()], e)
		if e.Ordinal() > maxOrdinal {
			maxOrdinal = e.Ordinal()
		}
	}

	priorities := make([]int, 0, len(byPriority))
	for p := range byPriority {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)

	groups := make([]*edgeGroup, 0, len(priorities))
	for _, p := range priorities {
		groups = append(groups, &edgeGroup{priority: p, edges: byPriority[p]})
	}

	return &edgeCursor{
		groups:          groups,
		guarantee:       guarantee,
		barrierReceived: make([]bool, maxOrdinal+1),
	}
}

// exhausted reports whether every priority group has drained to DONE.
func (c *edgeCursor) exhausted() bool { return len(c.groups) == 0 }

// current returns the edge at the cursor's position, or false if the cursor
// is exhausted.
func (c *edgeCursor) current() (InboundEdge, bool) {
	if c.exhausted() {
		return nil, false
	}
	g := c.groups[0]
	if len(g.edges) == 0 {
		return nil, false
	}
	return g.edges[g.pos], true
}

// advance moves to the next edge in the current group. It returns false when
// doing so would wrap past the last edge, in which case the position is
// reset to the front of the group for the caller's next attempt.
func (c *edgeCursor) advance() bool {
	g := c.groups[0]
	if len(g.edges) == 0 {
		return false
	}
	g.pos++
	if g.pos >= len(g.edges) {
		g.pos = 0
		return false
	}
	return true
}

// removeCurrent drops the edge at the cursor's position because it reported
// completion. If that empties the group, the next priority group becomes
// current.
func (c *edgeCursor) removeCurrent() {
	g := c.groups[0]
	if len(g.edges) == 0 {
		return
	}
	g.edges = append(g.edges[:g.pos], g.edges[g.pos+1:]...)
	if len(g.edges) == 0 {
		c.popGroup()
		return
	}
	if g.pos >= len(g.edges) {
		g.pos = 0
	}
}

// popGroup discards the current (now-exhausted) priority group and makes the
// next one current. It returns false if no groups remain.
func (c *edgeCursor) popGroup() bool {
	if c.exhausted() {
		return false
	}
	c.groups = c.groups[1:]
	return !c.exhausted()
}

// activeOrdinals reports the ordinals of every inbound edge not yet DONE,
// across all remaining priority groups.
func (c *edgeCursor) activeOrdinals() []int {
	var ordinals []int
	for _, g := range c.groups {
		for _, e := range g.edges {
			ordinals = append(ordinals, e.Ordinal())
		}
	}
	return ordinals
}

func (c *edgeCursor) isBarrierReceived(ordinal int) bool {
	if ordinal < 0 || ordinal >= len(c.barrierReceived) {
		return false
	}
	return c.barrierReceived[ordinal]
}

// anyBarrierReceived reports whether at least one ordinal has delivered a
// barrier for the in-flight snapshot.
func (c *edgeCursor) anyBarrierReceived() bool {
	for _, b := range c.barrierReceived {
		if b {
			return true
		}
	}
	return false
}

// allActiveBarriersAligned reports whether every currently active ordinal
// has contributed a barrier for the in-flight snapshot.
func (c *edgeCursor) allActiveBarriersAligned() bool {
	for _, o := range c.activeOrdinals() {
		if !c.isBarrierReceived(o) {
			return false
		}
	}
	return true
}

// clearBarriers resets alignment bookkeeping and advances the expected
// snapshot id, called once the local snapshot has been saved and the
// barrier emitted downstream.
func (c *edgeCursor) clearBarriers() {
	for i := range c.barrierReceived {
		c.barrierReceived[i] = false
	}
	c.currSnapshot++
}

// observeSnapshot records that ordinal has delivered a barrier for id. It
// fails if id does not match the snapshot currently expected.
func (c *edgeCursor) observeSnapshot(ordinal int, id int64) error {
	if id != c.currSnapshot {
		return newUnexpectedSnapshotIDError(c.currSnapshot, id, ordinal)
	}
	if ordinal >= len(c.barrierReceived) {
		grown := make([]bool, ordinal+1)
		copy(grown, c.barrierReceived)
		c.barrierReceived = grown
	}
	c.barrierReceived[ordinal] = true
	return nil
}

// tryFillInbox is the edge-drain walk: starting from the cursor's current
// position, it tries edges in the active priority group until one yields
// items or the group wraps without progress.
//
// An edge whose ordinal has already delivered the in-flight barrier is
// skipped under EXACTLY_ONCE, muting it until the local snapshot completes.
// A DONE edge is removed and the walk continues without counting as
// progress. The first edge that yields items ends the walk immediately; if
// the last item it yielded is a barrier, the barrier is recorded and the
// walk still stops there, deferring to the processor to drain the inbox
// before any further edge is touched.
func (c *edgeCursor) tryFillInbox(inbox *Inbox) (ProgressState, int, error) {
	for !c.exhausted() {
		edge, ok := c.current()
		if !ok {
			return NoProgress, -1, nil
		}

		if c.guarantee == GuaranteeExactlyOnce && c.isBarrierReceived(edge.Ordinal()) {
			if !c.advance() {
				return NoProgress, -1, nil
			}
			continue
		}

		switch edge.DrainTo(inbox) {
		case Done:
			c.removeCurrent()
			continue

		case MadeProgress:
			ordinal := edge.Ordinal()
			if last, okLast := inbox.PeekLast(); okLast && last.IsBarrier() {
				if err := c.observeSnapshot(ordinal, last.SnapshotID); err != nil {
					return NoProgress, -1, err
				}
			}
			return MadeProgress, ordinal, nil

		default: // NoProgress
			if !c.advance() {
				return NoProgress, -1, nil
			}
		}
	}
	return NoProgress, -1, nil
}
