package tasklet

// Outbox is the per-tasklet bounded multi-edge emission buffer: a sequence
// of per-edge queues plus an optional snapshot queue. Capacity is owned by
// the underlying OutboundEdge implementations; a cooperative processor is
// typically backed by edges of capacity 1 to force interleaving.
//
// Broadcast retries are tracked with a per-edge "already accepted" bitset:
// once an edge accepts, it is skipped on retry until the whole broadcast
// operation completes, at which point the bitset is cleared.
type Outbox struct {
	edges        []OutboundEdge
	snapshotEdge OutboundEdge // nil if this tasklet has no snapshot sink

	inFlight             bool
	inFlightKind         Kind
	inFlightSnapshot     int64
	inFlightSnapshotSink bool // whether this in-flight broadcast targets the snapshot edge
	accepted             []bool
}

// NewOutbox constructs an Outbox over edges plus an optional snapshotEdge.
// snapshotEdge may be nil for tasklets without snapshot support (guarantee
// == NONE).
func NewOutbox(edges []OutboundEdge, snapshotEdge OutboundEdge) *Outbox {
	return &Outbox{edges: edges, snapshotEdge: snapshotEdge}
}

// Offer routes a single data element to the edge identified by ordinal.
func (o *Outbox) Offer(ordinal int, item Item) ProgressState {
	for _, e := range o.edges {
		if e.Ordinal() == ordinal {
			return e.Offer(item)
		}
	}
	// No matching edge: nothing to accept, nothing to retry.
	return Done
}

// OfferBroadcast broadcasts item to every data edge, but not the snapshot
// sink. Used by a Processor emitting a watermark.
func (o *Outbox) OfferBroadcast(item Item) ProgressState {
	return o.broadcast(item, false)
}

// OfferToEdgesAndSnapshot broadcasts item to every data edge and the
// snapshot sink, treating the operation as atomic in aggregate: if some
// edges accept and others refuse, only the refusers are re-offered on
// retry. Used by the tasklet state machine to emit barriers and the done
// sentinel.
func (o *Outbox) OfferToEdgesAndSnapshot(item Item) ProgressState {
	return o.broadcast(item, true)
}

func (o *Outbox) broadcast(item Item, includeSnapshot bool) ProgressState {
	if !o.inFlight ||
		o.inFlightKind != item.Kind() ||
		o.inFlightSnapshot != item.SnapshotID ||
		o.inFlightSnapshotSink != includeSnapshot {
		o.startBroadcast(item, includeSnapshot)
	}

	allAccepted := true
	for i, e := range o.edges {
		if o.accepted[i] {
			continue
		}
		if e.OfferBroadcast(item) == Done {
			o.accepted[i] = true
		} else {
			allAccepted = false
		}
	}

	if includeSnapshot && o.snapshotEdge != nil {
		idx := len(o.edges)
		if !o.accepted[idx] {
			if o.snapshotEdge.OfferBroadcast(item) == Done {
				o.accepted[idx] = true
			} else {
				allAccepted = false
			}
		}
	}

	if allAccepted {
		o.inFlight = false
		o.accepted = nil
		return Done
	}
	return NoProgress
}

func (o *Outbox) startBroadcast(item Item, includeSnapshot bool) {
	o.inFlight = true
	o.inFlightKind = item.Kind()
	o.inFlightSnapshot = item.SnapshotID
	o.inFlightSnapshotSink = includeSnapshot
	o.accepted = make([]bool, len(o.edges)+1)
}

// HasSnapshotSink reports whether this Outbox was constructed with a
// snapshot edge.
func (o *Outbox) HasSnapshotSink() bool { return o.snapshotEdge != nil }

// OfferToSnapshot offers item to the snapshot sink only, used by a
// Snapshottable Processor's SaveSnapshot to emit its own state. Unlike
// OfferToEdgesAndSnapshot it targets a single edge, so no acceptance
// bitset is needed: on NoProgress the caller simply retries the same item.
// With no snapshot sink configured, it reports Done without emitting
// anything.
func (o *Outbox) OfferToSnapshot(item Item) ProgressState {
	if o.snapshotEdge == nil {
		return Done
	}
	return o.snapshotEdge.OfferBroadcast(item)
}
