package harness

import "github.com/flowcore/tasklet"

// mapProcessor drives every input item through transform, which may yield
// zero or more outputs per item. It covers the uppercase-map, flat-map
// duplicate, and cooperative multiply-by-two scenarios with one type.
type mapProcessor struct {
	outbox      *tasklet.Outbox
	transform   func(payload any) []any
	cooperative bool
	pending     []tasklet.Item
}

func (p *mapProcessor) Init(outbox *tasklet.Outbox, _ *tasklet.SnapshotContext) error {
	p.outbox = outbox
	return nil
}

func (p *mapProcessor) TryProcess() (bool, error) { return true, nil }

func (p *mapProcessor) IsCooperative() bool { return p.cooperative }

func (p *mapProcessor) Process(_ int, inbox *tasklet.Inbox) error {
	if len(p.pending) == 0 {
		item, ok := inbox.Poll()
		if !ok {
			return nil
		}
		for _, out := range p.transform(item.Payload) {
			p.pending = append(p.pending, tasklet.DataItem(out))
		}
	}
	for len(p.pending) > 0 {
		if p.outbox.Offer(0, p.pending[0]) != tasklet.Done {
			return nil
		}
		p.pending = p.pending[1:]
	}
	return nil
}

func (p *mapProcessor) Complete() (bool, error) {
	for len(p.pending) > 0 {
		if p.outbox.Offer(0, p.pending[0]) != tasklet.Done {
			return false, nil
		}
		p.pending = p.pending[1:]
	}
	return true, nil
}

// counterProcessor counts the items it consumes and emits the final count
// once, on Complete. It implements Snapshottable so its running count
// survives a save/restore round-trip.
type counterProcessor struct {
	outbox  *tasklet.Outbox
	count   int
	saved   bool
	emitted bool
}

func (p *counterProcessor) Init(outbox *tasklet.Outbox, _ *tasklet.SnapshotContext) error {
	p.outbox = outbox
	return nil
}

func (p *counterProcessor) TryProcess() (bool, error) { return true, nil }

func (p *counterProcessor) IsCooperative() bool { return false }

func (p *counterProcessor) Process(_ int, inbox *tasklet.Inbox) error {
	for {
		_, ok := inbox.Poll()
		if !ok {
			return nil
		}
		p.count++
	}
}

func (p *counterProcessor) Complete() (bool, error) {
	if p.emitted {
		return true, nil
	}
	if p.outbox.Offer(0, tasklet.DataItem(p.count)) != tasklet.Done {
		return false, nil
	}
	p.emitted = true
	return true, nil
}

func (p *counterProcessor) SaveSnapshot() (bool, error) {
	if p.saved {
		return true, nil
	}
	if p.outbox.OfferToSnapshot(tasklet.DataItem(p.count)) != tasklet.Done {
		return false, nil
	}
	p.saved = true
	return true, nil
}

func (p *counterProcessor) RestoreSnapshot(inbox *tasklet.Inbox) error {
	for {
		item, ok := inbox.Poll()
		if !ok {
			return nil
		}
		p.count = item.Payload.(int)
	}
}

func (p *counterProcessor) FinishSnapshotRestore() error { return nil }
