package tasklet

// Inbox is a FIFO of items drained from exactly one currently active inbound
// edge. A Processor inspects and polls items in the order they were added;
// it is the Processor's responsibility to branch on Item.Kind().
//
// Invariants:
//   - an Inbox is either empty or holds items of one ordinal only;
//   - if the last item is a snapshot barrier, no further items are appended
//     until the Inbox is fully drained (enforced by the tasklet's cursor,
//     not by Inbox itself);
//   - items are consumed in FIFO order.
type Inbox struct {
	items []Item
	head  int
}

// NewInbox returns an empty Inbox.
func NewInbox() *Inbox { return &Inbox{} }

// Add appends an item to the back of the Inbox.
func (b *Inbox) Add(it Item) {
	b.items = append(b.items, it)
}

// PeekLast returns the most recently added item without removing it. The
// second result is false when the Inbox is empty.
func (b *Inbox) PeekLast() (Item, bool) {
	if b.head >= len(b.items) {
		return Item{}, false
	}
	return b.items[len(b.items)-1], true
}

// IsEmpty reports whether the Inbox holds no unconsumed items.
func (b *Inbox) IsEmpty() bool { return b.head >= len(b.items) }

// Size returns the number of unconsumed items.
func (b *Inbox) Size() int {
	if b.head >= len(b.items) {
		return 0
	}
	return len(b.items) - b.head
}

// Poll removes and returns the item at the front of the Inbox. The second
// result is false when the Inbox is empty.
func (b *Inbox) Poll() (Item, bool) {
	if b.head >= len(b.items) {
		return Item{}, false
	}
	it := b.items[b.head]
	b.items[b.head] = Item{} // drop reference for GC
	b.head++

	// Compact once fully drained so repeated fill/drain cycles don't grow
	// the backing array unbounded.
	if b.head == len(b.items) {
		b.items = b.items[:0]
		b.head = 0
	}
	return it, true
}

// Clear discards all unconsumed items.
func (b *Inbox) Clear() {
	b.items = b.items[:0]
	b.head = 0
}
