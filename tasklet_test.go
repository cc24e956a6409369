package tasklet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// queueEdge is a minimal InboundEdge backed by a preloaded item slice. It
// follows the DrainTo convention of never reporting Done in the same call
// that adds an item.
type queueEdge struct {
	ordinal  int
	priority int
	items    []Item
	pos      int
}

func (e *queueEdge) Ordinal() int  { return e.ordinal }
func (e *queueEdge) Priority() int { return e.priority }

func (e *queueEdge) DrainTo(sink *Inbox) ProgressState {
	if e.pos >= len(e.items) {
		return Done
	}
	sink.Add(e.items[e.pos])
	e.pos++
	return MadeProgress
}

// recordingProcessor logs every item it consumes as "<ordinal>:<payload>" and
// a "SNAPSHOT" marker every time SaveSnapshot is called, so a test can assert
// on the interleaving around a snapshot boundary.
type recordingProcessor struct {
	log []string
}

func (p *recordingProcessor) Init(*Outbox, *SnapshotContext) error { return nil }
func (p *recordingProcessor) TryProcess() (bool, error)            { return true, nil }
func (p *recordingProcessor) IsCooperative() bool                  { return false }

func (p *recordingProcessor) Process(ordinal int, inbox *Inbox) error {
	item, ok := inbox.Poll()
	if !ok {
		return nil
	}
	p.log = append(p.log, entryFor(ordinal, item))
	return nil
}

func (p *recordingProcessor) Complete() (bool, error) { return true, nil }

func (p *recordingProcessor) SaveSnapshot() (bool, error) {
	p.log = append(p.log, "SNAPSHOT")
	return true, nil
}

func (p *recordingProcessor) RestoreSnapshot(*Inbox) error { return nil }
func (p *recordingProcessor) FinishSnapshotRestore() error { return nil }

func entryFor(ordinal int, item Item) string {
	letter, _ := item.Payload.(string)
	return letterKey(ordinal, letter)
}

func letterKey(ordinal int, letter string) string {
	return string(rune('0'+ordinal)) + ":" + letter
}

func runToNextBoundary(t *Tasklet, maxCalls int) (ProgressState, error) {
	var state ProgressState
	var err error
	for i := 0; i < maxCalls; i++ {
		state, err = t.Call()
		if err != nil || state == Done {
			return state, err
		}
	}
	return state, err
}

func TestTasklet_BarrierAlignmentExactlyOnce(t *testing.T) {
	edge0 := &queueEdge{ordinal: 0, items: []Item{DataItem("a"), BarrierItem(0), DataItem("b")}}
	edge1 := &queueEdge{ordinal: 1, items: []Item{DataItem("x"), BarrierItem(0), DataItem("y")}}

	processor := &recordingProcessor{}
	outbox := NewOutbox([]OutboundEdge{}, nil)
	snapCtx := NewSnapshotContext(GuaranteeExactlyOnce)

	tl, err := New(processor, []InboundEdge{edge0, edge1}, outbox, snapCtx, WithExactlyOnce())
	require.NoError(t, err)
	require.NoError(t, tl.Init(context.Background()))

	// Drive enough calls to consume both data items, align the barrier, save
	// the snapshot, emit it downstream, and drain the trailing pair.
	_, err = runToNextBoundary(tl, 40)
	require.NoError(t, err)

	require.Contains(t, processor.log, "SNAPSHOT")
	snapAt := indexOf(processor.log, "SNAPSHOT")
	require.GreaterOrEqual(t, snapAt, 2)

	before := processor.log[:snapAt]
	after := processor.log[snapAt+1:]

	require.ElementsMatch(t, []string{"0:a", "1:x"}, before)
	require.ElementsMatch(t, []string{"0:b", "1:y"}, after)
}

func TestTasklet_MismatchedBarrierIsFatal(t *testing.T) {
	edge0 := &queueEdge{ordinal: 0, items: []Item{BarrierItem(0)}}
	edge1 := &queueEdge{ordinal: 1, items: []Item{BarrierItem(1)}}

	processor := &recordingProcessor{}
	outbox := NewOutbox([]OutboundEdge{}, nil)
	snapCtx := NewSnapshotContext(GuaranteeExactlyOnce)

	tl, err := New(processor, []InboundEdge{edge0, edge1}, outbox, snapCtx, WithExactlyOnce())
	require.NoError(t, err)
	require.NoError(t, tl.Init(context.Background()))

	_, callErr := runToNextBoundary(tl, 20)
	require.Error(t, callErr)
	require.True(t, errors.Is(callErr, ErrUnexpectedSnapshotID))

	var mismatch *unexpectedSnapshotIDError
	require.ErrorAs(t, callErr, &mismatch)
	require.Equal(t, 1, mismatch.Ordinal())
}

func indexOf(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	return -1
}
