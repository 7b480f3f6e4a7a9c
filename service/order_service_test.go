package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vela/domain/book"
	"vela/infra/outbox"
	"vela/infra/sequence"
	"vela/infra/wal"
)

func newTestService(t *testing.T) (*OrderService, *outbox.Outbox, string) {
	t.Helper()
	walDir := t.TempDir()

	w, err := wal.Open(wal.Config{Dir: walDir, SegmentSize: 1 << 20})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ob, err := outbox.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ob.Close() })

	svc := NewOrderService(book.NewBook(), sequence.New(0), w, ob, zap.NewNop())
	return svc, ob, walDir
}

func TestPlaceAndMatchPublishesTrades(t *testing.T) {
	svc, ob, _ := newTestService(t)

	trades, err := svc.Place(1, book.Sell, book.GoodTillCancel, 100, 10)
	require.NoError(t, err)
	assert.Empty(t, trades)

	trades, err = svc.Place(2, book.Buy, book.GoodTillCancel, 101, 10)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, 0, svc.Size())

	var events []TradeEvent
	require.NoError(t, ob.ScanPending(func(e outbox.Entry) error {
		var ev TradeEvent
		if err := json.Unmarshal(e.Payload, &ev); err != nil {
			return err
		}
		events = append(events, ev)
		return nil
	}))
	require.Len(t, events, 1)
	assert.Equal(t, book.OrderID(2), events[0].BidOrder)
	assert.Equal(t, book.OrderID(1), events[0].AskOrder)
	assert.Equal(t, book.Price(100), events[0].Price, "execution prints at the resting ask")
	assert.Equal(t, book.Quantity(10), events[0].Qty)
}

func TestInvalidPlaceDoesNotJournal(t *testing.T) {
	svc, _, walDir := newTestService(t)

	_, err := svc.Place(0, book.Buy, book.GoodTillCancel, 100, 10)
	assert.ErrorIs(t, err, book.ErrInvalidOrder)
	_, err = svc.Modify(5, book.Buy, 100, 0)
	assert.ErrorIs(t, err, book.ErrInvalidOrder)

	count := 0
	_, err = wal.Replay(walDir, func(*wal.Record) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, count, "rejected constructions must not reach the journal")
}

func TestReplayRebuildsBook(t *testing.T) {
	svc, _, walDir := newTestService(t)

	_, err := svc.Place(1, book.Buy, book.GoodTillCancel, 99, 5)
	require.NoError(t, err)
	_, err = svc.Place(2, book.Sell, book.GoodTillCancel, 101, 7)
	require.NoError(t, err)
	_, err = svc.Place(3, book.Buy, book.GoodTillCancel, 100, 4)
	require.NoError(t, err)
	svc.Cancel(3)
	_, err = svc.Modify(1, book.Buy, 98, 5)
	require.NoError(t, err)
	want := svc.Depth()

	rebuilt := book.NewBook()
	seq := sequence.New(0)
	require.NoError(t, ReplayFromWAL(walDir, rebuilt, seq, zap.NewNop()))

	assert.Equal(t, want, rebuilt.Snapshot())
	assert.Equal(t, svc.Size(), rebuilt.Size())
	assert.Greater(t, seq.Current(), uint64(0), "sequencer must resume past the journal")
}

func TestReplayAppliesClear(t *testing.T) {
	svc, _, walDir := newTestService(t)

	_, err := svc.Place(1, book.Buy, book.GoodTillCancel, 99, 5)
	require.NoError(t, err)
	svc.Clear()

	rebuilt := book.NewBook()
	require.NoError(t, ReplayFromWAL(walDir, rebuilt, sequence.New(0), zap.NewNop()))
	assert.Equal(t, 0, rebuilt.Size())
}
