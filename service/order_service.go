// Package service coordinates the write path: journal the command, apply it
// to the book, make resulting trades durable in the outbox. All coordination
// between domain and infra happens here; the book itself stays pure.
package service

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"vela/domain/book"
	"vela/infra/outbox"
	"vela/infra/sequence"
	"vela/infra/wal"
)

// TradeEvent is the published form of one execution.
type TradeEvent struct {
	V        int           `json:"v"`
	Seq      uint64        `json:"seq"`
	BidOrder book.OrderID  `json:"bid_order"`
	AskOrder book.OrderID  `json:"ask_order"`
	Price    book.Price    `json:"price"`
	Qty      book.Quantity `json:"qty"`
	Time     int64         `json:"ts"`
}

// OrderService is the only write entry point into the engine.
type OrderService struct {
	book   *book.Book
	seq    *sequence.Sequencer
	wal    *wal.WAL
	outbox *outbox.Outbox
	log    *zap.Logger
}

func NewOrderService(
	b *book.Book,
	seq *sequence.Sequencer,
	w *wal.WAL,
	ob *outbox.Outbox,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		book:   b,
		seq:    seq,
		wal:    w,
		outbox: ob,
		log:    log,
	}
}

// Place journals and applies a new order, returning the trades it produced.
// A rejected order returns no trades; an invalid one fails construction.
func (s *OrderService) Place(
	id book.OrderID,
	side book.Side,
	otype book.OrderType,
	price book.Price,
	qty book.Quantity,
) ([]book.Trade, error) {
	o, err := book.NewOrder(id, side, otype, price, qty)
	if err != nil {
		return nil, err
	}

	cmdSeq := s.seq.Next()
	s.journal(wal.NewRecord(wal.RecordPlace, cmdSeq, wal.PlaceIntent{
		ID:    id,
		Side:  side,
		Type:  otype,
		Price: price,
		Qty:   qty,
	}.Encode()))

	trades, err := s.book.Add(o)
	if err != nil {
		return nil, err
	}

	s.publish(trades)
	s.log.Debug("order placed",
		zap.Uint64("id", id),
		zap.Stringer("side", side),
		zap.Stringer("type", otype),
		zap.Int32("price", price),
		zap.Uint32("qty", qty),
		zap.Int("trades", len(trades)),
	)
	return trades, nil
}

// Cancel journals and applies a cancellation. Unknown IDs are no-ops.
func (s *OrderService) Cancel(id book.OrderID) {
	cmdSeq := s.seq.Next()
	s.journal(wal.NewRecord(wal.RecordCancel, cmdSeq, wal.CancelIntent{ID: id}.Encode()))
	s.book.Cancel(id)
}

// Modify journals and applies a cancel-and-replace amendment.
func (s *OrderService) Modify(
	id book.OrderID,
	side book.Side,
	price book.Price,
	qty book.Quantity,
) ([]book.Trade, error) {
	// Refuse amendments that cannot construct a valid replacement before
	// they reach the journal; replay re-applies every journaled command.
	if id == 0 || qty == 0 {
		return nil, book.ErrInvalidOrder
	}

	cmdSeq := s.seq.Next()
	s.journal(wal.NewRecord(wal.RecordModify, cmdSeq, wal.ModifyIntent{
		ID:    id,
		Side:  side,
		Price: price,
		Qty:   qty,
	}.Encode()))

	trades, err := s.book.Modify(book.NewOrderModify(id, side, price, qty))
	if err != nil {
		return nil, err
	}
	s.publish(trades)
	return trades, nil
}

// Clear journals and empties the book.
func (s *OrderService) Clear() {
	cmdSeq := s.seq.Next()
	s.journal(wal.NewRecord(wal.RecordClear, cmdSeq, nil))
	s.book.Clear()
}

// Size returns the number of resting orders.
func (s *OrderService) Size() int {
	return s.book.Size()
}

// Depth returns a consistent aggregated snapshot of both sides.
func (s *OrderService) Depth() book.LevelSnapshot {
	return s.book.Snapshot()
}

// journal appends best-effort: the engine stays available if the disk does
// not, and the gap is visible in the log.
func (s *OrderService) journal(rec *wal.Record) {
	if s.wal == nil {
		return
	}
	if err := s.wal.Append(rec); err != nil {
		s.log.Error("wal append failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
	}
}

// publish makes each trade durable in the outbox; the broadcaster drains it
// to the broker asynchronously.
func (s *OrderService) publish(trades []book.Trade) {
	if s.outbox == nil {
		return
	}
	now := time.Now().UnixNano()
	for _, tr := range trades {
		seq := s.seq.Next()
		ev := TradeEvent{
			V:        1,
			Seq:      seq,
			BidOrder: tr.Bid.OrderID,
			AskOrder: tr.Ask.OrderID,
			Price:    tr.Bid.Price,
			Qty:      tr.Bid.Quantity,
			Time:     now,
		}
		payload, err := json.Marshal(ev)
		if err != nil {
			s.log.Error("trade event encode failed", zap.Error(err))
			continue
		}
		if err := s.outbox.Put(seq, payload); err != nil {
			s.log.Error("outbox put failed", zap.Uint64("seq", seq), zap.Error(err))
		}
	}
}
