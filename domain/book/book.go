package book

import (
	"sync"
	"time"
)

// Book is a two-sided limit order book with price-time priority matching.
//
// Three structures make up its state: the bid ladder (best = highest price),
// the ask ladder (best = lowest price), and the order index keyed by ID. An
// indexed order sits in exactly one level queue of exactly one ladder, and a
// level exists only while its queue is non-empty.
//
// A single RWMutex guards all three. Add, Cancel, Modify and Clear take it
// exclusively for their whole duration, matching included; Size and Snapshot
// take it shared. Every operation is one atomic point: no caller ever sees a
// crossed book or a queued order missing from the index.
type Book struct {
	mu       sync.RWMutex
	bids     *ladder
	asks     *ladder
	orders   map[OrderID]*Order
	observer Observer
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{
		bids:   newLadder(),
		asks:   newLadder(),
		orders: make(map[OrderID]*Order),
	}
}

// Add admits an order and matches it against resting liquidity, returning the
// trades produced. Rejections (nil order, spent or zero-ID order, duplicate
// ID, IOC with nothing crossable, FOK that cannot fill completely) return an
// empty trade list and leave the book untouched.
func (b *Book) Add(o *Order) ([]Trade, error) {
	start := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()

	trades, admitted, err := b.addLocked(o)
	if err != nil {
		return nil, err
	}
	if !admitted {
		b.observe(OpAddOrderRejected, start, 0)
		return nil, nil
	}
	b.observe(OpAddOrderSuccess, start, 1)
	return trades, nil
}

func (b *Book) addLocked(o *Order) (trades []Trade, admitted bool, err error) {
	if o == nil || o.remaining == 0 || o.id == 0 {
		return nil, false, nil
	}
	if _, dup := b.orders[o.id]; dup {
		return nil, false, nil
	}
	if o.otype == ImmediateOrCancel && !b.canMatchLocked(o.side, o.price) {
		return nil, false, nil
	}
	if o.otype == FillOrKill && !b.canFillCompletelyLocked(o.side, o.price, o.remaining) {
		return nil, false, nil
	}

	b.ladderFor(o.side).upsert(o.price).enqueue(o)
	b.orders[o.id] = o

	trades, err = b.matchLocked()
	if err != nil {
		return nil, true, err
	}
	return trades, true, nil
}

// Cancel removes a resting order. An unknown ID is a no-op.
func (b *Book) Cancel(id OrderID) {
	start := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.orders[id]
	if !ok {
		b.observe(OpCancelOrderNotFound, start, 0)
		return
	}
	b.removeLocked(o)
	b.observe(OpCancelOrderSuccess, start, 1)
}

// Modify amends a resting order by cancel-and-replace under one lock
// acquisition. The replacement keeps the original's order type, joins the
// tail of its destination level (time priority is lost), and is matched
// immediately. An unknown ID returns no trades.
func (b *Book) Modify(m OrderModify) ([]Trade, error) {
	start := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, ok := b.orders[m.ID()]
	if !ok {
		b.observe(OpMatchOrderNotFound, start, 0)
		return nil, nil
	}
	otype := existing.otype

	b.removeLocked(existing)

	replacement, err := m.ToOrder(otype)
	if err != nil {
		// The cancel leg already happened; the invalid replacement is the
		// caller's construction failure to deal with.
		return nil, err
	}
	trades, _, err := b.addLocked(replacement)
	if err != nil {
		return nil, err
	}
	b.observe(OpMatchOrderSuccess, start, 1)
	return trades, nil
}

// Size returns the number of resting orders.
func (b *Book) Size() int {
	start := time.Now()
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.orders)
	b.observe(OpSize, start, 0)
	return n
}

// Snapshot aggregates both ladders into per-level depth, bids best-first then
// asks best-first. The view is consistent: it reflects a single moment.
func (b *Book) Snapshot() LevelSnapshot {
	start := time.Now()
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := LevelSnapshot{
		Bids: make([]LevelInfo, 0, b.bids.len()),
		Asks: make([]LevelInfo, 0, b.asks.len()),
	}
	b.bids.descend(func(lvl *level) bool {
		snap.Bids = append(snap.Bids, levelInfo(lvl))
		return true
	})
	b.asks.ascend(func(lvl *level) bool {
		snap.Asks = append(snap.Asks, levelInfo(lvl))
		return true
	})
	b.observe(OpGetOrderInfos, start, len(b.orders))
	return snap
}

// levelInfo sums remaining quantities order by order in 64 bits rather than
// trusting the maintained level total.
func levelInfo(lvl *level) LevelInfo {
	var sum uint64
	for o := lvl.head; o != nil; o = o.next {
		sum += uint64(o.remaining)
	}
	return LevelInfo{Price: lvl.price, Quantity: sum}
}

// Clear drops every resting order and both ladders.
func (b *Book) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids.clear()
	b.asks.clear()
	b.orders = make(map[OrderID]*Order)
}

/******************** matching ********************/

// matchLocked crosses the two best levels until the book uncrosses, then
// sweeps residual IOC/FOK orders out of the index.
func (b *Book) matchLocked() ([]Trade, error) {
	start := time.Now()
	var trades []Trade

	for {
		bidLvl := b.bids.max()
		askLvl := b.asks.min()
		if bidLvl == nil || askLvl == nil {
			break
		}
		if bidLvl.price < askLvl.price {
			break
		}

		for !bidLvl.empty() && !askLvl.empty() {
			bid := bidLvl.head
			ask := askLvl.head

			qty := bid.remaining
			if ask.remaining < qty {
				qty = ask.remaining
			}

			if err := bid.Fill(qty); err != nil {
				return trades, err
			}
			if err := ask.Fill(qty); err != nil {
				return trades, err
			}
			bidLvl.reduce(qty)
			askLvl.reduce(qty)

			// Executions print at the resting ask's price.
			px := ask.price
			trades = append(trades, Trade{
				Bid: TradeRecord{OrderID: bid.id, Price: px, Quantity: qty},
				Ask: TradeRecord{OrderID: ask.id, Price: px, Quantity: qty},
			})

			if bid.IsFilled() {
				delete(b.orders, bid.id)
				bidLvl.unlink(bid)
			}
			if ask.IsFilled() {
				delete(b.orders, ask.id)
				askLvl.unlink(ask)
			}
		}

		if bidLvl.empty() {
			b.bids.remove(bidLvl.price)
		}
		if askLvl.empty() {
			b.asks.remove(askLvl.price)
		}
	}

	// Residual IOC/FOK orders must not rest. Collect first, cancel second:
	// removing while ranging over the index is not safe.
	var sweep []*Order
	for _, o := range b.orders {
		if o.otype == ImmediateOrCancel || o.otype == FillOrKill {
			sweep = append(sweep, o)
		}
	}
	for _, o := range sweep {
		b.removeLocked(o)
	}

	b.observe(OpMatchOrders, start, len(trades))
	return trades, nil
}

/******************** admission helpers ********************/

// canMatchLocked reports whether at least one opposite order rests at a price
// crossable with the given limit. Constant time: only the opposite best.
func (b *Book) canMatchLocked(side Side, price Price) bool {
	if side == Buy {
		best := b.asks.min()
		return best != nil && price >= best.price
	}
	best := b.bids.max()
	return best != nil && price <= best.price
}

// canFillCompletelyLocked walks the opposite ladder best-first, accumulating
// remaining quantity across crossable levels until qty is covered or the next
// level is no longer crossable.
func (b *Book) canFillCompletelyLocked(side Side, price Price, qty Quantity) bool {
	var available uint64
	need := uint64(qty)
	filled := false

	if side == Buy {
		b.asks.ascend(func(lvl *level) bool {
			if lvl.price > price {
				return false
			}
			available += lvl.totalQty
			if available >= need {
				filled = true
				return false
			}
			return true
		})
	} else {
		b.bids.descend(func(lvl *level) bool {
			if lvl.price < price {
				return false
			}
			available += lvl.totalQty
			if available >= need {
				filled = true
				return false
			}
			return true
		})
	}
	return filled
}

/******************** internals ********************/

func (b *Book) ladderFor(side Side) *ladder {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

// removeLocked unlinks an order from its level, erases the level if that
// empties it, and drops the index entry.
func (b *Book) removeLocked(o *Order) {
	lvl := o.level
	side := b.ladderFor(o.side)
	lvl.unlink(o)
	if lvl.empty() {
		side.remove(lvl.price)
	}
	delete(b.orders, o.id)
}
