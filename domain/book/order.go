package book

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOrder rejects construction with a zero ID or zero quantity.
	ErrInvalidOrder = errors.New("book: invalid order")
	// ErrOverfill rejects a fill larger than the remaining quantity.
	ErrOverfill = errors.New("book: fill exceeds remaining quantity")
)

// Order is a resting or incoming limit order. ID, side, type, price and the
// initial quantity are fixed at construction; only the remaining quantity
// changes, and only through Fill.
//
// The prev/next/level links make the order its own position inside a price
// level queue, so cancellation never scans. They are owned by Book and must
// only be touched under its lock.
type Order struct {
	id        OrderID
	side      Side
	otype     OrderType
	price     Price
	initial   Quantity
	remaining Quantity

	prev, next *Order
	level      *level
}

// NewOrder validates and builds an order. A zero ID or zero quantity is a
// construction failure, not a book-level rejection.
func NewOrder(id OrderID, side Side, otype OrderType, price Price, qty Quantity) (*Order, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: zero order id", ErrInvalidOrder)
	}
	if qty == 0 {
		return nil, fmt.Errorf("%w: zero quantity (id=%d)", ErrInvalidOrder, id)
	}
	return &Order{
		id:        id,
		side:      side,
		otype:     otype,
		price:     price,
		initial:   qty,
		remaining: qty,
	}, nil
}

func (o *Order) ID() OrderID      { return o.id }
func (o *Order) Side() Side       { return o.side }
func (o *Order) Type() OrderType  { return o.otype }
func (o *Order) Price() Price     { return o.price }

// InitialQuantity is the quantity at admission.
func (o *Order) InitialQuantity() Quantity { return o.initial }

// RemainingQuantity is the unfilled quantity.
func (o *Order) RemainingQuantity() Quantity { return o.remaining }

// FilledQuantity is InitialQuantity minus RemainingQuantity.
func (o *Order) FilledQuantity() Quantity { return o.initial - o.remaining }

// IsFilled reports whether nothing remains to trade.
func (o *Order) IsFilled() bool { return o.remaining == 0 }

// Fill consumes qty from the remaining quantity. Filling zero is a no-op.
// Filling more than remains is a matcher bug and fails without mutating.
func (o *Order) Fill(qty Quantity) error {
	if qty == 0 {
		return nil
	}
	if qty > o.remaining {
		return fmt.Errorf("%w: id=%d fill=%d remaining=%d", ErrOverfill, o.id, qty, o.remaining)
	}
	o.remaining -= qty
	return nil
}
