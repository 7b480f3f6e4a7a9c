package book

import "time"

// Operation names passed to the observer. One event per Add, Cancel, Modify,
// Size and Snapshot call, plus one for each matcher pass; Clear and
// SetObserver emit none.
const (
	OpAddOrderSuccess     = "AddOrder_Success"
	OpAddOrderRejected    = "AddOrder_Rejected"
	OpCancelOrderSuccess  = "CancelOrder_Success"
	OpCancelOrderNotFound = "CancelOrder_NotFound"
	OpMatchOrderSuccess   = "MatchOrder_Success"
	OpMatchOrderNotFound  = "MatchOrder_NotFound"
	OpMatchOrders         = "MatchOrders"
	OpSize                = "Size"
	OpGetOrderInfos       = "GetOrderInfos"
)

// Observer receives one callback per operation with its wall-clock bounds and
// the number of orders (or trades, for MatchOrders) affected.
//
// The callback runs while the book lock is held: it must return quickly and
// must never call back into the book.
type Observer func(op string, start, end time.Time, affected int)

// SetObserver installs or removes (nil) the observer hook.
func (b *Book) SetObserver(obs Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observer = obs
}

func (b *Book) observe(op string, start time.Time, affected int) {
	if b.observer != nil {
		b.observer(op, start, time.Now(), affected)
	}
}
