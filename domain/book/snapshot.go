package book

// LevelInfo is one aggregated price level: the price and the summed remaining
// quantity of every order resting there. The sum is 64-bit; many small orders
// at one level can exceed the 32-bit per-order range.
type LevelInfo struct {
	Price    Price
	Quantity uint64
}

// LevelSnapshot is a point-in-time depth view of both ladders. Bids are
// ordered best-first (descending price), asks best-first (ascending price).
type LevelSnapshot struct {
	Bids []LevelInfo
	Asks []LevelInfo
}
