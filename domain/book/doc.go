// Package book implements the in-memory limit order book: price-ordered bid
// and ask ladders with FIFO time priority inside each level, an order index
// for O(1) cancellation, and a matcher that crosses the best levels into
// trades. Three limit order types are supported: good-till-cancel,
// immediate-or-cancel and fill-or-kill.
//
// The package is self-contained and side-effect free: no logging, no I/O.
// Integration points are the returned trade slices and the optional Observer.
package book
