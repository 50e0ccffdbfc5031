// Package events defines the order lifecycle events published on the
// internal event bus.
package events

// OrderEvent is emitted on every state transition of the dispatch pipeline.
// Hop is only meaningful for Dispatching and Aborted states; Coins only for
// Delivered.
type OrderEvent struct {
	OrderID int
	State   string
	Hop     int
	Coins   int
	Err     error
}
