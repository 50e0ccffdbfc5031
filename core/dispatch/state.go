package dispatch

// OrderState names a step in the per-order state machine. Rejected,
// Unroutable, Aborted and Delivered are terminal.
type OrderState string

const (
	StateReceived    OrderState = "received"
	StateRejected    OrderState = "rejected"
	StateAccepted    OrderState = "accepted"
	StateUnroutable  OrderState = "unroutable"
	StateDispatching OrderState = "dispatching"
	StateAborted     OrderState = "aborted"
	StateDelivered   OrderState = "delivered"
)

func (s OrderState) String() string { return string(s) }
