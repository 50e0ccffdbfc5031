package sim

import (
	"context"

	"github.com/kilianp07/cargo-agent/core/model"
)

// Gateway abstracts the remote simulation server. Implementations are
// stateless request/response per call; retry policy is the caller's decision.
// The bearer token travels in the context (see WithToken).
type Gateway interface {
	// AcceptOrder transitions the remote order to accepted.
	AcceptOrder(ctx context.Context, orderID int) error
	// GetTransporter fetches the transporter's current remote state.
	GetTransporter(ctx context.Context, transporterID int) (model.CargoTransporter, error)
	// MoveTransporter issues a single hop toward targetNodeID. Sequencing
	// hops is the caller's responsibility.
	MoveTransporter(ctx context.Context, transporterID, targetNodeID int) error
	// GetGrid fetches a fresh grid snapshot. Entries with missing required
	// fields are filtered out rather than failing the whole fetch.
	GetGrid(ctx context.Context) (model.Grid, error)
	// BuyTransporter purchases a transporter at the given node and returns
	// its id.
	BuyTransporter(ctx context.Context, positionNodeID int) (int, error)
	// CreateOrders asks the server to generate the initial batch of orders.
	CreateOrders(ctx context.Context) error
	StartSimulation(ctx context.Context) error
	StopSimulation(ctx context.Context) error
}
