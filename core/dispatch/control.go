package dispatch

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/kilianp07/cargo-agent/core/sim"
)

// StartSimulation installs the bearer token, starts the remote simulation,
// buys the agent's single transporter at a random grid node and seeds the
// initial orders. It runs under the same lock as order processing, so the
// token can never be observed half-updated by an in-flight order.
func (p *Pipeline) StartSimulation(ctx context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.token = token
	ctx = sim.WithToken(ctx, token)

	if err := p.gateway.StartSimulation(ctx); err != nil {
		return fmt.Errorf("start simulation: %w", err)
	}
	grid, err := p.gateway.GetGrid(ctx)
	if err != nil {
		return fmt.Errorf("fetch grid: %w", err)
	}
	if len(grid.Nodes) == 0 {
		return fmt.Errorf("grid has no nodes, cannot place transporter")
	}

	position := grid.Nodes[rand.Intn(len(grid.Nodes))].ID
	id, err := p.gateway.BuyTransporter(ctx, position)
	if err != nil {
		return fmt.Errorf("buy transporter: %w", err)
	}
	p.transporterID = id
	p.logger.Infof("transporter %d placed at node %d", id, position)

	if err := p.gateway.CreateOrders(ctx); err != nil {
		return fmt.Errorf("create orders: %w", err)
	}
	p.logger.Infof("simulation started")
	return nil
}

// StopSimulation stops the remote simulation using the supplied token.
func (p *Pipeline) StopSimulation(ctx context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.gateway.StopSimulation(sim.WithToken(ctx, token)); err != nil {
		return fmt.Errorf("stop simulation: %w", err)
	}
	p.logger.Infof("simulation stopped")
	return nil
}
