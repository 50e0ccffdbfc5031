package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/cargo-agent/core/events"
	"github.com/kilianp07/cargo-agent/core/ledger"
	"github.com/kilianp07/cargo-agent/core/logger"
	"github.com/kilianp07/cargo-agent/core/metrics"
	"github.com/kilianp07/cargo-agent/core/model"
	"github.com/kilianp07/cargo-agent/core/routing"
	"github.com/kilianp07/cargo-agent/core/sim"
	"github.com/kilianp07/cargo-agent/internal/eventbus"
)

// Pipeline orchestrates one order at a time from acceptance through delivery
// or abort. Successive orders are serialized end to end: the shared
// transporter and the process-wide token make concurrent processing unsafe.
type Pipeline struct {
	gateway  sim.Gateway
	decider  AcceptanceDecider
	ledger   *ledger.CoinLedger
	orders   *ledger.OrderStore
	sink     metrics.MetricsSink
	bus      eventbus.EventBus
	logger   logger.Logger
	hopDelay time.Duration

	mu            sync.Mutex
	token         string
	transporterID int
}

// NewPipeline creates a Pipeline. A nil sink defaults to NopSink and a nil
// bus disables event publishing. hopDelay is the settling wait before each
// move request; zero or negative defaults to one second.
func NewPipeline(gateway sim.Gateway, decider AcceptanceDecider, coins *ledger.CoinLedger, orders *ledger.OrderStore, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger, hopDelay time.Duration) (*Pipeline, error) {
	if gateway == nil || decider == nil || coins == nil || orders == nil || log == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewPipeline")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if hopDelay <= 0 {
		hopDelay = time.Second
	}
	return &Pipeline{
		gateway:  gateway,
		decider:  decider,
		ledger:   coins,
		orders:   orders,
		sink:     sink,
		bus:      bus,
		logger:   log,
		hopDelay: hopDelay,
	}, nil
}

// SetToken installs the bearer token used for all subsequent gateway calls.
// It is only called from the serialized control path.
func (p *Pipeline) SetToken(token string) {
	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
}

// SetTransporterID records the transporter bought at simulation start.
func (p *Pipeline) SetTransporterID(id int) {
	p.mu.Lock()
	p.transporterID = id
	p.mu.Unlock()
}

// TransporterID returns the transporter established at simulation start,
// 0 when none has been bought yet.
func (p *Pipeline) TransporterID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transporterID
}

// Coins returns the current reward ledger snapshot.
func (p *Pipeline) Coins() []int { return p.ledger.Snapshot() }

// Orders returns every order received so far.
func (p *Pipeline) Orders() []model.Order { return p.orders.All() }

// HandleOrder processes one order-created event. At most one invocation runs
// at a time; callers may invoke it from the broker's delivery goroutine.
// Every failure terminates this order only and is surfaced in logs.
func (p *Pipeline) HandleOrder(ctx context.Context, order model.Order) {
	if ctx.Err() != nil {
		p.logger.Infof("shutdown requested, not starting order %d", order.ID)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	cycle := uuid.NewString()
	p.orders.Add(order)
	p.publish(events.OrderEvent{OrderID: order.ID, State: StateReceived.String()})
	p.logger.Infof("order %d received: origin=%d target=%d value=%d cycle=%s",
		order.ID, order.OriginNodeID, order.TargetNodeID, order.Value, cycle)

	state, hops, coins := p.process(sim.WithToken(ctx, p.token), order)
	if err := p.sink.RecordOrderOutcome(metrics.OrderOutcome{
		OrderID:  order.ID,
		State:    state.String(),
		Coins:    coins,
		Hops:     hops,
		Duration: time.Since(start),
	}); err != nil {
		p.logger.Warnf("record order outcome: %v", err)
	}
}

// process runs the per-order state machine and returns the terminal state,
// the number of hops attempted and the coins earned.
func (p *Pipeline) process(ctx context.Context, order model.Order) (OrderState, int, int) {
	if !p.decider.Accept(order) {
		p.logger.Infof("order %d rejected by acceptance policy", order.ID)
		p.publish(events.OrderEvent{OrderID: order.ID, State: StateRejected.String()})
		return StateRejected, 0, 0
	}

	p.logger.Infof("accepting order %d", order.ID)
	if err := p.gateway.AcceptOrder(ctx, order.ID); err != nil {
		p.logRemoteFailure("accept order", order.ID, err)
		p.publish(events.OrderEvent{OrderID: order.ID, State: StateAborted.String(), Err: err})
		return StateAborted, 0, 0
	}
	p.publish(events.OrderEvent{OrderID: order.ID, State: StateAccepted.String()})

	transporterID := p.transporterID
	if transporterID == 0 {
		p.logger.Errorf("no transporter available, skipping order %d", order.ID)
		return StateAborted, 0, 0
	}

	transporter, err := p.gateway.GetTransporter(ctx, transporterID)
	if err != nil {
		p.logRemoteFailure("get transporter", order.ID, err)
		return StateAborted, 0, 0
	}
	if transporter.InTransit {
		p.logger.Errorf("transporter %d is in transit, cannot move for order %d", transporterID, order.ID)
		return StateAborted, 0, 0
	}

	grid, err := p.gateway.GetGrid(ctx)
	if err != nil {
		p.logRemoteFailure("get grid", order.ID, err)
		return StateAborted, 0, 0
	}

	path := routing.FindPath(grid, transporter.PositionNodeID, order.TargetNodeID, p.logger)
	if len(path) == 0 {
		p.logger.Errorf("no path from node %d to node %d for order %d",
			transporter.PositionNodeID, order.TargetNodeID, order.ID)
		p.publish(events.OrderEvent{OrderID: order.ID, State: StateUnroutable.String()})
		return StateUnroutable, 0, 0
	}
	p.logger.Infof("order %d path: %v", order.ID, path)

	hops := path[1:]
	for i, nodeID := range hops {
		hop := i + 1
		p.publish(events.OrderEvent{OrderID: order.ID, State: StateDispatching.String(), Hop: hop})
		if !p.settle(ctx) {
			p.logger.Warnf("shutdown during order %d at hop %d, transporter stays at last node", order.ID, hop)
			return StateAborted, hop, 0
		}
		if err := p.gateway.MoveTransporter(ctx, transporterID, nodeID); err != nil {
			p.logRemoteFailure("move transporter", order.ID, err)
			if rerr := p.sink.RecordMove(false); rerr != nil {
				p.logger.Warnf("record move: %v", rerr)
			}
			// No rollback: the transporter stays wherever the last
			// successful move left it.
			p.logger.Errorf("order %d aborted at hop %d/%d", order.ID, hop, len(hops))
			p.publish(events.OrderEvent{OrderID: order.ID, State: StateAborted.String(), Hop: hop, Err: err})
			return StateAborted, hop, 0
		}
		p.logger.Infof("moved transporter %d to node %d (hop %d/%d)", transporterID, nodeID, hop, len(hops))
		if rerr := p.sink.RecordMove(true); rerr != nil {
			p.logger.Warnf("record move: %v", rerr)
		}
	}

	coins := CalculateReward(order.Value, order.DeliveryDateUTC, order.ExpirationDateUTC, time.Now().UTC(), p.logger)
	p.ledger.Add(coins)
	p.logger.Infof("order %d delivered, earned %d coins", order.ID, coins)
	p.publish(events.OrderEvent{OrderID: order.ID, State: StateDelivered.String(), Hop: len(hops), Coins: coins})
	return StateDelivered, len(hops), coins
}

// settle waits the fixed pacing delay before a move request. It returns
// false when the context is cancelled during the wait.
func (p *Pipeline) settle(ctx context.Context) bool {
	timer := time.NewTimer(p.hopDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Pipeline) logRemoteFailure(op string, orderID int, err error) {
	var re *sim.RemoteError
	if errors.As(err, &re) {
		p.logger.Errorf("%s for order %d failed with status %d", op, orderID, re.StatusCode)
		if re.Unauthorized() {
			p.logger.Errorf("unauthorized response, check the simulation token")
		}
		return
	}
	p.logger.Errorf("%s for order %d failed: %v", op, orderID, err)
}

func (p *Pipeline) publish(e events.OrderEvent) {
	if p.bus != nil {
		p.bus.Publish(e)
	}
}
