package test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/cargo-agent/core/dispatch"
	"github.com/kilianp07/cargo-agent/core/ledger"
	"github.com/kilianp07/cargo-agent/core/model"
	"github.com/kilianp07/cargo-agent/infra/logger"
	"github.com/kilianp07/cargo-agent/infra/mqtt"
	infrasim "github.com/kilianp07/cargo-agent/infra/sim"
	"github.com/kilianp07/cargo-agent/internal/simtest"
)

func lineGrid(n int) model.Grid {
	var g model.Grid
	for i := 1; i <= n; i++ {
		g.Nodes = append(g.Nodes, model.Node{ID: i})
	}
	for i := 1; i < n; i++ {
		g.Edges = append(g.Edges, model.Edge{ID: i, Cost: 1, Time: time.Second})
		g.Connections = append(g.Connections, model.Connection{
			ID: i, EdgeID: i, FirstNodeID: i, SecondNodeID: i + 1,
		})
	}
	return g
}

func orderPayload(id, target, value int, expiration time.Time) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%d,"originNodeId":1,"targetNodeId":%d,"load":1,"value":%d,"deliveryDateUtc":%q,"expirationDateUtc":%q}`,
		id, target, value,
		expiration.Add(-time.Hour).Format(time.RFC3339),
		expiration.Format(time.RFC3339),
	))
}

func newAgent(t *testing.T, srv *simtest.Server) (*dispatch.Pipeline, *mqtt.MockSubscriber, *ledger.CoinLedger) {
	t.Helper()
	gateway := infrasim.NewClient(infrasim.Config{BaseURL: srv.URL()})
	coins := ledger.NewCoinLedger()
	pipeline, err := dispatch.NewPipeline(
		gateway, dispatch.AcceptAllDecider{},
		coins, ledger.NewOrderStore(),
		nil, nil, logger.NopLogger{}, time.Millisecond,
	)
	require.NoError(t, err)

	sub := mqtt.NewMockSubscriber()
	require.NoError(t, sub.Subscribe(context.Background(), pipeline.HandleOrder))
	return pipeline, sub, coins
}

func TestAgent_DeliversOrderEndToEnd(t *testing.T) {
	srv := simtest.New(lineGrid(4))
	defer srv.Close()
	srv.Token = "tok"

	pipeline, sub, coins := newAgent(t, srv)
	require.NoError(t, pipeline.StartSimulation(context.Background(), "tok"))

	sub.Inject(orderPayload(1, 4, 120, time.Now().UTC().Add(time.Hour)))

	// The transporter was placed at a random node, so the hop count varies,
	// but it must end up at the target with the full reward recorded.
	assert.Equal(t, []int{120}, coins.Snapshot())
	assert.Equal(t, []int{1}, srv.AcceptedOrders())

	transporter, ok := srv.Transporter(pipeline.TransporterID())
	require.True(t, ok)
	assert.Equal(t, 4, transporter.PositionNodeID)
}

func TestAgent_LateOrderEarnsPenalizedReward(t *testing.T) {
	srv := simtest.New(lineGrid(2))
	defer srv.Close()

	pipeline, sub, coins := newAgent(t, srv)
	srv.SetTransporter(model.CargoTransporter{ID: 1, PositionNodeID: 1})
	pipeline.SetTransporterID(1)

	sub.Inject(orderPayload(1, 2, 100, time.Now().UTC().Add(-time.Hour)))

	assert.Equal(t, []int{50}, coins.Snapshot())
}

func TestAgent_MalformedMessageNeverReachesLedger(t *testing.T) {
	srv := simtest.New(lineGrid(2))
	defer srv.Close()

	pipeline, sub, coins := newAgent(t, srv)
	srv.SetTransporter(model.CargoTransporter{ID: 1, PositionNodeID: 1})
	pipeline.SetTransporterID(1)

	sub.Inject([]byte(`{{{ definitely not json`))

	assert.Empty(t, coins.Snapshot())
	assert.Empty(t, srv.AcceptedOrders())
	assert.Empty(t, pipeline.Orders())
}

func TestAgent_MoveFailureLeavesTransporterMidRoute(t *testing.T) {
	srv := simtest.New(lineGrid(4))
	defer srv.Close()
	srv.FailMoveAtNode = 3

	pipeline, sub, coins := newAgent(t, srv)
	srv.SetTransporter(model.CargoTransporter{ID: 1, PositionNodeID: 1})
	pipeline.SetTransporterID(1)

	sub.Inject(orderPayload(1, 4, 100, time.Now().UTC().Add(time.Hour)))

	// Hop to node 2 succeeded, hop to node 3 failed, hop to 4 never sent.
	assert.Equal(t, []int{2}, srv.Moves())
	assert.Empty(t, coins.Snapshot())

	transporter, _ := srv.Transporter(1)
	assert.Equal(t, 2, transporter.PositionNodeID)
}

func TestAgent_BackToBackOrdersAreSerialized(t *testing.T) {
	srv := simtest.New(lineGrid(3))
	defer srv.Close()
	srv.MoveDelay = 20 * time.Millisecond

	pipeline, sub, coins := newAgent(t, srv)
	srv.SetTransporter(model.CargoTransporter{ID: 1, PositionNodeID: 1})
	pipeline.SetTransporterID(1)

	done := make(chan struct{}, 2)
	for i := 1; i <= 2; i++ {
		go func(id int) {
			sub.Inject(orderPayload(id, 3, 10, time.Now().UTC().Add(time.Hour)))
			done <- struct{}{}
		}(i)
	}
	<-done
	<-done

	// The orders ran one after the other: the first moved the transporter
	// to node 3, so the second found it already at the target and earned
	// its reward without extra hops.
	assert.Equal(t, []int{10, 10}, coins.Snapshot())
	assert.Equal(t, []int{2, 3}, srv.Moves())
}

func TestAgent_TokenIsForwardedOnEveryCall(t *testing.T) {
	srv := simtest.New(lineGrid(2))
	defer srv.Close()
	srv.Token = "fresh"

	pipeline, sub, coins := newAgent(t, srv)
	require.NoError(t, pipeline.StartSimulation(context.Background(), "fresh"))

	// Every call made by the pipeline and the control path carried the
	// bearer token, otherwise the mock server would have answered 401.
	sub.Inject(orderPayload(1, 2, 10, time.Now().UTC().Add(time.Hour)))
	assert.Equal(t, []int{10}, coins.Snapshot())
}
