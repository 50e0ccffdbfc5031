package sim

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/cargo-agent/core/dispatch"
	"github.com/kilianp07/cargo-agent/core/ledger"
	"github.com/kilianp07/cargo-agent/core/model"
	infrasim "github.com/kilianp07/cargo-agent/infra/sim"
	"github.com/kilianp07/cargo-agent/internal/simtest"

	"github.com/kilianp07/cargo-agent/infra/logger"
)

func testServer(t *testing.T) (*simtest.Server, *dispatch.Pipeline, *http.ServeMux) {
	t.Helper()
	grid := model.Grid{
		Nodes: []model.Node{{ID: 1}, {ID: 2}},
		Edges: []model.Edge{{ID: 1, Cost: 1, Time: time.Second}},
		Connections: []model.Connection{
			{ID: 1, EdgeID: 1, FirstNodeID: 1, SecondNodeID: 2},
		},
	}
	srv := simtest.New(grid)
	t.Cleanup(srv.Close)

	gateway := infrasim.NewClient(infrasim.Config{BaseURL: srv.URL()})
	pipeline, err := dispatch.NewPipeline(
		gateway, dispatch.AcceptAllDecider{},
		ledger.NewCoinLedger(), ledger.NewOrderStore(),
		nil, nil, logger.NopLogger{}, time.Millisecond,
	)
	require.NoError(t, err)
	return srv, pipeline, NewMux(pipeline)
}

func TestHandler_StartInstallsTransporter(t *testing.T) {
	srv, pipeline, mux := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/sim/start", strings.NewReader(`{"token":"tok"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, srv.Running())
	assert.True(t, srv.OrdersSeeded())
	assert.NotZero(t, pipeline.TransporterID())
}

func TestHandler_StartRequiresToken(t *testing.T) {
	_, _, mux := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/sim/start", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_StopSimulation(t *testing.T) {
	srv, _, mux := testServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sim/start", strings.NewReader(`{"token":"tok"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sim/stop", strings.NewReader(`{"token":"tok"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, srv.Running())
}

func TestHandler_CoinsEmptyBeforeAnyDelivery(t *testing.T) {
	_, _, mux := testServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sim/coins", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_OrdersListing(t *testing.T) {
	srv, pipeline, mux := testServer(t)
	srv.SetTransporter(model.CargoTransporter{ID: 1, PositionNodeID: 1})
	pipeline.SetTransporterID(1)

	pipeline.HandleOrder(context.Background(), model.Order{ID: 11, TargetNodeID: 2, Value: 30})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, 11, orders[0].ID)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	_, _, mux := testServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sim/start", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sim/coins", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
