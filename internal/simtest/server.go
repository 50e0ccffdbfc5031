// Package simtest provides an in-process simulation server for tests. It
// speaks the same HTTP surface as the real server, including PascalCase grid
// JSON and timespan-formatted edge times.
package simtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kilianp07/cargo-agent/core/model"
)

// Server is a fake simulation backend with a static grid and a transporter
// registry. All knobs are safe to set before requests start flowing.
type Server struct {
	// Token, when non-empty, is required as bearer token on every call;
	// mismatches answer 401.
	Token string
	// MoveDelay artificially slows down move requests.
	MoveDelay time.Duration
	// FailMoveAtNode makes moves targeting this node answer 500.
	FailMoveAtNode int

	mu           sync.Mutex
	grid         model.Grid
	transporters map[int]*model.CargoTransporter
	nextID       int
	accepted     []int
	moves        []int
	running      bool
	ordersSeeded bool

	srv *httptest.Server
}

// New starts a fake server over the given grid.
func New(grid model.Grid) *Server {
	s := &Server{
		grid:         grid,
		transporters: map[int]*model.CargoTransporter{},
		nextID:       1,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/Grid/Get", s.handleGrid)
	mux.HandleFunc("/Order/Accept", s.handleAccept)
	mux.HandleFunc("/Order/Create", s.handleCreateOrders)
	mux.HandleFunc("/CargoTransporter/Get", s.handleGetTransporter)
	mux.HandleFunc("/CargoTransporter/Buy", s.handleBuy)
	mux.HandleFunc("/CargoTransporter/Move", s.handleMove)
	mux.HandleFunc("/Sim/Start", s.handleStart)
	mux.HandleFunc("/Sim/Stop", s.handleStop)
	s.srv = httptest.NewServer(mux)
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string { return s.srv.URL }

// Close shuts the server down.
func (s *Server) Close() { s.srv.Close() }

// AcceptedOrders returns the ids accepted so far.
func (s *Server) AcceptedOrders() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.accepted))
	copy(out, s.accepted)
	return out
}

// Moves returns the sequence of move target nodes received.
func (s *Server) Moves() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.moves))
	copy(out, s.moves)
	return out
}

// Running reports whether Sim/Start was called without a later Sim/Stop.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// OrdersSeeded reports whether Order/Create was called.
func (s *Server) OrdersSeeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ordersSeeded
}

// Transporter returns the registered transporter state.
func (s *Server) Transporter(id int) (model.CargoTransporter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transporters[id]
	if !ok {
		return model.CargoTransporter{}, false
	}
	return *t, true
}

// SetTransporter seeds a transporter directly, bypassing Buy.
func (s *Server) SetTransporter(t model.CargoTransporter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := t
	s.transporters[t.ID] = &cp
	if t.ID >= s.nextID {
		s.nextID = t.ID + 1
	}
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if s.Token == "" {
		return true
	}
	if r.Header.Get("Authorization") != "Bearer "+s.Token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func (s *Server) handleGrid(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	grid := s.grid
	s.mu.Unlock()

	nodes := make([]map[string]any, 0, len(grid.Nodes))
	for _, n := range grid.Nodes {
		nodes = append(nodes, map[string]any{"Id": n.ID, "Name": n.Name})
	}
	edges := make([]map[string]any, 0, len(grid.Edges))
	for _, e := range grid.Edges {
		edges = append(edges, map[string]any{"Id": e.ID, "Cost": e.Cost, "Time": formatTimeSpan(e.Time)})
	}
	conns := make([]map[string]any, 0, len(grid.Connections))
	for _, c := range grid.Connections {
		conns = append(conns, map[string]any{
			"Id": c.ID, "EdgeId": c.EdgeID, "FirstNodeId": c.FirstNodeID, "SecondNodeId": c.SecondNodeID,
		})
	}
	writeJSON(w, map[string]any{"Nodes": nodes, "Edges": edges, "Connections": conns})
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	id, err := strconv.Atoi(r.URL.Query().Get("orderId"))
	if err != nil {
		http.Error(w, "bad orderId", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.accepted = append(s.accepted, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleCreateOrders(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	s.mu.Lock()
	s.ordersSeeded = true
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGetTransporter(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	id, err := strconv.Atoi(r.URL.Query().Get("transporterId"))
	if err != nil {
		http.Error(w, "bad transporterId", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	t, ok := s.transporters[id]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, t)
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	pos, err := strconv.Atoi(r.URL.Query().Get("positionNodeId"))
	if err != nil {
		http.Error(w, "bad positionNodeId", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.transporters[id] = &model.CargoTransporter{ID: id, PositionNodeID: pos}
	s.mu.Unlock()
	writeJSON(w, map[string]int{"id": id})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	if s.MoveDelay > 0 {
		time.Sleep(s.MoveDelay)
	}
	id, err1 := strconv.Atoi(r.URL.Query().Get("transporterId"))
	target, err2 := strconv.Atoi(r.URL.Query().Get("targetNodeId"))
	if err1 != nil || err2 != nil {
		http.Error(w, "bad parameters", http.StatusBadRequest)
		return
	}
	if s.FailMoveAtNode != 0 && target == s.FailMoveAtNode {
		http.Error(w, "move rejected", http.StatusInternalServerError)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transporters[id]
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	t.PositionNodeID = target
	s.moves = append(s.moves, target)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// formatTimeSpan renders a duration the way the real server does:
// "hh:mm:ss".
func formatTimeSpan(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	sec := d / time.Second
	parts := []string{
		fmt.Sprintf("%02d", h),
		fmt.Sprintf("%02d", m),
		fmt.Sprintf("%02d", sec),
	}
	return strings.Join(parts, ":")
}
