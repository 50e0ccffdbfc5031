// Package sim exposes the agent's HTTP front door: simulation start/stop and
// read-only views of the coin ledger and received orders. It never touches
// the dispatch pipeline's internals beyond its exported surface.
package sim

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/cargo-agent/core/dispatch"
	"github.com/kilianp07/cargo-agent/infra/logger"
)

type controlRequest struct {
	Token string `json:"token"`
}

// NewMux mounts the front-door routes on a fresh ServeMux.
func NewMux(pipeline *dispatch.Pipeline) *http.ServeMux {
	log := logger.New("api")
	mux := http.NewServeMux()

	mux.HandleFunc("/sim/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req controlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
			http.Error(w, "token is required", http.StatusBadRequest)
			return
		}
		if err := pipeline.StartSimulation(r.Context(), req.Token); err != nil {
			log.Errorf("start simulation: %v", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, map[string]string{"status": "started"})
	})

	mux.HandleFunc("/sim/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req controlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
			http.Error(w, "token is required", http.StatusBadRequest)
			return
		}
		if err := pipeline.StopSimulation(r.Context(), req.Token); err != nil {
			log.Errorf("stop simulation: %v", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, map[string]string{"status": "stopped"})
	})

	mux.HandleFunc("/sim/coins", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, pipeline.Coins())
	})

	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, pipeline.Orders())
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
