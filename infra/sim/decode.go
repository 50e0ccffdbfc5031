package sim

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/cargo-agent/core/model"
	"github.com/kilianp07/cargo-agent/infra/logger"
)

// decodeGrid parses a grid snapshot defensively: entries missing required
// fields are filtered out with a warning instead of failing the whole fetch.
// The server serializes keys in PascalCase; camelCase is accepted too.
func decodeGrid(body []byte, log logger.Logger) (model.Grid, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.Grid{}, fmt.Errorf("decode grid: %w", err)
	}

	nodesRaw, ok := field(raw, "nodes")
	if !ok {
		return model.Grid{}, fmt.Errorf("decode grid: missing nodes")
	}
	edgesRaw, ok := field(raw, "edges")
	if !ok {
		return model.Grid{}, fmt.Errorf("decode grid: missing edges")
	}
	connsRaw, ok := field(raw, "connections")
	if !ok {
		return model.Grid{}, fmt.Errorf("decode grid: missing connections")
	}

	var grid model.Grid
	for _, entry := range entries(nodesRaw) {
		id, ok := intEntry(entry, "id")
		if !ok {
			log.Warnf("grid node without id, skipping")
			continue
		}
		name, _ := stringEntry(entry, "name")
		grid.Nodes = append(grid.Nodes, model.Node{ID: id, Name: name})
	}
	for _, entry := range entries(edgesRaw) {
		id, okID := intEntry(entry, "id")
		cost, okCost := intEntry(entry, "cost")
		if !okID || !okCost {
			log.Warnf("grid edge with missing id or cost, skipping")
			continue
		}
		ts, _ := stringEntry(entry, "time")
		grid.Edges = append(grid.Edges, model.Edge{ID: id, Cost: cost, Time: parseTravelTime(ts)})
	}
	for _, entry := range entries(connsRaw) {
		id, _ := intEntry(entry, "id")
		edgeID, okEdge := intEntry(entry, "edgeId")
		first, okFirst := intEntry(entry, "firstNodeId")
		second, okSecond := intEntry(entry, "secondNodeId")
		if !okEdge || !okFirst || !okSecond {
			log.Warnf("grid connection with missing references, skipping")
			continue
		}
		grid.Connections = append(grid.Connections, model.Connection{
			ID: id, EdgeID: edgeID, FirstNodeID: first, SecondNodeID: second,
		})
	}
	return grid, nil
}

func field(raw map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	if v, ok := raw[key]; ok {
		return v, true
	}
	upper := strings.ToUpper(key[:1]) + key[1:]
	v, ok := raw[upper]
	return v, ok
}

func entries(raw json.RawMessage) []map[string]json.RawMessage {
	var out []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func intEntry(entry map[string]json.RawMessage, key string) (int, bool) {
	v, ok := field(entry, key)
	if !ok {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, false
	}
	return n, true
}

func stringEntry(entry map[string]json.RawMessage, key string) (string, bool) {
	v, ok := field(entry, key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

// parseTravelTime reads the server's "hh:mm:ss" timespan format, optionally
// with a leading day component ("d.hh:mm:ss") and fractional seconds.
// Unparseable values degrade to zero.
func parseTravelTime(s string) time.Duration {
	if s == "" {
		return 0
	}
	if i := strings.Index(s, "."); i >= 0 && i < strings.Index(s, ":") {
		days, err := strconv.Atoi(s[:i])
		if err != nil {
			return 0
		}
		rest := parseTravelTime(s[i+1:])
		return time.Duration(days)*24*time.Hour + rest
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}
	hours, err1 := strconv.Atoi(parts[0])
	minutes, err2 := strconv.Atoi(parts[1])
	seconds, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))
}
