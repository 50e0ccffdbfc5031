package model

import "time"

// Node is a location in the simulation grid. Identity is the ID; the name is
// informational only.
type Node struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Edge carries the two traversal weights of a link. Routing currently uses
// Time; Cost is kept because the simulation reports it.
type Edge struct {
	ID   int           `json:"id"`
	Cost int           `json:"cost"`
	Time time.Duration `json:"time"`
}

// Connection is a directed arc from FirstNodeID to SecondNodeID weighted by
// the referenced edge. The grid is not assumed symmetric; a return arc must
// exist explicitly. Several connections may share one edge.
type Connection struct {
	ID           int `json:"id"`
	EdgeID       int `json:"edgeId"`
	FirstNodeID  int `json:"firstNodeId"`
	SecondNodeID int `json:"secondNodeId"`
}

// Grid is the snapshot of the navigable world as returned by the simulation
// server. It is fetched fresh for each routing decision and never cached
// across orders.
type Grid struct {
	Nodes       []Node       `json:"nodes"`
	Edges       []Edge       `json:"edges"`
	Connections []Connection `json:"connections"`
}

// EdgeByID builds an id lookup over the grid's edges.
func (g Grid) EdgeByID() map[int]Edge {
	m := make(map[int]Edge, len(g.Edges))
	for _, e := range g.Edges {
		m[e.ID] = e
	}
	return m
}

// NodeByID builds an id lookup over the grid's nodes.
func (g Grid) NodeByID() map[int]Node {
	m := make(map[int]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		m[n.ID] = n
	}
	return m
}

// OutgoingConnections groups the grid's connections by their origin node.
func (g Grid) OutgoingConnections() map[int][]Connection {
	m := make(map[int][]Connection)
	for _, c := range g.Connections {
		m[c.FirstNodeID] = append(m[c.FirstNodeID], c)
	}
	return m
}
