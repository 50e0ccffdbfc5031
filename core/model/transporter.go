package model

// CargoTransporter is the remote-controlled entity that physically fulfills
// orders. Its state is authoritative on the simulation server and is fetched
// on demand, never cached.
type CargoTransporter struct {
	ID             int  `json:"id"`
	PositionNodeID int  `json:"positionNodeId"`
	InTransit      bool `json:"inTransit"`
	Load           int  `json:"load"`
	Capacity       int  `json:"capacity"`
}
