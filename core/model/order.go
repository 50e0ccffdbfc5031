package model

import (
	"encoding/json"
	"fmt"
)

// Order is a delivery request received from the broker. It only lives for
// one processing cycle; nothing is persisted across restarts.
type Order struct {
	ID                int    `json:"id"`
	OriginNodeID      int    `json:"originNodeId"`
	TargetNodeID      int    `json:"targetNodeId"`
	Load              int    `json:"load"`
	Value             int    `json:"value"`
	DeliveryDateUTC   string `json:"deliveryDateUtc"`
	ExpirationDateUTC string `json:"expirationDateUtc"`
}

// DecodeOrder parses an order-created payload leniently: fields that are
// missing or of the wrong type degrade to zero values instead of failing.
// Only a payload that is not a JSON object at all returns an error, in which
// case the message should be dropped.
func DecodeOrder(payload []byte) (Order, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Order{}, fmt.Errorf("decode order: %w", err)
	}
	return Order{
		ID:                intField(raw, "id"),
		OriginNodeID:      intField(raw, "originNodeId"),
		TargetNodeID:      intField(raw, "targetNodeId"),
		Load:              intField(raw, "load"),
		Value:             intField(raw, "value"),
		DeliveryDateUTC:   stringField(raw, "deliveryDateUtc"),
		ExpirationDateUTC: stringField(raw, "expirationDateUtc"),
	}, nil
}

func intField(raw map[string]json.RawMessage, key string) int {
	v, ok := raw[key]
	if !ok {
		return 0
	}
	var n int
	if err := json.Unmarshal(v, &n); err != nil {
		return 0
	}
	return n
}

func stringField(raw map[string]json.RawMessage, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}
