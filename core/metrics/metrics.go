package metrics

import "time"

// OrderOutcome summarizes one completed dispatch pipeline run.
type OrderOutcome struct {
	OrderID  int
	State    string
	Coins    int
	Hops     int
	Duration time.Duration
}

// MetricsSink receives dispatch measurements. Implementations must not block
// the pipeline for long; errors are logged, never fatal.
type MetricsSink interface {
	RecordOrderOutcome(OrderOutcome) error
	RecordMove(success bool) error
}

// NopSink discards all measurements.
type NopSink struct{}

func (NopSink) RecordOrderOutcome(OrderOutcome) error { return nil }
func (NopSink) RecordMove(bool) error                 { return nil }
