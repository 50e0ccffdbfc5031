package metrics

import (
	"errors"

	coremetrics "github.com/kilianp07/cargo-agent/core/metrics"
)

// MultiSink fans out measurements to several sinks. Errors are joined so one
// failing sink does not hide the others.
type MultiSink struct {
	sinks []coremetrics.MetricsSink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordOrderOutcome(o coremetrics.OrderOutcome) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordOrderOutcome(o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordMove(success bool) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordMove(success); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
