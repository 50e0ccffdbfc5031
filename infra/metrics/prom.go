package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/cargo-agent/core/metrics"
)

// PromSink records dispatch outcomes in Prometheus metrics.
type PromSink struct {
	orders  *prometheus.CounterVec
	coins   prometheus.Counter
	moves   *prometheus.CounterVec
	hops    prometheus.Histogram
	latency prometheus.Histogram
}

// NewPromSink registers dispatch metrics on the default Prometheus
// registerer. The metrics server is started separately.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_processed_total",
		Help: "Total number of processed orders by terminal state",
	}, []string{"state"})
	coins := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coins_earned_total",
		Help: "Total coins credited to the reward ledger",
	})
	moves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "move_requests_total",
		Help: "Total transporter move requests",
	}, []string{"success"})
	hops := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_hops",
		Help:    "Number of hops in computed routes",
		Buckets: prometheus.LinearBuckets(1, 2, 10),
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_processing_seconds",
		Help:    "End to end processing time per order",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	if err := reg.Register(orders); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			orders = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(coins); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			coins = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(moves); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			moves = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(hops); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			hops = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}

	return &PromSink{orders: orders, coins: coins, moves: moves, hops: hops, latency: latency}, nil
}

// RecordOrderOutcome updates the per-order metrics for one pipeline run.
func (s *PromSink) RecordOrderOutcome(o coremetrics.OrderOutcome) error {
	s.orders.WithLabelValues(o.State).Inc()
	if o.Coins > 0 {
		s.coins.Add(float64(o.Coins))
	}
	if o.Hops > 0 {
		s.hops.Observe(float64(o.Hops))
	}
	s.latency.Observe(o.Duration.Seconds())
	return nil
}

// RecordMove counts one transporter move request.
func (s *PromSink) RecordMove(success bool) error {
	s.moves.WithLabelValues(strconv.FormatBool(success)).Inc()
	return nil
}
