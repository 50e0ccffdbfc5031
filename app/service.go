// Package app wires the configuration into a running agent: broker
// subscription, dispatch pipeline, metric sinks and the HTTP front door.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apisim "github.com/kilianp07/cargo-agent/api/sim"
	"github.com/kilianp07/cargo-agent/config"
	"github.com/kilianp07/cargo-agent/core/dispatch"
	"github.com/kilianp07/cargo-agent/core/ledger"
	coremetrics "github.com/kilianp07/cargo-agent/core/metrics"
	"github.com/kilianp07/cargo-agent/internal/eventbus"

	"github.com/kilianp07/cargo-agent/infra/logger"
	"github.com/kilianp07/cargo-agent/infra/metrics"
	"github.com/kilianp07/cargo-agent/infra/mqtt"
	infrasim "github.com/kilianp07/cargo-agent/infra/sim"
)

// Service orchestrates the subscriber, the dispatch pipeline and the servers.
type Service struct {
	Pipeline *dispatch.Pipeline
	source   mqtt.OrderSource
	bus      eventbus.EventBus
	log      logger.Logger
	apiAddr  string

	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	gateway := infrasim.NewClient(cfg.Sim)

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	pipeline, err := dispatch.NewPipeline(
		gateway,
		dispatch.CoinFlipDecider{},
		ledger.NewCoinLedger(),
		ledger.NewOrderStore(),
		sink,
		bus,
		logg,
		time.Duration(cfg.Sim.HopDelayMS)*time.Millisecond,
	)
	if err != nil {
		return nil, fmt.Errorf("dispatch pipeline: %w", err)
	}

	source, err := mqtt.NewSubscriber(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt subscriber: %w", err)
	}

	return &Service{
		Pipeline:    pipeline,
		source:      source,
		bus:         bus,
		log:         logg,
		apiAddr:     cfg.API.Addr,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Run starts the subscriber and servers and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.source.Subscribe(ctx, s.Pipeline.HandleOrder); err != nil {
		return fmt.Errorf("subscribe orders: %w", err)
	}

	lifecycle := s.bus.Subscribe()
	go func() {
		for e := range lifecycle {
			s.log.Debugw("order state", map[string]any{
				"order_id": e.OrderID,
				"state":    e.State,
				"hop":      e.Hop,
				"coins":    e.Coins,
			})
		}
	}()

	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.apiAddr, Handler: apisim.NewMux(s.Pipeline)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api server shutdown: %v", err)
		}
	}()
	s.log.Infof("front door listening on %s", s.apiAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.source.Close()
	s.bus.Close()
	return nil
}
