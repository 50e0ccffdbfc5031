package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/cargo-agent/core/model"
	"github.com/kilianp07/cargo-agent/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	OrdersTopic string `json:"orders_topic"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "cargo-agent"
	}
	if c.OrdersTopic == "" {
		c.OrdersTopic = "cargosim/orders/new"
	}
	if c.QoS == 0 {
		c.QoS = 1
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	return nil
}

// OrderHandler is invoked once per decoded order-created event. The
// subscriber guarantees decode failures never reach it.
type OrderHandler func(ctx context.Context, order model.Order)

// OrderSource delivers order-created events to a single handler.
type OrderSource interface {
	// Subscribe registers the handler; it must be called at most once.
	Subscribe(ctx context.Context, handle OrderHandler) error
	Close()
}

// Subscriber consumes order-created events from the broker. Malformed
// payloads are logged with the raw payload and dropped, never retried; the
// consumer loop survives every bad message.
type Subscriber struct {
	cli   paho.Client
	topic string
	qos   byte
	log   logger.Logger

	mu      sync.Mutex
	handler OrderHandler
	baseCtx context.Context
}

// NewSubscriber connects to the broker. The subscription to the orders topic
// is (re)established on every connect so a broker restart does not lose the
// handler.
func NewSubscriber(cfg Config) (*Subscriber, error) {
	log := logger.New("order-subscriber")
	s := &Subscriber{topic: cfg.OrdersTopic, qos: cfg.QoS, log: log}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID + "-" + uuid.NewString()[:8]).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		s.mu.Lock()
		handler := s.handler
		s.mu.Unlock()
		if handler == nil {
			return
		}
		if token := c.Subscribe(s.topic, s.qos, s.onMessage); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	s.cli = cli
	return s, nil
}

// Subscribe registers the single order handler and subscribes to the orders
// topic. The handler is invoked from the broker's delivery goroutine; callers
// needing mutual exclusion enforce it themselves.
func (s *Subscriber) Subscribe(ctx context.Context, handle OrderHandler) error {
	s.mu.Lock()
	s.handler = handle
	s.baseCtx = ctx
	s.mu.Unlock()

	if token := s.cli.Subscribe(s.topic, s.qos, s.onMessage); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", s.topic, token.Error())
	}
	s.log.Infof("subscribed to %s", s.topic)
	return nil
}

func (s *Subscriber) onMessage(_ paho.Client, msg paho.Message) {
	s.mu.Lock()
	handler := s.handler
	ctx := s.baseCtx
	s.mu.Unlock()
	if handler == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	payload := msg.Payload()
	s.log.Debugw("raw message received", map[string]any{"topic": msg.Topic(), "payload": string(payload)})

	order, err := model.DecodeOrder(payload)
	if err != nil {
		s.log.Errorf("dropping malformed order message: %v, payload: %s", err, string(payload))
		return
	}
	handler(ctx, order)
}

// Close disconnects from the broker.
func (s *Subscriber) Close() {
	if s.cli != nil && s.cli.IsConnected() {
		s.cli.Disconnect(250)
	}
}
