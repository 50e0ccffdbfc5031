package mqtt

import (
	"context"

	"github.com/kilianp07/cargo-agent/core/model"
)

// MockSubscriber delivers injected payloads synchronously. Tests use it in
// place of a live broker connection.
type MockSubscriber struct {
	ctx     context.Context
	handler OrderHandler
	Closed  bool
}

// NewMockSubscriber creates an unconnected order source.
func NewMockSubscriber() *MockSubscriber { return &MockSubscriber{} }

func (m *MockSubscriber) Subscribe(ctx context.Context, handle OrderHandler) error {
	m.ctx = ctx
	m.handler = handle
	return nil
}

func (m *MockSubscriber) Close() { m.Closed = true }

// Inject decodes the payload like the real subscriber and invokes the
// handler. Malformed payloads are dropped.
func (m *MockSubscriber) Inject(payload []byte) {
	if m.handler == nil {
		return
	}
	order, err := model.DecodeOrder(payload)
	if err != nil {
		return
	}
	ctx := m.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	m.handler(ctx, order)
}
