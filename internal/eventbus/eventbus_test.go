package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/cargo-agent/core/events"
)

func TestPublishFanOut(t *testing.T) {
	bus := New()
	defer bus.Close()

	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Publish(events.OrderEvent{OrderID: 7, State: "delivered", Coins: 50})

	for name, sub := range map[string]<-chan events.OrderEvent{"a": a, "b": b} {
		select {
		case e := <-sub:
			assert.Equal(t, 7, e.OrderID)
			assert.Equal(t, "delivered", e.State)
		case <-time.After(time.Second):
			t.Fatalf("subscriber %s did not receive the event", name)
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	defer bus.Close()

	sub := bus.Subscribe()
	bus.Unsubscribe(sub)

	_, ok := <-sub
	assert.False(t, ok)
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	bus := New()
	defer bus.Close()

	// Never drained; the buffer fills and further events are dropped.
	bus.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(events.OrderEvent{OrderID: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestSubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	bus := New()
	bus.Close()

	sub := bus.Subscribe()
	_, ok := <-sub
	assert.False(t, ok)
}
