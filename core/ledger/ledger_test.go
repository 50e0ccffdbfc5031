package ledger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/cargo-agent/core/model"
)

func TestCoinLedger_AppendOrder(t *testing.T) {
	l := NewCoinLedger()
	l.Add(10)
	l.Add(0)
	l.Add(25)
	assert.Equal(t, []int{10, 0, 25}, l.Snapshot())
	assert.Equal(t, 35, l.Total())
}

func TestCoinLedger_SnapshotIsACopy(t *testing.T) {
	l := NewCoinLedger()
	l.Add(1)
	snap := l.Snapshot()
	snap[0] = 99
	assert.Equal(t, []int{1}, l.Snapshot())
}

func TestCoinLedger_ConcurrentAppendAndRead(t *testing.T) {
	l := NewCoinLedger()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l.Add(1)
		}()
		go func() {
			defer wg.Done()
			_ = l.Snapshot()
		}()
	}
	wg.Wait()
	assert.Len(t, l.Snapshot(), 50)
	assert.Equal(t, 50, l.Total())
}

func TestOrderStore_RecordsArrivalOrder(t *testing.T) {
	s := NewOrderStore()
	s.Add(model.Order{ID: 2})
	s.Add(model.Order{ID: 1})
	got := s.All()
	assert.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 1, got[1].ID)
}
