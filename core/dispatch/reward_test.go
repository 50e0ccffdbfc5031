package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/cargo-agent/infra/logger"
)

func TestCalculateReward_OnTime(t *testing.T) {
	now := time.Now().UTC()
	expiration := now.Add(time.Hour).Format(time.RFC3339)
	delivery := now.Add(30 * time.Minute).Format(time.RFC3339)
	got := CalculateReward(100, delivery, expiration, now, logger.NopLogger{})
	assert.Equal(t, 100, got)
}

func TestCalculateReward_LatePenalty(t *testing.T) {
	now := time.Now().UTC()
	expiration := now.Add(-time.Hour).Format(time.RFC3339)
	delivery := now.Format(time.RFC3339)
	got := CalculateReward(100, delivery, expiration, now, logger.NopLogger{})
	assert.Equal(t, 50, got)
}

func TestCalculateReward_PenaltyRoundsDown(t *testing.T) {
	now := time.Now().UTC()
	expiration := now.Add(-time.Minute).Format(time.RFC3339)
	delivery := now.Format(time.RFC3339)
	got := CalculateReward(101, delivery, expiration, now, logger.NopLogger{})
	assert.Equal(t, 50, got)
}

func TestCalculateReward_MissingDates(t *testing.T) {
	now := time.Now().UTC()
	assert.Equal(t, 0, CalculateReward(100, "2024-01-01T00:00:00Z", "", now, logger.NopLogger{}))
	assert.Equal(t, 0, CalculateReward(100, "", now.Format(time.RFC3339), now, logger.NopLogger{}))
}

func TestCalculateReward_UnparseableDates(t *testing.T) {
	now := time.Now().UTC()
	assert.Equal(t, 0, CalculateReward(100, now.Format(time.RFC3339), "not-a-date", now, logger.NopLogger{}))
	assert.Equal(t, 0, CalculateReward(100, "not-a-date", now.Format(time.RFC3339), now, logger.NopLogger{}))
}

// The delivery date is validated but deliberately not compared: only
// expiration versus now decides the penalty.
func TestCalculateReward_DeliveryDateDoesNotGate(t *testing.T) {
	now := time.Now().UTC()
	expiration := now.Add(time.Hour).Format(time.RFC3339)
	lateDelivery := now.Add(48 * time.Hour).Format(time.RFC3339)
	assert.Equal(t, 100, CalculateReward(100, lateDelivery, expiration, now, logger.NopLogger{}))
}
