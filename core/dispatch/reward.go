package dispatch

import (
	"time"

	"github.com/kilianp07/cargo-agent/core/logger"
)

const latePenaltyFactor = 0.5

// CalculateReward values a delivered order. Orders evaluated before their
// expiration earn the full value; past it a fixed 50% penalty applies.
// Missing or unparseable timestamps yield 0 coins.
//
// deliveryDateUTC is validated but does not take part in the comparison:
// only expiration versus now gates the penalty. That mirrors the simulation
// rules as deployed; changing it would change earnings.
func CalculateReward(value int, deliveryDateUTC, expirationDateUTC string, now time.Time, log logger.Logger) int {
	if deliveryDateUTC == "" || expirationDateUTC == "" {
		log.Errorf("order has empty delivery or expiration date")
		return 0
	}
	expiration, err := time.Parse(time.RFC3339, expirationDateUTC)
	if err != nil {
		log.Errorf("parse expiration date %q: %v", expirationDateUTC, err)
		return 0
	}
	if _, err := time.Parse(time.RFC3339, deliveryDateUTC); err != nil {
		log.Errorf("parse delivery date %q: %v", deliveryDateUTC, err)
		return 0
	}

	timeToDeliver := expiration.Sub(now)
	if timeToDeliver > 0 {
		return value
	}
	return int(float64(value) * (1 - latePenaltyFactor))
}
