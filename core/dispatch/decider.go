package dispatch

import (
	"math/rand"

	"github.com/kilianp07/cargo-agent/core/model"
)

// AcceptanceDecider decides whether an incoming order is worth taking. The
// pipeline treats the decision as opaque so the policy can be replaced
// without touching orchestration.
type AcceptanceDecider interface {
	Accept(order model.Order) bool
}

// CoinFlipDecider accepts roughly half of all orders. It is a placeholder
// policy, not a business rule.
type CoinFlipDecider struct{}

func (CoinFlipDecider) Accept(model.Order) bool { return rand.Intn(2) == 0 }

// AcceptAllDecider accepts every order. Useful for tests and demos.
type AcceptAllDecider struct{}

func (AcceptAllDecider) Accept(model.Order) bool { return true }
