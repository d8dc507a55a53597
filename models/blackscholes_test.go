package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlackScholesKnownValue(t *testing.T) {
	// Same scenario as the binomial golden test.
	call := BlackScholesCall(100, 90, 2, 0.05, 0.2)
	put := BlackScholesPut(100, 90, 2, 0.05, 0.2)

	assert.InDelta(t, 22.0333800137181, call, 1e-9)

	// Closed-form prices satisfy exact put-call parity.
	forward := 100 - 90*math.Exp(-0.05*2)
	assert.InDelta(t, forward, call-put, 1e-12)
}

func TestBlackScholesDeepMoneyness(t *testing.T) {
	// Deep in-the-money call approaches the discounted forward payoff,
	// deep out-of-the-money approaches zero.
	deepITM := BlackScholesCall(200, 50, 1, 0.03, 0.15)
	assert.InDelta(t, 200-50*math.Exp(-0.03), deepITM, 1e-6)

	deepOTM := BlackScholesCall(50, 200, 1, 0.03, 0.15)
	assert.Less(t, deepOTM, 1e-6)
}
