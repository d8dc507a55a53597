package models

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// BlackScholesCall returns the closed-form European call price. The lattice
// converges to this as the step count grows, so it doubles as a sanity
// reference next to the binomial output.
func BlackScholesCall(spot, strike, timeToMaturity, riskFreeRate, volatility float64) float64 {
	d1, d2 := dOneTwo(spot, strike, timeToMaturity, riskFreeRate, volatility)
	return spot*stdNormal.CDF(d1) - strike*math.Exp(-riskFreeRate*timeToMaturity)*stdNormal.CDF(d2)
}

// BlackScholesPut returns the closed-form European put price.
func BlackScholesPut(spot, strike, timeToMaturity, riskFreeRate, volatility float64) float64 {
	d1, d2 := dOneTwo(spot, strike, timeToMaturity, riskFreeRate, volatility)
	return strike*math.Exp(-riskFreeRate*timeToMaturity)*stdNormal.CDF(-d2) - spot*stdNormal.CDF(-d1)
}

func dOneTwo(S, K, T, r, sigma float64) (float64, float64) {
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	return d1, d1 - sigma*math.Sqrt(T)
}
