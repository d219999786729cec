package market

import (
	"math"
	"math/rand/v2"
)

// PriceModel generates simulated market prices. The zero value draws from the
// package-level shared random source; tests inject a seeded source through
// NewPriceModel to make stochastic paths reproducible.
type PriceModel struct {
	rng *rand.Rand
}

// NewPriceModel creates a PriceModel backed by the given random source.
func NewPriceModel(src rand.Source) PriceModel {
	return PriceModel{rng: rand.New(src)}
}

func (m PriceModel) uniform() float64 {
	if m.rng != nil {
		return m.rng.Float64()
	}
	return rand.Float64()
}

// NextPrice generates a new asset price using the Geometric Brownian Motion
// model. Two uniform samples are pushed through the Box-Muller transform to
// obtain one standard normal variate; the result is always finite and
// positive for finite non-negative inputs since exp never returns zero.
// With volatility 0 the model is fully deterministic: current * exp(meanReturn).
func (m PriceModel) NextPrice(current, meanReturn, volatility float64) float64 {
	// 1-U keeps the log argument strictly positive.
	u1 := 1.0 - m.uniform()
	u2 := 1.0 - m.uniform()

	z := math.Sqrt(-2.0*math.Log(u1)) * math.Sin(2.0*math.Pi*u2)
	drift := meanReturn - 0.5*volatility*volatility
	shock := volatility * z

	return current * math.Exp(drift+shock)
}

// NextBondPrice accrues one day of interest at the given annual rate.
// Bond pricing is deterministic, never stochastic.
func (m PriceModel) NextBondPrice(current, annualRate float64) float64 {
	return current + current*(annualRate/365.0)
}
