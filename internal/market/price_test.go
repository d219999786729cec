package market

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestNextPrice(t *testing.T) {
	t.Run("zero volatility is deterministic drift", func(t *testing.T) {
		m := NewPriceModel(rand.NewPCG(1, 2))
		got := m.NextPrice(100.0, 0.01, 0.0)
		want := 100.0 * math.Exp(0.01)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("NextPrice = %v, want %v", got, want)
		}
	})

	t.Run("always finite and positive", func(t *testing.T) {
		m := NewPriceModel(rand.NewPCG(42, 0))
		price := 100.0
		for i := 0; i < 10000; i++ {
			price = m.NextPrice(price, 0.0002, 0.08)
			if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
				t.Fatalf("draw %d produced invalid price %v", i, price)
			}
		}
	})

	t.Run("same seed same path", func(t *testing.T) {
		a := NewPriceModel(rand.NewPCG(7, 7))
		b := NewPriceModel(rand.NewPCG(7, 7))
		for i := 0; i < 100; i++ {
			pa := a.NextPrice(100, 0.0002, 0.02)
			pb := b.NextPrice(100, 0.0002, 0.02)
			if pa != pb {
				t.Fatalf("draw %d diverged: %v vs %v", i, pa, pb)
			}
		}
	})
}

func TestNextBondPrice(t *testing.T) {
	t.Run("accrues one day of interest", func(t *testing.T) {
		var m PriceModel
		got := m.NextBondPrice(100.0, 0.05)
		want := 100.0 + 100.0*(0.05/365.0)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("NextBondPrice = %v, want %v", got, want)
		}
	})

	t.Run("zero rate leaves price unchanged", func(t *testing.T) {
		var m PriceModel
		if got := m.NextBondPrice(250.0, 0); got != 250.0 {
			t.Errorf("NextBondPrice = %v, want 250", got)
		}
	})
}
