package market

import (
	"time"

	apperrors "folioman/internal/errors"
)

// Bond represents a fixed-rate debt instrument. Unlike the other variants
// its price accrues deterministically: one day of interest per tick.
type Bond struct {
	baseAsset
	rate float64
}

// NewBond creates a bond with the given annual interest rate (decimal form,
// e.g. 0.05 for 5%). Negative rates are rejected.
func NewBond(name, symbol string, quantity, purchasePrice, rate float64) (*Bond, error) {
	if rate < 0 {
		return nil, apperrors.ErrInvalidBondRate
	}
	base, err := newBaseAsset(name, symbol, quantity, purchasePrice, 0)
	if err != nil {
		return nil, err
	}
	return &Bond{baseAsset: base, rate: rate}, nil
}

// Rate returns the annual interest rate.
func (b *Bond) Rate() float64 { return b.rate }

// SetRate updates the annual interest rate. Negative rates are rejected and
// the prior rate is kept.
func (b *Bond) SetRate(rate float64) error {
	if rate < 0 {
		return apperrors.ErrInvalidBondRate
	}
	b.rate = rate
	return nil
}

func (b *Bond) Type() AssetType { return TypeBond }

func (b *Bond) SimulatePriceChange(date time.Time) error {
	err := b.SetPrice(b.model.NextBondPrice(b.currentPrice, b.rate))
	b.appendHistory(date, b.currentPrice)
	return err
}

func (b *Bond) Clone() Asset {
	return &Bond{baseAsset: b.cloneBase(), rate: b.rate}
}
