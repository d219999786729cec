package market

import "time"

// Cryptocurrency represents a crypto holding. It shares the GBM update rule
// with stocks but carries a much higher default volatility.
type Cryptocurrency struct {
	baseAsset
}

// NewCryptocurrency creates a crypto lot with the default volatility (0.08).
func NewCryptocurrency(name, symbol string, quantity, purchasePrice float64) (*Cryptocurrency, error) {
	base, err := newBaseAsset(name, symbol, quantity, purchasePrice, 0.08)
	if err != nil {
		return nil, err
	}
	return &Cryptocurrency{baseAsset: base}, nil
}

func (c *Cryptocurrency) Type() AssetType { return TypeCryptocurrency }

func (c *Cryptocurrency) RiskAssessment() RiskLevel { return RiskExtremelyHigh }

func (c *Cryptocurrency) SimulatePriceChange(date time.Time) error {
	return c.simulateStochastic(date)
}

func (c *Cryptocurrency) Clone() Asset {
	return &Cryptocurrency{baseAsset: c.cloneBase()}
}
