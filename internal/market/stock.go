package market

import "time"

// Stock represents a lot of exchange-listed shares.
type Stock struct {
	baseAsset
}

// NewStock creates a stock lot with the default stock volatility (0.02).
func NewStock(name, symbol string, quantity, purchasePrice float64) (*Stock, error) {
	base, err := newBaseAsset(name, symbol, quantity, purchasePrice, 0.02)
	if err != nil {
		return nil, err
	}
	return &Stock{baseAsset: base}, nil
}

func (s *Stock) Type() AssetType { return TypeStock }

func (s *Stock) RiskAssessment() RiskLevel { return RiskHigh }

func (s *Stock) SimulatePriceChange(date time.Time) error {
	return s.simulateStochastic(date)
}

func (s *Stock) Clone() Asset {
	return &Stock{baseAsset: s.cloneBase()}
}
