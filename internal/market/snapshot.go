package market

import (
	"slices"

	apperrors "folioman/internal/errors"
)

// AssetSnapshot is the full serializable state of one asset. Variant-specific
// fields (Rate, Unit, Address) are only populated for the matching type.
type AssetSnapshot struct {
	ID                string       `json:"id"`
	Type              AssetType    `json:"type"`
	Name              string       `json:"name"`
	Symbol            string       `json:"symbol"`
	Quantity          float64      `json:"quantity"`
	PurchasePrice     float64      `json:"purchase_price"`
	CurrentPrice      float64      `json:"current_price"`
	Volatility        float64      `json:"volatility"`
	MeanReturn        float64      `json:"mean_return"`
	LowPriceThreshold *float64     `json:"low_price_threshold,omitempty"`
	Rate              float64      `json:"rate,omitempty"`
	Unit              Unit         `json:"unit,omitempty"`
	Address           *Address     `json:"address,omitempty"`
	History           []PricePoint `json:"history,omitempty"`
}

// PortfolioSnapshot is the full serializable state of a portfolio.
type PortfolioSnapshot struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Owner  string          `json:"owner"`
	Assets []AssetSnapshot `json:"assets"`
}

// SnapshotAsset captures an asset's state for persistence. Subscribers are
// runtime wiring and are deliberately not part of the snapshot.
func SnapshotAsset(a Asset) AssetSnapshot {
	b := a.base()

	s := AssetSnapshot{
		ID:            b.id,
		Type:          a.Type(),
		Name:          b.name,
		Symbol:        b.symbol,
		Quantity:      b.quantity,
		PurchasePrice: b.purchasePrice,
		CurrentPrice:  b.currentPrice,
		Volatility:    b.volatility,
		MeanReturn:    b.meanReturn,
		History:       slices.Clone(b.history),
	}
	if b.lowThreshold != nil {
		v := *b.lowThreshold
		s.LowPriceThreshold = &v
	}

	switch v := a.(type) {
	case *Bond:
		s.Rate = v.rate
	case *Commodity:
		s.Unit = v.unit
	case *RealEstate:
		addr := v.address
		s.Address = &addr
	}
	return s
}

// Snapshot captures the portfolio and all of its assets for persistence.
func (p *Portfolio) Snapshot() PortfolioSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := PortfolioSnapshot{
		ID:     p.id,
		Name:   p.name,
		Owner:  p.owner,
		Assets: make([]AssetSnapshot, 0, len(p.assets)),
	}
	for _, a := range p.assets {
		s.Assets = append(s.Assets, SnapshotAsset(a))
	}
	return s
}

// RestoreAsset rebuilds an asset from its snapshot, preserving its identity,
// current price, simulation parameters, and price history. The snapshot goes
// through the same constructors as live input, so corrupt stored data is
// rejected rather than resurrected.
func RestoreAsset(s AssetSnapshot) (Asset, error) {
	var (
		a   Asset
		err error
	)
	switch s.Type {
	case TypeStock:
		a, err = NewStock(s.Name, s.Symbol, s.Quantity, s.PurchasePrice)
	case TypeBond:
		a, err = NewBond(s.Name, s.Symbol, s.Quantity, s.PurchasePrice, s.Rate)
	case TypeCryptocurrency:
		a, err = NewCryptocurrency(s.Name, s.Symbol, s.Quantity, s.PurchasePrice)
	case TypeCommodity:
		a, err = NewCommodity(s.Name, s.Symbol, s.Quantity, s.PurchasePrice, s.Unit)
	case TypeRealEstate:
		if s.Address == nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidAddress, "Address is required")
		}
		a, err = NewRealEstate(s.Name, s.PurchasePrice, *s.Address)
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown asset type: "+string(s.Type))
	}
	if err != nil {
		return nil, err
	}

	b := a.base()
	if s.ID != "" {
		b.id = s.ID
	}
	b.currentPrice = s.CurrentPrice
	b.volatility = s.Volatility
	b.meanReturn = s.MeanReturn
	b.history = slices.Clone(s.History)
	if s.LowPriceThreshold != nil {
		v := *s.LowPriceThreshold
		b.lowThreshold = &v
	}
	return a, nil
}

// RestorePortfolio rebuilds a portfolio and its assets from a snapshot.
// The summary table is recomputed from the restored assets, never loaded.
func RestorePortfolio(s PortfolioSnapshot) (*Portfolio, error) {
	p, err := NewPortfolio(s.Name, s.Owner)
	if err != nil {
		return nil, err
	}
	if s.ID != "" {
		p.id = s.ID
	}

	for _, as := range s.Assets {
		a, err := RestoreAsset(as)
		if err != nil {
			return nil, err
		}
		p.addLocked(a)
	}
	return p, nil
}
