// Package market implements the portfolio aggregation and market simulation
// engine: asset variants with simulated price dynamics, leader/follower price
// groups, incrementally maintained position summaries, and transient market
// events. The package is pure in-memory arithmetic and performs no I/O.
package market

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	apperrors "folioman/internal/errors"
	"folioman/internal/uuid"
)

// AssetType identifies the concrete variant of an asset.
type AssetType string

const (
	TypeStock          AssetType = "stock"
	TypeBond           AssetType = "bond"
	TypeCryptocurrency AssetType = "cryptocurrency"
	TypeRealEstate     AssetType = "real_estate"
	TypeCommodity      AssetType = "commodity"
)

// RiskLevel classifies how risky an asset variant is considered.
type RiskLevel string

const (
	RiskLow           RiskLevel = "low"
	RiskMedium        RiskLevel = "medium"
	RiskHigh          RiskLevel = "high"
	RiskExtremelyHigh RiskLevel = "extremely_high"
)

// PricePoint is one entry in an asset's append-only price history.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PriceChangeHandler receives price notifications for a single asset.
// A non-nil error propagates out of the mutation that triggered the dispatch;
// the asset itself never swallows subscriber failures.
type PriceChangeHandler func(symbol string, newPrice float64, message string) error

// priceTolerance suppresses notifications for sub-noise float deltas.
const priceTolerance = 1e-4

// defaultMeanReturn is the daily drift applied unless a variant overrides it.
const defaultMeanReturn = 0.0002

// Asset is the closed set of position variants a portfolio can hold.
// The unexported base method seals the interface to this package's five
// implementations: Stock, Bond, Cryptocurrency, RealEstate, and Commodity.
type Asset interface {
	ID() string
	Name() string
	Symbol() string
	Quantity() float64
	PurchasePrice() float64
	CurrentPrice() float64
	Value() float64
	Volatility() float64
	MeanReturn() float64
	SetVolatility(v float64)
	SetMeanReturn(m float64)
	LowPriceThreshold() (float64, bool)
	SetLowPriceThreshold(v float64)
	ClearLowPriceThreshold()
	PriceHistory() []PricePoint

	// SetQuantity rejects values <= 0; SetPrice rejects negative values.
	// Both leave prior state unchanged on error.
	SetQuantity(q float64) error
	SetPrice(p float64) error

	OnPriceUpdate(h PriceChangeHandler) (cancel func())
	OnCriticalDrop(h PriceChangeHandler) (cancel func())

	Type() AssetType
	RiskAssessment() RiskLevel
	IsMergeable() bool

	// SimulatePriceChange advances the asset's price by one simulated day
	// according to the variant's own update rule.
	SimulatePriceChange(date time.Time) error

	// Clone deep-copies the asset with a fresh identity and no subscribers.
	Clone() Asset

	base() *baseAsset
}

// baseAsset carries the state and behavior shared by every variant.
type baseAsset struct {
	id            string
	name          string
	symbol        string
	quantity      float64
	purchasePrice float64
	currentPrice  float64
	volatility    float64
	meanReturn    float64
	lowThreshold  *float64
	history       []PricePoint
	model         PriceModel

	// portfolio is the current exclusive owner, nil for orphaned assets.
	portfolio *Portfolio

	priceUpdate  subscriberList
	criticalDrop subscriberList
}

func newBaseAsset(name, symbol string, quantity, purchasePrice, volatility float64) (baseAsset, error) {
	if strings.TrimSpace(name) == "" {
		return baseAsset{}, apperrors.ErrInvalidName
	}
	if strings.TrimSpace(symbol) == "" {
		return baseAsset{}, apperrors.ErrInvalidSymbol
	}
	if quantity <= 0 {
		return baseAsset{}, apperrors.ErrInvalidQuantity
	}
	if purchasePrice < 0 {
		return baseAsset{}, apperrors.ErrInvalidPrice
	}

	return baseAsset{
		id:            uuid.New(),
		name:          name,
		symbol:        strings.ToUpper(symbol),
		quantity:      quantity,
		purchasePrice: purchasePrice,
		currentPrice:  purchasePrice,
		volatility:    volatility,
		meanReturn:    defaultMeanReturn,
	}, nil
}

func (a *baseAsset) base() *baseAsset { return a }

func (a *baseAsset) ID() string             { return a.id }
func (a *baseAsset) Name() string           { return a.name }
func (a *baseAsset) Symbol() string         { return a.symbol }
func (a *baseAsset) Quantity() float64      { return a.quantity }
func (a *baseAsset) PurchasePrice() float64 { return a.purchasePrice }
func (a *baseAsset) CurrentPrice() float64  { return a.currentPrice }
func (a *baseAsset) Value() float64         { return a.quantity * a.currentPrice }
func (a *baseAsset) Volatility() float64    { return a.volatility }
func (a *baseAsset) MeanReturn() float64    { return a.meanReturn }

func (a *baseAsset) SetVolatility(v float64) { a.volatility = v }
func (a *baseAsset) SetMeanReturn(m float64) { a.meanReturn = m }

func (a *baseAsset) LowPriceThreshold() (float64, bool) {
	if a.lowThreshold == nil {
		return 0, false
	}
	return *a.lowThreshold, true
}

func (a *baseAsset) SetLowPriceThreshold(v float64) { a.lowThreshold = &v }
func (a *baseAsset) ClearLowPriceThreshold()        { a.lowThreshold = nil }

// PriceHistory returns a copy so callers can't mutate the append-only log.
func (a *baseAsset) PriceHistory() []PricePoint { return slices.Clone(a.history) }

// RiskAssessment defaults to Medium; variants override as needed.
func (a *baseAsset) RiskAssessment() RiskLevel { return RiskMedium }

// IsMergeable defaults to true; RealEstate overrides it.
func (a *baseAsset) IsMergeable() bool { return true }

// SetQuantity updates the number of units held. Values <= 0 are rejected.
func (a *baseAsset) SetQuantity(q float64) error {
	if q <= 0 {
		return apperrors.ErrInvalidQuantity
	}
	a.quantity = q
	return nil
}

// SetPrice updates the current market price. Changes within priceTolerance
// are absorbed silently to avoid event storms from float noise. On a real
// change all OnPriceUpdate subscribers are notified, and OnCriticalDrop
// subscribers fire whenever the post-update price sits below the configured
// threshold. The drop alert is level-triggered: every qualifying price-set
// below the threshold fires it again, not just the crossing itself.
func (a *baseAsset) SetPrice(p float64) error {
	if p < 0 {
		return apperrors.ErrInvalidPrice
	}
	if math.Abs(a.currentPrice-p) <= priceTolerance {
		return nil
	}

	old := a.currentPrice
	a.currentPrice = p

	movement := "rose"
	if p < old {
		movement = "dropped"
	}

	var errs []error
	msg := fmt.Sprintf("Price %s by %.2f", movement, math.Abs(p-old))
	if err := a.priceUpdate.dispatch(a.symbol, p, msg); err != nil {
		errs = append(errs, err)
	}

	if a.lowThreshold != nil && p < *a.lowThreshold {
		alert := fmt.Sprintf("CRITICAL: price below %.2f", *a.lowThreshold)
		if err := a.criticalDrop.dispatch(a.symbol, p, alert); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// OnPriceUpdate attaches a subscriber to every effective price change.
// The returned cancel function detaches it.
func (a *baseAsset) OnPriceUpdate(h PriceChangeHandler) func() {
	return a.priceUpdate.subscribe(h)
}

// OnCriticalDrop attaches a subscriber to below-threshold price alerts.
func (a *baseAsset) OnCriticalDrop(h PriceChangeHandler) func() {
	return a.criticalDrop.subscribe(h)
}

// simulateStochastic is the shared GBM update rule used by Stock,
// Cryptocurrency, Commodity, and RealEstate. The history point is appended
// even when subscribers fail so the log stays consistent with the price.
func (a *baseAsset) simulateStochastic(date time.Time) error {
	err := a.SetPrice(a.model.NextPrice(a.currentPrice, a.meanReturn, a.volatility))
	a.appendHistory(date, a.currentPrice)
	return err
}

func (a *baseAsset) appendHistory(date time.Time, price float64) {
	a.history = append(a.history, PricePoint{Date: date, Price: price})
}

// cloneBase copies the shared state with a fresh id, a deep-copied history,
// and empty subscriber lists.
func (a *baseAsset) cloneBase() baseAsset {
	clone := *a
	clone.id = uuid.New()
	clone.portfolio = nil
	clone.history = slices.Clone(a.history)
	clone.priceUpdate = subscriberList{}
	clone.criticalDrop = subscriberList{}
	if a.lowThreshold != nil {
		v := *a.lowThreshold
		clone.lowThreshold = &v
	}
	return clone
}

// subscription pairs a handler with a token so it can detach itself later.
type subscription struct {
	id int
	fn PriceChangeHandler
}

// subscriberList is a small ordered multicast list. Dispatch iterates a
// snapshot, so subscribing or unsubscribing mid-dispatch never affects the
// current pass.
type subscriberList struct {
	nextID int
	subs   []subscription
}

func (l *subscriberList) subscribe(fn PriceChangeHandler) func() {
	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, subscription{id: id, fn: fn})

	return func() {
		for i, s := range l.subs {
			if s.id == id {
				l.subs = slices.Delete(l.subs, i, i+1)
				return
			}
		}
	}
}

func (l *subscriberList) dispatch(symbol string, price float64, msg string) error {
	snapshot := slices.Clone(l.subs)
	var errs []error
	for _, s := range snapshot {
		if err := s.fn(symbol, price, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
