package market

import (
	"errors"
	"iter"
	"maps"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "folioman/internal/errors"
	"folioman/internal/uuid"
)

// ownerNamePattern accepts a capitalized first name, an optional middle
// name, and a capitalized last name with an optional hyphenated part.
// Unicode letter classes keep diacritics working.
var ownerNamePattern = regexp.MustCompile(`^\p{Lu}\p{Ll}+(?: \p{Lu}\p{Ll}+)? \p{Lu}\p{Ll}+(?:-\p{Lu}\p{Ll}+)?$`)

// Portfolio owns an exclusive set of assets, drives their daily simulation
// ticks, and maintains the live summary table. Every mutating operation is
// serialized through one mutex, because grouping and summary maintenance
// read and write the full asset collection. Distinct portfolios are
// independent and may tick concurrently.
type Portfolio struct {
	mu        sync.Mutex
	id        string
	name      string
	owner     string
	assets    []Asset
	summaries map[string]LiveAssetSummary
}

// NewPortfolio creates an empty portfolio. The owner must match the
// human-name pattern; the name must be non-blank.
func NewPortfolio(name, owner string) (*Portfolio, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Portfolio name can't be empty")
	}
	if !ownerNamePattern.MatchString(owner) {
		return nil, apperrors.ErrInvalidOwner
	}
	return &Portfolio{
		id:        uuid.New(),
		name:      name,
		owner:     owner,
		summaries: make(map[string]LiveAssetSummary),
	}, nil
}

// ID returns the portfolio's immutable identifier.
func (p *Portfolio) ID() string { return p.id }

// Name returns the portfolio's display name.
func (p *Portfolio) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

// Owner returns the owner's full name.
func (p *Portfolio) Owner() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.owner
}

// SetOwner validates and updates the owner name.
func (p *Portfolio) SetOwner(owner string) error {
	if !ownerNamePattern.MatchString(owner) {
		return apperrors.ErrInvalidOwner
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.owner = owner
	return nil
}

// AddAsset adds an asset to the portfolio, taking exclusive ownership.
// An asset held by another portfolio is re-parented: removed there first,
// then added here.
func (p *Portfolio) AddAsset(a Asset) error {
	if a == nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Asset is required")
	}

	// Detach from the previous owner before taking our own lock so the two
	// portfolio locks are never held at once.
	if prev := a.base().portfolio; prev != nil {
		if prev == p {
			return nil
		}
		prev.RemoveAsset(a.ID())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.addLocked(a)
	return nil
}

func (p *Portfolio) addLocked(a Asset) {
	a.base().portfolio = p
	p.assets = append(p.assets, a)
	p.refreshSummaryFor(a)
}

// RemoveAsset removes the asset with the given id, orphaning it. Returns
// false when no asset matches.
func (p *Portfolio) RemoveAsset(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, a := range p.assets {
		if a.ID() == id {
			p.assets = slices.Delete(p.assets, i, i+1)
			a.base().portfolio = nil
			p.refreshSummaryFor(a)
			return true
		}
	}
	return false
}

// Asset returns the asset with the given id.
func (p *Portfolio) Asset(id string) (Asset, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range p.assets {
		if a.ID() == id {
			return a, true
		}
	}
	return nil, false
}

// BySymbol returns the first asset with the given symbol, nil if absent.
func (p *Portfolio) BySymbol(symbol string) Asset {
	symbol = strings.ToUpper(symbol)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range p.assets {
		if a.Symbol() == symbol {
			return a
		}
	}
	return nil
}

// Assets returns a snapshot of the asset collection in insertion order.
func (p *Portfolio) Assets() []Asset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.assets)
}

// AssetCount returns the number of held assets.
func (p *Portfolio) AssetCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.assets)
}

// tickGroupKey partitions assets into price groups for one tick: lots
// sharing a key must share one simulated market price. Commodities group by
// symbol and unit, properties are always their own group, everything else
// groups by symbol alone.
func tickGroupKey(a Asset) string {
	switch v := a.(type) {
	case *Commodity:
		return a.Symbol() + "|" + string(v.Unit())
	case *RealEstate:
		return a.Symbol() + "|" + a.Name()
	default:
		return a.Symbol()
	}
}

// AdvanceOneTick advances every asset by one simulated day. Assets are
// partitioned into price groups; the group's first member in insertion
// order acts as leader and performs the one random draw, then every other
// member is force-set to the leader's price and gets a history point for
// the same date. One draw per instrument keeps fungible lots from
// artificially diverging. Subscriber errors are collected and returned,
// never swallowed; the tick itself always runs to completion.
func (p *Portfolio) AdvanceOneTick(date time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var order []string
	groups := make(map[string][]Asset)
	for _, a := range p.assets {
		key := tickGroupKey(a)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], a)
	}

	var errs []error
	for _, key := range order {
		members := groups[key]
		leader := members[0]

		if err := leader.SimulatePriceChange(date); err != nil {
			errs = append(errs, err)
		}

		price := leader.CurrentPrice()
		for _, follower := range members[1:] {
			if err := follower.SetPrice(price); err != nil {
				errs = append(errs, err)
			}
			follower.base().appendHistory(date, price)
		}

		p.refreshSummaryFor(leader)
	}

	return errors.Join(errs...)
}

// SetAssetPrice force-sets the current price of one asset and refreshes the
// affected summary row. The full price-set contract applies, including
// notifications and the critical-drop check.
func (p *Portfolio) SetAssetPrice(id string, price float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, a := range p.assets {
		if a.ID() == id {
			err := a.SetPrice(price)
			if errors.Is(err, apperrors.ErrInvalidPrice) {
				// Rejected, nothing changed.
				return err
			}
			p.refreshSummaryFor(a)
			return err
		}
	}
	return apperrors.ErrAssetNotFound
}

// SetAssetQuantity updates the quantity of one asset and refreshes the
// affected summary row.
func (p *Portfolio) SetAssetQuantity(id string, quantity float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, a := range p.assets {
		if a.ID() == id {
			if err := a.SetQuantity(quantity); err != nil {
				return err
			}
			p.refreshSummaryFor(a)
			return nil
		}
	}
	return apperrors.ErrAssetNotFound
}

// TotalValue returns the combined market value of all assets.
func (p *Portfolio) TotalValue() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0.0
	for _, a := range p.assets {
		total += a.Value()
	}
	return total
}

// TotalProfit returns combined value minus combined cost across all assets.
func (p *Portfolio) TotalProfit() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	profit := 0.0
	for _, a := range p.assets {
		profit += a.Value() - a.PurchasePrice()*a.Quantity()
	}
	return profit
}

// TopMovers returns up to n assets ordered by percentage change since
// purchase, best performers first.
func (p *Portfolio) TopMovers(n int) []Asset {
	p.mu.Lock()
	movers := slices.Clone(p.assets)
	p.mu.Unlock()

	pct := func(a Asset) float64 {
		if a.PurchasePrice() == 0 {
			return 0
		}
		return (a.CurrentPrice() - a.PurchasePrice()) / a.PurchasePrice()
	}
	sort.SliceStable(movers, func(i, j int) bool {
		return pct(movers[i]) > pct(movers[j])
	})

	if n < 0 {
		n = 0
	}
	if n < len(movers) {
		movers = movers[:n]
	}
	return movers
}

// AllocationByType returns the share of total portfolio value held in each
// asset type, in percent. Empty when the portfolio has no value.
func (p *Portfolio) AllocationByType() map[AssetType]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := 0.0
	for _, a := range p.assets {
		total += a.Value()
	}

	allocation := make(map[AssetType]float64)
	if total == 0 {
		return allocation
	}
	for _, a := range p.assets {
		allocation[a.Type()] += a.Value() / total * 100
	}
	return allocation
}

// FindAssets returns a lazy sequence over a snapshot of the current assets,
// yielding those matching the predicate.
func (p *Portfolio) FindAssets(predicate func(Asset) bool) iter.Seq[Asset] {
	p.mu.Lock()
	snapshot := slices.Clone(p.assets)
	p.mu.Unlock()

	return func(yield func(Asset) bool) {
		for _, a := range snapshot {
			if predicate(a) && !yield(a) {
				return
			}
		}
	}
}

// Summaries returns a copy of the live summary table keyed by grouping key.
func (p *Portfolio) Summaries() map[string]LiveAssetSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return maps.Clone(p.summaries)
}

// Summary returns the aggregated row for one grouping key.
func (p *Portfolio) Summary(key string) (LiveAssetSummary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	row, ok := p.summaries[key]
	return row, ok
}

// Clone deep-copies the portfolio under a new name. Every asset is cloned
// with a fresh id and no subscribers, and the summary table is rebuilt from
// the cloned assets rather than copied.
func (p *Portfolio) Clone(newName string) (*Portfolio, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clone, err := NewPortfolio(newName, p.owner)
	if err != nil {
		return nil, err
	}
	for _, a := range p.assets {
		clone.addLocked(a.Clone())
	}
	return clone, nil
}
