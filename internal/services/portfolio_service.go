package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"folioman/internal/config"
	apperrors "folioman/internal/errors"
	"folioman/internal/logger"
	"folioman/internal/market"
	"folioman/internal/simulation"
	"folioman/internal/store"
)

// notificationLimit bounds each portfolio's in-memory notification feed.
const notificationLimit = 100

// entry pairs a live portfolio with its runner and notification feed.
type entry struct {
	portfolio *market.Portfolio
	runner    *simulation.Runner

	notifMu       sync.Mutex
	notifications []Notification
}

func (e *entry) appendNotification(n Notification) {
	e.notifMu.Lock()
	defer e.notifMu.Unlock()
	e.notifications = append(e.notifications, n)
	if len(e.notifications) > notificationLimit {
		e.notifications = e.notifications[len(e.notifications)-notificationLimit:]
	}
}

// portfolioService implements PortfolioServicer over an in-memory registry
// backed by the store. Live portfolios are the source of truth; the store
// only sees explicit saves.
type portfolioService struct {
	mu      sync.RWMutex
	entries map[string]*entry

	store         *store.Store
	startDate     time.Time
	tickInterval  time.Duration
	eventsEnabled bool
}

// NewPortfolioService creates a PortfolioServicer with an empty registry.
// Call LoadPortfolios to hydrate previously saved state.
func NewPortfolioService(st *store.Store, cfg *config.Config) PortfolioServicer {
	return &portfolioService{
		entries:       make(map[string]*entry),
		store:         st,
		startDate:     cfg.StartDate,
		tickInterval:  cfg.TickInterval,
		eventsEnabled: cfg.EventsEnabled,
	}
}

func (s *portfolioService) newEntry(p *market.Portfolio) *entry {
	catalog := market.DefaultCatalog()
	if !s.eventsEnabled {
		catalog = []market.EventDefinition{}
	}
	engine := market.NewEventEngine(p, catalog)

	e := &entry{
		portfolio: p,
		runner:    simulation.NewRunner(p, engine, s.startDate),
	}
	for _, a := range p.Assets() {
		s.watchAsset(e, a)
	}
	return e
}

// watchAsset wires an asset's notifications into the entry's feed and the
// runner's critical-drop handling.
func (s *portfolioService) watchAsset(e *entry, a market.Asset) {
	a.OnPriceUpdate(func(symbol string, price float64, msg string) error {
		e.appendNotification(Notification{Symbol: symbol, Price: price, Message: msg, At: time.Now()})
		return nil
	})

	pause := e.runner.CriticalDropHandler()
	a.OnCriticalDrop(func(symbol string, price float64, msg string) error {
		e.appendNotification(Notification{Symbol: symbol, Price: price, Message: msg, Critical: true, At: time.Now()})
		return pause(symbol, price, msg)
	})
}

func (s *portfolioService) entry(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, apperrors.ErrPortfolioNotFound
	}
	return e, nil
}

func (s *portfolioService) CreatePortfolio(name, owner string) (*market.Portfolio, error) {
	p, err := market.NewPortfolio(name, owner)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries[p.ID()] = s.newEntry(p)
	s.mu.Unlock()

	logger.Get().Infow("portfolio created", "portfolio_id", p.ID(), "name", name, "owner", owner)
	return p, nil
}

func (s *portfolioService) ListPortfolios() []*market.Portfolio {
	s.mu.RLock()
	defer s.mu.RUnlock()

	portfolios := make([]*market.Portfolio, 0, len(s.entries))
	for _, e := range s.entries {
		portfolios = append(portfolios, e.portfolio)
	}
	return portfolios
}

func (s *portfolioService) GetPortfolio(id string) (*market.Portfolio, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	return e.portfolio, nil
}

func (s *portfolioService) UpdateOwner(id, owner string) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	return e.portfolio.SetOwner(owner)
}

func (s *portfolioService) ClonePortfolio(id, newName string) (*market.Portfolio, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	clone, err := e.portfolio.Clone(newName)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries[clone.ID()] = s.newEntry(clone)
	s.mu.Unlock()

	logger.Get().Infow("portfolio cloned", "source_id", id, "portfolio_id", clone.ID(), "name", newName)
	return clone, nil
}

func (s *portfolioService) DeletePortfolio(id string) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	if !ok {
		return apperrors.ErrPortfolioNotFound
	}
	e.runner.Stop()

	// The portfolio may never have been saved; that is not a failure here.
	if err := s.store.DeletePortfolio(id); err != nil && !errors.Is(err, apperrors.ErrPortfolioNotFound) {
		return err
	}

	logger.Get().Infow("portfolio deleted", "portfolio_id", id)
	return nil
}

func (s *portfolioService) AddAsset(portfolioID string, input AssetInput) (market.Asset, error) {
	e, err := s.entry(portfolioID)
	if err != nil {
		return nil, err
	}

	a, err := buildAsset(input)
	if err != nil {
		return nil, err
	}
	if input.LowPriceThreshold != nil {
		a.SetLowPriceThreshold(*input.LowPriceThreshold)
	}

	s.watchAsset(e, a)
	if err := e.portfolio.AddAsset(a); err != nil {
		return nil, err
	}
	return a, nil
}

func buildAsset(input AssetInput) (market.Asset, error) {
	switch input.Type {
	case market.TypeStock:
		return market.NewStock(input.Name, input.Symbol, input.Quantity, input.PurchasePrice)
	case market.TypeBond:
		return market.NewBond(input.Name, input.Symbol, input.Quantity, input.PurchasePrice, input.Rate)
	case market.TypeCryptocurrency:
		return market.NewCryptocurrency(input.Name, input.Symbol, input.Quantity, input.PurchasePrice)
	case market.TypeCommodity:
		return market.NewCommodity(input.Name, input.Symbol, input.Quantity, input.PurchasePrice, input.Unit)
	case market.TypeRealEstate:
		if input.Address == nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidAddress, "Address is required")
		}
		return market.NewRealEstate(input.Name, input.PurchasePrice, *input.Address)
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown asset type: "+string(input.Type))
	}
}

func (s *portfolioService) GetAsset(portfolioID, assetID string) (market.Asset, error) {
	e, err := s.entry(portfolioID)
	if err != nil {
		return nil, err
	}
	a, ok := e.portfolio.Asset(assetID)
	if !ok {
		return nil, apperrors.ErrAssetNotFound
	}
	return a, nil
}

func (s *portfolioService) RemoveAsset(portfolioID, assetID string) error {
	e, err := s.entry(portfolioID)
	if err != nil {
		return err
	}
	if !e.portfolio.RemoveAsset(assetID) {
		return apperrors.ErrAssetNotFound
	}
	return nil
}

func (s *portfolioService) SetAssetPrice(portfolioID, assetID string, price float64) error {
	e, err := s.entry(portfolioID)
	if err != nil {
		return err
	}
	return e.portfolio.SetAssetPrice(assetID, price)
}

func (s *portfolioService) SetAssetQuantity(portfolioID, assetID string, quantity float64) error {
	e, err := s.entry(portfolioID)
	if err != nil {
		return err
	}
	return e.portfolio.SetAssetQuantity(assetID, quantity)
}

func (s *portfolioService) SetLowPriceThreshold(portfolioID, assetID string, threshold *float64) error {
	a, err := s.GetAsset(portfolioID, assetID)
	if err != nil {
		return err
	}
	if threshold == nil {
		a.ClearLowPriceThreshold()
		return nil
	}
	if *threshold < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidPrice, "Threshold can't be lower than 0")
	}
	a.SetLowPriceThreshold(*threshold)
	return nil
}

func (s *portfolioService) Status(portfolioID string) (SimulationStatus, error) {
	e, err := s.entry(portfolioID)
	if err != nil {
		return SimulationStatus{}, err
	}
	return SimulationStatus{
		Running:     e.runner.Running(),
		Paused:      e.runner.Paused(),
		Date:        e.runner.Date(),
		Ticks:       e.runner.Ticks(),
		EventActive: e.runner.EventActive(),
		News:        e.runner.News(),
	}, nil
}

func (s *portfolioService) StartSimulation(portfolioID string, interval time.Duration) error {
	e, err := s.entry(portfolioID)
	if err != nil {
		return err
	}
	if interval <= 0 {
		interval = s.tickInterval
	}
	e.runner.Start(context.Background(), interval)
	return nil
}

func (s *portfolioService) StopSimulation(portfolioID string) error {
	e, err := s.entry(portfolioID)
	if err != nil {
		return err
	}
	e.runner.Stop()
	return nil
}

func (s *portfolioService) PauseSimulation(portfolioID string) error {
	e, err := s.entry(portfolioID)
	if err != nil {
		return err
	}
	e.runner.Pause()
	return nil
}

func (s *portfolioService) ResumeSimulation(portfolioID string) error {
	e, err := s.entry(portfolioID)
	if err != nil {
		return err
	}
	e.runner.Resume()
	return nil
}

func (s *portfolioService) StepSimulation(portfolioID string, days int) error {
	e, err := s.entry(portfolioID)
	if err != nil {
		return err
	}
	if days <= 0 {
		days = 1
	}
	for i := 0; i < days; i++ {
		// Subscriber errors are already logged by the runner; stepping on
		// keeps a multi-day advance atomic from the caller's view.
		_ = e.runner.Step()
	}
	return nil
}

func (s *portfolioService) TriggerEvent(portfolioID, title string) error {
	e, err := s.entry(portfolioID)
	if err != nil {
		return err
	}

	for _, def := range market.DefaultCatalog() {
		if strings.EqualFold(def.Title, title) {
			e.runner.TriggerEvent(def)
			return nil
		}
	}
	return apperrors.WithMessage(apperrors.ErrNotFound, "Unknown market event: "+title)
}

func (s *portfolioService) Notifications(portfolioID string) ([]Notification, error) {
	e, err := s.entry(portfolioID)
	if err != nil {
		return nil, err
	}

	e.notifMu.Lock()
	defer e.notifMu.Unlock()
	out := make([]Notification, len(e.notifications))
	copy(out, e.notifications)
	return out, nil
}

// SavePortfolio persists one portfolio. Any active market event is ended
// first so perturbed parameters never reach storage.
func (s *portfolioService) SavePortfolio(portfolioID string) error {
	e, err := s.entry(portfolioID)
	if err != nil {
		return err
	}

	e.runner.ForceEndEvent()
	if err := s.store.SavePortfolio(e.portfolio.Snapshot()); err != nil {
		return err
	}
	logger.Get().Infow("portfolio saved", "portfolio_id", portfolioID)
	return nil
}

// LoadPortfolios hydrates the registry from the store. Existing live
// portfolios with the same id are replaced.
func (s *portfolioService) LoadPortfolios() error {
	snapshots, err := s.store.LoadAll()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range snapshots {
		p, err := market.RestorePortfolio(snap)
		if err != nil {
			return err
		}
		s.entries[p.ID()] = s.newEntry(p)
	}

	logger.Get().Infow("portfolios loaded", "count", len(snapshots))
	return nil
}

// Shutdown stops every runner, ends active events, and saves all portfolios.
func (s *portfolioService) Shutdown() error {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	var errs []error
	for _, e := range entries {
		e.runner.Stop()
		e.runner.ForceEndEvent()
		if err := s.store.SavePortfolio(e.portfolio.Snapshot()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
