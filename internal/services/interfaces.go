// Package services holds the business logic between the HTTP handlers and
// the market engine: a registry of live portfolios, their simulation
// runners, and persistence through the store.
package services

import (
	"time"

	"folioman/internal/market"
)

// AssetInput carries the service-level fields for creating an asset. The
// variant-specific fields are only read for the matching asset type.
type AssetInput struct {
	Type          market.AssetType
	Name          string
	Symbol        string
	Quantity      float64
	PurchasePrice float64

	Rate    float64         // bond
	Unit    market.Unit     // commodity
	Address *market.Address // real estate

	LowPriceThreshold *float64
}

// Notification is one entry in a portfolio's recent notification feed.
type Notification struct {
	Symbol   string    `json:"symbol"`
	Price    float64   `json:"price"`
	Message  string    `json:"message"`
	Critical bool      `json:"critical"`
	At       time.Time `json:"at"`
}

// SimulationStatus describes a portfolio's runner state.
type SimulationStatus struct {
	Running     bool      `json:"running"`
	Paused      bool      `json:"paused"`
	Date        time.Time `json:"date"`
	Ticks       int64     `json:"ticks"`
	EventActive bool      `json:"event_active"`
	News        string    `json:"news"`
}

// PortfolioServicer manages live portfolios, their assets, simulation
// lifecycle, and persistence.
type PortfolioServicer interface {
	CreatePortfolio(name, owner string) (*market.Portfolio, error)
	ListPortfolios() []*market.Portfolio
	GetPortfolio(id string) (*market.Portfolio, error)
	UpdateOwner(id, owner string) error
	ClonePortfolio(id, newName string) (*market.Portfolio, error)
	DeletePortfolio(id string) error

	AddAsset(portfolioID string, input AssetInput) (market.Asset, error)
	GetAsset(portfolioID, assetID string) (market.Asset, error)
	RemoveAsset(portfolioID, assetID string) error
	SetAssetPrice(portfolioID, assetID string, price float64) error
	SetAssetQuantity(portfolioID, assetID string, quantity float64) error
	SetLowPriceThreshold(portfolioID, assetID string, threshold *float64) error

	Status(portfolioID string) (SimulationStatus, error)
	StartSimulation(portfolioID string, interval time.Duration) error
	StopSimulation(portfolioID string) error
	PauseSimulation(portfolioID string) error
	ResumeSimulation(portfolioID string) error
	StepSimulation(portfolioID string, days int) error
	TriggerEvent(portfolioID, title string) error
	Notifications(portfolioID string) ([]Notification, error)

	SavePortfolio(portfolioID string) error
	LoadPortfolios() error
	Shutdown() error
}
