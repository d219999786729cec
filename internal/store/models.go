// Package store persists portfolio snapshots through GORM. Records mirror
// the engine's snapshot types; rebuilding live portfolios goes back through
// the engine's own constructors so stored data is re-validated on load.
package store

import (
	"time"

	"folioman/internal/uuid"

	"gorm.io/gorm"
)

// PortfolioRecord is the persisted form of a portfolio.
type PortfolioRecord struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Owner     string    `gorm:"not null" json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Assets []AssetRecord `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE" json:"assets,omitempty"`
}

// AssetRecord is the persisted form of one asset. Variant-specific columns
// (Rate, Unit, address fields) are nullable and only set for the matching
// asset type.
type AssetRecord struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	PortfolioID string `gorm:"type:uuid;not null;index" json:"portfolio_id"`
	// Position is the asset's index within its portfolio at save time, so
	// loads rebuild the same iteration order and tick groups keep the same
	// leader after a save/load cycle.
	Position      int     `gorm:"not null;default:0" json:"position"`
	Type          string  `gorm:"not null" json:"type"`
	Name          string  `gorm:"not null" json:"name"`
	Symbol        string  `gorm:"not null;index" json:"symbol"`
	Quantity      float64 `gorm:"not null" json:"quantity"`
	PurchasePrice float64 `gorm:"not null" json:"purchase_price"`
	CurrentPrice  float64 `gorm:"not null" json:"current_price"`
	Volatility    float64 `gorm:"not null" json:"volatility"`
	MeanReturn    float64 `gorm:"not null" json:"mean_return"`

	LowPriceThreshold *float64 `json:"low_price_threshold,omitempty"`
	Rate              *float64 `json:"rate,omitempty"`
	Unit              *string  `json:"unit,omitempty"`

	AddressStreet      *string `json:"address_street,omitempty"`
	AddressHouseNumber *string `json:"address_house_number,omitempty"`
	AddressFlatNumber  *string `json:"address_flat_number,omitempty"`
	AddressCity        *string `json:"address_city,omitempty"`
	AddressZipCode     *string `json:"address_zip_code,omitempty"`
	AddressCountry     *string `json:"address_country,omitempty"`

	History []PricePointRecord `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE" json:"history,omitempty"`
}

// PricePointRecord is one row of an asset's price history.
// Immutable time-series data, no soft deletes.
type PricePointRecord struct {
	ID      string    `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID string    `gorm:"type:uuid;not null;index" json:"asset_id"`
	Date    time.Time `gorm:"not null" json:"date"`
	Price   float64   `gorm:"not null" json:"price"`
}

// BeforeCreate hook generates a UUIDv7 for new price rows.
func (p *PricePointRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New()
	}
	return nil
}

// Models lists every persisted model for schema auto-migration.
func Models() []any {
	return []any{&PortfolioRecord{}, &AssetRecord{}, &PricePointRecord{}}
}
