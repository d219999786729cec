package store

import (
	"errors"

	apperrors "folioman/internal/errors"
	"folioman/internal/market"

	"gorm.io/gorm"
)

// Store reads and writes portfolio snapshots.
type Store struct {
	db *gorm.DB
}

// New creates a Store over an open GORM connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SavePortfolio persists one portfolio snapshot as a transactional replace:
// the portfolio's previous rows are removed and the snapshot inserted whole.
// Snapshots carry final parameters only, so callers must end any active
// market event before snapshotting.
func (s *Store) SavePortfolio(snap market.PortfolioSnapshot) error {
	record := toRecord(snap)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var assetIDs []string
		if err := tx.Model(&AssetRecord{}).Where("portfolio_id = ?", snap.ID).Pluck("id", &assetIDs).Error; err != nil {
			return err
		}
		if len(assetIDs) > 0 {
			if err := tx.Where("asset_id IN ?", assetIDs).Delete(&PricePointRecord{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("portfolio_id = ?", snap.ID).Delete(&AssetRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", snap.ID).Delete(&PortfolioRecord{}).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Assets load in their saved portfolio order; price history oldest first.
func orderedAssets(db *gorm.DB) *gorm.DB { return db.Order("asset_records.position") }

func orderedHistory(db *gorm.DB) *gorm.DB { return db.Order("price_point_records.date") }

// LoadPortfolio reads one portfolio snapshot by id.
func (s *Store) LoadPortfolio(id string) (market.PortfolioSnapshot, error) {
	var record PortfolioRecord
	err := s.db.Preload("Assets", orderedAssets).Preload("Assets.History", orderedHistory).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return market.PortfolioSnapshot{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return market.PortfolioSnapshot{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return toSnapshot(record), nil
}

// LoadAll reads every stored portfolio snapshot.
func (s *Store) LoadAll() ([]market.PortfolioSnapshot, error) {
	var records []PortfolioRecord
	if err := s.db.Preload("Assets", orderedAssets).Preload("Assets.History", orderedHistory).Order("created_at").Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	snapshots := make([]market.PortfolioSnapshot, 0, len(records))
	for _, record := range records {
		snapshots = append(snapshots, toSnapshot(record))
	}
	return snapshots, nil
}

// DeletePortfolio removes a portfolio and its dependent rows.
func (s *Store) DeletePortfolio(id string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var assetIDs []string
		if err := tx.Model(&AssetRecord{}).Where("portfolio_id = ?", id).Pluck("id", &assetIDs).Error; err != nil {
			return err
		}
		if len(assetIDs) > 0 {
			if err := tx.Where("asset_id IN ?", assetIDs).Delete(&PricePointRecord{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("portfolio_id = ?", id).Delete(&AssetRecord{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&PortfolioRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrPortfolioNotFound
		}
		return nil
	})

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func toRecord(snap market.PortfolioSnapshot) PortfolioRecord {
	record := PortfolioRecord{
		ID:    snap.ID,
		Name:  snap.Name,
		Owner: snap.Owner,
	}
	for i, a := range snap.Assets {
		assetRecord := toAssetRecord(snap.ID, a)
		assetRecord.Position = i
		record.Assets = append(record.Assets, assetRecord)
	}
	return record
}

func toAssetRecord(portfolioID string, a market.AssetSnapshot) AssetRecord {
	record := AssetRecord{
		ID:                a.ID,
		PortfolioID:       portfolioID,
		Type:              string(a.Type),
		Name:              a.Name,
		Symbol:            a.Symbol,
		Quantity:          a.Quantity,
		PurchasePrice:     a.PurchasePrice,
		CurrentPrice:      a.CurrentPrice,
		Volatility:        a.Volatility,
		MeanReturn:        a.MeanReturn,
		LowPriceThreshold: a.LowPriceThreshold,
	}

	switch a.Type {
	case market.TypeBond:
		rate := a.Rate
		record.Rate = &rate
	case market.TypeCommodity:
		unit := string(a.Unit)
		record.Unit = &unit
	case market.TypeRealEstate:
		if a.Address != nil {
			record.AddressStreet = &a.Address.Street
			record.AddressHouseNumber = &a.Address.HouseNumber
			record.AddressCity = &a.Address.City
			record.AddressZipCode = &a.Address.ZipCode
			record.AddressCountry = &a.Address.Country
			if a.Address.FlatNumber != "" {
				record.AddressFlatNumber = &a.Address.FlatNumber
			}
		}
	}

	for _, point := range a.History {
		record.History = append(record.History, PricePointRecord{
			AssetID: a.ID,
			Date:    point.Date,
			Price:   point.Price,
		})
	}
	return record
}

func toSnapshot(record PortfolioRecord) market.PortfolioSnapshot {
	snap := market.PortfolioSnapshot{
		ID:    record.ID,
		Name:  record.Name,
		Owner: record.Owner,
	}
	for _, a := range record.Assets {
		snap.Assets = append(snap.Assets, toAssetSnapshot(a))
	}
	return snap
}

func toAssetSnapshot(record AssetRecord) market.AssetSnapshot {
	snap := market.AssetSnapshot{
		ID:                record.ID,
		Type:              market.AssetType(record.Type),
		Name:              record.Name,
		Symbol:            record.Symbol,
		Quantity:          record.Quantity,
		PurchasePrice:     record.PurchasePrice,
		CurrentPrice:      record.CurrentPrice,
		Volatility:        record.Volatility,
		MeanReturn:        record.MeanReturn,
		LowPriceThreshold: record.LowPriceThreshold,
	}
	if record.Rate != nil {
		snap.Rate = *record.Rate
	}
	if record.Unit != nil {
		snap.Unit = market.Unit(*record.Unit)
	}
	if record.AddressStreet != nil {
		addr := market.Address{
			Street:      *record.AddressStreet,
			HouseNumber: deref(record.AddressHouseNumber),
			FlatNumber:  deref(record.AddressFlatNumber),
			City:        deref(record.AddressCity),
			ZipCode:     deref(record.AddressZipCode),
			Country:     deref(record.AddressCountry),
		}
		snap.Address = &addr
	}
	for _, point := range record.History {
		snap.History = append(snap.History, market.PricePoint{Date: point.Date, Price: point.Price})
	}
	return snap
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
