package market

import (
	"strings"
	"time"

	apperrors "folioman/internal/errors"
)

// Address is the validated postal address attached to a real-estate asset.
type Address struct {
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	FlatNumber  string `json:"flat_number,omitempty"`
	City        string `json:"city"`
	ZipCode     string `json:"zip_code"`
	Country     string `json:"country"`
}

// Validate checks the address fields. FlatNumber is optional; everything
// else must be non-blank and the zip code at least 3 characters long.
func (a Address) Validate() error {
	switch {
	case strings.TrimSpace(a.Street) == "":
		return apperrors.WithMessage(apperrors.ErrInvalidAddress, "Street cannot be empty")
	case strings.TrimSpace(a.HouseNumber) == "":
		return apperrors.WithMessage(apperrors.ErrInvalidAddress, "House number cannot be empty")
	case strings.TrimSpace(a.City) == "":
		return apperrors.WithMessage(apperrors.ErrInvalidAddress, "City cannot be empty")
	case strings.TrimSpace(a.Country) == "":
		return apperrors.WithMessage(apperrors.ErrInvalidAddress, "Country cannot be empty")
	}
	if strings.TrimSpace(a.ZipCode) == "" || len(a.ZipCode) < 3 {
		return apperrors.WithMessage(apperrors.ErrInvalidZipCode, "Invalid zip code format: "+a.ZipCode)
	}
	return nil
}

// RealEstate represents a single property. Each property is unique: it is
// never merged with other holdings, always has quantity 1, and its price
// only moves on the first day of a simulated month (illiquid-asset policy).
type RealEstate struct {
	baseAsset
	address Address
}

// NewRealEstate creates a property valued at purchasePrice. Real-estate
// assets use the fixed symbol "PROP" and a low default volatility (0.005).
func NewRealEstate(name string, purchasePrice float64, address Address) (*RealEstate, error) {
	if err := address.Validate(); err != nil {
		return nil, err
	}
	base, err := newBaseAsset(name, "PROP", 1, purchasePrice, 0.005)
	if err != nil {
		return nil, err
	}
	base.meanReturn = 0.00015
	return &RealEstate{baseAsset: base, address: address}, nil
}

// Address returns the property's postal address.
func (r *RealEstate) Address() Address { return r.address }

// SetAddress replaces the postal address. The new address is validated and
// the old one kept on failure.
func (r *RealEstate) SetAddress(address Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	r.address = address
	return nil
}

func (r *RealEstate) Type() AssetType { return TypeRealEstate }

func (r *RealEstate) RiskAssessment() RiskLevel { return RiskLow }

// IsMergeable is false: every property is its own position.
func (r *RealEstate) IsMergeable() bool { return false }

// SimulatePriceChange only runs on the first day of the month; all other
// days are no-ops and append no history.
func (r *RealEstate) SimulatePriceChange(date time.Time) error {
	if date.Day() != 1 {
		return nil
	}
	return r.simulateStochastic(date)
}

func (r *RealEstate) Clone() Asset {
	return &RealEstate{baseAsset: r.cloneBase(), address: r.address}
}
