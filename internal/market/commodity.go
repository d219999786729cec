package market

import (
	"time"

	apperrors "folioman/internal/errors"
)

// Unit is the measurement unit of a commodity position. The set is closed.
type Unit string

const (
	UnitOunce    Unit = "ounce"
	UnitBarrel   Unit = "barrel"
	UnitTon      Unit = "ton"
	UnitKilogram Unit = "kilogram"
	UnitGram     Unit = "gram"
	UnitBushel   Unit = "bushel"
	UnitLiter    Unit = "liter"
	UnitMWh      Unit = "megawatt_hour"
)

// Units lists every defined commodity unit.
func Units() []Unit {
	return []Unit{UnitOunce, UnitBarrel, UnitTon, UnitKilogram, UnitGram, UnitBushel, UnitLiter, UnitMWh}
}

// ParseUnit converts a string to a Unit, rejecting anything outside the
// closed enumeration.
func ParseUnit(s string) (Unit, error) {
	u := Unit(s)
	for _, known := range Units() {
		if u == known {
			return u, nil
		}
	}
	return "", apperrors.WithMessage(apperrors.ErrInvalidUnit, "Undefined unit type value: "+s)
}

// Commodity represents a raw-material holding (gold, oil, grain, power).
type Commodity struct {
	baseAsset
	unit Unit
}

// NewCommodity creates a commodity lot measured in the given unit, with the
// default commodity volatility (0.015).
func NewCommodity(name, symbol string, quantity, purchasePrice float64, unit Unit) (*Commodity, error) {
	if _, err := ParseUnit(string(unit)); err != nil {
		return nil, err
	}
	base, err := newBaseAsset(name, symbol, quantity, purchasePrice, 0.015)
	if err != nil {
		return nil, err
	}
	base.meanReturn = 0.0003
	return &Commodity{baseAsset: base, unit: unit}, nil
}

// Unit returns the measurement unit.
func (c *Commodity) Unit() Unit { return c.unit }

// SetUnit changes the measurement unit, rejecting undefined values.
func (c *Commodity) SetUnit(unit Unit) error {
	if _, err := ParseUnit(string(unit)); err != nil {
		return err
	}
	c.unit = unit
	return nil
}

func (c *Commodity) Type() AssetType { return TypeCommodity }

func (c *Commodity) RiskAssessment() RiskLevel { return RiskMedium }

func (c *Commodity) SimulatePriceChange(date time.Time) error {
	return c.simulateStochastic(date)
}

func (c *Commodity) Clone() Asset {
	return &Commodity{baseAsset: c.cloneBase(), unit: c.unit}
}
