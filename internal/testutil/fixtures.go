package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"folioman/internal/market"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewTestPortfolio creates an empty portfolio with a unique name.
func NewTestPortfolio(t *testing.T) *market.Portfolio {
	t.Helper()

	p, err := market.NewPortfolio(fmt.Sprintf("Test Portfolio %d", nextID()), "John Smith")
	if err != nil {
		t.Fatalf("failed to create test portfolio: %v", err)
	}
	return p
}

// NewTestStock creates a stock lot: 10 shares at 150.
func NewTestStock(t *testing.T) *market.Stock {
	t.Helper()

	s, err := market.NewStock("Apple Inc.", "AAPL", 10, 150)
	if err != nil {
		t.Fatalf("failed to create test stock: %v", err)
	}
	return s
}

// NewTestBond creates a bond lot: 5 units of 1000 face at a 5% annual rate.
func NewTestBond(t *testing.T) *market.Bond {
	t.Helper()

	b, err := market.NewBond("Treasury 2030", "T30", 5, 1000, 0.05)
	if err != nil {
		t.Fatalf("failed to create test bond: %v", err)
	}
	return b
}

// NewTestCrypto creates a cryptocurrency lot: 0.5 BTC at 40000.
func NewTestCrypto(t *testing.T) *market.Cryptocurrency {
	t.Helper()

	c, err := market.NewCryptocurrency("Bitcoin", "BTC", 0.5, 40000)
	if err != nil {
		t.Fatalf("failed to create test cryptocurrency: %v", err)
	}
	return c
}

// NewTestCommodity creates a commodity lot: 2 ounces of gold at 1900.
func NewTestCommodity(t *testing.T) *market.Commodity {
	t.Helper()

	c, err := market.NewCommodity("Gold", "XAU", 2, 1900, market.UnitOunce)
	if err != nil {
		t.Fatalf("failed to create test commodity: %v", err)
	}
	return c
}

// NewTestRealEstate creates a property valued at 300000 with a valid address.
func NewTestRealEstate(t *testing.T) *market.RealEstate {
	t.Helper()

	r, err := market.NewRealEstate(fmt.Sprintf("Test Property %d", nextID()), 300000, TestAddress())
	if err != nil {
		t.Fatalf("failed to create test real estate: %v", err)
	}
	return r
}

// TestAddress returns a valid postal address.
func TestAddress() market.Address {
	return market.Address{
		Street:      "Main Street",
		HouseNumber: "12",
		City:        "Springfield",
		ZipCode:     "12345",
		Country:     "USA",
	}
}
