package market

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	apperrors "folioman/internal/errors"
)

func mustPortfolio(t *testing.T, name, owner string) *Portfolio {
	t.Helper()
	p, err := NewPortfolio(name, owner)
	if err != nil {
		t.Fatalf("NewPortfolio: %v", err)
	}
	return p
}

func TestNewPortfolioValidation(t *testing.T) {
	owners := []struct {
		name  string
		owner string
		valid bool
	}{
		{"first and last", "John Smith", true},
		{"with middle name", "John Paul Smith", true},
		{"hyphenated last name", "Mary Watson-Jones", true},
		{"diacritics", "Ádám Kovács", true},
		{"single name", "John", false},
		{"lowercase first", "john Smith", false},
		{"trailing space", "John Smith ", false},
		{"digits", "John Sm1th", false},
		{"empty", "", false},
	}

	for _, tt := range owners {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPortfolio("Retirement", tt.owner)
			if tt.valid && err != nil {
				t.Errorf("owner %q rejected: %v", tt.owner, err)
			}
			if !tt.valid && !errors.Is(err, apperrors.ErrInvalidOwner) {
				t.Errorf("owner %q: error = %v, want ErrInvalidOwner", tt.owner, err)
			}
		})
	}

	t.Run("blank name", func(t *testing.T) {
		if _, err := NewPortfolio("  ", "John Smith"); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})
}

func TestAddRemoveAsset(t *testing.T) {
	t.Run("nil asset rejected", func(t *testing.T) {
		p := mustPortfolio(t, "Main", "John Smith")
		if err := p.AddAsset(nil); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("remove unknown id", func(t *testing.T) {
		p := mustPortfolio(t, "Main", "John Smith")
		if p.RemoveAsset("nope") {
			t.Error("RemoveAsset returned true for unknown id")
		}
	})

	t.Run("re-parenting moves exclusive ownership", func(t *testing.T) {
		p1 := mustPortfolio(t, "First", "John Smith")
		p2 := mustPortfolio(t, "Second", "John Smith")
		s := mustStock(t, "Apple Inc.", "AAPL", 10, 150)

		if err := p1.AddAsset(s); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}
		if err := p2.AddAsset(s); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}

		if p1.AssetCount() != 0 {
			t.Errorf("first portfolio still holds %d assets", p1.AssetCount())
		}
		if p2.AssetCount() != 1 {
			t.Errorf("second portfolio holds %d assets, want 1", p2.AssetCount())
		}
		if _, ok := p1.Summary("AAPL"); ok {
			t.Error("first portfolio kept a summary row for the moved asset")
		}
		if row, ok := p2.Summary("AAPL"); !ok || row.TotalQuantity != 10 {
			t.Errorf("second portfolio summary = (%+v, %v)", row, ok)
		}
	})

	t.Run("re-adding to the same portfolio is a no-op", func(t *testing.T) {
		p := mustPortfolio(t, "Main", "John Smith")
		s := mustStock(t, "Apple Inc.", "AAPL", 10, 150)
		if err := p.AddAsset(s); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}
		if err := p.AddAsset(s); err != nil {
			t.Fatalf("AddAsset twice: %v", err)
		}
		if p.AssetCount() != 1 {
			t.Errorf("asset count = %d, want 1", p.AssetCount())
		}
	})
}

func TestAdvanceOneTick(t *testing.T) {
	day := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	t.Run("lots with one symbol share one price", func(t *testing.T) {
		p := mustPortfolio(t, "Main", "John Smith")
		lot1 := mustStock(t, "Apple Inc.", "AAPL", 10, 150)
		lot2 := mustStock(t, "Apple Inc.", "AAPL", 5, 160)
		lot1.base().model = NewPriceModel(rand.NewPCG(3, 3))

		if err := p.AddAsset(lot1); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}
		if err := p.AddAsset(lot2); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}
		if err := p.AdvanceOneTick(day); err != nil {
			t.Fatalf("AdvanceOneTick: %v", err)
		}

		if lot1.CurrentPrice() != lot2.CurrentPrice() {
			t.Errorf("lot prices diverged: %v vs %v", lot1.CurrentPrice(), lot2.CurrentPrice())
		}
		h1, h2 := lot1.PriceHistory(), lot2.PriceHistory()
		if len(h1) != 1 || len(h2) != 1 {
			t.Fatalf("history lengths = (%d, %d), want (1, 1)", len(h1), len(h2))
		}
		if h1[0].Price != h2[0].Price || !h1[0].Date.Equal(h2[0].Date) {
			t.Errorf("follower history %+v does not mirror leader %+v", h2[0], h1[0])
		}
	})

	t.Run("commodities group by symbol and unit", func(t *testing.T) {
		p := mustPortfolio(t, "Main", "John Smith")
		bars, err := NewCommodity("Gold", "XAU", 2, 1900, UnitOunce)
		if err != nil {
			t.Fatalf("NewCommodity: %v", err)
		}
		dust, err := NewCommodity("Gold", "XAU", 100, 61, UnitGram)
		if err != nil {
			t.Fatalf("NewCommodity: %v", err)
		}
		bars.base().model = NewPriceModel(rand.NewPCG(5, 5))
		dust.base().model = NewPriceModel(rand.NewPCG(6, 6))

		if err := p.AddAsset(bars); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}
		if err := p.AddAsset(dust); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}
		if err := p.AdvanceOneTick(day); err != nil {
			t.Fatalf("AdvanceOneTick: %v", err)
		}

		// Different units never follow each other's draw.
		if bars.CurrentPrice() == dust.CurrentPrice() {
			t.Errorf("ounce and gram lots converged to %v", bars.CurrentPrice())
		}
	})

	t.Run("properties never follow each other", func(t *testing.T) {
		p := mustPortfolio(t, "Main", "John Smith")
		flat := newTestProperty(t, "Downtown Flat", 300000)
		house := newTestProperty(t, "Suburb House", 450000)
		flat.base().model = NewPriceModel(rand.NewPCG(7, 7))
		house.base().model = NewPriceModel(rand.NewPCG(8, 8))

		if err := p.AddAsset(flat); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}
		if err := p.AddAsset(house); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}

		first := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		if err := p.AdvanceOneTick(first); err != nil {
			t.Fatalf("AdvanceOneTick: %v", err)
		}
		if flat.CurrentPrice() == house.CurrentPrice() {
			t.Errorf("distinct properties converged to %v", flat.CurrentPrice())
		}
	})

	t.Run("subscriber errors do not stop the tick", func(t *testing.T) {
		p := mustPortfolio(t, "Main", "John Smith")
		bad := mustStock(t, "Apple Inc.", "AAPL", 10, 150)
		good := mustStock(t, "Microsoft", "MSFT", 5, 300)
		bad.base().model = NewPriceModel(rand.NewPCG(9, 9))
		good.base().model = NewPriceModel(rand.NewPCG(10, 10))

		sentinel := errors.New("listener broke")
		bad.OnPriceUpdate(func(string, float64, string) error { return sentinel })

		if err := p.AddAsset(bad); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}
		if err := p.AddAsset(good); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}

		err := p.AdvanceOneTick(day)
		if !errors.Is(err, sentinel) {
			t.Fatalf("error = %v, want wrapped sentinel", err)
		}
		if len(good.PriceHistory()) != 1 {
			t.Error("second group was not ticked after the first group's failure")
		}
	})
}

func TestSummaries(t *testing.T) {
	t.Run("mergeable lots collapse into one row", func(t *testing.T) {
		p := mustPortfolio(t, "Main", "John Smith")
		lot1, err := NewCryptocurrency("Bitcoin", "BTC", 0.5, 40000)
		if err != nil {
			t.Fatalf("NewCryptocurrency: %v", err)
		}
		lot2, err := NewCryptocurrency("Bitcoin", "BTC", 0.5, 30000)
		if err != nil {
			t.Fatalf("NewCryptocurrency: %v", err)
		}
		if err := p.AddAsset(lot1); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}
		if err := p.AddAsset(lot2); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}

		row, ok := p.Summary("BTC")
		if !ok {
			t.Fatal("no BTC summary row")
		}
		if row.TotalQuantity != 1.0 {
			t.Errorf("total quantity = %v, want 1.0", row.TotalQuantity)
		}
		if math.Abs(row.AveragePurchasePrice-35000) > 1e-3 {
			t.Errorf("average purchase price = %v, want 35000", row.AveragePurchasePrice)
		}
		if math.Abs(row.TotalCost-35000) > 1e-3 {
			t.Errorf("total cost = %v, want 35000", row.TotalCost)
		}
	})

	t.Run("row follows price and quantity changes", func(t *testing.T) {
		p := mustPortfolio(t, "Main", "John Smith")
		s := mustStock(t, "Apple Inc.", "AAPL", 10, 150)
		if err := p.AddAsset(s); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}

		if err := p.SetAssetPrice(s.ID(), 200); err != nil {
			t.Fatalf("SetAssetPrice: %v", err)
		}
		row, _ := p.Summary("AAPL")
		if row.TotalValue != 2000 {
			t.Errorf("total value = %v, want 2000", row.TotalValue)
		}
		if row.TotalProfit != 500 {
			t.Errorf("total profit = %v, want 500", row.TotalProfit)
		}

		if err := p.SetAssetQuantity(s.ID(), 4); err != nil {
			t.Fatalf("SetAssetQuantity: %v", err)
		}
		row, _ = p.Summary("AAPL")
		if row.TotalQuantity != 4 || row.TotalValue != 800 {
			t.Errorf("row = %+v after quantity change", row)
		}
	})

	t.Run("rejected price leaves the row untouched", func(t *testing.T) {
		p := mustPortfolio(t, "Main", "John Smith")
		s := mustStock(t, "Apple Inc.", "AAPL", 10, 150)
		if err := p.AddAsset(s); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}

		if err := p.SetAssetPrice(s.ID(), -1); !errors.Is(err, apperrors.ErrInvalidPrice) {
			t.Fatalf("error = %v, want ErrInvalidPrice", err)
		}
		row, _ := p.Summary("AAPL")
		if row.TotalValue != 1500 {
			t.Errorf("total value = %v, want unchanged 1500", row.TotalValue)
		}
	})

	t.Run("removing the last lot deletes the row", func(t *testing.T) {
		p := mustPortfolio(t, "Main", "John Smith")
		s := mustStock(t, "Apple Inc.", "AAPL", 10, 150)
		if err := p.AddAsset(s); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}
		if !p.RemoveAsset(s.ID()) {
			t.Fatal("RemoveAsset returned false")
		}
		if _, ok := p.Summary("AAPL"); ok {
			t.Error("summary row survived removal of its last member")
		}
	})

	t.Run("properties keep separate rows", func(t *testing.T) {
		p := mustPortfolio(t, "Main", "John Smith")
		flat := newTestProperty(t, "Downtown Flat", 300000)
		house := newTestProperty(t, "Suburb House", 450000)
		if err := p.AddAsset(flat); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}
		if err := p.AddAsset(house); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}

		if len(p.Summaries()) != 2 {
			t.Errorf("summary rows = %d, want 2 separate property rows", len(p.Summaries()))
		}
	})

	t.Run("unknown asset id", func(t *testing.T) {
		p := mustPortfolio(t, "Main", "John Smith")
		if err := p.SetAssetPrice("nope", 10); !errors.Is(err, apperrors.ErrAssetNotFound) {
			t.Errorf("SetAssetPrice error = %v, want ErrAssetNotFound", err)
		}
		if err := p.SetAssetQuantity("nope", 10); !errors.Is(err, apperrors.ErrAssetNotFound) {
			t.Errorf("SetAssetQuantity error = %v, want ErrAssetNotFound", err)
		}
	})
}

func TestPortfolioAnalytics(t *testing.T) {
	p := mustPortfolio(t, "Main", "John Smith")
	winner := mustStock(t, "Apple Inc.", "AAPL", 10, 100)
	loser := mustStock(t, "Legacy Corp", "LGC", 10, 100)
	flat := mustStock(t, "Sideways Inc.", "SWI", 10, 100)
	for _, a := range []Asset{winner, loser, flat} {
		if err := p.AddAsset(a); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}
	}
	if err := p.SetAssetPrice(winner.ID(), 150); err != nil {
		t.Fatalf("SetAssetPrice: %v", err)
	}
	if err := p.SetAssetPrice(loser.ID(), 50); err != nil {
		t.Fatalf("SetAssetPrice: %v", err)
	}

	t.Run("totals", func(t *testing.T) {
		if got := p.TotalValue(); got != 1500+500+1000 {
			t.Errorf("TotalValue = %v, want 3000", got)
		}
		if got := p.TotalProfit(); got != 0 {
			t.Errorf("TotalProfit = %v, want 0 (gain cancels loss)", got)
		}
	})

	t.Run("top movers ordered by percentage change", func(t *testing.T) {
		movers := p.TopMovers(2)
		if len(movers) != 2 {
			t.Fatalf("movers = %d, want 2", len(movers))
		}
		if movers[0].Symbol() != "AAPL" || movers[1].Symbol() != "SWI" {
			t.Errorf("movers = [%s, %s], want [AAPL, SWI]", movers[0].Symbol(), movers[1].Symbol())
		}
	})

	t.Run("top movers with zero or negative n is empty", func(t *testing.T) {
		if got := p.TopMovers(0); len(got) != 0 {
			t.Errorf("TopMovers(0) returned %d assets, want 0", len(got))
		}
		if got := p.TopMovers(-1); len(got) != 0 {
			t.Errorf("TopMovers(-1) returned %d assets, want 0", len(got))
		}
	})

	t.Run("allocation percentages sum to 100", func(t *testing.T) {
		alloc := p.AllocationByType()
		total := 0.0
		for _, pct := range alloc {
			total += pct
		}
		if math.Abs(total-100) > 1e-9 {
			t.Errorf("allocation sums to %v, want 100", total)
		}
		if math.Abs(alloc[TypeStock]-100) > 1e-9 {
			t.Errorf("stock allocation = %v, want 100", alloc[TypeStock])
		}
	})

	t.Run("find assets is lazy over a snapshot", func(t *testing.T) {
		count := 0
		for a := range p.FindAssets(func(a Asset) bool { return a.CurrentPrice() > 75 }) {
			count++
			_ = a
		}
		if count != 2 {
			t.Errorf("matched %d assets, want 2", count)
		}
	})
}

func TestPortfolioClone(t *testing.T) {
	p := mustPortfolio(t, "Main", "John Smith")
	s := mustStock(t, "Apple Inc.", "AAPL", 10, 150)
	if err := p.AddAsset(s); err != nil {
		t.Fatalf("AddAsset: %v", err)
	}

	clone, err := p.Clone("Backup")
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if clone.ID() == p.ID() {
		t.Error("clone shares the original portfolio id")
	}
	if clone.Owner() != "John Smith" || clone.Name() != "Backup" {
		t.Errorf("clone identity = (%q, %q)", clone.Name(), clone.Owner())
	}
	if clone.AssetCount() != 1 {
		t.Fatalf("clone asset count = %d, want 1", clone.AssetCount())
	}

	// Mutating the clone must not leak into the original.
	cloned := clone.Assets()[0]
	if err := clone.SetAssetPrice(cloned.ID(), 999); err != nil {
		t.Fatalf("SetAssetPrice: %v", err)
	}
	if s.CurrentPrice() != 150 {
		t.Errorf("original price = %v after clone mutation, want 150", s.CurrentPrice())
	}
	if row, _ := p.Summary("AAPL"); row.TotalValue != 1500 {
		t.Errorf("original summary value = %v, want 1500", row.TotalValue)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	p := mustPortfolio(t, "Main", "John Smith")
	s := mustStock(t, "Apple Inc.", "AAPL", 10, 150)
	s.SetLowPriceThreshold(120)
	s.base().appendHistory(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), 150)
	b, err := NewBond("Treasury 2030", "T30", 5, 1000, 0.05)
	if err != nil {
		t.Fatalf("NewBond: %v", err)
	}
	prop := newTestProperty(t, "Downtown Flat", 300000)
	gold, err := NewCommodity("Gold", "XAU", 2, 1900, UnitOunce)
	if err != nil {
		t.Fatalf("NewCommodity: %v", err)
	}
	for _, a := range []Asset{s, b, prop, gold} {
		if err := p.AddAsset(a); err != nil {
			t.Fatalf("AddAsset: %v", err)
		}
	}
	if err := p.SetAssetPrice(s.ID(), 180); err != nil {
		t.Fatalf("SetAssetPrice: %v", err)
	}

	restored, err := RestorePortfolio(p.Snapshot())
	if err != nil {
		t.Fatalf("RestorePortfolio: %v", err)
	}

	if restored.ID() != p.ID() || restored.Owner() != p.Owner() {
		t.Errorf("restored identity = (%q, %q)", restored.ID(), restored.Owner())
	}
	if restored.AssetCount() != 4 {
		t.Fatalf("restored asset count = %d, want 4", restored.AssetCount())
	}

	rs, ok := restored.Asset(s.ID())
	if !ok {
		t.Fatal("restored portfolio lost the stock")
	}
	if rs.CurrentPrice() != 180 {
		t.Errorf("restored current price = %v, want 180", rs.CurrentPrice())
	}
	if got, ok := rs.LowPriceThreshold(); !ok || got != 120 {
		t.Errorf("restored threshold = (%v, %v), want (120, true)", got, ok)
	}
	if len(rs.PriceHistory()) != 1 {
		t.Errorf("restored history length = %d, want 1", len(rs.PriceHistory()))
	}

	rb, _ := restored.Asset(b.ID())
	if rb.(*Bond).Rate() != 0.05 {
		t.Errorf("restored bond rate = %v, want 0.05", rb.(*Bond).Rate())
	}
	rp, _ := restored.Asset(prop.ID())
	if rp.(*RealEstate).Address().City != "Springfield" {
		t.Errorf("restored address = %+v", rp.(*RealEstate).Address())
	}
	rg, _ := restored.Asset(gold.ID())
	if rg.(*Commodity).Unit() != UnitOunce {
		t.Errorf("restored unit = %q, want ounce", rg.(*Commodity).Unit())
	}

	// Summaries are rebuilt, not loaded: the live row must match the original.
	want, _ := p.Summary("AAPL")
	got, ok := restored.Summary("AAPL")
	if !ok || got != want {
		t.Errorf("restored summary = %+v, want %+v", got, want)
	}
}
