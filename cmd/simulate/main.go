package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"folioman/internal/config"
	"folioman/internal/database"
	"folioman/internal/logger"
	"folioman/internal/market"
	"folioman/internal/services"
	"folioman/internal/store"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	ticks := flag.Int("ticks", 0, "number of simulated days to run (0 = until interrupted)")
	interval := flag.Duration("interval", 0, "wall-clock pause between days (0 = as fast as possible)")
	flag.Parse()

	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(store.Models()...); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	portfolioService := services.NewPortfolioService(store.New(dbManager.DB()), cfg)
	if err := portfolioService.LoadPortfolios(); err != nil {
		return fmt.Errorf("failed to load portfolios: %w", err)
	}

	portfolios := portfolioService.ListPortfolios()
	if len(portfolios) == 0 {
		p, err := seedPortfolio(portfolioService)
		if err != nil {
			return fmt.Errorf("failed to seed portfolio: %w", err)
		}
		portfolios = append(portfolios, p)
		log.Infow("seeded sample portfolio", "portfolio_id", p.ID())
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	interrupted := false
	for day := 0; *ticks == 0 || day < *ticks; day++ {
		for _, p := range portfolios {
			if err := portfolioService.StepSimulation(p.ID(), 1); err != nil {
				return err
			}
			status, err := portfolioService.Status(p.ID())
			if err != nil {
				return err
			}
			log.Infow("day simulated",
				"portfolio", p.Name(),
				"date", status.Date.Format(time.DateOnly),
				"total_value", p.TotalValue(),
				"news", status.News,
			)
		}

		select {
		case sig := <-quit:
			log.Infow("interrupted", "signal", sig.String())
			interrupted = true
		case <-time.After(*interval):
		}
		if interrupted {
			break
		}
	}

	// Ends active events and persists every portfolio.
	if err := portfolioService.Shutdown(); err != nil {
		return fmt.Errorf("failed to save portfolios: %w", err)
	}
	log.Info("Simulation finished, portfolios saved")
	return nil
}

// seedPortfolio creates a starter portfolio so a fresh database has
// something to simulate.
func seedPortfolio(svc services.PortfolioServicer) (*market.Portfolio, error) {
	p, err := svc.CreatePortfolio("Sample Portfolio", "John Smith")
	if err != nil {
		return nil, err
	}

	address := market.Address{
		Street:      "Main Street",
		HouseNumber: "12",
		City:        "Springfield",
		ZipCode:     "12345",
		Country:     "USA",
	}
	inputs := []services.AssetInput{
		{Type: market.TypeStock, Name: "Apple Inc.", Symbol: "AAPL", Quantity: 10, PurchasePrice: 150},
		{Type: market.TypeStock, Name: "Microsoft", Symbol: "MSFT", Quantity: 5, PurchasePrice: 300},
		{Type: market.TypeBond, Name: "Treasury 2030", Symbol: "T30", Quantity: 5, PurchasePrice: 1000, Rate: 0.0365},
		{Type: market.TypeCryptocurrency, Name: "Bitcoin", Symbol: "BTC", Quantity: 0.5, PurchasePrice: 40000},
		{Type: market.TypeCommodity, Name: "Gold", Symbol: "XAU", Quantity: 2, PurchasePrice: 1900, Unit: market.UnitOunce},
		{Type: market.TypeRealEstate, Name: "Downtown Flat", Quantity: 1, PurchasePrice: 300000, Address: &address},
	}
	for _, input := range inputs {
		if _, err := svc.AddAsset(p.ID(), input); err != nil {
			return nil, err
		}
	}
	return p, nil
}
