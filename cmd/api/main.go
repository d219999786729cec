package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"folioman/internal/config"
	"folioman/internal/database"
	"folioman/internal/handlers"
	"folioman/internal/logger"
	"folioman/internal/services"
	"folioman/internal/store"
	"folioman/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
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

	validator.Register()

	portfolioService := services.NewPortfolioService(store.New(dbManager.DB()), cfg)
	if err := portfolioService.LoadPortfolios(); err != nil {
		return fmt.Errorf("failed to load portfolios: %w", err)
	}

	router := handlers.NewRouter(portfolioService)

	// Save everything and stop runners on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		log.Infow("shutting down", "signal", sig.String())
		if err := portfolioService.Shutdown(); err != nil {
			log.Errorw("shutdown save failed", "error", err)
		}
		logger.Sync()
		os.Exit(0)
	}()

	log.Infof("Starting Folioman API server on port %s", cfg.Port)
	return router.Run(":" + cfg.Port)
}
