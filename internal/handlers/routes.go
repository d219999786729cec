package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"folioman/internal/middleware"
	"folioman/internal/services"
)

// NewRouter builds the full API router with middleware and all routes.
func NewRouter(portfolioService services.PortfolioServicer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	portfolioHandler := NewPortfolioHandler(portfolioService)
	assetHandler := NewAssetHandler(portfolioService)
	simulationHandler := NewSimulationHandler(portfolioService)

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Market catalog
	v1.GET("/market/events", simulationHandler.ListMarketEvents)

	// Portfolio routes
	portfolios := v1.Group("/portfolios")
	portfolios.POST("", portfolioHandler.CreatePortfolio)
	portfolios.GET("", portfolioHandler.ListPortfolios)
	portfolios.GET("/:id", portfolioHandler.GetPortfolio)
	portfolios.PUT("/:id/owner", portfolioHandler.UpdateOwner)
	portfolios.POST("/:id/clone", portfolioHandler.ClonePortfolio)
	portfolios.DELETE("/:id", portfolioHandler.DeletePortfolio)
	portfolios.GET("/:id/top-movers", portfolioHandler.TopMovers)
	portfolios.GET("/:id/allocation", portfolioHandler.Allocation)
	portfolios.POST("/:id/save", portfolioHandler.SavePortfolio)
	portfolios.GET("/:id/notifications", portfolioHandler.Notifications)

	// Asset routes
	portfolios.POST("/:id/assets", assetHandler.AddAsset)
	portfolios.GET("/:id/assets", assetHandler.ListAssets)
	portfolios.GET("/:id/assets/:assetId", assetHandler.GetAsset)
	portfolios.DELETE("/:id/assets/:assetId", assetHandler.RemoveAsset)
	portfolios.PUT("/:id/assets/:assetId/price", assetHandler.UpdatePrice)
	portfolios.PUT("/:id/assets/:assetId/quantity", assetHandler.UpdateQuantity)
	portfolios.PUT("/:id/assets/:assetId/threshold", assetHandler.UpdateThreshold)

	// Simulation routes
	portfolios.GET("/:id/simulation", simulationHandler.Status)
	portfolios.POST("/:id/simulation/start", simulationHandler.Start)
	portfolios.POST("/:id/simulation/stop", simulationHandler.Stop)
	portfolios.POST("/:id/simulation/pause", simulationHandler.Pause)
	portfolios.POST("/:id/simulation/resume", simulationHandler.Resume)
	portfolios.POST("/:id/tick", simulationHandler.Tick)
	portfolios.POST("/:id/events", simulationHandler.TriggerEvent)
	portfolios.GET("/:id/news", simulationHandler.News)

	return router
}
