package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "folioman/internal/errors"
	"folioman/internal/market"
	"folioman/internal/services"
)

// SimulationHandler handles simulation lifecycle and market-event requests.
type SimulationHandler struct {
	portfolioService services.PortfolioServicer
}

// NewSimulationHandler creates a new SimulationHandler.
func NewSimulationHandler(portfolioService services.PortfolioServicer) *SimulationHandler {
	return &SimulationHandler{portfolioService: portfolioService}
}

// StartSimulationRequest represents the request payload for starting the loop.
type StartSimulationRequest struct {
	IntervalSeconds int `json:"interval_seconds" binding:"omitempty,min=1,max=3600"`
}

// TickRequest represents the request payload for a manual advance.
type TickRequest struct {
	Days int `json:"days" binding:"omitempty,min=1,max=365"`
}

// TriggerEventRequest represents the request payload for forcing a market event.
type TriggerEventRequest struct {
	Title string `json:"title" binding:"required,market_event"`
}

// Status handles reporting a portfolio's simulation state.
func (h *SimulationHandler) Status(c *gin.Context) {
	status, err := h.portfolioService.Status(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"simulation": status})
}

// Start handles launching the background tick loop.
func (h *SimulationHandler) Start(c *gin.Context) {
	var req StartSimulationRequest
	// The body is optional; an absent interval uses the configured default.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	interval := time.Duration(req.IntervalSeconds) * time.Second
	if err := h.portfolioService.StartSimulation(c.Param("id"), interval); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Simulation started"})
}

// Stop handles terminating the background tick loop.
func (h *SimulationHandler) Stop(c *gin.Context) {
	if err := h.portfolioService.StopSimulation(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Simulation stopped"})
}

// Pause handles suspending the background tick loop.
func (h *SimulationHandler) Pause(c *gin.Context) {
	if err := h.portfolioService.PauseSimulation(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Simulation paused"})
}

// Resume handles resuming a paused loop.
func (h *SimulationHandler) Resume(c *gin.Context) {
	if err := h.portfolioService.ResumeSimulation(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Simulation resumed"})
}

// Tick handles manually advancing the simulation by one or more days.
func (h *SimulationHandler) Tick(c *gin.Context) {
	var req TickRequest
	// The body is optional; an absent day count advances a single day.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	if err := h.portfolioService.StepSimulation(c.Param("id"), req.Days); err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.portfolioService.Status(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"simulation": status})
}

// TriggerEvent handles forcing a market event from the catalog.
func (h *SimulationHandler) TriggerEvent(c *gin.Context) {
	var req TriggerEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.portfolioService.TriggerEvent(c.Param("id"), req.Title); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Market event triggered"})
}

// MarketEventDescription is the JSON shape of one catalog entry.
type MarketEventDescription struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	DurationTicks int    `json:"duration_ticks"`
}

// ListMarketEvents handles listing the market-event catalog.
func (h *SimulationHandler) ListMarketEvents(c *gin.Context) {
	catalog := market.DefaultCatalog()
	events := make([]MarketEventDescription, 0, len(catalog))
	for _, def := range catalog {
		events = append(events, MarketEventDescription{
			Title:         def.Title,
			Description:   def.Description,
			DurationTicks: def.DurationTicks,
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// News handles reporting the current market headline for a portfolio.
func (h *SimulationHandler) News(c *gin.Context) {
	status, err := h.portfolioService.Status(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"news": status.News})
}
