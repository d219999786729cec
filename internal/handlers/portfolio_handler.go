package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "folioman/internal/errors"
	"folioman/internal/services"
)

// PortfolioHandler handles portfolio-level requests.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// CreatePortfolioRequest represents the request payload for creating a portfolio.
type CreatePortfolioRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Owner string `json:"owner" binding:"required,owner_name"`
}

// UpdateOwnerRequest represents the request payload for changing the owner.
type UpdateOwnerRequest struct {
	Owner string `json:"owner" binding:"required,owner_name"`
}

// ClonePortfolioRequest represents the request payload for cloning a portfolio.
type ClonePortfolioRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreatePortfolio handles creating a new portfolio.
func (h *PortfolioHandler) CreatePortfolio(c *gin.Context) {
	var req CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	p, err := h.portfolioService.CreatePortfolio(req.Name, req.Owner)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"portfolio": newPortfolioResponse(p)})
}

// ListPortfolios handles listing all portfolios with their totals.
func (h *PortfolioHandler) ListPortfolios(c *gin.Context) {
	portfolios := h.portfolioService.ListPortfolios()

	responses := make([]PortfolioResponse, 0, len(portfolios))
	for _, p := range portfolios {
		responses = append(responses, newPortfolioResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"portfolios": responses})
}

// GetPortfolio handles fetching one portfolio with its summary table.
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	p, err := h.portfolioService.GetPortfolio(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"portfolio": newPortfolioResponse(p),
		"summaries": p.Summaries(),
	})
}

// UpdateOwner handles changing a portfolio's owner.
func (h *PortfolioHandler) UpdateOwner(c *gin.Context) {
	var req UpdateOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.portfolioService.UpdateOwner(c.Param("id"), req.Owner); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Owner updated"})
}

// ClonePortfolio handles deep-copying a portfolio under a new name.
func (h *PortfolioHandler) ClonePortfolio(c *gin.Context) {
	var req ClonePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	clone, err := h.portfolioService.ClonePortfolio(c.Param("id"), req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"portfolio": newPortfolioResponse(clone)})
}

// DeletePortfolio handles deleting a portfolio from the registry and store.
func (h *PortfolioHandler) DeletePortfolio(c *gin.Context) {
	if err := h.portfolioService.DeletePortfolio(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Portfolio deleted"})
}

// TopMovers handles listing the best performing assets since purchase.
func (h *PortfolioHandler) TopMovers(c *gin.Context) {
	p, err := h.portfolioService.GetPortfolio(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	n := 5
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid n"))
			return
		}
		n = parsed
	}

	movers := p.TopMovers(n)
	responses := make([]AssetResponse, 0, len(movers))
	for _, a := range movers {
		responses = append(responses, newAssetResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"top_movers": responses})
}

// Allocation handles reporting value share per asset type.
func (h *PortfolioHandler) Allocation(c *gin.Context) {
	p, err := h.portfolioService.GetPortfolio(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allocation": p.AllocationByType()})
}

// SavePortfolio handles persisting a portfolio to the store.
func (h *PortfolioHandler) SavePortfolio(c *gin.Context) {
	if err := h.portfolioService.SavePortfolio(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Portfolio saved"})
}

// Notifications handles listing a portfolio's recent price notifications.
func (h *PortfolioHandler) Notifications(c *gin.Context) {
	notifications, err := h.portfolioService.Notifications(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	if notifications == nil {
		notifications = []services.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
