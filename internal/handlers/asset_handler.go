package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "folioman/internal/errors"
	"folioman/internal/market"
	"folioman/internal/pagination"
	"folioman/internal/services"
)

// AssetHandler handles asset-level requests within a portfolio.
type AssetHandler struct {
	portfolioService services.PortfolioServicer
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(portfolioService services.PortfolioServicer) *AssetHandler {
	return &AssetHandler{portfolioService: portfolioService}
}

// AddressPayload carries a postal address for real-estate assets.
type AddressPayload struct {
	Street      string `json:"street" binding:"required"`
	HouseNumber string `json:"house_number" binding:"required"`
	FlatNumber  string `json:"flat_number,omitempty"`
	City        string `json:"city" binding:"required"`
	ZipCode     string `json:"zip_code" binding:"required,min=3"`
	Country     string `json:"country" binding:"required"`
}

// AddAssetRequest represents the request payload for adding an asset.
// Variant-specific fields are only read for the matching type; real-estate
// assets ignore Symbol and Quantity.
type AddAssetRequest struct {
	Type          string  `json:"type" binding:"required,asset_type"`
	Name          string  `json:"name" binding:"required,min=1,max=200"`
	Symbol        string  `json:"symbol" binding:"omitempty,min=1,max=20"`
	Quantity      float64 `json:"quantity" binding:"omitempty,gt=0"`
	PurchasePrice float64 `json:"purchase_price" binding:"gte=0"`

	Rate    float64         `json:"rate,omitempty" binding:"omitempty,gte=0"`
	Unit    string          `json:"unit,omitempty" binding:"omitempty,commodity_unit"`
	Address *AddressPayload `json:"address,omitempty"`

	LowPriceThreshold *float64 `json:"low_price_threshold,omitempty" binding:"omitempty,gte=0"`
}

// UpdatePriceRequest represents the request payload for force-setting a price.
type UpdatePriceRequest struct {
	Price float64 `json:"price" binding:"gte=0"`
}

// UpdateQuantityRequest represents the request payload for changing a quantity.
type UpdateQuantityRequest struct {
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
}

// UpdateThresholdRequest represents the request payload for the low-price
// alert threshold. A null threshold clears the alert.
type UpdateThresholdRequest struct {
	Threshold *float64 `json:"threshold" binding:"omitempty,gte=0"`
}

// AddAsset handles adding an asset of any variant to a portfolio.
func (h *AssetHandler) AddAsset(c *gin.Context) {
	var req AddAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.AssetInput{
		Type:              market.AssetType(req.Type),
		Name:              req.Name,
		Symbol:            req.Symbol,
		Quantity:          req.Quantity,
		PurchasePrice:     req.PurchasePrice,
		Rate:              req.Rate,
		Unit:              market.Unit(req.Unit),
		LowPriceThreshold: req.LowPriceThreshold,
	}
	if req.Address != nil {
		input.Address = &market.Address{
			Street:      req.Address.Street,
			HouseNumber: req.Address.HouseNumber,
			FlatNumber:  req.Address.FlatNumber,
			City:        req.Address.City,
			ZipCode:     req.Address.ZipCode,
			Country:     req.Address.Country,
		}
	}

	a, err := h.portfolioService.AddAsset(c.Param("id"), input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"asset": newAssetResponse(a)})
}

// ListAssets handles listing a portfolio's assets with pagination.
func (h *AssetHandler) ListAssets(c *gin.Context) {
	var req pagination.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	req.Defaults()

	p, err := h.portfolioService.GetPortfolio(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	assets := p.Assets()
	responses := make([]AssetResponse, 0, len(assets))
	for _, a := range assets {
		responses = append(responses, newAssetResponse(a))
	}
	c.JSON(http.StatusOK, pagination.Slice(responses, req))
}

// GetAsset handles fetching one asset with its price history.
func (h *AssetHandler) GetAsset(c *gin.Context) {
	a, err := h.portfolioService.GetAsset(c.Param("id"), c.Param("assetId"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": newAssetResponse(a)})
}

// RemoveAsset handles removing an asset from a portfolio.
func (h *AssetHandler) RemoveAsset(c *gin.Context) {
	if err := h.portfolioService.RemoveAsset(c.Param("id"), c.Param("assetId")); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Asset removed"})
}

// UpdatePrice handles force-setting an asset's current price.
func (h *AssetHandler) UpdatePrice(c *gin.Context) {
	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.portfolioService.SetAssetPrice(c.Param("id"), c.Param("assetId"), req.Price); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Price updated"})
}

// UpdateQuantity handles changing an asset's quantity.
func (h *AssetHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.portfolioService.SetAssetQuantity(c.Param("id"), c.Param("assetId"), req.Quantity); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quantity updated"})
}

// UpdateThreshold handles setting or clearing the low-price alert threshold.
func (h *AssetHandler) UpdateThreshold(c *gin.Context) {
	var req UpdateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.portfolioService.SetLowPriceThreshold(c.Param("id"), c.Param("assetId"), req.Threshold); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Threshold updated"})
}
