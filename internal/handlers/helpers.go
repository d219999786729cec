// Package handlers exposes the portfolio engine over HTTP with Gin.
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "folioman/internal/errors"
	"folioman/internal/logger"
	"folioman/internal/market"
)

// ErrorResponse documents the JSON error envelope.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// AssetResponse is the JSON shape of one asset, the persisted fields plus
// derived ones.
type AssetResponse struct {
	market.AssetSnapshot
	Value     float64          `json:"value"`
	RiskLevel market.RiskLevel `json:"risk_level"`
	Mergeable bool             `json:"mergeable"`
}

func newAssetResponse(a market.Asset) AssetResponse {
	return AssetResponse{
		AssetSnapshot: market.SnapshotAsset(a),
		Value:         a.Value(),
		RiskLevel:     a.RiskAssessment(),
		Mergeable:     a.IsMergeable(),
	}
}

// PortfolioResponse is the JSON shape of a portfolio without its assets.
type PortfolioResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Owner       string  `json:"owner"`
	AssetCount  int     `json:"asset_count"`
	TotalValue  float64 `json:"total_value"`
	TotalProfit float64 `json:"total_profit"`
}

func newPortfolioResponse(p *market.Portfolio) PortfolioResponse {
	return PortfolioResponse{
		ID:          p.ID(),
		Name:        p.Name(),
		Owner:       p.Owner(),
		AssetCount:  p.AssetCount(),
		TotalValue:  p.TotalValue(),
		TotalProfit: p.TotalProfit(),
	}
}
