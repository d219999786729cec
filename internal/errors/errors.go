// Package errors provides custom error types for the Folioman engine and API.
// All validation and lookup failures use AppError so every layer reports the
// same code/message shape and mutations can be rejected without losing state.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message. The sentinel is
// kept as the internal error so errors.Is still matches it.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Asset validation errors. Each one rejects a mutation synchronously and
// leaves the asset's prior state untouched.
var (
	ErrInvalidQuantity = &AppError{Code: "INVALID_QUANTITY", Message: "Quantity must be greater than 0", StatusCode: http.StatusBadRequest}
	ErrInvalidPrice    = &AppError{Code: "INVALID_PRICE", Message: "Price can't be lower than 0", StatusCode: http.StatusBadRequest}
	ErrInvalidName     = &AppError{Code: "INVALID_NAME", Message: "Asset name can't be empty", StatusCode: http.StatusBadRequest}
	ErrInvalidSymbol   = &AppError{Code: "INVALID_SYMBOL", Message: "Asset symbol can't be empty", StatusCode: http.StatusBadRequest}
	ErrInvalidAddress  = &AppError{Code: "INVALID_ADDRESS", Message: "Address field can't be empty", StatusCode: http.StatusBadRequest}
	ErrInvalidZipCode  = &AppError{Code: "INVALID_ZIP_CODE", Message: "Invalid zip code format", StatusCode: http.StatusBadRequest}
	ErrInvalidUnit     = &AppError{Code: "INVALID_UNIT", Message: "Undefined commodity unit", StatusCode: http.StatusBadRequest}
	ErrInvalidBondRate = &AppError{Code: "INVALID_BOND_RATE", Message: "Bond rate can't be lower than 0", StatusCode: http.StatusBadRequest}
)

// Portfolio errors.
var (
	ErrInvalidOwner      = &AppError{Code: "INVALID_OWNER", Message: "Please enter a valid owner name", StatusCode: http.StatusBadRequest}
	ErrPortfolioNotFound = &AppError{Code: "PORTFOLIO_NOT_FOUND", Message: "Portfolio not found", StatusCode: http.StatusNotFound}
	ErrAssetNotFound     = &AppError{Code: "ASSET_NOT_FOUND", Message: "Asset not found", StatusCode: http.StatusNotFound}
)
