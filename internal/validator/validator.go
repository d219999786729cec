// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"folioman/internal/market"
)

// ownerNameRegex mirrors the engine's owner rule: capitalized first name,
// optional middle name, capitalized last name with an optional hyphen part.
var ownerNameRegex = regexp.MustCompile(`^\p{Lu}\p{Ll}+(?: \p{Lu}\p{Ll}+)? \p{Lu}\p{Ll}+(?:-\p{Lu}\p{Ll}+)?$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("asset_type", validateAssetType)
		_ = v.RegisterValidation("commodity_unit", validateCommodityUnit)
		_ = v.RegisterValidation("owner_name", validateOwnerName)
		_ = v.RegisterValidation("market_event", validateMarketEvent)
	}
}

func validateAssetType(fl validator.FieldLevel) bool {
	switch market.AssetType(fl.Field().String()) {
	case market.TypeStock, market.TypeBond, market.TypeCryptocurrency, market.TypeRealEstate, market.TypeCommodity:
		return true
	}
	return false
}

func validateCommodityUnit(fl validator.FieldLevel) bool {
	_, err := market.ParseUnit(fl.Field().String())
	return err == nil
}

func validateOwnerName(fl validator.FieldLevel) bool {
	return ownerNameRegex.MatchString(fl.Field().String())
}

func validateMarketEvent(fl validator.FieldLevel) bool {
	for _, def := range market.DefaultCatalog() {
		if strings.EqualFold(def.Title, fl.Field().String()) {
			return true
		}
	}
	return false
}
