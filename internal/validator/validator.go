// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"time"

	"fintrack/internal/engine"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the custom tags to v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("asset_type", validateAssetType)
	_ = v.RegisterValidation("currency", validateCurrency)
	_ = v.RegisterValidation("cashflow_type", validateCashflowType)
	_ = v.RegisterValidation("month_key", validateMonthKey)
	_ = v.RegisterValidation("date_key", validateDateKey)
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateAssetType(fl validator.FieldLevel) bool {
	return engine.AssetType(fl.Field().String()).Valid()
}

func validateCurrency(fl validator.FieldLevel) bool {
	switch engine.Currency(fl.Field().String()) {
	case engine.CurrencyTWD, engine.CurrencyUSD:
		return true
	}
	return false
}

func validateCashflowType(fl validator.FieldLevel) bool {
	return engine.CashflowType(fl.Field().String()).Valid()
}

func validateMonthKey(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01", fl.Field().String())
	return err == nil
}

func validateDateKey(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}
