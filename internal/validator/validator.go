// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currency_unit", validateCurrencyUnit)
		_ = v.RegisterValidation("tone", validateTone)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("obligation_type", validateObligationType)
	}
}

func validateCurrencyUnit(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "₸", "₽", "BYN":
		return true
	}
	return false
}

func validateTone(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "soft", "strict", "hard":
		return true
	}
	return false
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

func validateObligationType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Essential", "Optional", "Impulse":
		return true
	}
	return false
}
