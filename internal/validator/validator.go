// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"pennywise/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("expense_category", validateExpenseCategory)
		_ = v.RegisterValidation("income_category", validateIncomeCategory)
		_ = v.RegisterValidation("payment_method", validatePaymentMethod)
		_ = v.RegisterValidation("period_status", validatePeriodStatus)
		_ = v.RegisterValidation("goal_category", validateGoalCategory)
		_ = v.RegisterValidation("goal_priority", validateGoalPriority)
	}
}

func validateExpenseCategory(fl validator.FieldLevel) bool {
	return models.ValidExpenseCategory(fl.Field().String())
}

func validateIncomeCategory(fl validator.FieldLevel) bool {
	return models.ValidIncomeCategory(fl.Field().String())
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return models.ValidPaymentMethod(fl.Field().String())
}

func validatePeriodStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "active", "closed":
		return true
	}
	return false
}

func validateGoalCategory(fl validator.FieldLevel) bool {
	return models.ValidGoalCategory(fl.Field().String())
}

func validateGoalPriority(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Low", "Medium", "High":
		return true
	}
	return false
}
