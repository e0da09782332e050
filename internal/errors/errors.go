// Package errors provides the structured error types used across the
// Pennywise API. Service-layer code returns AppError values so handlers can
// render consistent responses without leaking storage internals to clients.
package errors

import "net/http"

// AppError is an application error carrying a stable error code, a
// human-readable message, the HTTP status to respond with, and an optional
// wrapped internal error that is logged but never sent to the client.
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

// Wrap returns a copy of sentinel carrying internal as the wrapped error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage returns a copy of sentinel with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput       = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound           = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer     = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrStorageUnavailable = &AppError{Code: "STORAGE_UNAVAILABLE", Message: "Storage is temporarily unavailable, please retry", StatusCode: http.StatusServiceUnavailable}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Budget ledger errors. BUDGET_EXCEEDED messages include the remaining
// headroom for the category so clients can render it directly.
var (
	ErrNoBudgetForPeriod     = &AppError{Code: "NO_BUDGET_FOR_PERIOD", Message: "No budget found for this period. Please set up a budget first.", StatusCode: http.StatusBadRequest}
	ErrInvalidBudgetCategory = &AppError{Code: "INVALID_BUDGET_CATEGORY", Message: "Invalid budget category", StatusCode: http.StatusBadRequest}
	ErrBudgetExceeded        = &AppError{Code: "BUDGET_EXCEEDED", Message: "This expense would exceed the budget for the category", StatusCode: http.StatusBadRequest}
	ErrDuplicateCategoryName = &AppError{Code: "DUPLICATE_CATEGORY_NAME", Message: "Category names must be unique within a budget", StatusCode: http.StatusBadRequest}
	ErrPeriodClosed          = &AppError{Code: "PERIOD_CLOSED", Message: "This budget period is closed", StatusCode: http.StatusConflict}
	ErrBudgetNotFound        = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
)

// Savings goal errors.
var (
	ErrSavingsGoalNotFound = &AppError{Code: "SAVINGS_GOAL_NOT_FOUND", Message: "Savings goal not found", StatusCode: http.StatusNotFound}
)
