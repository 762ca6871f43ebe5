// Package errors provides custom error types for the finagent API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
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

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Ledger errors.
var (
	ErrValidation            = &AppError{Code: "VALIDATION_FAILED", Message: "Transaction failed validation", StatusCode: http.StatusBadRequest}
	ErrNegativeAmount        = &AppError{Code: "VALIDATION_FAILED", Message: "Transaction amount cannot be negative", StatusCode: http.StatusBadRequest}
	ErrUnknownCategory       = &AppError{Code: "UNKNOWN_CATEGORY", Message: "Category is not part of the configured set", StatusCode: http.StatusBadRequest}
	ErrMissingObligation     = &AppError{Code: "VALIDATION_FAILED", Message: "Expense requires an obligation tag", StatusCode: http.StatusBadRequest}
	ErrUnexpectedObligation  = &AppError{Code: "VALIDATION_FAILED", Message: "Income cannot carry an obligation tag", StatusCode: http.StatusBadRequest}
	ErrTransactionNotFound   = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionDay = &AppError{Code: "VALIDATION_FAILED", Message: "Transaction date must be a calendar day in YYYY-MM-DD form", StatusCode: http.StatusBadRequest}
)

// Settings errors.
var (
	ErrSettingsNotFound = &AppError{Code: "SETTINGS_NOT_FOUND", Message: "Onboarding has not been completed", StatusCode: http.StatusNotFound}
)

// Obligation resolution errors.
var (
	ErrUnknownPending = &AppError{Code: "UNKNOWN_PENDING", Message: "Pending candidate was already resolved or never existed", StatusCode: http.StatusNotFound}
)

// Conversation errors.
var (
	ErrEntryNotFound = &AppError{Code: "ENTRY_NOT_FOUND", Message: "Conversation entry not found", StatusCode: http.StatusNotFound}
)

// External collaborator errors. Never shown to the user as-is; the intake
// flow converts them into fixed fallback messages.
var (
	ErrExternalService = &AppError{Code: "EXTERNAL_SERVICE", Message: "External language service failed", StatusCode: http.StatusBadGateway}
)
