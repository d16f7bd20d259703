// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation error", Fields: fields}
}

// Warning is the envelope for no-op outcomes the actor should know about
// (nothing eligible to consolidate, no unpaid expenses selected, etc.).
// These ship with a 200 status: the request was valid but changed nothing.
type Warning struct {
	Warning string `json:"warning"`
}

func NewWarning(msg string) *Warning {
	return &Warning{Warning: msg}
}
