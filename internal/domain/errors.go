package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so that sentinels survive WithError copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "internal_error",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "bad_request",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "not_found",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrValidationFailed = &AppError{
		Code:       "validation_error",
		Message:    "Request validation failed",
		StatusCode: 400,
	}

	ErrInvalidAmount = &AppError{
		Code:       "invalid_amount",
		Message:    "Amount must be greater than zero",
		StatusCode: 400,
	}

	ErrOrderNotFound = &AppError{
		Code:       "order_not_found",
		Message:    "Order not found",
		StatusCode: 404,
	}

	ErrPayoutNotFound = &AppError{
		Code:       "payout_not_found",
		Message:    "Payout not found",
		StatusCode: 404,
	}

	ErrEndpointNotFound = &AppError{
		Code:       "endpoint_not_found",
		Message:    "Webhook endpoint not found",
		StatusCode: 404,
	}

	ErrNoEndpoints = &AppError{
		Code:       "no_endpoints",
		Message:    "No webhook endpoint. POST /webhooks/seed first.",
		StatusCode: 400,
	}

	ErrInvalidEventType = &AppError{
		Code:       "invalid_event_type",
		Message:    "Event type cannot be empty",
		StatusCode: 400,
	}

	ErrAPIKeyNotFound = &AppError{
		Code:       "api_key_not_found",
		Message:    "API key not found",
		StatusCode: 404,
	}

	ErrInvalidSignature = &AppError{
		Code:       "invalid_signature",
		Message:    "Webhook signature verification failed",
		StatusCode: 401,
	}

	ErrEventExists = &AppError{
		Code:       "event_already_exists",
		Message:    "Event with this id already exists",
		StatusCode: 409,
	}

	ErrAPIKeyExists = &AppError{
		Code:       "api_key_already_exists",
		Message:    "API key with this hash already exists",
		StatusCode: 409,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "rate_limit_exceeded",
		Message:    "Too many requests",
		StatusCode: 429,
	}
)

// ValidationError carries per-field details for a rejected request.
type ValidationError struct {
	Details []FieldError
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return ErrValidationFailed.Message
	}
	return fmt.Sprintf("%s: %s %s", ErrValidationFailed.Message, e.Details[0].Field, e.Details[0].Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Add appends a field error and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Details = append(e.Details, FieldError{Field: field, Message: message})
	return e
}

// OrNil returns nil when no field errors were collected.
func (e *ValidationError) OrNil() error {
	if len(e.Details) == 0 {
		return nil
	}
	return e
}
