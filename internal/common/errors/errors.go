// Package errors provides standardized error handling for the API surface.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeCredentialMissing ErrorCode = "CREDENTIAL_MISSING"

	ErrCodePlacesRequestFailed ErrorCode = "PLACES_REQUEST_FAILED"
	ErrCodePlacesStatusError   ErrorCode = "PLACES_STATUS_ERROR"

	ErrCodePaymentCreateFailed ErrorCode = "PAYMENT_CREATE_FAILED"
	ErrCodePaymentVerifyFailed ErrorCode = "PAYMENT_VERIFY_FAILED"

	ErrCodeStoreReadFailed  ErrorCode = "STORE_READ_FAILED"
	ErrCodeStoreWriteFailed ErrorCode = "STORE_WRITE_FAILED"

	ErrCodeModelRequestFailed ErrorCode = "MODEL_REQUEST_FAILED"
	ErrCodeModelErrorPayload  ErrorCode = "MODEL_ERROR_PAYLOAD"
	ErrCodeModelEmptyResponse ErrorCode = "MODEL_EMPTY_RESPONSE"
	ErrCodeModelInvalidJSON   ErrorCode = "MODEL_INVALID_JSON"

	ErrCodeRouteNotFound ErrorCode = "ROUTE_NOT_FOUND"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error. Details carries the
// operator-facing diagnostic; Payload, when set, is attached verbatim to the
// response envelope (provider error bodies, truncated raw model text).
type StandardError struct {
	Code      ErrorCode   `json:"code"`
	Message   string      `json:"message"`
	Details   string      `json:"details,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Retryable bool        `json:"retryable"`
	Timestamp time.Time   `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable caller-mistake error.
func NewValidationError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCredentialMissingError creates a deployment-time configuration error.
func NewCredentialMissingError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCredentialMissing,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamError creates a provider-failure error with the provider's
// diagnostic payload attached.
func NewUpstreamError(code ErrorCode, message string, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreError creates a key-value store failure error.
func NewStoreError(code ErrorCode, err error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   "Key-value store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// WithPayload attaches a structured diagnostic payload for the response body.
func (e *StandardError) WithPayload(payload interface{}) *StandardError {
	e.Payload = payload
	return e
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatus maps an error code to the response status. Caller mistakes are
// 400, unmatched routes 404, everything else 500.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeRouteNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AsStandardError unwraps err into a *StandardError, wrapping unknown errors
// as ErrCodeInternal so the dispatcher never leaks a bare error.
func AsStandardError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
