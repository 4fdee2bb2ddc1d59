package dto

import (
	"errors"
	"net/http"

	"github.com/erp/carrier-transport/internal/domain/shipping"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeNotFound is used for unknown routes
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeValidation is used when a request is well-formed but incomplete
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Carrier configuration error codes
const (
	// ErrCodeCarrierNotFound is used when no carrier record carries the profile's name
	ErrCodeCarrierNotFound = "ERR_CARRIER_NOT_FOUND"
	// ErrCodeCarrierSetup is used when the carrier record's setup is missing or malformed
	ErrCodeCarrierSetup = "ERR_CARRIER_SETUP"
)

// Upstream error codes
const (
	// ErrCodeUpstreamUnavailable is used when the inventory system or the carrier cannot be reached
	ErrCodeUpstreamUnavailable = "ERR_UPSTREAM_UNAVAILABLE"
	// ErrCodeUpstreamFailed is used when the inventory system or the carrier refused or garbled a call
	ErrCodeUpstreamFailed = "ERR_UPSTREAM_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Configuration faults are ours, not the caller's
	ErrCodeCarrierNotFound: http.StatusInternalServerError,
	ErrCodeCarrierSetup:    http.StatusInternalServerError,

	ErrCodeUpstreamUnavailable: http.StatusBadGateway,
	ErrCodeUpstreamFailed:      http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorCode classifies an error returned by the shipping services
func ErrorCode(err error) string {
	var notFound *shipping.CarrierNotFoundError
	switch {
	case errors.As(err, &notFound), errors.Is(err, shipping.ErrCarrierNotFound):
		return ErrCodeCarrierNotFound
	case errors.Is(err, shipping.ErrCarrierSetupMissing),
		errors.Is(err, shipping.ErrCarrierSetupInvalid),
		errors.Is(err, shipping.ErrProfileInvalid):
		return ErrCodeCarrierSetup
	case errors.Is(err, shipping.ErrInvalidLabelRequest):
		return ErrCodeValidation
	case errors.Is(err, shipping.ErrInventoryUnavailable),
		errors.Is(err, shipping.ErrCarrierUnavailable):
		return ErrCodeUpstreamUnavailable
	case shipping.IsTransportError(err):
		return ErrCodeUpstreamFailed
	default:
		return ErrCodeInternal
	}
}
