package shipping

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Configuration errors
	ErrCarrierNotFound     = errors.New("shipping: carrier not found")
	ErrCarrierSetupMissing = errors.New("shipping: carrier setup missing from data document")
	ErrCarrierSetupInvalid = errors.New("shipping: carrier data document is malformed")
	ErrProfileInvalid      = errors.New("shipping: invalid carrier profile")

	// Input errors
	ErrValidationRejected  = errors.New("shipping: shipment rejected by validation")
	ErrInvalidLabelRequest = errors.New("shipping: invalid label request")

	// Transport errors
	ErrInventoryUnavailable   = errors.New("shipping: inventory system unavailable")
	ErrInventoryRequestFailed = errors.New("shipping: inventory system request failed")
	ErrCarrierUnavailable     = errors.New("shipping: carrier temporarily unavailable")
	ErrCarrierRequestFailed   = errors.New("shipping: carrier request failed")
	ErrCarrierInvalidResponse = errors.New("shipping: invalid carrier response")
	ErrParcelCountMismatch    = fmt.Errorf("%w: parcel count does not match shipping containers", ErrCarrierInvalidResponse)
)

// CarrierNotFoundError reports that no configured carrier carries the requested name.
type CarrierNotFoundError struct {
	CarrierName string
}

func (e *CarrierNotFoundError) Error() string {
	return fmt.Sprintf("shipping: no carrier by the name %q", e.CarrierName)
}

// Unwrap lets errors.Is match ErrCarrierNotFound.
func (e *CarrierNotFoundError) Unwrap() error {
	return ErrCarrierNotFound
}

// FieldError is a single field-level validation failure, either reported by the
// carrier or detected before submission.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// ValidationRejectedError carries the field errors that caused a shipment to be rejected.
type ValidationRejectedError struct {
	Errors []FieldError
}

func (e *ValidationRejectedError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.String())
	}
	return fmt.Sprintf("%s: %s", ErrValidationRejected.Error(), strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrValidationRejected.
func (e *ValidationRejectedError) Unwrap() error {
	return ErrValidationRejected
}

// IsTransportError reports whether err came from talking to the inventory system or the carrier.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrInventoryUnavailable) ||
		errors.Is(err, ErrInventoryRequestFailed) ||
		errors.Is(err, ErrCarrierUnavailable) ||
		errors.Is(err, ErrCarrierRequestFailed) ||
		errors.Is(err, ErrCarrierInvalidResponse)
}
