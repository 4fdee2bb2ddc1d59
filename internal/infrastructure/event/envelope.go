package event

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/erp/carrier-transport/internal/domain/shipping"
	"github.com/go-playground/validator/v10"
)

// ErrMalformedEnvelope is returned for a trigger that is not a label request envelope
var ErrMalformedEnvelope = errors.New("event: malformed label request envelope")

var envelopeValidator = validator.New()

// Envelope is the event-bus wrapper a label request arrives in
type Envelope struct {
	Source     string         `json:"source,omitempty"`
	DetailType string         `json:"detail-type,omitempty"`
	Detail     *RequestDetail `json:"detail" validate:"required"`
}

// RequestDetail is the label request carried in an envelope
type RequestDetail struct {
	ShipmentID int64  `json:"shipmentId" validate:"required,gt=0"`
	EventID    int64  `json:"eventId" validate:"required,gt=0"`
	ContextID  int64  `json:"contextId"`
	DeviceName string `json:"deviceName,omitempty"`
	UserID     string `json:"userId,omitempty"`
}

// LabelRequest converts the detail to the domain request
func (d RequestDetail) LabelRequest() shipping.LabelRequest {
	return shipping.LabelRequest{
		ShipmentID: d.ShipmentID,
		EventID:    d.EventID,
		ContextID:  d.ContextID,
		DeviceName: d.DeviceName,
		UserID:     d.UserID,
	}
}

// Validate checks the envelope carries a usable detail
func (e *Envelope) Validate() error {
	if err := envelopeValidator.Struct(e); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return nil
}

// DecodeEnvelope parses and validates a label request envelope
func DecodeEnvelope(data []byte) (shipping.LabelRequest, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return shipping.LabelRequest{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if err := env.Validate(); err != nil {
		return shipping.LabelRequest{}, err
	}
	return env.Detail.LabelRequest(), nil
}
