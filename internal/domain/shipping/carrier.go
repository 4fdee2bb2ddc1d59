package shipping

import (
	"encoding/json"
	"fmt"
)

// Carrier is a carrier record as configured in the inventory system
type Carrier struct {
	ID          int64
	CarrierName string
	// DataDocument is an opaque JSON document; each integration stores its setup
	// under its own namespace key
	DataDocument string
}

// CarrierSetup holds the credentials and defaults of one carrier integration
type CarrierSetup struct {
	// User and Pin form the carrier API credentials
	User string `json:"user"`
	Pin  string `json:"pin"`
	// Test submits shipments in the carrier's test mode
	Test bool `json:"test"`
	// BulkID is the carrier-assigned bulk identifier used for international shipments
	BulkID string `json:"bulkId,omitempty"`
	// SenderQuickID is the carrier's identifier of the pre-registered sender
	SenderQuickID string `json:"senderQuickId,omitempty"`
	// Media is the label media of the first print target, e.g. thermo-190
	Media string `json:"media,omitempty"`
	// PrintType is the rendering format of the first print target, e.g. pdf or zpl
	PrintType string `json:"printType,omitempty"`
}

// Validate checks the setup carries credentials
func (s *CarrierSetup) Validate() error {
	if s.User == "" || s.Pin == "" {
		return fmt.Errorf("%w: user and pin are required", ErrCarrierSetupInvalid)
	}
	return nil
}

// NewCarrier creates a carrier record whose data document holds setup under namespace
func NewCarrier(carrierName, namespace string, setup CarrierSetup) (*Carrier, error) {
	doc := map[string]CarrierSetup{namespace: setup}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCarrierSetupInvalid, err)
	}
	return &Carrier{
		CarrierName:  carrierName,
		DataDocument: string(raw),
	}, nil
}

// Setup decodes the setup stored under namespace in the carrier's data document
func (c *Carrier) Setup(namespace string) (*CarrierSetup, error) {
	if c.DataDocument == "" {
		return nil, fmt.Errorf("%w: carrier %q has no data document", ErrCarrierSetupMissing, c.CarrierName)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(c.DataDocument), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCarrierSetupInvalid, err)
	}

	raw, ok := doc[namespace]
	if !ok || string(raw) == "null" {
		return nil, fmt.Errorf("%w: %s", ErrCarrierSetupMissing, namespace)
	}

	var setup CarrierSetup
	if err := json.Unmarshal(raw, &setup); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCarrierSetupInvalid, namespace, err)
	}
	return &setup, nil
}

// LookupCarrier returns the first carrier whose name equals carrierName exactly
func LookupCarrier(carriers []Carrier, carrierName string) (*Carrier, error) {
	for i := range carriers {
		if carriers[i].CarrierName == carrierName {
			return &carriers[i], nil
		}
	}
	return nil, &CarrierNotFoundError{CarrierName: carrierName}
}
