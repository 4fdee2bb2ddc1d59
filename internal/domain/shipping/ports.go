package shipping

import "context"

// InventoryClient is the port to the inventory system.
// Implementations are already authenticated.
type InventoryClient interface {
	// ListCarriers returns the configured carriers
	ListCarriers(ctx context.Context) ([]Carrier, error)
	// CreateCarrier creates a carrier record
	CreateCarrier(ctx context.Context, carrier *Carrier) error
	// GetShipment returns a shipment with its shipping containers
	GetShipment(ctx context.Context, shipmentID int64) (*Shipment, error)
	// GetSeller returns a seller
	GetSeller(ctx context.Context, sellerID int64) (*Seller, error)
	// GetContext returns a context
	GetContext(ctx context.Context, contextID int64) (*ShippingContext, error)
	// AddAttachment attaches a document to a shipment
	AddAttachment(ctx context.Context, attachment LabelAttachment) error
	// SetTrackingNumber writes the tracking number of a shipping container
	SetTrackingNumber(ctx context.Context, update TrackingUpdate) error
	// SetCarriersShipmentNumber writes the carrier's shipment number on a shipment
	SetCarriersShipmentNumber(ctx context.Context, update ShipmentUpdate) error
	// PostEventMessage appends a message to an event's message log
	PostEventMessage(ctx context.Context, eventID int64, message Message) error
}

// CarrierGateway is the port to the carrier's shipment API
type CarrierGateway interface {
	// CreateShipment submits a shipment-creation request with the setup's credentials.
	// A validation refusal is a CarrierResponse with Rejected set, not an error.
	CreateShipment(ctx context.Context, setup *CarrierSetup, req *CarrierShipmentRequest) (*CarrierResponse, error)
}

// LabelArchive keeps a copy of rendered labels outside the inventory system
type LabelArchive interface {
	// Archive stores the decoded label and returns its location
	Archive(ctx context.Context, attachment LabelAttachment) (string, error)
}
