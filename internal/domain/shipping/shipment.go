package shipping

import (
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Inventory records
// ---------------------------------------------------------------------------

// Shipment is the inventory system's record of goods to ship
type Shipment struct {
	// ID is the inventory system's shipment identifier
	ID int64
	// ShipmentNumber is the human-facing shipment number
	ShipmentNumber string
	// SellersReference is the seller's own reference for the shipment
	SellersReference string
	// CustomersReference is the receiving customer's reference
	CustomersReference string
	// CustomerNumber is the receiver's customer number, if known
	CustomerNumber string
	// DeliveryDate is the requested delivery date as recorded by the inventory system
	DeliveryDate string
	// NotesOnShipping are notes for the carrier
	NotesOnShipping string
	// NotesOnDelivery are delivery instructions
	NotesOnDelivery string
	// DeliveryAddress is where the goods go
	DeliveryAddress Address
	// ContactPerson is the receiver's contact, may be nil
	ContactPerson *ContactPerson
	// SellerID identifies the seller shipping the goods, nil when the context owner ships
	SellerID *int64
	// ContextID identifies the account (warehouse owner) the shipment belongs to
	ContextID int64
	// DeliverToPickUpPoint requests delivery to a pickup point instead of the address
	DeliverToPickUpPoint bool
	// PickUpPointID is the carrier's identifier of the chosen pickup point
	PickUpPointID string
	// NotifyByEmail requests an email notification to the receiver
	NotifyByEmail bool
	// NotifyBySms requests an SMS notification to the receiver
	NotifyBySms bool
	// ShippingContainers are the parcels of the shipment. Their order is significant.
	ShippingContainers []ShippingContainer
}

// HasSeller returns true if the shipment is shipped on behalf of a seller
func (s *Shipment) HasSeller() bool {
	return s.SellerID != nil
}

// Address is a postal address as recorded by the inventory system
type Address struct {
	Addressee           string
	StreetNameAndNumber string
	DistrictOrCityArea  string
	CityTownOrVillage   string
	StateOrProvince     string
	CountryCode         string
	PostalCode          string
}

// ContactPerson is a person to contact about a delivery
type ContactPerson struct {
	Name         string
	Email        string
	MobileNumber string
	PhoneNumber  string
}

// HasEmail returns true if the contact has an email address
func (c *ContactPerson) HasEmail() bool {
	return c != nil && c.Email != ""
}

// HasMobileNumber returns true if the contact has a mobile number
func (c *ContactPerson) HasMobileNumber() bool {
	return c != nil && c.MobileNumber != ""
}

// ShippingContainer is one physical parcel of a shipment
type ShippingContainer struct {
	ID          int64
	GrossWeight decimal.Decimal
	// Dimensions is nil when the container has not been measured
	Dimensions *Dimensions
}

// Dimensions are the outer measures of a shipping container
type Dimensions struct {
	Height decimal.Decimal
	Width  decimal.Decimal
	Length decimal.Decimal
}

// Seller is a party selling goods out of the inventory
type Seller struct {
	ID            int64
	Address       Address
	ContactPerson *ContactPerson
}

// ShippingContext is the account owning the inventory, used as sender when no seller is set
type ShippingContext struct {
	ID            int64
	Address       Address
	ContactPerson *ContactPerson
}

// SenderSource is the address and contact the sender party is built from
type SenderSource struct {
	Address       Address
	ContactPerson *ContactPerson
}

// SenderFromSeller builds the sender source from a seller
func SenderFromSeller(seller *Seller) SenderSource {
	return SenderSource{Address: seller.Address, ContactPerson: seller.ContactPerson}
}

// SenderFromContext builds the sender source from the shipment's context
func SenderFromContext(c *ShippingContext) SenderSource {
	return SenderSource{Address: c.Address, ContactPerson: c.ContactPerson}
}

// ---------------------------------------------------------------------------
// Trigger
// ---------------------------------------------------------------------------

// LabelRequest is the detail of an event asking for shipping labels
type LabelRequest struct {
	// ShipmentID names the shipment to label
	ShipmentID int64
	// EventID is the originating event; status messages are posted to its message log
	EventID int64
	// ContextID is the account the event was raised in
	ContextID int64
	// DeviceName attributes posted messages to a device, optional
	DeviceName string
	// UserID attributes posted messages to a user, optional
	UserID string
}

// Validate checks the request carries the identifiers needed to process it
func (r LabelRequest) Validate() error {
	if r.ShipmentID <= 0 {
		return ErrInvalidLabelRequest
	}
	if r.EventID <= 0 {
		return ErrInvalidLabelRequest
	}
	return nil
}
