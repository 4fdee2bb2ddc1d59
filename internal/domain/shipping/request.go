package shipping

import (
	"github.com/shopspring/decimal"
)

// PrintTargetCount is the number of print targets a carrier request carries
const PrintTargetCount = 4

// CarrierShipmentRequest is the outbound shipment-creation request
type CarrierShipmentRequest struct {
	PrintConfig PrintConfig
	Shipment    CarrierShipment
}

// PrintConfig describes how the carrier should render labels.
// Only the first target is populated.
type PrintConfig struct {
	Targets [PrintTargetCount]PrintTarget
}

// PrintTarget is one label output target. An empty Media means "no output".
type PrintTarget struct {
	Media   string
	Type    string
	XOffset int
	YOffset int
	Options []PrintOption
}

// PrintOption is a carrier-specific rendering option
type PrintOption struct {
	Key   string
	Value string
}

// CarrierShipment is the shipment part of a carrier request
type CarrierShipment struct {
	OrderNo             string
	SenderReference     string
	ReceiverReference   string
	DeliveryDate        string
	Note                string
	DeliveryInstruction string
	Test                bool
	// BulkID is only set for international shipments
	BulkID   string
	Service  Service
	Receiver Party
	Sender   Party
	// Agent is the pickup point, nil for home delivery
	Agent   *Agent
	Parcels []Parcel
}

// Service is a base service code with its add-ons
type Service struct {
	ID     string
	Addons []Addon
}

// Addon is an add-on service code
type Addon struct {
	ID string
}

// Agent is a pickup agent identified by the carrier's quick id
type Agent struct {
	QuickID string
}

// Party is a sender or receiver in the carrier's terms
type Party struct {
	Name     string `validate:"required"`
	Address1 string `validate:"required"`
	Address2 string
	City     string `validate:"required"`
	State    string
	Country  string `validate:"required,len=2"`
	ZipCode  string `validate:"required"`
	Contact  string
	Email    string
	Mobile   string
	Phone    string
	// QuickID references a party pre-registered with the carrier
	QuickID string
	// CustNo is the receiver's customer number
	CustNo string
}

// Parcel is one parcel of the carrier shipment, positionally matching a shipping container
type Parcel struct {
	Copies int
	Weight decimal.Decimal
	// Height, Width and Length are nil when the container has no dimensions
	Height *decimal.Decimal
	Width  *decimal.Decimal
	Length *decimal.Decimal
	// Reference is the source shipping container's identifier
	Reference string
}
