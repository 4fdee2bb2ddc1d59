package ims

import (
	"github.com/shopspring/decimal"

	"github.com/erp/carrier-transport/internal/domain/shipping"
)

// ---------------------------------------------------------------------------
// Read models
// ---------------------------------------------------------------------------

// IMSCarrier is a carrier record as returned by GET carriers
type IMSCarrier struct {
	ID           int64  `json:"id,omitempty"`
	CarrierName  string `json:"carrierName"`
	DataDocument string `json:"dataDocument,omitempty"`
}

// IMSShipment is a shipment as returned by GET shipments/{id}
type IMSShipment struct {
	ID                   int64                  `json:"id"`
	ShipmentNumber       string                 `json:"shipmentNumber"`
	SellersReference     string                 `json:"sellersReference"`
	CustomersReference   string                 `json:"customersReference"`
	CustomerNumber       string                 `json:"customerNumber"`
	DeliveryDate         string                 `json:"deliveryDate"`
	NotesOnShipping      string                 `json:"notesOnShipping"`
	NotesOnDelivery      string                 `json:"notesOnDelivery"`
	SellerID             *int64                 `json:"sellerId"`
	ContextID            int64                  `json:"contextId"`
	DeliverToPickUpPoint bool                   `json:"deliverToPickUpPoint"`
	PickUpPointID        string                 `json:"pickUpPointId"`
	NotifyByEmail        bool                   `json:"notifyByEmail"`
	NotifyBySms          bool                   `json:"notifyBySms"`
	DeliveryAddress      IMSAddress             `json:"deliveryAddress"`
	ContactPerson        *IMSContactPerson      `json:"contactPerson"`
	ShippingContainers   []IMSShippingContainer `json:"shippingContainers"`
}

// IMSAddress is a postal address
type IMSAddress struct {
	Addressee           string `json:"addressee"`
	StreetNameAndNumber string `json:"streetNameAndNumber"`
	DistrictOrCityArea  string `json:"districtOrCityArea"`
	CityTownOrVillage   string `json:"cityTownOrVillage"`
	StateOrProvince     string `json:"stateOrProvince"`
	CountryCode         string `json:"countryCode"`
	PostalCode          string `json:"postalCode"`
}

// IMSContactPerson is a contact person
type IMSContactPerson struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	PhoneNumber  string `json:"phoneNumber"`
}

// IMSShippingContainer is one parcel of a shipment
type IMSShippingContainer struct {
	ID          int64           `json:"id"`
	GrossWeight decimal.Decimal `json:"grossWeight"`
	Dimensions  *IMSDimensions  `json:"dimensions"`
}

// IMSDimensions are the outer measures of a shipping container
type IMSDimensions struct {
	Height decimal.Decimal `json:"height"`
	Width  decimal.Decimal `json:"width"`
	Length decimal.Decimal `json:"length"`
}

// IMSParty is a seller or context: an id with an address and a contact
type IMSParty struct {
	ID            int64             `json:"id"`
	Address       IMSAddress        `json:"address"`
	ContactPerson *IMSContactPerson `json:"contactPerson"`
}

// ---------------------------------------------------------------------------
// Write models
// ---------------------------------------------------------------------------

type attachmentBody struct {
	FileName             string `json:"fileName"`
	Base64EncodedContent string `json:"base64EncodedContent"`
}

type trackingNumberPatch struct {
	TrackingNumber string `json:"trackingNumber"`
}

type shipmentNumberPatch struct {
	CarriersShipmentNumber string `json:"carriersShipmentNumber"`
}

type messageBody struct {
	// Time is milliseconds since the Unix epoch
	Time        int64  `json:"time"`
	Source      string `json:"source"`
	MessageType string `json:"messageType"`
	MessageText string `json:"messageText"`
	DeviceName  string `json:"deviceName,omitempty"`
	UserID      string `json:"userId,omitempty"`
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

func (c IMSCarrier) toDomain() shipping.Carrier {
	return shipping.Carrier{
		ID:           c.ID,
		CarrierName:  c.CarrierName,
		DataDocument: c.DataDocument,
	}
}

func (s *IMSShipment) toDomain() *shipping.Shipment {
	containers := make([]shipping.ShippingContainer, 0, len(s.ShippingContainers))
	for _, c := range s.ShippingContainers {
		container := shipping.ShippingContainer{
			ID:          c.ID,
			GrossWeight: c.GrossWeight,
		}
		if c.Dimensions != nil {
			container.Dimensions = &shipping.Dimensions{
				Height: c.Dimensions.Height,
				Width:  c.Dimensions.Width,
				Length: c.Dimensions.Length,
			}
		}
		containers = append(containers, container)
	}

	return &shipping.Shipment{
		ID:                   s.ID,
		ShipmentNumber:       s.ShipmentNumber,
		SellersReference:     s.SellersReference,
		CustomersReference:   s.CustomersReference,
		CustomerNumber:       s.CustomerNumber,
		DeliveryDate:         s.DeliveryDate,
		NotesOnShipping:      s.NotesOnShipping,
		NotesOnDelivery:      s.NotesOnDelivery,
		DeliveryAddress:      s.DeliveryAddress.toDomain(),
		ContactPerson:        s.ContactPerson.toDomain(),
		SellerID:             s.SellerID,
		ContextID:            s.ContextID,
		DeliverToPickUpPoint: s.DeliverToPickUpPoint,
		PickUpPointID:        s.PickUpPointID,
		NotifyByEmail:        s.NotifyByEmail,
		NotifyBySms:          s.NotifyBySms,
		ShippingContainers:   containers,
	}
}

func (a IMSAddress) toDomain() shipping.Address {
	return shipping.Address{
		Addressee:           a.Addressee,
		StreetNameAndNumber: a.StreetNameAndNumber,
		DistrictOrCityArea:  a.DistrictOrCityArea,
		CityTownOrVillage:   a.CityTownOrVillage,
		StateOrProvince:     a.StateOrProvince,
		CountryCode:         a.CountryCode,
		PostalCode:          a.PostalCode,
	}
}

func (c *IMSContactPerson) toDomain() *shipping.ContactPerson {
	if c == nil {
		return nil
	}
	return &shipping.ContactPerson{
		Name:         c.Name,
		Email:        c.Email,
		MobileNumber: c.MobileNumber,
		PhoneNumber:  c.PhoneNumber,
	}
}

func newMessageBody(m shipping.Message) messageBody {
	return messageBody{
		Time:        m.Time.UnixMilli(),
		Source:      m.Source,
		MessageType: string(m.MessageType),
		MessageText: m.MessageText,
		DeviceName:  m.DeviceName,
		UserID:      m.UserID,
	}
}
