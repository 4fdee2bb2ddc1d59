package shipping

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// labelRenderMode is the thermal rendering mode passed to the first print target
const labelRenderMode = "DT"

// ServiceSelection is the outcome of base service selection
type ServiceSelection struct {
	Code string
	// International is true for cross-border shipments, which carry the bulk id
	International bool
}

// Translator maps inventory shipments to carrier shipment-creation requests.
// It performs no I/O and is safe for concurrent use.
type Translator struct {
	profile  CarrierProfile
	validate *validator.Validate
}

// NewTranslator creates a translator for the given carrier profile
func NewTranslator(profile CarrierProfile) (*Translator, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &Translator{
		profile:  profile,
		validate: validator.New(),
	}, nil
}

// Profile returns the carrier profile the translator was built with
func (t *Translator) Profile() CarrierProfile {
	return t.profile
}

// Translate builds the carrier request for shipment. sender is the seller's or, when the
// shipment has no seller, the context's address and contact.
// Missing required data is reported as a *ValidationRejectedError.
func (t *Translator) Translate(shipment *Shipment, setup *CarrierSetup, sender SenderSource) (*CarrierShipmentRequest, error) {
	if shipment == nil || setup == nil {
		return nil, errors.New("shipping: translate requires a shipment and a carrier setup")
	}

	selection := t.SelectService(shipment.DeliverToPickUpPoint, shipment.DeliveryAddress.CountryCode)

	cs := CarrierShipment{
		OrderNo:             shipment.ShipmentNumber,
		SenderReference:     shipment.SellersReference,
		ReceiverReference:   shipment.CustomersReference,
		DeliveryDate:        shipment.DeliveryDate,
		Note:                shipment.NotesOnShipping,
		DeliveryInstruction: shipment.NotesOnDelivery,
		Test:                setup.Test,
		Service:             Service{ID: selection.Code},
	}
	if selection.International {
		cs.BulkID = setup.BulkID
	}

	cs.Receiver = NewParty(shipment.DeliveryAddress, shipment.ContactPerson)
	if t.profile.CustomerNumber {
		cs.Receiver.CustNo = shipment.CustomerNumber
	}

	cs.Sender = NewParty(sender.Address, sender.ContactPerson)
	cs.Sender.QuickID = setup.SenderQuickID

	cs.Service.Addons = t.addons(shipment)
	if shipment.DeliverToPickUpPoint {
		cs.Agent = &Agent{QuickID: shipment.PickUpPointID}
	}

	cs.Parcels = NewParcels(shipment.ShippingContainers)

	if fieldErrs := t.check(&cs); len(fieldErrs) > 0 {
		return nil, &ValidationRejectedError{Errors: fieldErrs}
	}

	return &CarrierShipmentRequest{
		PrintConfig: t.printConfig(setup),
		Shipment:    cs,
	}, nil
}

// SelectService picks the base service. Pickup-point delivery wins over the country
// check; any country other than the home country is international.
func (t *Translator) SelectService(deliverToPickUpPoint bool, countryCode string) ServiceSelection {
	switch {
	case deliverToPickUpPoint:
		return ServiceSelection{Code: t.profile.Services.PickupPoint}
	case countryCode == t.profile.HomeCountry:
		return ServiceSelection{Code: t.profile.Services.Domestic}
	default:
		return ServiceSelection{Code: t.profile.Services.International, International: true}
	}
}

// addons returns the add-on services in a fixed order: pickup point, email, SMS
func (t *Translator) addons(shipment *Shipment) []Addon {
	addons := make([]Addon, 0, 3)
	add := func(code string) {
		if code != "" {
			addons = append(addons, Addon{ID: code})
		}
	}

	if shipment.DeliverToPickUpPoint {
		add(t.profile.Addons.PickupPoint)
	}

	var wantEmail, wantSms bool
	switch t.profile.Notifications {
	case NotificationPolicyFlag:
		wantEmail = shipment.NotifyByEmail
		wantSms = shipment.NotifyBySms
	default:
		wantEmail = shipment.ContactPerson.HasEmail()
		wantSms = shipment.ContactPerson.HasMobileNumber()
	}
	if wantEmail {
		add(t.profile.Addons.EmailNotification)
	}
	if wantSms {
		add(t.profile.Addons.SmsNotification)
	}
	return addons
}

func (t *Translator) printConfig(setup *CarrierSetup) PrintConfig {
	printType := t.profile.PrintType(setup)

	var pc PrintConfig
	for i := range pc.Targets {
		pc.Targets[i].Type = printType
	}
	pc.Targets[0].Media = t.profile.Media(setup)
	pc.Targets[0].Options = []PrintOption{{Key: "mode", Value: labelRenderMode}}
	return pc
}

// check collects every missing or malformed field of the carrier shipment
func (t *Translator) check(cs *CarrierShipment) []FieldError {
	var fieldErrs []FieldError
	fieldErrs = append(fieldErrs, t.checkParty("receiver", cs.Receiver)...)
	fieldErrs = append(fieldErrs, t.checkParty("sender", cs.Sender)...)

	if cs.Agent != nil && cs.Agent.QuickID == "" {
		fieldErrs = append(fieldErrs, FieldError{Field: "agent.quickId", Message: "is required for pickup point delivery"})
	}

	if len(cs.Parcels) == 0 {
		fieldErrs = append(fieldErrs, FieldError{Field: "parcels", Message: "at least one shipping container is required"})
	}
	for i, p := range cs.Parcels {
		if p.Reference == "" {
			fieldErrs = append(fieldErrs, FieldError{
				Field:   fmt.Sprintf("parcels[%d].reference", i),
				Message: "shipping container has no identifier",
			})
		}
	}
	return fieldErrs
}

func (t *Translator) checkParty(prefix string, p Party) []FieldError {
	err := t.validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: prefix, Message: err.Error()}}
	}

	fieldErrs := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrs = append(fieldErrs, FieldError{
			Field:   prefix + "." + strings.ToLower(fe.Field()),
			Message: validationMessage(fe),
		})
	}
	return fieldErrs
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("must be %s characters long", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// NewParty maps an inventory address and contact to a carrier party.
// Sender and receiver use the same mapping.
func NewParty(addr Address, contact *ContactPerson) Party {
	p := Party{
		Name:     addr.Addressee,
		Address1: addr.StreetNameAndNumber,
		Address2: addr.DistrictOrCityArea,
		City:     addr.CityTownOrVillage,
		State:    addr.StateOrProvince,
		Country:  addr.CountryCode,
		ZipCode:  addr.PostalCode,
	}
	if contact != nil {
		p.Contact = contact.Name
		p.Email = contact.Email
		p.Mobile = contact.MobileNumber
		p.Phone = contact.PhoneNumber
	}
	return p
}

// NewParcels creates one parcel per shipping container, in container order
func NewParcels(containers []ShippingContainer) []Parcel {
	parcels := make([]Parcel, 0, len(containers))
	for _, c := range containers {
		p := Parcel{
			Copies: 1,
			Weight: c.GrossWeight,
		}
		if c.Dimensions != nil {
			height, width, length := c.Dimensions.Height, c.Dimensions.Width, c.Dimensions.Length
			p.Height = &height
			p.Width = &width
			p.Length = &length
		}
		if c.ID > 0 {
			p.Reference = strconv.FormatInt(c.ID, 10)
		}
		parcels = append(parcels, p)
	}
	return parcels
}
