package unifaun

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/erp/carrier-transport/internal/domain/shipping"
)

// ---------------------------------------------------------------------------
// Request
// ---------------------------------------------------------------------------

// ShipmentRequest is the body of POST shipments
type ShipmentRequest struct {
	PrintConfig PrintConfig  `json:"printConfig"`
	Shipment    ShipmentBody `json:"shipment"`
}

// PrintConfig is the flat target1..target4 print configuration
type PrintConfig map[string]any

// ShipmentBody is the shipment part of the request
type ShipmentBody struct {
	OrderNo             string       `json:"orderNo,omitempty"`
	SenderReference     string       `json:"senderReference,omitempty"`
	ReceiverReference   string       `json:"receiverReference,omitempty"`
	DeliveryDate        string       `json:"deliveryDate,omitempty"`
	Note                string       `json:"note,omitempty"`
	DeliveryInstruction string       `json:"deliveryInstruction,omitempty"`
	Test                bool         `json:"test"`
	BulkID              string       `json:"bulkId,omitempty"`
	Service             ServiceBody  `json:"service"`
	Receiver            PartyBody    `json:"receiver"`
	Sender              PartyBody    `json:"sender"`
	Agent               *AgentBody   `json:"agent,omitempty"`
	Parcels             []ParcelBody `json:"parcels"`
}

// ServiceBody is a service code with add-ons
type ServiceBody struct {
	ID     string      `json:"id"`
	Addons []AddonBody `json:"addons"`
}

// AddonBody is an add-on code
type AddonBody struct {
	ID string `json:"id"`
}

// AgentBody is a pickup agent
type AgentBody struct {
	QuickID string `json:"quickId"`
}

// PartyBody is a sender or receiver
type PartyBody struct {
	Name     string `json:"name,omitempty"`
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country,omitempty"`
	ZipCode  string `json:"zipcode,omitempty"`
	Contact  string `json:"contact,omitempty"`
	Email    string `json:"email,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Phone    string `json:"phone,omitempty"`
	QuickID  string `json:"quickId,omitempty"`
	CustNo   string `json:"custNo,omitempty"`
}

// ParcelBody is one parcel. Measures are plain JSON numbers.
type ParcelBody struct {
	Copies    int         `json:"copies"`
	Weight    json.Number `json:"weight"`
	Height    json.Number `json:"height,omitempty"`
	Width     json.Number `json:"width,omitempty"`
	Length    json.Number `json:"length,omitempty"`
	Reference string      `json:"reference"`
}

// ---------------------------------------------------------------------------
// Response
// ---------------------------------------------------------------------------

// ShipmentResponse is one element of a successful response array
type ShipmentResponse struct {
	ID      string           `json:"id"`
	Prints  []PrintResponse  `json:"prints"`
	Parcels []ParcelResponse `json:"parcels"`
}

// PrintResponse is one rendered document
type PrintResponse struct {
	Data string `json:"data"`
}

// ParcelResponse is the result for one parcel
type ParcelResponse struct {
	ParcelNo  string `json:"parcelNo"`
	Reference string `json:"reference"`
}

// FieldErrorResponse is one element of a 422 response array
type FieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

// NewShipmentRequest converts a carrier shipment request into its wire form
func NewShipmentRequest(req *shipping.CarrierShipmentRequest) ShipmentRequest {
	s := req.Shipment
	body := ShipmentBody{
		OrderNo:             s.OrderNo,
		SenderReference:     s.SenderReference,
		ReceiverReference:   s.ReceiverReference,
		DeliveryDate:        s.DeliveryDate,
		Note:                s.Note,
		DeliveryInstruction: s.DeliveryInstruction,
		Test:                s.Test,
		BulkID:              s.BulkID,
		Service: ServiceBody{
			ID:     s.Service.ID,
			Addons: make([]AddonBody, 0, len(s.Service.Addons)),
		},
		Receiver: newPartyBody(s.Receiver),
		Sender:   newPartyBody(s.Sender),
		Parcels:  make([]ParcelBody, 0, len(s.Parcels)),
	}
	for _, a := range s.Service.Addons {
		body.Service.Addons = append(body.Service.Addons, AddonBody{ID: a.ID})
	}
	if s.Agent != nil {
		body.Agent = &AgentBody{QuickID: s.Agent.QuickID}
	}
	for _, p := range s.Parcels {
		body.Parcels = append(body.Parcels, ParcelBody{
			Copies:    p.Copies,
			Weight:    number(&p.Weight),
			Height:    number(p.Height),
			Width:     number(p.Width),
			Length:    number(p.Length),
			Reference: p.Reference,
		})
	}

	return ShipmentRequest{
		PrintConfig: newPrintConfig(req.PrintConfig),
		Shipment:    body,
	}
}

// newPrintConfig flattens the targets; a target without media is sent with a null media
func newPrintConfig(pc shipping.PrintConfig) PrintConfig {
	out := make(PrintConfig, 5*len(pc.Targets))
	for i, t := range pc.Targets {
		prefix := "target" + strconv.Itoa(i+1)
		if t.Media == "" {
			out[prefix+"Media"] = nil
		} else {
			out[prefix+"Media"] = t.Media
		}
		out[prefix+"Type"] = t.Type
		out[prefix+"XOffset"] = t.XOffset
		out[prefix+"YOffset"] = t.YOffset
		if len(t.Options) > 0 {
			options := make([]map[string]string, 0, len(t.Options))
			for _, o := range t.Options {
				options = append(options, map[string]string{"key": o.Key, "value": o.Value})
			}
			out[prefix+"Options"] = options
		}
	}
	return out
}

func newPartyBody(p shipping.Party) PartyBody {
	return PartyBody{
		Name:     p.Name,
		Address1: p.Address1,
		Address2: p.Address2,
		City:     p.City,
		State:    p.State,
		Country:  p.Country,
		ZipCode:  p.ZipCode,
		Contact:  p.Contact,
		Email:    p.Email,
		Mobile:   p.Mobile,
		Phone:    p.Phone,
		QuickID:  p.QuickID,
		CustNo:   p.CustNo,
	}
}

func number(d *decimal.Decimal) json.Number {
	if d == nil {
		return ""
	}
	return json.Number(d.String())
}

func (r ShipmentResponse) toDomain() *shipping.ShipmentResult {
	result := &shipping.ShipmentResult{
		ID:      r.ID,
		Prints:  make([]shipping.Print, 0, len(r.Prints)),
		Parcels: make([]shipping.ParcelResult, 0, len(r.Parcels)),
	}
	for _, p := range r.Prints {
		result.Prints = append(result.Prints, shipping.Print{Data: p.Data})
	}
	for _, p := range r.Parcels {
		result.Parcels = append(result.Parcels, shipping.ParcelResult{ParcelNo: p.ParcelNo, Reference: p.Reference})
	}
	return result
}

func toFieldErrors(resp []FieldErrorResponse) []shipping.FieldError {
	errs := make([]shipping.FieldError, 0, len(resp))
	for _, e := range resp {
		errs = append(errs, shipping.FieldError{Field: e.Field, Message: e.Message})
	}
	return errs
}
