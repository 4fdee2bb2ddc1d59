package shipping

// CarrierResponse is the carrier's answer to a shipment-creation request.
// Exactly one of Accepted and Rejected is set.
type CarrierResponse struct {
	Accepted *ShipmentResult
	Rejected []FieldError
}

// IsRejected returns true if the carrier refused the shipment
func (r *CarrierResponse) IsRejected() bool {
	return r.Accepted == nil
}

// ShipmentResult is an accepted carrier shipment
type ShipmentResult struct {
	// ID is the carrier's own shipment (consignment) identifier
	ID string
	// Prints are the rendered labels
	Prints []Print
	// Parcels are the per-parcel results, positionally matching the submitted parcels
	Parcels []ParcelResult
}

// Print is one rendered label document
type Print struct {
	// Data is the base64-encoded document
	Data string
}

// ParcelResult is the carrier's result for one parcel
type ParcelResult struct {
	ParcelNo  string
	Reference string
}
