package shipping

import (
	"fmt"
	"strconv"
	"time"
)

// LabelsReadyText is the text of the message posted once labels are attached
const LabelsReadyText = "Labels are ready"

// LabelAttachment is a label document to attach to a shipment
type LabelAttachment struct {
	ShipmentID           int64
	FileName             string
	Base64EncodedContent string
}

// TrackingUpdate sets the tracking number of a shipping container
type TrackingUpdate struct {
	ShippingContainerID int64
	TrackingNumber      string
}

// ShipmentUpdate sets the carrier's shipment number on a shipment
type ShipmentUpdate struct {
	ShipmentID             int64
	CarriersShipmentNumber string
}

// Reconciliation is the set of writes and messages that follow a carrier response.
// A rejected shipment carries messages only.
type Reconciliation struct {
	Attachments     []LabelAttachment
	TrackingUpdates []TrackingUpdate
	ShipmentUpdate  *ShipmentUpdate
	Messages        []Message
}

// Rejected returns true if the reconciliation carries no writes
func (r *Reconciliation) Rejected() bool {
	return r.ShipmentUpdate == nil
}

// WriteCount returns the number of writes against the inventory system, messages excluded
func (r *Reconciliation) WriteCount() int {
	n := len(r.Attachments) + len(r.TrackingUpdates)
	if r.ShipmentUpdate != nil {
		n++
	}
	return n
}

// Reconciler turns carrier responses into reconciliations
type Reconciler struct {
	profile CarrierProfile
	now     func() time.Time
}

// ReconcilerOption is a functional option for Reconciler
type ReconcilerOption func(*Reconciler)

// WithClock sets the clock used to time-stamp messages
func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		r.now = now
	}
}

// NewReconciler creates a reconciler for the given carrier profile
func NewReconciler(profile CarrierProfile, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		profile: profile,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile maps the carrier response for shipment to writes and messages.
// Parcel results are matched to shipping containers by position. A rejection
// always yields at least one ERROR message.
func (r *Reconciler) Reconcile(resp *CarrierResponse, shipment *Shipment, setup *CarrierSetup, req LabelRequest) (*Reconciliation, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", ErrCarrierInvalidResponse)
	}

	if resp.IsRejected() {
		rec := &Reconciliation{Messages: make([]Message, 0, len(resp.Rejected))}
		for _, fe := range resp.Rejected {
			text := fmt.Sprintf("Failed to register shipment with %[1]s. %[1]s says: %s", r.profile.CarrierName, fe.String())
			rec.Messages = append(rec.Messages, r.message(MessageTypeError, text, req))
		}
		if len(rec.Messages) == 0 {
			rec.Messages = append(rec.Messages, r.Failure(
				fmt.Sprintf("Failed to register shipment with %[1]s. %[1]s gave no reason", r.profile.CarrierName), req))
		}
		return rec, nil
	}

	result := resp.Accepted
	containers := shipment.ShippingContainers
	if len(result.Parcels) != len(containers) {
		return nil, fmt.Errorf("%w: got %d parcels for %d containers", ErrParcelCountMismatch, len(result.Parcels), len(containers))
	}

	fileName := LabelFileName(shipment.ID, r.profile.PrintType(setup))
	rec := &Reconciliation{
		Attachments:     make([]LabelAttachment, 0, len(result.Prints)),
		TrackingUpdates: make([]TrackingUpdate, 0, len(result.Parcels)),
	}
	for _, p := range result.Prints {
		rec.Attachments = append(rec.Attachments, LabelAttachment{
			ShipmentID:           shipment.ID,
			FileName:             fileName,
			Base64EncodedContent: p.Data,
		})
	}
	for i, parcel := range result.Parcels {
		rec.TrackingUpdates = append(rec.TrackingUpdates, TrackingUpdate{
			ShippingContainerID: containers[i].ID,
			TrackingNumber:      parcel.ParcelNo,
		})
	}
	rec.ShipmentUpdate = &ShipmentUpdate{
		ShipmentID:             shipment.ID,
		CarriersShipmentNumber: result.ID,
	}
	rec.Messages = []Message{r.message(MessageTypeInfo, LabelsReadyText, req)}
	return rec, nil
}

// RejectTranslation reports a shipment that could not be translated, one ERROR message
// per field error
func (r *Reconciler) RejectTranslation(rejected *ValidationRejectedError, req LabelRequest) *Reconciliation {
	rec := &Reconciliation{Messages: make([]Message, 0, len(rejected.Errors))}
	for _, fe := range rejected.Errors {
		text := fmt.Sprintf("Shipment cannot be registered with %s: %s", r.profile.CarrierName, fe.String())
		rec.Messages = append(rec.Messages, r.message(MessageTypeError, text, req))
	}
	return rec
}

// Failure builds a single ERROR message for a failure that is not tied to a field
func (r *Reconciler) Failure(text string, req LabelRequest) Message {
	return r.message(MessageTypeError, text, req)
}

func (r *Reconciler) message(t MessageType, text string, req LabelRequest) Message {
	return Message{
		Time:        r.now(),
		Source:      r.profile.Namespace,
		MessageType: t,
		MessageText: text,
		DeviceName:  req.DeviceName,
		UserID:      req.UserID,
	}
}

// LabelFileName is the deterministic file name of a shipment's labels
func LabelFileName(shipmentID int64, printType string) string {
	return "SHIPPING_LABEL_" + strconv.FormatInt(shipmentID, 10) + "." + LabelExtension(printType)
}
