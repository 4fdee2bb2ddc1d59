package shipping

import (
	"github.com/erp/carrier-transport/internal/domain/shipping"
)

// Outcome is how a label request ended
type Outcome string

const (
	// OutcomeLabelled means labels were attached and tracking numbers written
	OutcomeLabelled Outcome = "labelled"
	// OutcomeRejected means the shipment was refused and ERROR messages were posted
	OutcomeRejected Outcome = "rejected"
	// OutcomeDuplicate means the triggering event was already handled
	OutcomeDuplicate Outcome = "duplicate"
)

// LabelResult summarises a processed label request
type LabelResult struct {
	EventID                int64    `json:"event_id"`
	ShipmentID             int64    `json:"shipment_id"`
	Outcome                Outcome  `json:"outcome"`
	CarriersShipmentNumber string   `json:"carriers_shipment_number,omitempty"`
	Labels                 int      `json:"labels"`
	TrackingNumbers        []string `json:"tracking_numbers,omitempty"`
	Messages               int      `json:"messages"`
	ArchivedLabels         []string `json:"archived_labels,omitempty"`
}

// PreviewResult is the carrier request a shipment would be submitted as
type PreviewResult struct {
	CarrierName string                           `json:"carrier_name"`
	Service     string                           `json:"service"`
	Request     *shipping.CarrierShipmentRequest `json:"request,omitempty"`
	// Rejected holds the field errors when the shipment cannot be translated
	Rejected []shipping.FieldError `json:"rejected,omitempty"`
}

// ---------------------------------------------------------------------------
// Provisioning
// ---------------------------------------------------------------------------

// LifecycleRequestType is the type of an infrastructure lifecycle request
type LifecycleRequestType string

const (
	LifecycleCreate LifecycleRequestType = "Create"
	LifecycleUpdate LifecycleRequestType = "Update"
	LifecycleDelete LifecycleRequestType = "Delete"
)

// LifecycleStatusSuccess is the only status ever reported back
const LifecycleStatusSuccess = "SUCCESS"

// PhysicalResourceID identifies the provisioned resource in lifecycle responses
const PhysicalResourceID = "StaticFiles"

// LifecycleRequest is an infrastructure lifecycle notification (custom-resource shaped)
type LifecycleRequest struct {
	RequestType       LifecycleRequestType `json:"RequestType"`
	ResponseURL       string               `json:"ResponseURL"`
	StackID           string               `json:"StackId"`
	RequestID         string               `json:"RequestId"`
	LogicalResourceID string               `json:"LogicalResourceId"`
}

// LifecycleResponse is reported to the lifecycle request's ResponseURL
type LifecycleResponse struct {
	Status             string `json:"Status"`
	Reason             string `json:"Reason"`
	PhysicalResourceID string `json:"PhysicalResourceId"`
	StackID            string `json:"StackId"`
	RequestID          string `json:"RequestId"`
	LogicalResourceID  string `json:"LogicalResourceId"`
}

// ProvisionResult describes what provisioning did
type ProvisionResult struct {
	// Created is true when a carrier record was written
	Created bool `json:"created"`
	// Reason is "OK" or the text of the swallowed error
	Reason string `json:"reason"`
}
