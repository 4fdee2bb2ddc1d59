package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// LabelOutcome is the final outcome of a label request, used as a metric label.
type LabelOutcome string

const (
	LabelOutcomeLabelled  LabelOutcome = "labelled"
	LabelOutcomeRejected  LabelOutcome = "rejected"
	LabelOutcomeDuplicate LabelOutcome = "duplicate"
	LabelOutcomeFailed    LabelOutcome = "failed"
)

// WriteKind names an inventory write-back, used as a metric label.
type WriteKind string

const (
	WriteKindAttachment     WriteKind = "attachment"
	WriteKindTrackingNumber WriteKind = "tracking_number"
	WriteKindShipmentNumber WriteKind = "shipment_number"
	WriteKindMessage        WriteKind = "message"
	WriteKindArchive        WriteKind = "archive"
)

// LabelMetrics records the throughput and health of the label pipeline.
type LabelMetrics struct {
	requestsTotal   *Counter
	writesTotal     *Counter
	carrierDuration *Histogram
}

// LabelMetricsConfig holds configuration for label metrics.
type LabelMetricsConfig struct {
	Meter metric.Meter
}

// NewLabelMetrics creates the label pipeline instruments.
func NewLabelMetrics(cfg LabelMetricsConfig) (*LabelMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	lm := &LabelMetrics{}

	var err error
	lm.requestsTotal, err = NewCounter(
		cfg.Meter,
		"transport_label_requests_total",
		"Total number of shipping label requests by outcome",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	lm.writesTotal, err = NewCounter(
		cfg.Meter,
		"transport_inventory_writes_total",
		"Total number of inventory write-backs by kind and result",
		"{writes}",
	)
	if err != nil {
		return nil, err
	}

	lm.carrierDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "transport_carrier_request_duration_seconds",
		Description: "Duration of carrier shipment-creation requests",
		Unit:        "s",
		Boundaries:  CarrierDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return lm, nil
}

// RecordRequest records the outcome of one label request.
func (lm *LabelMetrics) RecordRequest(ctx context.Context, carrierName string, outcome LabelOutcome) {
	lm.requestsTotal.Inc(ctx,
		AttrCarrierName.String(carrierName),
		AttrOutcome.String(string(outcome)),
	)
}

// RecordWrite records one inventory write-back.
func (lm *LabelMetrics) RecordWrite(ctx context.Context, kind WriteKind, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	lm.writesTotal.Inc(ctx,
		AttrWriteKind.String(string(kind)),
		AttrResult.String(result),
	)
}

// RecordCarrierCall records the duration of a carrier request.
func (lm *LabelMetrics) RecordCarrierCall(ctx context.Context, carrierName string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	lm.carrierDuration.RecordDuration(ctx, d,
		AttrCarrierName.String(carrierName),
		AttrResult.String(result),
	)
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewLabelMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
