package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for application spans
const TracerName = "carrier-transport"

// Span attribute keys of the label pipeline
const (
	SpanAttrEventID     = "event_id"
	SpanAttrShipmentID  = "shipment_id"
	SpanAttrCarrierName = "carrier_name"
	SpanAttrService     = "carrier_service"
	SpanAttrParcels     = "parcel_count"
	SpanAttrOutcome     = "outcome"
	SpanAttrWrites      = "write_count"
)

// StartSpan starts an internal span. The caller ends it.
//
//	ctx, span := telemetry.StartSpan(ctx, "label.reconcile")
//	defer span.End()
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return start(ctx, spanName, trace.SpanKindInternal)
}

// StartClientSpan starts a span around a call to a remote system
func StartClientSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return start(ctx, spanName, trace.SpanKindClient)
}

// StartServiceSpan starts a span named {service}.{method}, e.g. "label.request"
func StartServiceSpan(ctx context.Context, service, method string) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method)
}

func start(ctx context.Context, spanName string, kind trace.SpanKind) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, spanName, trace.WithSpanKind(kind))
}

// SetAttributes adds key/value pairs to a span. Non-string keys and a trailing
// key without a value are skipped.
func SetAttributes(span trace.Span, keyValues ...any) {
	if span == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, toAttribute(key, keyValues[i+1]))
	}
	span.SetAttributes(attrs...)
}

// SetAttribute adds a single attribute to the span
func SetAttribute(span trace.Span, key string, value any) {
	if span == nil {
		return
	}
	span.SetAttributes(toAttribute(key, value))
}

// RecordError records err on the span and marks the span failed
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
