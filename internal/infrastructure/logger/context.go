package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for the inbound request ID
	RequestIDKey contextKey = "request_id"
	// EventIDKey is the context key for the label request event ID
	EventIDKey contextKey = "event_id"
	// ShipmentIDKey is the context key for the shipment being labelled
	ShipmentIDKey contextKey = "shipment_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds the request ID to context and returns the enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithLabelRequest adds the event and shipment IDs to context and returns the enriched logger
func WithLabelRequest(ctx context.Context, logger *zap.Logger, eventID, shipmentID int64) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, EventIDKey, eventID)
	ctx = context.WithValue(ctx, ShipmentIDKey, shipmentID)
	enriched := logger.With(
		zap.Int64("event_id", eventID),
		zap.Int64("shipment_id", shipmentID),
	)
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetEventID retrieves the event ID from context, 0 if absent
func GetEventID(ctx context.Context) int64 {
	if id, ok := ctx.Value(EventIDKey).(int64); ok {
		return id
	}
	return 0
}

// GetShipmentID retrieves the shipment ID from context, 0 if absent
func GetShipmentID(ctx context.Context) int64 {
	if id, ok := ctx.Value(ShipmentIDKey).(int64); ok {
		return id
	}
	return 0
}

// =============================================================================
// Trace Correlation Functions
// =============================================================================

// GetTraceID extracts the trace ID from the context's span.
// Returns an empty string if no valid span exists.
func GetTraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// GetSpanID extracts the span ID from the context's span.
// Returns an empty string if no valid span exists.
func GetSpanID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.SpanID().String()
}

// WithTraceContext adds trace_id and span_id to the logger from the context's span.
// Without a valid span the logger is returned unchanged.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}

// L returns the context's logger with trace correlation applied.
// Usage: logger.L(ctx).Info("message", zap.String("key", "value"))
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}
