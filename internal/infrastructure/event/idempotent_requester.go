package event

import (
	"context"
	"strconv"
	"sync/atomic"

	appshipping "github.com/erp/carrier-transport/internal/application/shipping"
	"github.com/erp/carrier-transport/internal/domain/shared"
	"github.com/erp/carrier-transport/internal/domain/shipping"
	"go.uber.org/zap"
)

// IdempotencyKeyPrefix prefixes the event ID in the store key
const IdempotencyKeyPrefix = "label-request:"

// IdempotencyMetrics tracks idempotency-related statistics
type IdempotencyMetrics struct {
	// RequestsProcessed is the number of requests handed to the label service
	RequestsProcessed atomic.Int64

	// RequestsDuplicate is the number of redelivered requests skipped
	RequestsDuplicate atomic.Int64

	// RequestsFailed is the number of requests the label service returned an error for
	RequestsFailed atomic.Int64
}

// Stats returns a snapshot of the current metrics
func (m *IdempotencyMetrics) Stats() IdempotencyStats {
	return IdempotencyStats{
		RequestsProcessed: m.RequestsProcessed.Load(),
		RequestsDuplicate: m.RequestsDuplicate.Load(),
		RequestsFailed:    m.RequestsFailed.Load(),
	}
}

// IdempotencyStats is a snapshot of idempotency metrics
type IdempotencyStats struct {
	RequestsProcessed int64 `json:"requests_processed"`
	RequestsDuplicate int64 `json:"requests_duplicate"`
	RequestsFailed    int64 `json:"requests_failed"`
}

// IdempotentRequester wraps a LabelRequester so that a label request event is
// acted on at most once per TTL, however often it is delivered
type IdempotentRequester struct {
	next    appshipping.LabelRequester
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger
	metrics *IdempotencyMetrics
}

// IdempotentRequesterOption is a functional option for IdempotentRequester
type IdempotentRequesterOption func(*IdempotentRequester)

// WithIdempotencyConfig sets the idempotency configuration
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentRequesterOption {
	return func(r *IdempotentRequester) {
		r.config = config
	}
}

// WithIdempotencyMetrics sets the metrics collector
func WithIdempotencyMetrics(metrics *IdempotencyMetrics) IdempotentRequesterOption {
	return func(r *IdempotentRequester) {
		r.metrics = metrics
	}
}

// NewIdempotentRequester creates a new idempotent requester wrapper
func NewIdempotentRequester(
	next appshipping.LabelRequester,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentRequesterOption,
) *IdempotentRequester {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &IdempotentRequester{
		next:    next,
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		logger:  logger,
		metrics: &IdempotencyMetrics{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RequestLabels requests labels unless the event was seen before.
// A repeat yields OutcomeDuplicate and no error. A failed request releases its
// key, so a retry or redelivery is processed again.
func (r *IdempotentRequester) RequestLabels(ctx context.Context, req shipping.LabelRequest) (*appshipping.LabelResult, error) {
	if !r.config.Enabled || r.store == nil {
		return r.process(ctx, req)
	}

	key := IdempotencyKey(req.EventID)

	isNew, err := r.store.MarkProcessed(ctx, key, r.config.TTL)
	if err != nil {
		// A second label is cheaper to void than a missing one
		r.logger.Warn("failed to check idempotency, processing anyway",
			zap.Int64("event_id", req.EventID),
			zap.Int64("shipment_id", req.ShipmentID),
			zap.Error(err),
		)
		return r.process(ctx, req)
	}
	if !isNew {
		r.metrics.RequestsDuplicate.Add(1)
		r.logger.Info("duplicate label request, skipping",
			zap.Int64("event_id", req.EventID),
			zap.Int64("shipment_id", req.ShipmentID),
		)
		return &appshipping.LabelResult{
			EventID:    req.EventID,
			ShipmentID: req.ShipmentID,
			Outcome:    appshipping.OutcomeDuplicate,
		}, nil
	}

	result, err := r.process(ctx, req)
	if err != nil {
		r.release(ctx, key, req)
		return nil, err
	}
	return result, nil
}

// release forgets key even when ctx has already ended
func (r *IdempotentRequester) release(ctx context.Context, key string, req shipping.LabelRequest) {
	if err := r.store.Release(context.WithoutCancel(ctx), key); err != nil {
		r.logger.Warn("failed to release idempotency key, redelivery will be skipped until it expires",
			zap.Int64("event_id", req.EventID),
			zap.Int64("shipment_id", req.ShipmentID),
			zap.Error(err),
		)
	}
}

func (r *IdempotentRequester) process(ctx context.Context, req shipping.LabelRequest) (*appshipping.LabelResult, error) {
	result, err := r.next.RequestLabels(ctx, req)
	if err != nil {
		r.metrics.RequestsFailed.Add(1)
		return nil, err
	}
	r.metrics.RequestsProcessed.Add(1)
	return result, nil
}

// GetMetrics returns the metrics for this requester
func (r *IdempotentRequester) GetMetrics() *IdempotencyMetrics {
	return r.metrics
}

// IdempotencyKey is the store key of a label request event
func IdempotencyKey(eventID int64) string {
	return IdempotencyKeyPrefix + strconv.FormatInt(eventID, 10)
}

var _ appshipping.LabelRequester = (*IdempotentRequester)(nil)
