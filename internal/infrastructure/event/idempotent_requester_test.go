package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appshipping "github.com/erp/carrier-transport/internal/application/shipping"
	"github.com/erp/carrier-transport/internal/domain/shared"
	"github.com/erp/carrier-transport/internal/domain/shipping"
	"github.com/erp/carrier-transport/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockLabelRequester is a mock implementation of appshipping.LabelRequester
type MockLabelRequester struct {
	mock.Mock
}

func (m *MockLabelRequester) RequestLabels(ctx context.Context, req shipping.LabelRequest) (*appshipping.LabelResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appshipping.LabelResult), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testLabelRequest() shipping.LabelRequest {
	return shipping.LabelRequest{ShipmentID: 42, EventID: 1001, ContextID: 7}
}

func labelledResult(req shipping.LabelRequest) *appshipping.LabelResult {
	return &appshipping.LabelResult{
		EventID:    req.EventID,
		ShipmentID: req.ShipmentID,
		Outcome:    appshipping.OutcomeLabelled,
		Labels:     1,
	}
}

func TestIdempotentRequester_NewRequest(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	next := new(MockLabelRequester)
	req := testLabelRequest()
	next.On("RequestLabels", mock.Anything, req).Return(labelledResult(req), nil)

	r := NewIdempotentRequester(next, store, zap.NewNop())
	result, err := r.RequestLabels(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, appshipping.OutcomeLabelled, result.Outcome)
	assert.Equal(t, int64(1), r.GetMetrics().RequestsProcessed.Load())

	isNew, err := store.MarkProcessed(context.Background(), "label-request:1001", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew, "completed request keeps its key")
	next.AssertExpectations(t)
}

func TestIdempotentRequester_Duplicate(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	next := new(MockLabelRequester)
	req := testLabelRequest()
	next.On("RequestLabels", mock.Anything, req).Return(labelledResult(req), nil).Once()

	r := NewIdempotentRequester(next, store, zap.NewNop())

	_, err := r.RequestLabels(context.Background(), req)
	require.NoError(t, err)

	result, err := r.RequestLabels(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, appshipping.OutcomeDuplicate, result.Outcome)
	assert.Equal(t, req.EventID, result.EventID)
	assert.Equal(t, req.ShipmentID, result.ShipmentID)

	next.AssertNumberOfCalls(t, "RequestLabels", 1)
	stats := r.GetMetrics().Stats()
	assert.Equal(t, int64(1), stats.RequestsProcessed)
	assert.Equal(t, int64(1), stats.RequestsDuplicate)
}

func TestIdempotentRequester_FailureReleasesKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "inventory unavailable", err: shipping.ErrInventoryUnavailable},
		{name: "carrier unavailable", err: shipping.ErrCarrierUnavailable},
		{name: "carrier not found", err: &shipping.CarrierNotFoundError{CarrierName: "Postnord"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := cache.NewInMemoryIdempotencyStore()
			defer store.Close()

			next := new(MockLabelRequester)
			req := testLabelRequest()
			next.On("RequestLabels", mock.Anything, req).Return(nil, tt.err).Once()
			next.On("RequestLabels", mock.Anything, req).Return(labelledResult(req), nil).Once()

			r := NewIdempotentRequester(next, store, zap.NewNop())

			_, err := r.RequestLabels(context.Background(), req)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 0, store.Size())

			result, err := r.RequestLabels(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, appshipping.OutcomeLabelled, result.Outcome)
			next.AssertNumberOfCalls(t, "RequestLabels", 2)

			stats := r.GetMetrics().Stats()
			assert.Equal(t, IdempotencyStats{RequestsProcessed: 1, RequestsFailed: 1}, stats)
		})
	}
}

func TestIdempotentRequester_ReleaseUsesLiveContext(t *testing.T) {
	store := new(MockIdempotencyStore)
	next := new(MockLabelRequester)
	req := testLabelRequest()

	ctx, cancel := context.WithCancel(context.Background())
	store.On("MarkProcessed", mock.Anything, "label-request:1001", 24*time.Hour).Return(true, nil)
	next.On("RequestLabels", mock.Anything, req).Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)
	store.On("Release", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), "label-request:1001").
		Return(errors.New("redis: connection refused"))

	r := NewIdempotentRequester(next, store, zap.NewNop())
	_, err := r.RequestLabels(ctx, req)

	assert.ErrorIs(t, err, context.Canceled)
	store.AssertExpectations(t)
}

func TestIdempotentRequester_StoreError(t *testing.T) {
	store := new(MockIdempotencyStore)
	next := new(MockLabelRequester)
	req := testLabelRequest()

	store.On("MarkProcessed", mock.Anything, "label-request:1001", 24*time.Hour).
		Return(false, errors.New("redis: connection refused"))
	next.On("RequestLabels", mock.Anything, req).Return(labelledResult(req), nil)

	r := NewIdempotentRequester(next, store, zap.NewNop())
	result, err := r.RequestLabels(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, appshipping.OutcomeLabelled, result.Outcome)
	next.AssertExpectations(t)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestIdempotentRequester_Disabled(t *testing.T) {
	store := new(MockIdempotencyStore)
	next := new(MockLabelRequester)
	req := testLabelRequest()
	next.On("RequestLabels", mock.Anything, req).Return(labelledResult(req), nil).Twice()

	r := NewIdempotentRequester(next, store, zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}),
	)

	for range 2 {
		result, err := r.RequestLabels(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, appshipping.OutcomeLabelled, result.Outcome)
	}
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestIdempotentRequester_CustomTTL(t *testing.T) {
	store := new(MockIdempotencyStore)
	next := new(MockLabelRequester)
	req := testLabelRequest()

	store.On("MarkProcessed", mock.Anything, "label-request:1001", time.Hour).Return(true, nil)
	next.On("RequestLabels", mock.Anything, req).Return(labelledResult(req), nil)

	r := NewIdempotentRequester(next, store, nil,
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: true, TTL: time.Hour}),
	)
	_, err := r.RequestLabels(context.Background(), req)

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestIdempotentRequester_SharedMetrics(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	metrics := &IdempotencyMetrics{}
	next := new(MockLabelRequester)
	next.On("RequestLabels", mock.Anything, mock.Anything).Return(&appshipping.LabelResult{Outcome: appshipping.OutcomeLabelled}, nil)

	a := NewIdempotentRequester(next, store, zap.NewNop(), WithIdempotencyMetrics(metrics))
	b := NewIdempotentRequester(next, store, zap.NewNop(), WithIdempotencyMetrics(metrics))

	_, err := a.RequestLabels(context.Background(), shipping.LabelRequest{ShipmentID: 1, EventID: 1})
	require.NoError(t, err)
	_, err = b.RequestLabels(context.Background(), shipping.LabelRequest{ShipmentID: 1, EventID: 1})
	require.NoError(t, err)

	assert.Equal(t, IdempotencyStats{RequestsProcessed: 1, RequestsDuplicate: 1}, metrics.Stats())
}

func TestIdempotentRequester_ConcurrentDuplicates(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	next := new(MockLabelRequester)
	req := testLabelRequest()
	next.On("RequestLabels", mock.Anything, req).Return(labelledResult(req), nil)

	r := NewIdempotentRequester(next, store, zap.NewNop())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.RequestLabels(context.Background(), req)
		}()
	}
	wg.Wait()

	next.AssertNumberOfCalls(t, "RequestLabels", 1)
	assert.Equal(t, int64(9), r.GetMetrics().RequestsDuplicate.Load())
}

func TestIdempotencyKey(t *testing.T) {
	assert.Equal(t, "label-request:5", IdempotencyKey(5))
}
