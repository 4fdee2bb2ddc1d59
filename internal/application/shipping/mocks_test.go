package shipping

import (
	"context"

	"github.com/erp/carrier-transport/internal/domain/shipping"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Ports
// =============================================================================

// MockInventoryClient is a mock implementation of shipping.InventoryClient
type MockInventoryClient struct {
	mock.Mock
}

func (m *MockInventoryClient) ListCarriers(ctx context.Context) ([]shipping.Carrier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.Carrier), args.Error(1)
}

func (m *MockInventoryClient) CreateCarrier(ctx context.Context, carrier *shipping.Carrier) error {
	args := m.Called(ctx, carrier)
	return args.Error(0)
}

func (m *MockInventoryClient) GetShipment(ctx context.Context, shipmentID int64) (*shipping.Shipment, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

func (m *MockInventoryClient) GetSeller(ctx context.Context, sellerID int64) (*shipping.Seller, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Seller), args.Error(1)
}

func (m *MockInventoryClient) GetContext(ctx context.Context, contextID int64) (*shipping.ShippingContext, error) {
	args := m.Called(ctx, contextID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.ShippingContext), args.Error(1)
}

func (m *MockInventoryClient) AddAttachment(ctx context.Context, attachment shipping.LabelAttachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *MockInventoryClient) SetTrackingNumber(ctx context.Context, update shipping.TrackingUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockInventoryClient) SetCarriersShipmentNumber(ctx context.Context, update shipping.ShipmentUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockInventoryClient) PostEventMessage(ctx context.Context, eventID int64, message shipping.Message) error {
	args := m.Called(ctx, eventID, message)
	return args.Error(0)
}

// MockCarrierGateway is a mock implementation of shipping.CarrierGateway
type MockCarrierGateway struct {
	mock.Mock
}

func (m *MockCarrierGateway) CreateShipment(ctx context.Context, setup *shipping.CarrierSetup, req *shipping.CarrierShipmentRequest) (*shipping.CarrierResponse, error) {
	args := m.Called(ctx, setup, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.CarrierResponse), args.Error(1)
}

// MockLabelArchive is a mock implementation of shipping.LabelArchive
type MockLabelArchive struct {
	mock.Mock
}

func (m *MockLabelArchive) Archive(ctx context.Context, attachment shipping.LabelAttachment) (string, error) {
	args := m.Called(ctx, attachment)
	return args.String(0), args.Error(1)
}

// MockLifecycleResponder is a mock implementation of LifecycleResponder
type MockLifecycleResponder struct {
	mock.Mock
}

func (m *MockLifecycleResponder) Respond(ctx context.Context, responseURL string, resp LifecycleResponse) error {
	args := m.Called(ctx, responseURL, resp)
	return args.Error(0)
}
