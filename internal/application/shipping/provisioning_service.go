package shipping

import (
	"context"
	"fmt"

	"github.com/erp/carrier-transport/internal/domain/shipping"
	"github.com/erp/carrier-transport/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LifecycleResponder reports the outcome of a lifecycle request to its ResponseURL
type LifecycleResponder interface {
	Respond(ctx context.Context, responseURL string, resp LifecycleResponse) error
}

// ProvisioningService creates the carrier record the label service looks up.
// The setup is written under the profile namespace, the same key lookup reads.
type ProvisioningService struct {
	inventory shipping.InventoryClient
	profile   shipping.CarrierProfile
	setup     shipping.CarrierSetup
	responder LifecycleResponder
	logger    *zap.Logger
}

// NewProvisioningService creates a provisioning service.
// responder may be nil when the service is only driven from the command line.
func NewProvisioningService(
	inventory shipping.InventoryClient,
	profile shipping.CarrierProfile,
	setup shipping.CarrierSetup,
	responder LifecycleResponder,
	logger *zap.Logger,
) *ProvisioningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProvisioningService{
		inventory: inventory,
		profile:   profile,
		setup:     setup,
		responder: responder,
		logger:    logger,
	}
}

// Provision writes a new carrier record holding the configured setup
func (s *ProvisioningService) Provision(ctx context.Context) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "carrier", "provision")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrCarrierName, s.profile.CarrierName)

	if err := s.setup.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	carrier, err := shipping.NewCarrier(s.profile.CarrierName, s.profile.Namespace, s.setup)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.inventory.CreateCarrier(ctx, carrier); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("create carrier %s: %w", s.profile.CarrierName, err)
	}

	s.logger.Info("carrier provisioned",
		zap.String("carrier", s.profile.CarrierName),
		zap.String("namespace", s.profile.Namespace),
		zap.Bool("test", s.setup.Test),
	)
	return nil
}

// HandleLifecycle provisions on Create and ignores Update and Delete.
// SUCCESS is always reported; a failed provisioning only shows up in the reason.
// The returned error is the failure to report, never the provisioning failure.
func (s *ProvisioningService) HandleLifecycle(ctx context.Context, req LifecycleRequest) (*ProvisionResult, error) {
	result := &ProvisionResult{Reason: "OK"}

	if req.RequestType == LifecycleCreate {
		if err := s.Provision(ctx); err != nil {
			s.logger.Warn("provisioning failed, reporting success",
				zap.String("request_id", req.RequestID),
				zap.Error(err),
			)
			result.Reason = err.Error()
		} else {
			result.Created = true
		}
	}

	if s.responder == nil || req.ResponseURL == "" {
		return result, nil
	}

	resp := LifecycleResponse{
		Status:             LifecycleStatusSuccess,
		Reason:             result.Reason,
		PhysicalResourceID: PhysicalResourceID,
		StackID:            req.StackID,
		RequestID:          req.RequestID,
		LogicalResourceID:  req.LogicalResourceID,
	}
	if err := s.responder.Respond(ctx, req.ResponseURL, resp); err != nil {
		s.logger.Error("failed to report lifecycle response",
			zap.String("request_id", req.RequestID),
			zap.Error(err),
		)
		return result, err
	}
	return result, nil
}
