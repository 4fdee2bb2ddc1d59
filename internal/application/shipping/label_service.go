package shipping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/carrier-transport/internal/domain/shipping"
	"github.com/erp/carrier-transport/internal/infrastructure/logger"
	"github.com/erp/carrier-transport/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultWriteConcurrency bounds the inventory write-backs issued at once
const DefaultWriteConcurrency = 4

// LabelRequester processes shipping label requests
type LabelRequester interface {
	RequestLabels(ctx context.Context, req shipping.LabelRequest) (*LabelResult, error)
}

// LabelService orchestrates one label request: it looks up the carrier, fetches the
// shipment, submits the translated request and writes the result back.
type LabelService struct {
	inventory        shipping.InventoryClient
	carrier          shipping.CarrierGateway
	translator       *shipping.Translator
	reconciler       *shipping.Reconciler
	archive          shipping.LabelArchive
	metrics          *telemetry.LabelMetrics
	logger           *zap.Logger
	writeConcurrency int
}

// LabelServiceOption is a functional option for LabelService
type LabelServiceOption func(*LabelService)

// WithLabelArchive keeps a copy of every attached label
func WithLabelArchive(archive shipping.LabelArchive) LabelServiceOption {
	return func(s *LabelService) {
		s.archive = archive
	}
}

// WithLabelMetrics records request outcomes and write-backs
func WithLabelMetrics(metrics *telemetry.LabelMetrics) LabelServiceOption {
	return func(s *LabelService) {
		s.metrics = metrics
	}
}

// WithWriteConcurrency bounds the number of concurrent write-backs
func WithWriteConcurrency(n int) LabelServiceOption {
	return func(s *LabelService) {
		if n > 0 {
			s.writeConcurrency = n
		}
	}
}

// WithReconciler replaces the default reconciler, e.g. to fix the message clock
func WithReconciler(r *shipping.Reconciler) LabelServiceOption {
	return func(s *LabelService) {
		s.reconciler = r
	}
}

// NewLabelService creates a label service for the given carrier profile
func NewLabelService(
	inventory shipping.InventoryClient,
	carrier shipping.CarrierGateway,
	profile shipping.CarrierProfile,
	logger *zap.Logger,
	opts ...LabelServiceOption,
) (*LabelService, error) {
	translator, err := shipping.NewTranslator(profile)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &LabelService{
		inventory:        inventory,
		carrier:          carrier,
		translator:       translator,
		reconciler:       shipping.NewReconciler(profile),
		logger:           logger,
		writeConcurrency: DefaultWriteConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Profile returns the carrier profile the service translates with
func (s *LabelService) Profile() shipping.CarrierProfile {
	return s.translator.Profile()
}

// RequestLabels registers the shipment with the carrier and writes labels, tracking
// numbers and the carrier's shipment number back to the inventory system.
//
// A shipment refused by validation (ours or the carrier's) is not an error: ERROR
// messages are posted to the event and the result reports OutcomeRejected.
func (s *LabelService) RequestLabels(ctx context.Context, req shipping.LabelRequest) (*LabelResult, error) {
	profile := s.translator.Profile()

	ctx, span := telemetry.StartServiceSpan(ctx, "label", "request")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrEventID, req.EventID,
		telemetry.SpanAttrShipmentID, req.ShipmentID,
		telemetry.SpanAttrCarrierName, profile.CarrierName,
	)

	log := s.logger.With(
		zap.Int64("event_id", req.EventID),
		zap.Int64("shipment_id", req.ShipmentID),
		zap.String("carrier", profile.CarrierName),
	)
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}
	log = logger.WithTraceContext(ctx, log)

	result, err := s.requestLabels(ctx, req, log)
	if err != nil {
		telemetry.RecordError(span, err)
		s.recordRequest(ctx, telemetry.LabelOutcomeFailed)
		log.Error("label request failed", zap.Error(err))
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrOutcome, string(result.Outcome))
	s.recordRequest(ctx, telemetry.LabelOutcome(result.Outcome))
	log.Info("label request done",
		zap.String("outcome", string(result.Outcome)),
		zap.String("carriers_shipment_number", result.CarriersShipmentNumber),
		zap.Int("labels", result.Labels),
	)
	return result, nil
}

func (s *LabelService) requestLabels(ctx context.Context, req shipping.LabelRequest, log *zap.Logger) (*LabelResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setup, err := s.carrierSetup(ctx)
	if err != nil {
		return nil, err
	}

	shipment, sender, err := s.fetchShipment(ctx, req.ShipmentID, req.ContextID)
	if err != nil {
		return nil, err
	}

	result := &LabelResult{
		EventID:    req.EventID,
		ShipmentID: shipment.ID,
	}

	carrierReq, err := s.translator.Translate(shipment, setup, sender)
	if err != nil {
		var rejected *shipping.ValidationRejectedError
		if !errors.As(err, &rejected) {
			return nil, err
		}
		log.Warn("shipment cannot be translated", zap.Error(err))
		rec := s.reconciler.RejectTranslation(rejected, req)
		if err := s.postMessages(ctx, req.EventID, rec.Messages); err != nil {
			return nil, err
		}
		result.Outcome = OutcomeRejected
		result.Messages = len(rec.Messages)
		return result, nil
	}

	resp, err := s.submit(ctx, setup, carrierReq)
	if err != nil {
		return nil, err
	}

	rec, err := s.reconciler.Reconcile(resp, shipment, setup, req)
	if err != nil {
		return nil, err
	}

	if rec.Rejected() {
		log.Warn("shipment rejected by carrier", zap.Int("field_errors", len(resp.Rejected)))
		if err := s.postMessages(ctx, req.EventID, rec.Messages); err != nil {
			return nil, err
		}
		result.Outcome = OutcomeRejected
		result.Messages = len(rec.Messages)
		return result, nil
	}

	archived, err := s.writeBack(ctx, rec)
	if err != nil {
		return nil, err
	}

	if err := s.postMessages(ctx, req.EventID, rec.Messages); err != nil {
		return nil, err
	}

	result.Outcome = OutcomeLabelled
	result.CarriersShipmentNumber = rec.ShipmentUpdate.CarriersShipmentNumber
	result.Labels = len(rec.Attachments)
	result.Messages = len(rec.Messages)
	result.ArchivedLabels = archived
	result.TrackingNumbers = make([]string, 0, len(rec.TrackingUpdates))
	for _, u := range rec.TrackingUpdates {
		result.TrackingNumbers = append(result.TrackingNumbers, u.TrackingNumber)
	}
	return result, nil
}

// Preview builds the carrier request for a shipment without submitting it
func (s *LabelService) Preview(ctx context.Context, shipmentID int64) (*PreviewResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "label", "preview")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrShipmentID, shipmentID)

	setup, err := s.carrierSetup(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	shipment, sender, err := s.fetchShipment(ctx, shipmentID, 0)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	profile := s.translator.Profile()
	preview := &PreviewResult{
		CarrierName: profile.CarrierName,
		Service:     s.translator.SelectService(shipment.DeliverToPickUpPoint, shipment.DeliveryAddress.CountryCode).Code,
	}

	carrierReq, err := s.translator.Translate(shipment, setup, sender)
	if err != nil {
		var rejected *shipping.ValidationRejectedError
		if !errors.As(err, &rejected) {
			return nil, err
		}
		preview.Rejected = rejected.Errors
		return preview, nil
	}
	preview.Request = carrierReq
	return preview, nil
}

// carrierSetup finds the carrier record by profile name and decodes its setup.
// Failing to find it is fatal: nothing is translated or submitted.
func (s *LabelService) carrierSetup(ctx context.Context) (*shipping.CarrierSetup, error) {
	profile := s.translator.Profile()

	carriers, err := s.inventory.ListCarriers(ctx)
	if err != nil {
		return nil, err
	}

	carrier, err := shipping.LookupCarrier(carriers, profile.CarrierName)
	if err != nil {
		return nil, err
	}

	setup, err := carrier.Setup(profile.Namespace)
	if err != nil {
		return nil, err
	}
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	return setup, nil
}

// fetchShipment loads the shipment and the party it is sent from: the seller when
// the shipment has one, otherwise its context.
func (s *LabelService) fetchShipment(ctx context.Context, shipmentID, fallbackContextID int64) (*shipping.Shipment, shipping.SenderSource, error) {
	shipment, err := s.inventory.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, shipping.SenderSource{}, err
	}

	if shipment.HasSeller() {
		seller, err := s.inventory.GetSeller(ctx, *shipment.SellerID)
		if err != nil {
			return nil, shipping.SenderSource{}, err
		}
		return shipment, shipping.SenderFromSeller(seller), nil
	}

	contextID := shipment.ContextID
	if contextID == 0 {
		contextID = fallbackContextID
	}
	shippingContext, err := s.inventory.GetContext(ctx, contextID)
	if err != nil {
		return nil, shipping.SenderSource{}, err
	}
	return shipment, shipping.SenderFromContext(shippingContext), nil
}

func (s *LabelService) submit(ctx context.Context, setup *shipping.CarrierSetup, req *shipping.CarrierShipmentRequest) (*shipping.CarrierResponse, error) {
	profile := s.translator.Profile()

	ctx, span := telemetry.StartClientSpan(ctx, "carrier.create_shipment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCarrierName, profile.CarrierName,
		telemetry.SpanAttrService, req.Shipment.Service.ID,
		telemetry.SpanAttrParcels, len(req.Shipment.Parcels),
	)

	start := time.Now()
	resp, err := s.carrier.CreateShipment(ctx, setup, req)
	if s.metrics != nil {
		s.metrics.RecordCarrierCall(ctx, profile.CarrierName, time.Since(start), err)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if resp == nil {
		err := fmt.Errorf("%w: no response", shipping.ErrCarrierInvalidResponse)
		telemetry.RecordError(span, err)
		return nil, err
	}
	return resp, nil
}

// postMessages appends messages to the event's log in order. Every message is
// attempted; failures are joined.
func (s *LabelService) postMessages(ctx context.Context, eventID int64, messages []shipping.Message) error {
	var errs []error
	for _, m := range messages {
		err := s.inventory.PostEventMessage(ctx, eventID, m)
		s.recordWrite(ctx, telemetry.WriteKindMessage, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("post %s message: %w", m.MessageType, err))
		}
	}
	return errors.Join(errs...)
}

func (s *LabelService) recordRequest(ctx context.Context, outcome telemetry.LabelOutcome) {
	if s.metrics != nil {
		s.metrics.RecordRequest(ctx, s.translator.Profile().CarrierName, outcome)
	}
}

func (s *LabelService) recordWrite(ctx context.Context, kind telemetry.WriteKind, err error) {
	if s.metrics != nil {
		s.metrics.RecordWrite(ctx, kind, err)
	}
}

var _ LabelRequester = (*LabelService)(nil)
