package ims

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/erp/carrier-transport/internal/domain/shipping"
)

// maxResponseSize is the maximum allowed response size from the IMS API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client implements shipping.InventoryClient against the IMS REST API.
// Requests are authorized with a client-credentials token that is fetched
// lazily and reused until it expires.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	base   *http.Client
	logger *zap.Logger
}

// WithHTTPClient sets the HTTP client used for both token and API requests
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.base = c
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// NewClient creates an IMS client with the given configuration
func NewClient(config *Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.base == nil {
		o.base = &http.Client{Timeout: time.Duration(config.TimeoutSeconds) * time.Second}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	credentials := clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     config.TokenURL(),
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	// The token source keeps this context for every refresh
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, o.base)

	return &Client{
		config: config,
		httpClient: &http.Client{
			Transport: &oauth2.Transport{
				Source: credentials.TokenSource(tokenCtx),
				Base:   o.base.Transport,
			},
			Timeout: o.base.Timeout,
		},
		logger: o.logger,
	}, nil
}

// ---------------------------------------------------------------------------
// Carriers
// ---------------------------------------------------------------------------

// ListCarriers returns all carrier records
func (c *Client) ListCarriers(ctx context.Context) ([]shipping.Carrier, error) {
	var records []IMSCarrier
	if err := c.doJSON(ctx, http.MethodGet, "carriers", nil, &records); err != nil {
		return nil, err
	}

	carriers := make([]shipping.Carrier, 0, len(records))
	for _, r := range records {
		carriers = append(carriers, r.toDomain())
	}
	return carriers, nil
}

// CreateCarrier creates a carrier record and sets the assigned id on carrier
func (c *Client) CreateCarrier(ctx context.Context, carrier *shipping.Carrier) error {
	body := IMSCarrier{
		CarrierName:  carrier.CarrierName,
		DataDocument: carrier.DataDocument,
	}
	var created IMSCarrier
	if err := c.doJSON(ctx, http.MethodPost, "carriers", body, &created); err != nil {
		return err
	}
	carrier.ID = created.ID
	return nil
}

// ---------------------------------------------------------------------------
// Shipments
// ---------------------------------------------------------------------------

// GetShipment returns a shipment with its shipping containers
func (c *Client) GetShipment(ctx context.Context, shipmentID int64) (*shipping.Shipment, error) {
	var s IMSShipment
	if err := c.doJSON(ctx, http.MethodGet, "shipments/"+formatID(shipmentID), nil, &s); err != nil {
		return nil, err
	}
	return s.toDomain(), nil
}

// GetSeller returns a seller with its address and contact
func (c *Client) GetSeller(ctx context.Context, sellerID int64) (*shipping.Seller, error) {
	var p IMSParty
	if err := c.doJSON(ctx, http.MethodGet, "sellers/"+formatID(sellerID), nil, &p); err != nil {
		return nil, err
	}
	return &shipping.Seller{
		ID:            p.ID,
		Address:       p.Address.toDomain(),
		ContactPerson: p.ContactPerson.toDomain(),
	}, nil
}

// GetContext returns the account a shipment belongs to
func (c *Client) GetContext(ctx context.Context, contextID int64) (*shipping.ShippingContext, error) {
	var p IMSParty
	if err := c.doJSON(ctx, http.MethodGet, "contexts/"+formatID(contextID), nil, &p); err != nil {
		return nil, err
	}
	return &shipping.ShippingContext{
		ID:            p.ID,
		Address:       p.Address.toDomain(),
		ContactPerson: p.ContactPerson.toDomain(),
	}, nil
}

// AddAttachment attaches a label document to its shipment
func (c *Client) AddAttachment(ctx context.Context, attachment shipping.LabelAttachment) error {
	body := attachmentBody{
		FileName:             attachment.FileName,
		Base64EncodedContent: attachment.Base64EncodedContent,
	}
	return c.doJSON(ctx, http.MethodPost, "shipments/"+formatID(attachment.ShipmentID)+"/attachments", body, nil)
}

// SetTrackingNumber sets the tracking number of a shipping container
func (c *Client) SetTrackingNumber(ctx context.Context, update shipping.TrackingUpdate) error {
	body := trackingNumberPatch{TrackingNumber: update.TrackingNumber}
	return c.doJSON(ctx, http.MethodPatch, "shippingContainers/"+formatID(update.ShippingContainerID), body, nil)
}

// SetCarriersShipmentNumber sets the carrier's shipment number on a shipment
func (c *Client) SetCarriersShipmentNumber(ctx context.Context, update shipping.ShipmentUpdate) error {
	body := shipmentNumberPatch{CarriersShipmentNumber: update.CarriersShipmentNumber}
	return c.doJSON(ctx, http.MethodPatch, "shipments/"+formatID(update.ShipmentID), body, nil)
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

// PostEventMessage appends a message to an event's message log
func (c *Client) PostEventMessage(ctx context.Context, eventID int64, message shipping.Message) error {
	return c.doJSON(ctx, http.MethodPost, "events/"+formatID(eventID)+"/messages", newMessageBody(message), nil)
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// doJSON sends in as the JSON body (if not nil) and decodes the response into out (if not nil)
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ims: failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.APIURL+path, body)
	if err != nil {
		return fmt.Errorf("ims: failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A refused token is a configuration problem, not an outage
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return fmt.Errorf("%w: token request: HTTP %d", shipping.ErrInventoryRequestFailed, retrieveErr.Response.StatusCode)
		}
		return fmt.Errorf("%w: %s %s: %v", shipping.ErrInventoryUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shipping.ErrInventoryUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Debug("ims request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(respBody, 512)),
		)
		return fmt.Errorf("%w: %s %s: HTTP %d", shipping.ErrInventoryRequestFailed, method, path, resp.StatusCode)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %s %s: failed to parse response: %v", shipping.ErrInventoryRequestFailed, method, path, err)
	}
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
