package unifaun

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/erp/carrier-transport/internal/domain/shipping"
)

// maxResponseSize is the maximum allowed response size from the Unifaun API (10MB).
// Responses carry base64 label documents.
const maxResponseSize = 10 * 1024 * 1024

// Client implements shipping.CarrierGateway against the Unifaun shipment API
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Unifaun client with the given configuration.
// logger may be nil.
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}, nil
}

// CreateShipment registers a shipment and returns its labels and parcel numbers.
// A 422 answer is a rejection, not an error.
func (c *Client) CreateShipment(ctx context.Context, setup *shipping.CarrierSetup, req *shipping.CarrierShipmentRequest) (*shipping.CarrierResponse, error) {
	raw, err := json.Marshal(NewShipmentRequest(req))
	if err != nil {
		return nil, fmt.Errorf("unifaun: failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"shipments?returnFile=true", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unifaun: failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+setup.User+"-"+setup.Pin)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shipping.ErrCarrierUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		var fieldErrs []FieldErrorResponse
		if err := json.Unmarshal(body, &fieldErrs); err != nil {
			return nil, fmt.Errorf("%w: failed to parse rejection: %v", shipping.ErrCarrierInvalidResponse, err)
		}
		c.logger.Info("shipment rejected by carrier", zap.Int("field_errors", len(fieldErrs)))
		return &shipping.CarrierResponse{Rejected: toFieldErrors(fieldErrs)}, nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var results []ShipmentResponse
		if err := json.Unmarshal(body, &results); err != nil {
			return nil, fmt.Errorf("%w: failed to parse response: %v", shipping.ErrCarrierInvalidResponse, err)
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("%w: no shipment in response", shipping.ErrCarrierInvalidResponse)
		}
		return &shipping.CarrierResponse{Accepted: results[0].toDomain()}, nil

	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", shipping.ErrCarrierUnavailable, resp.StatusCode)

	default:
		c.logger.Warn("carrier request failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(body, 512)),
		)
		return nil, fmt.Errorf("%w: HTTP %d", shipping.ErrCarrierRequestFailed, resp.StatusCode)
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
