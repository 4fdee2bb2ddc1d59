// Package lifecycle reports the outcome of infrastructure lifecycle requests
// back to the pre-signed URL the request named.
package lifecycle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	appshipping "github.com/erp/carrier-transport/internal/application/shipping"
)

// ErrResponseRejected is returned when the response URL does not accept the report
var ErrResponseRejected = errors.New("lifecycle: response rejected")

const defaultTimeout = 30 * time.Second

// Responder uploads lifecycle responses with a plain PUT.
// The URL is pre-signed without a content type, so none is sent.
type Responder struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Responder
type Option func(*Responder)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(r *Responder) {
		r.httpClient = c
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Responder) {
		r.logger = logger
	}
}

// NewResponder creates a Responder
func NewResponder(opts ...Option) *Responder {
	r := &Responder{
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond PUTs resp as JSON to responseURL
func (r *Responder) Respond(ctx context.Context, responseURL string, resp appshipping.LifecycleResponse) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal lifecycle response: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, responseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build lifecycle response: %w", err)
	}
	req.Header.Set("Content-Type", "")
	req.ContentLength = int64(len(body))

	httpResp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send lifecycle response: %w", err)
	}
	defer httpResp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(httpResp.Body, 1<<16))

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrResponseRejected, httpResp.StatusCode)
	}

	r.logger.Info("lifecycle response sent",
		zap.String("status", resp.Status),
		zap.String("request_id", resp.RequestID),
		zap.String("logical_resource_id", resp.LogicalResourceID),
	)
	return nil
}

var _ appshipping.LifecycleResponder = (*Responder)(nil)
