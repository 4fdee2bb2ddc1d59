package unifaun

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/carrier-transport/internal/domain/shipping"
)

func testSetup() *shipping.CarrierSetup {
	return &shipping.CarrierSetup{User: "ABCDEF", Pin: "1234", Test: true}
}

func testRequest() *shipping.CarrierShipmentRequest {
	height := decimal.RequireFromString("0.1")
	req := &shipping.CarrierShipmentRequest{
		Shipment: shipping.CarrierShipment{
			OrderNo: "S-1001",
			Test:    true,
			Service: shipping.Service{ID: "P19DK", Addons: []shipping.Addon{{ID: "PUPOPT"}}},
			Receiver: shipping.Party{
				Name: "Ann Andersson", Address1: "Vestergade 1", City: "Aarhus", Country: "DK", ZipCode: "8000",
			},
			Sender: shipping.Party{
				Name: "Acme AB", Address1: "Storgatan 1", City: "Stockholm", Country: "SE", ZipCode: "11122", QuickID: "1",
			},
			Agent: &shipping.Agent{QuickID: "PP-1"},
			Parcels: []shipping.Parcel{
				{Copies: 1, Weight: decimal.RequireFromString("1.25"), Height: &height, Reference: "501"},
				{Copies: 1, Weight: decimal.NewFromInt(2), Reference: "502"},
			},
		},
	}
	for i := range req.PrintConfig.Targets {
		req.PrintConfig.Targets[i].Type = "pdf"
	}
	req.PrintConfig.Targets[0].Media = "thermo-190"
	req.PrintConfig.Targets[0].Options = []shipping.PrintOption{{Key: "mode", Value: "DIRECT"}}
	return req
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c, err := NewClient(&Config{BaseURL: server.URL}, nil)
	require.NoError(t, err)
	return c
}

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantURL string
		wantErr error
	}{
		{name: "defaults", config: &Config{}, wantURL: DefaultBaseURL},
		{name: "trailing slash added", config: &Config{BaseURL: "http://localhost:8080/v1"}, wantURL: "http://localhost:8080/v1/"},
		{name: "not http", config: &Config{BaseURL: "ftp://example.com"}, wantErr: ErrConfigInvalidBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, tt.config.BaseURL)
			assert.Positive(t, tt.config.TimeoutSeconds)
		})
	}
}

// ---------------------------------------------------------------------------
// Wire format Tests
// ---------------------------------------------------------------------------

func TestNewShipmentRequest_WireFormat(t *testing.T) {
	raw, err := json.Marshal(NewShipmentRequest(testRequest()))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	pc := body["printConfig"].(map[string]any)
	assert.Equal(t, "thermo-190", pc["target1Media"])
	assert.Equal(t, "pdf", pc["target1Type"])
	assert.Equal(t, float64(0), pc["target1XOffset"])
	assert.Equal(t, []any{map[string]any{"key": "mode", "value": "DIRECT"}}, pc["target1Options"])
	for _, n := range []string{"2", "3", "4"} {
		media, ok := pc["target"+n+"Media"]
		assert.True(t, ok, "target%s media present", n)
		assert.Nil(t, media)
		assert.Equal(t, "pdf", pc["target"+n+"Type"])
		assert.NotContains(t, pc, "target"+n+"Options")
	}

	shipment := body["shipment"].(map[string]any)
	assert.Equal(t, "S-1001", shipment["orderNo"])
	assert.Equal(t, true, shipment["test"])
	assert.NotContains(t, shipment, "bulkId")
	assert.Equal(t, map[string]any{"id": "P19DK", "addons": []any{map[string]any{"id": "PUPOPT"}}}, shipment["service"])
	assert.Equal(t, map[string]any{"quickId": "PP-1"}, shipment["agent"])

	receiver := shipment["receiver"].(map[string]any)
	assert.Equal(t, "8000", receiver["zipcode"])
	assert.Equal(t, "Vestergade 1", receiver["address1"])
	sender := shipment["sender"].(map[string]any)
	assert.Equal(t, "1", sender["quickId"])

	parcels := shipment["parcels"].([]any)
	require.Len(t, parcels, 2)
	first := parcels[0].(map[string]any)
	assert.Equal(t, 1.25, first["weight"])
	assert.Equal(t, 0.1, first["height"])
	assert.NotContains(t, first, "width")
	assert.Equal(t, "501", first["reference"])
	second := parcels[1].(map[string]any)
	assert.Equal(t, float64(2), second["weight"])
	assert.NotContains(t, second, "height")
}

func TestNewShipmentRequest_NoAgent(t *testing.T) {
	req := testRequest()
	req.Shipment.Agent = nil
	req.Shipment.Service.Addons = nil

	raw, err := json.Marshal(NewShipmentRequest(req))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"agent"`)
	assert.Contains(t, string(raw), `"addons":[]`)
}

// ---------------------------------------------------------------------------
// Client Tests
// ---------------------------------------------------------------------------

func TestClient_CreateShipment_Accepted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/shipments", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("returnFile"))
		assert.Equal(t, "Bearer ABCDEF-1234", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Contains(t, string(raw), `"printConfig"`)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{
			"id": "UNIF-77",
			"prints": [{"data": "JVBERi0="}],
			"parcels": [
				{"parcelNo": "00370000000000001", "reference": "501"},
				{"parcelNo": "00370000000000002", "reference": "502"}
			]
		}]`))
	})

	resp, err := c.CreateShipment(context.Background(), testSetup(), testRequest())
	require.NoError(t, err)
	require.False(t, resp.IsRejected())
	assert.Equal(t, "UNIF-77", resp.Accepted.ID)
	assert.Equal(t, []shipping.Print{{Data: "JVBERi0="}}, resp.Accepted.Prints)
	assert.Equal(t, []shipping.ParcelResult{
		{ParcelNo: "00370000000000001", Reference: "501"},
		{ParcelNo: "00370000000000002", Reference: "502"},
	}, resp.Accepted.Parcels)
}

func TestClient_CreateShipment_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`[
			{"field": "receiver.zipcode", "message": "Invalid zipcode"},
			{"field": "parcels[0].weight", "message": "Too heavy"}
		]`))
	})

	resp, err := c.CreateShipment(context.Background(), testSetup(), testRequest())
	require.NoError(t, err)
	assert.True(t, resp.IsRejected())
	assert.Equal(t, []shipping.FieldError{
		{Field: "receiver.zipcode", Message: "Invalid zipcode"},
		{Field: "parcels[0].weight", Message: "Too heavy"},
	}, resp.Rejected)
}

func TestClient_CreateShipment_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"bad credentials"}`, wantErr: shipping.ErrCarrierRequestFailed},
		{name: "bad request", status: http.StatusBadRequest, body: `{}`, wantErr: shipping.ErrCarrierRequestFailed},
		{name: "server error", status: http.StatusBadGateway, body: ``, wantErr: shipping.ErrCarrierUnavailable},
		{name: "empty result array", status: http.StatusOK, body: `[]`, wantErr: shipping.ErrCarrierInvalidResponse},
		{name: "malformed result", status: http.StatusOK, body: `{"id":1}`, wantErr: shipping.ErrCarrierInvalidResponse},
		{name: "malformed rejection", status: http.StatusUnprocessableEntity, body: `oops`, wantErr: shipping.ErrCarrierInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			resp, err := c.CreateShipment(context.Background(), testSetup(), testRequest())
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, shipping.IsTransportError(err))
		})
	}
}

func TestClient_CreateShipment_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	c, err := NewClient(&Config{BaseURL: server.URL}, nil)
	require.NoError(t, err)
	server.Close()

	_, err = c.CreateShipment(context.Background(), testSetup(), testRequest())
	assert.ErrorIs(t, err, shipping.ErrCarrierUnavailable)
}
