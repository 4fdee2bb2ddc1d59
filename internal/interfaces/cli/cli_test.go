package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appshipping "github.com/erp/carrier-transport/internal/application/shipping"
	"github.com/erp/carrier-transport/internal/domain/shipping"
	"github.com/erp/carrier-transport/internal/interfaces/cli"
)

type fakeProvisioner struct {
	err   error
	calls int
}

func (f *fakeProvisioner) Provision(context.Context) error {
	f.calls++
	return f.err
}

type fakePreviewer struct {
	result *appshipping.PreviewResult
	gotID  int64
}

func (f *fakePreviewer) Preview(_ context.Context, shipmentID int64) (*appshipping.PreviewResult, error) {
	f.gotID = shipmentID
	return f.result, nil
}

type fakeRequester struct {
	got shipping.LabelRequest
	err error
}

func (f *fakeRequester) RequestLabels(_ context.Context, req shipping.LabelRequest) (*appshipping.LabelResult, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &appshipping.LabelResult{EventID: req.EventID, ShipmentID: req.ShipmentID, Outcome: appshipping.OutcomeLabelled, Labels: 1}, nil
}

type fakeArchive struct{}

func (fakeArchive) DownloadURL(_ context.Context, location string) (string, time.Time, error) {
	return "https://labels.example.com/" + location + "?signed", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), nil
}

type harness struct {
	svc    *cli.Services
	loads  int
	closed bool
}

func newHarness() *harness {
	h := &harness{}
	h.svc = &cli.Services{
		Provisioner: &fakeProvisioner{},
		Previewer:   &fakePreviewer{result: &appshipping.PreviewResult{CarrierName: "Postnord", Service: "19"}},
		Requester:   &fakeRequester{},
		Close: func(context.Context) error {
			h.closed = true
			return nil
		},
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd(func(context.Context) (*cli.Services, error) {
		h.loads++
		return h.svc, nil
	})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestProvisionCommand(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "provision")

	require.NoError(t, err)
	assert.Contains(t, out, "carrier provisioned")
	assert.Equal(t, 1, h.svc.Provisioner.(*fakeProvisioner).calls)
	assert.True(t, h.closed)
}

func TestProvisionCommand_Failure(t *testing.T) {
	h := newHarness()
	h.svc.Provisioner = &fakeProvisioner{err: shipping.ErrCarrierSetupInvalid}

	_, err := h.run(t, "provision")

	assert.ErrorIs(t, err, shipping.ErrCarrierSetupInvalid)
	assert.True(t, h.closed)
}

func TestPreviewCommand(t *testing.T) {
	t.Run("prints the request", func(t *testing.T) {
		h := newHarness()

		out, err := h.run(t, "preview", "--shipment", "42")

		require.NoError(t, err)
		assert.Equal(t, int64(42), h.svc.Previewer.(*fakePreviewer).gotID)
		var preview appshipping.PreviewResult
		require.NoError(t, json.Unmarshal([]byte(out), &preview))
		assert.Equal(t, "Postnord", preview.CarrierName)
	})

	t.Run("rejected shipment fails", func(t *testing.T) {
		h := newHarness()
		h.svc.Previewer = &fakePreviewer{result: &appshipping.PreviewResult{
			Rejected: []shipping.FieldError{{Field: "receiver.zipcode", Message: "missing"}},
		}}

		out, err := h.run(t, "preview", "--shipment", "42")

		assert.Error(t, err)
		assert.Contains(t, out, "receiver.zipcode")
	})

	t.Run("shipment flag is required", func(t *testing.T) {
		h := newHarness()

		_, err := h.run(t, "preview")

		assert.Error(t, err)
		assert.Zero(t, h.loads)
	})
}

func TestRequestCommand(t *testing.T) {
	t.Run("runs the request", func(t *testing.T) {
		h := newHarness()

		out, err := h.run(t, "request", "--shipment", "42", "--event", "1001", "--context", "7", "--device", "packing-2")

		require.NoError(t, err)
		assert.Equal(t, shipping.LabelRequest{ShipmentID: 42, EventID: 1001, ContextID: 7, DeviceName: "packing-2"},
			h.svc.Requester.(*fakeRequester).got)
		assert.Contains(t, out, `"outcome": "labelled"`)
	})

	t.Run("transport failure", func(t *testing.T) {
		h := newHarness()
		h.svc.Requester = &fakeRequester{err: shipping.ErrCarrierUnavailable}

		_, err := h.run(t, "request", "--shipment", "42", "--event", "1001")

		assert.ErrorIs(t, err, shipping.ErrCarrierUnavailable)
	})

	t.Run("event flag is required", func(t *testing.T) {
		h := newHarness()

		_, err := h.run(t, "request", "--shipment", "42")

		assert.Error(t, err)
		assert.Zero(t, h.loads)
	})
}

func TestArchiveURLCommand(t *testing.T) {
	t.Run("presigns", func(t *testing.T) {
		h := newHarness()
		h.svc.Archive = fakeArchive{}

		out, err := h.run(t, "archive-url", "--location", "s3://labels/a.pdf")

		require.NoError(t, err)
		assert.Contains(t, out, "https://labels.example.com/s3://labels/a.pdf?signed")
		assert.Contains(t, out, "2026-01-02T03:04:05Z")
	})

	t.Run("archive disabled", func(t *testing.T) {
		h := newHarness()

		_, err := h.run(t, "archive-url", "--location", "s3://labels/a.pdf")

		assert.Error(t, err)
	})
}

func TestLoaderError(t *testing.T) {
	cmd := cli.NewRootCmd(func(context.Context) (*cli.Services, error) {
		return nil, errors.New("no config")
	})
	cmd.SetArgs([]string{"provision"})

	assert.EqualError(t, cmd.Execute(), "no config")
}
