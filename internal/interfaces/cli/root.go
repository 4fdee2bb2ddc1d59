// Package cli implements transportctl, the operator tool for the label pipeline.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	appshipping "github.com/erp/carrier-transport/internal/application/shipping"
	"github.com/erp/carrier-transport/internal/bootstrap"
	"github.com/erp/carrier-transport/internal/infrastructure/config"
)

// Provisioner writes the carrier record
type Provisioner interface {
	Provision(ctx context.Context) error
}

// Previewer builds a carrier request without submitting it
type Previewer interface {
	Preview(ctx context.Context, shipmentID int64) (*appshipping.PreviewResult, error)
}

// ArchiveLinker presigns downloads of archived labels
type ArchiveLinker interface {
	DownloadURL(ctx context.Context, location string) (string, time.Time, error)
}

// Services are what the commands act on
type Services struct {
	Provisioner Provisioner
	Previewer   Previewer
	Requester   appshipping.LabelRequester
	// Archive is nil when label archiving is disabled
	Archive ArchiveLinker
	Close   func(ctx context.Context) error
}

// Loader builds the services for one command run
type Loader func(ctx context.Context) (*Services, error)

// NewRootCmd returns the transportctl root command
func NewRootCmd(load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "transportctl",
		Short:         "Operate the shipping label pipeline",
		Long:          "transportctl provisions the carrier record and runs label requests by hand, outside the event trigger.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newProvisionCmd(load))
	cmd.AddCommand(newPreviewCmd(load))
	cmd.AddCommand(newRequestCmd(load))
	cmd.AddCommand(newArchiveURLCmd(load))
	return cmd
}

// Execute runs transportctl against the configured environment
func Execute() error {
	return NewRootCmd(loadFromConfig).Execute()
}

func loadFromConfig(ctx context.Context) (*Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	c, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	svc := &Services{
		Provisioner: c.Provisioning,
		Previewer:   c.Labels,
		// Operator runs bypass duplicate suppression
		Requester: c.Labels,
		Close: func(ctx context.Context) error {
			_ = log.Sync()
			return c.Shutdown(ctx)
		},
	}
	if c.Archive != nil {
		svc.Archive = c.Archive
	}
	return svc, nil
}

// withServices loads the services, runs fn and releases them
func withServices(cmd *cobra.Command, load Loader, fn func(ctx context.Context, svc *Services) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := load(ctx)
	if err != nil {
		return err
	}
	if svc.Close != nil {
		defer func() { _ = svc.Close(context.Background()) }()
	}
	return fn(ctx, svc)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
