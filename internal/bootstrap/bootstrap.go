// Package bootstrap assembles the label pipeline from configuration.
// The server, the consumer and transportctl share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	appshipping "github.com/erp/carrier-transport/internal/application/shipping"
	"github.com/erp/carrier-transport/internal/domain/shared"
	"github.com/erp/carrier-transport/internal/domain/shipping"
	"github.com/erp/carrier-transport/internal/infrastructure/cache"
	"github.com/erp/carrier-transport/internal/infrastructure/carrierprofile"
	"github.com/erp/carrier-transport/internal/infrastructure/config"
	"github.com/erp/carrier-transport/internal/infrastructure/event"
	"github.com/erp/carrier-transport/internal/infrastructure/ims"
	"github.com/erp/carrier-transport/internal/infrastructure/lifecycle"
	"github.com/erp/carrier-transport/internal/infrastructure/logger"
	"github.com/erp/carrier-transport/internal/infrastructure/storage"
	"github.com/erp/carrier-transport/internal/infrastructure/telemetry"
	"github.com/erp/carrier-transport/internal/infrastructure/unifaun"
)

const meterName = "carrier-transport"

// Components is the assembled label pipeline
type Components struct {
	Config  *config.Config
	Logger  *zap.Logger
	Profile shipping.CarrierProfile

	Inventory    *ims.Client
	Labels       *appshipping.LabelService
	Provisioning *appshipping.ProvisioningService
	// Archive is nil when label archiving is disabled
	Archive *storage.S3LabelArchive

	// Requester is Labels behind duplicate suppression
	Requester          appshipping.LabelRequester
	IdempotencyMetrics *event.IdempotencyMetrics

	tracer *telemetry.TracerProvider
	meter  *telemetry.MeterProvider
	store  shared.IdempotencyStore
}

// NewLogger builds the process logger from configuration
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	logCfg := logger.ForEnvironment(cfg.App.Env, logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	logCfg.Service = cfg.App.Name
	logCfg.Version = cfg.App.Version
	return logger.New(logCfg)
}

// CarrierSetup returns the setup provisioning writes to the carrier record
func CarrierSetup(cfg config.CarrierConfig) shipping.CarrierSetup {
	return shipping.CarrierSetup{
		User:          cfg.User,
		Pin:           cfg.Pin,
		Test:          cfg.Test,
		BulkID:        cfg.BulkID,
		SenderQuickID: cfg.SenderQuickID,
		Media:         cfg.Media,
		PrintType:     cfg.PrintType,
	}
}

// New wires every component. Shutdown must be called on the result.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Components, error) {
	c := &Components{Config: cfg, Logger: log}
	if err := c.wire(ctx); err != nil {
		_ = c.Shutdown(context.Background())
		return nil, err
	}
	return c, nil
}

func (c *Components) wire(ctx context.Context) error {
	cfg, log := c.Config, c.Logger

	if err := c.initTelemetry(ctx); err != nil {
		return err
	}

	profiles, err := carrierprofile.Load(cfg.Carrier.ProfilesFile)
	if err != nil {
		return fmt.Errorf("load carrier profiles: %w", err)
	}
	if c.Profile, err = profiles.Get(cfg.Carrier.Profile); err != nil {
		return err
	}

	c.Inventory, err = ims.NewClient(&ims.Config{
		AuthURL:        cfg.IMS.AuthURL,
		APIURL:         cfg.IMS.APIURL,
		ClientID:       cfg.IMS.ClientID,
		ClientSecret:   cfg.IMS.ClientSecret,
		APIKey:         cfg.IMS.APIKey,
		TimeoutSeconds: int(cfg.IMS.Timeout.Seconds()),
	}, ims.WithLogger(log.Named("ims")))
	if err != nil {
		return fmt.Errorf("create ims client: %w", err)
	}

	carrier, err := unifaun.NewClient(&unifaun.Config{
		BaseURL:        cfg.Carrier.BaseURL,
		TimeoutSeconds: int(cfg.Carrier.Timeout.Seconds()),
	}, log.Named("unifaun"))
	if err != nil {
		return fmt.Errorf("create carrier client: %w", err)
	}

	labelOpts := []appshipping.LabelServiceOption{
		appshipping.WithWriteConcurrency(cfg.Shipping.WriteConcurrency),
	}
	if c.meter.IsEnabled() {
		metrics, err := telemetry.NewLabelMetrics(telemetry.LabelMetricsConfig{Meter: c.Meter()})
		if err != nil {
			return err
		}
		labelOpts = append(labelOpts, appshipping.WithLabelMetrics(metrics))
	}
	if cfg.Storage.Enabled {
		c.Archive, err = storage.NewS3LabelArchive(&cfg.Storage, storage.WithLogger(log.Named("archive")))
		if err != nil {
			return fmt.Errorf("create label archive: %w", err)
		}
		labelOpts = append(labelOpts, appshipping.WithLabelArchive(c.Archive))
	}

	c.Labels, err = appshipping.NewLabelService(c.Inventory, carrier, c.Profile, log, labelOpts...)
	if err != nil {
		return err
	}

	c.Requester = c.Labels
	if cfg.Idempotency.Enabled {
		c.store, err = cache.NewIdempotencyStoreFactory(cfg.Idempotency, cfg.Redis, cache.WithLogger(log)).CreateStore()
		if err != nil {
			return err
		}
		c.IdempotencyMetrics = &event.IdempotencyMetrics{}
		c.Requester = event.NewIdempotentRequester(c.Labels, c.store, log,
			event.WithIdempotencyConfig(shared.IdempotencyConfig{TTL: cfg.Idempotency.TTL, Enabled: true}),
			event.WithIdempotencyMetrics(c.IdempotencyMetrics),
		)
	}

	c.Provisioning = appshipping.NewProvisioningService(
		c.Inventory,
		c.Profile,
		CarrierSetup(cfg.Carrier),
		lifecycle.NewResponder(lifecycle.WithLogger(log.Named("lifecycle"))),
		log,
	)

	log.Info("label pipeline ready",
		zap.String("carrier", c.Profile.CarrierName),
		zap.Bool("archive", c.Archive != nil),
		zap.Bool("idempotency", c.store != nil),
	)
	return nil
}

func (c *Components) initTelemetry(ctx context.Context) error {
	tel := c.Config.Telemetry
	var err error
	c.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tel.Enabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		SamplingRatio:     tel.SamplingRatio,
		ServiceName:       tel.ServiceName,
		ServiceVersion:    c.Config.App.Version,
		Insecure:          tel.Insecure,
	}, c.Logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	c.meter, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tel.Enabled && tel.MetricsEnabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		ExportInterval:    tel.ExportInterval,
		ServiceName:       tel.ServiceName,
		ServiceVersion:    c.Config.App.Version,
		Insecure:          tel.Insecure,
	}, c.Logger)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	return nil
}

// Meter returns the service meter, nil when metrics are disabled
func (c *Components) Meter() metric.Meter {
	if c.meter == nil || !c.meter.IsEnabled() {
		return nil
	}
	return c.meter.Meter(meterName)
}

// TracingEnabled reports whether spans are exported
func (c *Components) TracingEnabled() bool {
	return c.tracer != nil && c.tracer.IsEnabled()
}

// Shutdown flushes telemetry and releases the idempotency store
func (c *Components) Shutdown(ctx context.Context) error {
	var errs []error
	if c.store != nil {
		errs = append(errs, c.store.Close())
	}
	if c.meter != nil {
		errs = append(errs, c.meter.Shutdown(ctx))
	}
	if c.tracer != nil {
		errs = append(errs, c.tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
