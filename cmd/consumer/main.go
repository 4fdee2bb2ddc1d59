package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/erp/carrier-transport/internal/bootstrap"
	"github.com/erp/carrier-transport/internal/infrastructure/config"
	"github.com/erp/carrier-transport/internal/infrastructure/event"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	if err := run(cfg, log); err != nil {
		if errors.Is(err, event.ErrRetriesExhausted) {
			log.Error("Stopping with the failed request uncommitted", zap.Error(err))
		} else {
			log.Error("Consumer stopped", zap.Error(err))
		}
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("Consumer exited gracefully")
	_ = log.Sync()
}

// run consumes until the context is cancelled or a request exhausts its retries
func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	components, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("wire label pipeline: %w", err)
	}
	defer func() {
		if err := components.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", zap.Error(err))
		}
	}()

	if components.Archive != nil {
		if err := components.Archive.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("label archive bucket unavailable: %w", err)
		}
	}

	consumer, err := event.NewConsumer(cfg.Kafka, components.Requester, log,
		event.WithRequestTimeout(cfg.Shipping.RequestTimeout),
	)
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			log.Error("Error closing consumer", zap.Error(err))
		}
	}()

	log.Info("Consuming label requests",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group_id", cfg.Kafka.GroupID),
	)
	return consumer.Run(ctx)
}
