package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/erp/carrier-transport/internal/bootstrap"
	"github.com/erp/carrier-transport/internal/infrastructure/config"
	"github.com/erp/carrier-transport/internal/interfaces/http/handler"
	"github.com/erp/carrier-transport/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting carrier transport server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()
	components, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to wire label pipeline", zap.Error(err))
	}
	defer func() {
		if err := components.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", zap.Error(err))
		}
	}()

	if components.Archive != nil {
		if err := components.Archive.EnsureBucket(ctx); err != nil {
			log.Fatal("Label archive bucket unavailable", zap.Error(err))
		}
	}

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: components.TracingEnabled(),
		Meter:          components.Meter(),
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, log)
	if err != nil {
		log.Fatal("Failed to create HTTP engine", zap.Error(err))
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, components.Profile.CarrierName, components.IdempotencyMetrics)
	engine.GET("/health", systemHandler.Health)

	router.NewRouter(engine).
		Register(handler.NewLabelHandler(components.Requester)).
		Register(handler.NewLifecycleHandler(components.Provisioning)).
		Register(systemHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
