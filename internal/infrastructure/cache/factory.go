package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/carrier-transport/internal/domain/shared"
	"github.com/erp/carrier-transport/internal/infrastructure/config"
)

// IdempotencyStoreFactory creates idempotency stores based on configuration
type IdempotencyStoreFactory struct {
	idempotency           config.IdempotencyConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	connectRedis          func(config.RedisConfig) (shared.IdempotencyStore, error)
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether a redis backend falls back to memory when Redis is unreachable.
// Default is false.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(idempotency config.IdempotencyConfig, redisCfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		idempotency: idempotency,
		redisConfig: redisCfg,
		logger:      zap.NewNop(),
		connectRedis: func(cfg config.RedisConfig) (shared.IdempotencyStore, error) {
			return NewRedisIdempotencyStore(cfg)
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore creates the store named by idempotency.backend
func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	switch f.idempotency.Backend {
	case "", "memory":
		f.logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	case "redis":
		store, err := f.connectRedis(f.redisConfig)
		if err == nil {
			f.logger.Info("using Redis idempotency store", zap.String("addr", f.redisConfig.Addr()))
			return store, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
			"Redelivered triggers may be processed twice across instances.",
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", f.idempotency.Backend)
	}
}
