package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	appshipping "github.com/erp/carrier-transport/internal/application/shipping"
	"github.com/erp/carrier-transport/internal/domain/shipping"
	"github.com/erp/carrier-transport/internal/infrastructure/config"
	"github.com/erp/carrier-transport/internal/infrastructure/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer errors
var (
	ErrConsumerNoBrokers = errors.New("event: kafka brokers are required")
	ErrConsumerNoTopic   = errors.New("event: kafka topic is required")
	ErrRetriesExhausted  = errors.New("event: label request still failing after retries")
)

const (
	defaultMaxAttempts    = 3
	defaultRetryBackoff   = 2 * time.Second
	defaultRequestTimeout = 2 * time.Minute
)

// MessageReader is the subset of *kafka.Reader the consumer uses
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads label request envelopes from a Kafka topic and hands them to a
// LabelRequester. An offset is committed once the request completed or failed for
// good; a request failing on transport is retried and never committed.
type Consumer struct {
	reader         MessageReader
	requester      appshipping.LabelRequester
	logger         *zap.Logger
	maxAttempts    int
	retryBackoff   time.Duration
	requestTimeout time.Duration
}

// ConsumerOption is a functional option for Consumer
type ConsumerOption func(*Consumer)

// WithRetry sets how often a transport failure is retried in place and the pause between attempts
func WithRetry(maxAttempts int, backoff time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if backoff >= 0 {
			c.retryBackoff = backoff
		}
	}
}

// WithRequestTimeout bounds the handling of a single message
func WithRequestTimeout(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// NewConsumer creates a consumer group reader for cfg.Topic
func NewConsumer(cfg config.KafkaConfig, requester appshipping.LabelRequester, log *zap.Logger, opts ...ConsumerOption) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrConsumerNoBrokers
	}
	if cfg.Topic == "" {
		return nil, ErrConsumerNoTopic
	}
	if log == nil {
		log = zap.NewNop()
	}

	readerConfig := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: kafka.FirstOffset,
		ErrorLogger: kafka.LoggerFunc(log.Named("kafka").Sugar().Errorf),
	}
	if readerConfig.MinBytes <= 0 {
		readerConfig.MinBytes = 1
	}
	if readerConfig.MaxBytes <= 0 {
		readerConfig.MaxBytes = 10e6
	}

	return NewConsumerWithReader(kafka.NewReader(readerConfig), requester, log, opts...), nil
}

// NewConsumerWithReader creates a consumer around an existing reader
func NewConsumerWithReader(reader MessageReader, requester appshipping.LabelRequester, log *zap.Logger, opts ...ConsumerOption) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Consumer{
		reader:         reader,
		requester:      requester,
		logger:         log,
		maxAttempts:    defaultMaxAttempts,
		retryBackoff:   defaultRetryBackoff,
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consumes until ctx is cancelled, which returns nil. It returns
// ErrRetriesExhausted when a message keeps failing on transport; its offset is
// left uncommitted so the message is redelivered once the consumer restarts.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("label request consumer started")

	for {
		if ctx.Err() != nil {
			return nil
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("failed to fetch message", zap.Error(err))
			if !c.sleep(ctx) {
				return nil
			}
			continue
		}

		if err := c.handle(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to commit offset",
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
		}
	}
}

// handle returns an error only when the message must not be committed
func (c *Consumer) handle(ctx context.Context, m kafka.Message) error {
	log := c.logger.With(
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	req, err := DecodeEnvelope(m.Value)
	if err != nil {
		log.Error("discarding malformed label request", zap.Error(err))
		return nil
	}
	ctx, log = logger.WithLabelRequest(ctx, log, req.EventID, req.ShipmentID)

	for attempt := 1; ; attempt++ {
		result, err := c.request(ctx, req)
		if err == nil {
			log.Info("label request done", zap.String("outcome", string(result.Outcome)))
			return nil
		}

		if !shipping.IsTransportError(err) {
			// Not retryable: carrier missing, malformed setup or request
			log.Error("label request failed", zap.Error(err))
			return nil
		}

		if attempt >= c.maxAttempts {
			log.Error("label request failed on transport, leaving uncommitted",
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return fmt.Errorf("%w: event %d: %w", ErrRetriesExhausted, req.EventID, err)
		}

		log.Warn("label request failed on transport, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if !c.sleep(ctx) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) request(ctx context.Context, req shipping.LabelRequest) (*appshipping.LabelResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()
	return c.requester.RequestLabels(ctx, req)
}

// sleep waits for the retry backoff and reports false if ctx ended first
func (c *Consumer) sleep(ctx context.Context) bool {
	if c.retryBackoff <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(c.retryBackoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Close closes the underlying reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
