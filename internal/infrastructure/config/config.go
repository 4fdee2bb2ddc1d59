package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Log         LogConfig
	IMS         IMSConfig
	Carrier     CarrierConfig
	Shipping    ShippingConfig
	Idempotency IdempotencyConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Storage     StorageConfig
	HTTP        HTTPConfig
	Telemetry   TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	Version string
}

// IMSConfig holds the inventory system API settings
type IMSConfig struct {
	AuthURL      string
	APIURL       string
	ClientID     string
	ClientSecret string
	APIKey       string
	Timeout      time.Duration
}

// CarrierConfig holds carrier API settings and the setup written by provisioning
type CarrierConfig struct {
	Profile      string // carrier profile name, see carrierprofile
	ProfilesFile string // optional YAML file replacing the built-in profiles
	BaseURL      string
	Timeout      time.Duration

	// Setup fields; only read by provisioning
	User          string
	Pin           string
	Test          bool
	BulkID        string
	SenderQuickID string
	Media         string
	PrintType     string
}

// ShippingConfig holds label request processing settings
type ShippingConfig struct {
	WriteConcurrency int           // concurrent inventory writes per request
	RequestTimeout   time.Duration // upper bound for one label request
}

// IdempotencyConfig holds duplicate-trigger suppression settings
type IdempotencyConfig struct {
	Enabled bool
	Backend string // memory, redis
	TTL     time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig holds the label request consumer settings
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	MinBytes int
	MaxBytes int
	MaxWait  time.Duration
}

// StorageConfig holds the label archive object storage settings
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	Prefix            string        // key prefix inside the bucket
	PresignExpiration time.Duration // lifetime of archive download links
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	MetricsEnabled    bool    // Whether to export metrics
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	ExportInterval    time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with TRANSPORT_ prefix (e.g., TRANSPORT_IMS_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("TRANSPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			Version: v.GetString("app.version"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		IMS: IMSConfig{
			AuthURL:      v.GetString("ims.auth_url"),
			APIURL:       v.GetString("ims.api_url"),
			ClientID:     v.GetString("ims.client_id"),
			ClientSecret: v.GetString("ims.client_secret"),
			APIKey:       v.GetString("ims.api_key"),
			Timeout:      v.GetDuration("ims.timeout"),
		},
		Carrier: CarrierConfig{
			Profile:       v.GetString("carrier.profile"),
			ProfilesFile:  v.GetString("carrier.profiles_file"),
			BaseURL:       v.GetString("carrier.base_url"),
			Timeout:       v.GetDuration("carrier.timeout"),
			User:          v.GetString("carrier.user"),
			Pin:           v.GetString("carrier.pin"),
			Test:          v.GetBool("carrier.test"),
			BulkID:        v.GetString("carrier.bulk_id"),
			SenderQuickID: v.GetString("carrier.sender_quick_id"),
			Media:         v.GetString("carrier.media"),
			PrintType:     v.GetString("carrier.print_type"),
		},
		Shipping: ShippingConfig{
			WriteConcurrency: v.GetInt("shipping.write_concurrency"),
			RequestTimeout:   v.GetDuration("shipping.request_timeout"),
		},
		Idempotency: IdempotencyConfig{
			Enabled: v.GetBool("idempotency.enabled"),
			Backend: v.GetString("idempotency.backend"),
			TTL:     v.GetDuration("idempotency.ttl"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Kafka: KafkaConfig{
			Brokers:  splitList(v.GetStringSlice("kafka.brokers")),
			Topic:    v.GetString("kafka.topic"),
			GroupID:  v.GetString("kafka.group_id"),
			MinBytes: v.GetInt("kafka.min_bytes"),
			MaxBytes: v.GetInt("kafka.max_bytes"),
			MaxWait:  v.GetDuration("kafka.max_wait"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			Prefix:            v.GetString("storage.prefix"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: splitList(v.GetStringSlice("http.trusted_proxies")),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList flattens comma-separated entries, as lists arrive from the environment
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "carrier-transport"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "dev"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.IMS.AuthURL == "" {
		cfg.IMS.AuthURL = "https://auth.thetis-ims.com/oauth2/"
	}
	if cfg.IMS.APIURL == "" {
		cfg.IMS.APIURL = "https://api.thetis-ims.com/2/"
	}
	if cfg.IMS.Timeout == 0 {
		cfg.IMS.Timeout = 30 * time.Second
	}
	if cfg.Carrier.Profile == "" {
		cfg.Carrier.Profile = "postnord"
	}
	if cfg.Carrier.BaseURL == "" {
		cfg.Carrier.BaseURL = "https://api.unifaun.com/rs-extapi/v1/"
	}
	if cfg.Carrier.Timeout == 0 {
		cfg.Carrier.Timeout = 60 * time.Second
	}
	if cfg.Shipping.WriteConcurrency == 0 {
		cfg.Shipping.WriteConcurrency = 4
	}
	if cfg.Shipping.RequestTimeout == 0 {
		cfg.Shipping.RequestTimeout = 2 * time.Minute
	}
	if cfg.Idempotency.Backend == "" {
		cfg.Idempotency.Backend = "memory"
	}
	if cfg.Idempotency.TTL == 0 {
		cfg.Idempotency.TTL = 24 * time.Hour
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "shipping-label-requests"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "carrier-transport"
	}
	if cfg.Kafka.MinBytes == 0 {
		cfg.Kafka.MinBytes = 1
	}
	if cfg.Kafka.MaxBytes == 0 {
		cfg.Kafka.MaxBytes = 10 << 20 // 10MB
	}
	if cfg.Kafka.MaxWait == 0 {
		cfg.Kafka.MaxWait = time.Second
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	// Label requests wait for the carrier and every write-back
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 150 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Shipping.WriteConcurrency < 1 {
		return fmt.Errorf("shipping.write_concurrency must be positive")
	}
	switch c.Idempotency.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("idempotency.backend must be 'memory' or 'redis', got %q", c.Idempotency.Backend)
	}
	if c.Storage.Enabled {
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required when storage is enabled")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("storage.access_key and storage.secret_key are required when storage is enabled")
		}
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.IMS.ClientID == "" || c.IMS.ClientSecret == "" {
			return fmt.Errorf("ims.client_id and ims.client_secret are required in production")
		}
		if c.IMS.APIKey == "" {
			return fmt.Errorf("ims.api_key is required in production")
		}
		if c.Idempotency.Enabled && c.Idempotency.Backend == "memory" {
			return fmt.Errorf("idempotency.backend must be 'redis' in production (memory is per process)")
		}
		if c.Telemetry.Insecure {
			return fmt.Errorf("telemetry.insecure must be false in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}
