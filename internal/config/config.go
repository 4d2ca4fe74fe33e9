package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the whole application configuration.
// Populated from environment variables.
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Payment     PaymentConfig
	Webhook     WebhookConfig
	Idempotency IdempotencyConfig
	Poller      PollerConfig
	Worker      WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

// =====================================================
// PAYMENT PROCESSING
// =====================================================

type PaymentConfig struct {
	// Probability of simulated success when not in test mode.
	SuccessRate float64

	// Deterministic overrides for integration tests.
	TestMode           bool
	TestPaymentSuccess bool

	// Simulated settlement latency, applied before the settlement
	// transaction opens. Zero outside test mode unless configured.
	ProcessingDelay time.Duration
}

// =====================================================
// WEBHOOK DELIVERY
// =====================================================

type WebhookConfig struct {
	MaxRetries int
	Timeout    time.Duration

	// Shortened retry schedule (2^n seconds instead of 2^n minutes)
	// for deterministic integration tests.
	TestRetryIntervals bool
}

type IdempotencyConfig struct {
	TTL time.Duration
}

type PollerConfig struct {
	Interval time.Duration
	Batch    int
}

type WorkerConfig struct {
	PaymentWorkers int
	WebhookWorkers int
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Paygate API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "paygate"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Payment: PaymentConfig{
			SuccessRate:        getEnvFloat("PAYMENT_SUCCESS_RATE", 0.9),
			TestMode:           getEnvBool("TEST_MODE", false),
			TestPaymentSuccess: getEnvBool("TEST_PAYMENT_SUCCESS", true),
		},
		Webhook: WebhookConfig{
			MaxRetries:         getEnvInt("WEBHOOK_MAX_RETRIES", 5),
			Timeout:            time.Duration(getEnvInt("WEBHOOK_TIMEOUT_MS", 5000)) * time.Millisecond,
			TestRetryIntervals: getEnvBool("WEBHOOK_RETRY_INTERVALS_TEST", false),
		},
		Idempotency: IdempotencyConfig{
			TTL: time.Duration(getEnvInt("IDEMPOTENCY_TTL_HOURS", 24)) * time.Hour,
		},
		Poller: PollerConfig{
			Interval: time.Duration(getEnvInt("POLL_INTERVAL_MS", 30000)) * time.Millisecond,
			Batch:    getEnvInt("POLL_BATCH", 100),
		},
		Worker: WorkerConfig{
			PaymentWorkers: getEnvInt("PAYMENT_WORKERS", 4),
			WebhookWorkers: getEnvInt("WEBHOOK_WORKERS", 8),
		},
	}

	cfg.Payment.ProcessingDelay = processingDelay(cfg.Payment.TestMode)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks config sanity before the app starts.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.Payment.TestMode {
			return fmt.Errorf("TEST_MODE must not be enabled in production")
		}
	}

	if c.Payment.SuccessRate < 0 || c.Payment.SuccessRate > 1 {
		return fmt.Errorf("PAYMENT_SUCCESS_RATE must be in [0,1], got %f", c.Payment.SuccessRate)
	}
	if c.Webhook.MaxRetries < 1 {
		return fmt.Errorf("WEBHOOK_MAX_RETRIES must be at least 1")
	}
	if c.Poller.Batch < 1 {
		return fmt.Errorf("POLL_BATCH must be at least 1")
	}

	return nil
}

// processingDelay returns the simulated settlement latency. Production
// takes PROCESSING_DELAY_MS and defaults to no artificial delay; test
// mode takes TEST_PROCESSING_DELAY_MS with a 2 s default so integration
// tests can observe the pending state.
func processingDelay(testMode bool) time.Duration {
	if testMode {
		return time.Duration(getEnvInt("TEST_PROCESSING_DELAY_MS", 2000)) * time.Millisecond
	}
	return time.Duration(getEnvInt("PROCESSING_DELAY_MS", 0)) * time.Millisecond
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
