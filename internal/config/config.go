package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3001"`
	Environment string `envconfig:"ENV" default:"development"`
	WebOrigin   string `envconfig:"WEB_ORIGIN" default:"http://localhost:3000"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Requests per client IP per minute; 0 disables limiting
	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"600"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"false"`

	// Webhooks
	WebhookTimeoutMs          int           `envconfig:"WEBHOOK_TIMEOUT_MS" default:"15000"`
	WebhookFanoutWorkers      int           `envconfig:"WEBHOOK_FANOUT_WORKERS" default:"1"`
	WebhookSignatureTolerance time.Duration `envconfig:"WEBHOOK_SIGNATURE_TOLERANCE" default:"5m"`
	WebhookTestURL            string        `envconfig:"WEBHOOK_TEST_URL" default:"http://localhost:3001/dev/receiver"`

	// Delivery gauges refreshed from the database
	MetricsInterval time.Duration `envconfig:"METRICS_INTERVAL" default:"1m"`
	MetricsWindow   time.Duration `envconfig:"METRICS_WINDOW" default:"24h"`

	// Dev receiver
	DevReceiverSecret string `envconfig:"DEV_RECEIVER_SECRET"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.WebhookTimeoutMs <= 0 {
		return fmt.Errorf("WEBHOOK_TIMEOUT_MS must be positive, got %d", c.WebhookTimeoutMs)
	}
	if c.WebhookFanoutWorkers < 1 {
		return fmt.Errorf("WEBHOOK_FANOUT_WORKERS must be at least 1, got %d", c.WebhookFanoutWorkers)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute)
	}
	if c.MetricsInterval <= 0 {
		return fmt.Errorf("METRICS_INTERVAL must be positive, got %s", c.MetricsInterval)
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1, got %d", c.DBMaxConns)
	}
	return nil
}

// WebhookTimeout is the per-delivery deadline.
func (c *Config) WebhookTimeout() time.Duration {
	return time.Duration(c.WebhookTimeoutMs) * time.Millisecond
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
