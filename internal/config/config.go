// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration, shared by the API server and the
// notifier worker.
type Config struct {
	// HTTP server
	Port    string `env:"PORT" envDefault:"8080"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Database
	DBPath string `env:"SQLITE_DB_PATH" envDefault:"./data/fairsplit.db"`

	// Auth
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	ResetTTL  time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`

	// Receipts
	ReceiptTTL   time.Duration `env:"RECEIPT_TTL" envDefault:"30m"`
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	GeminiModel  string        `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`

	// AMQP. Empty URL disables event publishing.
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"fairsplit"`
	AMQPQueue    string `env:"AMQP_QUEUE" envDefault:"ledger_events"`

	// SMTP. Empty host disables outgoing mail.
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	var problems []string

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	} else if len(c.JWTSecret) < 32 {
		problems = append(problems, "JWT_SECRET must be at least 32 characters")
	}
	if c.DBPath == "" {
		problems = append(problems, "SQLITE_DB_PATH cannot be empty")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}
	if c.ReceiptTTL <= 0 {
		problems = append(problems, "RECEIPT_TTL must be positive")
	}
	if c.SMTPHost != "" && c.MailFrom == "" {
		problems = append(problems, "MAIL_FROM is required when SMTP_HOST is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// MailEnabled reports whether outgoing mail is configured.
func (c *Config) MailEnabled() bool { return c.SMTPHost != "" }

// EventsEnabled reports whether a message broker is configured.
func (c *Config) EventsEnabled() bool { return c.AMQPURL != "" }
