package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	JWTSecret string `env:"JWT_SECRET"`

	SessionTTL     time.Duration `env:"SESSION_TTL,      default=1h"`
	SessionWorkers int           `env:"SESSION_WORKERS,  default=4"`
	LoginRateLimit float64       `env:"LOGIN_RATE_LIMIT, default=5"`
	// AuthAutoConfirm marks new identities as email-confirmed on sign-up.
	AuthAutoConfirm bool `env:"AUTH_AUTO_CONFIRM, default=false"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Mail      MailConfig
	Bootstrap BootstrapConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=academy"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// MailConfig drives confirmation mail. Without an API key mail is only logged.
type MailConfig struct {
	ResendAPIKey string        `env:"RESEND_API_KEY"`
	From         string        `env:"MAIL_FROM,   default=Academy Admin <no-reply@localhost>"`
	ConfirmURL   string        `env:"CONFIRM_URL, default=http://localhost:3000/confirm"`
	ConfirmTTL   time.Duration `env:"CONFIRM_TTL, default=48h"`
}

// BootstrapConfig names the admin created when the deployment has none.
type BootstrapConfig struct {
	Email    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	Name     string `env:"BOOTSTRAP_ADMIN_NAME, default=Administrator"`
	Password string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

func (b BootstrapConfig) Enabled() bool { return b.Email != "" }

// IsDevelopment reports whether the service runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return errors.New("JWT_SECRET is required outside development")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.LoginRateLimit <= 0 {
		return errors.New("LOGIN_RATE_LIMIT must be positive")
	}
	if c.Mail.ConfirmTTL <= 0 {
		return errors.New("CONFIRM_TTL must be positive")
	}
	// Unconfirmed identities cannot sign in, so someone has to receive the
	// confirmation mail.
	if c.Mail.ResendAPIKey == "" && !c.AuthAutoConfirm && !c.IsDevelopment() {
		return errors.New("RESEND_API_KEY is required outside development unless AUTH_AUTO_CONFIRM is set")
	}
	if c.Bootstrap.Enabled() && len(c.Bootstrap.Password) < 6 {
		return errors.New("BOOTSTRAP_ADMIN_PASSWORD must be at least 6 characters")
	}
	return nil
}
