// Package config assembles the application configuration from
// environment variables. Each component owns its own Config struct with
// env tags; this package only composes and parses them.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/almaluz/backend/internal/notifier"
	"github.com/almaluz/backend/internal/scheduler"
	"github.com/almaluz/backend/pkg/db"
	"github.com/almaluz/backend/pkg/logger"
	"github.com/almaluz/backend/pkg/mailer/resend"
	"github.com/almaluz/backend/pkg/storage"
)

// Config is the full application configuration.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// AdminToken guards the /api/admin surface. Empty disables the
	// admin API entirely.
	AdminToken string `env:"ADMIN_API_TOKEN"`

	DB        db.Config
	Resend    resend.Config
	Notifier  notifier.Config
	Storage   storage.Config
	Sentry    logger.SentryConfig
	Scheduler scheduler.Config
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	return cfg, nil
}
