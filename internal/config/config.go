package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
)

// Config holds the application configuration, loaded from the environment.
type Config struct {
	ServerPort    int           `env:"PORT" envDefault:"8080"`
	DatabasePath  string        `env:"DATABASE_PATH" envDefault:"./videoflow.db"`
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	StatsSchedule string        `env:"STATS_SCHEDULE" envDefault:"@every 5m"`
	CORSOrigin    string        `env:"CORS_ORIGIN" envDefault:"http://localhost:3000"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	if _, err := cron.ParseStandard(cfg.StatsSchedule); err != nil {
		return nil, fmt.Errorf("invalid STATS_SCHEDULE %q: %w", cfg.StatsSchedule, err)
	}

	return cfg, nil
}
