// Package config loads dispensa settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the process settings. Command-line flags may override the
// database, address and log fields.
type Config struct {
	DBPath  string `env:"DISPENSA_DB" envDefault:"dispensa.sqlite3"`
	Addr    string `env:"DISPENSA_ADDR" envDefault:":5050"`
	LogPath string `env:"DISPENSA_LOG"`

	// AppPassword is the single shared password guarding the API.
	AppPassword string `env:"APP_PASSWORD"`

	Telegram Telegram
	Sweep    Sweep
}

// Telegram holds the notification gateway credentials.
type Telegram struct {
	BotToken string        `env:"TELEGRAM_BOT_TOKEN"`
	ChatID   string        `env:"TELEGRAM_CHAT_ID"`
	APIURL   string        `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	Timeout  time.Duration `env:"TELEGRAM_TIMEOUT" envDefault:"10s"`
}

// Configured reports whether both credentials are present.
func (t Telegram) Configured() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Sweep controls the periodic expiry sweep.
type Sweep struct {
	Interval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"6h"`
	RunOnStart bool          `env:"SWEEP_ON_START" envDefault:"false"`
}

// Load reads .env files (missing files are fine) and parses the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that env parsing alone can't.
func (c *Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("database path must not be empty"))
	}
	if c.Sweep.Interval <= 0 {
		errs = append(errs, fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.Sweep.Interval))
	}
	if c.Telegram.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("TELEGRAM_TIMEOUT must be positive, got %s", c.Telegram.Timeout))
	}
	return errors.Join(errs...)
}
