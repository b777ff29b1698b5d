package main

import (
	"bytes"
	"errors"
	"flag"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/dispensa/internal/config"
)

func TestLevelRouter(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(newLevelRouter(&out, &errOut))

	logger.Debug("hidden")
	logger.Info("info line")
	logger.Warn("warn line")
	logger.Error("error line")

	if strings.Contains(out.String(), "hidden") || strings.Contains(errOut.String(), "hidden") {
		t.Error("debug records should be dropped")
	}
	if !strings.Contains(out.String(), "info line") || !strings.Contains(out.String(), "warn line") {
		t.Errorf("stdout missing info/warn: %q", out.String())
	}
	if strings.Contains(out.String(), "error line") {
		t.Error("error record leaked to stdout")
	}
	if !strings.Contains(errOut.String(), "error line") {
		t.Errorf("stderr missing error: %q", errOut.String())
	}
}

func TestLevelRouterWithAttrs(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(newLevelRouter(&out, &errOut)).With("component", "sweep")

	logger.Info("a")
	logger.Error("b")

	if !strings.Contains(out.String(), "component=sweep") || !strings.Contains(errOut.String(), "component=sweep") {
		t.Errorf("attrs not carried to both handlers: %q / %q", out.String(), errOut.String())
	}
}

func baseConfig() *config.Config {
	return &config.Config{
		DBPath:   "dispensa.sqlite3",
		Addr:     ":5050",
		Telegram: config.Telegram{Timeout: 10 * time.Second},
		Sweep:    config.Sweep{Interval: time.Hour},
	}
}

func TestParseFlagsOverrides(t *testing.T) {
	cfg := baseConfig()

	if err := parseFlags(cfg, []string{"-d", "other.db", "-addr", ":9000", "-l", "out.log"}); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.DBPath != "other.db" || cfg.Addr != ":9000" || cfg.LogPath != "out.log" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestParseFlagsKeepsConfigDefaults(t *testing.T) {
	cfg := baseConfig()

	if err := parseFlags(cfg, nil); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.DBPath != "dispensa.sqlite3" || cfg.Addr != ":5050" {
		t.Errorf("config values lost: %+v", cfg)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	if err := parseFlags(baseConfig(), []string{"extra"}); err == nil {
		t.Error("expected error for positional argument")
	}
	if err := parseFlags(baseConfig(), []string{"-db", ""}); err == nil {
		t.Error("expected validation error for empty database path")
	}
	if err := parseFlags(baseConfig(), []string{"-h"}); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected flag.ErrHelp, got %v", err)
	}
}
