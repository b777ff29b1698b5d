package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/dispensa/internal/api"
	"github.com/erazemk/dispensa/internal/auth"
	"github.com/erazemk/dispensa/internal/config"
	"github.com/erazemk/dispensa/internal/db"
	"github.com/erazemk/dispensa/internal/model"
	"github.com/erazemk/dispensa/internal/notifier"
	"github.com/erazemk/dispensa/internal/store"
	"github.com/erazemk/dispensa/internal/telegram"
)

const usage = `Usage: dispensa [serve|sweep] [flags]

Commands:
  serve                   run the API and the periodic expiry sweep (default)
  sweep                   run one expiry sweep and exit

Flags:
  -d, -db <path>          SQLite database path (default: $DISPENSA_DB or dispensa.sqlite3)
  -a, -addr <host:port>   listen address (default: $DISPENSA_ADDR or :5050)
  -l, -log <path>         log file path (default: $DISPENSA_LOG, stdout/stderr only)
  -h, -help               show this help and exit

Other settings (APP_PASSWORD, TELEGRAM_*, SWEEP_*) are read from the
environment or a .env file in the working directory.
`

func main() {
	args := os.Args[1:]
	command := "serve"
	if len(args) > 0 && (args[0] == "serve" || args[0] == "sweep") {
		command, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := parseFlags(cfg, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	switch command {
	case "sweep":
		err = runSweep(cfg)
	default:
		err = runServe(cfg)
	}
	if err != nil {
		slog.Error(command+" failed", "error", err)
		if closeLog != nil {
			closeLog()
		}
		os.Exit(1)
	}
}

// parseFlags applies command-line overrides on top of the loaded config.
func parseFlags(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("dispensa", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return cfg.Validate()
}

// openDatabase opens the store and makes sure the schema exists.
func openDatabase(path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	slog.Info("database ready", "path", path)
	return database, nil
}

// newNotifier wires the expiry notifier to the store and the Telegram gateway.
func newNotifier(cfg *config.Config, database *sql.DB) *notifier.Notifier {
	if !cfg.Telegram.Configured() {
		slog.Warn("telegram credentials missing, notifications will not be delivered")
	}

	gateway := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID,
		telegram.WithBaseURL(cfg.Telegram.APIURL),
		telegram.WithTimeout(cfg.Telegram.Timeout),
	)
	source := notifier.SourceFunc(func(ctx context.Context) ([]model.Product, error) {
		return store.ListProductsWithExpiry(ctx, database)
	})
	return notifier.New(source, gateway)
}

// runSweep runs a single sweep, for use from cron or by hand.
func runSweep(cfg *config.Config) error {
	database, err := openDatabase(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	res, err := newNotifier(cfg, database).Sweep(ctx)
	if err != nil {
		return err
	}

	slog.Info("expiry sweep finished",
		"scanned", res.Scanned, "skipped", res.Skipped,
		"notified", res.Notified, "failed", res.Failed,
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// runServe runs the API and the sweep scheduler until SIGINT/SIGTERM.
func runServe(cfg *config.Config) error {
	if cfg.AppPassword == "" {
		return errors.New("APP_PASSWORD must be set to serve the API")
	}

	database, err := openDatabase(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	// Load token secret from database (auto-generated on first run).
	secret, err := store.GetTokenSecret(context.Background(), database)
	if err != nil {
		return fmt.Errorf("getting token secret: %w", err)
	}

	hash, err := auth.HashPassword(cfg.AppPassword, bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	n := newNotifier(cfg, database)
	scheduler := notifier.NewScheduler(n.Sweep, cfg.Sweep.Interval,
		notifier.WithRunOnStart(cfg.Sweep.RunOnStart),
	)

	router := api.NewRouter(api.Deps{
		DB:           database,
		TokenSecret:  secret,
		PasswordHash: hash,
		Checker:      n,
		Sweeper:      scheduler,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	scheduler.Start(context.Background())

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		scheduler.Stop()
		return fmt.Errorf("server error: %w", err)
	}

	scheduler.Stop()
	slog.Info("server stopped, closing database")
	return nil
}
