package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/oggyno/kasir-restoran/internal/control"
	"github.com/oggyno/kasir-restoran/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "kasir",
	Short: "Kasir restoran point-of-sale client",
	Long: `Kasir records income and expense transactions to a spreadsheet endpoint
and shows the daily recap. Without a subcommand it runs the HTTP API.`,
	Run: runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// loadConfig reads .env and the config file, then sets up logging.
func loadConfig() *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logging
	slogLevel := slog.LevelInfo
	switch {
	case isDebug || cfg.Logging.Level == "debug":
		slogLevel = slog.LevelDebug
	case cfg.Logging.Level == "warn":
		slogLevel = slog.LevelWarn
	case cfg.Logging.Level == "error":
		slogLevel = slog.LevelError
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
	return cfg
}

// loadApp builds the application for one-shot commands.
func loadApp() *control.App {
	cfg := loadConfig()
	app, err := control.NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize Kasir", "error", err)
		os.Exit(1)
	}
	return app
}

// withApp builds the application, runs fn and closes the application before
// returning, so a failing command has released its connections by the time
// fail exits the process.
func withApp(fn func(app *control.App) error) error {
	app := loadApp()
	return closeAfter(app, func() error { return fn(app) })
}

func closeAfter(c io.Closer, fn func() error) error {
	defer func() {
		if err := c.Close(); err != nil {
			slog.Warn("Failed to release connections", "error", err)
		}
	}()
	return fn()
}

// signalContext is cancelled on SIGINT or SIGTERM so a retry sequence stops
// waiting when the user gives up.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func fail(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
