package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"localmind/internal/config"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "localmind",
	Short: "On-device model lifecycle and inference scheduling",
	Long: `localmind extracts a bundled language model, loads it into a local
inference engine and serves generations through a prioritised task
scheduler. It exposes a small HTTP control surface for the host app.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (.yaml, .json, .toml); defaults to $"+config.EnvConfig)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (console, json)")
}

// loadConfig resolves the config file and applies the logging flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Resolve(cfgFile)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, cfg.Logging.Validate()
}

// newLogger builds the process logger. Console output goes to stderr so
// stdout stays free for command results.
func newLogger(lc config.LoggingConfig, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if lc.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
