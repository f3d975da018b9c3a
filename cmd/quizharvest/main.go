// CLAUDE:SUMMARY CLI entry point for quizharvest: scrape (resumable harvest), stats (dataset tables), export (SQLite).
// Command quizharvest scrapes quiz questions into a resumable JSON dataset.
//
// Usage:
//
//	quizharvest scrape                      # log in if needed, harvest what is missing
//	quizharvest scrape --limit 20 --headless
//	quizharvest stats                       # summary tables of the dataset
//	quizharvest export --sqlite questions.db
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/quizharvest/harvest"
)

// Exit codes.
const (
	exitOK          = 0
	exitFault       = 1
	exitInterrupted = 130
)

type app struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string

	cfg    *harvest.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "quizharvest",
		Short:         "Resumable quiz question scraper",
		Long:          "Logs into the quiz site, lists every question and extracts the ones missing from the dataset file, one at a time.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(a.stderr, a.logLevel, a.logFormat)
			if err != nil {
				return err
			}
			a.logger = logger
			slog.SetDefault(logger)

			cfg, err := harvest.LoadConfig(a.configPath, a.envFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "quizharvest.yaml", "YAML config file (optional)")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file with QUIZHARVEST_* overrides (optional)")
	pf.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "text", "log format: text, json")

	root.AddCommand(newScrapeCmd(a), newStatsCmd(a), newExportCmd(a))
	return root
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	case "text", "":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
		})), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (expected text|json)", format)
	}
}

// exitCode maps a command error to the process status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		return exitFault
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	err := newRootCmd(a).ExecuteContext(ctx)
	stop()

	code := exitCode(err)
	switch {
	case code == exitInterrupted:
		logger(a).Warn("quizharvest: interrupted, progress is saved")
	case err != nil:
		logger(a).Error("quizharvest: fatal", "error", err)
	}
	os.Exit(code)
}

// logger returns the configured logger, or a plain one when the failure
// happened before it was built.
func logger(a *app) *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
