package harvest

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/quizharvest/harvest/internal/browser"
	"github.com/hazyhaar/quizharvest/harvest/internal/config"
	"github.com/hazyhaar/quizharvest/harvest/internal/page"
	"github.com/hazyhaar/quizharvest/harvest/internal/session"
	"github.com/hazyhaar/quizharvest/harvest/internal/static"
)

// Config is the top-level quizharvest configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig selects and tunes the browsing-context backend.
type BrowserConfig = config.BrowserConfig

// TimingConfig holds waits and delays.
type TimingConfig = config.TimingConfig

// Page is the browsing context a run drives.
type Page = page.Page

// Confirmer blocks until the operator reports a finished manual login.
type Confirmer = session.Confirmer

// Backends.
const (
	BackendRod  = config.BackendRod
	BackendHTTP = config.BackendHTTP
)

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads the YAML file at path and the .env file at envFile, both
// optional, then applies QUIZHARVEST_* overrides.
func LoadConfig(path, envFile string) (*Config, error) {
	return config.Load(path, envFile)
}

// TerminalConfirmer confirms a manual login on stdin.
func TerminalConfirmer() Confirmer {
	return session.TerminalConfirmer()
}

// Opener acquires the page a run works on. The run closes it.
type Opener func(ctx context.Context) (Page, error)

// NewOpener returns the Opener for cfg.Browser.Backend.
func NewOpener(cfg *Config, logger *slog.Logger) Opener {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Browser.Backend == BackendHTTP {
		return func(ctx context.Context) (Page, error) {
			return static.NewHTTP(static.HTTPConfig{
				UserAgent: cfg.Browser.UserAgent,
				Timeout:   cfg.Browser.NavTimeout,
			}, static.WithLogger(logger)), nil
		}
	}
	return func(ctx context.Context) (Page, error) {
		mgr := browser.NewManager(browser.Config{
			RemoteURL:        cfg.Browser.Remote,
			Bin:              cfg.Browser.Bin,
			Headless:         cfg.Browser.Headless,
			Stealth:          cfg.Browser.Stealth,
			ResourceBlocking: cfg.Browser.ResourceBlocking,
			NavTimeout:       cfg.Browser.NavTimeout,
			Logger:           logger,
		})
		tab, err := browser.Open(ctx, mgr)
		if err != nil {
			return nil, err
		}
		return tab, nil
	}
}
