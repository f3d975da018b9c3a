// CLAUDE:SUMMARY Defines harvest config structs, parses the YAML file, applies defaults and QUIZHARVEST_* environment overrides.
// Package config handles quizharvest configuration from a YAML file, a .env
// file and QUIZHARVEST_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Files   FilesConfig   `yaml:"files"`
	Browser BrowserConfig `yaml:"browser"`
	Timing  TimingConfig  `yaml:"timing"`
	Run     RunConfig     `yaml:"run"`
}

// SiteConfig locates the application.
type SiteConfig struct {
	BaseURL     string `yaml:"base_url"`
	ListingPath string `yaml:"listing_path"`
	ItemPath    string `yaml:"item_path"`
}

// FilesConfig names the durable files.
type FilesConfig struct {
	Cookies string `yaml:"cookies"`
	Dataset string `yaml:"dataset"`
}

// BrowserConfig selects and tunes the browsing-context backend.
type BrowserConfig struct {
	Backend          string        `yaml:"backend"` // rod | http
	Remote           string        `yaml:"remote"`
	Bin              string        `yaml:"bin"`
	Headless         bool          `yaml:"headless"`
	Stealth          bool          `yaml:"stealth"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
	NavTimeout       time.Duration `yaml:"nav_timeout"`
	UserAgent        string        `yaml:"user_agent"` // http backend
}

// TimingConfig holds waits and delays.
type TimingConfig struct {
	EntrySettle   time.Duration `yaml:"entry_settle"`
	ListingWait   time.Duration `yaml:"listing_wait"`
	ListingSettle time.Duration `yaml:"listing_settle"`
	PageWait      time.Duration `yaml:"page_wait"`
	RevealTimeout time.Duration `yaml:"reveal_timeout"`
	ItemDelay     time.Duration `yaml:"item_delay"`
	InspectHold   time.Duration `yaml:"inspect_hold"`
}

// RunConfig bounds a run.
type RunConfig struct {
	Limit int `yaml:"limit"` // 0 = no limit
}

// Backends.
const (
	BackendRod  = "rod"
	BackendHTTP = "http"
)

// Default returns a Config with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Load reads path when it exists (defaults otherwise), loads envFile into
// the process environment when it exists, then applies environment
// overrides and validates the result.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if path != "" {
		c, err := LoadFile(path)
		switch {
		case err == nil:
			cfg = c
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Site.BaseURL == "" {
		c.Site.BaseURL = "https://getcracked.io"
	}
	if c.Site.ListingPath == "" {
		c.Site.ListingPath = "/questions"
	}
	if c.Site.ItemPath == "" {
		c.Site.ItemPath = "/question/"
	}
	if c.Files.Cookies == "" {
		c.Files.Cookies = "cookies.json"
	}
	if c.Files.Dataset == "" {
		c.Files.Dataset = "all_questions.json"
	}
	if c.Browser.Backend == "" {
		c.Browser.Backend = BackendRod
	}
	if c.Browser.NavTimeout <= 0 {
		c.Browser.NavTimeout = 30 * time.Second
	}
	if c.Timing.EntrySettle <= 0 {
		c.Timing.EntrySettle = 2 * time.Second
	}
	if c.Timing.ListingWait <= 0 {
		c.Timing.ListingWait = 15 * time.Second
	}
	if c.Timing.ListingSettle <= 0 {
		c.Timing.ListingSettle = 3 * time.Second
	}
	if c.Timing.PageWait <= 0 {
		c.Timing.PageWait = 10 * time.Second
	}
	if c.Timing.RevealTimeout <= 0 {
		c.Timing.RevealTimeout = 10 * time.Second
	}
	if c.Timing.ItemDelay <= 0 {
		c.Timing.ItemDelay = 2 * time.Second
	}
}

// applyEnv overrides fields from QUIZHARVEST_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"QUIZHARVEST_BASE_URL":        &c.Site.BaseURL,
		"QUIZHARVEST_COOKIES":         &c.Files.Cookies,
		"QUIZHARVEST_DATASET":         &c.Files.Dataset,
		"QUIZHARVEST_BROWSER_BACKEND": &c.Browser.Backend,
		"QUIZHARVEST_BROWSER_REMOTE":  &c.Browser.Remote,
		"QUIZHARVEST_BROWSER_BIN":     &c.Browser.Bin,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("QUIZHARVEST_HEADLESS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: QUIZHARVEST_HEADLESS: %w", err)
		}
		c.Browser.Headless = b
	}
	if v, ok := lookup("QUIZHARVEST_ITEM_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: QUIZHARVEST_ITEM_DELAY: %w", err)
		}
		c.Timing.ItemDelay = d
	}
	return nil
}

// Validate checks the fields the run cannot start without.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: site.base_url %q is not an absolute URL", c.Site.BaseURL)
	}
	switch c.Browser.Backend {
	case BackendRod, BackendHTTP:
	default:
		return fmt.Errorf("config: browser.backend %q: want %s or %s", c.Browser.Backend, BackendRod, BackendHTTP)
	}
	if c.Run.Limit < 0 {
		return fmt.Errorf("config: run.limit must be >= 0")
	}
	return nil
}

// EntryURL is the application's home page.
func (c *Config) EntryURL() string {
	return strings.TrimRight(c.Site.BaseURL, "/")
}

// ListingURL is the page enumerating every question.
func (c *Config) ListingURL() string {
	return c.EntryURL() + "/" + strings.TrimLeft(c.Site.ListingPath, "/")
}
