// Package config loads shelf's configuration: defaults, then the JSON file
// at ~/.shelf/config.json, then SHELF_* environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. SHELF_GATEWAY_URL.
const EnvPrefix = "SHELF"

// Config is the application configuration. Environment keys are derived
// from field names (split_words), never from bare tags, so that envconfig
// does not fall back to unprefixed variables such as PATH.
type Config struct {
	Gateway     GatewayConfig `json:"gateway" split_words:"true"`
	Catalog     CatalogConfig `json:"catalog" split_words:"true"`
	Search      SearchConfig  `json:"search" split_words:"true"`
	Feed        FeedConfig    `json:"feed" split_words:"true"`
	Log         LogConfig     `json:"log" split_words:"true"`
	MetricsAddr string        `json:"metrics_addr,omitempty" split_words:"true"` // empty disables /metrics
}

// GatewayConfig selects and tunes the remote catalog service.
// An empty URL means the local SQLite catalog is used instead.
type GatewayConfig struct {
	URL          string  `json:"url,omitempty" split_words:"true"`
	TimeoutMs    int     `json:"timeout_ms" split_words:"true"`
	Retries      int     `json:"retries" split_words:"true"`
	RatePerSec   float64 `json:"rate_per_sec" split_words:"true"`
	Burst        int     `json:"burst" split_words:"true"`
	LatencyMinMs int     `json:"latency_min_ms,omitempty" split_words:"true"` // dev: simulated jitter
	LatencyMaxMs int     `json:"latency_max_ms,omitempty" split_words:"true"`
}

// CatalogConfig locates the local catalog database.
type CatalogConfig struct {
	Path string `json:"path" split_words:"true"`
}

// SearchConfig tunes search-as-you-type.
type SearchConfig struct {
	DebounceMs int `json:"debounce_ms" split_words:"true"`
	MinChars   int `json:"min_chars" split_words:"true"`
	MaxResults int `json:"max_results" split_words:"true"` // 0 = no cap
}

// FeedConfig tunes the review feed.
type FeedConfig struct {
	PageSize int `json:"page_size" split_words:"true"` // local catalog only; remote pages are server-sized
}

// LogConfig locates the diagnostic log and the event log.
type LogConfig struct {
	Level    string `json:"level" split_words:"true"`
	Dir      string `json:"dir" split_words:"true"`
	EventLog string `json:"event_log" split_words:"true"`
}

// DataDir returns ~/.shelf, or .shelf when the home directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shelf"
	}
	return filepath.Join(home, ".shelf")
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(DataDir(), "config.json")
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := DataDir()
	return &Config{
		Gateway: GatewayConfig{
			TimeoutMs:  10000,
			Retries:    2,
			RatePerSec: 10,
			Burst:      5,
		},
		Catalog: CatalogConfig{
			Path: filepath.Join(dir, "catalog.db"),
		},
		Search: SearchConfig{
			DebounceMs: 300,
			MinChars:   2,
			MaxResults: 10,
		},
		Feed: FeedConfig{
			PageSize: 5,
		},
		Log: LogConfig{
			Level:    "info",
			Dir:      filepath.Join(dir, "logs"),
			EventLog: filepath.Join(dir, "shelf.events.jsonl"),
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Validate rejects values the controllers cannot work with. Durations must
// be positive: the file never relies on a library's zero-means-default.
func (c *Config) Validate() error {
	var errs []error
	if c.Gateway.TimeoutMs < 1 {
		errs = append(errs, fmt.Errorf("gateway.timeout_ms must be >= 1, got %d", c.Gateway.TimeoutMs))
	}
	if c.Gateway.Retries < 0 {
		errs = append(errs, fmt.Errorf("gateway.retries must be >= 0, got %d", c.Gateway.Retries))
	}
	if c.Gateway.LatencyMaxMs < c.Gateway.LatencyMinMs {
		errs = append(errs, fmt.Errorf("gateway.latency_max_ms (%d) < latency_min_ms (%d)", c.Gateway.LatencyMaxMs, c.Gateway.LatencyMinMs))
	}
	if c.Search.DebounceMs < 1 {
		errs = append(errs, fmt.Errorf("search.debounce_ms must be >= 1, got %d", c.Search.DebounceMs))
	}
	if c.Search.MinChars < 1 {
		errs = append(errs, fmt.Errorf("search.min_chars must be >= 1, got %d", c.Search.MinChars))
	}
	if c.Search.MaxResults < 0 {
		errs = append(errs, fmt.Errorf("search.max_results must be >= 0, got %d", c.Search.MaxResults))
	}
	if c.Feed.PageSize < 1 {
		errs = append(errs, fmt.Errorf("feed.page_size must be >= 1, got %d", c.Feed.PageSize))
	}
	return errors.Join(errs...)
}

// Remote reports whether a remote gateway is configured.
func (c *Config) Remote() bool {
	return c.Gateway.URL != ""
}

// Debounce returns the search quiet period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Search.DebounceMs) * time.Millisecond
}

// Timeout returns the gateway transport timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Gateway.TimeoutMs) * time.Millisecond
}

// Latency returns the simulated jitter bounds.
func (c *Config) Latency() (lo, hi time.Duration) {
	return time.Duration(c.Gateway.LatencyMinMs) * time.Millisecond,
		time.Duration(c.Gateway.LatencyMaxMs) * time.Millisecond
}
