package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures user-level settings for catalog access, caching and output.
type Config struct {
	Version  int               `yaml:"version"`
	Catalog  CatalogConfig     `yaml:"catalog"`
	Cache    CacheConfig       `yaml:"cache"`
	Fetch    FetchConfig       `yaml:"fetch"`
	Output   OutputConfig      `yaml:"output"`
	DetectOS *bool             `yaml:"detect_os,omitempty"`
	Aliases  map[string]string `yaml:"aliases,omitempty"`
}

// CatalogConfig locates the upstream template catalog.
type CatalogConfig struct {
	TreeURL    string `yaml:"tree_url"`
	RawURL     string `yaml:"raw_url"`
	TimeoutSec int    `yaml:"timeout_s"`
}

// CacheConfig controls the on-disk cache.
type CacheConfig struct {
	Dir      string `yaml:"dir,omitempty"`
	TTLHours int    `yaml:"ttl_hours"`
}

// FetchConfig sizes the template download pool.
type FetchConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig sets the default generated file.
type OutputConfig struct {
	Path string `yaml:"path"`
}

const (
	defaultTreeURL    = "https://api.github.com/repos/github/gitignore/git/trees/main?recursive=1"
	defaultRawURL     = "https://raw.githubusercontent.com/github/gitignore/main"
	defaultTimeoutSec = 10
	defaultTTLHours   = 7 * 24
	defaultWorkers    = 4
	MaxWorkers        = 16
)

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Catalog: CatalogConfig{
			TreeURL:    defaultTreeURL,
			RawURL:     defaultRawURL,
			TimeoutSec: defaultTimeoutSec,
		},
		Cache: CacheConfig{
			TTLHours: defaultTTLHours,
		},
		Fetch: FetchConfig{
			Workers: defaultWorkers,
		},
		Output: OutputConfig{
			Path: ".gitignore",
		},
		DetectOS: boolPtr(true),
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills fields the YAML left empty.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if strings.TrimSpace(c.Catalog.TreeURL) == "" {
		c.Catalog.TreeURL = defaults.Catalog.TreeURL
	}
	if strings.TrimSpace(c.Catalog.RawURL) == "" {
		c.Catalog.RawURL = defaults.Catalog.RawURL
	}
	if c.Catalog.TimeoutSec == 0 {
		c.Catalog.TimeoutSec = defaults.Catalog.TimeoutSec
	}
	if c.Cache.TTLHours == 0 {
		c.Cache.TTLHours = defaults.Cache.TTLHours
	}
	if c.Fetch.Workers == 0 {
		c.Fetch.Workers = defaults.Fetch.Workers
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		c.Output.Path = defaults.Output.Path
	}
	if c.DetectOS == nil {
		c.DetectOS = boolPtr(true)
	}
}

// Timeout returns the per-request network timeout.
func (c Config) Timeout() time.Duration {
	if c.Catalog.TimeoutSec <= 0 {
		return defaultTimeoutSec * time.Second
	}
	return time.Duration(c.Catalog.TimeoutSec) * time.Second
}

// TTL returns the cache freshness window.
func (c Config) TTL() time.Duration {
	if c.Cache.TTLHours <= 0 {
		return defaultTTLHours * time.Hour
	}
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// Workers returns the fetch pool size clamped to [1, MaxWorkers].
func (c Config) Workers() int {
	switch {
	case c.Fetch.Workers <= 0:
		return defaultWorkers
	case c.Fetch.Workers > MaxWorkers:
		return MaxWorkers
	default:
		return c.Fetch.Workers
	}
}

// DetectOSEnabled reports whether the current OS template is added when no
// OS was requested.
func (c Config) DetectOSEnabled() bool {
	if c.DetectOS == nil {
		return true
	}
	return *c.DetectOS
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

func boolPtr(v bool) *bool {
	return &v
}
