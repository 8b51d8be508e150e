// Package config provides configuration loading and management for
// blockclone.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete blockclone configuration.
type Config struct {
	API   APIConfig   `yaml:"api"`
	Retry RetryConfig `yaml:"retry"`
	Clone CloneConfig `yaml:"clone"`
	Cache CacheConfig `yaml:"cache"`
}

// APIConfig configures the document API client.
type APIConfig struct {
	// BaseURL is the API endpoint.
	BaseURL string `yaml:"base_url"`
	// Version is the API version header value.
	Version string `yaml:"version"`
	// Timeout bounds a single HTTP request.
	Timeout time.Duration `yaml:"timeout"`
}

// RetryConfig configures the rate-limit retry policy.
type RetryConfig struct {
	// MaxAttempts is the attempt budget per request, including the first.
	MaxAttempts int `yaml:"max_attempts"`
	// BackoffBase is the initial backoff duration.
	BackoffBase time.Duration `yaml:"backoff_base"`
	// BackoffMultiplier is applied to the backoff on each retry.
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	// MaxBackoff caps a single backoff sleep.
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// CloneConfig configures the replication engine.
type CloneConfig struct {
	// MaxDepth is the subtree recursion ceiling.
	MaxDepth int `yaml:"max_depth"`
	// MaxAliasHops is the alias indirection ceiling, independent of
	// MaxDepth.
	MaxAliasHops int `yaml:"max_alias_hops"`
	// BatchSize is the block count per write call (API maximum 50).
	BatchSize int `yaml:"batch_size"`
	// SkipUnsupported skips blocks with no creation mapping instead of
	// aborting the job.
	SkipUnsupported bool `yaml:"skip_unsupported"`
	// ProbeContainers double-checks has_children on container types the
	// API under-reports.
	ProbeContainers bool `yaml:"probe_containers"`
	// TypeRegistry is an optional YAML file extending the block type
	// mapping table.
	TypeRegistry string `yaml:"type_registry"`
}

// CacheConfig configures the optional local block cache. The cache is
// advisory only: protection checks never consult it.
type CacheConfig struct {
	// Enabled turns the cache on.
	Enabled bool `yaml:"enabled"`
	// Path is the SQLite database path.
	Path string `yaml:"path"`
	// MaxAge is how long a cached block stays fresh.
	MaxAge time.Duration `yaml:"max_age"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://api.notion.com/v1",
			Version: "2022-06-28",
			Timeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:       5,
			BackoffBase:       500 * time.Millisecond,
			BackoffMultiplier: 2.0,
			MaxBackoff:        10 * time.Second,
		},
		Clone: CloneConfig{
			MaxDepth:     8,
			MaxAliasHops: 8,
			BatchSize:    50,
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    "",
			MaxAge:  15 * time.Minute,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Version == "" {
		return fmt.Errorf("api.version is required")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	if c.Retry.BackoffMultiplier < 1 {
		return fmt.Errorf("retry.backoff_multiplier must be at least 1")
	}
	if c.Clone.MaxDepth < 1 {
		return fmt.Errorf("clone.max_depth must be at least 1")
	}
	if c.Clone.MaxAliasHops < 1 {
		return fmt.Errorf("clone.max_alias_hops must be at least 1")
	}
	if c.Clone.BatchSize < 1 || c.Clone.BatchSize > 50 {
		return fmt.Errorf("clone.batch_size must be between 1 and 50")
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("cache.path is required when the cache is enabled")
	}
	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// API
	if other.API.BaseURL != "" {
		c.API.BaseURL = other.API.BaseURL
	}
	if other.API.Version != "" {
		c.API.Version = other.API.Version
	}
	if other.API.Timeout != 0 {
		c.API.Timeout = other.API.Timeout
	}

	// Retry
	if other.Retry.MaxAttempts != 0 {
		c.Retry.MaxAttempts = other.Retry.MaxAttempts
	}
	if other.Retry.BackoffBase != 0 {
		c.Retry.BackoffBase = other.Retry.BackoffBase
	}
	if other.Retry.BackoffMultiplier != 0 {
		c.Retry.BackoffMultiplier = other.Retry.BackoffMultiplier
	}
	if other.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = other.Retry.MaxBackoff
	}

	// Clone
	if other.Clone.MaxDepth != 0 {
		c.Clone.MaxDepth = other.Clone.MaxDepth
	}
	if other.Clone.MaxAliasHops != 0 {
		c.Clone.MaxAliasHops = other.Clone.MaxAliasHops
	}
	if other.Clone.BatchSize != 0 {
		c.Clone.BatchSize = other.Clone.BatchSize
	}
	if other.Clone.SkipUnsupported {
		c.Clone.SkipUnsupported = true
	}
	if other.Clone.ProbeContainers {
		c.Clone.ProbeContainers = true
	}
	if other.Clone.TypeRegistry != "" {
		c.Clone.TypeRegistry = other.Clone.TypeRegistry
	}

	// Cache
	if other.Cache.Enabled {
		c.Cache.Enabled = true
	}
	if other.Cache.Path != "" {
		c.Cache.Path = other.Cache.Path
	}
	if other.Cache.MaxAge != 0 {
		c.Cache.MaxAge = other.Cache.MaxAge
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
