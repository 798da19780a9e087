// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigDir is the directory name for famgraph configuration.
	DefaultConfigDir = ".famgraph"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. FAMGRAPH_SOURCE_SESSION_ID.
	EnvPrefix = "FAMGRAPH"
)

// Config holds static configuration (read-only after load).
type Config struct {
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`

	// File is the config file that was read, if any.
	File string `yaml:"-" mapstructure:"-"`
}

// SourceConfig holds configuration for the remote family tree source.
type SourceConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	SessionID string `yaml:"session_id,omitempty" mapstructure:"session_id"`
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	RateLimit      float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst          int     `yaml:"burst" mapstructure:"burst"`
	MaxRetries     int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// FetchConfig holds the graph expansion defaults.
type FetchConfig struct {
	Ancestors    int  `yaml:"ancestors" mapstructure:"ancestors"`
	Descendants  int  `yaml:"descendants" mapstructure:"descendants"`
	Spouses      bool `yaml:"spouses" mapstructure:"spouses"`
	Contributors bool `yaml:"contributors" mapstructure:"contributors"`
	Ordinances   bool `yaml:"ordinances" mapstructure:"ordinances"`
	BatchSize    int  `yaml:"batch_size" mapstructure:"batch_size"`
	Workers      int  `yaml:"workers" mapstructure:"workers"`
}

// CacheConfig holds configuration for the response cache.
type CacheConfig struct {
	Enabled          bool   `yaml:"enabled" mapstructure:"enabled"`
	Path             string `yaml:"path" mapstructure:"path"`
	MemoryTTLSeconds int    `yaml:"memory_ttl_seconds" mapstructure:"memory_ttl_seconds"`
	// TTLHours is how long persisted responses stay valid. 0 keeps them
	// until the cache is cleared.
	TTLHours int `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file,omitempty" mapstructure:"file"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:        "https://www.familysearch.org",
			TimeoutSeconds: 60,
			RateLimit:      10,
			Burst:          5,
			MaxRetries:     5,
		},
		Fetch: FetchConfig{
			Ancestors: 4,
			BatchSize: 200,
			Workers:   8,
		},
		Cache: CacheConfig{
			Enabled:          true,
			Path:             filepath.Join(DefaultConfigDir, "cache.db"),
			MemoryTTLSeconds: 600,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Timeout returns the per-request timeout.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// MemoryTTL returns the lifetime of in-memory cache entries.
func (c CacheConfig) MemoryTTL() time.Duration {
	return time.Duration(c.MemoryTTLSeconds) * time.Second
}

// TTL returns the lifetime of persisted cache entries; 0 means forever.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// Validate checks the values a run cannot work without.
func (c *Config) Validate() error {
	var errs []error
	if c.Source.BaseURL == "" {
		errs = append(errs, errors.New("source.base_url is required"))
	}
	if c.Source.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("source.timeout_seconds must be positive"))
	}
	if c.Source.RateLimit <= 0 {
		errs = append(errs, errors.New("source.rate_limit must be positive"))
	}
	if c.Source.MaxRetries < 0 {
		errs = append(errs, errors.New("source.max_retries must not be negative"))
	}
	if c.Fetch.Ancestors < 0 || c.Fetch.Descendants < 0 {
		errs = append(errs, errors.New("fetch generations must not be negative"))
	}
	if c.Fetch.BatchSize <= 0 || c.Fetch.BatchSize > 200 {
		errs = append(errs, errors.New("fetch.batch_size must be between 1 and 200"))
	}
	if c.Fetch.Workers <= 0 {
		errs = append(errs, errors.New("fetch.workers must be positive"))
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		errs = append(errs, errors.New("cache.path is required when the cache is enabled"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

// Load reads configuration from configFile, or from .famgraph/config.yaml
// under basePath when configFile is empty. A missing default file means
// defaults. FAMGRAPH_* environment variables override file values.
func Load(basePath, configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(ConfigDir(basePath))
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, filepath.Ext(DefaultConfigFile)))
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides apply to keys
// the file does not mention.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("source.base_url", d.Source.BaseURL)
	v.SetDefault("source.session_id", d.Source.SessionID)
	v.SetDefault("source.timeout_seconds", d.Source.TimeoutSeconds)
	v.SetDefault("source.rate_limit", d.Source.RateLimit)
	v.SetDefault("source.burst", d.Source.Burst)
	v.SetDefault("source.max_retries", d.Source.MaxRetries)

	v.SetDefault("fetch.ancestors", d.Fetch.Ancestors)
	v.SetDefault("fetch.descendants", d.Fetch.Descendants)
	v.SetDefault("fetch.spouses", d.Fetch.Spouses)
	v.SetDefault("fetch.contributors", d.Fetch.Contributors)
	v.SetDefault("fetch.ordinances", d.Fetch.Ordinances)
	v.SetDefault("fetch.batch_size", d.Fetch.BatchSize)
	v.SetDefault("fetch.workers", d.Fetch.Workers)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.memory_ttl_seconds", d.Cache.MemoryTTLSeconds)
	v.SetDefault("cache.ttl_hours", d.Cache.TTLHours)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// ConfigDir returns the path to the .famgraph config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}
