package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// DefaultDelimiters is the tokenizer delimiter set: whitespace plus common punctuation.
const DefaultDelimiters = " \t\r\n,:;'!@#$%^&*()-_=+~\"."

// Config holds all configuration for tfidx.
type Config struct {
	Index   IndexConfig   `yaml:"index"`
	Serve   ServeConfig   `yaml:"serve"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// IndexConfig holds index construction configuration.
type IndexConfig struct {
	Delimiters     string   `yaml:"delimiters"`
	FieldSeparator string   `yaml:"field_separator"`
	Includes       []string `yaml:"includes"`
	Excludes       []string `yaml:"excludes"`
	ProgressEvery  int      `yaml:"progress_every"`
	SnapshotName   string   `yaml:"snapshot_name"`
}

// ServeConfig holds query serving configuration.
type ServeConfig struct {
	TopK      int           `yaml:"top_k"`
	Prompt    string        `yaml:"prompt"`
	CacheSize int           `yaml:"cache_size"` // 0 disables the query cache
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// MetricsConfig holds the Prometheus endpoint configuration.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Delimiters:     DefaultDelimiters,
			FieldSeparator: "\t",
			Includes:       []string{"**/*.tsv"},
			Excludes:       []string{"**/.git/**", "**/.tfidx/**"},
			ProgressEvery:  10000,
			SnapshotName:   "_index.db",
		},
		Serve: ServeConfig{
			TopK:      3,
			Prompt:    "Enter query: ",
			CacheSize: 128,
			CacheTTL:  5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for tfidx.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "tfidx.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".tfidx", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Validate checks values the index and serving code cannot work without.
func (c *Config) Validate() error {
	if c.Index.Delimiters == "" {
		return fmt.Errorf("index.delimiters must not be empty")
	}
	if utf8.RuneCountInString(c.Index.FieldSeparator) != 1 {
		return fmt.Errorf("index.field_separator must be a single character, got %q", c.Index.FieldSeparator)
	}
	if c.Index.ProgressEvery < 1 {
		return fmt.Errorf("index.progress_every must be positive, got %d", c.Index.ProgressEvery)
	}
	if c.Index.SnapshotName == "" {
		return fmt.Errorf("index.snapshot_name must not be empty")
	}
	if c.Serve.TopK < 1 {
		return fmt.Errorf("serve.top_k must be positive, got %d", c.Serve.TopK)
	}
	if c.Serve.CacheSize < 0 {
		return fmt.Errorf("serve.cache_size must not be negative, got %d", c.Serve.CacheSize)
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SnapshotPath returns where a build of source writes its snapshot: next to a
// source file, or inside a source directory.
func SnapshotPath(source string, name string) string {
	info, err := os.Stat(source)
	if err == nil && info.IsDir() {
		return filepath.Join(source, name)
	}
	return filepath.Join(filepath.Dir(source), name)
}
