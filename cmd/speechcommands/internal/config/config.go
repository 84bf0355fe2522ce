// Package config provides configuration for the speechcommands CLI.
//
// Configuration is read from a YAML file, then overridden by environment
// variables (optionally loaded from a .env file), then by command flags:
//
//	~/Library/Application Support/speechcommands/config.yaml   (macOS)
//	~/.config/speechcommands/config.yaml                       (Linux)
//	%AppData%/speechcommands/config.yaml                       (Windows)
//
// The file location can be overridden with SPEECHCOMMANDS_CONFIG.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/haivivi/speechcommands/pkg/dataset"
)

const (
	// appDir is the directory name under os.UserConfigDir().
	appDir = "speechcommands"

	// fileName is the config file inside appDir.
	fileName = "config.yaml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "SPEECHCOMMANDS_"
)

// Environment variables.
const (
	EnvConfig     = EnvPrefix + "CONFIG"
	EnvDataDir    = EnvPrefix + "DATA_DIR"
	EnvSource     = EnvPrefix + "SOURCE"
	EnvAddr       = EnvPrefix + "ADDR"
	EnvHistoryDir = EnvPrefix + "HISTORY_DIR"
	EnvMaxUpload  = EnvPrefix + "MAX_UPLOAD"
	EnvS3Region   = EnvPrefix + "S3_REGION"
	EnvS3Endpoint = EnvPrefix + "S3_ENDPOINT"
)

// Default values.
const (
	DefaultAddr      = "127.0.0.1:8501"
	DefaultMaxUpload = 32 << 20
)

// Config is the full CLI configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Dataset DatasetConfig `yaml:"dataset" json:"dataset"`
	History HistoryConfig `yaml:"history" json:"history"`
	S3      S3Config      `yaml:"s3" json:"s3"`
}

// ServerConfig configures `serve`.
type ServerConfig struct {
	Addr      string `yaml:"addr" json:"addr"`
	MaxUpload int64  `yaml:"max_upload" json:"max_upload"`
}

// DatasetConfig locates the dataset.
type DatasetConfig struct {
	// Dir is the extraction directory.
	Dir string `yaml:"data_dir" json:"data_dir"`

	// Source is where the archive comes from: an http(s) URL, s3://bucket/key,
	// file://path or a bare path. Empty means the public download URL.
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	// Count is the number of previews per page.
	Count int `yaml:"count" json:"count"`

	// Timeout bounds the download, e.g. "30m". Empty means no limit.
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// HistoryConfig configures the inspection log.
type HistoryConfig struct {
	// Dir is the badger directory. Empty keeps history in memory.
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`

	// Limit caps `history` and /api/history results.
	Limit int `yaml:"limit" json:"limit"`
}

// S3Config configures s3:// sources.
type S3Config struct {
	Region          string `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" json:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" json:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      DefaultAddr,
			MaxUpload: DefaultMaxUpload,
		},
		Dataset: DatasetConfig{
			Dir:   dataset.DefaultDir,
			Count: dataset.DefaultCount,
		},
		History: HistoryConfig{
			Limit: 20,
		},
	}
}

// DefaultPath returns the config file location.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the config file at path (DefaultPath if empty) and applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a config file on top of the defaults without consulting
// the environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from a .env file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// ApplyEnv overrides fields from environment variables read via getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString(&c.Dataset.Dir, getenv(EnvDataDir))
	setString(&c.Dataset.Source, getenv(EnvSource))
	setString(&c.Server.Addr, getenv(EnvAddr))
	setString(&c.History.Dir, getenv(EnvHistoryDir))
	setString(&c.S3.Region, getenv(EnvS3Region))
	setString(&c.S3.Endpoint, getenv(EnvS3Endpoint))

	if v := getenv(EnvMaxUpload); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s %q: want a non-negative byte count", EnvMaxUpload, v)
		}
		c.Server.MaxUpload = n
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// DownloadTimeout parses Dataset.Timeout. Zero means no limit.
func (c *Config) DownloadTimeout() (time.Duration, error) {
	if c.Dataset.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Dataset.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid dataset timeout %q: %w", c.Dataset.Timeout, err)
	}
	return d, nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
