// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/types"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds the API server settings read from the environment.
type ServerConfig struct {
	Port          int
	DatabaseURL   string
	SQLitePath    string
	RedisAddr     string
	RedisChannel  string
	ChromePath    string
	AutosaveDelay time.Duration
	ExportTimeout time.Duration
	LogMode       string
	CORSOrigin    string
}

// Server defaults.
const (
	DefaultPort          = 8080
	DefaultRedisChannel  = "store:changes"
	DefaultAutosaveDelay = 1000 * time.Millisecond
	DefaultExportTimeout = 90 * time.Second
	DefaultLogMode       = "prod"
	DefaultCORSOrigin    = "*"
)

// LoadServerConfig reads PORT, DATABASE_URL, SQLITE_PATH, REDIS_ADDR, REDIS_CHANNEL, CHROME_PATH,
// AUTOSAVE_DELAY, EXPORT_TIMEOUT, LOG_MODE and CORS_ORIGIN. Durations accept Go
// syntax ("1s") or plain milliseconds.
func LoadServerConfig() (*ServerConfig, error) {
	port, err := getEnvInt("PORT", DefaultPort)
	if err != nil {
		return nil, err
	}
	delay, err := getEnvDuration("AUTOSAVE_DELAY", DefaultAutosaveDelay)
	if err != nil {
		return nil, err
	}
	exportTimeout, err := getEnvDuration("EXPORT_TIMEOUT", DefaultExportTimeout)
	if err != nil {
		return nil, err
	}

	cfg := &ServerConfig{
		Port:          port,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    os.Getenv("SQLITE_PATH"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisChannel:  getEnv("REDIS_CHANNEL", DefaultRedisChannel),
		ChromePath:    os.Getenv("CHROME_PATH"),
		AutosaveDelay: delay,
		ExportTimeout: exportTimeout,
		LogMode:       getEnv("LOG_MODE", DefaultLogMode),
		CORSOrigin:    getEnv("CORS_ORIGIN", DefaultCORSOrigin),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT out of range: %d", c.Port)
	}
	if c.AutosaveDelay <= 0 {
		return fmt.Errorf("config error: AUTOSAVE_DELAY must be positive")
	}
	if c.ExportTimeout <= 0 {
		return fmt.Errorf("config error: EXPORT_TIMEOUT must be positive")
	}
	if c.DatabaseURL != "" && c.SQLitePath != "" {
		return fmt.Errorf("config error: set only one of DATABASE_URL and SQLITE_PATH")
	}
	if c.LogMode != "dev" && c.LogMode != "prod" {
		return fmt.Errorf("config error: LOG_MODE must be dev or prod, got %q", c.LogMode)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return d, nil
}

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Appearance
	Template    string `json:"template,omitempty" yaml:"template,omitempty"`         // modern, minimal, creative or professional
	FontFamily  string `json:"font_family,omitempty" yaml:"font_family,omitempty"`   // Font key or display name
	ColorScheme string `json:"color_scheme,omitempty" yaml:"color_scheme,omitempty"` // Color scheme key or title

	// Export
	ChromePath    string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`       // Chrome/Chromium binary
	ExportTimeout string `json:"export_timeout,omitempty" yaml:"export_timeout,omitempty"` // Go duration, e.g. "90s"
	Output        string `json:"output,omitempty" yaml:"output,omitempty"`                 // Output directory

	// Behavior
	Verbose     bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`           // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL
}

// LoadConfig loads configuration from a JSON file, or YAML for .yaml and .yml.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are left to CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Template != "" && !types.Template(c.Template).Valid() {
		return fmt.Errorf("config error: unknown template %q", c.Template)
	}
	if c.ExportTimeout != "" {
		d, err := time.ParseDuration(c.ExportTimeout)
		if err != nil {
			return fmt.Errorf("config error: invalid 'export_timeout': %v", err)
		}
		if d <= 0 {
			return fmt.Errorf("config error: 'export_timeout' must be positive")
		}
	}
	if c.ChromePath != "" {
		if _, err := os.Stat(c.ChromePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: chrome binary not found: %s", c.ChromePath)
		}
	}
	return nil
}

// Timeout returns the parsed export timeout, or zero when unset or invalid.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.ExportTimeout)
	if err != nil {
		return 0
	}
	return d
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.FontFamily == "" {
		result.FontFamily = defaults.FontFamily
	}
	if result.ColorScheme == "" {
		result.ColorScheme = defaults.ColorScheme
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.ExportTimeout == "" {
		result.ExportTimeout = defaults.ExportTimeout
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Bool fields: OR with default
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}
