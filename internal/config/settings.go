package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/handiism/artcache/internal/http"
	"github.com/handiism/artcache/internal/logging"
	"github.com/handiism/artcache/internal/tracing"
)

// Environment variables that override file settings.
const (
	EnvCacheDir      = "ARTCACHE_CACHE_DIR"
	EnvAPIKey        = "ARTCACHE_API_KEY"
	EnvMaxConcurrent = "ARTCACHE_MAX_CONCURRENT"
	EnvLogLevel      = "ARTCACHE_LOG_LEVEL"
	EnvOTLPEndpoint  = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Settings holds all configuration options.
type Settings struct {
	// Cache settings
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// Download settings
	MaxConcurrentDownloads int    `json:"max_concurrent_downloads" yaml:"max_concurrent_downloads"`
	RequestTimeoutSeconds  int    `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	UserAgent              string `json:"user_agent" yaml:"user_agent"`
	APIKey                 string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Logging
	LogLevel  string `json:"log_level" yaml:"log_level"`   // debug, info, warn, error
	LogFormat string `json:"log_format" yaml:"log_format"` // text, json

	// Observability
	TracingEndpoint string `json:"tracing_endpoint,omitempty" yaml:"tracing_endpoint,omitempty"`
	MetricsFile     string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// DefaultCacheDir returns the per-user image cache directory.
func DefaultCacheDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "GameLauncher", "ImageCache")
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		CacheDir:               DefaultCacheDir(),
		MaxConcurrentDownloads: 10,
		RequestTimeoutSeconds:  60,
		UserAgent:              "GameLauncher",
		LogLevel:               "info",
		LogFormat:              "text",
	}
}

// Load reads settings from a YAML (.yaml, .yml) or JSON file and applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := unmarshal(path, data, settings); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	if err := settings.ApplyEnv(); err != nil {
		return nil, err
	}
	return settings, nil
}

// LoadEnvFile loads variables from .env files into the process environment.
// Missing files are ignored; variables already set are not overwritten.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from ARTCACHE_* and OTEL_* variables.
func (s *Settings) ApplyEnv() error {
	if v := os.Getenv(EnvCacheDir); v != "" {
		s.CacheDir = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		s.APIKey = v
	}
	if v := os.Getenv(EnvMaxConcurrent); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%s: invalid value %q", EnvMaxConcurrent, v)
		}
		s.MaxConcurrentDownloads = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv(EnvOTLPEndpoint); v != "" {
		s.TracingEndpoint = v
	}
	return nil
}

// Save writes settings to a YAML or JSON file, chosen by extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Concurrency returns the download bound, never less than one.
func (s *Settings) Concurrency() int {
	if s.MaxConcurrentDownloads < 1 {
		return 1
	}
	return s.MaxConcurrentDownloads
}

// ToHTTPOptions converts settings to http.Options.
func (s *Settings) ToHTTPOptions() http.Options {
	opts := http.DefaultOptions()
	if s.RequestTimeoutSeconds > 0 {
		opts.Timeout = time.Duration(s.RequestTimeoutSeconds) * time.Second
	}
	if s.UserAgent != "" {
		opts.UserAgent = s.UserAgent
	}
	opts.APIKey = s.APIKey
	return opts
}

// ToLoggingConfig converts settings to logging.Config.
func (s *Settings) ToLoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if s.LogLevel != "" {
		cfg.Level = s.LogLevel
	}
	if s.LogFormat != "" {
		cfg.Format = s.LogFormat
	}
	return cfg
}

// ToTracingConfig converts settings to tracing.Config.
func (s *Settings) ToTracingConfig() tracing.Config {
	return tracing.Config{
		Enabled:  s.TracingEndpoint != "",
		Endpoint: s.TracingEndpoint,
	}
}

func unmarshal(path string, data []byte, s *Settings) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, s)
	}
	return json.Unmarshal(data, s)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
