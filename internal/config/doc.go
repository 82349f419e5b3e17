// Package config provides configuration management for artcache.
//
// This package handles:
//   - Loading and saving settings from YAML or JSON files
//   - Default configuration values
//   - Environment overrides, including variables from a .env file
//   - Conversion to http, logging and tracing options for other packages
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Caches to <user config dir>/GameLauncher/ImageCache
//	// Up to 10 concurrent downloads, 60s request timeout
//
// # Loading from File
//
//	_ = config.LoadEnvFile()
//	settings, err := config.Load("artcache.yaml")
//	if err != nil {
//	    // malformed file or invalid override; a missing file is not an error
//	}
//
// # Environment
//
//   - ARTCACHE_CACHE_DIR: cache directory
//   - ARTCACHE_API_KEY: bearer credential for the image provider
//   - ARTCACHE_MAX_CONCURRENT: download bound
//   - ARTCACHE_LOG_LEVEL: debug, info, warn or error
//   - OTEL_EXPORTER_OTLP_ENDPOINT: enables tracing
package config
