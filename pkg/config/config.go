// Package config provides configuration structures and loading logic for
// the telemetry pipeline.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the pipeline configuration: the instrumentation key, the
// ingestion endpoints to fan out to, and ambient settings.
type Config struct {
	InstrumentationKey string `yaml:"instrumentation_key"`

	Endpoints []EndpointConfig `yaml:"endpoints"`
	Logging   LoggingConfig    `yaml:"logging"`
}

// EndpointConfig describes one ingestion endpoint.
type EndpointConfig struct {
	// URL is the full track URL, e.g. "https://dc.example.com/v2/track".
	URL string `yaml:"url"`
	// UseAuth attaches a bearer token from the configured token provider.
	// Without it the endpoint runs in key-only mode.
	UseAuth bool `yaml:"use_auth"`
}

// LoggingConfig holds configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a file and applies environment variable
// overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		// Defaults
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	if path != "" {
		//nolint:gosec // Config file path is controlled by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("METERBRIDGE_IKEY"); val != "" {
		cfg.InstrumentationKey = val
	}
	if val := os.Getenv("METERBRIDGE_ENDPOINT"); val != "" {
		if len(cfg.Endpoints) == 0 {
			cfg.Endpoints = []EndpointConfig{{URL: val}}
		} else {
			cfg.Endpoints[0].URL = val
		}
	}
	if val := os.Getenv("METERBRIDGE_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
}

// Validate checks the configuration for the mistakes that must fail fast:
// a missing key, no endpoints, or endpoints that cannot be parsed.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.InstrumentationKey) == "" {
		return fmt.Errorf("instrumentation_key is required")
	}
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("at least one endpoint is required")
	}
	for i, ep := range c.Endpoints {
		u, err := url.Parse(ep.URL)
		if err != nil {
			return fmt.Errorf("endpoint %d: invalid url %q: %w", i, ep.URL, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("endpoint %d: invalid url %q", i, ep.URL)
		}
	}
	return nil
}
