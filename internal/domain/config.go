package domain

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadConfig.
const (
	EnvPort       = "PORT"
	EnvGraphQLURL = "GRAPHQL_API_URL"
	EnvAuthToken  = "API_AUTH_TOKEN"
)

// Config represents the server configuration.
// Values are layered: defaults, then the optional config file, then
// environment variables, then command-line overrides.
type Config struct {
	Transport TransportConfig `yaml:"transport" toml:"transport"`
	GraphQL   GraphQLConfig   `yaml:"graphql" toml:"graphql"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics" toml:"metrics"`
}

// TransportConfig defines transport settings.
// Specifies whether to use stdio or HTTP transport.
type TransportConfig struct {
	Type string     `yaml:"type" toml:"type"` // "stdio" or "http"
	HTTP HTTPConfig `yaml:"http,omitempty" toml:"http"`
}

// HTTPConfig defines HTTP transport settings.
// Only used when transport type is "http".
type HTTPConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
	Path string `yaml:"path" toml:"path"`
}

// GraphQLConfig locates the backing GraphQL API.
type GraphQLConfig struct {
	URL            string `yaml:"url" toml:"url"`
	Token          string `yaml:"token,omitempty" toml:"token"` // Optional bearer credential
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty" toml:"timeout_seconds"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level      string `yaml:"level" toml:"level"`
	Format     string `yaml:"format" toml:"format"` // "json" or "console"
	File       string `yaml:"file,omitempty" toml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups,omitempty" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty" toml:"max_age_days"`
}

// MetricsConfig controls the Prometheus endpoint of the HTTP transport.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// Overrides carries command-line values. Zero values leave the
// configuration untouched.
type Overrides struct {
	Transport  string
	Port       int
	GraphQLURL string
	Token      string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportConfig{
			Type: "http",
			HTTP: HTTPConfig{
				Host: "0.0.0.0",
				Port: 3000,
				Path: "/mcp",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadConfig builds and validates the configuration.
// path may be empty, in which case only defaults, environment and
// overrides apply. YAML and TOML files are recognized by extension.
func LoadConfig(path string, overrides Overrides) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		if err := config.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnvironment(); err != nil {
		return nil, err
	}
	config.ApplyOverrides(overrides)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFile decodes the file over the current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("configuration file not found: %s", path)
		}
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("invalid TOML syntax in configuration file: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("invalid YAML syntax in configuration file: %w", err)
		}
	default:
		return fmt.Errorf("unsupported configuration file type: %s", filepath.Ext(path))
	}

	return nil
}

// ApplyEnvironment overlays PORT, GRAPHQL_API_URL and API_AUTH_TOKEN.
func (c *Config) ApplyEnvironment() error {
	if v, ok := os.LookupEnv(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvPort, v, err)
		}
		c.Transport.HTTP.Port = port
	}
	if v, ok := os.LookupEnv(EnvGraphQLURL); ok && v != "" {
		c.GraphQL.URL = v
	}
	if v, ok := os.LookupEnv(EnvAuthToken); ok && v != "" {
		c.GraphQL.Token = v
	}
	return nil
}

// ApplyOverrides overlays non-zero command-line values.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Transport != "" {
		c.Transport.Type = o.Transport
	}
	if o.Port != 0 {
		c.Transport.HTTP.Port = o.Port
	}
	if o.GraphQLURL != "" {
		c.GraphQL.URL = o.GraphQLURL
	}
	if o.Token != "" {
		c.GraphQL.Token = o.Token
	}
}

// Validate checks the configuration for completeness and correctness.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errors []string

	if err := c.validateTransport(); err != nil {
		errors = append(errors, err.Error())
	}

	if err := c.GraphQL.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	if err := c.Logging.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errors = append(errors, fmt.Sprintf("metrics path %q must start with '/'", c.Metrics.Path))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// validateTransport validates the transport configuration.
func (c *Config) validateTransport() error {
	var errors []string

	if c.Transport.Type == "" {
		errors = append(errors, "transport type is required")
	} else if c.Transport.Type != "stdio" && c.Transport.Type != "http" {
		errors = append(errors, fmt.Sprintf("invalid transport type '%s': must be 'stdio' or 'http'", c.Transport.Type))
	}

	if c.Transport.Type == "http" {
		if c.Transport.HTTP.Host == "" {
			errors = append(errors, "HTTP host is required when transport type is 'http'")
		}
		if c.Transport.HTTP.Port <= 0 || c.Transport.HTTP.Port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid HTTP port %d: must be between 1 and 65535", c.Transport.HTTP.Port))
		}
		if !strings.HasPrefix(c.Transport.HTTP.Path, "/") {
			errors = append(errors, fmt.Sprintf("HTTP path %q must start with '/'", c.Transport.HTTP.Path))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// Validate checks the backend location.
func (gc *GraphQLConfig) Validate() error {
	var errors []string

	if gc.URL == "" {
		errors = append(errors, "GraphQL API URL is required (set graphql.url or "+EnvGraphQLURL+")")
	} else {
		parsedURL, err := url.Parse(gc.URL)
		if err != nil {
			errors = append(errors, fmt.Sprintf("GraphQL API URL is invalid: %v", err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, "GraphQL API URL must use http or https scheme")
		} else if parsedURL.Host == "" {
			errors = append(errors, "GraphQL API URL must include a host")
		}
	}

	if gc.TimeoutSeconds < 0 {
		errors = append(errors, fmt.Sprintf("invalid GraphQL timeout %d: must not be negative", gc.TimeoutSeconds))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// Validate checks the logging settings.
func (lc *LoggingConfig) Validate() error {
	var errors []string

	switch lc.Level {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", lc.Level))
	}

	if lc.Format != "json" && lc.Format != "console" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'json' or 'console'", lc.Format))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}
