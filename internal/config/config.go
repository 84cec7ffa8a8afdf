package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/localrivet/configurator"

	"github.com/signalzero/symbolstore/internal/errortypes"
)

// Global configuration instance
var (
	// Global is the global configuration instance
	Global *Config
	// initOnce ensures initialization happens only once
	initOnce sync.Once
)

// InitGlobal initializes the global configuration
func InitGlobal(configPath string) (*Config, error) {
	var err error
	initOnce.Do(func() {
		Global, err = LoadConfigWithPath(configPath)
	})
	return Global, err
}

// Config represents the symbol store proxy configuration. It is read once
// at startup and treated as immutable afterwards.
type Config struct {
	// Store contains upstream symbol store configuration.
	Store struct {
		// BaseURL is the base URL of the symbol store API.
		BaseURL string `json:"base_url" env:"BASE_URL" validate:"required"`

		// APIKey is attached as the x-api-key header on every upstream
		// request when non-empty.
		APIKey string `json:"api_key" env:"API_KEY"`

		// SpecPath is the path to the OpenAPI document describing the
		// upstream API. Used for tool descriptions only.
		SpecPath string `json:"spec_path" env:"SPEC_PATH"`

		// TimeoutSeconds is the HTTP timeout for upstream requests.
		TimeoutSeconds int `json:"timeout_seconds" env:"TIMEOUT_SECONDS" validate:"min:1"`
	} `json:"store"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename = ".symbolstoreconfig"
	DefaultBaseURL        = "https://qnw96whs57.execute-api.us-west-2.amazonaws.com/prod"
	DefaultSpecPath       = "aws/global_symbols_openapi.yaml"
	DefaultTimeoutSeconds = 30
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"

	// EnvPrefix is the prefix for environment variable overrides, so the
	// base URL is read from SYMBOL_STORE_BASE_URL and the API key from
	// SYMBOL_STORE_API_KEY.
	EnvPrefix = "SYMBOL_STORE"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Store.BaseURL = DefaultBaseURL
	config.Store.SpecPath = DefaultSpecPath
	config.Store.TimeoutSeconds = DefaultTimeoutSeconds
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path. The file
// is optional: when it does not exist, defaults plus environment variable
// overrides are used.
func LoadConfigWithPath(configPath string) (*Config, error) {
	// Configuration loading happens before the application logger exists,
	// and stdout is reserved for the MCP transport.
	stdLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	config := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider())

	if _, err := os.Stat(configPath); err == nil {
		stdLogger.Info("Loading configuration", "path", configPath)
		config = config.WithProvider(configurator.NewFileProvider(configPath))
	} else {
		stdLogger.Info("Config file not found, using defaults and environment", "path", configPath)
	}

	// Environment overrides apply whether or not a file is present, so the
	// SYMBOL_STORE_BASE_URL / SYMBOL_STORE_API_KEY contract always holds.
	config = config.
		WithProvider(configurator.NewEnvProvider(EnvPrefix)).
		WithValidator(configurator.NewDefaultValidator())

	ctx := context.Background()
	if err := config.Load(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// Validate checks that the loaded configuration is usable. The base URL must
// be a non-empty absolute http(s) URL.
func (c *Config) Validate() error {
	if c.Store.BaseURL == "" {
		return errortypes.ConfigurationError(
			errors.New("base URL is empty"),
			"symbol store base URL is required")
	}

	parsed, err := url.Parse(c.Store.BaseURL)
	if err != nil {
		return errortypes.ConfigurationError(err, "symbol store base URL is malformed").
			WithField("base_url", c.Store.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errortypes.ConfigurationError(
			fmt.Errorf("unsupported scheme %q", parsed.Scheme),
			"symbol store base URL must be http or https").
			WithField("base_url", c.Store.BaseURL)
	}
	if parsed.Host == "" {
		return errortypes.ConfigurationError(
			errors.New("base URL has no host"),
			"symbol store base URL must be absolute").
			WithField("base_url", c.Store.BaseURL)
	}

	if c.Store.TimeoutSeconds <= 0 {
		return errortypes.ConfigurationError(
			fmt.Errorf("timeout_seconds is %d", c.Store.TimeoutSeconds),
			"upstream timeout must be positive")
	}

	return nil
}

// Timeout returns the upstream HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Store.TimeoutSeconds) * time.Second
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}
