// Package symbolstore provides the SignalZero symbol store MCP proxy as an
// embeddable service: a thin layer translating four named tools into HTTP
// calls against the configured symbol store API.
package symbolstore

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/signalzero/symbolstore/internal/config"
	"github.com/signalzero/symbolstore/internal/errortypes"
	"github.com/signalzero/symbolstore/internal/openapi"
	"github.com/signalzero/symbolstore/internal/server"
	"github.com/signalzero/symbolstore/internal/storeclient"
	"github.com/signalzero/symbolstore/internal/telemetry"
)

// Config represents the configuration for the symbol store proxy.
type Config = config.Config

// Query holds the optional filters for a symbol query.
type Query = storeclient.Query

// Server represents the symbol store proxy service.
type Server struct {
	config     *config.Config
	store      storeclient.SymbolStore
	spec       *openapi.Document
	metrics    *telemetry.MetricsCollector
	toolServer server.SymbolToolServer
	logger     *slog.Logger
}

// ServerOptions defines the options for creating a new Server.
type ServerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewServer creates a new symbol store proxy Server with the given options.
// If opts.Config is provided, it is used directly. Otherwise, if
// opts.ConfigPath is provided, configuration is loaded from that path.
// If neither is provided, DefaultConfig() is used.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		if err := cfg.Validate(); err != nil {
			logger.Error("Provided configuration is invalid", "error", err)
			return nil, err
		}
		logger.Info("Using provided Config object for server initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for server initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigurationError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration")
		cfg = DefaultConfig()
	}

	store, spec, metrics, err := CreateComponents(cfg, logger)
	if err != nil {
		logger.Error("Failed to create components during server initialization", "error", err)
		return nil, err
	}

	logger.Info("Initializing symbol tool server component")
	mcpServer := server.NewSymbolToolServer(store, spec)
	if err := mcpServer.Initialize(); err != nil {
		logger.Error("Failed to initialize MCP symbol tool server component", "error", err)
		return nil, errortypes.ConfigurationError(err, "Failed to initialize MCP symbol tool server component")
	}

	logger.Info("Symbol store proxy successfully initialized")
	return &Server{
		config:     cfg,
		store:      store,
		spec:       spec,
		metrics:    metrics,
		toolServer: mcpServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the symbol store proxy.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// Start starts the symbol store proxy on the stdio transport. Blocks until
// the transport closes.
func (s *Server) Start() error {
	s.logger.Info("Starting symbol store proxy")
	return s.toolServer.Start()
}

// Stop stops the symbol store proxy.
func (s *Server) Stop() error {
	s.logger.Info("Stopping symbol store proxy")
	return s.toolServer.Stop()
}

// QuerySymbols queries the upstream store directly, bypassing the MCP
// transport. Useful when embedding the proxy in another process.
func (s *Server) QuerySymbols(ctx context.Context, q Query) (json.RawMessage, error) {
	s.logger.Debug("Querying symbols", "symbol_domain", q.SymbolDomain, "symbol_tag", q.SymbolTag)
	return s.store.QuerySymbols(ctx, q)
}

// GetSymbol fetches a symbol document directly from the upstream store.
func (s *Server) GetSymbol(ctx context.Context, id string) (json.RawMessage, error) {
	s.logger.Debug("Fetching symbol", "id", id)
	return s.store.GetSymbol(ctx, id)
}

// PutSymbol stores a symbol document directly in the upstream store.
func (s *Server) PutSymbol(ctx context.Context, id string, symbol json.RawMessage) (json.RawMessage, error) {
	s.logger.Debug("Storing symbol", "id", id)
	return s.store.PutSymbol(ctx, id, symbol)
}

// ListDomains lists the upstream store's domains directly.
func (s *Server) ListDomains(ctx context.Context) ([]string, error) {
	s.logger.Debug("Listing domains")
	return s.store.ListDomains(ctx)
}

// GetStore returns the symbol store client used by the server.
func (s *Server) GetStore() storeclient.SymbolStore {
	return s.store
}

// GetMetrics returns the telemetry collector used by the server.
func (s *Server) GetMetrics() *telemetry.MetricsCollector {
	return s.metrics
}

// CreateComponents creates the components of the symbol store proxy without
// creating a server instance. This is useful for embedders that need direct
// access to the store client.
func CreateComponents(cfg *Config, logger *slog.Logger) (storeclient.SymbolStore, *openapi.Document, *telemetry.MetricsCollector, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration failed validation in CreateComponents", "error", err)
		return nil, nil, nil, err
	}

	metrics := telemetry.NewMetricsCollector()

	logger.Info("Initializing symbol store client", "base_url", cfg.Store.BaseURL, "timeout", cfg.Timeout())
	store := storeclient.NewHTTPSymbolStore(storeclient.Config{
		BaseURL: cfg.Store.BaseURL,
		APIKey:  cfg.Store.APIKey,
		Timeout: cfg.Timeout(),
	}, metrics)

	// The OpenAPI document only feeds tool descriptions, so a missing or
	// unreadable document is not fatal.
	var spec *openapi.Document
	if cfg.Store.SpecPath != "" {
		var err error
		spec, err = openapi.Load(cfg.Store.SpecPath)
		if err != nil {
			logger.Warn("OpenAPI document unavailable, using built-in tool descriptions",
				"path", cfg.Store.SpecPath, "error", err)
			spec = nil
		} else {
			logger.Info("Loaded OpenAPI document", "path", cfg.Store.SpecPath, "title", spec.Info.Title)
		}
	}

	logger.Info("Components successfully initialized")
	return store, spec, metrics, nil
}
