package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/signalzero/symbolstore/internal/config"
	"github.com/signalzero/symbolstore/internal/errortypes"
	"github.com/signalzero/symbolstore/internal/logger"
	"github.com/signalzero/symbolstore/internal/openapi"
	"github.com/signalzero/symbolstore/internal/server"
	"github.com/signalzero/symbolstore/internal/storeclient"
	"github.com/signalzero/symbolstore/internal/telemetry"
)

func main() {
	// Initialize logging first thing. Logs go to stderr so the MCP stdio
	// transport owns stdout.
	appLogger := setupLogging()

	appLogger.Info("SignalZero symbol store MCP proxy - Starting...")

	// Load configuration (file is optional; SYMBOL_STORE_* environment
	// variables always apply)
	cfg, err := config.InitGlobal(config.DefaultConfigFilename)
	if err != nil {
		errortypes.LogError(nil, err)
		appLogger.Fatal("Failed to load configuration")
	}

	// Configure logging based on config
	if cfg.Logging.Level != "" {
		appLogger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
		appLogger.Info("Log level set to %s", cfg.Logging.Level)
	}

	if cfg.Logging.Format == "json" {
		appLogger.SetFormat(logger.JSON)
		appLogger.Info("Log format set to JSON")
	}

	// Initialize the upstream store client
	metrics := telemetry.NewMetricsCollector()
	store := storeclient.NewHTTPSymbolStore(storeclient.Config{
		BaseURL: cfg.Store.BaseURL,
		APIKey:  cfg.Store.APIKey,
		Timeout: cfg.Timeout(),
	}, metrics)

	storeLogger := appLogger.WithContext("store")
	storeLogger.Info("Symbol store client initialized for %s", cfg.Store.BaseURL)
	if cfg.Store.APIKey != "" {
		storeLogger.Info("API key configured; x-api-key header will be sent")
	}

	// Load the OpenAPI document for tool descriptions (optional)
	var spec *openapi.Document
	if cfg.Store.SpecPath != "" {
		spec, err = openapi.Load(cfg.Store.SpecPath)
		if err != nil {
			appLogger.Warn("OpenAPI document unavailable, using built-in tool descriptions: %v", err)
			spec = nil
		}
	}

	// Initialize the MCP server
	srv := server.NewSymbolToolServer(store, spec)
	srvLogger := appLogger.WithContext("server")

	if err := srv.Initialize(); err != nil {
		errortypes.LogError(nil, err)
		appLogger.Fatal("Failed to initialize MCP server")
	}
	srvLogger.Info("MCP server initialized")

	// Handle graceful shutdown
	setupSignalHandler(metrics, appLogger)

	// Start the MCP server (blocks until the transport is closed)
	srvLogger.Info("Starting MCP server...")
	if err := srv.Start(); err != nil {
		errortypes.LogError(nil, errortypes.RemoteError(err, "MCP server failed"))
		appLogger.Fatal("Failed to start MCP server")
	}
}

// setupLogging configures and returns the application logger
func setupLogging() *logger.Logger {
	config := logger.DefaultConfig()

	// Try to get log level from environment variable
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		config.Level = logger.ParseLevel(levelStr)
	}

	appLogger := logger.New(config)
	logger.SetDefaultLogger(appLogger)

	return appLogger
}

// setupSignalHandler sets up a signal handler for graceful shutdown.
func setupSignalHandler(metrics *telemetry.MetricsCollector, log *logger.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Received shutdown signal, terminating gracefully...")

		// In-flight requests are abandoned; the upstream store is the
		// sole arbiter of whatever partial effect already landed.
		log.Info("Final metrics:\n%s", metrics.GetReport())

		log.Info("Shutdown complete")
		os.Exit(0)
	}()
}
