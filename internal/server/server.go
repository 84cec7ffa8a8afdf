// Package server provides the MCP server implementation for the symbol
// store proxy.
package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/localrivet/gomcp/server"

	"github.com/signalzero/symbolstore/internal/errortypes"
	"github.com/signalzero/symbolstore/internal/openapi"
	"github.com/signalzero/symbolstore/internal/storeclient"
	"github.com/signalzero/symbolstore/internal/tools"
)

// ServerName identifies this MCP server to clients.
const ServerName = "signalzero-symbol-store"

// Default tool descriptions, used when the OpenAPI document is unavailable
// or does not carry a summary for the operation.
const (
	descQuerySymbols = "Query symbols in the store, optionally filtered by domain and tag"
	descGetSymbol    = "Get a symbol document by its identifier"
	descPutSymbol    = "Create or update a symbol document by its identifier"
	descListDomains  = "List the symbol domains known to the store"
)

// MCPSymbolToolServer exposes the symbol store operations as MCP tools over
// stdio. Each tool call is translated into exactly one upstream HTTP request;
// the server itself holds no mutable state.
type MCPSymbolToolServer struct {
	store     storeclient.SymbolStore
	spec      *openapi.Document
	mcpServer server.Server
}

// NewSymbolToolServer creates a new MCPSymbolToolServer instance. The
// OpenAPI document is optional; pass nil to use the built-in tool
// descriptions.
func NewSymbolToolServer(store storeclient.SymbolStore, spec *openapi.Document) *MCPSymbolToolServer {
	return &MCPSymbolToolServer{
		store: store,
		spec:  spec,
	}
}

// Initialize registers the tool surface on the MCP server.
func (s *MCPSymbolToolServer) Initialize() error {
	slog.Info("Initializing MCP symbol store server")

	if s.store == nil {
		return errortypes.ConfigurationError(errors.New("missing symbol store client"), "server initialization failed")
	}

	srv := server.NewServer(ServerName)

	srv = srv.Tool(tools.ToolQuerySymbols,
		s.spec.Summary("/symbol", "get", descQuerySymbols),
		s.handleQuerySymbols)

	srv = srv.Tool(tools.ToolGetSymbol,
		s.spec.Summary("/symbol/{id}", "get", descGetSymbol),
		s.handleGetSymbol)

	srv = srv.Tool(tools.ToolPutSymbol,
		s.spec.Summary("/save_symbol/{symbol_id}", "put", descPutSymbol),
		s.handlePutSymbol)

	srv = srv.Tool(tools.ToolListDomains,
		s.spec.Summary("/domains", "get", descListDomains),
		s.handleListDomains)

	s.mcpServer = srv
	slog.Info("MCP symbol store server initialized", "tool_count", 4)
	return nil
}

// Start starts the MCP server on the stdio transport.
func (s *MCPSymbolToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigurationError(errors.New("server not initialized"), "cannot start server")
	}

	slog.Info("Starting MCP symbol store server")

	stdioServer := s.mcpServer.AsStdio()
	return stdioServer.Run()
}

// Stop gracefully shuts down the MCP server.
func (s *MCPSymbolToolServer) Stop() error {
	slog.Info("Stopping MCP symbol store server")
	// The server exits when stdin is closed
	return nil
}

// handleQuerySymbols handles the query_symbols MCP tool call.
func (s *MCPSymbolToolServer) handleQuerySymbols(ctx *server.Context, req tools.QuerySymbolsRequest) (tools.QuerySymbolsResponse, error) {
	slog.Info("Processing query_symbols request",
		"symbol_domain", req.SymbolDomain, "symbol_tag", req.SymbolTag, "limit", req.Limit)

	response := tools.QuerySymbolsResponse{
		Status: "success",
	}

	symbols, err := s.store.QuerySymbols(context.Background(), storeclient.Query{
		SymbolDomain: req.SymbolDomain,
		SymbolTag:    req.SymbolTag,
		LastSymbolID: req.LastSymbolID,
		Limit:        req.Limit,
	})
	if err != nil {
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Code = errorCode(err)
		response.Error = err.Error()
		return response, nil
	}

	response.Symbols = symbols
	slog.Info("Successfully queried symbols")

	return response, nil
}

// handleGetSymbol handles the get_symbol_by_id MCP tool call.
func (s *MCPSymbolToolServer) handleGetSymbol(ctx *server.Context, req tools.GetSymbolRequest) (tools.GetSymbolResponse, error) {
	slog.Info("Processing get_symbol_by_id request", "id", req.ID)

	response := tools.GetSymbolResponse{
		Status: "success",
	}

	// Cheap local validation; the upstream store is the authority for the rest
	if req.ID == "" {
		err := errortypes.InvalidArgumentError(errors.New("id cannot be empty"), "invalid get_symbol_by_id request")
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Code = errorCode(err)
		response.Error = err.Error()
		return response, nil
	}

	symbol, err := s.store.GetSymbol(context.Background(), req.ID)
	if err != nil {
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Code = errorCode(err)
		response.Error = err.Error()
		return response, nil
	}

	response.Symbol = symbol
	slog.Info("Successfully fetched symbol", "id", req.ID)

	return response, nil
}

// handlePutSymbol handles the put_symbol_by_id MCP tool call.
func (s *MCPSymbolToolServer) handlePutSymbol(ctx *server.Context, req tools.PutSymbolRequest) (tools.PutSymbolResponse, error) {
	slog.Info("Processing put_symbol_by_id request", "symbol_id", req.SymbolID, "payload_length", len(req.Symbol))

	response := tools.PutSymbolResponse{
		Status: "success",
	}

	if req.SymbolID == "" {
		err := errortypes.InvalidArgumentError(errors.New("symbol_id cannot be empty"), "invalid put_symbol_by_id request")
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Code = errorCode(err)
		response.Error = err.Error()
		return response, nil
	}

	if len(req.Symbol) == 0 {
		err := errortypes.InvalidArgumentError(errors.New("symbol document is required"), "invalid put_symbol_by_id request").
			WithField("symbol_id", req.SymbolID)
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Code = errorCode(err)
		response.Error = err.Error()
		return response, nil
	}

	result, err := s.store.PutSymbol(context.Background(), req.SymbolID, req.Symbol)
	if err != nil {
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Code = errorCode(err)
		response.Error = err.Error()
		return response, nil
	}

	response.SymbolID = req.SymbolID
	response.Result = result
	slog.Info("Successfully stored symbol", "symbol_id", req.SymbolID)

	return response, nil
}

// handleListDomains handles the list_domains MCP tool call.
func (s *MCPSymbolToolServer) handleListDomains(ctx *server.Context, req tools.ListDomainsRequest) (tools.ListDomainsResponse, error) {
	slog.Info("Processing list_domains request")

	response := tools.ListDomainsResponse{
		Status: "success",
	}

	domains, err := s.store.ListDomains(context.Background())
	if err != nil {
		errortypes.LogError(nil, err)

		response.Status = "error"
		response.Code = errorCode(err)
		response.Error = err.Error()
		return response, nil
	}

	response.Domains = domains
	slog.Info("Successfully listed domains", "count", len(domains))

	return response, nil
}
