// Package tools defines the tool names and request/response schemas
// for the symbol store proxy.
package tools

import "encoding/json"

const (
	// ToolQuerySymbols is the name of the query_symbols MCP tool
	ToolQuerySymbols = "query_symbols"

	// ToolGetSymbol is the name of the get_symbol_by_id MCP tool
	ToolGetSymbol = "get_symbol_by_id"

	// ToolPutSymbol is the name of the put_symbol_by_id MCP tool
	ToolPutSymbol = "put_symbol_by_id"

	// ToolListDomains is the name of the list_domains MCP tool
	ToolListDomains = "list_domains"
)

// QuerySymbolsRequest defines the input schema for the query_symbols tool.
// All fields are optional; empty fields are omitted from the upstream query.
type QuerySymbolsRequest struct {
	// SymbolDomain filters results to a single domain
	SymbolDomain string `json:"symbol_domain,omitempty"`

	// SymbolTag filters results to symbols carrying the tag
	SymbolTag string `json:"symbol_tag,omitempty"`

	// LastSymbolID resumes a paginated query after the given symbol
	LastSymbolID string `json:"last_symbol_id,omitempty"`

	// Limit caps the number of returned symbols
	Limit int `json:"limit,omitempty"`
}

// QuerySymbolsResponse defines the output schema for the query_symbols tool
type QuerySymbolsResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Symbols contains the matching symbol summaries as returned upstream
	Symbols json.RawMessage `json:"symbols,omitempty"`

	// Code is a stable machine-readable error code when Status is "error"
	Code string `json:"code,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// GetSymbolRequest defines the input schema for the get_symbol_by_id tool
type GetSymbolRequest struct {
	// ID is the identifier of the symbol to fetch
	ID string `json:"id"`
}

// GetSymbolResponse defines the output schema for the get_symbol_by_id tool
type GetSymbolResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Symbol contains the symbol document as returned upstream
	Symbol json.RawMessage `json:"symbol,omitempty"`

	// Code is a stable machine-readable error code when Status is "error"
	Code string `json:"code,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// PutSymbolRequest defines the input schema for the put_symbol_by_id tool
type PutSymbolRequest struct {
	// SymbolID is the identifier to store the symbol under
	SymbolID string `json:"symbol_id"`

	// Symbol is the symbol document, relayed to the upstream store
	// without re-interpretation
	Symbol json.RawMessage `json:"symbol"`
}

// PutSymbolResponse defines the output schema for the put_symbol_by_id tool
type PutSymbolResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// SymbolID echoes the identifier the symbol was stored under
	SymbolID string `json:"symbol_id,omitempty"`

	// Result contains the upstream confirmation payload
	Result json.RawMessage `json:"result,omitempty"`

	// Code is a stable machine-readable error code when Status is "error"
	Code string `json:"code,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// ListDomainsRequest defines the input schema for the list_domains tool
type ListDomainsRequest struct{}

// ListDomainsResponse defines the output schema for the list_domains tool
type ListDomainsResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Domains contains the domain names in upstream order, deduplicated
	Domains []string `json:"domains,omitempty"`

	// Code is a stable machine-readable error code when Status is "error"
	Code string `json:"code,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}
