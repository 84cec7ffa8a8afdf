// Package storeclient provides the client interface and HTTP implementation
// for the upstream symbol store API.
package storeclient

import (
	"context"
	"encoding/json"
)

// Query holds the optional filters for a symbol query. Zero-valued fields
// are omitted from the outbound request.
type Query struct {
	// SymbolDomain filters results to a single domain.
	SymbolDomain string

	// SymbolTag filters results to symbols carrying the tag.
	SymbolTag string

	// LastSymbolID resumes a paginated query after the given symbol.
	LastSymbolID string

	// Limit caps the number of returned symbols. Values <= 0 leave the
	// limit to the upstream default.
	Limit int
}

// SymbolStore defines the operations the proxy exposes against the upstream
// symbol store. Each call maps to exactly one HTTP request; implementations
// perform no retries, batching, or caching. Payloads are relayed as raw JSON
// and never re-interpreted.
type SymbolStore interface {
	// QuerySymbols returns the symbol summaries matching the query.
	QuerySymbols(ctx context.Context, q Query) (json.RawMessage, error)

	// GetSymbol returns the symbol document with the given ID.
	GetSymbol(ctx context.Context, id string) (json.RawMessage, error)

	// PutSymbol creates or updates the symbol with the given ID and
	// returns the upstream confirmation.
	PutSymbol(ctx context.Context, id string, symbol json.RawMessage) (json.RawMessage, error)

	// ListDomains returns the known domain names in upstream order with
	// duplicates removed.
	ListDomains(ctx context.Context) ([]string, error)
}
