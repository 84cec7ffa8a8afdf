package tools

import (
	"encoding/json"
	"testing"
)

func TestPutSymbolRequestRelaysPayloadUnchanged(t *testing.T) {
	raw := `{"symbol_id":"sym-1","symbol":{"domain":"physics","tags":["core"],"nested":{"depth":2}}}`

	var req PutSymbolRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("Failed to unmarshal PutSymbolRequest: %v", err)
	}

	if req.SymbolID != "sym-1" {
		t.Errorf("Expected symbol_id 'sym-1', got %q", req.SymbolID)
	}

	// The symbol payload stays raw so field names are never re-interpreted
	want := `{"domain":"physics","tags":["core"],"nested":{"depth":2}}`
	if string(req.Symbol) != want {
		t.Errorf("Expected raw symbol %s, got %s", want, req.Symbol)
	}
}

func TestQuerySymbolsRequestOmitsEmptyFilters(t *testing.T) {
	data, err := json.Marshal(QuerySymbolsRequest{SymbolDomain: "physics"})
	if err != nil {
		t.Fatalf("Failed to marshal QuerySymbolsRequest: %v", err)
	}

	var jsonMap map[string]interface{}
	if err := json.Unmarshal(data, &jsonMap); err != nil {
		t.Fatalf("Failed to unmarshal JSON into map: %v", err)
	}

	if jsonMap["symbol_domain"] != "physics" {
		t.Errorf("Expected symbol_domain 'physics', got %v", jsonMap["symbol_domain"])
	}
	for _, field := range []string{"symbol_tag", "last_symbol_id", "limit"} {
		if _, exists := jsonMap[field]; exists {
			t.Errorf("Expected %q to be omitted when empty", field)
		}
	}
}

func TestErrorFieldsOmittedOnSuccess(t *testing.T) {
	resp := ListDomainsResponse{
		Status:  "success",
		Domains: []string{"alpha", "beta"},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal ListDomainsResponse: %v", err)
	}

	var jsonMap map[string]interface{}
	if err := json.Unmarshal(data, &jsonMap); err != nil {
		t.Fatalf("Failed to unmarshal JSON into map: %v", err)
	}

	if _, exists := jsonMap["error"]; exists {
		t.Error("Expected 'error' field to be omitted on success")
	}
	if _, exists := jsonMap["code"]; exists {
		t.Error("Expected 'code' field to be omitted on success")
	}
	if _, exists := jsonMap["domains"]; !exists {
		t.Error("Expected 'domains' field to be present")
	}
}

func TestErrorResponseCarriesCode(t *testing.T) {
	resp := GetSymbolResponse{
		Status: "error",
		Code:   "not_found",
		Error:  "symbol not found: GET /symbol/missing returned status 404",
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal GetSymbolResponse: %v", err)
	}

	var jsonMap map[string]interface{}
	if err := json.Unmarshal(data, &jsonMap); err != nil {
		t.Fatalf("Failed to unmarshal JSON into map: %v", err)
	}

	if jsonMap["code"] != "not_found" {
		t.Errorf("Expected code 'not_found', got %v", jsonMap["code"])
	}
	if _, exists := jsonMap["symbol"]; exists {
		t.Error("Expected 'symbol' field to be omitted on error")
	}
}
