package storeclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/signalzero/symbolstore/internal/errortypes"
	"github.com/signalzero/symbolstore/internal/telemetry"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) (*HTTPSymbolStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := NewHTTPSymbolStore(Config{BaseURL: srv.URL, APIKey: "test-key"}, nil)
	return store, srv
}

func TestQuerySymbolsForwardsParameters(t *testing.T) {
	var gotQuery map[string][]string
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/symbol" {
			t.Errorf("Expected path /symbol, got %s", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		w.Write([]byte(`[{"id":"1","domain":"physics"}]`))
	})

	result, err := store.QuerySymbols(context.Background(), Query{
		SymbolDomain: "physics",
		SymbolTag:    "core",
		LastSymbolID: "41",
		Limit:        10,
	})
	if err != nil {
		t.Fatalf("QuerySymbols returned error: %v", err)
	}

	want := map[string][]string{
		"symbol_domain":  {"physics"},
		"symbol_tag":     {"core"},
		"last_symbol_id": {"41"},
		"limit":          {"10"},
	}
	if !reflect.DeepEqual(gotQuery, want) {
		t.Errorf("Expected query %v, got %v", want, gotQuery)
	}
	if string(result) != `[{"id":"1","domain":"physics"}]` {
		t.Errorf("Expected raw payload relayed unchanged, got %s", result)
	}
}

func TestQuerySymbolsOmitsEmptyParameters(t *testing.T) {
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Query()) != 0 {
			t.Errorf("Expected no query parameters, got %v", r.URL.Query())
		}
		w.Write([]byte(`[]`))
	})

	if _, err := store.QuerySymbols(context.Background(), Query{}); err != nil {
		t.Fatalf("QuerySymbols returned error: %v", err)
	}
}

func TestAPIKeyHeader(t *testing.T) {
	var gotKey string
	var gotAccept string
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`[]`))
	}

	// With a configured key, every request carries it
	srv := httptest.NewServer(http.HandlerFunc(handler))
	defer srv.Close()

	withKey := NewHTTPSymbolStore(Config{BaseURL: srv.URL, APIKey: "secret"}, nil)
	if _, err := withKey.QuerySymbols(context.Background(), Query{}); err != nil {
		t.Fatalf("QuerySymbols returned error: %v", err)
	}
	if gotKey != "secret" {
		t.Errorf("Expected x-api-key 'secret', got %q", gotKey)
	}
	if gotAccept != "application/json" {
		t.Errorf("Expected Accept application/json, got %q", gotAccept)
	}

	// Without a key, the header is absent
	withoutKey := NewHTTPSymbolStore(Config{BaseURL: srv.URL}, nil)
	if _, err := withoutKey.ListDomains(context.Background()); err != nil {
		t.Fatalf("ListDomains returned error: %v", err)
	}
	if gotKey != "" {
		t.Errorf("Expected no x-api-key header, got %q", gotKey)
	}
}

func TestGetSymbol(t *testing.T) {
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/symbol/sym-1" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"id":"sym-1","domain":"physics","tags":["core"]}`))
	})

	result, err := store.GetSymbol(context.Background(), "sym-1")
	if err != nil {
		t.Fatalf("GetSymbol returned error: %v", err)
	}
	if !strings.Contains(string(result), `"id":"sym-1"`) {
		t.Errorf("Expected symbol document, got %s", result)
	}
}

func TestGetSymbolNotFound(t *testing.T) {
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such symbol", http.StatusNotFound)
	})

	_, err := store.GetSymbol(context.Background(), "does-not-exist")
	if err == nil {
		t.Fatal("Expected error for missing symbol")
	}
	if !errortypes.IsNotFoundError(err) {
		t.Errorf("Expected not found error, got %v (type %s)", err, errortypes.TypeOf(err))
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected upstream status in error message, got %q", err.Error())
	}
}

func TestGetSymbolEmptyID(t *testing.T) {
	requests := 0
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	_, err := store.GetSymbol(context.Background(), "")
	if err == nil {
		t.Fatal("Expected error for empty ID")
	}
	if !errortypes.IsInvalidArgumentError(err) {
		t.Errorf("Expected invalid argument error, got %v", err)
	}
	if requests != 0 {
		t.Errorf("Expected no network call for empty ID, got %d requests", requests)
	}
}

func TestPutSymbolRoundTrip(t *testing.T) {
	payload := json.RawMessage(`{"domain":"physics","tags":["core"],"body":{"text":"E=mc^2"}}`)

	stored := map[string]json.RawMessage{}
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/save_symbol/"):
			id := strings.TrimPrefix(r.URL.Path, "/save_symbol/")
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %q", r.Header.Get("Content-Type"))
			}
			var body json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("Failed to decode put body: %v", err)
			}
			stored[id] = body
			w.Write([]byte(`{"status":"stored"}`))
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/symbol/"):
			id := strings.TrimPrefix(r.URL.Path, "/symbol/")
			body, ok := stored[id]
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Write(body)
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()
	if _, err := store.PutSymbol(ctx, "sym-7", payload); err != nil {
		t.Fatalf("PutSymbol returned error: %v", err)
	}

	got, err := store.GetSymbol(ctx, "sym-7")
	if err != nil {
		t.Fatalf("GetSymbol returned error: %v", err)
	}

	// The stored document comes back matching what was put
	var want, have interface{}
	if err := json.Unmarshal(payload, &want); err != nil {
		t.Fatalf("Failed to unmarshal payload: %v", err)
	}
	if err := json.Unmarshal(got, &have); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
	if !reflect.DeepEqual(want, have) {
		t.Errorf("Round trip mismatch: put %v, got %v", want, have)
	}
}

func TestPutSymbolEmptyID(t *testing.T) {
	requests := 0
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	_, err := store.PutSymbol(context.Background(), "", json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("Expected error for empty ID")
	}
	if !errortypes.IsInvalidArgumentError(err) {
		t.Errorf("Expected invalid argument error, got %v", err)
	}
	if requests != 0 {
		t.Errorf("Expected no network call for empty ID, got %d requests", requests)
	}
}

func TestPutSymbolUpstreamValidation(t *testing.T) {
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "schema validation failed", http.StatusBadRequest)
	})

	_, err := store.PutSymbol(context.Background(), "sym-1", json.RawMessage(`{"bad":true}`))
	if err == nil {
		t.Fatal("Expected error for rejected payload")
	}
	if !errortypes.IsInvalidArgumentError(err) {
		t.Errorf("Expected invalid argument error, got %v (type %s)", err, errortypes.TypeOf(err))
	}
	if !strings.Contains(err.Error(), "schema validation failed") {
		t.Errorf("Expected upstream message attached, got %q", err.Error())
	}
}

func TestListDomainsDeduplicates(t *testing.T) {
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/domains" {
			t.Errorf("Expected path /domains, got %s", r.URL.Path)
		}
		w.Write([]byte(`["alpha","beta","alpha","gamma","beta"]`))
	})

	domains, err := store.ListDomains(context.Background())
	if err != nil {
		t.Fatalf("ListDomains returned error: %v", err)
	}

	want := []string{"alpha", "beta", "gamma"}
	if !reflect.DeepEqual(domains, want) {
		t.Errorf("Expected %v, got %v", want, domains)
	}
}

func TestListDomainsUnexpectedPayload(t *testing.T) {
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	})

	_, err := store.ListDomains(context.Background())
	if err == nil {
		t.Fatal("Expected error for unexpected payload")
	}
	if !errortypes.IsRemoteError(err) {
		t.Errorf("Expected remote error, got %v", err)
	}
}

func TestServerErrorIsRemote(t *testing.T) {
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal failure", http.StatusInternalServerError)
	})

	_, err := store.ListDomains(context.Background())
	if err == nil {
		t.Fatal("Expected error for upstream 500")
	}
	if !errortypes.IsRemoteError(err) {
		t.Errorf("Expected remote error, got %v (type %s)", err, errortypes.TypeOf(err))
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected upstream status in message, got %q", err.Error())
	}
}

func TestTimeoutIsRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	store := NewHTTPSymbolStore(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, nil)

	_, err := store.ListDomains(context.Background())
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if !errortypes.IsRemoteError(err) {
		t.Errorf("Expected remote error for timeout, got %v", err)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("Expected timeout indication in message, got %q", err.Error())
	}
}

func TestUnreachableHostIsRemote(t *testing.T) {
	store := NewHTTPSymbolStore(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, nil)

	_, err := store.ListDomains(context.Background())
	if err == nil {
		t.Fatal("Expected error for unreachable host")
	}
	if !errortypes.IsRemoteError(err) {
		t.Errorf("Expected remote error, got %v", err)
	}
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	store := NewHTTPSymbolStore(Config{BaseURL: srv.URL + "/"}, nil)
	if _, err := store.ListDomains(context.Background()); err != nil {
		t.Fatalf("ListDomains returned error: %v", err)
	}
	if gotPath != "/domains" {
		t.Errorf("Expected path /domains, got %q", gotPath)
	}
}

func TestMetricsRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/symbol/") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`["alpha"]`))
	}))
	defer srv.Close()

	metrics := telemetry.NewMetricsCollector()
	store := NewHTTPSymbolStore(Config{BaseURL: srv.URL}, metrics)

	ctx := context.Background()
	if _, err := store.ListDomains(ctx); err != nil {
		t.Fatalf("ListDomains returned error: %v", err)
	}
	store.GetSymbol(ctx, "missing")

	if got := metrics.GetCounter(telemetry.MetricCallsListDomains); got != 1 {
		t.Errorf("Expected 1 list_domains call, got %d", got)
	}
	if got := metrics.GetCounter(telemetry.MetricCallsSuccess); got != 1 {
		t.Errorf("Expected 1 success, got %d", got)
	}
	if got := metrics.GetCounter(telemetry.MetricCallsFailure); got != 1 {
		t.Errorf("Expected 1 failure, got %d", got)
	}
	if metrics.GetTimerAverage(telemetry.MetricResponseTimeListDomains) <= 0 {
		t.Error("Expected a recorded response time for list_domains")
	}
}
