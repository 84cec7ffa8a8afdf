package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/signalzero/symbolstore/internal/errortypes"
	"github.com/signalzero/symbolstore/internal/telemetry"
)

// DefaultTimeout is the upstream HTTP timeout used when none is configured.
const DefaultTimeout = 30 * time.Second

// Upstream paths, fixed by the symbol store OpenAPI contract.
const (
	pathQuerySymbols = "/symbol"
	pathGetSymbol    = "/symbol/"
	pathPutSymbol    = "/save_symbol/"
	pathListDomains  = "/domains"
)

// Config holds the settings for an HTTPSymbolStore.
type Config struct {
	// BaseURL is the base URL of the symbol store API.
	BaseURL string

	// APIKey, when non-empty, is sent as the x-api-key header on every
	// request. When empty no key header is sent.
	APIKey string

	// Timeout bounds each upstream request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// HTTPSymbolStore is the SymbolStore implementation backed by the upstream
// HTTP API. It holds no mutable state beyond its configuration; every
// outbound request is fully determined by the configuration and the call
// arguments, so instances are safe for concurrent use.
type HTTPSymbolStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	metrics    *telemetry.MetricsCollector
}

// NewHTTPSymbolStore creates a new HTTPSymbolStore. The metrics collector is
// optional; pass nil to disable telemetry.
func NewHTTPSymbolStore(cfg Config, metrics *telemetry.MetricsCollector) *HTTPSymbolStore {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &HTTPSymbolStore{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
	}
}

// QuerySymbols returns the symbol summaries matching the query.
func (s *HTTPSymbolStore) QuerySymbols(ctx context.Context, q Query) (json.RawMessage, error) {
	params := url.Values{}
	if q.SymbolDomain != "" {
		params.Set("symbol_domain", q.SymbolDomain)
	}
	if q.SymbolTag != "" {
		params.Set("symbol_tag", q.SymbolTag)
	}
	if q.LastSymbolID != "" {
		params.Set("last_symbol_id", q.LastSymbolID)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	s.countCall(telemetry.MetricCallsQuerySymbols)
	started := time.Now()

	body, status, err := s.doRequest(ctx, http.MethodGet, pathQuerySymbols, params, nil)
	if err != nil {
		s.countFailure()
		return nil, err
	}

	if status < 200 || status >= 300 {
		s.countFailure()
		if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
			return nil, s.upstreamError(errortypes.ErrorTypeInvalidArgument,
				"symbol query rejected by upstream", http.MethodGet, pathQuerySymbols, status, body)
		}
		return nil, s.upstreamError(errortypes.ErrorTypeRemote,
			"symbol query failed", http.MethodGet, pathQuerySymbols, status, body)
	}

	s.countSuccess(telemetry.MetricResponseTimeQuerySymbols, started)
	return normalizePayload(body), nil
}

// GetSymbol returns the symbol document with the given ID.
func (s *HTTPSymbolStore) GetSymbol(ctx context.Context, id string) (json.RawMessage, error) {
	if id == "" {
		return nil, errortypes.InvalidArgumentError(
			errors.New("id cannot be empty"), "get_symbol_by_id requires a symbol ID")
	}

	path := pathGetSymbol + url.PathEscape(id)

	s.countCall(telemetry.MetricCallsGetSymbol)
	started := time.Now()

	body, status, err := s.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		s.countFailure()
		return nil, err
	}

	if status < 200 || status >= 300 {
		s.countFailure()
		if status == http.StatusNotFound {
			return nil, s.upstreamError(errortypes.ErrorTypeNotFound,
				"symbol not found", http.MethodGet, path, status, body).
				WithField("symbol_id", id)
		}
		return nil, s.upstreamError(errortypes.ErrorTypeRemote,
			"symbol fetch failed", http.MethodGet, path, status, body).
			WithField("symbol_id", id)
	}

	s.countSuccess(telemetry.MetricResponseTimeGetSymbol, started)
	return normalizePayload(body), nil
}

// PutSymbol creates or updates the symbol with the given ID.
func (s *HTTPSymbolStore) PutSymbol(ctx context.Context, id string, symbol json.RawMessage) (json.RawMessage, error) {
	if id == "" {
		return nil, errortypes.InvalidArgumentError(
			errors.New("symbol_id cannot be empty"), "put_symbol_by_id requires a symbol ID")
	}
	if len(symbol) == 0 {
		return nil, errortypes.InvalidArgumentError(
			errors.New("symbol payload is empty"), "put_symbol_by_id requires a symbol document")
	}

	path := pathPutSymbol + url.PathEscape(id)

	s.countCall(telemetry.MetricCallsPutSymbol)
	started := time.Now()

	body, status, err := s.doRequest(ctx, http.MethodPut, path, nil, bytes.NewReader(symbol))
	if err != nil {
		s.countFailure()
		return nil, err
	}

	if status < 200 || status >= 300 {
		s.countFailure()
		if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
			return nil, s.upstreamError(errortypes.ErrorTypeInvalidArgument,
				"symbol rejected by upstream validation", http.MethodPut, path, status, body).
				WithField("symbol_id", id)
		}
		return nil, s.upstreamError(errortypes.ErrorTypeRemote,
			"symbol save failed", http.MethodPut, path, status, body).
			WithField("symbol_id", id)
	}

	s.countSuccess(telemetry.MetricResponseTimePutSymbol, started)
	return normalizePayload(body), nil
}

// ListDomains returns the known domain names in upstream order with
// duplicates removed.
func (s *HTTPSymbolStore) ListDomains(ctx context.Context) ([]string, error) {
	s.countCall(telemetry.MetricCallsListDomains)
	started := time.Now()

	body, status, err := s.doRequest(ctx, http.MethodGet, pathListDomains, nil, nil)
	if err != nil {
		s.countFailure()
		return nil, err
	}

	if status < 200 || status >= 300 {
		s.countFailure()
		return nil, s.upstreamError(errortypes.ErrorTypeRemote,
			"domain listing failed", http.MethodGet, pathListDomains, status, body)
	}

	var domains []string
	if err := json.Unmarshal(body, &domains); err != nil {
		s.countFailure()
		return nil, errortypes.RemoteError(err, "domain listing returned an unexpected payload")
	}

	// Upstream order is preserved; first occurrence wins.
	seen := make(map[string]struct{}, len(domains))
	unique := make([]string, 0, len(domains))
	for _, d := range domains {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		unique = append(unique, d)
	}

	s.countSuccess(telemetry.MetricResponseTimeListDomains, started)
	return unique, nil
}

// doRequest performs a single HTTP exchange against the upstream store and
// returns the response body and status code. Transport-level failures are
// returned as remote errors with a timeout indication where applicable.
func (s *HTTPSymbolStore) doRequest(ctx context.Context, method, path string, params url.Values, body io.Reader) ([]byte, int, error) {
	reqURL := s.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, 0, errortypes.ConfigurationError(err, "failed to build upstream request").
			WithField("url", reqURL)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("x-api-key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, 0, errortypes.RemoteError(err, "upstream request timed out").
				WithField("url", reqURL)
		}
		return nil, 0, errortypes.RemoteError(err, "failed to reach symbol store").
			WithField("url", reqURL)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, errortypes.RemoteError(err, "failed to read upstream response").
			WithField("url", reqURL)
	}

	return respBody, resp.StatusCode, nil
}

// upstreamError builds an AppError of the given type carrying the upstream
// status and response body.
func (s *HTTPSymbolStore) upstreamError(errType errortypes.ErrorType, message, method, path string, status int, body []byte) *errortypes.AppError {
	underlying := fmt.Errorf("%s %s returned status %d: %s",
		method, s.baseURL+path, status, strings.TrimSpace(string(body)))

	var appErr *errortypes.AppError
	switch errType {
	case errortypes.ErrorTypeInvalidArgument:
		appErr = errortypes.InvalidArgumentError(underlying, message)
	case errortypes.ErrorTypeNotFound:
		appErr = errortypes.NotFoundError(underlying, message)
	default:
		appErr = errortypes.RemoteError(underlying, message)
	}

	return appErr.WithField("status_code", status)
}

// isTimeout reports whether a transport error is a timeout or cancellation
// deadline expiry.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// normalizePayload makes an upstream body usable as a json.RawMessage.
// Some upstream operations return an empty body on success.
func normalizePayload(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(trimmed)
}

func (s *HTTPSymbolStore) countCall(name string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter(name, 1)
	s.metrics.RecordTimestamp(telemetry.MetricLastUpstreamCall)
}

func (s *HTTPSymbolStore) countSuccess(timer string, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter(telemetry.MetricCallsSuccess, 1)
	s.metrics.RecordTimer(timer, time.Since(started))
}

func (s *HTTPSymbolStore) countFailure() {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter(telemetry.MetricCallsFailure, 1)
}
