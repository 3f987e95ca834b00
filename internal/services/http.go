// HTTP implementation of [Searcher]
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/searchviz/internal/shared"
)

const defaultBaseURL string = "http://localhost:8080"

// searchResponse is the backend's JSON body for GET /search.
type searchResponse struct {
	Results    []Match `json:"results"`
	Candidates int     `json:"candidates"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// HTTPSearcher implements [Searcher] against a JSON search backend.
type HTTPSearcher struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *log.Logger
}

// NewHTTPSearcher creates a searcher for the backend at baseURL. A positive timeout bounds each search.
func NewHTTPSearcher(baseURL string, client *http.Client, timeout time.Duration, logger *log.Logger) *HTTPSearcher {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	return &HTTPSearcher{
		baseURL:    baseURL,
		httpClient: client,
		timeout:    timeout,
		logger:     logger,
	}
}

// Name returns the backend name.
func (h *HTTPSearcher) Name() string {
	return KindHTTP
}

// Search calls GET /search?q=...&type=... on the backend.
func (h *HTTPSearcher) Search(ctx context.Context, q Query, progress chan<- ProgressUpdate) (*Result, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("q", q.Text)
	if q.Type != "" {
		params.Set("type", string(q.Type))
	}
	apiURL := h.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrInvalidInput, err)
	}
	req.Header.Set("Accept", "application/json")

	sendProgress(progress, ProgressUpdate{Percent: 5, Message: "Request sent"})
	start := time.Now()

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	elapsed := time.Since(start)
	h.logger.Debug("search response", "status", resp.StatusCode, "elapsed", shared.FormatMillis(elapsed))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, body)
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrServer, err)
	}
	if len(decoded.Results) == 0 {
		return nil, fmt.Errorf("%w: for %q", shared.ErrNoResults, q.Text)
	}

	sendProgress(progress, ProgressUpdate{Percent: 95, Message: "Response received"})
	return &Result{
		Matches:      decoded.Results,
		Candidates:   max(decoded.Candidates, len(decoded.Results)),
		ResponseTime: elapsed,
	}, nil
}

// statusError maps a non-2xx response onto a sentinel, keeping the backend's detail when present.
func statusError(status int, body []byte) error {
	var sentinel error
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		sentinel = shared.ErrQueryParse
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		sentinel = shared.ErrTimeout
	case status == http.StatusTooManyRequests:
		sentinel = shared.ErrRateLimited
	default:
		sentinel = shared.ErrServer
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
		return fmt.Errorf("%w: status %d: %s", sentinel, status, errResp.Detail)
	}
	return fmt.Errorf("%w: status %d", sentinel, status)
}

// transportError classifies a failed round trip. Caller cancellation is returned unwrapped.
func transportError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", shared.ErrConnection, err)
}
