package input

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// maxBodySize bounds the response body read from the deals API.
const maxBodySize = 10 * 1024 * 1024

// HTTPOptions configures an HTTPSource.
type HTTPOptions struct {
	BaseURL      string        // API base, e.g. https://api.example.com
	Timeout      time.Duration // Per-request timeout (0 = none beyond ctx)
	RequireQuery bool          // Send itemQuery and reject empty queries
	UserAgent    string
	Client       *http.Client // Optional; defaults to a client with Timeout
	Logger       *slog.Logger
	Now          func() time.Time
}

// HTTPSource fetches deals from GET {base}/deals.
// Overlapping fetches are independent: none is cancelled or serialized by another.
type HTTPSource struct {
	opts   HTTPOptions
	client *http.Client
	logger *slog.Logger

	mu        sync.RWMutex
	lastFetch time.Time
}

// NewHTTPSource creates an HTTPSource.
func NewHTTPSource(opts HTTPOptions) *HTTPSource {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &HTTPSource{
		opts:   opts,
		client: client,
		logger: logger,
	}
}

// Name returns the source identifier.
func (s *HTTPSource) Name() string {
	return "http"
}

// BaseURL returns the configured API base.
func (s *HTTPSource) BaseURL() string {
	return s.opts.BaseURL
}

// RequireQuery reports whether the source runs in required-query mode.
func (s *HTTPSource) RequireQuery() bool {
	return s.opts.RequireQuery
}

// LastFetch returns the time of the last successful fetch.
func (s *HTTPSource) LastFetch() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFetch
}

// RequestURL builds the request URL for limit and itemQuery.
func (s *HTTPSource) RequestURL(limit int, itemQuery string) string {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(max(1, limit)))
	if s.opts.RequireQuery && itemQuery != "" {
		params.Set("item", itemQuery)
	}
	return strings.TrimRight(s.opts.BaseURL, "/") + "/deals?" + params.Encode()
}

// Fetch requests deals from the API.
func (s *HTTPSource) Fetch(ctx context.Context, limit int, itemQuery string) (Result, error) {
	itemQuery = strings.TrimSpace(itemQuery)
	if s.opts.RequireQuery && itemQuery == "" {
		return Result{}, &ValidationError{Field: "item", Message: ErrEmptyQuery.Error()}
	}

	reqID := ulid.MustNew(ulid.Timestamp(s.opts.Now()), rand.Reader).String()
	target := s.RequestURL(limit, itemQuery)
	logger := s.logger.With("request_id", reqID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Result{}, &NetworkError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if s.opts.UserAgent != "" {
		req.Header.Set("User-Agent", s.opts.UserAgent)
	}

	logger.Debug("fetching deals", "url", target)
	start := s.opts.Now()

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Warn("deals request failed", "error", err)
		return Result{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("deals request returned error status", "status", resp.StatusCode)
		return Result{}, &HTTPError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Result{}, &NetworkError{Err: fmt.Errorf("read response: %w", err)}
	}

	items, err := ParseItems(body)
	if err != nil {
		logger.Warn("deals response is not valid JSON", "error", err)
		return Result{}, &NetworkError{Err: fmt.Errorf("decode response: %w", err)}
	}

	now := s.opts.Now()
	s.mu.Lock()
	s.lastFetch = now
	s.mu.Unlock()

	logger.Debug("fetched deals", "count", len(items), "elapsed", now.Sub(start))
	return Result{Items: items, FetchedAt: now, RequestID: reqID}, nil
}
