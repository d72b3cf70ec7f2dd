// Package launchapi implements the HTTP client for the launch backend.
// All methods are context-aware and share a client-side rate limiter.
// Requests are never retried; recovery is left to the caller.
package launchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/derickschaefer/liftoff/internal/model"
)

const (
	DefaultHost    = "http://localhost:8000"
	DefaultBase    = "/api"
	DefaultTimeout = 15 * time.Second
)

// ErrNotFound is returned when the backend answers 404 for a single launch.
var ErrNotFound = errors.New("launch not found")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Client is the launch backend HTTP client.
type Client struct {
	baseURL    string
	host       string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	debug      bool
}

// Options configures NewClient. Zero values fall back to the defaults.
type Options struct {
	BaseURL   string // absolute, or a path resolved against Host
	Host      string
	Timeout   time.Duration
	Rate      float64
	Debug     bool
	UserAgent string
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	host := strings.TrimRight(opts.Host, "/")
	if host == "" {
		host = DefaultHost
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ratePerSec := opts.Rate
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "liftoff-cli/dev"
	}
	baseURL := ResolveBaseURL(opts.BaseURL, host)
	return &Client{
		baseURL:   baseURL,
		host:      hostOf(baseURL, host),
		userAgent: ua,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		debug:   opts.Debug,
	}
}

// ResolveBaseURL joins a relative base path onto host. Absolute URLs are
// returned unchanged. The result never ends in a slash.
func ResolveBaseURL(base, host string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultBase
	}
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		return strings.TrimRight(base, "/")
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimRight(strings.TrimRight(host, "/")+base, "/")
}

// hostOf returns scheme://host of an absolute base URL, or fallback.
func hostOf(baseURL, fallback string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fallback
	}
	return u.Scheme + "://" + u.Host
}

// BaseURL returns the resolved API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ─── Launches ─────────────────────────────────────────────────────────────────

// ListOptions holds optional server-side parameters for GetLaunches.
type ListOptions struct {
	Status string // success|failed|upcoming
	Limit  int    // 1..500
}

// GetLaunches fetches launch records. Unknown status values are normalised.
func (c *Client) GetLaunches(ctx context.Context, opts ListOptions) ([]model.Launch, error) {
	params := url.Values{}
	if opts.Status != "" && opts.Status != model.StatusAll {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var launches []model.Launch
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/launches", params, &launches); err != nil {
		return nil, fmt.Errorf("launches: %w", err)
	}
	for i := range launches {
		launches[i].Status = model.ParseStatus(string(launches[i].Status))
	}
	if launches == nil {
		launches = []model.Launch{}
	}
	return launches, nil
}

// FetchLaunches returns the full batch.
func (c *Client) FetchLaunches(ctx context.Context) ([]model.Launch, error) {
	return c.GetLaunches(ctx, ListOptions{})
}

// GetLaunch fetches a single launch by ID.
func (c *Client) GetLaunch(ctx context.Context, id string) (*model.Launch, error) {
	var l model.Launch
	err := c.do(ctx, http.MethodGet, c.baseURL+"/launches/"+url.PathEscape(id), nil, &l)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("launch %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("launch %s: %w", id, err)
	}
	l.Status = model.ParseStatus(string(l.Status))
	return &l, nil
}

// GetServerStats fetches the backend's own aggregate counts.
func (c *Client) GetServerStats(ctx context.Context) (*model.ServerStats, error) {
	var s model.ServerStats
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/launches/stats", nil, &s); err != nil {
		return nil, fmt.Errorf("launch stats: %w", err)
	}
	return &s, nil
}

// ─── Sync & Health ────────────────────────────────────────────────────────────

// TriggerSync asks the backend to pull fresh data from upstream.
func (c *Client) TriggerSync(ctx context.Context) (*model.SyncSummary, error) {
	var s model.SyncSummary
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/trigger", nil, &s); err != nil {
		return nil, fmt.Errorf("trigger sync: %w", err)
	}
	return &s, nil
}

// Health queries the backend health endpoint, which lives at the host root.
func (c *Client) Health(ctx context.Context) (*model.Health, error) {
	var h model.Health
	if err := c.do(ctx, http.MethodGet, c.host+"/health", nil, &h); err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return &h, nil
}

// ─── Low-level HTTP ───────────────────────────────────────────────────────────

// do performs one request, decoding a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var body io.Reader
	if method == http.MethodPost {
		body = bytes.NewReader([]byte("{}"))
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if c.debug {
		slog.Debug("api request", "method", method, "url", reqURL)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}

	if c.debug {
		slog.Debug("api response", "status", resp.StatusCode, "bytes", len(data), "elapsed", time.Since(start))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Detail: extractDetail(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

const maxDetailRunes = 200

// extractDetail pulls the backend's "detail" message out of an error body,
// falling back to the trimmed body text.
func extractDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var s string
		if json.Unmarshal(envelope.Detail, &s) == nil {
			return s
		}
		return string(envelope.Detail)
	}
	text := strings.TrimSpace(string(body))
	if r := []rune(text); len(r) > maxDetailRunes {
		text = string(r[:maxDetailRunes]) + "..."
	}
	return text
}
