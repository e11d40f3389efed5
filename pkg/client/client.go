// Package client provides the mod.io REST client. Responses are served
// from an in-memory cache.ResponseCache when fresh and stored there after
// a live fetch.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/modio-client/pkg/cache"
	"github.com/Sternrassler/modio-client/pkg/filter"
	"github.com/Sternrassler/modio-client/pkg/logging"
	"github.com/Sternrassler/modio-client/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modio_requests_total",
		Help: "Total live API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "modio_request_duration_seconds",
		Help:    "Live API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	cacheServedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modio_cache_served_total",
		Help: "Total API requests answered from the response cache",
	})
)

// DefaultTimeout is the timeout of the default HTTP client.
const DefaultTimeout = 30 * time.Second

// Client is the mod.io API client.
type Client struct {
	httpClient *http.Client
	cache      *cache.ResponseCache
	identity   session.Source
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.mod.io/v1".
	BaseURL string

	// APIKey is appended to every request as api_key.
	APIKey string

	// UserAgent header sent with every request.
	UserAgent string

	// HTTPClient overrides the default client.
	HTTPClient *http.Client

	// Cache stores responses. nil disables caching.
	Cache *cache.ResponseCache

	// Identity supplies the bearer token of the logged-in user. nil uses
	// the Source the cache observes.
	Identity session.Source
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Cache != nil && cfg.Cache.Normalizer().BaseURL() != cfg.BaseURL {
		return nil, fmt.Errorf("cache base url %q does not match client base url %q",
			cfg.Cache.Normalizer().BaseURL(), cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	identity := cfg.Identity
	if identity == nil && cfg.Cache != nil {
		identity = cfg.Cache.Identity()
	}
	if identity == nil {
		identity = session.Static("")
	}

	return &Client{
		httpClient: httpClient,
		cache:      cfg.Cache,
		identity:   identity,
		config:     cfg,
		logger:     logging.NewLogger("modio-client"),
	}, nil
}

// URL builds the full request URL for endpoint with the rendered filter.
// The credential goes last so the cache can strip it from the key.
//
// Example: https://api.mod.io/v1/games/1/mods?_sort=-id&api_key=KEY
func (c *Client) URL(endpoint string, fs *filter.FilterSet) string {
	u := c.config.BaseURL + "/" + strings.TrimLeft(endpoint, "/")

	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	if query := fs.Render(); query != "" {
		u += sep + query
		sep = "&"
	}
	if c.config.APIKey != "" {
		u += sep + "api_key=" + c.config.APIKey
	}
	return u
}

// Get returns the response body of endpoint filtered by fs, from the cache
// when possible. fs may be nil.
func (c *Client) Get(ctx context.Context, endpoint string, fs *filter.FilterSet) ([]byte, error) {
	return c.get(ctx, c.identity.IdentityToken(), endpoint, fs)
}

// get serves endpoint on behalf of identity. The identity is captured once
// by the caller so the cache lookup, the bearer token and the cache write
// all refer to the same session.
func (c *Client) get(ctx context.Context, identity, endpoint string, fs *filter.FilterSet) ([]byte, error) {
	if strings.Trim(endpoint, "/") == "" {
		return nil, ErrEmptyEndpoint
	}

	requestURL := c.URL(endpoint, fs)
	if c.cache != nil {
		if body, ok := c.cache.TryGetAs(identity, requestURL); ok {
			cacheServedTotal.Inc()
			return []byte(body), nil
		}
	}

	return c.fetchAndStore(ctx, identity, endpoint, requestURL)
}

// Logout drops every cached response and ends the session when the
// identity source supports it.
func (c *Client) Logout(ctx context.Context) error {
	if c.cache != nil {
		c.cache.Clear()
	}
	if l, ok := c.identity.(interface{ Logout(context.Context) error }); ok {
		if err := l.Logout(ctx); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
	}
	return nil
}

// Cache returns the response cache, or nil when caching is disabled.
func (c *Client) Cache() *cache.ResponseCache {
	return c.cache
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) fetchAndStore(ctx context.Context, identity, endpoint, requestURL string) ([]byte, error) {
	body, err := c.fetch(ctx, identity, endpoint, requestURL)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.StoreAs(identity, requestURL, string(body))
	}
	return body, nil
}

// fetch performs a live GET. Non-2xx responses become *APIError.
func (c *Client) fetch(ctx context.Context, identity, endpoint, requestURL string) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if identity != "" {
		req.Header.Set("Authorization", "Bearer "+identity)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, fmt.Errorf("get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "read_error").Inc()
		return nil, fmt.Errorf("read response body: %w", err)
	}

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(endpoint, resp.StatusCode, body)
		c.logger.Error().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Int("error_ref", apiErr.Ref).
			Msg("API request error")
		return nil, apiErr
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status_code", resp.StatusCode).
		Dur("duration", time.Since(startTime)).
		Msg("Fetched response")
	return body, nil
}
