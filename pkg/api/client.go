// Package api provides the HTTP client for the tabular data source, with
// retry, optional response caching, and error classification.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rowview/rowview/pkg/cache"
	"github.com/rowview/rowview/pkg/logging"
)

// Prometheus metrics for data-source requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rowview_requests_total",
		Help: "Total data-source requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rowview_request_duration_seconds",
		Help:    "Data-source request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rowview_errors_total",
		Help: "Total data-source errors by class",
	}, []string{"class"})
)

// Client is the data-source HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *cache.Store
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the data source (e.g. "http://localhost:8000").
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout for a single HTTP request.
	Timeout time.Duration

	// Retry controls transport-level retry behavior.
	Retry RetryConfig

	// Redis enables the response cache when non-nil.
	Redis *redis.Client

	// CacheTTL is the client-side lifetime of cached responses.
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: "rowview/0.1.0",
		Timeout:   30 * time.Second,
		Retry:     DefaultRetryConfig(),
		CacheTTL:  60 * time.Second,
	}
}

// New creates a new data-source client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	var responseCache *cache.Store
	if cfg.Redis != nil {
		responseCache = cache.NewStore(cfg.Redis, cfg.CacheTTL)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cache:   responseCache,
		config:  cfg,
		logger:  logging.NewLogger("api-client"),
	}, nil
}

// Count fetches the total row count of the dataset.
func (c *Client) Count(ctx context.Context) (*CountResponse, error) {
	var out CountResponse
	if err := c.getJSON(ctx, "/data/count", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Page fetches one page of rows. limit must be >= 1 and offset >= 0; the
// server additionally bounds limit, so callers must not assume an arbitrarily
// large batch is honored. columns optionally projects the response to a
// subset of id,a..z.
func (c *Client) Page(ctx context.Context, limit, offset int, columns ...string) (*PageResponse, error) {
	if limit < 1 {
		return nil, fmt.Errorf("limit must be >= 1 (got %d)", limit)
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset must be >= 0 (got %d)", offset)
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	if len(columns) > 0 {
		for _, col := range columns {
			if col != "id" && !IsValidColumn(col) {
				return nil, fmt.Errorf("invalid column name: %s", col)
			}
		}
		query.Set("columns", strings.Join(columns, ","))
	}

	var out PageResponse
	if err := c.getJSON(ctx, "/data", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// All fetches the entire dataset in one request.
func (c *Client) All(ctx context.Context) (*AllResponse, error) {
	var out AllResponse
	if err := c.getJSON(ctx, "/data/all", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RowByID fetches a single row by its identifier.
// A missing row surfaces as a client-class APIError with status 404.
func (c *Client) RowByID(ctx context.Context, id int64) (*RowResponse, error) {
	var out RowResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/data/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchQuery describes a single-column value search.
type SearchQuery struct {
	// Column is the value column to search (a through z).
	Column string

	// Exact matches the column value exactly; when set, Min/Max are ignored
	// (mirrors the source's precedence).
	Exact *int64

	// Min and Max bound the column value inclusively.
	Min *int64
	Max *int64

	// Limit caps the number of returned rows (server default applies when 0).
	Limit int
}

// Search fetches rows matching a single-column condition.
// The column and conditions are validated before any request is issued.
func (c *Client) Search(ctx context.Context, q SearchQuery) (*SearchResponse, error) {
	column := strings.ToLower(strings.TrimSpace(q.Column))
	if !IsValidColumn(column) {
		return nil, fmt.Errorf("invalid column name: %s", q.Column)
	}
	if q.Exact == nil && q.Min == nil && q.Max == nil {
		return nil, fmt.Errorf("search requires min_value, max_value, or exact_value")
	}

	query := url.Values{}
	query.Set("column", column)
	if q.Exact != nil {
		query.Set("exact_value", strconv.FormatInt(*q.Exact, 10))
	} else {
		if q.Min != nil {
			query.Set("min_value", strconv.FormatInt(*q.Min, 10))
		}
		if q.Max != nil {
			query.Set("max_value", strconv.FormatInt(*q.Max, 10))
		}
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var out SearchResponse
	if err := c.getJSON(ctx, "/data/search", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PoolStatus fetches the source's connection-pool status.
func (c *Client) PoolStatus(ctx context.Context) (*PoolStatus, error) {
	var out PoolStatus
	if err := c.getJSON(ctx, "/api/pool/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getJSON performs a GET request against endpoint and decodes the JSON body
// into out. It checks the response cache first, retries transient failures
// with backoff, and records request metrics.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	cacheKey := cache.Key{Endpoint: endpoint, Query: query}
	if c.cache != nil {
		body, err := c.cache.Get(ctx, cacheKey)
		if err == nil {
			c.logger.Debug().Str("endpoint", endpoint).Msg("Response cache hit")
			requestsTotal.WithLabelValues(endpoint, "cache").Inc()
			return c.decode(endpoint, body, out)
		}
		if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
	}

	requestURL := c.baseURL + endpoint
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var body []byte
	var errClass ErrorClass

	retryErr := retryWithBackoff(ctx, c.config.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			errClass = ErrorClassNetwork
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")

		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("url", requestURL).
			Msg("Executing data-source request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			errClass = ErrorClassNetwork
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			errClass = classifyStatus(resp.StatusCode)
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Data-source request error")

			return &APIError{
				StatusCode: resp.StatusCode,
				Class:      errClass,
				Endpoint:   endpoint,
				Message:    resp.Status,
			}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			errClass = ErrorClassNetwork
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			return fmt.Errorf("read body: %w", err)
		}

		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
		return nil
	}, func() ErrorClass {
		return errClass
	})

	if retryErr != nil {
		return retryErr
	}

	if err := c.decode(endpoint, body, out); err != nil {
		return err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body); err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to cache response")
		}
	}

	return nil
}

// decode unmarshals a response body, classifying failures as decode errors.
func (c *Client) decode(endpoint string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &APIError{
			Class:    ErrorClassDecode,
			Endpoint: endpoint,
			Message:  "malformed response body",
			Err:      err,
		}
	}
	return nil
}

// classifyStatus categorizes an HTTP status code for retry and observability.
func classifyStatus(status int) ErrorClass {
	switch {
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
