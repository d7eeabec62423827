// Package omdb provides the OMDB HTTP client with bounded retry and
// not-found classification.
package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public OMDB endpoint.
const DefaultBaseURL = "https://www.omdbapi.com/"

// Prometheus metrics for OMDB client operations.
var (
	omdbRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "omdb_requests_total",
		Help: "Total OMDB requests by lookup kind and status",
	}, []string{"kind", "status"})

	omdbRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "omdb_request_duration_seconds",
		Help:    "OMDB request duration in seconds by lookup kind, retries included",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"kind"})

	omdbErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "omdb_errors_total",
		Help: "Total OMDB errors by class",
	}, []string{"class"})

	omdbNotFoundTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "omdb_not_found_total",
		Help: "Total OMDB responses carrying the Response=False envelope",
	})
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents non-retriable 4xx and unexpected statuses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 500, 502, 503 and 504.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassCancelled represents a finished caller context.
	ErrorClassCancelled ErrorClass = "cancelled"
)

// Payload is a decoded OMDB JSON object.
type Payload map[string]any

// Client is the OMDB client. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the provider (default DefaultBaseURL).
	BaseURL string

	// APIKey is attached to every request as the apikey parameter (REQUIRED).
	APIKey string

	// Retry policy for transient failures.
	Retry RetryConfig

	// Timeout for a single attempt.
	Timeout time.Duration
}

// DefaultConfig returns a configuration with the public endpoint and the
// default retry policy.
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL: DefaultBaseURL,
		APIKey:  apiKey,
		Retry:   DefaultRetryConfig(),
		Timeout: 10 * time.Second,
	}
}

// New creates a new OMDB client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.Retry = cfg.Retry.normalize()

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: base,
		config:  cfg,
		logger:  log.With().Str("component", "omdb-client").Logger(),
	}, nil
}

// Query issues a GET request with params plus the API key and returns the
// decoded JSON object. params is not modified.
//
// Transient failures (transport errors, 500/502/503/504) are retried within
// the configured budget; exhaustion yields an error matching ErrNetwork. A body
// with "Response":"False" yields *NotFoundError whatever the status code.
func (c *Client) Query(ctx context.Context, params url.Values) (Payload, error) {
	kind := lookupKind(params)

	startTime := time.Now()
	defer func() {
		omdbRequestDuration.WithLabelValues(kind).Observe(time.Since(startTime).Seconds())
	}()

	q := make(url.Values, len(params)+1)
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	q.Set("apikey", c.config.APIKey)

	u := *c.baseURL
	u.RawQuery = q.Encode()
	target := u.String()

	c.logger.Debug().
		Str("kind", kind).
		Str("params", params.Encode()).
		Msg("Executing OMDB request")

	var status int
	var body []byte
	var errClass ErrorClass

	err := retryWithBackoff(ctx, c.config.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			errClass = ErrorClassClient
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				errClass = ErrorClassCancelled
				return fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
			}
			errClass = c.classifyError(nil, err)
			omdbErrorsTotal.WithLabelValues(string(errClass)).Inc()
			omdbRequestsTotal.WithLabelValues(kind, "network_error").Inc()
			c.logger.Warn().Err(err).Str("kind", kind).Msg("OMDB request failed")
			return fmt.Errorf("%w: %w", ErrNetwork, err)
		}
		defer resp.Body.Close()

		omdbRequestsTotal.WithLabelValues(kind, strconv.Itoa(resp.StatusCode)).Inc()

		if class := c.classifyError(resp, nil); class == ErrorClassServer {
			errClass = class
			omdbErrorsTotal.WithLabelValues(string(errClass)).Inc()
			c.logger.Warn().
				Str("kind", kind).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("OMDB server error")
			_, _ = io.Copy(io.Discard, resp.Body)
			return &StatusError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Message:    resp.Status,
			}
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			if ctx.Err() != nil {
				errClass = ErrorClassCancelled
				return fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
			}
			errClass = ErrorClassNetwork
			omdbErrorsTotal.WithLabelValues(string(errClass)).Inc()
			return fmt.Errorf("%w: read body: %w", ErrNetwork, err)
		}
		status, body = resp.StatusCode, b
		return nil
	}, func(error) ErrorClass {
		return errClass
	})
	if err != nil {
		return nil, err
	}

	return c.decode(kind, status, body)
}

// decode turns a completed response into a Payload or a typed failure.
func (c *Client) decode(kind string, status int, body []byte) (Payload, error) {
	var payload Payload
	decodeErr := json.Unmarshal(body, &payload)
	if decodeErr == nil && payload == nil {
		decodeErr = errors.New("null body")
	}

	if decodeErr == nil {
		if r, _ := payload["Response"].(string); r == "False" {
			msg, _ := payload["Error"].(string)
			omdbNotFoundTotal.Inc()
			c.logger.Info().
				Str("kind", kind).
				Int("status", status).
				Str("message", msg).
				Msg("OMDB reported no result")
			return nil, &NotFoundError{Message: msg}
		}
	}

	if status < 200 || status > 299 {
		omdbErrorsTotal.WithLabelValues(string(ErrorClassClient)).Inc()
		return nil, &StatusError{
			StatusCode: status,
			ErrorClass: ErrorClassClient,
			Message:    http.StatusText(status),
			Err:        decodeErr,
		}
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}
	return payload, nil
}

// classifyError categorizes a failure for observability and retry handling.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch resp.StatusCode {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrorClassServer
	}
	if resp.StatusCode >= 400 {
		return ErrorClassClient
	}
	return ""
}

// Search queries one page of search results.
func (c *Client) Search(ctx context.Context, term, kind string, page int) (Payload, error) {
	return c.Query(ctx, SearchParams(term, kind, page))
}

// ByID looks up a single title by external identifier.
func (c *Client) ByID(ctx context.Context, id string) (Payload, error) {
	return c.Query(ctx, IDParams(id))
}

// ByTitle looks up a single title by its exact title.
func (c *Client) ByTitle(ctx context.Context, title string) (Payload, error) {
	return c.Query(ctx, TitleParams(title))
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
