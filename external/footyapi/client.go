package footyapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
	"github.com/riskibarqy/whereismatch/internal/domain/schedule"
	"github.com/riskibarqy/whereismatch/internal/platform/logging"
	"github.com/riskibarqy/whereismatch/internal/platform/params"
	"github.com/riskibarqy/whereismatch/internal/platform/resilience"
	"github.com/riskibarqy/whereismatch/internal/usecase"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 8 << 20
	apiKeyHeader    = "x-api-key"
)

var errTransient = crerr.New("api transient failure")

// Recorder observes completed upstream requests. status is 0 when no response
// arrived.
type Recorder interface {
	ObserveRequest(path string, status int, elapsed time.Duration)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string `validate:"required,url"`
	APIKey         string `validate:"required"`
	Timeout        time.Duration
	MaxRetries     int `validate:"gte=0,lte=5"`
	Backoff        time.Duration
	Logger         *logging.Logger
	Recorder       Recorder
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the schedule catalog over HTTP. Identical concurrent requests
// share one round trip.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	backoff    time.Duration
	logger     *logging.Logger
	recorder   Recorder
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight[[]byte]
}

var _ catalog.Source = (*Client)(nil)

var configValidator = validator.New()

// NewClient validates cfg. A missing or malformed endpoint or key is an
// ErrConfiguration.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if err := configValidator.Struct(cfg); err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "invalid api client config"), usecase.ErrConfiguration)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		backoff:    backoff,
		logger:     logger,
		recorder:   cfg.Recorder,
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}, nil
}

func (c *Client) ListSports(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := c.getJSON(ctx, "/sports", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) ListCountries(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := c.getJSON(ctx, "/countries", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) ListCompetitions(ctx context.Context, query params.Params) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := c.getJSON(ctx, "/competitions", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) ListBroadcasters(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := c.getJSON(ctx, "/broadcasters", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) ListMatches(ctx context.Context, query params.Params) ([]schedule.Match, error) {
	var matches []schedule.Match
	if err := c.getJSON(ctx, "/matches", query, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// BreakerState exposes the circuit state for diagnostics.
func (c *Client) BreakerState() resilience.CircuitState {
	return c.breaker.State()
}

func (c *Client) getJSON(ctx context.Context, path string, query params.Params, target any) error {
	fullURL := c.baseURL + path
	if encoded := params.Encode(query); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err, _ := c.flight.Do(ctx, fullURL, func() ([]byte, error) {
		var body []byte
		execErr := c.breaker.Execute(func() error {
			var reqErr error
			body, reqErr = c.executeRequest(ctx, path, fullURL)
			return reqErr
		}, isCircuitFailure)
		if n := c.flight.Waiters(fullURL); n > 0 {
			c.logger.DebugContext(ctx, "api response shared", "path", path, "waiters", n)
		}
		return body, execErr
	})
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "api circuit breaker rejected request", "path", path, "state", c.breaker.State())
			return crerr.Mark(
				crerr.Mark(crerr.New("API temporarily unavailable"), usecase.ErrDependencyUnavailable),
				usecase.ErrNetwork,
			)
		}
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Mark(crerr.Wrapf(err, "decode %s", path), usecase.ErrDecoding)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, path, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, crerr.Mark(crerr.Wrap(err, "build request"), usecase.ErrNetwork)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(apiKeyHeader, c.apiKey)

		started := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.observe(path, 0, started)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = crerr.Mark(crerr.Mark(crerr.Wrap(redactError(err, c.apiKey), "Request failed"), usecase.ErrNetwork), errTransient)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
			_ = resp.Body.Close()
			c.observe(path, resp.StatusCode, started)

			switch {
			case readErr != nil:
				lastErr = crerr.Mark(crerr.Mark(crerr.Wrap(readErr, "Request failed"), usecase.ErrNetwork), errTransient)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Mark(usecase.NewStatusError(resp.StatusCode), errTransient)
			default:
				return nil, usecase.NewStatusError(resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "api request failed", "path", path, "error", lastErr)
	return nil, lastErr
}

func (c *Client) observe(path string, status int, started time.Time) {
	if c.recorder == nil {
		return
	}
	c.recorder.ObserveRequest(path, status, time.Since(started))
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func redactError(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return crerr.New(strings.ReplaceAll(err.Error(), key, "REDACTED"))
}
