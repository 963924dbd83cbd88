package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/i474232898/city-weather/internal/logging"
	"github.com/i474232898/city-weather/internal/weather"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	userAgent          = "city-weather/1.0"
	errorBodyLimit     = 512
)

// BreakerConfig controls the circuit breaker kept per upstream.
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// FetcherConfig bundles HTTP client and circuit breaker settings.
type FetcherConfig struct {
	// HTTPClient overrides the default otelhttp-instrumented client.
	HTTPClient *http.Client
	Timeout    time.Duration
	Breaker    BreakerConfig
	Logger     *zap.Logger
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// statusError carries a non-2xx reply through the circuit breaker.
type statusError struct {
	code int
	body string
	kind error
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("%v: %d", e.kind, e.code)
	}
	return fmt.Sprintf("%v: %d: %s", e.kind, e.code, e.body)
}

func (e *statusError) Unwrap() error { return e.kind }

// neutralError marks an outcome that says nothing about the upstream's health: a caller-side
// 4xx or a caller that went away mid-request. The breaker records it as a success.
type neutralError struct {
	err error
}

func (e *neutralError) Error() string { return e.err.Error() }

func (e *neutralError) Unwrap() error { return e.err }

func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var ne *neutralError
	return errors.As(err, &ne)
}

// redactURL drops the request URL from transport errors; it carries API keys.
func redactURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s request: %w", strings.ToUpper(ue.Op), ue.Err)
	}
	return err
}

// Fetcher performs single GET requests against upstream providers. Each upstream gets its own
// circuit breaker; there are no retries.
type Fetcher struct {
	client  *resty.Client
	breaker BreakerConfig
	logger  *zap.Logger
	tracer  trace.Tracer

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewFetcher constructs a Fetcher, filling unset settings with defaults.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	client := resty.NewWithClient(hc).
		SetHeader("User-Agent", userAgent).
		SetRetryCount(0)

	return &Fetcher{
		client:   client,
		breaker:  resolveBreaker(cfg.Breaker),
		logger:   logging.OrNop(cfg.Logger),
		tracer:   otel.Tracer("city-weather/providers"),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func resolveBreaker(cfg BreakerConfig) BreakerConfig {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 5
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	return cfg
}

func (f *Fetcher) circuit(upstream string) *gobreaker.CircuitBreaker {
	f.mu.Lock()
	defer f.mu.Unlock()

	cb, ok := f.breakers[upstream]
	if !ok {
		threshold := f.breaker.ConsecutiveFailures
		cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        upstream,
			MaxRequests: f.breaker.MaxRequests,
			Interval:    f.breaker.Interval,
			Timeout:     f.breaker.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: countsAsSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				f.logger.Warn("circuit breaker state changed",
					zap.String(logging.FieldUpstream, name),
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		})
		f.breakers[upstream] = cb
	}
	return cb
}

// Get fetches rawURL and returns the response body. Every failure is reported as a
// *weather.TransportError naming upstream.
func (f *Fetcher) Get(ctx context.Context, upstream, rawURL string) ([]byte, error) {
	ctx, span := f.tracer.Start(ctx, "upstream "+upstream, trace.WithAttributes(
		attribute.String("upstream.name", upstream),
	))
	defer span.End()

	body, err := f.get(ctx, upstream, rawURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		f.logger.Warn("upstream call failed", zap.String(logging.FieldUpstream, upstream), zap.Error(err))
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, upstream, rawURL string) ([]byte, error) {
	// Cancelled callers never reach the breaker; ones cancelled mid-request count as neutral.
	if err := ctx.Err(); err != nil {
		return nil, &weather.TransportError{Upstream: upstream, Err: err}
	}

	result, err := f.circuit(upstream).Execute(func() (interface{}, error) {
		resp, execErr := f.client.R().SetContext(ctx).Get(rawURL)
		if execErr != nil {
			execErr = redactURL(execErr)
			if ctx.Err() != nil {
				return nil, &neutralError{err: execErr}
			}
			return nil, execErr
		}

		code := resp.StatusCode()
		switch {
		case code == http.StatusTooManyRequests:
			return nil, &statusError{code: code, kind: errRateLimited}
		case code >= 500:
			return nil, &statusError{code: code, kind: errServerError, body: snippet(resp.Body())}
		case !resp.IsSuccess():
			// Unknown city and similar replies are the caller's problem, not an outage.
			return nil, &neutralError{err: &statusError{code: code, kind: errUnexpected, body: snippet(resp.Body())}}
		}
		return resp.Body(), nil
	})
	var ne *neutralError
	if errors.As(err, &ne) {
		err = ne.err
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.TransportError{Upstream: upstream, Err: fmt.Errorf("%w: %v", errCircuitOpen, err)}
		}
		var se *statusError
		if errors.As(err, &se) {
			return nil, &weather.TransportError{Upstream: upstream, StatusCode: se.code, Err: se}
		}
		return nil, &weather.TransportError{Upstream: upstream, Err: err}
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, &weather.TransportError{Upstream: upstream, Err: fmt.Errorf("unexpected result type from circuit breaker")}
	}
	return body, nil
}

func snippet(body []byte) string {
	if len(body) > errorBodyLimit {
		body = body[:errorBodyLimit]
	}
	return strings.TrimSpace(string(body))
}

func normalizeBaseURL(raw, def string) string {
	if raw == "" {
		raw = def
	}
	return strings.TrimSuffix(raw, "/")
}
