package weather

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/i474232898/city-weather/internal/logging"
)

// Service orchestrates a single weather lookup against the selected provider.
type Service struct {
	cfg       Config
	geocoder  Geocoder
	primary   PrimaryClient
	secondary SecondaryClient

	logger   *zap.Logger
	recorder CallRecorder
	tracer   trace.Tracer
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger used for per-call records.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logging.OrNop(logger) }
}

// WithRecorder sets the recorder receiving provider call observations.
func WithRecorder(recorder CallRecorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

// NewService creates a new Service. cfg is copied and never changed afterwards.
func NewService(cfg Config, geocoder Geocoder, primary PrimaryClient, secondary SecondaryClient, opts ...Option) *Service {
	if cfg.Format == "" {
		cfg.Format = FormatJSON
	}
	s := &Service{
		cfg:       cfg,
		geocoder:  geocoder,
		primary:   primary,
		secondary: secondary,
		logger:    zap.NewNop(),
		tracer:    otel.Tracer("city-weather/weather"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process looks up the current weather for city using provider and returns the normalized result.
// Either a complete Result or an error is returned, never both.
func (s *Service) Process(ctx context.Context, city string, provider Provider) (Result, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Result{}, ErrEmptyCity
	}
	if !provider.Valid() {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}

	ctx, span := s.tracer.Start(ctx, "weather.Process", trace.WithAttributes(
		attribute.String("weather.city", city),
		attribute.String("weather.provider", provider.String()),
	))
	defer span.End()

	var (
		raw RawResponse
		err error
	)
	switch provider {
	case ProviderPrimary:
		raw, err = s.fetchPrimary(ctx, city)
	case ProviderSecondary:
		raw, err = s.fetchSecondary(ctx, city)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	if err == nil {
		// A cancelled caller gets no result even if the upstream answered.
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	result := Normalize(raw, city)
	span.SetAttributes(attribute.String("weather.temperature", result.Temperature))

	s.logger.Info("weather provider called",
		zap.String(logging.FieldProvider, provider.String()),
		zap.String(logging.FieldCity, result.CityName),
		zap.String(logging.FieldTemperature, result.Temperature),
		zap.String(logging.FieldDescription, result.Description),
	)
	return result, nil
}

func (s *Service) fetchPrimary(ctx context.Context, city string) (RawResponse, error) {
	if s.primary == nil {
		return nil, &ProviderUnavailableError{Provider: ProviderPrimary, Err: fmt.Errorf("primary client not configured")}
	}

	start := time.Now()
	resp, err := s.primary.FetchByName(ctx, city, s.cfg.Format)
	s.record(ProviderPrimary, time.Since(start), err)
	if err != nil {
		return nil, &ProviderUnavailableError{Provider: ProviderPrimary, Err: err}
	}
	if err := resp.Validate(); err != nil {
		return nil, &ProviderUnavailableError{
			Provider: ProviderPrimary,
			Err:      &DecodeError{Upstream: ProviderPrimary.String(), Err: err},
		}
	}
	return resp, nil
}

// fetchSecondary geocodes city first; the secondary provider only accepts coordinates.
func (s *Service) fetchSecondary(ctx context.Context, city string) (RawResponse, error) {
	if s.geocoder == nil || s.secondary == nil {
		return nil, &ProviderUnavailableError{Provider: ProviderSecondary, Err: fmt.Errorf("secondary client not configured")}
	}

	coords, err := s.geocoder.Resolve(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", city, err)
	}

	start := time.Now()
	resp, err := s.secondary.FetchByCoordinates(ctx, coords)
	s.record(ProviderSecondary, time.Since(start), err)
	if err != nil {
		return nil, &ProviderUnavailableError{Provider: ProviderSecondary, Err: err}
	}
	if err := resp.Validate(); err != nil {
		return nil, &ProviderUnavailableError{
			Provider: ProviderSecondary,
			Err:      &DecodeError{Upstream: ProviderSecondary.String(), Err: err},
		}
	}
	return resp, nil
}

func (s *Service) record(provider Provider, d time.Duration, err error) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordProviderAttempt(provider.String(), d, err)
}
