package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/city-weather/internal/api/http"
	"github.com/i474232898/city-weather/internal/config"
	"github.com/i474232898/city-weather/internal/logging"
	"github.com/i474232898/city-weather/internal/metrics"
	"github.com/i474232898/city-weather/internal/scheduler"
	"github.com/i474232898/city-weather/internal/store"
	"github.com/i474232898/city-weather/internal/telemetry"
	"github.com/i474232898/city-weather/internal/weather"
	"github.com/i474232898/city-weather/internal/weather/providers"
)

const (
	serviceName    = "city-weather"
	serviceVersion = "1.0.0"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logging.NewLogger(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
		Version: serviceVersion,
	})
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TracingConfig{
		ZipkinURL:   cfg.ZipkinURL,
		ServiceName: serviceName,
	})
	if err != nil {
		zlog.Fatal("failed to set up tracing", zap.Error(err))
	}

	recorder, metricsHandler, shutdownMetrics, err := metrics.Setup(ctx, metrics.TelemetryConfig{
		Enabled:      cfg.MetricsEnabled,
		ServiceName:  serviceName,
		OtlpEndpoint: cfg.OtlpEndpoint,
		OtlpInsecure: cfg.OtlpInsecure,
	})
	if err != nil {
		zlog.Fatal("failed to set up metrics", zap.Error(err))
	}

	// Shared fetcher for outbound provider calls: one circuit breaker per upstream, no retries.
	fetcher := providers.NewFetcher(providers.FetcherConfig{
		Timeout: cfg.HTTPTimeout,
		Breaker: providers.BreakerConfig{
			ConsecutiveFailures: cfg.BreakerFailures,
			Timeout:             cfg.BreakerTimeout,
		},
		Logger: zlog,
	})

	service := weather.NewService(
		cfg.Weather(),
		providers.NewGoogleGeocoder(fetcher, cfg.GeocodingBaseURL, cfg.GeocodingAPIKey, zlog),
		providers.NewOpenWeatherClient(fetcher, cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey),
		providers.NewDarkSkyClient(fetcher, cfg.DarkSkyBaseURL, cfg.DarkSkyAPIKey),
		weather.WithLogger(zlog),
		weather.WithRecorder(recorder),
	)

	// Probe results with configured retention.
	probeStore := store.NewMemoryStore(cfg.ProbeMaxHistory, cfg.ProbeMaxAge)

	sched := scheduler.New(scheduler.Config{
		Cities:    cfg.ProbeCities,
		Providers: cfg.ProbeProviders,
		Interval:  cfg.ProbeInterval,
	}, service, probeStore, recorder, zlog)
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := newApp(zlog, service, probeStore, recorder, metricsHandler)

	go func() {
		zlog.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
	if err := shutdownMetrics(shutdownCtx); err != nil {
		zlog.Error("metrics shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		zlog.Error("tracing shutdown", zap.Error(err))
	}
}

// newApp builds the Fiber app with middleware, health, metrics and API routes.
func newApp(zlog *zap.Logger, service httpapi.WeatherProcessor, probes httpapi.ProbeReader, recorder *metrics.Recorder, metricsHandler http.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler(zlog),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(httpapi.RequestID())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(httpapi.Metrics(recorder))

	app.Get("/health", func(c *fiber.Ctx) error {
		provs := fiber.Map{}
		for _, p := range []weather.Provider{weather.ProviderPrimary, weather.ProviderSecondary} {
			snap := recorder.Snapshot(p.String())
			provs[p.String()] = fiber.Map{
				"calls":             snap.Calls,
				"errors":            snap.Errors,
				"lastCallLatencyMs": snap.LastCallLatency.Milliseconds(),
			}
		}
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   serviceName,
			"providers": provs,
		})
	})

	if metricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metricsHandler))
	}

	// API routes.
	httpapi.RegisterRoutes(app, service, probes)
	return app
}
