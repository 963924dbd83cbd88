package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/city-weather/internal/weather"
)

// AppConfig is loaded once at startup and never mutated afterwards.
type AppConfig struct {
	OpenWeatherAPIKey string
	DarkSkyAPIKey     string
	GeocodingAPIKey   string

	// OutputFormat is the payload format requested from the primary provider.
	OutputFormat weather.OutputFormat

	OpenWeatherBaseURL string
	DarkSkyBaseURL     string
	GeocodingBaseURL   string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// Circuit breaker applied per upstream.
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	// Probes periodically exercise providers for health reporting.
	ProbeCities     []string
	ProbeProviders  []weather.Provider
	ProbeInterval   time.Duration
	ProbeMaxHistory int           // max number of probe results per provider (0 = unlimited)
	ProbeMaxAge     time.Duration // max age of probe results (0 = unlimited)

	Port      string
	LogLevel  string
	LogFormat string

	MetricsEnabled bool
	OtlpEndpoint   string
	OtlpInsecure   bool
	ZipkinURL      string
}

// Weather returns the process-wide configuration handed to weather.Service.
func (c *AppConfig) Weather() weather.Config {
	return weather.Config{Format: c.OutputFormat}
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.DarkSkyAPIKey = os.Getenv("DARKSKY_API_KEY")
	cfg.GeocodingAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")

	format, err := weather.ParseOutputFormat(getenvDefault("OPENWEATHER_FORMAT", "json"))
	if err != nil {
		return nil, fmt.Errorf("invalid OPENWEATHER_FORMAT: %w", err)
	}
	cfg.OutputFormat = format

	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "http://api.openweathermap.org")
	cfg.DarkSkyBaseURL = getenvDefault("DARKSKY_BASE_URL", "https://api.darksky.net")
	cfg.GeocodingBaseURL = getenvDefault("GEOCODING_BASE_URL", "https://maps.googleapis.com")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	cfg.BreakerFailures = uint32(getenvInt("BREAKER_FAILURES", 5))
	if cfg.BreakerTimeout, err = getenvDuration("BREAKER_TIMEOUT", "2m"); err != nil {
		return nil, err
	}

	cfg.ProbeCities = getenvList("PROBE_CITIES")
	if cfg.ProbeProviders, err = loadProbeProviders(); err != nil {
		return nil, err
	}
	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	cfg.ProbeMaxHistory = getenvInt("PROBE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.ProbeMaxAge, err = getenvDuration("PROBE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "json")

	cfg.MetricsEnabled = getenvBool("METRICS_ENABLED", true)
	cfg.OtlpEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OtlpInsecure = getenvBool("OTEL_EXPORTER_OTLP_INSECURE", true)
	cfg.ZipkinURL = os.Getenv("ZIPKIN_URL")

	return cfg, nil
}

func loadProbeProviders() ([]weather.Provider, error) {
	names := getenvList("PROBE_PROVIDERS")
	if len(names) == 0 {
		names = []string{"primary"}
	}
	provs := make([]weather.Provider, 0, len(names))
	for _, name := range names {
		p, err := weather.ParseProvider(name)
		if err != nil {
			return nil, fmt.Errorf("invalid PROBE_PROVIDERS: %w", err)
		}
		provs = append(provs, p)
	}
	return provs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	switch {
	case raw == "":
		return def
	case raw == "1" || strings.EqualFold(raw, "true") || strings.EqualFold(raw, "yes"):
		return true
	case raw == "0" || strings.EqualFold(raw, "false") || strings.EqualFold(raw, "no"):
		return false
	default:
		return def
	}
}

// getenvList splits a comma separated variable, dropping blank entries.
func getenvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
