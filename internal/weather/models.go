package weather

import (
	"fmt"
	"strings"
)

// Provider selects which upstream weather source serves a request.
type Provider int

const (
	// ProviderPrimary looks weather up by city name (OpenWeatherMap).
	ProviderPrimary Provider = iota + 1
	// ProviderSecondary looks weather up by coordinates (Dark Sky style forecast API).
	ProviderSecondary
)

func (p Provider) String() string {
	switch p {
	case ProviderPrimary:
		return "primary"
	case ProviderSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("provider(%d)", int(p))
	}
}

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	switch p {
	case ProviderPrimary, ProviderSecondary:
		return true
	default:
		return false
	}
}

// ParseProvider maps a selector name to a Provider. The upstream brand names are accepted as aliases.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary", "openweather":
		return ProviderPrimary, nil
	case "secondary", "darksky":
		return ProviderSecondary, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedProvider, s)
	}
}

// OutputFormat is the payload format requested from the primary provider.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatXML  OutputFormat = "xml"
)

// ParseOutputFormat accepts "json" or "xml" in any case.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatXML:
		return FormatXML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Result is the normalized weather view every provider maps to.
// Temperature carries the provider-reported decimal unchanged.
type Result struct {
	CityName    string `json:"cityName"`
	Temperature string `json:"temperature"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl,omitempty"`
}

// Config is the immutable, process-wide weather configuration.
type Config struct {
	Format OutputFormat
}
