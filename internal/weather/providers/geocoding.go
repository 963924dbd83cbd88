package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/i474232898/city-weather/internal/logging"
	"github.com/i474232898/city-weather/internal/weather"
)

const defaultGeocodingBaseURL = "https://maps.googleapis.com"

const (
	geocodeStatusOK          = "OK"
	geocodeStatusZeroResults = "ZERO_RESULTS"
)

// GoogleGeocoder resolves place names through the Google Maps geocoding API.
type GoogleGeocoder struct {
	name    string
	apiKey  string
	baseURL string
	fetcher *Fetcher
	logger  *zap.Logger
}

func NewGoogleGeocoder(fetcher *Fetcher, baseURL, apiKey string, logger *zap.Logger) *GoogleGeocoder {
	return &GoogleGeocoder{
		name:    "geocoding",
		apiKey:  apiKey,
		baseURL: normalizeBaseURL(baseURL, defaultGeocodingBaseURL),
		fetcher: fetcher,
		logger:  logging.OrNop(logger),
	}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Resolve returns the coordinates of the first result for place. Results are never ranked.
func (g *GoogleGeocoder) Resolve(ctx context.Context, place string) (weather.Coordinates, error) {
	if g.apiKey == "" {
		return weather.Coordinates{}, fmt.Errorf("%s: %w", g.name, errMissingAPIKey)
	}

	body, err := g.fetcher.Get(ctx, g.name, g.requestURL(place))
	if err != nil {
		return weather.Coordinates{}, err
	}

	var payload geocodeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Coordinates{}, &weather.DecodeError{Upstream: g.name, Err: err}
	}

	switch payload.Status {
	case "", geocodeStatusOK, geocodeStatusZeroResults:
	default:
		return weather.Coordinates{}, &weather.TransportError{
			Upstream: g.name,
			Err:      fmt.Errorf("status %s: %s", payload.Status, payload.ErrorMessage),
		}
	}
	if len(payload.Results) == 0 {
		return weather.Coordinates{}, fmt.Errorf("%s %q: %w", g.name, place, weather.ErrLocationNotFound)
	}

	first := payload.Results[0]
	coords := weather.Coordinates{
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
	}
	g.logger.Debug("geocoding resolved",
		zap.String(logging.FieldCity, place),
		zap.String("address", first.FormattedAddress),
		zap.Float64("lat", coords.Latitude),
		zap.Float64("lng", coords.Longitude),
		zap.Int("results", len(payload.Results)),
	)
	return coords, nil
}

func (g *GoogleGeocoder) requestURL(place string) string {
	values := url.Values{}
	values.Set("address", place)
	values.Set("key", g.apiKey)
	return fmt.Sprintf("%s/maps/api/geocode/json?%s", g.baseURL, values.Encode())
}
