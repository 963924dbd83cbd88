package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/i474232898/city-weather/internal/weather"
)

const defaultDarkSkyBaseURL = "https://api.darksky.net"

// DarkSkyClient fetches current weather by coordinates from a Dark Sky style forecast API.
type DarkSkyClient struct {
	name    string
	apiKey  string
	baseURL string
	fetcher *Fetcher
}

func NewDarkSkyClient(fetcher *Fetcher, baseURL, apiKey string) *DarkSkyClient {
	return &DarkSkyClient{
		name:    "darksky",
		apiKey:  apiKey,
		baseURL: normalizeBaseURL(baseURL, defaultDarkSkyBaseURL),
		fetcher: fetcher,
	}
}

func (c *DarkSkyClient) Name() string {
	return c.name
}

// FetchByCoordinates requests SI-unit weather at coords.
func (c *DarkSkyClient) FetchByCoordinates(ctx context.Context, coords weather.Coordinates) (weather.SecondaryResponse, error) {
	if c.apiKey == "" {
		return weather.SecondaryResponse{}, fmt.Errorf("%s: %w", c.name, errMissingAPIKey)
	}

	body, err := c.fetcher.Get(ctx, c.name, c.requestURL(coords))
	if err != nil {
		return weather.SecondaryResponse{}, err
	}

	var payload struct {
		Currently struct {
			Temperature json.Number `json:"temperature"`
		} `json:"currently"`
		Hourly struct {
			Summary string `json:"summary"`
		} `json:"hourly"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.SecondaryResponse{}, &weather.DecodeError{Upstream: c.name, Err: err}
	}

	resp := weather.SecondaryResponse{
		CurrentTemperature: payload.Currently.Temperature.String(),
		HourlySummary:      payload.Hourly.Summary,
	}
	if err := resp.Validate(); err != nil {
		return weather.SecondaryResponse{}, &weather.DecodeError{Upstream: c.name, Err: err}
	}
	return resp, nil
}

// requestURL embeds the key and coordinates as path segments.
func (c *DarkSkyClient) requestURL(coords weather.Coordinates) string {
	return fmt.Sprintf("%s/forecast/%s/%s,%s?units=si",
		c.baseURL,
		url.PathEscape(c.apiKey),
		formatCoordinate(coords.Latitude),
		formatCoordinate(coords.Longitude),
	)
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
