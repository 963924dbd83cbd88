package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"

	"github.com/i474232898/city-weather/internal/weather"
)

const defaultOpenWeatherBaseURL = "http://api.openweathermap.org"

var errMissingAPIKey = errors.New("api key is not configured")

// OpenWeatherClient fetches current weather by city name from OpenWeatherMap.
type OpenWeatherClient struct {
	name    string
	apiKey  string
	baseURL string
	fetcher *Fetcher
}

func NewOpenWeatherClient(fetcher *Fetcher, baseURL, apiKey string) *OpenWeatherClient {
	return &OpenWeatherClient{
		name:    "openweather",
		apiKey:  apiKey,
		baseURL: normalizeBaseURL(baseURL, defaultOpenWeatherBaseURL),
		fetcher: fetcher,
	}
}

func (c *OpenWeatherClient) Name() string {
	return c.name
}

// FetchByName requests metric current weather for city in the given format. JSON and XML
// payloads decode into the same response shape.
func (c *OpenWeatherClient) FetchByName(ctx context.Context, city string, format weather.OutputFormat) (weather.PrimaryResponse, error) {
	if c.apiKey == "" {
		return weather.PrimaryResponse{}, fmt.Errorf("%s: %w", c.name, errMissingAPIKey)
	}
	if format == "" {
		format = weather.FormatJSON
	}

	body, err := c.fetcher.Get(ctx, c.name, c.requestURL(city, format))
	if err != nil {
		return weather.PrimaryResponse{}, err
	}

	var resp weather.PrimaryResponse
	switch format {
	case weather.FormatXML:
		resp, err = decodeOpenWeatherXML(body)
	default:
		resp, err = decodeOpenWeatherJSON(body)
	}
	if err == nil {
		err = resp.Validate()
	}
	if err != nil {
		return weather.PrimaryResponse{}, &weather.DecodeError{Upstream: c.name, Err: err}
	}
	return resp, nil
}

func (c *OpenWeatherClient) requestURL(city string, format weather.OutputFormat) string {
	values := url.Values{}
	values.Set("q", city)
	values.Set("units", "metric")
	values.Set("APPID", c.apiKey)
	values.Set("mode", string(format))
	return fmt.Sprintf("%s/data/2.5/weather?%s", c.baseURL, values.Encode())
}

type openWeatherJSON struct {
	Weather []struct {
		Icon        string `json:"icon"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		// The upstream sends a number; quoted decimals are accepted too.
		Temp json.Number `json:"temp"`
	} `json:"main"`
}

func decodeOpenWeatherJSON(body []byte) (weather.PrimaryResponse, error) {
	var payload openWeatherJSON
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.PrimaryResponse{}, err
	}

	resp := weather.PrimaryResponse{Main: weather.PrimaryMain{Temperature: payload.Main.Temp.String()}}
	for _, w := range payload.Weather {
		resp.Conditions = append(resp.Conditions, weather.Condition{Icon: w.Icon, Description: w.Description})
	}
	return resp, nil
}

type openWeatherXML struct {
	XMLName     xml.Name `xml:"current"`
	Temperature struct {
		Value string `xml:"value,attr"`
	} `xml:"temperature"`
	Weather []struct {
		Value string `xml:"value,attr"`
		Icon  string `xml:"icon,attr"`
	} `xml:"weather"`
}

func decodeOpenWeatherXML(body []byte) (weather.PrimaryResponse, error) {
	var payload openWeatherXML
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&payload); err != nil {
		return weather.PrimaryResponse{}, err
	}

	resp := weather.PrimaryResponse{Main: weather.PrimaryMain{Temperature: payload.Temperature.Value}}
	for _, w := range payload.Weather {
		resp.Conditions = append(resp.Conditions, weather.Condition{Icon: w.Icon, Description: w.Value})
	}
	return resp, nil
}
