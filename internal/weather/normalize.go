package weather

import (
	"errors"
	"fmt"
	"net/url"
)

// iconURLTemplate is where the primary provider serves condition icons.
const iconURLTemplate = "http://openweathermap.org/img/w/%s.png"

// RawResponse is a decoded provider-native payload. The set of variants is closed:
// PrimaryResponse and SecondaryResponse.
type RawResponse interface {
	// Validate reports a payload that cannot be normalized.
	Validate() error
	normalize(city string) Result
}

// Condition is one entry of the primary provider's condition list.
type Condition struct {
	Icon        string
	Description string
}

// PrimaryMain is the primary provider's "main" block.
type PrimaryMain struct {
	Temperature string
}

// PrimaryResponse is the current-weather payload of the primary provider, decoded from JSON or XML.
type PrimaryResponse struct {
	Conditions []Condition
	Main       PrimaryMain
}

// Validate requires at least one condition and a temperature.
func (r PrimaryResponse) Validate() error {
	if len(r.Conditions) == 0 {
		return errors.New("empty condition list")
	}
	if r.Main.Temperature == "" {
		return errors.New("missing main temperature")
	}
	return nil
}

// The first condition is canonical; the provider orders them by relevance.
func (r PrimaryResponse) normalize(city string) Result {
	first := r.Conditions[0]
	return Result{
		CityName:    city,
		Temperature: r.Main.Temperature,
		Description: first.Description,
		IconURL:     IconURL(first.Icon),
	}
}

// SecondaryResponse is the forecast payload of the secondary provider.
type SecondaryResponse struct {
	CurrentTemperature string
	HourlySummary      string
}

// Validate requires both the current temperature and the hourly summary.
func (r SecondaryResponse) Validate() error {
	if r.CurrentTemperature == "" {
		return errors.New("missing current temperature")
	}
	if r.HourlySummary == "" {
		return errors.New("missing hourly summary")
	}
	return nil
}

func (r SecondaryResponse) normalize(city string) Result {
	return Result{
		CityName:    city,
		Temperature: r.CurrentTemperature,
		Description: r.HourlySummary,
	}
}

// Normalize maps a validated provider payload into a Result. Callers must have checked
// raw.Validate(); an invalid payload is a programming error.
func Normalize(raw RawResponse, city string) Result {
	return raw.normalize(city)
}

// IconURL builds the icon reference for a primary provider icon code. Empty codes yield no URL.
func IconURL(icon string) string {
	if icon == "" {
		return ""
	}
	return fmt.Sprintf(iconURLTemplate, url.PathEscape(icon))
}
