package weather

import (
	"context"
	"time"
)

// Geocoder resolves a place name to the coordinates of its first match.
type Geocoder interface {
	Resolve(ctx context.Context, place string) (Coordinates, error)
}

// PrimaryClient fetches current weather by city name.
type PrimaryClient interface {
	FetchByName(ctx context.Context, city string, format OutputFormat) (PrimaryResponse, error)
}

// SecondaryClient fetches current weather by coordinates.
type SecondaryClient interface {
	FetchByCoordinates(ctx context.Context, coords Coordinates) (SecondaryResponse, error)
}

// CallRecorder receives one observation per weather provider call.
type CallRecorder interface {
	RecordProviderAttempt(provider string, duration time.Duration, err error)
}
