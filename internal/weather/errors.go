package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedProvider is returned for a selector outside the known providers.
	ErrUnsupportedProvider = errors.New("unsupported provider")
	// ErrEmptyCity is returned when no city name was given.
	ErrEmptyCity = errors.New("city name is required")
	// ErrLocationNotFound is returned when geocoding yields no results.
	ErrLocationNotFound = errors.New("location not found")
)

// TransportError captures a failure to reach an upstream or a non-success reply from it.
type TransportError struct {
	Upstream   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: transport failure (status=%d): %v", e.Upstream, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: transport failure: %v", e.Upstream, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError captures a malformed or incomplete upstream payload.
type DecodeError struct {
	Upstream string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode failure: %v", e.Upstream, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ProviderUnavailableError wraps a transport or decode failure of a weather provider call.
type ProviderUnavailableError struct {
	Provider Provider
	Err      error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("weather provider %s unavailable: %v", e.Provider, e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error { return e.Err }

// AsTransportError attempts to unwrap an error into a TransportError.
func AsTransportError(err error) (*TransportError, bool) {
	var target *TransportError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// AsDecodeError attempts to unwrap an error into a DecodeError.
func AsDecodeError(err error) (*DecodeError, bool) {
	var target *DecodeError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// AsProviderUnavailable attempts to unwrap an error into a ProviderUnavailableError.
func AsProviderUnavailable(err error) (*ProviderUnavailableError, bool) {
	var target *ProviderUnavailableError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
