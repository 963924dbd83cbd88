package weather

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestProcessPrimaryLondon(t *testing.T) {
	primary := &stubPrimary{resp: londonPrimary()}
	svc := NewService(Config{Format: FormatJSON}, &stubGeocoder{}, primary, &stubSecondary{})

	got, err := svc.Process(context.Background(), "London", ProviderPrimary)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := Result{
		CityName:    "London",
		Temperature: "15.2",
		Description: "clear sky",
		IconURL:     "http://openweathermap.org/img/w/01d.png",
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if primary.city != "London" || primary.format != FormatJSON {
		t.Fatalf("unexpected primary call city=%q format=%q", primary.city, primary.format)
	}
}

func TestProcessPrimaryPassesConfiguredFormat(t *testing.T) {
	primary := &stubPrimary{resp: londonPrimary()}
	svc := NewService(Config{Format: FormatXML}, nil, primary, nil)

	if _, err := svc.Process(context.Background(), "London", ProviderPrimary); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if primary.format != FormatXML {
		t.Fatalf("expected xml format, got %q", primary.format)
	}
}

func TestProcessDefaultsFormatToJSON(t *testing.T) {
	primary := &stubPrimary{resp: londonPrimary()}
	svc := NewService(Config{}, nil, primary, nil)

	if _, err := svc.Process(context.Background(), "London", ProviderPrimary); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if primary.format != FormatJSON {
		t.Fatalf("expected json format by default, got %q", primary.format)
	}
}

func TestProcessSecondaryGeocodesThenFetches(t *testing.T) {
	geo := &stubGeocoder{coords: Coordinates{Latitude: 51.5074, Longitude: -0.1278}}
	secondary := &stubSecondary{resp: SecondaryResponse{CurrentTemperature: "11.4", HourlySummary: "Light rain"}}
	primary := &stubPrimary{}
	svc := NewService(Config{}, geo, primary, secondary)

	got, err := svc.Process(context.Background(), " London ", ProviderSecondary)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if geo.calls.Load() != 1 || secondary.calls.Load() != 1 {
		t.Fatalf("expected one geocode and one secondary call, got %d and %d", geo.calls.Load(), secondary.calls.Load())
	}
	if primary.calls.Load() != 0 {
		t.Fatalf("expected primary not to be called")
	}
	if geo.place != "London" {
		t.Fatalf("expected trimmed city to be geocoded, got %q", geo.place)
	}
	if secondary.coords != geo.coords {
		t.Fatalf("expected geocoded coordinates %+v, got %+v", geo.coords, secondary.coords)
	}
	want := Result{CityName: "London", Temperature: "11.4", Description: "Light rain"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestProcessLocationNotFoundSkipsWeatherCalls(t *testing.T) {
	geo := &stubGeocoder{err: ErrLocationNotFound}
	primary := &stubPrimary{}
	secondary := &stubSecondary{}
	svc := NewService(Config{}, geo, primary, secondary)

	_, err := svc.Process(context.Background(), "Atlantis", ProviderSecondary)
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
	if _, ok := AsProviderUnavailable(err); ok {
		t.Fatalf("geocoding failures must not be reported as provider unavailable")
	}
	if primary.calls.Load() != 0 || secondary.calls.Load() != 0 {
		t.Fatalf("expected no weather provider calls, got primary=%d secondary=%d", primary.calls.Load(), secondary.calls.Load())
	}
}

func TestProcessGeocodeTransportErrorForwarded(t *testing.T) {
	transportErr := &TransportError{Upstream: "geocoding", StatusCode: 500, Err: errors.New("boom")}
	secondary := &stubSecondary{}
	svc := NewService(Config{}, &stubGeocoder{err: transportErr}, nil, secondary)

	_, err := svc.Process(context.Background(), "Paris", ProviderSecondary)
	if te, ok := AsTransportError(err); !ok || te != transportErr {
		t.Fatalf("expected geocoding transport error to be forwarded, got %v", err)
	}
	if secondary.calls.Load() != 0 {
		t.Fatalf("expected secondary not to be called")
	}
}

func TestProcessEmptyConditionsIsProviderUnavailable(t *testing.T) {
	primary := &stubPrimary{resp: PrimaryResponse{Main: PrimaryMain{Temperature: "10"}}}
	svc := NewService(Config{}, nil, primary, nil)

	got, err := svc.Process(context.Background(), "London", ProviderPrimary)
	pu, ok := AsProviderUnavailable(err)
	if !ok {
		t.Fatalf("expected ProviderUnavailableError, got %v", err)
	}
	if pu.Provider != ProviderPrimary {
		t.Fatalf("expected primary provider in error, got %s", pu.Provider)
	}
	if _, ok := AsDecodeError(err); !ok {
		t.Fatalf("expected wrapped DecodeError, got %v", err)
	}
	if got != (Result{}) {
		t.Fatalf("expected zero result on failure, got %+v", got)
	}
}

func TestProcessSecondaryMissingFieldsIsProviderUnavailable(t *testing.T) {
	cases := []struct {
		name string
		resp SecondaryResponse
	}{
		{"missing temperature", SecondaryResponse{HourlySummary: "Cloudy"}},
		{"missing summary", SecondaryResponse{CurrentTemperature: "3.1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(Config{}, &stubGeocoder{}, nil, &stubSecondary{resp: tc.resp})

			_, err := svc.Process(context.Background(), "Oslo", ProviderSecondary)
			if _, ok := AsProviderUnavailable(err); !ok {
				t.Fatalf("expected ProviderUnavailableError, got %v", err)
			}
			if _, ok := AsDecodeError(err); !ok {
				t.Fatalf("expected wrapped DecodeError, got %v", err)
			}
		})
	}
}

func TestProcessWrapsClientErrors(t *testing.T) {
	decodeErr := &DecodeError{Upstream: "openweather", Err: errors.New("bad json")}
	svc := NewService(Config{}, nil, &stubPrimary{err: decodeErr}, nil)

	_, err := svc.Process(context.Background(), "London", ProviderPrimary)
	if _, ok := AsProviderUnavailable(err); !ok {
		t.Fatalf("expected ProviderUnavailableError, got %v", err)
	}
	if de, ok := AsDecodeError(err); !ok || de != decodeErr {
		t.Fatalf("expected original DecodeError in chain, got %v", err)
	}
}

func TestProcessUnsupportedProviderMakesNoCalls(t *testing.T) {
	geo := &stubGeocoder{}
	primary := &stubPrimary{resp: londonPrimary()}
	secondary := &stubSecondary{}
	svc := NewService(Config{}, geo, primary, secondary)

	for _, p := range []Provider{0, Provider(3), Provider(-1)} {
		if _, err := svc.Process(context.Background(), "London", p); !errors.Is(err, ErrUnsupportedProvider) {
			t.Fatalf("expected ErrUnsupportedProvider for %d, got %v", int(p), err)
		}
	}
	if geo.calls.Load()+primary.calls.Load()+secondary.calls.Load() != 0 {
		t.Fatalf("expected zero upstream calls")
	}
}

func TestProcessRejectsEmptyCity(t *testing.T) {
	primary := &stubPrimary{resp: londonPrimary()}
	svc := NewService(Config{}, nil, primary, nil)

	if _, err := svc.Process(context.Background(), "   ", ProviderPrimary); !errors.Is(err, ErrEmptyCity) {
		t.Fatalf("expected ErrEmptyCity, got %v", err)
	}
	if primary.calls.Load() != 0 {
		t.Fatalf("expected no upstream call for empty city")
	}
}

func TestProcessCanceledContextReturnsNoResult(t *testing.T) {
	svc := NewService(Config{}, nil, &stubPrimary{resp: londonPrimary()}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := svc.Process(ctx, "London", ProviderPrimary)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if got != (Result{}) {
		t.Fatalf("expected zero result, got %+v", got)
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	svc := NewService(Config{}, nil, &stubPrimary{resp: londonPrimary()}, nil)

	first, err := svc.Process(context.Background(), "London", ProviderPrimary)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.Process(context.Background(), "London", ProviderPrimary)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("expected identical results, got %s and %s", a, b)
	}
}

func TestProcessLogsOnceOnSuccess(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	svc := NewService(Config{}, nil, &stubPrimary{resp: londonPrimary()}, nil, WithLogger(zap.New(core)))

	if _, err := svc.Process(context.Background(), "London", ProviderPrimary); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected exactly one log record, got %d", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["city"] != "London" || fields["temperature"] != "15.2" || fields["description"] != "clear sky" {
		t.Fatalf("unexpected log fields %+v", fields)
	}

	failing := NewService(Config{}, nil, &stubPrimary{err: errors.New("down")}, nil, WithLogger(zap.New(core)))
	if _, err := failing.Process(context.Background(), "London", ProviderPrimary); err == nil {
		t.Fatal("expected error")
	}
	if logs.Len() != 1 {
		t.Fatalf("expected no log record for failed call, got %d", logs.Len())
	}
}

func TestProcessRecordsProviderAttempts(t *testing.T) {
	rec := &stubRecorder{}
	failure := errors.New("down")
	svc := NewService(Config{}, &stubGeocoder{}, &stubPrimary{resp: londonPrimary()}, &stubSecondary{err: failure}, WithRecorder(rec))

	_, _ = svc.Process(context.Background(), "London", ProviderPrimary)
	_, _ = svc.Process(context.Background(), "London", ProviderSecondary)

	if len(rec.calls) != 2 {
		t.Fatalf("expected 2 recorded calls, got %d", len(rec.calls))
	}
	if rec.calls[0].provider != "primary" || rec.calls[0].err != nil {
		t.Fatalf("unexpected first record %+v", rec.calls[0])
	}
	if rec.calls[1].provider != "secondary" || !errors.Is(rec.calls[1].err, failure) {
		t.Fatalf("unexpected second record %+v", rec.calls[1])
	}
}

func TestProcessWithoutClientsFails(t *testing.T) {
	svc := NewService(Config{}, nil, nil, nil)

	if _, err := svc.Process(context.Background(), "London", ProviderPrimary); err == nil {
		t.Fatal("expected error without primary client")
	}
	if _, err := svc.Process(context.Background(), "London", ProviderSecondary); err == nil {
		t.Fatal("expected error without secondary client")
	}
}
