package weather

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type stubGeocoder struct {
	coords Coordinates
	err    error
	calls  atomic.Int32
	place  string
}

func (g *stubGeocoder) Resolve(ctx context.Context, place string) (Coordinates, error) {
	_ = ctx
	g.calls.Add(1)
	g.place = place
	return g.coords, g.err
}

type stubPrimary struct {
	resp   PrimaryResponse
	err    error
	calls  atomic.Int32
	city   string
	format OutputFormat
}

func (p *stubPrimary) FetchByName(ctx context.Context, city string, format OutputFormat) (PrimaryResponse, error) {
	_ = ctx
	p.calls.Add(1)
	p.city = city
	p.format = format
	return p.resp, p.err
}

type stubSecondary struct {
	resp   SecondaryResponse
	err    error
	calls  atomic.Int32
	coords Coordinates
}

func (s *stubSecondary) FetchByCoordinates(ctx context.Context, coords Coordinates) (SecondaryResponse, error) {
	_ = ctx
	s.calls.Add(1)
	s.coords = coords
	return s.resp, s.err
}

type recordedCall struct {
	provider string
	err      error
}

type stubRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *stubRecorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	_ = duration
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{provider: provider, err: err})
}

func londonPrimary() PrimaryResponse {
	return PrimaryResponse{
		Conditions: []Condition{{Icon: "01d", Description: "clear sky"}},
		Main:       PrimaryMain{Temperature: "15.2"},
	}
}
