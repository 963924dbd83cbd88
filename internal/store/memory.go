package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/city-weather/internal/weather"
)

var (
	// ErrNotFound is returned when no probe results are available for a provider.
	ErrNotFound = errors.New("no probe results for provider")
)

// ProbeResult records one scheduled call to a weather provider.
type ProbeResult struct {
	ID       string
	Provider weather.Provider
	City     string
	At       time.Time
	Duration time.Duration
	OK       bool
	Error    string
	Result   *weather.Result
}

// probeHistory holds a time-ordered list of probe results for one provider.
type probeHistory struct {
	results []ProbeResult
}

// MemoryStore is a concurrency-safe in-memory store of probe results.
type MemoryStore struct {
	mu sync.RWMutex

	data map[weather.Provider]*probeHistory

	maxHistory int           // max number of results per provider
	maxAge     time.Duration // optional max age for results

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[weather.Provider]*probeHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveProbe appends a result for its provider and enforces retention.
func (s *MemoryStore) SaveProbe(res ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[res.Provider]
	if !ok {
		history = &probeHistory{}
		s.data[res.Provider] = history
	}

	history.results = append(history.results, res)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.results) > s.maxHistory {
		over := len(history.results) - s.maxHistory
		history.results = append([]ProbeResult(nil), history.results[over:]...)
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.results); i++ {
			if !history.results[i].At.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			history.results = append([]ProbeResult(nil), history.results[i:]...)
		}
	}
}

// GetLatest returns the most recent result for a provider.
func (s *MemoryStore) GetLatest(p weather.Provider) (ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[p]
	if !ok || len(history.results) == 0 {
		return ProbeResult{}, ErrNotFound
	}
	return history.results[len(history.results)-1], nil
}

// GetRange returns all results for a provider between from and to (inclusive).
func (s *MemoryStore) GetRange(p weather.Provider, from, to time.Time) ([]ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[p]
	if !ok || len(history.results) == 0 {
		return nil, ErrNotFound
	}

	var result []ProbeResult
	for _, r := range history.results {
		if !r.At.Before(from) && !r.At.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
