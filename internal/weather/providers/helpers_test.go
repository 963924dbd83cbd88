package providers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// upstream is an httptest server that counts hits and records the last request.
type upstream struct {
	*httptest.Server
	hits atomic.Int32

	mu      sync.Mutex
	lastReq *http.Request
}

func (u *upstream) last() *http.Request {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastReq
}

func newUpstream(t *testing.T, status int, contentType, body string) *upstream {
	t.Helper()
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		u.mu.Lock()
		u.lastReq = r
		u.mu.Unlock()
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(u.Close)
	return u
}

func newTestFetcher() *Fetcher {
	return NewFetcher(FetcherConfig{
		HTTPClient: &http.Client{Timeout: 2 * time.Second},
		Breaker:    BreakerConfig{ConsecutiveFailures: 2, Timeout: time.Minute},
	})
}
