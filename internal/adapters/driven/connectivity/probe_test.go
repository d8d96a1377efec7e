package connectivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

func statusServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()
	return url
}

func TestProber_Probe(t *testing.T) {
	tests := []struct {
		name      string
		endpoints func(t *testing.T) []string
		wantErr   bool
	}{
		{
			name:      "first endpoint reachable",
			endpoints: func(t *testing.T) []string { return []string{statusServer(t, http.StatusOK).URL} },
		},
		{
			name:      "4xx still counts as online",
			endpoints: func(t *testing.T) []string { return []string{statusServer(t, http.StatusForbidden).URL} },
		},
		{
			name: "falls through dead endpoints",
			endpoints: func(t *testing.T) []string {
				return []string{deadURL(t), statusServer(t, http.StatusServiceUnavailable).URL, statusServer(t, http.StatusNoContent).URL}
			},
		},
		{
			name:      "all unreachable",
			endpoints: func(t *testing.T) []string { return []string{deadURL(t), deadURL(t)} },
			wantErr:   true,
		},
		{
			name:      "5xx only",
			endpoints: func(t *testing.T) []string { return []string{statusServer(t, http.StatusBadGateway).URL} },
			wantErr:   true,
		},
		{
			name:      "no endpoints",
			endpoints: func(*testing.T) []string { return nil },
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProber(tt.endpoints(t), time.Second)
			err := p.Probe(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrOffline)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProber_HeadFallsBackToGet(t *testing.T) {
	var heads, gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			heads.Add(1)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gets.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewProber([]string{srv.URL}, time.Second).Probe(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int32(1), heads.Load())
	assert.Equal(t, int32(1), gets.Load())
}

func TestProber_RedirectNotFollowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://127.0.0.1:1/never", http.StatusFound)
	}))
	defer srv.Close()

	assert.NoError(t, NewProber([]string{srv.URL}, time.Second).Probe(context.Background()))
}

func TestProber_SlowEndpointTimesOut(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()
	fast := statusServer(t, http.StatusOK)

	start := time.Now()
	err := NewProber([]string{slow.URL, fast.URL}, 50*time.Millisecond).Probe(context.Background())

	assert.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestProber_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewProber([]string{statusServer(t, http.StatusOK).URL}, time.Second).Probe(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProber_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewProber(nil, 0).timeout)
}
