package fbr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

func testPayload() domain.InvoicePayload {
	return domain.InvoicePayload{
		InvoiceNumber:   "INV-20260102-ABC123",
		POSID:           812345,
		USIN:            "usin-1",
		DateTime:        "2026-01-02 10:00:00",
		TotalBillAmount: 117000,
		PaymentMode:     domain.PaymentModeCash,
		Items:           []domain.InvoiceItem{{ItemCode: "MC-70", Quantity: 1, SaleValue: 100000}},
	}
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		Endpoint:          url,
		Token:             "tok",
		Timeout:           2 * time.Second,
		MaxAttempts:       3,
		RetryDelay:        time.Millisecond,
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(Config{Endpoint: "https://example.test"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.client.Timeout)
	assert.Equal(t, DefaultMaxAttempts, c.maxAttempts)
	assert.Equal(t, DefaultRetryDelay, c.retryDelay)
}

func TestConfigFromSettings(t *testing.T) {
	s := domain.ResolveSettings(domain.EnvironmentSandbox).FBR
	s.Token = "abc"

	cfg := ConfigFromSettings(s)

	assert.Equal(t, s.Endpoint, cfg.Endpoint)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, s.Timeout, cfg.Timeout)
	assert.Equal(t, s.MaxAttempts, cfg.MaxAttempts)
}

func TestClient_Submit_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got domain.InvoicePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "usin-1", got.USIN)

		_, _ = w.Write([]byte(`{"InvoiceNumber":"FBR-0001","Code":"100","Response":"Invoice received successfully","Errors":null}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv.URL).Submit(context.Background(), testPayload())

	require.NoError(t, err)
	assert.Equal(t, "FBR-0001", resp.InvoiceNumber)
	assert.Equal(t, SuccessCode, resp.Code)
	assert.Equal(t, "Invoice received successfully", resp.Message)
}

func TestClient_Submit_NumericCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"InvoiceNumber":"FBR-2","Code":100,"Response":"ok"}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv.URL).Submit(context.Background(), testPayload())

	require.NoError(t, err)
	assert.Equal(t, "FBR-2", resp.InvoiceNumber)
}

func TestClient_Submit_BusinessRejectionIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"Code":"401","Response":"Unauthorized POSID","Errors":["POSID not registered"]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Submit(context.Background(), testPayload())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPermanent)
	assert.Contains(t, err.Error(), "Unauthorized POSID")
	assert.Contains(t, err.Error(), "POSID not registered")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Submit_4xxIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Submit(context.Background(), testPayload())

	assert.ErrorIs(t, err, domain.ErrPermanent)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Submit_5xxRetriedThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"InvoiceNumber":"FBR-3","Code":"100"}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv.URL).Submit(context.Background(), testPayload())

	require.NoError(t, err)
	assert.Equal(t, "FBR-3", resp.InvoiceNumber)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Submit_ExhaustedBudgetIsTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Submit(context.Background(), testPayload())

	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.NotErrorIs(t, err, domain.ErrPermanent)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Submit_TransportFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url).Submit(context.Background(), testPayload())

	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestClient_Submit_UndecodableBodyIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Submit(context.Background(), testPayload())

	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestClient_Submit_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, srv.URL).Submit(ctx, testPayload())

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrTransient)
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"abc", 0},
		{"-1", 0},
		{"2", 2 * time.Second},
		{"600", maxRetryAfter},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, retryAfter(tt.header), "header %q", tt.header)
	}
}

func TestResponseMessage(t *testing.T) {
	tests := []struct {
		name string
		resp response
		want string
	}{
		{"text only", response{Response: "rejected"}, "rejected"},
		{"errors only", response{Errors: []any{"bad"}}, `["bad"]`},
		{"both", response{Response: "rejected", Errors: "bad"}, `rejected "bad"`},
		{"empty string errors", response{Response: "rejected", Errors: ""}, "rejected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.message())
		})
	}
}
