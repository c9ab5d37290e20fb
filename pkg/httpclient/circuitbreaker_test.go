package httpclient

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breakerUnderTest(t *testing.T, srvURL string) *BreakerClient {
	t.Helper()
	cfg := BreakerConfig{
		Name:         t.Name(),
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      50 * time.Millisecond,
		FailureRatio: 0.5,
		MinRequests:  2,
	}
	client := New(Config{
		Timeout:      time.Second,
		MaxRetries:   0,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: time.Millisecond,
	})
	return NewBreakerClient(client, cfg, slog.New(slog.DiscardHandler))
}

func TestBreakerClient_PassesThroughSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := breakerUnderTest(t, srv.URL)
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, c.State())
}

func TestBreakerClient_TreatsServerErrorAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := breakerUnderTest(t, srv.URL)
	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error 500")
}

func TestBreakerClient_OpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := breakerUnderTest(t, srv.URL)
	for i := 0; i < 3; i++ {
		_, _ = c.Get(context.Background(), srv.URL)
	}

	assert.Equal(t, gobreaker.StateOpen, c.State())

	// Open breaker rejects without touching the server.
	before := calls.Load()
	_, err := c.Get(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, calls.Load())
}

func TestBreakerClient_RecoversViaHalfOpen(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := breakerUnderTest(t, srv.URL)
	for i := 0; i < 3; i++ {
		_, _ = c.Get(context.Background(), srv.URL)
	}
	require.Equal(t, gobreaker.StateOpen, c.State())

	healthy.Store(true)
	time.Sleep(60 * time.Millisecond) // past breaker timeout

	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, c.State())
}
