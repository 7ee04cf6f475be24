package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func getter(url string) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestDo_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := &Caller{Name: "test", Client: srv.Client()}
	resp, err := c.Do(context.Background(), getter(srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDo_NoRetryByDefault(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := &Caller{Name: "test", Client: srv.Client()}
	_, err := c.Do(context.Background(), getter(srv.URL))
	require.ErrorIs(t, err, ErrServerError)
	require.Contains(t, err.Error(), "502")
	require.Equal(t, int32(1), hits.Load())
}

func TestDo_RetriesWhenConfigured(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := &Caller{
		Name:    "test",
		Client:  srv.Client(),
		Backoff: BackoffConfig{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond},
	}
	resp, err := c.Do(context.Background(), getter(srv.URL))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, int32(3), hits.Load())
}

func TestDo_StatusErrors(t *testing.T) {
	cases := map[int]error{
		http.StatusTooManyRequests: ErrRateLimited,
		http.StatusUnauthorized:    ErrUnexpected,
		http.StatusNotFound:        ErrUnexpected,
	}
	for code, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		c := &Caller{Name: "test", Client: srv.Client()}
		_, err := c.Do(context.Background(), getter(srv.URL))
		require.ErrorIs(t, err, want, "status %d", code)
		srv.Close()
	}
}

func TestDo_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &Caller{Name: "test", Client: srv.Client(), Breaker: NewBreaker("test", 2)}
	for i := 0; i < 2; i++ {
		_, err := c.Do(context.Background(), getter(srv.URL))
		require.ErrorIs(t, err, ErrServerError)
	}
	_, err := c.Do(context.Background(), getter(srv.URL))
	require.ErrorIs(t, err, ErrCircuitOpen)
	require.Equal(t, int32(2), hits.Load())
}

func TestDo_DisabledBreakerNeverOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &Caller{Name: "test", Client: srv.Client(), Breaker: NewBreaker("test", 0)}
	for i := 0; i < 10; i++ {
		_, err := c.Do(context.Background(), getter(srv.URL))
		require.ErrorIs(t, err, ErrServerError)
	}
	require.Equal(t, int32(10), hits.Load())
}

func TestDo_NoClient(t *testing.T) {
	c := &Caller{Name: "test"}
	_, err := c.Do(context.Background(), getter("http://example.invalid"))
	require.ErrorIs(t, err, errNoHTTPClient)
}

func TestNewLimiter(t *testing.T) {
	require.Nil(t, NewLimiter(0))
	require.NotNil(t, NewLimiter(2))
}
