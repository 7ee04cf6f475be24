// Package upstream is the single outbound HTTP path used by the flight and weather providers.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/airport-board/internal/metrics"
)

// BackoffConfig controls retries. MaxRetries of zero means a failed call is returned as-is.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Caller executes requests for one provider.
type Caller struct {
	Name    string
	Client  *http.Client
	Backoff BackoffConfig

	// Optional.
	Breaker *gobreaker.CircuitBreaker
	Limiter *rate.Limiter
	Metrics *metrics.Metrics
}

var (
	ErrRateLimited = errors.New("rate limited")
	ErrServerError = errors.New("server error")
	ErrUnexpected  = errors.New("unexpected status code")
	ErrCircuitOpen = errors.New("circuit breaker open")

	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// NewBreaker returns a breaker that opens after consecutiveFailures failed calls in a row.
// Zero or less yields a breaker that never opens, so every request reaches the upstream.
func NewBreaker(name string, consecutiveFailures int) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return consecutiveFailures > 0 && counts.ConsecutiveFailures >= uint32(consecutiveFailures)
		},
	})
}

// NewLimiter returns a limiter for requestsPerSecond, or nil when it is not positive.
func NewLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

// Do executes the request built by buildRequest. Only 2xx responses are returned;
// the caller owns closing the body.
func (c *Caller) Do(ctx context.Context, buildRequest func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	if c.Client == nil {
		return nil, errNoHTTPClient
	}
	if c.Backoff.MaxRetries < 0 || (c.Backoff.MaxRetries > 0 && c.Backoff.InitialInterval <= 0) {
		return nil, errInvalidConfig
	}

	var attempt int
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		resp, err := c.once(ctx, buildRequest)
		if err == nil {
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, ErrCircuitOpen) || attempt >= c.Backoff.MaxRetries {
			return nil, err
		}

		delay := c.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if c.Backoff.MaxInterval > 0 && delay > c.Backoff.MaxInterval {
			delay = c.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}

func (c *Caller) once(ctx context.Context, buildRequest func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := buildRequest(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	exec := func() (interface{}, error) {
		resp, err := c.Client.Do(req)
		if err != nil {
			return nil, err
		}
		if err := checkStatus(resp.StatusCode); err != nil {
			resp.Body.Close()
			return nil, err
		}
		return resp, nil
	}

	var result interface{}
	if c.Breaker != nil {
		result, err = c.Breaker.Execute(exec)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
	} else {
		result, err = exec()
	}

	if err != nil {
		c.Metrics.ObserveUpstream(c.Name, "error", time.Since(start))
		return nil, err
	}
	c.Metrics.ObserveUpstream(c.Name, "ok", time.Since(start))

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", result)
	}
	return resp, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code >= 500:
		return fmt.Errorf("%w: %d", ErrServerError, code)
	case code < 200 || code >= 300:
		return fmt.Errorf("%w: %d", ErrUnexpected, code)
	}
	return nil
}
