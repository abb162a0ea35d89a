package ai

import (
	"context"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBackoff = 2 * time.Second
	maxBackoff     = 60 * time.Second
)

// RateLimiter throttles calls to the model provider with a token bucket and
// pauses every caller after a 429 until the provider's retry window is over.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	strikes int
	jitter  func(time.Duration) time.Duration
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained calls.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		jitter: func(d time.Duration) time.Duration {
			if d <= 0 {
				return 0
			}
			return time.Duration(rand.Int64N(int64(d)))
		},
	}
}

// Wait blocks until a call is allowed. It honours any pending 429 backoff first.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimit registers a 429. retryAfter is the provider hint (zero when absent);
// without a hint the backoff doubles with every consecutive 429. Half of the
// backoff is added again as random jitter.
func (r *RateLimiter) RecordRateLimit(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.strikes++
	backoff := retryAfter
	if backoff <= 0 {
		backoff = defaultBackoff << (r.strikes - 1)
	}
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	backoff += r.jitter(backoff / 2)

	until := time.Now().Add(backoff)
	if until.After(r.retryAt) {
		r.retryAt = until
	}
}

// RecordSuccess resets the consecutive 429 counter.
func (r *RateLimiter) RecordSuccess() {
	r.mu.Lock()
	r.strikes = 0
	r.mu.Unlock()
}

// BackingOff reports whether a 429 backoff window is still open.
func (r *RateLimiter) BackingOff() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Now().Before(r.retryAt)
}

// rateLimitTransport reports 429 responses to the limiter.
type rateLimitTransport struct {
	next    http.RoundTripper
	limiter *RateLimiter
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		t.limiter.RecordRateLimit(parseRetryAfter(resp.Header.Get("Retry-After")))
	}
	return resp, err
}

func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
