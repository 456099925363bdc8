package worker

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// LocalBucket is the limiter key shared by every non-URL source (files, stdin).
// Reading local files does not touch a remote host, so it is never throttled.
const LocalBucket = "local"

// Limiter implements per-host rate limiting
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter. A non-positive rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters: map[string]*rate.Limiter{
			LocalBucket: rate.NewLimiter(rate.Inf, burst),
		},
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until source may be fetched
func (l *Limiter) Wait(ctx context.Context, source string) error {
	return l.getLimiter(BucketFor(source)).Wait(ctx)
}

// Allow checks if a fetch is allowed without waiting
func (l *Limiter) Allow(source string) bool {
	return l.getLimiter(BucketFor(source)).Allow()
}

func (l *Limiter) getLimiter(bucket string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[bucket]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[bucket]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[bucket] = limiter
	return limiter
}

// SetHostRate sets a custom rate limit for one host
func (l *Limiter) SetHostRate(host string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[strings.ToLower(host)] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// BucketFor returns the limiter key for a source: the lower-cased host for
// http(s) URLs and LocalBucket for everything else.
func BucketFor(source string) string {
	if !IsURL(source) {
		return LocalBucket
	}
	parsed, err := url.Parse(source)
	if err != nil || parsed.Host == "" {
		return LocalBucket
	}
	return strings.ToLower(parsed.Host)
}

// IsURL reports whether source is an http or https URL
func IsURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
