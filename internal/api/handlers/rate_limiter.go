package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zatekoja/search-suggestions/internal/domain/providers"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/observability"
)

// rateLimiter is a fixed-window counter shared through the cache when one is
// configured, and kept in process otherwise. A window opens on a key's first
// request and is never extended by later ones.
type rateLimiter struct {
	cache  providers.CacheProvider
	local  *localRateLimiter
	limit  int
	window time.Duration
}

func newRateLimiter(cache providers.CacheProvider, limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		cache:  cache,
		local:  newLocalRateLimiter(time.Now),
		limit:  limit,
		window: window,
	}
}

// allow reports whether key may proceed and, when it may not, how long until
// the window closes. A non-positive limit disables limiting.
func (l *rateLimiter) allow(ctx context.Context, key string) (bool, time.Duration) {
	if l.limit <= 0 {
		return true, 0
	}
	if l.cache == nil {
		return l.local.allow(key, l.limit, l.window)
	}

	count, ttl, err := l.cache.Increment(ctx, key, int(l.window.Seconds()))
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Rate limit counter unavailable, using local limiter")
		return l.local.allow(key, l.limit, l.window)
	}

	if count > int64(l.limit) {
		if ttl <= 0 {
			ttl = l.window
		}
		return false, ttl
	}
	return true, 0
}

type localRateLimiter struct {
	mu        sync.Mutex
	now       func() time.Time
	states    map[string]*localRateState
	nextSweep time.Time
}

type localRateState struct {
	count   int
	resetAt time.Time
}

func newLocalRateLimiter(now func() time.Time) *localRateLimiter {
	return &localRateLimiter{
		now:    now,
		states: make(map[string]*localRateState),
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now, window)

	state, ok := l.states[key]
	if !ok || !now.Before(state.resetAt) {
		state = &localRateState{resetAt: now.Add(window)}
		l.states[key] = state
	}

	if state.count >= limit {
		return false, state.resetAt.Sub(now)
	}

	state.count++
	return true, 0
}

// sweep drops closed windows, at most once per window.
func (l *localRateLimiter) sweep(now time.Time, window time.Duration) {
	if now.Before(l.nextSweep) {
		return
	}
	for key, state := range l.states {
		if !now.Before(state.resetAt) {
			delete(l.states, key)
		}
	}
	l.nextSweep = now.Add(window)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
