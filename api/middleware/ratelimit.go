package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/campus-hub/campus-services/models"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// CounterStore increments a request counter and reports the count seen in
// the current window. Implementations decide where the counter lives.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int, error)
}

// MemoryCounterStore keeps per-key fixed windows in process memory. Suitable
// for a single instance; use the redis store when running more than one.
type MemoryCounterStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (m *MemoryCounterStore) Incr(_ context.Context, key string, d time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		m.windows[key] = &window{count: 1, resetAt: now.Add(d)}
		m.evictExpired(now)
		return 1, nil
	}
	w.count++
	return w.count, nil
}

// evictExpired drops stale windows. Called under the lock on window
// rollover, keeping the map bounded by the active client set.
func (m *MemoryCounterStore) evictExpired(now time.Time) {
	for key, w := range m.windows {
		if now.After(w.resetAt) {
			delete(m.windows, key)
		}
	}
}

// RedisCounterStore shares counters between instances via INCR with an
// expiry set on first increment of each window.
type RedisCounterStore struct {
	Client *redis.Client
}

func NewRedisCounterStore(url string) (*RedisCounterStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisCounterStore{Client: redis.NewClient(opts)}, nil
}

func (r *RedisCounterStore) Incr(ctx context.Context, key string, d time.Duration) (int, error) {
	count, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.Client.Expire(ctx, key, d).Err(); err != nil {
			return 0, err
		}
	}
	return int(count), nil
}

// RateLimit rejects clients that exceed the per-IP request budget within the
// fixed window. A counter-store failure lets the request through: losing a
// window of accounting is preferable to refusing all traffic.
func (g *Gate) RateLimit(next http.Handler) http.Handler {
	windowDur := time.Duration(g.Limit.WindowSeconds) * time.Second

	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if g.Counters == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := "ratelimit:" + clientIP(r)
			count, err := g.Counters.Incr(r.Context(), key, windowDur)
			if err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).
					Msg("rate limit counter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			if count > g.Limit.MaxRequests {
				zerolog.Ctx(r.Context()).Warn().
					Str("client", clientIP(r)).Int("count", count).
					Msg("rate limit exceeded")
				g.recordIncident(models.SeverityError, "rate-limit", "per-client budget exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(g.Limit.WindowSeconds))
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		},
	)
}
