package middleware

import (
    "sync"
    "time"

    "golang.org/x/time/rate"

    "github.com/iliyamo/raffle-reservation/internal/config"
)

// LocalLimiter keeps one rate.Limiter per key in memory.  Idle keys are
// pruned once they have been unused for the configured TTL.
type LocalLimiter struct {
    mu        sync.Mutex
    limit     rate.Limit
    burst     int
    ttl       time.Duration
    buckets   map[string]*localBucket
    lastPrune time.Time
    now       func() time.Time
}

type localBucket struct {
    lim  *rate.Limiter
    seen time.Time
}

// NewLocalLimiter builds a limiter from the same config as the Redis bucket.
func NewLocalLimiter(cfg config.RateLimitConfig) *LocalLimiter {
    cfg = cfg.Normalize()
    return &LocalLimiter{
        limit:   rate.Limit(cfg.PerSecond()),
        burst:   cfg.Capacity,
        ttl:     cfg.TTL,
        buckets: make(map[string]*localBucket),
        now:     time.Now,
    }
}

// Allow takes one token for key.
func (l *LocalLimiter) Allow(key string) bool { return l.take(key).allowed }

func (l *LocalLimiter) take(key string) decision {
    l.mu.Lock()
    defer l.mu.Unlock()

    now := l.now()
    l.prune(now)

    b, ok := l.buckets[key]
    if !ok {
        b = &localBucket{lim: rate.NewLimiter(l.limit, l.burst)}
        l.buckets[key] = b
    }
    b.seen = now

    r := b.lim.ReserveN(now, 1)
    if delay := r.DelayFrom(now); delay > 0 {
        r.CancelAt(now)
        return decision{retry: delay}
    }
    return decision{allowed: true, remaining: int64(b.lim.TokensAt(now))}
}

func (l *LocalLimiter) prune(now time.Time) {
    if now.Sub(l.lastPrune) < l.ttl {
        return
    }
    for k, b := range l.buckets {
        if now.Sub(b.seen) > l.ttl {
            delete(l.buckets, k)
        }
    }
    l.lastPrune = now
}
