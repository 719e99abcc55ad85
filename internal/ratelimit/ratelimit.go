// Package ratelimit bounds how many requests a caller may make per minute.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether the caller identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

type Config struct {
	RequestsPerMinute int
	Burst             int
}

type visitor struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LocalLimiter keeps one token bucket per key in process memory
type LocalLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewLocalLimiter starts a limiter whose idle buckets are dropped every cleanupInterval
func NewLocalLimiter(cfg Config, cleanupInterval time.Duration) *LocalLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.RequestsPerMinute
	}

	l := &LocalLimiter{
		limit:    rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:    burst,
		idle:     cleanupInterval,
		visitors: make(map[string]*visitor),
		stopCh:   make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go l.cleanupLoop(cleanupInterval)
	}

	return l
}

func (l *LocalLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastAccess = time.Now()
	l.mu.Unlock()

	return v.limiter.Allow()
}

// Len reports the number of tracked keys
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func (l *LocalLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *LocalLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictIdle(time.Now())
		case <-l.stopCh:
			return
		}
	}
}

func (l *LocalLimiter) evictIdle(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, v := range l.visitors {
		if now.Sub(v.lastAccess) > l.idle {
			delete(l.visitors, key)
		}
	}
}

const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter counts requests per key in a shared one-minute window, so
// every API replica enforces the same budget. Redis failures let the request
// through.
type RedisLimiter struct {
	client  redis.Scripter
	script  *redis.Script
	limit   int
	window  time.Duration
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

func NewRedisLimiter(client redis.Scripter, cfg Config, logger *slog.Logger) *RedisLimiter {
	return &RedisLimiter{
		client:  client,
		script:  redis.NewScript(fixedWindowScript),
		limit:   cfg.RequestsPerMinute,
		window:  time.Minute,
		prefix:  "gigs:ratelimit:",
		timeout: 250 * time.Millisecond,
		logger:  logger,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	if key == "" || l.limit <= 0 {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	allowed, err := l.script.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds(), l.limit).Int64()
	if err != nil {
		l.logger.Warn("Rate limit check failed, allowing request",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return true
	}
	return allowed == 1
}
