package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"bulletin_board/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether another request for key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-key token bucket kept in process memory
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	r        rate.Limit
	b        int
	idle     time.Duration
}

// NewMemoryLimiter creates a limiter and runs its cleanup loop until ctx is done
func NewMemoryLimiter(ctx context.Context, rps float64, burst int) *MemoryLimiter {
	l := &MemoryLimiter{visitors: make(map[string]*visitor), r: rate.Limit(rps), b: burst, idle: 3 * time.Minute}
	go l.cleanupLoop(ctx, time.Minute)
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	return l.get(key).Allow(), nil
}

func (l *MemoryLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if vis, ok := l.visitors[key]; ok {
		vis.lastSeen = time.Now()
		return vis.limiter
	}

	limiter := rate.NewLimiter(l.r, l.b)
	l.visitors[key] = &visitor{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

func (l *MemoryLimiter) cleanupLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evictIdle(time.Now())
		}
	}
}

func (l *MemoryLimiter) evictIdle(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, vis := range l.visitors {
		if now.Sub(vis.lastSeen) > l.idle {
			delete(l.visitors, key)
		}
	}
}

// redisCounter is the part of a redis client the fixed window limiter needs
type redisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisLimiter is a fixed window counter shared by every server instance
type RedisLimiter struct {
	client redisCounter
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter allows burst requests per window, where the window is sized
// so that the long-run rate matches rps
func NewRedisLimiter(client redis.Cmdable, prefix string, rps float64, burst int) *RedisLimiter {
	window := time.Second
	if rps > 0 {
		window = time.Duration(float64(burst) / rps * float64(time.Second))
	}
	if window < time.Second {
		window = time.Second
	}
	return &RedisLimiter{client: client, prefix: prefix, limit: int64(burst), window: window, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := l.now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:ratelimit:%s:%d", l.prefix, key, bucket)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("redis incr failed: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("redis expire failed: %w", err)
		}
	}
	return count <= l.limit, nil
}

// RateLimitMiddleware limits requests per client IP and route. Limiter
// failures are logged and the request is let through.
func RateLimitMiddleware(l Limiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.FullPath()
		allowed, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("rate limiter unavailable, allowing request", "key", key, "error", err)
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
