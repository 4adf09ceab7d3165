package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter decides whether the caller identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RateLimiter is a fixed-window limiter backed by Redis, shared by every
// API instance.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		now:    time.Now,
	}
}

func (rl *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	allowed, remaining, reset, err := rl.IsAllowed(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: allowed, Limit: rl.config.Limit, Remaining: remaining, Reset: reset}, nil
}

// IsAllowed counts a request from key in the current window.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	// Use Redis pipeline for atomic operations
	pipe := rl.redis.TxPipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// LocalRateLimiter is an in-process token bucket per key. It is used when
// Redis is not configured; limits then apply per API instance.
type LocalRateLimiter struct {
	config   RateLimitConfig
	now      func() time.Time
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

const localLimiterSweepSize = 10000

// NewLocalRateLimiter creates a limiter refilling Limit tokens per Window
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	return &LocalRateLimiter{
		config:   config,
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *LocalRateLimiter) interval() time.Duration {
	return l.config.Window / time.Duration(l.config.Limit)
}

func (l *LocalRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= localLimiterSweepSize {
			l.sweep(now)
		}
		lim = rate.NewLimiter(rate.Every(l.interval()), l.config.Limit)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)
	remaining := int(math.Max(0, math.Floor(tokens)))

	reset := now
	if missing := float64(l.config.Limit) - tokens; missing > 0 {
		reset = now.Add(time.Duration(missing * float64(l.interval())))
	}
	return Decision{Allowed: allowed, Limit: l.config.Limit, Remaining: remaining, Reset: reset}, nil
}

// sweep drops buckets that have refilled completely. Caller holds mu.
func (l *LocalRateLimiter) sweep(now time.Time) {
	for key, lim := range l.limiters {
		if lim.TokensAt(now) >= float64(l.config.Limit) {
			delete(l.limiters, key)
		}
	}
}

func newLimiter(redisClient *redis.Client, config RateLimitConfig) Limiter {
	if redisClient == nil {
		return NewLocalRateLimiter(config)
	}
	return NewRateLimiter(redisClient, config)
}

// NewRecipeCreationRateLimiter limits recipe creation per user per hour.
// A nil client selects the in-process limiter.
func NewRecipeCreationRateLimiter(redisClient *redis.Client, limit int) Limiter {
	return newLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_creation",
	})
}

// NewImageUploadRateLimiter limits image uploads per user per hour
func NewImageUploadRateLimiter(redisClient *redis.Client, limit int) Limiter {
	return newLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     limit,
		KeyPrefix: "rate_limit:image_upload",
	})
}

// RateLimit returns a Gin middleware that enforces limiter per user, or per
// client IP for anonymous requests. Limiter errors let the request through.
func RateLimit(limiter Limiter, name string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID, ok := UserID(c); ok {
			key = "user:" + userID.String()
		}

		d, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rate limit check failed", "limiter", name, "error", err)
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

		if !d.Allowed {
			rateLimitRejects.WithLabelValues(name).Inc()
			retryAfter := int(math.Ceil(time.Until(d.Reset).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":                "rate limit exceeded",
				"message":              fmt.Sprintf("You have exceeded the rate limit of %d requests", d.Limit),
				"rate_limit_remaining": d.Remaining,
				"rate_limit_reset":     d.Reset.Unix(),
				"retry_after":          retryAfter,
			})
			return
		}

		c.Next()
	}
}
