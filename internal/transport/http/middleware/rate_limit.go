package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"go.uber.org/zap"
)

const (
	rateLimitProblemType  = "https://gestihotel.app/errors/rate-limit-exceeded"
	rateLimitProblemTitle = "Rate Limit Exceeded"
)

// IdentifierFunc extracts the identifier used to scope rate limits (e.g., user id).
type IdentifierFunc func(*gin.Context) (string, bool)

// ProblemDetails represents an RFC 9457 compatible error payload for rate limits.
type ProblemDetails struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Status     int    `json:"status"`
	Detail     string `json:"detail"`
	Instance   string `json:"instance"`
	RetryAfter int    `json:"retry_after"`
	TraceID    string `json:"trace_id,omitempty"`
}

// RateLimiter keeps one token bucket per identifier.
type RateLimiter struct {
	name       string
	limit      rate.Limit
	burst      int
	identifier IdentifierFunc
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiter allows perMinute requests per identifier with a burst of the same size.
// A non-positive perMinute disables limiting.
func NewRateLimiter(name string, perMinute int, identifier IdentifierFunc, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	rl := &RateLimiter{
		name:       name,
		identifier: identifier,
		logger:     logger,
		now:        time.Now,
		limiters:   make(map[string]*rate.Limiter),
	}
	if perMinute > 0 {
		rl.limit = rate.Every(time.Minute / time.Duration(perMinute))
		rl.burst = perMinute
	}
	return rl
}

// WithClock allows injection of a custom clock (primarily for testing).
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// AuthenticatedUserIdentifier scopes limits to the signed-in user.
func AuthenticatedUserIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		return GetAuthenticatedUserID(c)
	}
}

// ClientIPIdentifier builds an IdentifierFunc using the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// Handler returns a Gin middleware enforcing the limit.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.burst == 0 || rl.identifier == nil {
			c.Next()
			return
		}

		identifier, ok := rl.identifier(c)
		if !ok || identifier == "" {
			c.Next()
			return
		}

		now := rl.now()
		limiter := rl.limiterFor(identifier)
		reservation := limiter.ReserveN(now, 1)
		if !reservation.OK() {
			rl.respondRateLimited(c, time.Minute)
			return
		}

		delay := reservation.DelayFrom(now)
		if delay > 0 {
			reservation.CancelAt(now)
			rl.logger.Debug("rate limit exceeded", zap.String("rule", rl.name), zap.String("identifier", identifier))
			rl.applyHeaders(c, 0, now.Add(delay))
			rl.respondRateLimited(c, delay)
			return
		}

		remaining := int(math.Floor(limiter.TokensAt(now)))
		rl.applyHeaders(c, remaining, now.Add(rl.refill(remaining)))

		c.Next()
	}
}

func (rl *RateLimiter) limiterFor(identifier string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, ok := rl.limiters[identifier]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[identifier] = limiter
	}
	return limiter
}

// refill is the time until the bucket is full again.
func (rl *RateLimiter) refill(remaining int) time.Duration {
	missing := rl.burst - remaining
	if missing <= 0 || rl.limit <= 0 {
		return 0
	}
	return time.Duration(float64(missing) / float64(rl.limit) * float64(time.Second))
}

func (rl *RateLimiter) applyHeaders(c *gin.Context, remaining int, reset time.Time) {
	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
}

func (rl *RateLimiter) respondRateLimited(c *gin.Context, retryAfter time.Duration) {
	retrySeconds := int(math.Ceil(retryAfter.Seconds()))
	if retrySeconds < 1 {
		retrySeconds = 1
	}
	c.Header("Retry-After", strconv.Itoa(retrySeconds))

	instance := c.FullPath()
	if instance == "" {
		instance = c.Request.URL.Path
	}

	c.AbortWithStatusJSON(http.StatusTooManyRequests, ProblemDetails{
		Type:       rateLimitProblemType,
		Title:      rateLimitProblemTitle,
		Status:     http.StatusTooManyRequests,
		Detail:     fmt.Sprintf("Too many requests. Try again in %d seconds.", retrySeconds),
		Instance:   instance,
		RetryAfter: retrySeconds,
		TraceID:    GetTraceID(c),
	})
}
