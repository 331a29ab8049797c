package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"resume-scanner/internal/shared/metrics"
	"resume-scanner/internal/shared/server/respond"
)

const defaultRateLimitGroup = "DEFAULT"

// RateLimitRule is a token bucket: Rate tokens per second up to Burst.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

func (r RateLimitRule) disabled() bool {
	return r.Rate <= 0 || r.Burst <= 0
}

// RateLimitConfig maps requests to named groups and groups to rules. Groups
// without a rule are not throttled.
type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

// RateLimiter keeps one bucket per caller and group.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter returns an empty limiter. now defaults to time.Now.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: map[string]*bucket{}, now: now}
}

// RateLimit throttles callers per group. The caller is the signed-in user or,
// before sign in, the client IP. Rejections use the standard error envelope.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = defaultRateLimitGroup
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}

		wait, ok := cfg.Limiter.Allow(callerKey(c)+"|"+group, rule)
		if ok {
			c.Next()
			return
		}

		if wait <= 0 {
			wait = time.Second
		}
		metrics.IncRateLimited(group)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited",
			fmt.Sprintf("Too many requests. Try again in %d seconds.", int(math.Ceil(wait.Seconds()))),
			gin.H{"retry_after_ms": wait.Milliseconds()})
	}
}

func callerKey(c *gin.Context) string {
	if id := strings.TrimSpace(UserIDFromContext(c)); id != "" {
		return "user:" + id
	}
	return "ip:" + c.ClientIP()
}

// Allow takes a token for key. When the bucket is empty it reports how long
// until the next token.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (time.Duration, bool) {
	if l == nil || rule.disabled() {
		return 0, true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b == nil {
		b = &bucket{tokens: float64(rule.Burst), seen: now}
		l.buckets[key] = b
	}
	if d := now.Sub(b.seen); d > 0 {
		b.tokens = math.Min(float64(rule.Burst), b.tokens+d.Seconds()*rule.Rate)
		b.seen = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return 0, true
	}
	ms := math.Ceil((1 - b.tokens) / rule.Rate * 1000)
	return time.Duration(ms) * time.Millisecond, false
}

// PathGroups maps a matched route ("METHOD /full/path") to a rate limit group.
func PathGroups(groups map[string]string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		return groups[c.Request.Method+" "+c.FullPath()]
	}
}
