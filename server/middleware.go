package server

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	userIDKey       = "user_id"
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// requestLogger tags every request with an id and logs it once the handler
// chain has finished.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client", c.ClientIP(),
			"request_id", id,
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("[HTTP] request failed", attrs...)
		case status >= http.StatusBadRequest:
			logger.Warn("[HTTP] request rejected", attrs...)
		default:
			logger.Info("[HTTP] request", attrs...)
		}
	}
}

// clientLimiter holds one token bucket per client address.
type clientLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*limiterEntry
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterIdle is how long an unused bucket is kept.
const limiterIdle = 10 * time.Minute

// newClientLimiter returns nil when perSecond is not positive, which
// disables limiting.
func newClientLimiter(perSecond float64) *clientLimiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(math.Ceil(perSecond * 2))
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*limiterEntry),
		now:      time.Now,
	}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.limiters[client]
	if !ok {
		l.sweep(now)
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[client] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// sweep drops idle buckets. Called with mu held.
func (l *clientLimiter) sweep(now time.Time) {
	for client, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > limiterIdle {
			delete(l.limiters, client)
		}
	}
}

func rateLimit(l *clientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l != nil && !l.allow(c.ClientIP()) {
			abortError(c, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// requireAuth rejects requests without a valid bearer token. With no
// TokenService configured every request is rejected.
func requireAuth(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			abortError(c, http.StatusUnauthorized, "Authentication is not configured")
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			abortError(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		userID, err := tokens.Validate(token)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, ErrExpiredToken) {
				msg = "Token expired"
			}
			abortError(c, http.StatusUnauthorized, msg)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// optionalAuth attaches the user id when a valid token is present and
// otherwise lets the request through anonymously.
func optionalAuth(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens != nil {
			if token, ok := bearerToken(c); ok {
				if userID, err := tokens.Validate(token); err == nil {
					c.Set(userIDKey, userID)
				}
			}
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
