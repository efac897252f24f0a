package mockapi

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/freightdesk/internal/common"
	"github.com/dmitrijs2005/freightdesk/internal/logging"
	"github.com/dmitrijs2005/freightdesk/internal/mockapi/auth"
)

const (
	authUserKey   = "auth_user"
	authClaimsKey = "auth_claims"
	requestIDKey  = "request_id"
)

// unauthenticated is the body of every 401.
var unauthenticated = gin.H{"message": "Unauthenticated."}

// AuthMiddleware accepts requests carrying a valid, unrevoked bearer token
// of a known user and stores that user in the context.
func AuthMiddleware(store *Store, secretKey []byte, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeader)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthenticated)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix))
		claims, err := auth.ParseToken(token, secretKey)
		if err == nil && store.IsRevoked(claims.ID) {
			err = common.ErrTokenRevoked
		}
		if err != nil {
			logger.Debug(c.Request.Context(), "rejected token", "error", err, requestIDKey, c.GetString(requestIDKey))
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthenticated)
			return
		}

		id, err := strconv.ParseInt(claims.UserID, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthenticated)
			return
		}
		user, ok := store.User(id)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthenticated)
			return
		}

		c.Set(authUserKey, user)
		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

func authUser(c *gin.Context) *User {
	if v, ok := c.Get(authUserKey); ok {
		if u, ok := v.(*User); ok {
			return u
		}
	}
	return nil
}

func authClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(authClaimsKey); ok {
		if cl, ok := v.(*auth.Claims); ok {
			return cl
		}
	}
	return nil
}

// RequestLogger tags each request with the caller's X-Request-ID, or a new
// one, and logs it once handled.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(common.RequestIDHeader, id)

		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			requestIDKey, id,
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
			logger.Error(c.Request.Context(), "request failed", args...)
			return
		}
		logger.Info(c.Request.Context(), "request", args...)
	}
}

// loginLimiter keeps one token bucket per client address. A bucket left
// alone for burst*every is full again, so it is dropped and recreated on
// the next attempt.
type loginLimiter struct {
	every rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	lastSweep time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newLoginLimiter(every time.Duration, burst int) *loginLimiter {
	l := &loginLimiter{every: rate.Inf, burst: burst, now: time.Now, limiters: make(map[string]*limiterEntry)}
	if every > 0 {
		l.every = rate.Every(every)
		l.idle = every * time.Duration(max(burst, 1))
	}
	return l
}

func (l *loginLimiter) allow(key string) bool {
	if l.every == rate.Inf {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked(now)

	e, ok := l.limiters[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.every, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

// sweepLocked evicts idle buckets, at most once per idle period.
func (l *loginLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) >= l.idle {
			delete(l.limiters, k)
		}
	}
	l.lastSweep = now
}

// middleware answers 429 once a client address runs out of login attempts.
func (l *loginLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many login attempts. Please try again later."})
			return
		}
		c.Next()
	}
}
