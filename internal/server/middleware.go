package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sadopc/planner/internal/auth"
	"golang.org/x/time/rate"
)

const (
	ctxUserID = "user_id"
	ctxToken  = "access_token"
)

// visitorIdle is how long a client IP may stay quiet before its bucket is
// dropped.
const visitorIdle = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitors holds one token bucket per client IP. Idle entries are swept on
// access, at most once per idle period.
type visitors struct {
	mu        sync.Mutex
	r         rate.Limit
	b         int
	idle      time.Duration
	now       func() time.Time
	seen      map[string]*visitor
	lastSweep time.Time
}

func newVisitors(r rate.Limit, b int, idle time.Duration, now func() time.Time) *visitors {
	return &visitors{r: r, b: b, idle: idle, now: now, seen: make(map[string]*visitor), lastSweep: now()}
}

func (v *visitors) get(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()
	now := v.now()
	if now.Sub(v.lastSweep) >= v.idle {
		v.sweep(now)
	}
	vis, ok := v.seen[ip]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(v.r, v.b)}
		v.seen[ip] = vis
	}
	vis.lastSeen = now
	return vis.limiter
}

func (v *visitors) sweep(now time.Time) {
	for ip, vis := range v.seen {
		if now.Sub(vis.lastSeen) > v.idle {
			delete(v.seen, ip)
		}
	}
	v.lastSweep = now
}

func (v *visitors) len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}

// RateLimiter keeps one token bucket per client IP.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	return rateLimit(newVisitors(r, b, visitorIdle, time.Now))
}

func rateLimit(v *visitors) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !v.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// RequireUser resolves the bearer token and stores the caller's user id on
// the context. Every data route reads its scope from there.
func RequireUser(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		user, err := svc.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(ctxUserID, user.ID)
		c.Set(ctxToken, token)
		c.Set("email", user.Email)
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func userID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}
