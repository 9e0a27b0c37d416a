package middleware

import (
	"net/http"
	"sync"
	"time"

	"chefdispatch/config"
	"chefdispatch/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// clientLimiter pairs a limiter with its last use so idle entries can be
// evicted.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterRegistry struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

var registry = &limiterRegistry{clients: make(map[string]*clientLimiter)}

const limiterIdleEviction = 10 * time.Minute

func (r *limiterRegistry) forIP(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	perMin := config.AppConfig.MaxRequestsPerMin
	if perMin <= 0 {
		perMin = 120
	}

	cl, ok := r.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin)}
		r.clients[ip] = cl
	}
	cl.lastSeen = time.Now()
	r.evictStaleLocked()
	return cl.limiter
}

func (r *limiterRegistry) evictStaleLocked() {
	cutoff := time.Now().Add(-limiterIdleEviction)
	for ip, cl := range r.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(r.clients, ip)
		}
	}
}

// RateLimitMiddleware throttles scheduling traffic per client IP. The
// dispatch flow fans out into provider calls, so an unthrottled client can
// burn the provider quota for everyone.
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := clientIP(c)
		if !registry.forIP(ip).Allow() {
			utils.GetLogger().Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Try again shortly."})
			return
		}
		c.Next()
	}
}
