package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/gymratapp/gymrat-server/config"
	"github.com/gymratapp/gymrat-server/utils"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	limiterMu sync.Mutex
	limiters  = make(map[string]*ipLimiter)
)

// RateLimitMiddleware throttles each client IP to the configured
// requests per minute. Idle entries are dropped after five minutes so
// the map does not grow without bound.
func RateLimitMiddleware() gin.HandlerFunc {
	perMinute := config.Get().RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}

	go cleanupLimiters()

	return func(ctx *gin.Context) {
		ip := ctx.ClientIP()

		limiterMu.Lock()
		entry, ok := limiters[ip]
		if !ok {
			entry = &ipLimiter{
				limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
			}
			limiters[ip] = entry
		}
		entry.lastSeen = time.Now()
		limiterMu.Unlock()

		if !entry.limiter.Allow() {
			utils.Respond(ctx, http.StatusTooManyRequests, 42900, "too many requests", nil)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func cleanupLimiters() {
	for range time.Tick(time.Minute) {
		limiterMu.Lock()
		for ip, entry := range limiters {
			if time.Since(entry.lastSeen) > 5*time.Minute {
				delete(limiters, ip)
			}
		}
		limiterMu.Unlock()
	}
}
