package middleware

import (
	"net/http"
	"sync"

	"github.com/GoAMM/hookgate/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware throttles the admin surface per caller principal.
// Must run after CallerMiddleware.
func RateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[common.Address]*rate.Limiter)
	)

	qps := rate.Limit(cfg.Auth.AdminQPS)
	if qps <= 0 {
		qps = rate.Inf
	}
	burst := cfg.Auth.AdminBurst
	if burst <= 0 {
		burst = 20
	}

	return func(c *gin.Context) {
		caller, ok := Caller(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing caller"})
			c.Abort()
			return
		}

		mu.Lock()
		limiter, exists := limiters[caller]
		if !exists {
			limiter = rate.NewLimiter(qps, burst)
			limiters[caller] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": "1s",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
