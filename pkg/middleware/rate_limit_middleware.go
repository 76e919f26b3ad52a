package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware applies a per-client token bucket, keyed by client IP.
// Used on the LLM-backed generation endpoints, which are slow and paid-for.
func RateLimitMiddleware(r rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
		lastSeen = make(map[string]time.Time)
	)

	// Drop limiters for clients idle longer than an hour.
	go func() {
		for range time.Tick(10 * time.Minute) {
			mu.Lock()
			for ip, seen := range lastSeen {
				if time.Since(seen) > time.Hour {
					delete(limiters, ip)
					delete(lastSeen, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		mu.Lock()
		lim, ok := limiters[ip]
		if !ok {
			lim = rate.NewLimiter(r, burst)
			limiters[ip] = lim
		}
		lastSeen[ip] = time.Now()
		mu.Unlock()

		if !lim.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many generation requests, slow down"})
			c.Abort()
			return
		}
		c.Next()
	}
}
