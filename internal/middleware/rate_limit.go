package middleware

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type keyedLimiter struct {
	limiters map[string]*rate.Limiter
	mu       *sync.RWMutex
	r        rate.Limit
	b        int
}

func newKeyedLimiter(r rate.Limit, b int) *keyedLimiter {
	return &keyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		mu:       &sync.RWMutex{},
		r:        r,
		b:        b,
	}
}

func (k *keyedLimiter) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	limiter, exists := k.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(k.r, k.b)
		k.limiters[key] = limiter
	}

	return limiter
}

// RateLimitByIP caps anonymous traffic (login attempts in particular) per
// client address.
func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := newKeyedLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests from this IP"})
			return
		}
		c.Next()
	}
}

// RateLimitByUser caps authenticated traffic per caller.
func RateLimitByUser(r rate.Limit, b int) gin.HandlerFunc {
	limiter := newKeyedLimiter(r, b)
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.Next()
			return
		}
		if !limiter.get(formatUserKey(id.CompanyID, id.UserID)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests from this user"})
			return
		}
		c.Next()
	}
}

func formatUserKey(companyID, userID int64) string {
	return fmt.Sprintf("%d:%d", companyID, userID)
}
