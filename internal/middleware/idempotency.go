package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const idempotencyLockTTL = 30 * time.Second

// Idempotency guards the mutating workflow endpoints against double submits.
// A repeated Idempotency-Key while the first request is still in flight is
// answered with 409 instead of racing a second transaction.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		id, ok := CurrentIdentity(c)
		if !ok {
			c.Next()
			return
		}

		lockKey := fmt.Sprintf("idemp:%s:%d:%d:%s", c.FullPath(), id.CompanyID, id.UserID, idempKey)

		// Short expiry so a crashed request releases the lock by itself.
		isNew, _ := rdb.SetNX(c.Request.Context(), lockKey, "locked", idempotencyLockTTL).Result()
		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "PROCESSING",
				"message": "同じリクエストを処理中です。しばらく待ってから再試行してください。",
			})
			return
		}

		c.Next()
	}
}
