package approval

import (
	"github.com/k-obata-3/leave-connect-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	approvals := r.Group("/approvals")
	approvals.Use(middleware.AuthMiddleware())
	approvals.Use(middleware.RateLimitByUser(3, 10))
	{
		approvals.GET("/tasks", handler.ListTasks)
		approvals.POST("", middleware.Idempotency(rdb), handler.Decide)
	}
}
