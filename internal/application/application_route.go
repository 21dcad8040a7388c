package application

import (
	"github.com/k-obata-3/leave-connect-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	applications := r.Group("/applications")
	applications.Use(middleware.AuthMiddleware())
	applications.Use(middleware.RateLimitByUser(3, 10))
	{
		applications.GET("", handler.List)
		applications.GET("/month", handler.ListByMonth)
		applications.GET("/:id", handler.GetDetail)
		applications.POST("", middleware.Idempotency(rdb), handler.Submit)
		applications.POST("/cancel", middleware.Idempotency(rdb), handler.Cancel)
		applications.DELETE("/:id", handler.Delete)
	}
}
