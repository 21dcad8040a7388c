package user

import (
	"github.com/k-obata-3/leave-connect-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	users.Use(middleware.RateLimitByUser(3, 10))
	{
		users.GET("/me", handler.GetMe)
		users.GET("", handler.List)
	}
}
