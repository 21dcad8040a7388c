package balance

import (
	"github.com/k-obata-3/leave-connect-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware())
	balances.Use(middleware.RateLimitByUser(3, 10))
	{
		balances.GET("/me", handler.GetMine)
	}
}
