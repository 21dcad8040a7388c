package auth

import (
	"time"

	"github.com/k-obata-3/leave-connect-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	// Tight limit on login keeps credential stuffing slow.
	r.POST("/login", middleware.RateLimitByIP(rate.Every(time.Second), 5), handler.Login)
	r.POST("/logout", handler.Logout)
}
