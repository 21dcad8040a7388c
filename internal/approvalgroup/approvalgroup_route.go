package approvalgroup

import (
	"github.com/k-obata-3/leave-connect-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbac middleware.RBACService) {
	groups := r.Group("/approval-groups")
	groups.Use(middleware.AuthMiddleware())
	{
		groups.GET("", handler.List)
		groups.POST("", middleware.RBACAuthorize(rbac, "approval-groups", "write"), handler.Save)
		groups.DELETE("/:id", middleware.RBACAuthorize(rbac, "approval-groups", "write"), handler.Delete)
	}
}
