package middleware

import (
	"net/http"
	"strconv"

	"github.com/k-obata-3/leave-connect-api/internal/domain"

	"github.com/gin-gonic/gin"
)

// RBACService is a local interface so this package does not depend on the
// rbac package implementation.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

// RBACAuthorize gates a route on the caller holding resource/action in the
// company's policy. Administrators pass unconditionally.
func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			c.Abort()
			return
		}

		if id.IsAdmin {
			c.Next()
			return
		}

		req := domain.EnforceRequest{
			UserID:    strconv.FormatInt(id.UserID, 10),
			CompanyID: strconv.FormatInt(id.CompanyID, 10),
			Resource:  resource,
			Action:    action,
		}

		allowed, err := service.Enforce(req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			c.Abort()
			return
		}

		c.Next()
	}
}
