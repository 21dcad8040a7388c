package middleware

import (
	"github.com/k-obata-3/leave-connect-api/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates the caller's request id, generating one when missing,
// and threads it into the request context for the loggers downstream.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.New().String()
		}

		ctx := contextutil.WithRequestID(c.Request.Context(), rid)
		c.Request = c.Request.WithContext(ctx)

		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}
