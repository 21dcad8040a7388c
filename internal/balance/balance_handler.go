package balance

import (
	"net/http"
	"strconv"

	"github.com/k-obata-3/leave-connect-api/internal/middleware"
	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
	"github.com/k-obata-3/leave-connect-api/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("balance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("balance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// GetMine returns the caller's own balance; admins can pass ?user_id to read
// someone else's.
func (h *Handler) GetMine(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "認証エラー", nil)
		return
	}

	userID := id.UserID
	if raw := c.Query("user_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "user_id is invalid", nil)
			return
		}
		userID = parsed
	}

	resp, err := h.service.GetByUser(c.Request.Context(), id, userID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
