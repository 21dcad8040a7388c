package approval

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
	l := zap.L().Named("approval.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("approval request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Decide(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "認証エラー", nil)
		return
	}

	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	if err := h.service.Decide(c.Request.Context(), id, req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, nil, nil)
}

func (h *Handler) ListTasks(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "認証エラー", nil)
		return
	}

	q := ListTasksQuery{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 20),
	}
	if raw := c.Query("searchAction"); raw != "" {
		if action, err := strconv.Atoi(raw); err == nil {
			q.Action = &action
		}
	}
	if raw := c.Query("searchUserId"); raw != "" {
		if userID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			q.ApplicantUserID = &userID
		}
	}

	items, total, err := h.service.ListTasks(c.Request.Context(), id, q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, q.Page, q.Limit)
	response.Success(c, http.StatusOK, items, &meta)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
