package approvalgroup

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
	l := zap.L().Named("approvalgroup.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approvalgroup.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("approval group request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) List(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "認証エラー", nil)
		return
	}

	resp, err := h.service.List(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Save(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "認証エラー", nil)
		return
	}

	var req SaveApprovalGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	if err := h.service.Save(c.Request.Context(), id, req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, nil, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "認証エラー", nil)
		return
	}

	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		appErr := apperror.InvalidField("id")
		response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, nil)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, groupID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, nil, nil)
}
