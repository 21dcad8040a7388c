package application

import (
	"net/http"
	"strconv"
	"time"

	applicationerrors "github.com/k-obata-3/leave-connect-api/internal/application/errors"
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
	l := zap.L().Named("application.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("application.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("application request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Submit(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "認証エラー", nil)
		return
	}

	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "認証エラー", nil)
		return
	}

	var req CancelApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id, req); err != nil {
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

	applicationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.writeServiceError(c, applicationerrors.ErrApplicationNotFound)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, applicationID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, nil, nil)
}

func (h *Handler) GetDetail(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "認証エラー", nil)
		return
	}

	applicationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.writeServiceError(c, applicationerrors.ErrApplicationNotFound)
		return
	}

	resp, err := h.service.GetDetail(c.Request.Context(), id, applicationID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "認証エラー", nil)
		return
	}

	q := ListApplicationsQuery{
		AdminView: c.Query("isAdmin") == "true",
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 20),
	}
	if raw := c.Query("userId"); raw != "" {
		if userID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			q.UserID = &userID
		}
	}
	if raw := c.Query("searchAction"); raw != "" {
		if action, err := strconv.Atoi(raw); err == nil {
			q.Action = &action
		}
	}
	if raw := c.Query("searchYear"); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil {
			q.Year = &year
		}
	}

	items, total, err := h.service.List(c.Request.Context(), id, q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, q.Page, q.Limit)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) ListByMonth(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "認証エラー", nil)
		return
	}

	start, errStart := time.ParseInLocation("2006-01-02", c.Query("start"), time.UTC)
	end, errEnd := time.ParseInLocation("2006-01-02", c.Query("end"), time.UTC)
	if errStart != nil || errEnd != nil {
		h.writeServiceError(c, applicationerrors.ErrInvalidDateTime)
		return
	}
	end = end.Add(24*time.Hour - time.Second)

	items, err := h.service.ListByMonth(c.Request.Context(), id, start, end)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, items, nil)
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
