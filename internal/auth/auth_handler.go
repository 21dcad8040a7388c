package auth

import (
	"net/http"

	"github.com/k-obata-3/leave-connect-api/internal/shared/apperror"
	"github.com/k-obata-3/leave-connect-api/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// cookieMaxAge matches the token TTL.
const cookieMaxAge = int(tokenTTL / 1e9)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("login rejected", zap.Int("status", httpErr.Status))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	// Browser clients authenticate with the cookie, API clients with the
	// token from the body.
	c.SetCookie("jwt_token", resp.Token, cookieMaxAge, "/", "", false, true)
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie("jwt_token", "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, nil, nil)
}
