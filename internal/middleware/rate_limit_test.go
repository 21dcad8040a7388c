package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/k-obata-3/leave-connect-api/internal/identity"
	"github.com/k-obata-3/leave-connect-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// newRateLimitRouter resolves the caller from the X-Test-User header so a
// single limiter instance serves multiple identities.
func newRateLimitRouter(burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		userID, _ := strconv.ParseInt(c.GetHeader("X-Test-User"), 10, 64)
		middleware.SetIdentity(c, identity.Identity{UserID: userID, CompanyID: 1})
		c.Next()
	})
	router.Use(middleware.RateLimitByUser(1, burst))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func ping(router *gin.Engine, userID string) int {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Test-User", userID)
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitByUser(t *testing.T) {
	t.Run("requests over the burst are rejected", func(t *testing.T) {
		router := newRateLimitRouter(2)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			codes = append(codes, ping(router, "10"))
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("callers are limited independently", func(t *testing.T) {
		router := newRateLimitRouter(1)

		assert.Equal(t, http.StatusOK, ping(router, "10"))
		assert.Equal(t, http.StatusTooManyRequests, ping(router, "10"))
		assert.Equal(t, http.StatusOK, ping(router, "11"))
	})
}
