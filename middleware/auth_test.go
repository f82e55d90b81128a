// api/middleware/auth_test.go
package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/dev-mohitbeniwal/gatekeeper/api/authorizer"
	gk_errors "github.com/dev-mohitbeniwal/gatekeeper/api/errors"
	logger "github.com/dev-mohitbeniwal/gatekeeper/api/logging"
	"github.com/dev-mohitbeniwal/gatekeeper/api/middleware"
	"github.com/dev-mohitbeniwal/gatekeeper/api/model"
	gk_mock "github.com/dev-mohitbeniwal/gatekeeper/api/test/mock"
)

const adminGroup = "gatekeeper-admin"

// handlerProbe records whether the gated handler ever ran. A denied
// request must never reach a mutating handler.
type handlerProbe struct {
	invoked bool
}

func setupAuthRouter(probe *handlerProbe) *gin.Engine {
	verifier := gk_mock.NewStubTokenVerifier()
	verifier.Principals["admin-token"] = &model.Principal{
		ID:     "u-admin",
		Groups: []string{adminGroup},
	}
	verifier.Principals["alice-token"] = &model.Principal{ID: "u-alice"}
	verifier.Err["expired-token"] = gk_errors.ErrTokenExpired

	authz := authorizer.New(verifier, adminGroup, nil, 16, time.Minute)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.BearerAuth(authz))
	router.DELETE("/users/:id", func(c *gin.Context) {
		probe.invoked = true
		c.Status(http.StatusNoContent)
	})
	router.GET("/users/:id", func(c *gin.Context) {
		probe.invoked = true
		c.Status(http.StatusOK)
	})
	return router
}

func TestBearerAuth(t *testing.T) {
	logger.InitLogger(t.TempDir())
	defer logger.Sync()

	t.Run("MissingToken_Unauthorized", func(t *testing.T) {
		probe := &handlerProbe{}
		router := setupAuthRouter(probe)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/users/u-bob", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, probe.invoked)
	})

	t.Run("ExpiredToken_Unauthorized", func(t *testing.T) {
		probe := &handlerProbe{}
		router := setupAuthRouter(probe)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/users/u-bob", nil)
		req.Header.Set("Authorization", "expired-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, probe.invoked)
	})

	t.Run("NonAdmin_DeleteOtherRecord_Forbidden", func(t *testing.T) {
		probe := &handlerProbe{}
		router := setupAuthRouter(probe)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/users/u-bob", nil)
		req.Header.Set("Authorization", "alice-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, probe.invoked)
	})

	t.Run("NonAdmin_DeleteOwnRecord_Allowed", func(t *testing.T) {
		probe := &handlerProbe{}
		router := setupAuthRouter(probe)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/users/u-alice", nil)
		req.Header.Set("Authorization", "alice-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, probe.invoked)
	})

	t.Run("Admin_DeleteOtherRecord_Allowed", func(t *testing.T) {
		probe := &handlerProbe{}
		router := setupAuthRouter(probe)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/users/u-bob", nil)
		req.Header.Set("Authorization", "admin-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, probe.invoked)
	})

	t.Run("NonAdmin_ReadOtherRecord_Allowed", func(t *testing.T) {
		probe := &handlerProbe{}
		router := setupAuthRouter(probe)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/users/u-bob", nil)
		req.Header.Set("Authorization", "alice-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, probe.invoked)
	})
}
