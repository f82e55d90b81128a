// api/controller/user_controller_test.go
package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/gatekeeper/api/controller"
	gk_errors "github.com/dev-mohitbeniwal/gatekeeper/api/errors"
	logger "github.com/dev-mohitbeniwal/gatekeeper/api/logging"
	"github.com/dev-mohitbeniwal/gatekeeper/api/model"
	gk_mock "github.com/dev-mohitbeniwal/gatekeeper/api/test/mock"
)

// setupRouter builds a test router with an authenticated admin principal
// already attached, standing in for the auth middleware.
func setupRouter(userService *gk_mock.MockUserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("principal", &model.Principal{ID: "u-admin", Username: "admin"})
		c.Set("requestingUserID", "u-admin")
		c.Next()
	})

	userController := controller.NewUserController(userService)
	api := router.Group("/api/v1")
	userController.RegisterRoutes(api)
	return router
}

func TestUserController(t *testing.T) {
	logger.InitLogger(t.TempDir())
	defer logger.Sync()

	t.Run("CreateUser_Success", func(t *testing.T) {
		mockUserService := new(gk_mock.MockUserService)
		mockUserService.On("CreateUser", mock.Anything, mock.Anything, "u-admin").
			Return(&model.User{UserID: "u1", Attributes: map[string]string{"team": "platform"}}, nil)
		router := setupRouter(mockUserService)

		body := strings.NewReader(`{"userid":"u1","attributes":{"team":"platform"}}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/users", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var created model.User
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "u1", created.UserID)
		mockUserService.AssertExpectations(t)
	})

	t.Run("CreateUser_Conflict", func(t *testing.T) {
		mockUserService := new(gk_mock.MockUserService)
		mockUserService.On("CreateUser", mock.Anything, mock.Anything, "u-admin").
			Return(nil, gk_errors.ErrUserConflict)
		router := setupRouter(mockUserService)

		body := strings.NewReader(`{"userid":"u1"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/users", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("CreateUser_InvalidBody", func(t *testing.T) {
		mockUserService := new(gk_mock.MockUserService)
		router := setupRouter(mockUserService)

		body := strings.NewReader(`{"userid": 42}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/users", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUserService.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("GetUser_Success", func(t *testing.T) {
		mockUserService := new(gk_mock.MockUserService)
		mockUserService.On("GetUser", mock.Anything, "u1").
			Return(&model.User{UserID: "u1", Attributes: map[string]string{"team": "platform"}}, nil)
		router := setupRouter(mockUserService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/users/u1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GetUser_NotFound", func(t *testing.T) {
		mockUserService := new(gk_mock.MockUserService)
		mockUserService.On("GetUser", mock.Anything, "ghost").
			Return(nil, gk_errors.ErrUserNotFound)
		router := setupRouter(mockUserService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/users/ghost", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("UpdateUser_Success", func(t *testing.T) {
		mockUserService := new(gk_mock.MockUserService)
		mockUserService.On("UpdateUser", mock.Anything, mock.Anything, "u-admin").
			Return(&model.User{UserID: "u1", Attributes: map[string]string{"team": "infra"}}, nil)
		router := setupRouter(mockUserService)

		body := strings.NewReader(`{"attributes":{"team":"infra"}}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v1/users/u1", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("UpdateUser_NotFound", func(t *testing.T) {
		mockUserService := new(gk_mock.MockUserService)
		mockUserService.On("UpdateUser", mock.Anything, mock.Anything, "u-admin").
			Return(nil, gk_errors.ErrUserNotFound)
		router := setupRouter(mockUserService)

		body := strings.NewReader(`{"attributes":{"team":"infra"}}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v1/users/ghost", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DeleteUser_Success", func(t *testing.T) {
		mockUserService := new(gk_mock.MockUserService)
		mockUserService.On("DeleteUser", mock.Anything, "u1", "u-admin").
			Return(nil)
		router := setupRouter(mockUserService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/v1/users/u1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("DeleteUser_NotFound", func(t *testing.T) {
		mockUserService := new(gk_mock.MockUserService)
		mockUserService.On("DeleteUser", mock.Anything, "ghost", "u-admin").
			Return(gk_errors.ErrUserNotFound)
		router := setupRouter(mockUserService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/v1/users/ghost", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ListUsers_Success", func(t *testing.T) {
		mockUserService := new(gk_mock.MockUserService)
		mockUserService.On("ListUsers", mock.Anything, 10, 0).
			Return([]*model.User{{UserID: "u1"}, {UserID: "u2"}}, nil)
		router := setupRouter(mockUserService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/users", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ListUsers_BadPagination", func(t *testing.T) {
		mockUserService := new(gk_mock.MockUserService)
		router := setupRouter(mockUserService)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/users?limit=abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("CreateUser_MissingPrincipal_Unauthorized", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		mockUserService := new(gk_mock.MockUserService)
		router := gin.New()
		userController := controller.NewUserController(mockUserService)
		userController.RegisterRoutes(router.Group("/api/v1"))

		body := strings.NewReader(`{"userid":"u1"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/users", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
