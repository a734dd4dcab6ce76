package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-leave/internal/auth"
	authMock "go-leave/internal/auth/mock"
	employeeerrors "go-leave/internal/employee/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setupAuthRouter(handler *auth.Handler, employeeID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	identity := func(c *gin.Context) {
		c.Set("employee_id", employeeID)
		c.Next()
	}
	r.GET("/me", identity, handler.Me)
	r.POST("/refresh", identity, handler.RefreshToken)
	return r
}

func TestHandler_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := authMock.NewMockService(ctrl)
	router := setupAuthRouter(auth.NewHandler(mockService), "emp-1")

	t.Run("success", func(t *testing.T) {
		mockService.EXPECT().
			GetMe(gomock.Any(), "emp-1").
			Return(auth.AuthResponse{EmployeeID: "emp-1", Email: "jane@example.com"}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var res map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "jane@example.com", res["data"].(map[string]interface{})["email"])
	})

	t.Run("employee gone", func(t *testing.T) {
		mockService.EXPECT().
			GetMe(gomock.Any(), "emp-1").
			Return(auth.AuthResponse{}, employeeerrors.ErrEmployeeNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_RefreshToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := authMock.NewMockService(ctrl)
	router := setupAuthRouter(auth.NewHandler(mockService), "emp-1")

	mockService.EXPECT().
		IssueToken(gomock.Any(), "emp-1").
		Return(auth.TokenResponse{AccessToken: "new-token", TokenType: "Bearer"}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/refresh", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "new-token")
}
