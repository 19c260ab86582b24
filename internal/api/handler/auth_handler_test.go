package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cosmetic-storefront/internal/api/middleware"
	"github.com/cosmetic-storefront/internal/api/service"
	"github.com/cosmetic-storefront/internal/domain/account"
)

func authTestRouter(authService *MockAuthService, userID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewAuthHandler(newTestLogger(), authService)

	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)
	router.POST("/password", func(c *gin.Context) {
		if userID != nil {
			c.Set(middleware.UserIDKey, *userID)
		}
		handler.ChangePassword(c)
	})
	return router
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("creates account and returns token", func(t *testing.T) {
		acc := &account.Account{ID: uuid.New(), Email: "user@example.com", Balance: 10000}

		authService := new(MockAuthService)
		authService.On("Register", mock.Anything, "user@example.com", "password123").
			Return(acc, "signed.token", nil)

		router := authTestRouter(authService, nil)
		rr := postJSON(router, "/register", RegisterRequest{Email: "user@example.com", Password: "password123"})

		assert.Equal(t, http.StatusCreated, rr.Code)

		var response Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		data, err := json.Marshal(response.Data)
		require.NoError(t, err)

		var auth AuthResponse
		require.NoError(t, json.Unmarshal(data, &auth))
		assert.Equal(t, "signed.token", auth.Token)
		assert.Equal(t, acc.ID.String(), auth.Account.ID)
		assert.Equal(t, int64(10000), auth.Account.Balance)
	})

	t.Run("taken email returns 409", func(t *testing.T) {
		authService := new(MockAuthService)
		authService.On("Register", mock.Anything, "user@example.com", "password123").
			Return(nil, "", account.ErrDuplicateEmail{Email: "user@example.com"})

		router := authTestRouter(authService, nil)
		rr := postJSON(router, "/register", RegisterRequest{Email: "user@example.com", Password: "password123"})

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "EMAIL_IN_USE")
	})

	t.Run("invalid email rejected before service", func(t *testing.T) {
		authService := new(MockAuthService)
		router := authTestRouter(authService, nil)
		rr := postJSON(router, "/register", RegisterRequest{Email: "not-an-email", Password: "password123"})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		authService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("short password rejected", func(t *testing.T) {
		router := authTestRouter(new(MockAuthService), nil)
		rr := postJSON(router, "/register", RegisterRequest{Email: "user@example.com", Password: "five5"})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("six character password accepted", func(t *testing.T) {
		acc := &account.Account{ID: uuid.New(), Email: "user@example.com", Balance: 10000}
		authService := new(MockAuthService)
		authService.On("Register", mock.Anything, "user@example.com", "secret").
			Return(acc, "signed.token", nil)

		router := authTestRouter(authService, nil)
		rr := postJSON(router, "/register", RegisterRequest{Email: "user@example.com", Password: "secret"})

		assert.Equal(t, http.StatusCreated, rr.Code)
		authService.AssertExpectations(t)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("valid credentials return token", func(t *testing.T) {
		acc := &account.Account{ID: uuid.New(), Email: "user@example.com", Balance: 8800}

		authService := new(MockAuthService)
		authService.On("Login", mock.Anything, "user@example.com", "password123").
			Return(acc, "signed.token", nil)

		router := authTestRouter(authService, nil)
		rr := postJSON(router, "/login", LoginRequest{Email: "user@example.com", Password: "password123"})

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "signed.token")
	})

	t.Run("invalid credentials return 401", func(t *testing.T) {
		authService := new(MockAuthService)
		authService.On("Login", mock.Anything, "user@example.com", "wrong").
			Return(nil, "", service.ErrInvalidCredentials)

		router := authTestRouter(authService, nil)
		rr := postJSON(router, "/login", LoginRequest{Email: "user@example.com", Password: "wrong"})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	userID := uuid.New()

	t.Run("successful change returns 204", func(t *testing.T) {
		authService := new(MockAuthService)
		authService.On("ChangePassword", mock.Anything, userID, "oldpassword", "newpassword").Return(nil)

		router := authTestRouter(authService, &userID)
		rr := postJSON(router, "/password", ChangePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "newpassword"})

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("wrong current password returns 401", func(t *testing.T) {
		authService := new(MockAuthService)
		authService.On("ChangePassword", mock.Anything, userID, "wrong", "newpassword").
			Return(service.ErrInvalidCredentials)

		router := authTestRouter(authService, &userID)
		rr := postJSON(router, "/password", ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newpassword"})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("anonymous request returns 401", func(t *testing.T) {
		router := authTestRouter(new(MockAuthService), nil)
		rr := postJSON(router, "/password", ChangePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "newpassword"})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
