package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/cosmetic-storefront/internal/api/middleware"
	"github.com/cosmetic-storefront/internal/api/service"
	"github.com/cosmetic-storefront/internal/domain/account"
)

// AuthHandler handles HTTP requests for registration and login
type AuthHandler struct {
	authService service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *slog.Logger, authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles account creation, returning 409 when the email is taken
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, token, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var duplicateEmailErr account.ErrDuplicateEmail
		if errors.As(err, &duplicateEmailErr) {
			h.logger.Warn("Attempt to register with taken email", "email", duplicateEmailErr.Email)
			RespondConflict(c, "EMAIL_IN_USE", "An account with this email already exists")
			return
		}
		h.logger.Error("Failed to register account", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, AuthResponse{Token: token, Account: mapAccountToResponse(acc)})
}

// Login handles credential verification and token issuance
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			RespondUnauthorized(c, "Invalid email or password")
			return
		}
		h.logger.Error("Failed to process login", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, AuthResponse{Token: token, Account: mapAccountToResponse(acc)})
}

// ChangePassword handles a password change for the authenticated user
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			RespondUnauthorized(c, "Current password is incorrect")
			return
		}
		var accNotFound account.ErrAccountNotFound
		if errors.As(err, &accNotFound) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to change password", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}
