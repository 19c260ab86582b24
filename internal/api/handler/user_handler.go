package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cosmetic-storefront/internal/api/middleware"
	"github.com/cosmetic-storefront/internal/api/service"
	"github.com/cosmetic-storefront/internal/domain/account"
)

// UserHandler handles HTTP requests for profile, inventory, and history
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(logger *slog.Logger, userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Me retrieves the authenticated user's account and balance
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	acc, err := h.userService.GetAccount(c.Request.Context(), userID)
	if err != nil {
		var accNotFound account.ErrAccountNotFound
		if errors.As(err, &accNotFound) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// Directory retrieves a page of the public account directory
func (h *UserHandler) Directory(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	accounts, total, err := h.userService.ListAccounts(c.Request.Context(), pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list accounts", "error", err)
		RespondInternalError(c)
		return
	}

	entries := make([]DirectoryEntryResponse, 0, len(accounts))
	for _, acc := range accounts {
		entries = append(entries, mapAccountToDirectoryEntry(acc))
	}
	RespondWithPaginatedData(c, 200, entries, pagination.Page, pagination.PerPage, int(total))
}

// Transactions retrieves a page of the authenticated user's transaction log
func (h *UserHandler) Transactions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, total, err := h.userService.GetTransactions(c.Request.Context(), userID, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list transactions", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, 200, entries, pagination.Page, pagination.PerPage, int(total))
}

// Owned retrieves the authenticated user's currently owned cosmetics
func (h *UserHandler) Owned(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}
	h.respondOwned(c, userID)
}

// OwnedByUser retrieves any user's owned cosmetics for public profile display
func (h *UserHandler) OwnedByUser(c *gin.Context) {
	idParam := c.Param("id")
	userID, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid user ID")
		return
	}
	h.respondOwned(c, userID)
}

// History retrieves the authenticated user's full purchase history
func (h *UserHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	history, err := h.userService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list purchase history", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, history)
}

func (h *UserHandler) respondOwned(c *gin.Context, userID uuid.UUID) {
	owned, err := h.userService.GetOwned(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list owned cosmetics", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}
	RespondOK(c, owned)
}
