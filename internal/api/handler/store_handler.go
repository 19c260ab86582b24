package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/cosmetic-storefront/internal/api/middleware"
	"github.com/cosmetic-storefront/internal/api/service"
	"github.com/cosmetic-storefront/internal/domain/account"
	"github.com/cosmetic-storefront/internal/domain/catalog"
	"github.com/cosmetic-storefront/internal/domain/purchase"
	"github.com/cosmetic-storefront/internal/settlement"
)

// StoreHandler handles HTTP requests for purchase and return settlement
type StoreHandler struct {
	storeService service.StoreService
	logger       *slog.Logger
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(logger *slog.Logger, storeService service.StoreService) *StoreHandler {
	return &StoreHandler{
		storeService: storeService,
		logger:       logger,
	}
}

// Purchase settles a purchase for the authenticated user
func (h *StoreHandler) Purchase(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	receipt, err := h.storeService.Purchase(c.Request.Context(), userID, req.CosmeticID, correlationID)
	if err != nil {
		h.respondSettlementError(c, err)
		return
	}

	RespondCreated(c, receipt)
}

// Return settles a return for the authenticated user
func (h *StoreHandler) Return(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	receipt, err := h.storeService.Return(c.Request.Context(), userID, req.CosmeticID, correlationID)
	if err != nil {
		h.respondSettlementError(c, err)
		return
	}

	RespondOK(c, receipt)
}

// respondSettlementError maps settlement failures onto HTTP statuses
func (h *StoreHandler) respondSettlementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrCosmeticNotFound{}):
		RespondNotFound(c, "Cosmetic not found")
	case errors.Is(err, purchase.ErrAlreadyOwned{}):
		RespondConflict(c, "ALREADY_OWNED", "Cosmetic is already owned")
	case errors.Is(err, purchase.ErrNotOwned{}):
		RespondNotFound(c, "Cosmetic is not owned")
	case errors.Is(err, account.ErrInsufficientCredits):
		RespondPaymentRequired(c, "Not enough credits for this purchase")
	case errors.Is(err, settlement.ErrTransactionConflict):
		RespondConflict(c, "TRANSACTION_CONFLICT", "Conflicting settlement in progress, retry the request")
	case errors.Is(err, settlement.ErrStoreUnavailable):
		RespondServiceUnavailable(c, "")
	default:
		h.logger.Error("Unmapped settlement error", "error", err)
		RespondInternalError(c)
	}
}
