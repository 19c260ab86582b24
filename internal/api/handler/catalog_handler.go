package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cosmetic-storefront/internal/api/middleware"
	"github.com/cosmetic-storefront/internal/api/service"
	"github.com/cosmetic-storefront/internal/domain/catalog"
)

// CatalogHandler handles HTTP requests for catalog browsing and sync control
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(logger *slog.Logger, catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// List retrieves a filtered, paginated catalog page
func (h *CatalogHandler) List(c *gin.Context) {
	var filterParams CatalogFilterParams
	if err := c.ShouldBindQuery(&filterParams); err != nil {
		RespondBadRequest(c, "Invalid filter parameters: "+err.Error())
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	cosmetics, total, err := h.catalogService.ListCosmetics(c.Request.Context(), filterParams.toFilter(), pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list cosmetics", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]CosmeticResponse, 0, len(cosmetics))
	for _, cosmetic := range cosmetics {
		responses = append(responses, mapCosmeticToResponse(cosmetic))
	}

	RespondWithPaginatedData(c, 200, responses, pagination.Page, pagination.PerPage, int(total))
}

// GetByID retrieves one cosmetic, with an ownership flag when authenticated
func (h *CatalogHandler) GetByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		RespondBadRequest(c, "Missing cosmetic ID")
		return
	}

	userID, _ := middleware.GetUserID(c)

	cosmetic, owned, err := h.catalogService.GetCosmetic(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, catalog.ErrCosmeticNotFound{}) {
			RespondNotFound(c, "Cosmetic not found")
			return
		}
		h.logger.Error("Failed to get cosmetic", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	response := mapCosmeticToResponse(cosmetic)
	if userID != uuid.Nil {
		response.Owned = &owned
	}
	RespondOK(c, response)
}

// SyncStatus reports the most recent catalog sync run
func (h *CatalogHandler) SyncStatus(c *gin.Context) {
	record, err := h.catalogService.LastSync(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to read sync log", "error", err)
		RespondInternalError(c)
		return
	}
	if record == nil {
		RespondNotFound(c, "No sync has run yet")
		return
	}
	RespondOK(c, record)
}

// TriggerSync runs a catalog sync immediately and returns its outcome
func (h *CatalogHandler) TriggerSync(c *gin.Context) {
	record, err := h.catalogService.TriggerSync(c.Request.Context())
	if err != nil {
		h.logger.Error("Manual catalog sync failed", "error", err)
		RespondServiceUnavailable(c, "Catalog sync failed")
		return
	}
	RespondOK(c, record)
}
