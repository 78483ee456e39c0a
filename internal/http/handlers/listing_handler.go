package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easyhome-app/easyhome-backend/internal/dto"
	"github.com/easyhome-app/easyhome-backend/internal/http/handlers/common"
	"github.com/easyhome-app/easyhome-backend/internal/service"
)

// ListingHandler expone las publicaciones de servicios de los proveedores.
type ListingHandler struct {
	listings *service.ListingService
}

// NewListingHandler crea el handler.
func NewListingHandler(listings *service.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// Create maneja POST /listings. Solo un proveedor aprobado publica.
func (h *ListingHandler) Create(c *gin.Context) {
	providerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "title y category son obligatorios")
		return
	}

	listing, err := h.listings.Create(c.Request.Context(), service.CreateListingInput{
		ProviderID:  providerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// Get maneja GET /listings/:id. Es público.
func (h *ListingHandler) Get(c *gin.Context) {
	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	listing, err := h.listings.Get(c.Request.Context(), listingID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// ListByProvider maneja GET /providers/:id/listings. Es público.
func (h *ListingHandler) ListByProvider(c *gin.Context) {
	providerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	listings, err := h.listings.ListByProvider(c.Request.Context(), providerID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// Deactivate maneja DELETE /listings/:id. Solo el dueño la retira.
func (h *ListingHandler) Deactivate(c *gin.Context) {
	providerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	listingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.listings.Deactivate(c.Request.Context(), listingID, providerID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "publicación retirada", nil)
}
