package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/easyhome-app/easyhome-backend/internal/dto"
	"github.com/easyhome-app/easyhome-backend/internal/http/handlers/common"
	"github.com/easyhome-app/easyhome-backend/internal/service"
)

// EngagementHandler expone el ciclo de vida de los servicios contratados.
type EngagementHandler struct {
	engagements *service.EngagementService
}

// NewEngagementHandler crea el handler.
func NewEngagementHandler(engagements *service.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagements: engagements}
}

// Contact maneja POST /engagements. Registra el contacto inicial del
// cliente con un proveedor.
func (h *EngagementHandler) Contact(c *gin.Context) {
	clientID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "provider_id es obligatorio")
		return
	}

	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		common.RespondBadRequest(c, "provider_id inválido")
		return
	}

	var listingID *uuid.UUID
	if req.ListingID != nil && *req.ListingID != "" {
		parsed, err := uuid.Parse(*req.ListingID)
		if err != nil {
			common.RespondBadRequest(c, "listing_id inválido")
			return
		}
		listingID = &parsed
	}

	engagement, err := h.engagements.Contact(c.Request.Context(), service.ContactInput{
		ClientID:   clientID,
		ProviderID: providerID,
		ListingID:  listingID,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, engagement)
}

// RecordHireOutcome maneja POST /engagements/:id/hire-outcome. El cliente
// registra si la contratación se concretó o no.
func (h *EngagementHandler) RecordHireOutcome(c *gin.Context) {
	clientID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	engagementID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.HireOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "hired es obligatorio")
		return
	}

	engagement, err := h.engagements.RecordHireOutcome(c.Request.Context(), engagementID, clientID, *req.Hired)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, engagement)
}

// StartWork maneja POST /engagements/:id/start. Solo el proveedor pasa
// el servicio a en proceso.
func (h *EngagementHandler) StartWork(c *gin.Context) {
	providerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	engagementID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	engagement, err := h.engagements.StartWork(c.Request.Context(), engagementID, providerID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, engagement)
}

// Finalize maneja POST /engagements/:id/finalize. Solo el proveedor
// marca el trabajo como finalizado.
func (h *EngagementHandler) Finalize(c *gin.Context) {
	providerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	engagementID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	engagement, err := h.engagements.Finalize(c.Request.Context(), engagementID, providerID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, engagement)
}

// Cancel maneja POST /engagements/:id/cancel. Cualquiera de las dos
// partes puede cancelar mientras el servicio no sea terminal.
func (h *EngagementHandler) Cancel(c *gin.Context) {
	actorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	engagementID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	engagement, err := h.engagements.Cancel(c.Request.Context(), engagementID, actorID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, engagement)
}

// ConfirmFinalized maneja POST /engagements/:id/confirm. El cliente
// confirma que el trabajo finalizado quedó conforme.
func (h *EngagementHandler) ConfirmFinalized(c *gin.Context) {
	clientID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	engagementID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	engagement, err := h.engagements.ConfirmFinalizedByClient(c.Request.Context(), engagementID, clientID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, engagement)
}

// Get maneja GET /engagements/:id. Solo las partes del servicio lo ven.
func (h *EngagementHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	engagementID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	engagement, err := h.engagements.Get(c.Request.Context(), engagementID, userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, engagement)
}

// ListActive maneja GET /engagements/active. Trabajos confirmados o en
// proceso del proveedor autenticado.
func (h *EngagementHandler) ListActive(c *gin.Context) {
	providerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	views, err := h.engagements.ListActiveByProvider(c.Request.Context(), providerID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"engagements": views})
}

// ListHistory maneja GET /engagements/history. Trabajos finalizados del
// proveedor autenticado.
func (h *EngagementHandler) ListHistory(c *gin.Context) {
	providerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	views, err := h.engagements.ListFinalizedByProvider(c.Request.Context(), providerID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"engagements": views})
}

// ListMine maneja GET /engagements/my. Todos los servicios del cliente
// autenticado, en cualquier estado.
func (h *EngagementHandler) ListMine(c *gin.Context) {
	clientID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	views, err := h.engagements.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"engagements": views})
}
