package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/easyhome-app/easyhome-backend/internal/dto"
	"github.com/easyhome-app/easyhome-backend/internal/http/handlers/common"
	"github.com/easyhome-app/easyhome-backend/internal/service"
)

// maxWebhookBody limita el cuerpo de los webhooks de la pasarela de pago.
const maxWebhookBody = 1 << 20

// SubscriptionHandler expone los planes y el flujo de pago de suscripciones.
type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
}

// NewSubscriptionHandler crea el handler.
func NewSubscriptionHandler(subscriptions *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// ListPlans maneja GET /subscriptions/plans. Es público.
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.subscriptions.ListPlans(c.Request.Context())
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// Subscribe maneja POST /subscriptions. Crea la sesión de pago y la
// suscripción pendiente; el webhook la activa cuando se confirma el pago.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "plan_id es obligatorio")
		return
	}

	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		common.RespondBadRequest(c, "plan_id inválido")
		return
	}

	result, err := h.subscriptions.Subscribe(c.Request.Context(), userID, planID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Webhook maneja POST /subscriptions/webhook. El cuerpo se lee crudo
// porque la firma se calcula sobre los bytes exactos.
func (h *SubscriptionHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		common.RespondBadRequest(c, "no se pudo leer el cuerpo del webhook")
		return
	}

	signature := c.GetHeader("Stripe-Signature")

	if err := h.subscriptions.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
