package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/easyhome-app/easyhome-backend/internal/dto"
	"github.com/easyhome-app/easyhome-backend/internal/http/handlers/common"
	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/service"
)

// ReportHandler expone la capa HTTP de reportes de servicio.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler crea el handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// File maneja POST /reports. Solo el cliente de un servicio finalizado
// puede reportarlo.
func (h *ReportHandler) File(c *gin.Context) {
	reporterID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.FileReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "engagement_id, motive y description son obligatorios")
		return
	}

	engagementID, err := uuid.Parse(req.EngagementID)
	if err != nil {
		common.RespondBadRequest(c, "engagement_id inválido")
		return
	}

	report, err := h.reports.FileReport(c.Request.Context(), service.FileReportInput{
		EngagementID: engagementID,
		ReporterID:   reporterID,
		Motive:       req.Motive,
		Description:  req.Description,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// Get maneja GET /reports/:id. Lo ve el denunciante o un administrador.
func (h *ReportHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	role, _ := common.CurrentUserRole(c)

	report, err := h.reports.Get(c.Request.Context(), reportID, userID, role == models.RoleAdmin)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListMine maneja GET /reports. Reportes presentados por el usuario.
func (h *ReportHandler) ListMine(c *gin.Context) {
	reporterID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	reports, err := h.reports.ListMine(c.Request.Context(), reporterID, limit, offset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// ListByStatus maneja GET /admin/reports?status=pendiente.
func (h *ReportHandler) ListByStatus(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	reports, err := h.reports.ListByStatus(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// Resolve maneja PUT /admin/reports/:id/resolve.
func (h *ReportHandler) Resolve(c *gin.Context) {
	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ResolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "status es obligatorio")
		return
	}

	report, err := h.reports.Resolve(c.Request.Context(), service.ResolveInput{
		ReportID:     reportID,
		Status:       req.Status,
		AdminComment: req.AdminComment,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
