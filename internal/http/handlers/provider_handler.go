package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/easyhome-app/easyhome-backend/internal/http/handlers/common"
	"github.com/easyhome-app/easyhome-backend/internal/service"
	"github.com/easyhome-app/easyhome-backend/internal/validation"
)

// ProviderHandler expone la postulación y el perfil de proveedores.
type ProviderHandler struct {
	providers *service.ProviderService
}

// NewProviderHandler crea el handler.
func NewProviderHandler(providers *service.ProviderService) *ProviderHandler {
	return &ProviderHandler{providers: providers}
}

// Apply maneja POST /providers/apply. Recibe un formulario multipart con
// los datos de la postulación y las fotos de trabajos anteriores en el
// campo "work_photos".
func (h *ProviderHandler) Apply(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		common.RespondBadRequest(c, "se espera un formulario multipart")
		return
	}

	years := 0
	if raw := formValue(form, "years_experience"); raw != "" {
		years, err = strconv.Atoi(raw)
		if err != nil {
			common.RespondBadRequest(c, "years_experience debe ser un número entero")
			return
		}
	}

	var description *string
	if v := formValue(form, "description"); v != "" {
		description = &v
	}

	photos := make([]service.WorkPhotoUpload, 0, len(form.File["work_photos"]))
	for _, header := range form.File["work_photos"] {
		if header.Size > validation.MaxImageSize {
			common.RespondBadRequest(c, "la foto "+header.Filename+" supera el tamaño máximo permitido")
			return
		}

		file, err := header.Open()
		if err != nil {
			common.RespondBadRequest(c, "no se pudo leer la foto "+header.Filename)
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, validation.MaxImageSize+1))
		file.Close()
		if err != nil {
			common.RespondBadRequest(c, "no se pudo leer la foto "+header.Filename)
			return
		}

		photos = append(photos, service.WorkPhotoUpload{Data: data})
	}

	profile, err := h.providers.Apply(c.Request.Context(), service.ApplyInput{
		UserID:          userID,
		FullName:        formValue(form, "full_name"),
		Address:         formValue(form, "address"),
		YearsExperience: years,
		Specializations: formValue(form, "specializations"),
		Description:     description,
		WorkPhotos:      photos,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// GetProfile maneja GET /providers/:id. Es público.
func (h *ProviderHandler) GetProfile(c *gin.Context) {
	providerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	profile, err := h.providers.GetProfile(c.Request.Context(), providerID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ListApplications maneja GET /admin/applications?status=pendiente.
func (h *ProviderHandler) ListApplications(c *gin.Context) {
	applications, err := h.providers.ListApplications(c.Request.Context(), c.Query("status"))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

// Approve maneja PUT /admin/applications/:id/approve. El id es el del
// usuario postulante.
func (h *ProviderHandler) Approve(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.providers.Approve(c.Request.Context(), userID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "postulación aprobada", nil)
}

// Reject maneja PUT /admin/applications/:id/reject.
func (h *ProviderHandler) Reject(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.providers.Reject(c.Request.Context(), userID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "postulación rechazada", nil)
}
