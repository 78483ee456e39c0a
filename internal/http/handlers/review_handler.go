package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/easyhome-app/easyhome-backend/internal/http/handlers/common"
	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/service"
	"github.com/easyhome-app/easyhome-backend/internal/validation"
)

// ReviewHandler expone la capa HTTP de reseñas.
type ReviewHandler struct {
	reviews *service.ReviewService
}

// NewReviewHandler crea el handler.
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Submit maneja POST /engagements/:id/review. Recibe un formulario
// multipart: las cuatro puntuaciones, la recomendación, el comentario
// opcional y hasta cinco imágenes en el campo "images".
func (h *ReviewHandler) Submit(c *gin.Context) {
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

	form, err := c.MultipartForm()
	if err != nil {
		common.RespondBadRequest(c, "se espera un formulario multipart")
		return
	}

	scores, err := parseScores(form)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var comment *string
	if v := formValue(form, "comment"); v != "" {
		comment = &v
	}

	images, err := readImageUploads(form.File["images"])
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	review, err := h.reviews.SubmitReview(c.Request.Context(), service.SubmitReviewInput{
		EngagementID:   engagementID,
		ClientID:       clientID,
		Scores:         scores,
		Comment:        comment,
		Recommendation: formValue(form, "recommendation"),
		Images:         images,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetByEngagement maneja GET /engagements/:id/review.
func (h *ReviewHandler) GetByEngagement(c *gin.Context) {
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

	review, err := h.reviews.GetByEngagement(c.Request.Context(), engagementID, userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// ListByProvider maneja GET /providers/:id/reviews. Es público e incluye
// el promedio de calificaciones del proveedor.
func (h *ReviewHandler) ListByProvider(c *gin.Context) {
	providerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	result, err := h.reviews.ListByProvider(c.Request.Context(), providerID, limit, offset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseScores(form *multipart.Form) (models.ReviewScores, error) {
	var scores models.ReviewScores
	fields := []struct {
		name string
		dst  *int
	}{
		{"score_general", &scores.General},
		{"score_punctuality", &scores.Punctuality},
		{"score_quality", &scores.Quality},
		{"score_value", &scores.Value},
	}

	for _, f := range fields {
		raw := formValue(form, f.name)
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return scores, &scoreError{field: f.name}
		}
		*f.dst = parsed
	}
	return scores, nil
}

type scoreError struct {
	field string
}

func (e *scoreError) Error() string {
	return "el campo " + e.field + " debe ser un número entero"
}

func formValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// readImageUploads lee los archivos adjuntos respetando el límite de
// tamaño por imagen. El límite de cantidad lo aplica el servicio.
func readImageUploads(headers []*multipart.FileHeader) ([]service.ReviewImageUpload, error) {
	uploads := make([]service.ReviewImageUpload, 0, len(headers))
	for _, header := range headers {
		if header.Size > validation.MaxImageSize {
			return nil, &imageTooLargeError{filename: header.Filename}
		}

		file, err := header.Open()
		if err != nil {
			return nil, err
		}

		data, err := io.ReadAll(io.LimitReader(file, validation.MaxImageSize+1))
		file.Close()
		if err != nil {
			return nil, err
		}

		uploads = append(uploads, service.ReviewImageUpload{
			Filename: header.Filename,
			Data:     data,
		})
	}
	return uploads, nil
}

type imageTooLargeError struct {
	filename string
}

func (e *imageTooLargeError) Error() string {
	return "la imagen " + e.filename + " supera el tamaño máximo permitido"
}
