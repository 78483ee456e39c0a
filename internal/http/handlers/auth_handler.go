package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/easyhome-app/easyhome-backend/internal/dto"
	"github.com/easyhome-app/easyhome-backend/internal/http/handlers/common"
	"github.com/easyhome-app/easyhome-backend/internal/service"
	"github.com/easyhome-app/easyhome-backend/internal/validation"
)

// AuthHandler expone la capa HTTP de registro y acceso.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler crea el handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register maneja POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "cuerpo de la petición inválido")
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "correo y contraseña son obligatorios")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Refresh maneja POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "refresh_token es obligatorio")
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Me maneja GET /profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	profile, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdatePhoto maneja PUT /profile/photo. Recibe el archivo en el campo
// multipart "photo"; el tipo real se verifica por los bytes del archivo.
func (h *AuthHandler) UpdatePhoto(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		common.RespondBadRequest(c, "el campo photo es obligatorio")
		return
	}
	if fileHeader.Size > validation.MaxImageSize {
		common.RespondBadRequest(c, "la imagen supera el tamaño máximo permitido")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondBadRequest(c, "no se pudo leer el archivo")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, validation.MaxImageSize+1))
	if err != nil {
		common.RespondBadRequest(c, "no se pudo leer el archivo")
		return
	}

	url, err := h.auth.UpdatePhoto(c.Request.Context(), userID, data)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}
