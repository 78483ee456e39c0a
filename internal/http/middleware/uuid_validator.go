package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UUIDValidator verifica que el parámetro indicado sea un UUID válido.
// Uso: router.GET("/engagements/:id", UUIDValidator("id"), handler.Get)
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param(paramName)
		if idStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "el parámetro " + paramName + " es obligatorio",
			})
			c.Abort()
			return
		}

		_, err := uuid.Parse(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "el parámetro " + paramName + " debe ser un UUID válido",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
