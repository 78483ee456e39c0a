package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReportHandler_File_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &ReportHandler{reports: nil}
	r.POST("/reports", handler.File)

	body := strings.NewReader(`{"engagement_id":"` + uuid.NewString() + `","motive":"mal trabajo","description":"descripción del problema"}`)
	req, _ := http.NewRequest("POST", "/reports", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportHandler_File_InvalidEngagementID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	userID := uuid.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	handler := &ReportHandler{reports: nil}
	r.POST("/reports", handler.File)

	body := strings.NewReader(`{"engagement_id":"no-es-uuid","motive":"mal trabajo","description":"descripción del problema"}`)
	req, _ := http.NewRequest("POST", "/reports", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_Resolve_MissingStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &ReportHandler{reports: nil}
	r.PUT("/admin/reports/:id/resolve", handler.Resolve)

	body := strings.NewReader(`{}`)
	req, _ := http.NewRequest("PUT", "/admin/reports/"+uuid.NewString()+"/resolve", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
