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

func TestEngagementHandler_Contact_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &EngagementHandler{engagements: nil}
	r.POST("/engagements", handler.Contact)

	body := strings.NewReader(`{"provider_id":"` + uuid.NewString() + `"}`)
	req, _ := http.NewRequest("POST", "/engagements", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEngagementHandler_Contact_InvalidProviderID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	userID := uuid.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	handler := &EngagementHandler{engagements: nil}
	r.POST("/engagements", handler.Contact)

	body := strings.NewReader(`{"provider_id":"no-es-uuid"}`)
	req, _ := http.NewRequest("POST", "/engagements", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEngagementHandler_RecordHireOutcome_MissingHired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	userID := uuid.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	handler := &EngagementHandler{engagements: nil}
	r.POST("/engagements/:id/hire-outcome", handler.RecordHireOutcome)

	body := strings.NewReader(`{}`)
	req, _ := http.NewRequest("POST", "/engagements/"+uuid.NewString()+"/hire-outcome", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEngagementHandler_Get_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	userID := uuid.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	handler := &EngagementHandler{engagements: nil}
	r.GET("/engagements/:id", handler.Get)

	req, _ := http.NewRequest("GET", "/engagements/no-es-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEngagementHandler_Finalize_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &EngagementHandler{engagements: nil}
	r.POST("/engagements/:id/finalize", handler.Finalize)

	req, _ := http.NewRequest("POST", "/engagements/"+uuid.NewString()+"/finalize", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
