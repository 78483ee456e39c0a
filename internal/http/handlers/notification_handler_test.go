package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/repository"
	"github.com/easyhome-app/easyhome-backend/internal/service"
)

type stubNotificationStore struct {
	items []models.Notification
}

func (s *stubNotificationStore) Create(context.Context, *models.Notification) error { return nil }

func (s *stubNotificationStore) CreateTx(context.Context, *sqlx.Tx, *models.Notification) error {
	return nil
}

func (s *stubNotificationStore) GetByID(context.Context, uuid.UUID) (*models.Notification, error) {
	return nil, repository.ErrNotificationNotFound
}

func (s *stubNotificationStore) ListForUser(_ context.Context, _ uuid.UUID, limit, offset int) ([]models.Notification, error) {
	return s.items, nil
}

func (s *stubNotificationStore) MarkRead(context.Context, uuid.UUID) error { return nil }

func (s *stubNotificationStore) MarkAllRead(context.Context, uuid.UUID) error { return nil }

func (s *stubNotificationStore) CountUnread(context.Context, uuid.UUID) (int, error) { return 0, nil }

func TestNotificationHandler_List_EchoesPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	userID := uuid.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	svc := service.NewNotificationService(&stubNotificationStore{items: []models.Notification{}}, logrus.New())
	handler := NewNotificationHandler(svc)
	r.GET("/notifications", handler.List)

	req, _ := http.NewRequest("GET", "/notifications?limit=5&offset=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Pagination struct {
			Limit  int `json:"limit"`
			Offset int `json:"offset"`
		} `json:"pagination"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Pagination.Limit)
	assert.Equal(t, 10, body.Pagination.Offset)
}

func TestNotificationHandler_List_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &NotificationHandler{notifications: nil}
	r.GET("/notifications", handler.List)

	req, _ := http.NewRequest("GET", "/notifications", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
