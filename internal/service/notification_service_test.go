package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
	"github.com/easyhome-app/easyhome-backend/internal/repository"
)

type mockNotificationReadStore struct {
	mock.Mock
}

func (m *mockNotificationReadStore) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	if args.Error(0) == nil {
		n.ID = uuid.New()
		n.SentAt = time.Now()
	}
	return args.Error(0)
}

func (m *mockNotificationReadStore) CreateTx(ctx context.Context, tx *sqlx.Tx, n *models.Notification) error {
	args := m.Called(ctx, tx, n)
	return args.Error(0)
}

func (m *mockNotificationReadStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *mockNotificationReadStore) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *mockNotificationReadStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockNotificationReadStore) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockNotificationReadStore) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func TestNotificationService_MarkRead(t *testing.T) {
	repo := new(mockNotificationReadStore)
	svc := NewNotificationService(repo, logrus.New())
	ctx := context.Background()

	userID := uuid.New()
	notificationID := uuid.New()

	repo.On("GetByID", ctx, notificationID).Return(&models.Notification{
		ID:          notificationID,
		RecipientID: userID,
	}, nil)
	repo.On("MarkRead", ctx, notificationID).Return(nil)

	assert.NoError(t, svc.MarkRead(ctx, notificationID, userID))
	repo.AssertExpectations(t)
}

func TestNotificationService_MarkRead_AlreadyRead(t *testing.T) {
	repo := new(mockNotificationReadStore)
	svc := NewNotificationService(repo, logrus.New())
	ctx := context.Background()

	userID := uuid.New()
	notificationID := uuid.New()
	readAt := time.Now().Add(-time.Hour)

	repo.On("GetByID", ctx, notificationID).Return(&models.Notification{
		ID:          notificationID,
		RecipientID: userID,
		Read:        true,
		ReadAt:      &readAt,
	}, nil)
	repo.On("MarkRead", ctx, notificationID).Return(nil)

	// Remarcar una alerta leída no es un error.
	assert.NoError(t, svc.MarkRead(ctx, notificationID, userID))
	repo.AssertExpectations(t)
}

func TestNotificationService_MarkRead_NotTheRecipient(t *testing.T) {
	repo := new(mockNotificationReadStore)
	svc := NewNotificationService(repo, logrus.New())
	ctx := context.Background()

	notificationID := uuid.New()
	repo.On("GetByID", ctx, notificationID).Return(&models.Notification{
		ID:          notificationID,
		RecipientID: uuid.New(),
	}, nil)

	err := svc.MarkRead(ctx, notificationID, uuid.New())

	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
}

func TestNotificationService_MarkRead_NotFound(t *testing.T) {
	repo := new(mockNotificationReadStore)
	svc := NewNotificationService(repo, logrus.New())
	ctx := context.Background()

	notificationID := uuid.New()
	repo.On("GetByID", ctx, notificationID).Return(nil, repository.ErrNotificationNotFound)

	err := svc.MarkRead(ctx, notificationID, uuid.New())

	assert.True(t, apperror.IsNotFound(err))
}

func TestNotificationService_ListForUser_ClampsPagination(t *testing.T) {
	repo := new(mockNotificationReadStore)
	svc := NewNotificationService(repo, logrus.New())
	ctx := context.Background()

	userID := uuid.New()
	repo.On("ListForUser", ctx, userID, 20, 0).Return([]models.Notification{}, nil)

	items, err := svc.ListForUser(ctx, userID, -5, -1)

	assert.NoError(t, err)
	assert.Empty(t, items)
	repo.AssertExpectations(t)
}

func TestNotificationService_CountUnread(t *testing.T) {
	repo := new(mockNotificationReadStore)
	svc := NewNotificationService(repo, logrus.New())
	ctx := context.Background()

	userID := uuid.New()
	repo.On("CountUnread", ctx, userID).Return(3, nil)

	count, err := svc.CountUnread(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}
