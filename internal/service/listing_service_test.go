package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
	"github.com/easyhome-app/easyhome-backend/internal/repository"
)

type mockListingWriteStore struct {
	mockListingStore
}

func (m *mockListingWriteStore) Create(ctx context.Context, l *models.Listing) error {
	args := m.Called(ctx, l)
	if args.Error(0) == nil {
		l.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockListingWriteStore) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Listing, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *mockListingWriteStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestListingService_Create_UnknownProvider(t *testing.T) {
	repo := new(mockListingWriteStore)
	users := new(mockUserDirectory)
	svc := NewListingService(repo, users)
	ctx := context.Background()

	providerID := uuid.New()
	users.On("GetRole", ctx, providerID).Return(nil, repository.ErrUserNotFound)

	_, err := svc.Create(ctx, CreateListingInput{
		ProviderID: providerID,
		Title:      "Reparación de grifería",
		Category:   "plomeria",
	})

	assert.True(t, apperror.IsNotFound(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListingService_Create_NotAProvider(t *testing.T) {
	repo := new(mockListingWriteStore)
	users := new(mockUserDirectory)
	svc := NewListingService(repo, users)
	ctx := context.Background()

	clientID := uuid.New()
	users.On("GetRole", ctx, clientID).Return(&models.Role{Kind: models.RoleClient}, nil)

	_, err := svc.Create(ctx, CreateListingInput{
		ProviderID: clientID,
		Title:      "Reparación de grifería",
		Category:   "plomeria",
	})

	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListingService_Deactivate_NotTheOwner(t *testing.T) {
	repo := new(mockListingWriteStore)
	svc := NewListingService(repo, new(mockUserDirectory))
	ctx := context.Background()

	listingID := uuid.New()
	repo.On("GetByID", ctx, listingID).Return(&models.Listing{
		ID:         listingID,
		ProviderID: uuid.New(),
		IsActive:   true,
	}, nil)

	err := svc.Deactivate(ctx, listingID, uuid.New())

	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
}
