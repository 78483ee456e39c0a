package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
	"github.com/easyhome-app/easyhome-backend/internal/repository"
	"github.com/easyhome-app/easyhome-backend/internal/validation"
)

// ListingWriteStore describe la persistencia de publicaciones.
type ListingWriteStore interface {
	ListingStore
	Create(ctx context.Context, l *models.Listing) error
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Listing, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// ListingService administra las publicaciones de los proveedores.
type ListingService struct {
	repo  ListingWriteStore
	users UserDirectory
}

// NewListingService crea el servicio de publicaciones.
func NewListingService(repo ListingWriteStore, users UserDirectory) *ListingService {
	return &ListingService{repo: repo, users: users}
}

// CreateListingInput describe una publicación nueva.
type CreateListingInput struct {
	ProviderID  uuid.UUID
	Title       string
	Description *string
	Category    string
	Price       *float64
}

// Create publica un servicio. Solo un proveedor aprobado puede publicar.
func (s *ListingService) Create(ctx context.Context, in CreateListingInput) (*models.Listing, error) {
	if err := validation.ValidateLength("el título", in.Title, validation.MinNameLength, validation.MaxListingTitle); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateRequired("la categoría", in.Category); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "el precio no puede ser negativo")
	}

	role, err := s.users.GetRole(ctx, in.ProviderID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, fmt.Errorf("listing service: %w", err)
	}
	if !role.IsProvider() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "solo un proveedor aprobado puede publicar servicios")
	}

	listing := &models.Listing{
		ProviderID:  in.ProviderID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("listing service: %w", err)
	}
	return listing, nil
}

// Get devuelve una publicación.
func (s *ListingService) Get(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, apperror.ErrListingNotFound
		}
		return nil, fmt.Errorf("listing service: %w", err)
	}
	return listing, nil
}

// ListByProvider devuelve las publicaciones activas de un proveedor.
func (s *ListingService) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Listing, error) {
	return s.repo.ListByProvider(ctx, providerID)
}

// Deactivate retira una publicación del catálogo. Solo su dueño puede
// hacerlo.
func (s *ListingService) Deactivate(ctx context.Context, id, providerID uuid.UUID) error {
	listing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if listing.ProviderID != providerID {
		return apperror.ErrForbidden
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("listing service: %w", err)
	}
	return nil
}
