package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/repository/common"
)

var ErrListingNotFound = errors.New("listing not found")

// ListingRepository persiste las publicaciones de servicio.
type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Create inserta una publicación.
func (r *ListingRepository) Create(ctx context.Context, l *models.Listing) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO listings (provider_id, title, description, category, price, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id, created_at, updated_at
	`,
		l.ProviderID, l.Title, l.Description, l.Category, l.Price,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return fmt.Errorf("listing repository: create %w", err)
	}
	return nil
}

// GetByID devuelve una publicación por identificador.
func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return common.GetByID[models.Listing](ctx, r.db, "listings", id, ErrListingNotFound)
}

// ListByProvider devuelve las publicaciones activas de un proveedor.
func (r *ListingRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Listing, error) {
	var list []models.Listing
	err := r.db.SelectContext(ctx, &list, `
		SELECT * FROM listings WHERE provider_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("listing repository: list by provider %w", err)
	}
	return list, nil
}

// Deactivate archiva una publicación sin borrarla.
func (r *ListingRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE listings SET is_active = FALSE, updated_at = NOW() WHERE id = $1
	`, id); err != nil {
		return fmt.Errorf("listing repository: deactivate %w", err)
	}
	return nil
}
