package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/repository/common"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	// ErrReviewExists señala la violación de la restricción única sobre
	// engagement_id: ya existe una reseña para ese servicio.
	ErrReviewExists = errors.New("review already exists for engagement")
)

// ReviewRepository persiste reseñas y sus imágenes de evidencia.
type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserta la reseña y sus imágenes en una sola transacción. La
// unicidad por servicio la impone la base; un duplicado concurrente sale
// como ErrReviewExists, nunca como dos filas.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO reviews (engagement_id, client_id, provider_id,
				score_general, score_punctuality, score_quality, score_value,
				comment, recommendation)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at
		`,
			review.EngagementID, review.ClientID, review.ProviderID,
			review.General, review.Punctuality, review.Quality, review.Value,
			review.Comment, review.Recommendation,
		).Scan(&review.ID, &review.CreatedAt)
		if err != nil {
			if common.IsUniqueViolation(err) {
				return ErrReviewExists
			}
			return fmt.Errorf("review repository: create %w", err)
		}

		for i := range review.Images {
			img := &review.Images[i]
			img.ReviewID = review.ID
			if err := tx.QueryRowxContext(ctx, `
				INSERT INTO review_images (review_id, object_key)
				VALUES ($1, $2)
				RETURNING id, uploaded_at
			`, img.ReviewID, img.ObjectKey).Scan(&img.ID, &img.UploadedAt); err != nil {
				return fmt.Errorf("review repository: create image %w", err)
			}
		}

		return nil
	})
}

// GetByID devuelve una reseña con sus imágenes.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.GetContext(ctx, &review, `SELECT * FROM reviews WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("review repository: get by id %w", err)
	}
	if err := r.loadImages(ctx, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByEngagement devuelve la reseña de un servicio o nil si no existe.
func (r *ReviewRepository) GetByEngagement(ctx context.Context, engagementID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.GetContext(ctx, &review, `SELECT * FROM reviews WHERE engagement_id = $1`, engagementID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("review repository: get by engagement %w", err)
	}
	if err := r.loadImages(ctx, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByProvider devuelve las reseñas recibidas por un proveedor.
func (r *ReviewRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT * FROM reviews
		WHERE provider_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, providerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("review repository: list by provider %w", err)
	}
	for i := range reviews {
		if err := r.loadImages(ctx, &reviews[i]); err != nil {
			return nil, err
		}
	}
	return reviews, nil
}

// GetProviderRating devuelve el promedio general y el total de reseñas.
func (r *ReviewRepository) GetProviderRating(ctx context.Context, providerID uuid.UUID) (*models.ProviderRating, error) {
	var result struct {
		Avg   sql.NullFloat64 `db:"avg"`
		Count int             `db:"count"`
	}
	err := r.db.GetContext(ctx, &result, `
		SELECT COALESCE(AVG(score_general), 0) AS avg, COUNT(*) AS count
		FROM reviews WHERE provider_id = $1
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("review repository: provider rating %w", err)
	}
	return &models.ProviderRating{Average: result.Avg.Float64, Count: result.Count}, nil
}

func (r *ReviewRepository) loadImages(ctx context.Context, review *models.Review) error {
	err := r.db.SelectContext(ctx, &review.Images, `
		SELECT * FROM review_images WHERE review_id = $1 ORDER BY uploaded_at
	`, review.ID)
	if err != nil {
		return fmt.Errorf("review repository: load images %w", err)
	}
	return nil
}
