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
	ErrProviderNotFound  = errors.New("provider profile not found")
	ErrProviderDuplicate = errors.New("provider application already exists")
)

// ProviderRepository persiste perfiles de proveedor y su evidencia
// fotográfica.
type ProviderRepository struct {
	db *sqlx.DB
}

func NewProviderRepository(db *sqlx.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

// CreateApplication inserta la postulación de un usuario a proveedor.
func (r *ProviderRepository) CreateApplication(ctx context.Context, p *models.ProviderProfile) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO provider_profiles (user_id, full_name, address, years_experience,
			specializations, description, application_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING applied_at
	`,
		p.UserID, p.FullName, p.Address, p.YearsExperience,
		p.Specializations, p.Description, p.ApplicationStatus,
	).Scan(&p.AppliedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return ErrProviderDuplicate
		}
		return fmt.Errorf("provider repository: create application %w", err)
	}
	return nil
}

// GetByUserID devuelve el perfil del proveedor.
func (r *ProviderRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ProviderProfile, error) {
	var p models.ProviderProfile
	if err := r.db.GetContext(ctx, &p, `SELECT * FROM provider_profiles WHERE user_id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("provider repository: get by user id %w", err)
	}
	return &p, nil
}

// ListApplications devuelve las postulaciones pendientes, más recientes
// primero.
func (r *ProviderRepository) ListApplications(ctx context.Context, status string) ([]models.ProviderProfile, error) {
	var list []models.ProviderProfile
	err := r.db.SelectContext(ctx, &list, `
		SELECT * FROM provider_profiles WHERE application_status = $1
		ORDER BY applied_at DESC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("provider repository: list applications %w", err)
	}
	return list, nil
}

// Approve marca la postulación aprobada dentro de la transacción.
func (r *ProviderRepository) Approve(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE provider_profiles
		SET application_status = $2, approved_at = NOW()
		WHERE user_id = $1
	`, userID, models.ApplicationApproved)
	if err != nil {
		return fmt.Errorf("provider repository: approve %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrProviderNotFound
	}
	return nil
}

// Delete elimina el perfil (rechazo de postulación); las fotos caen por
// cascada en la base.
func (r *ProviderRepository) Delete(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM provider_profiles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("provider repository: delete %w", err)
	}
	return nil
}

// AddWorkPhoto guarda la referencia de una foto de evidencia.
func (r *ProviderRepository) AddWorkPhoto(ctx context.Context, photo *models.WorkPhoto) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO work_photos (provider_id, object_key, description)
		VALUES ($1, $2, $3)
		RETURNING id, uploaded_at
	`, photo.ProviderID, photo.ObjectKey, photo.Description).Scan(&photo.ID, &photo.UploadedAt); err != nil {
		return fmt.Errorf("provider repository: add work photo %w", err)
	}
	return nil
}

// ListWorkPhotos devuelve la evidencia fotográfica del proveedor.
func (r *ProviderRepository) ListWorkPhotos(ctx context.Context, providerID uuid.UUID) ([]models.WorkPhoto, error) {
	var photos []models.WorkPhoto
	err := r.db.SelectContext(ctx, &photos, `
		SELECT * FROM work_photos WHERE provider_id = $1 ORDER BY uploaded_at
	`, providerID)
	if err != nil {
		return nil, fmt.Errorf("provider repository: list work photos %w", err)
	}
	return photos, nil
}
