package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/easyhome-app/easyhome-backend/internal/models"
)

var ErrReportNotFound = errors.New("report not found")

// ReportRepository persiste los reportes contra proveedores.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserta un reporte nuevo en estado pendiente.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO reports (engagement_id, reporter_id, provider_id, motive, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`,
		report.EngagementID, report.ReporterID, report.ProviderID,
		report.Motive, report.Description, report.Status,
	).Scan(&report.ID, &report.CreatedAt); err != nil {
		return fmt.Errorf("report repository: create %w", err)
	}
	return nil
}

// GetByID devuelve un reporte por identificador.
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.db.GetContext(ctx, &report, `SELECT * FROM reports WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("report repository: get by id %w", err)
	}
	return &report, nil
}

// ListByReporter devuelve los reportes presentados por un usuario.
func (r *ReportRepository) ListByReporter(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.SelectContext(ctx, &reports, `
		SELECT * FROM reports WHERE reporter_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, reporterID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("report repository: list by reporter %w", err)
	}
	return reports, nil
}

// ListByStatus devuelve los reportes en un estado dado, para el panel admin.
func (r *ReportRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.SelectContext(ctx, &reports, `
		SELECT * FROM reports WHERE status = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("report repository: list by status %w", err)
	}
	return reports, nil
}

// UpdateStatus registra la revisión administrativa del reporte.
func (r *ReportRepository) UpdateStatus(ctx context.Context, report *models.Report) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE reports
		SET status = $2, admin_comment = $3, reviewed_at = NOW()
		WHERE id = $1
	`, report.ID, report.Status, report.AdminComment); err != nil {
		return fmt.Errorf("report repository: update status %w", err)
	}
	return nil
}
