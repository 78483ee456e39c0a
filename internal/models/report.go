package models

import (
	"time"

	"github.com/google/uuid"
)

// Estados de revisión de un reporte.
const (
	ReportStatusPending   = "pendiente"
	ReportStatusReviewed  = "revisado"
	ReportStatusResolved  = "resuelto"
	ReportStatusDismissed = "desestimado"
)

// Report es la denuncia de un cliente contra el proveedor de un servicio
// finalizado.
type Report struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	EngagementID uuid.UUID  `db:"engagement_id" json:"engagement_id"`
	ReporterID   uuid.UUID  `db:"reporter_id" json:"reporter_id"`
	ProviderID   uuid.UUID  `db:"provider_id" json:"provider_id"`
	Motive       string     `db:"motive" json:"motive"`
	Description  string     `db:"description" json:"description"`
	Status       string     `db:"status" json:"status"`
	AdminComment *string    `db:"admin_comment" json:"admin_comment,omitempty"`
	ReviewedAt   *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// ValidReportStatus indica si el estado es uno de los admitidos.
func ValidReportStatus(s string) bool {
	switch s {
	case ReportStatusPending, ReportStatusReviewed, ReportStatusResolved, ReportStatusDismissed:
		return true
	}
	return false
}
