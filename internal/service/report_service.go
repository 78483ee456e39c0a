package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/sideeffect"
	"github.com/easyhome-app/easyhome-backend/internal/repository"
	"github.com/easyhome-app/easyhome-backend/internal/validation"
)

// ReportStore describe la persistencia de reportes.
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Report, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, error)
	UpdateStatus(ctx context.Context, report *models.Report) error
}

// ReportService contiene la lógica de denuncias contra proveedores.
type ReportService struct {
	repo           ReportStore
	engagements    EngagementReader
	notifications  NotificationStore
	adminRecipient uuid.UUID
	log            *logrus.Logger
}

// NewReportService crea el servicio de reportes.
func NewReportService(repo ReportStore, engagements EngagementReader, notifications NotificationStore, adminRecipient uuid.UUID, log *logrus.Logger) *ReportService {
	return &ReportService{
		repo:           repo,
		engagements:    engagements,
		notifications:  notifications,
		adminRecipient: adminRecipient,
		log:            log,
	}
}

// FileReportInput describe la denuncia que presenta el cliente.
type FileReportInput struct {
	EngagementID uuid.UUID
	ReporterID   uuid.UUID
	Motive       string
	Description  string
}

// FileReport registra la denuncia. Solo el cliente del servicio puede
// reportar y solo sobre un servicio finalizado; la alerta al equipo de
// administración es de mejor esfuerzo.
func (s *ReportService) FileReport(ctx context.Context, in FileReportInput) (*models.Report, error) {
	if err := validation.ValidateRequired("el motivo", in.Motive); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("el motivo", in.Motive, 0, validation.MaxMotiveLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("la descripción", in.Description,
		validation.MinDescriptionLength, validation.MaxDescriptionLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	e, err := s.engagements.GetByID(ctx, in.EngagementID)
	if err != nil {
		if errors.Is(err, repository.ErrEngagementNotFound) {
			return nil, apperror.ErrEngagementNotFound
		}
		return nil, fmt.Errorf("report service: %w", err)
	}
	if !e.HasClient(in.ReporterID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "solo el cliente del servicio puede reportar al proveedor")
	}
	if e.State != models.EngagementFinalized {
		return nil, apperror.Newf(apperror.ErrCodeConflict,
			"solo se puede reportar un servicio finalizado, no uno en estado '%s'", e.State)
	}

	report := &models.Report{
		EngagementID: in.EngagementID,
		ReporterID:   in.ReporterID,
		ProviderID:   e.ProviderID,
		Motive:       in.Motive,
		Description:  in.Description,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("report service: %w", err)
	}

	// El reporte ya quedó registrado; si la alerta interna falla no se
	// revierte nada.
	if s.adminRecipient != uuid.Nil {
		engagementID := in.EngagementID
		sideeffect.Run(s.log, "alerta de reporte nuevo", func() error {
			return s.notifications.Create(ctx, &models.Notification{
				RecipientID:  s.adminRecipient,
				EngagementID: &engagementID,
				Kind:         models.NotificationNewReport,
				Message:      fmt.Sprintf("Nuevo reporte contra un proveedor: %s", report.Motive),
			})
		})
	}

	return report, nil
}

// Get devuelve un reporte para su autor o para administración.
func (s *ReportService) Get(ctx context.Context, reportID, userID uuid.UUID, isAdmin bool) (*models.Report, error) {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, fmt.Errorf("report service: %w", err)
	}
	if !isAdmin && report.ReporterID != userID {
		return nil, apperror.ErrForbidden
	}
	return report, nil
}

// ListMine devuelve los reportes presentados por el usuario.
func (s *ReportService) ListMine(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Report, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListByReporter(ctx, reporterID, limit, offset)
}

// ListByStatus devuelve los reportes en el estado dado, para el panel de
// administración.
func (s *ReportService) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, error) {
	if status == "" {
		status = models.ReportStatusPending
	}
	if !models.ValidReportStatus(status) {
		return nil, apperror.Newf(apperror.ErrCodeValidation, "estado de reporte desconocido: %s", status)
	}
	limit, offset = clampPage(limit, offset)
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

// ResolveInput describe la resolución administrativa de un reporte.
type ResolveInput struct {
	ReportID     uuid.UUID
	Status       string
	AdminComment *string
}

// Resolve cambia el estado de revisión de un reporte. Un reporte ya
// resuelto o desestimado no se reabre.
func (s *ReportService) Resolve(ctx context.Context, in ResolveInput) (*models.Report, error) {
	if !models.ValidReportStatus(in.Status) || in.Status == models.ReportStatusPending {
		return nil, apperror.Newf(apperror.ErrCodeValidation, "estado de resolución inválido: %s", in.Status)
	}

	report, err := s.repo.GetByID(ctx, in.ReportID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, fmt.Errorf("report service: %w", err)
	}
	if report.Status == models.ReportStatusResolved || report.Status == models.ReportStatusDismissed {
		return nil, apperror.Newf(apperror.ErrCodeConflict,
			"el reporte ya fue cerrado con estado '%s'", report.Status)
	}

	report.Status = in.Status
	report.AdminComment = in.AdminComment
	now := time.Now()
	report.ReviewedAt = &now

	if err := s.repo.UpdateStatus(ctx, report); err != nil {
		return nil, fmt.Errorf("report service: %w", err)
	}
	return report, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
