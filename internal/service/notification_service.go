package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/sideeffect"
	"github.com/easyhome-app/easyhome-backend/internal/repository"
)

// NotificationReadStore describe la lectura y el marcado de alertas.
type NotificationReadStore interface {
	NotificationStore
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// NotificationService entrega y administra las alertas de los usuarios.
type NotificationService struct {
	repo NotificationReadStore
	hub  WSNotifier
	log  *logrus.Logger
}

// NewNotificationService crea el servicio de alertas.
func NewNotificationService(repo NotificationReadStore, log *logrus.Logger) *NotificationService {
	return &NotificationService{repo: repo, log: log}
}

// SetHub instala el hub de WebSocket.
func (s *NotificationService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// Notify registra una alerta fuera del ciclo de vida (por ejemplo la
// aprobación de una solicitud de proveedor) y la empuja en tiempo real.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("notification service: %w", err)
	}
	if s.hub != nil {
		sideeffect.Run(s.log, "ws notification.new", func() error {
			return s.hub.BroadcastToUser(n.RecipientID, "notification.new", n)
		})
	}
	return nil
}

// ListForUser devuelve las alertas del usuario, más recientes primero.
// Las alertas cuyo servicio asociado ya no existe no se incluyen.
func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	limit, offset = clampPage(limit, offset)
	items, err := s.repo.ListForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("notification service: %w", err)
	}
	return items, nil
}

// MarkRead marca una alerta del usuario como leída. Marcar una alerta ya
// leída no es un error y conserva la marca de tiempo original.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return apperror.ErrNotificationNotFound
		}
		return fmt.Errorf("notification service: %w", err)
	}
	if n.RecipientID != userID {
		return apperror.ErrForbidden
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return apperror.ErrNotificationNotFound
		}
		return fmt.Errorf("notification service: %w", err)
	}
	return nil
}

// MarkAllRead marca todas las alertas del usuario como leídas.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("notification service: %w", err)
	}
	return nil
}

// CountUnread devuelve la cantidad de alertas sin leer del usuario.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("notification service: %w", err)
	}
	return count, nil
}
