package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/sideeffect"
	"github.com/easyhome-app/easyhome-backend/internal/repository"
	"github.com/easyhome-app/easyhome-backend/internal/repository/common"
)

// EngagementStore describe la interacción del servicio con el
// almacenamiento de servicios contratados.
type EngagementStore interface {
	Create(ctx context.Context, e *models.Engagement) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error)
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Engagement, error)
	UpdateState(ctx context.Context, tx *sqlx.Tx, e *models.Engagement) error
	ListActiveByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Engagement, error)
	ListFinalizedByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Engagement, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Engagement, error)
}

// NotificationStore describe la escritura de alertas.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateTx(ctx context.Context, tx *sqlx.Tx, n *models.Notification) error
}

// UserDirectory expone los datos de usuario que el ciclo de vida necesita.
type UserDirectory interface {
	GetSummary(ctx context.Context, id uuid.UUID) (*models.UserSummary, error)
	GetRole(ctx context.Context, id uuid.UUID) (*models.Role, error)
}

// ListingStore expone la lectura de publicaciones.
type ListingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

// Presigner resuelve llaves de objetos a URLs temporales de lectura.
type Presigner interface {
	PresignURL(key string, ttl time.Duration) (string, error)
}

// WSNotifier es el contrato con el hub de WebSocket.
type WSNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// EngagementService contiene la lógica del ciclo de vida de los servicios
// contratados. Cada transición corre en una sola transacción junto con
// las alertas que genera.
type EngagementService struct {
	repo          EngagementStore
	notifications NotificationStore
	users         UserDirectory
	listings      ListingStore
	tx            common.TxManager
	presigner     Presigner
	presignTTL    time.Duration
	hub           WSNotifier
	log           *logrus.Logger
}

// NewEngagementService crea el servicio del ciclo de vida.
func NewEngagementService(
	repo EngagementStore,
	notifications NotificationStore,
	users UserDirectory,
	listings ListingStore,
	tx common.TxManager,
	presigner Presigner,
	presignTTL time.Duration,
	log *logrus.Logger,
) *EngagementService {
	return &EngagementService{
		repo:          repo,
		notifications: notifications,
		users:         users,
		listings:      listings,
		tx:            tx,
		presigner:     presigner,
		presignTTL:    presignTTL,
		log:           log,
	}
}

// SetHub instala el hub de WebSocket para los avisos en tiempo real.
func (s *EngagementService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// ContactInput describe el primer contacto de un cliente con un proveedor.
type ContactInput struct {
	ClientID   uuid.UUID
	ProviderID uuid.UUID
	ListingID  *uuid.UUID
}

// Contact registra el contacto inicial y crea el servicio en estado
// contactado. Todavía no hay acuerdo: el proveedor no ve nada en su
// panel hasta que el cliente registre el resultado de la contratación.
func (s *EngagementService) Contact(ctx context.Context, in ContactInput) (*models.Engagement, error) {
	if in.ClientID == in.ProviderID {
		return nil, apperror.New(apperror.ErrCodeValidation, "no puedes contratarte a ti mismo")
	}

	role, err := s.users.GetRole(ctx, in.ProviderID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrProviderNotFound
		}
		return nil, fmt.Errorf("engagement service: %w", err)
	}
	if !role.IsProvider() {
		return nil, apperror.New(apperror.ErrCodeValidation, "el usuario contactado no es un proveedor")
	}

	if in.ListingID != nil {
		listing, err := s.listings.GetByID(ctx, *in.ListingID)
		if err != nil {
			if errors.Is(err, repository.ErrListingNotFound) {
				return nil, apperror.ErrListingNotFound
			}
			return nil, fmt.Errorf("engagement service: %w", err)
		}
		if listing.ProviderID != in.ProviderID {
			return nil, apperror.New(apperror.ErrCodeValidation, "la publicación no pertenece al proveedor contactado")
		}
		if !listing.IsActive {
			return nil, apperror.New(apperror.ErrCodeConflict, "la publicación ya no está disponible")
		}
	}

	e := &models.Engagement{
		ClientID:   in.ClientID,
		ProviderID: in.ProviderID,
		ListingID:  in.ListingID,
		State:      models.EngagementContacted,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// RecordHireOutcome registra la respuesta del cliente a la pregunta de si
// logró contratar al proveedor. Con acuerdo, el servicio pasa a
// confirmado y ambas partes reciben una alerta en la misma transacción.
// Sin acuerdo, el servicio queda en contactado y solo el cliente recibe
// una alerta de retroalimentación.
func (s *EngagementService) RecordHireOutcome(ctx context.Context, engagementID, clientID uuid.UUID, hired bool) (*models.Engagement, error) {
	var updated *models.Engagement

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		e, err := s.getForUpdate(ctx, tx, engagementID)
		if err != nil {
			return err
		}
		if !e.HasClient(clientID) {
			return apperror.ErrForbidden
		}

		if !hired {
			if e.State != models.EngagementContacted {
				return apperror.Newf(apperror.ErrCodeConflict,
					"el servicio ya se encuentra en estado '%s'", e.State)
			}
			updated = e
			return s.notifications.CreateTx(ctx, tx, &models.Notification{
				RecipientID:  clientID,
				EngagementID: &e.ID,
				Kind:         models.NotificationHireDeclined,
				Message:      "Registramos que no se concretó la contratación. Puedes buscar otros proveedores disponibles.",
			})
		}

		if err := e.ConfirmAgreement(time.Now()); err != nil {
			return err
		}
		if err := s.repo.UpdateState(ctx, tx, e); err != nil {
			return err
		}

		alerts := []*models.Notification{
			{
				RecipientID:  e.ProviderID,
				EngagementID: &e.ID,
				Kind:         models.NotificationHireConfirmed,
				Message:      "Un cliente confirmó tu contratación. El servicio ya aparece en tu panel de trabajos activos.",
			},
			{
				RecipientID:  e.ClientID,
				EngagementID: &e.ID,
				Kind:         models.NotificationHireRegistered,
				Message:      "Tu contratación quedó registrada. Te avisaremos cuando el proveedor finalice el servicio.",
			},
		}
		for _, n := range alerts {
			if err := s.notifications.CreateTx(ctx, tx, n); err != nil {
				return err
			}
		}

		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	if hired {
		s.push(updated.ProviderID, "engagement.confirmed", updated)
	}
	return updated, nil
}

// StartWork marca el inicio del trabajo por parte del proveedor.
func (s *EngagementService) StartWork(ctx context.Context, engagementID, providerID uuid.UUID) (*models.Engagement, error) {
	var updated *models.Engagement

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		e, err := s.getForUpdate(ctx, tx, engagementID)
		if err != nil {
			return err
		}
		if !e.HasProvider(providerID) {
			return apperror.ErrForbidden
		}
		if err := e.StartWork(); err != nil {
			return err
		}
		if err := s.repo.UpdateState(ctx, tx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.push(updated.ClientID, "engagement.in_progress", updated)
	return updated, nil
}

// Finalize marca el servicio como finalizado. Solo el proveedor puede
// finalizar; el cliente recibe la alerta en la misma transacción y a
// partir de aquí puede dejar reseña o reportar.
func (s *EngagementService) Finalize(ctx context.Context, engagementID, providerID uuid.UUID) (*models.Engagement, error) {
	var updated *models.Engagement

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		e, err := s.getForUpdate(ctx, tx, engagementID)
		if err != nil {
			return err
		}
		if !e.HasProvider(providerID) {
			return apperror.ErrForbidden
		}
		if err := e.Finalize(time.Now()); err != nil {
			return err
		}
		if err := s.repo.UpdateState(ctx, tx, e); err != nil {
			return err
		}
		updated = e
		return s.notifications.CreateTx(ctx, tx, &models.Notification{
			RecipientID:  e.ClientID,
			EngagementID: &e.ID,
			Kind:         models.NotificationFinalized,
			Message:      "El proveedor marcó el servicio como finalizado. Confírmalo y cuéntanos cómo te fue.",
		})
	})
	if err != nil {
		return nil, err
	}

	s.push(updated.ClientID, "engagement.finalized", updated)
	return updated, nil
}

// Cancel cancela el servicio. Cualquiera de las dos partes puede
// cancelar mientras el servicio no esté en un estado terminal; la
// contraparte recibe la alerta.
func (s *EngagementService) Cancel(ctx context.Context, engagementID, actorID uuid.UUID) (*models.Engagement, error) {
	var updated *models.Engagement
	var counterpart uuid.UUID

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		e, err := s.getForUpdate(ctx, tx, engagementID)
		if err != nil {
			return err
		}
		if !e.HasParticipant(actorID) {
			return apperror.ErrForbidden
		}
		if err := e.Cancel(); err != nil {
			return err
		}
		if err := s.repo.UpdateState(ctx, tx, e); err != nil {
			return err
		}
		updated = e
		counterpart = e.CounterpartOf(actorID)
		return s.notifications.CreateTx(ctx, tx, &models.Notification{
			RecipientID:  counterpart,
			EngagementID: &e.ID,
			Kind:         models.NotificationCancelled,
			Message:      "El servicio contratado fue cancelado por la otra parte.",
		})
	})
	if err != nil {
		return nil, err
	}

	s.push(counterpart, "engagement.cancelled", updated)
	return updated, nil
}

// ConfirmFinalizedByClient registra la confirmación del cliente sobre un
// servicio ya finalizado. Repetir la confirmación no es un error.
func (s *EngagementService) ConfirmFinalizedByClient(ctx context.Context, engagementID, clientID uuid.UUID) (*models.Engagement, error) {
	var updated *models.Engagement

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		e, err := s.getForUpdate(ctx, tx, engagementID)
		if err != nil {
			return err
		}
		if !e.HasClient(clientID) {
			return apperror.ErrForbidden
		}
		if e.State != models.EngagementFinalized {
			return apperror.Newf(apperror.ErrCodeConflict,
				"solo se puede confirmar un servicio finalizado, no uno en estado '%s'", e.State)
		}
		if e.ClientConfirmedDone {
			updated = e
			return nil
		}
		e.ConfirmDoneByClient(time.Now())
		if err := s.repo.UpdateState(ctx, tx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Get devuelve el servicio si el usuario es parte de él.
func (s *EngagementService) Get(ctx context.Context, engagementID, userID uuid.UUID) (*models.Engagement, error) {
	e, err := s.repo.GetByID(ctx, engagementID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	if !e.HasParticipant(userID) {
		return nil, apperror.ErrForbidden
	}
	return e, nil
}

// EngagementView es un servicio contratado junto con los datos visibles
// de la contraparte.
type EngagementView struct {
	models.Engagement
	Counterpart *models.UserSummary `json:"counterpart,omitempty"`
	Listing     *models.Listing     `json:"listing,omitempty"`
}

// ListActiveByProvider devuelve los trabajos activos del proveedor
// (confirmados o en proceso), con el resumen de cada cliente.
func (s *EngagementService) ListActiveByProvider(ctx context.Context, providerID uuid.UUID) ([]EngagementView, error) {
	items, err := s.repo.ListActiveByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, items, providerID), nil
}

// ListFinalizedByProvider devuelve el historial de trabajos finalizados
// del proveedor.
func (s *EngagementService) ListFinalizedByProvider(ctx context.Context, providerID uuid.UUID) ([]EngagementView, error) {
	items, err := s.repo.ListFinalizedByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, items, providerID), nil
}

// ListByClient devuelve las contrataciones confirmadas del cliente.
func (s *EngagementService) ListByClient(ctx context.Context, clientID uuid.UUID) ([]EngagementView, error) {
	items, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, items, clientID), nil
}

// buildViews arma las vistas con la contraparte de cada servicio. Las
// fallas al resolver un resumen o una URL de foto no tumban el listado.
func (s *EngagementService) buildViews(ctx context.Context, items []models.Engagement, viewerID uuid.UUID) []EngagementView {
	views := make([]EngagementView, 0, len(items))
	for _, e := range items {
		view := EngagementView{Engagement: e}

		summary, err := s.users.GetSummary(ctx, e.CounterpartOf(viewerID))
		if err != nil {
			s.log.WithError(err).WithField("engagement_id", e.ID).
				Warn("engagement service: no se pudo resolver la contraparte")
		} else {
			s.resolvePhoto(summary)
			view.Counterpart = summary
		}

		if e.ListingID != nil && s.listings != nil {
			if listing, err := s.listings.GetByID(ctx, *e.ListingID); err == nil {
				view.Listing = listing
			}
		}

		views = append(views, view)
	}
	return views
}

// resolvePhoto convierte la llave de la foto en una URL temporal.
func (s *EngagementService) resolvePhoto(summary *models.UserSummary) {
	if summary.PhotoKey == nil || s.presigner == nil {
		return
	}
	url, err := s.presigner.PresignURL(*summary.PhotoKey, s.presignTTL)
	if err != nil {
		s.log.WithError(err).Warn("engagement service: no se pudo pre-firmar la foto de perfil")
		return
	}
	summary.PhotoURL = &url
}

func (s *EngagementService) getForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Engagement, error) {
	e, err := s.repo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return e, nil
}

func (s *EngagementService) mapNotFound(err error) error {
	if errors.Is(err, repository.ErrEngagementNotFound) {
		return apperror.ErrEngagementNotFound
	}
	return fmt.Errorf("engagement service: %w", err)
}

// push envía el aviso por WebSocket sin bloquear la operación.
func (s *EngagementService) push(userID uuid.UUID, event string, data interface{}) {
	if s.hub == nil {
		return
	}
	sideeffect.Run(s.log, "ws "+event, func() error {
		return s.hub.BroadcastToUser(userID, event, data)
	})
}
