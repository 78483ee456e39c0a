package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/payments"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/sideeffect"
	"github.com/easyhome-app/easyhome-backend/internal/repository"
)

// SubscriptionStore describe la persistencia de planes y suscripciones.
type SubscriptionStore interface {
	GetPlan(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error)
	ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error)
	Create(ctx context.Context, s *models.Subscription) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Subscription, error)
	Activate(ctx context.Context, id uuid.UUID, durationDays int) error
	Cancel(ctx context.Context, id uuid.UUID) error
}

// PaymentGateway es el contrato con la pasarela de cobros.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, in payments.CheckoutInput) (*payments.CheckoutSession, error)
	VerifyWebhook(payload []byte, signatureHeader string) (*payments.WebhookEvent, error)
}

// SubscriptionService administra los planes de pago de los proveedores.
type SubscriptionService struct {
	repo          SubscriptionStore
	gateway       PaymentGateway
	notifications *NotificationService
	log           *logrus.Logger
}

// NewSubscriptionService crea el servicio de suscripciones.
func NewSubscriptionService(repo SubscriptionStore, gateway PaymentGateway, notifications *NotificationService, log *logrus.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:          repo,
		gateway:       gateway,
		notifications: notifications,
		log:           log,
	}
}

// ListPlans devuelve los planes disponibles.
func (s *SubscriptionService) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	return s.repo.ListPlans(ctx)
}

// CheckoutResult es la suscripción pendiente junto con la URL de pago.
type CheckoutResult struct {
	Subscription *models.Subscription `json:"subscription"`
	PaymentURL   string               `json:"payment_url"`
}

// Subscribe crea la sesión de pago del plan y registra la suscripción
// pendiente. El webhook de la pasarela la activa después.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, planID uuid.UUID) (*CheckoutResult, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "plan de suscripción no encontrado")
		}
		return nil, fmt.Errorf("subscription service: %w", err)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payments.CheckoutInput{
		PlanName:    plan.Name,
		AmountCents: plan.PriceCents,
		Currency:    plan.Currency,
		Reference:   userID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("subscription service: %w", err)
	}

	sub := &models.Subscription{
		UserID:    userID,
		PlanID:    plan.ID,
		SessionID: session.ID,
		Status:    models.SubscriptionPending,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("subscription service: %w", err)
	}

	return &CheckoutResult{Subscription: sub, PaymentURL: session.URL}, nil
}

// HandleWebhook procesa un evento firmado de la pasarela. Un evento con
// firma inválida se rechaza; una sesión desconocida se ignora para que
// la pasarela no reintente indefinidamente.
func (s *SubscriptionService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.gateway.VerifyWebhook(payload, signatureHeader)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeUnauthorized, "firma de webhook inválida")
	}

	var object struct {
		ID            string `json:"id"`
		PaymentStatus string `json:"payment_status"`
	}
	if err := json.Unmarshal(event.Data.Object, &object); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeBadRequest, "evento de webhook malformado")
	}

	sub, err := s.repo.GetBySessionID(ctx, object.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			s.log.WithField("session_id", object.ID).
				Warn("subscription service: webhook para una sesión desconocida")
			return nil
		}
		return fmt.Errorf("subscription service: %w", err)
	}
	if sub.Status != models.SubscriptionPending {
		// Reintento de la pasarela sobre un evento ya procesado.
		return nil
	}

	switch event.Type {
	case "checkout.session.completed":
		if object.PaymentStatus != "paid" {
			return nil
		}
		plan, err := s.repo.GetPlan(ctx, sub.PlanID)
		if err != nil {
			return fmt.Errorf("subscription service: %w", err)
		}
		if err := s.repo.Activate(ctx, sub.ID, plan.DurationDays); err != nil {
			return fmt.Errorf("subscription service: %w", err)
		}
		sideeffect.Run(s.log, "alerta de suscripción activa", func() error {
			return s.notifications.Notify(ctx, &models.Notification{
				RecipientID: sub.UserID,
				Kind:        models.NotificationSubscriptionActive,
				Message:     fmt.Sprintf("Tu suscripción al plan %s quedó activa.", plan.Name),
			})
		})
	case "checkout.session.expired":
		if err := s.repo.Cancel(ctx, sub.ID); err != nil {
			return fmt.Errorf("subscription service: %w", err)
		}
	default:
		s.log.WithField("event_type", event.Type).
			Debug("subscription service: evento de webhook ignorado")
	}

	return nil
}
