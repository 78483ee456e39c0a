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
	ErrPlanNotFound         = errors.New("subscription plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// SubscriptionRepository persiste planes y suscripciones.
type SubscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// GetPlan devuelve un plan por identificador.
func (r *SubscriptionRepository) GetPlan(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	return common.GetByID[models.SubscriptionPlan](ctx, r.db, "subscription_plans", id, ErrPlanNotFound)
}

// ListPlans devuelve todos los planes disponibles.
func (r *SubscriptionRepository) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	if err := r.db.SelectContext(ctx, &plans, `SELECT * FROM subscription_plans ORDER BY price_cents`); err != nil {
		return nil, fmt.Errorf("subscription repository: list plans %w", err)
	}
	return plans, nil
}

// Create registra una suscripción pendiente asociada a la sesión de pago.
func (r *SubscriptionRepository) Create(ctx context.Context, s *models.Subscription) error {
	if err := r.db.QueryRowxContext(ctx, `
		INSERT INTO subscriptions (user_id, plan_id, session_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, s.UserID, s.PlanID, s.SessionID, s.Status).Scan(&s.ID, &s.CreatedAt); err != nil {
		return fmt.Errorf("subscription repository: create %w", err)
	}
	return nil
}

// GetBySessionID localiza la suscripción de una sesión de pago.
func (r *SubscriptionRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Subscription, error) {
	var s models.Subscription
	if err := r.db.GetContext(ctx, &s, `SELECT * FROM subscriptions WHERE session_id = $1`, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("subscription repository: get by session %w", err)
	}
	return &s, nil
}

// Activate marca la suscripción activa con su ventana de vigencia.
func (r *SubscriptionRepository) Activate(ctx context.Context, id uuid.UUID, durationDays int) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = $2, started_at = NOW(), expires_at = NOW() + make_interval(days => $3)
		WHERE id = $1
	`, id, models.SubscriptionActive, durationDays); err != nil {
		return fmt.Errorf("subscription repository: activate %w", err)
	}
	return nil
}

// Cancel marca la suscripción cancelada.
func (r *SubscriptionRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET status = $2 WHERE id = $1
	`, id, models.SubscriptionCancelled); err != nil {
		return fmt.Errorf("subscription repository: cancel %w", err)
	}
	return nil
}
