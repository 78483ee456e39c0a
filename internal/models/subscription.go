package models

import (
	"time"

	"github.com/google/uuid"
)

// Estados de una suscripción de proveedor.
const (
	SubscriptionPending   = "pendiente"
	SubscriptionActive    = "activa"
	SubscriptionCancelled = "cancelada"
)

// SubscriptionPlan es un plan de pago para proveedores.
type SubscriptionPlan struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	PriceCents   int64     `db:"price_cents" json:"price_cents"`
	Currency     string    `db:"currency" json:"currency"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
}

// Subscription registra la contratación de un plan; el webhook de pagos la
// marca activa o cancelada.
type Subscription struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	UserID     uuid.UUID  `db:"user_id" json:"user_id"`
	PlanID     uuid.UUID  `db:"plan_id" json:"plan_id"`
	SessionID  string     `db:"session_id" json:"session_id"`
	Status     string     `db:"status" json:"status"`
	StartedAt  *time.Time `db:"started_at" json:"started_at,omitempty"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
