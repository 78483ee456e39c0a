package models

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de alerta que genera el ciclo de contratación.
const (
	NotificationHireConfirmed  = "contratacion_exitosa"
	NotificationHireRegistered = "contratacion_registrada"
	NotificationHireDeclined   = "contratacion_no_lograda"
	NotificationFinalized      = "servicio_finalizado"
	NotificationCancelled      = "servicio_cancelado"
	NotificationNewReport      = "nuevo_reporte"

	// Alertas del flujo de postulación a proveedor.
	NotificationApplicationApproved = "postulacion_aprobada"
	NotificationApplicationRejected = "postulacion_rechazada"
	NotificationSubscriptionActive  = "suscripcion_activa"
)

// Notification es una alerta dirigida a un único usuario, opcionalmente
// asociada a un servicio contratado. Solo se muta para marcarla leída.
type Notification struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	RecipientID  uuid.UUID  `db:"recipient_id" json:"recipient_id"`
	EngagementID *uuid.UUID `db:"engagement_id" json:"engagement_id,omitempty"`
	Kind         string     `db:"kind" json:"kind"`
	Message      string     `db:"message" json:"message"`
	Read         bool       `db:"read" json:"read"`
	SentAt       time.Time  `db:"sent_at" json:"sent_at"`
	ReadAt       *time.Time `db:"read_at" json:"read_at,omitempty"`
}
