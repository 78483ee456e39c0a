package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles de la plataforma.
const (
	RoleClient   = "cliente"
	RoleProvider = "proveedor"
	RoleAdmin    = "admin"
)

// User describe la cuenta de un usuario de la plataforma.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	PhotoKey     *string    `db:"photo_key" json:"-"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Estados de una solicitud de proveedor.
const (
	ApplicationPending  = "pendiente"
	ApplicationApproved = "aprobado"
	ApplicationRejected = "rechazado"
)

// ProviderProfile es el perfil de proveedor de servicios; existe desde que
// el usuario postula y se activa cuando el administrador aprueba.
type ProviderProfile struct {
	UserID            uuid.UUID  `db:"user_id" json:"user_id"`
	FullName          string     `db:"full_name" json:"full_name"`
	Address           string     `db:"address" json:"address"`
	YearsExperience   int        `db:"years_experience" json:"years_experience"`
	Specializations   string     `db:"specializations" json:"specializations"`
	Description       *string    `db:"description" json:"description,omitempty"`
	ApplicationStatus string     `db:"application_status" json:"application_status"`
	AppliedAt         time.Time  `db:"applied_at" json:"applied_at"`
	ApprovedAt        *time.Time `db:"approved_at" json:"approved_at,omitempty"`
}

// WorkPhoto es la evidencia fotográfica de trabajos anteriores del proveedor.
type WorkPhoto struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ProviderID  uuid.UUID `db:"provider_id" json:"provider_id"`
	ObjectKey   string    `db:"object_key" json:"-"`
	URL         string    `db:"-" json:"url,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	UploadedAt  time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// Role es el resultado de la consulta de rol autoritativa: una variante
// etiquetada en lugar de sondear relaciones opcionales.
type Role struct {
	Kind     string           `json:"kind"`
	Provider *ProviderProfile `json:"provider,omitempty"`
}

// IsProvider indica si el rol corresponde a un proveedor aprobado.
func (r Role) IsProvider() bool {
	return r.Kind == RoleProvider && r.Provider != nil &&
		r.Provider.ApplicationStatus == ApplicationApproved
}

// UserSummary son los datos mínimos de una parte del servicio para listados.
type UserSummary struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Phone    *string   `db:"phone" json:"phone,omitempty"`
	PhotoKey *string   `db:"photo_key" json:"-"`
	PhotoURL *string   `db:"-" json:"photo_url,omitempty"`
}
