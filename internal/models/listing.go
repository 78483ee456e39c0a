package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing es una publicación de servicio de un proveedor. Un servicio
// contratado puede originarse en una publicación concreta o sin ella.
type Listing struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ProviderID  uuid.UUID `db:"provider_id" json:"provider_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	Category    string    `db:"category" json:"category"`
	Price       *float64  `db:"price" json:"price,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
