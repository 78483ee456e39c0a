package models

import (
	"time"

	"github.com/google/uuid"
)

// Límites de una reseña.
const (
	ReviewScoreMin  = 1
	ReviewScoreMax  = 5
	ReviewMaxImages = 5
)

// ReviewScores agrupa las cuatro calificaciones por rubro.
type ReviewScores struct {
	General     int `db:"score_general" json:"general"`
	Punctuality int `db:"score_punctuality" json:"punctuality"`
	Quality     int `db:"score_quality" json:"quality"`
	Value       int `db:"score_value" json:"value"`
}

// Review es la reseña emitida por el cliente para un servicio contratado.
// Es inmutable una vez creada y única por servicio.
type Review struct {
	ID             uuid.UUID `db:"id" json:"id"`
	EngagementID   uuid.UUID `db:"engagement_id" json:"engagement_id"`
	ClientID       uuid.UUID `db:"client_id" json:"client_id"`
	ProviderID     uuid.UUID `db:"provider_id" json:"provider_id"`
	ReviewScores
	Comment        *string   `db:"comment" json:"comment,omitempty"`
	Recommendation string    `db:"recommendation" json:"recommendation"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	Images []ReviewImage `db:"-" json:"images,omitempty"`
}

// ReviewImage es una imagen de evidencia adjunta a una reseña.
// Se guarda la llave del objeto en S3, nunca una URL pública.
type ReviewImage struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ReviewID   uuid.UUID `db:"review_id" json:"review_id"`
	ObjectKey  string    `db:"object_key" json:"-"`
	URL        string    `db:"-" json:"url,omitempty"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// ProviderRating resume las reseñas recibidas por un proveedor.
type ProviderRating struct {
	Average float64 `db:"average" json:"average"`
	Count   int     `db:"count" json:"count"`
}
