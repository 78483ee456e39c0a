package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/easyhome-app/easyhome-backend/internal/models"
)

var ErrEngagementNotFound = errors.New("engagement not found")

// EngagementRepository es el único escritor del estado de los servicios
// contratados.
type EngagementRepository struct {
	db *sqlx.DB
}

func NewEngagementRepository(db *sqlx.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// Create inserta un servicio recién contactado.
func (r *EngagementRepository) Create(ctx context.Context, e *models.Engagement) error {
	query := `
		INSERT INTO engagements (client_id, provider_id, listing_id, state, agreement_confirmed, contacted_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, contacted_at, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		e.ClientID, e.ProviderID, e.ListingID, e.State, e.AgreementConfirmed,
	).Scan(&e.ID, &e.ContactedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return fmt.Errorf("engagement repository: create %w", err)
	}
	return nil
}

// GetByID devuelve un servicio por su identificador.
func (r *EngagementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error) {
	var e models.Engagement
	if err := r.db.GetContext(ctx, &e, `SELECT * FROM engagements WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEngagementNotFound
		}
		return nil, fmt.Errorf("engagement repository: get by id %w", err)
	}
	return &e, nil
}

// GetForUpdate carga el servicio bloqueando la fila dentro de la
// transacción. Dos transiciones concurrentes sobre el mismo servicio se
// linearizan aquí: la segunda observa el estado ya cambiado.
func (r *EngagementRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Engagement, error) {
	var e models.Engagement
	if err := tx.GetContext(ctx, &e, `SELECT * FROM engagements WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEngagementNotFound
		}
		return nil, fmt.Errorf("engagement repository: get for update %w", err)
	}
	return &e, nil
}

// UpdateState persiste la transición dentro de la transacción.
func (r *EngagementRepository) UpdateState(ctx context.Context, tx *sqlx.Tx, e *models.Engagement) error {
	query := `
		UPDATE engagements
		SET state = $2,
		    agreement_confirmed = $3,
		    agreement_confirmed_at = $4,
		    finalized_at = $5,
		    client_confirmed_done = $6,
		    client_confirmed_done_at = $7,
		    updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query,
		e.ID, e.State, e.AgreementConfirmed, e.AgreementConfirmedAt,
		e.FinalizedAt, e.ClientConfirmedDone, e.ClientConfirmedDoneAt,
	); err != nil {
		return fmt.Errorf("engagement repository: update state %w", err)
	}
	return nil
}

// ListActiveByProvider devuelve los servicios confirmados o en proceso del
// proveedor, del contacto más reciente al más antiguo.
func (r *EngagementRepository) ListActiveByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Engagement, error) {
	var list []models.Engagement
	err := r.db.SelectContext(ctx, &list, `
		SELECT * FROM engagements
		WHERE provider_id = $1 AND state IN ($2, $3)
		ORDER BY contacted_at DESC
	`, providerID, models.EngagementConfirmed, models.EngagementInProgress)
	if err != nil {
		return nil, fmt.Errorf("engagement repository: list active %w", err)
	}
	return list, nil
}

// ListFinalizedByProvider devuelve el historial finalizado del proveedor,
// ordenado por fecha de finalización descendente.
func (r *EngagementRepository) ListFinalizedByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Engagement, error) {
	var list []models.Engagement
	err := r.db.SelectContext(ctx, &list, `
		SELECT * FROM engagements
		WHERE provider_id = $1 AND state = $2
		ORDER BY finalized_at DESC
	`, providerID, models.EngagementFinalized)
	if err != nil {
		return nil, fmt.Errorf("engagement repository: list finalized %w", err)
	}
	return list, nil
}

// ListByClient devuelve los servicios con acuerdo confirmado del cliente.
func (r *EngagementRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Engagement, error) {
	var list []models.Engagement
	err := r.db.SelectContext(ctx, &list, `
		SELECT * FROM engagements
		WHERE client_id = $1 AND agreement_confirmed = TRUE
		ORDER BY contacted_at DESC
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("engagement repository: list by client %w", err)
	}
	return list, nil
}
