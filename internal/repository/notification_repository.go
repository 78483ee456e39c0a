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

// ErrNotificationNotFound se devuelve cuando la alerta no existe.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository persiste las alertas del sistema. Es append-only:
// la única mutación permitida es marcar la alerta como leída.
type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const insertNotification = `
	INSERT INTO notifications (recipient_id, engagement_id, kind, message, read)
	VALUES ($1, $2, $3, $4, FALSE)
	RETURNING id, sent_at
`

// Create inserta una alerta fuera de transacción.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.QueryRowxContext(ctx, insertNotification,
		n.RecipientID, n.EngagementID, n.Kind, n.Message,
	).Scan(&n.ID, &n.SentAt); err != nil {
		return fmt.Errorf("notification repository: create %w", err)
	}
	return nil
}

// CreateTx inserta una alerta dentro de la transacción de una transición,
// para que estado y alerta se apliquen de forma atómica.
func (r *NotificationRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, n *models.Notification) error {
	if err := tx.QueryRowxContext(ctx, insertNotification,
		n.RecipientID, n.EngagementID, n.Kind, n.Message,
	).Scan(&n.ID, &n.SentAt); err != nil {
		return fmt.Errorf("notification repository: create tx %w", err)
	}
	return nil
}

// GetByID devuelve una alerta por identificador.
func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.GetContext(ctx, &n, `SELECT * FROM notifications WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("notification repository: get by id %w", err)
	}
	return &n, nil
}

// ListForUser devuelve las alertas del usuario, más recientes primero.
// Se filtran las alertas cuyo enlace a servicio contratado quedó colgando;
// las alertas sin enlace pasan siempre.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.SelectContext(ctx, &list, `
		SELECT n.* FROM notifications n
		LEFT JOIN engagements e ON e.id = n.engagement_id
		WHERE n.recipient_id = $1
		  AND (n.engagement_id IS NULL OR e.id IS NOT NULL)
		ORDER BY n.sent_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("notification repository: list for user %w", err)
	}
	return list, nil
}

// MarkRead marca la alerta como leída y estampa la fecha de lectura solo
// en la primera transición; remarcar una alerta leída no toca nada.
func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("notification repository: mark read %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("notification repository: mark read rows %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marca todas las alertas del usuario como leídas.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE recipient_id = $1 AND read = FALSE
	`, userID); err != nil {
		return fmt.Errorf("notification repository: mark all read %w", err)
	}
	return nil
}

// CountUnread cuenta las alertas no leídas del usuario.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = FALSE
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("notification repository: count unread %w", err)
	}
	return count, nil
}
