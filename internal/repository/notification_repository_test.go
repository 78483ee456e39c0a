package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func newNotificationRepo(t *testing.T) (*NotificationRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewNotificationRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestNotificationRepository_MarkRead_PreservesReadTimestamp(t *testing.T) {
	repo, mock := newNotificationRepo(t)
	id := uuid.New()

	// La fecha de lectura se estampa solo en la primera transición.
	mock.ExpectExec(regexp.QuoteMeta("read_at = COALESCE(read_at, NOW())")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkRead(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkRead_NotFound(t *testing.T) {
	repo, mock := newNotificationRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE notifications").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(context.Background(), id)

	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestNotificationRepository_ListForUser_FiltersDanglingEngagementLinks(t *testing.T) {
	repo, mock := newNotificationRepo(t)
	userID := uuid.New()
	keptID := uuid.New()

	rows := sqlmock.NewRows([]string{
		"id", "recipient_id", "engagement_id", "kind", "message", "read", "sent_at", "read_at",
	}).AddRow(keptID.String(), userID.String(), nil, "contratacion_registrada",
		"Tu contratación quedó registrada.", false, time.Now(), nil)

	// Las alertas sin enlace pasan siempre; las que apuntan a un servicio
	// ya borrado quedan fuera del listado.
	mock.ExpectQuery(regexp.QuoteMeta("(n.engagement_id IS NULL OR e.id IS NOT NULL)")).
		WithArgs(userID, 20, 0).
		WillReturnRows(rows)

	list, err := repo.ListForUser(context.Background(), userID, 20, 0)

	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, keptID, list[0].ID)
	assert.Nil(t, list[0].EngagementID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
