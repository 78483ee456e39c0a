package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// GetByID obtiene una entidad por ID; evita duplicar el mismo SELECT en
// cada repositorio.
func GetByID[T any](ctx context.Context, db *sqlx.DB, table string, id interface{}, notFoundErr error) (*T, error) {
	var entity T
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = $1", table)

	if err := db.GetContext(ctx, &entity, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundErr
		}
		return nil, fmt.Errorf("get by id from %s: %w", table, err)
	}

	return &entity, nil
}

// WithTransaction ejecuta fn dentro de una transacción con manejo de
// rollback en error y en pánico. Toda transición de estado del servicio
// contratado y sus alertas asociadas pasan por una sola de estas
// transacciones: el límite transaccional único del ciclo de vida.
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// TxManager abstrae el límite transaccional para que los servicios puedan
// probarse con mocks sin una base real.
type TxManager interface {
	WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error
}

// SQLTxManager es el TxManager respaldado por la conexión real.
type SQLTxManager struct {
	db *sqlx.DB
}

// NewTxManager crea un TxManager sobre la conexión dada.
func NewTxManager(db *sqlx.DB) *SQLTxManager {
	return &SQLTxManager{db: db}
}

// WithTx implementa TxManager.
func (m *SQLTxManager) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	return WithTransaction(ctx, m.db, fn)
}
