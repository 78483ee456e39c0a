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
	ErrUserNotFound  = errors.New("user not found")
	ErrUserDuplicate = errors.New("user already exists")
)

// UserRepository persiste las cuentas de usuario.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserta una cuenta nueva.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO users (email, name, phone, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id, created_at, updated_at
	`,
		user.Email, user.Name, user.Phone, user.PasswordHash, user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return ErrUserDuplicate
		}
		return fmt.Errorf("user repository: create %w", err)
	}
	return nil
}

// GetByID devuelve un usuario por identificador.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.GetByID[models.User](ctx, r.db, "users", id, ErrUserNotFound)
}

// GetByEmail devuelve un usuario por correo.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = $1`, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}
	return &user, nil
}

// GetSummary devuelve los datos mínimos para listados.
func (r *UserRepository) GetSummary(ctx context.Context, id uuid.UUID) (*models.UserSummary, error) {
	var s models.UserSummary
	err := r.db.GetContext(ctx, &s, `
		SELECT id, name, phone, photo_key FROM users WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get summary %w", err)
	}
	return &s, nil
}

// GetRole es la consulta de rol autoritativa: devuelve la variante
// etiquetada del rol con el perfil de proveedor cuando corresponde, en
// lugar de que cada llamador sondee relaciones opcionales.
func (r *UserRepository) GetRole(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role := &models.Role{Kind: user.Role}
	if user.Role == models.RoleProvider {
		var profile models.ProviderProfile
		err := r.db.GetContext(ctx, &profile, `SELECT * FROM provider_profiles WHERE user_id = $1`, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Cuenta marcada proveedor sin perfil: inconsistencia de datos.
				return nil, fmt.Errorf("user repository: provider %s without profile", id)
			}
			return nil, fmt.Errorf("user repository: get role %w", err)
		}
		role.Provider = &profile
	}
	return role, nil
}

// UpdateRole cambia el rol de la cuenta.
func (r *UserRepository) UpdateRole(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, role string) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1
	`, id, role); err != nil {
		return fmt.Errorf("user repository: update role %w", err)
	}
	return nil
}

// UpdatePhotoKey guarda la llave S3 de la foto de perfil.
func (r *UserRepository) UpdatePhotoKey(ctx context.Context, id uuid.UUID, key *string) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE users SET photo_key = $2, updated_at = NOW() WHERE id = $1
	`, id, key); err != nil {
		return fmt.Errorf("user repository: update photo key %w", err)
	}
	return nil
}

// TouchLastLogin registra el último ingreso.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE users SET last_login_at = NOW() WHERE id = $1
	`, id); err != nil {
		return fmt.Errorf("user repository: touch last login %w", err)
	}
	return nil
}
