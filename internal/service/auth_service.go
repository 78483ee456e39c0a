package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/sideeffect"
	"github.com/easyhome-app/easyhome-backend/internal/repository"
	"github.com/easyhome-app/easyhome-backend/internal/storage"
	"github.com/easyhome-app/easyhome-backend/internal/validation"
)

// AuthStore describe las dependencias de autenticación sobre el
// almacenamiento de cuentas.
type AuthStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetRole(ctx context.Context, id uuid.UUID) (*models.Role, error)
	UpdatePhotoKey(ctx context.Context, id uuid.UUID, key *string) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

// AuthService encapsula registro, acceso y sesión de los usuarios.
type AuthService struct {
	repo       AuthStore
	tokens     *TokenManager
	objects    storage.ObjectStorage
	presignTTL time.Duration
	log        *logrus.Logger
}

// NewAuthService crea el servicio de autenticación.
func NewAuthService(repo AuthStore, tokens *TokenManager, objects storage.ObjectStorage, presignTTL time.Duration, log *logrus.Logger) *AuthService {
	return &AuthService{
		repo:       repo,
		tokens:     tokens,
		objects:    objects,
		presignTTL: presignTTL,
		log:        log,
	}
}

// RegisterInput contiene los datos de registro de una cuenta.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    *string
}

// LoginInput contiene las credenciales de acceso.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult es el resultado de un registro o acceso exitoso.
type AuthResult struct {
	User      *models.User `json:"user"`
	TokenPair *TokenPair   `json:"tokens"`
}

// Register crea una cuenta nueva con rol de cliente y emite sus tokens.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("el nombre", in.Name,
		validation.MinNameLength, validation.MaxNameLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: no se pudo procesar la contraseña: %w", err)
	}

	user := &models.User{
		Email:        validation.NormalizeEmail(in.Email),
		Name:         in.Name,
		Phone:        in.Phone,
		PasswordHash: string(passHash),
		Role:         models.RoleClient,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserDuplicate) {
			return nil, apperror.New(apperror.ErrCodeConflict, "el correo ya está registrado")
		}
		return nil, fmt.Errorf("auth service: %w", err)
	}

	pair, _, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	return &AuthResult{User: user, TokenPair: pair}, nil
}

// Login verifica las credenciales y emite un par de tokens nuevo.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, validation.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: %w", err)
	}
	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "la cuenta está desactivada")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	pair, _, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	sideeffect.Run(s.log, "registro de último acceso", func() error {
		return s.repo.TouchLastLogin(ctx, user.ID)
	})

	return &AuthResult{User: user, TokenPair: pair}, nil
}

// Refresh emite un par nuevo a partir de un refresh token válido.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth service: %w", err)
	}
	if !user.IsActive {
		return nil, apperror.New(apperror.ErrCodeForbidden, "la cuenta está desactivada")
	}

	pair, _, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	return &AuthResult{User: user, TokenPair: pair}, nil
}

// Profile es la cuenta con su rol autoritativo y su foto resuelta.
type Profile struct {
	User     *models.User `json:"user"`
	Role     *models.Role `json:"role"`
	PhotoURL *string      `json:"photo_url,omitempty"`
}

// Me devuelve el perfil del usuario autenticado. El rol se resuelve con
// la consulta etiquetada, no con la columna del token.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, fmt.Errorf("auth service: %w", err)
	}

	role, err := s.repo.GetRole(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	profile := &Profile{User: user, Role: role}
	if user.PhotoKey != nil && s.objects != nil {
		if url, err := s.objects.PresignURL(*user.PhotoKey, s.presignTTL); err == nil {
			profile.PhotoURL = &url
		}
	}
	return profile, nil
}

// UpdatePhoto sube la foto de perfil y guarda su llave. La foto anterior
// se elimina de mejor esfuerzo.
func (s *AuthService) UpdatePhoto(ctx context.Context, userID uuid.UUID, data []byte) (string, error) {
	mime, err := validation.SniffImage(data)
	if err != nil {
		return "", apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", apperror.ErrUserNotFound
		}
		return "", fmt.Errorf("auth service: %w", err)
	}

	key := fmt.Sprintf("profiles/%s/%s", userID, uuid.New())
	if _, err := s.objects.Put(ctx, key, data, mime); err != nil {
		return "", fmt.Errorf("auth service: %w", err)
	}
	if err := s.repo.UpdatePhotoKey(ctx, userID, &key); err != nil {
		return "", fmt.Errorf("auth service: %w", err)
	}

	if user.PhotoKey != nil {
		old := *user.PhotoKey
		sideeffect.Go(s.log, "limpieza de foto anterior "+old, func() error {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return s.objects.Delete(cleanupCtx, old)
		})
	}

	url, err := s.objects.PresignURL(key, s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("auth service: %w", err)
	}
	return url, nil
}
