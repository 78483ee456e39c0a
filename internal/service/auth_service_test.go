package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
	"github.com/easyhome-app/easyhome-backend/internal/repository"
)

type mockAuthStore struct {
	mock.Mock
}

func (m *mockAuthStore) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockAuthStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthStore) GetRole(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *mockAuthStore) UpdatePhotoKey(ctx context.Context, id uuid.UUID, key *string) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

func (m *mockAuthStore) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newAuthService(repo *mockAuthStore) *AuthService {
	tokens := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	return NewAuthService(repo, tokens, nil, time.Hour, logrus.New())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := new(mockAuthStore)
	svc := newAuthService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "Ana@Example.com",
		Password: "contrasena-segura",
		Name:     "Ana Pérez",
	})

	assert.NoError(t, err)
	assert.Equal(t, "ana@example.com", result.User.Email)
	assert.Equal(t, models.RoleClient, result.User.Role)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(result.User.PasswordHash), []byte("contrasena-segura")))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := new(mockAuthStore)
	svc := newAuthService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(repository.ErrUserDuplicate)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "ana@example.com",
		Password: "contrasena-segura",
		Name:     "Ana Pérez",
	})

	assert.True(t, apperror.IsConflict(err))
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc := newAuthService(new(mockAuthStore))

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "corta",
		Name:     "Ana Pérez",
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthStore)
	svc := newAuthService(repo)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("contrasena-segura"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	userID := uuid.New()
	repo.On("GetByEmail", ctx, "ana@example.com").Return(&models.User{
		ID:           userID,
		Email:        "ana@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleClient,
		IsActive:     true,
	}, nil)
	repo.On("TouchLastLogin", ctx, userID).Return(nil)

	result, err := svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "contrasena-segura"})

	assert.NoError(t, err)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthStore)
	svc := newAuthService(repo)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("la-correcta"), bcrypt.DefaultCost)
	repo.On("GetByEmail", ctx, "ana@example.com").Return(&models.User{
		Email:        "ana@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "otra"})

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := new(mockAuthStore)
	svc := newAuthService(repo)
	ctx := context.Background()

	// La respuesta no distingue cuenta inexistente de contraseña errada.
	repo.On("GetByEmail", ctx, "nadie@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Login(ctx, LoginInput{Email: "nadie@example.com", Password: "cualquiera"})

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tokens := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	user := &models.User{ID: uuid.New(), Role: models.RoleProvider}

	pair, refreshExp, err := tokens.GeneratePair(user)
	assert.NoError(t, err)
	assert.True(t, refreshExp.After(time.Now()))

	userID, role, err := tokens.ParseAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, models.RoleProvider, role)

	claims, err := tokens.ParseRefresh(pair.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
}
