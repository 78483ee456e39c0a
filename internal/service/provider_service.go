package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/easyhome-app/easyhome-backend/internal/identity"
	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/sideeffect"
	"github.com/easyhome-app/easyhome-backend/internal/repository"
	"github.com/easyhome-app/easyhome-backend/internal/repository/common"
	"github.com/easyhome-app/easyhome-backend/internal/storage"
	"github.com/easyhome-app/easyhome-backend/internal/validation"
)

// ProviderStore describe la persistencia de perfiles de proveedor.
type ProviderStore interface {
	CreateApplication(ctx context.Context, p *models.ProviderProfile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ProviderProfile, error)
	ListApplications(ctx context.Context, status string) ([]models.ProviderProfile, error)
	Approve(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error
	Delete(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error
	AddWorkPhoto(ctx context.Context, photo *models.WorkPhoto) error
	ListWorkPhotos(ctx context.Context, providerID uuid.UUID) ([]models.WorkPhoto, error)
}

// UserRoleStore es la escritura de roles sobre cuentas existentes.
type UserRoleStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateRole(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, role string) error
}

// ProviderService administra las postulaciones y perfiles de proveedor.
// El rol aprobado vive en dos lados: la columna local y el grupo del
// directorio de identidad.
type ProviderService struct {
	repo          ProviderStore
	users         UserRoleStore
	notifications *NotificationService
	objects       storage.ObjectStorage
	directory     identity.GroupDirectory
	providerGroup string
	tx            common.TxManager
	presignTTL    time.Duration
	log           *logrus.Logger
}

// NewProviderService crea el servicio de proveedores.
func NewProviderService(
	repo ProviderStore,
	users UserRoleStore,
	notifications *NotificationService,
	objects storage.ObjectStorage,
	directory identity.GroupDirectory,
	providerGroup string,
	tx common.TxManager,
	presignTTL time.Duration,
	log *logrus.Logger,
) *ProviderService {
	return &ProviderService{
		repo:          repo,
		users:         users,
		notifications: notifications,
		objects:       objects,
		directory:     directory,
		providerGroup: providerGroup,
		tx:            tx,
		presignTTL:    presignTTL,
		log:           log,
	}
}

// WorkPhotoUpload son los bytes crudos de una foto de trabajos anteriores.
type WorkPhotoUpload struct {
	Description *string
	Data        []byte
}

// ApplyInput describe la postulación a proveedor.
type ApplyInput struct {
	UserID          uuid.UUID
	FullName        string
	Address         string
	YearsExperience int
	Specializations string
	Description     *string
	WorkPhotos      []WorkPhotoUpload
}

// Apply registra la postulación del usuario con su evidencia fotográfica.
func (s *ProviderService) Apply(ctx context.Context, in ApplyInput) (*models.ProviderProfile, error) {
	if err := validation.ValidateLength("el nombre completo", in.FullName,
		validation.MinNameLength, validation.MaxNameLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateRequired("la dirección", in.Address); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("la dirección", in.Address, 0, validation.MaxAddressLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateRequired("las especializaciones", in.Specializations); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if len(strings.Split(in.Specializations, ",")) > validation.MaxSpecializations {
		return nil, apperror.Newf(apperror.ErrCodeValidation,
			"se admiten hasta %d especializaciones", validation.MaxSpecializations)
	}
	if in.YearsExperience < 0 || in.YearsExperience > validation.MaxYearsExperience {
		return nil, apperror.Newf(apperror.ErrCodeValidation,
			"los años de experiencia deben estar entre 0 y %d", validation.MaxYearsExperience)
	}

	profile := &models.ProviderProfile{
		UserID:          in.UserID,
		FullName:        in.FullName,
		Address:         in.Address,
		YearsExperience: in.YearsExperience,
		Specializations: in.Specializations,
		Description:     in.Description,
	}
	if err := s.repo.CreateApplication(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrProviderDuplicate) {
			return nil, apperror.New(apperror.ErrCodeConflict, "ya existe una postulación para este usuario")
		}
		return nil, fmt.Errorf("provider service: %w", err)
	}

	for _, upload := range in.WorkPhotos {
		mime, err := validation.SniffImage(upload.Data)
		if err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		key := fmt.Sprintf("providers/%s/%s", in.UserID, uuid.New())
		if _, err := s.objects.Put(ctx, key, upload.Data, mime); err != nil {
			return nil, fmt.Errorf("provider service: %w", err)
		}
		photo := &models.WorkPhoto{
			ProviderID:  in.UserID,
			ObjectKey:   key,
			Description: upload.Description,
		}
		if err := s.repo.AddWorkPhoto(ctx, photo); err != nil {
			return nil, fmt.Errorf("provider service: %w", err)
		}
	}

	return profile, nil
}

// ProviderView es el perfil de proveedor con sus fotos resueltas.
type ProviderView struct {
	models.ProviderProfile
	WorkPhotos []models.WorkPhoto `json:"work_photos"`
}

// GetProfile devuelve el perfil de proveedor con las URLs de sus fotos.
func (s *ProviderService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProviderView, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return nil, apperror.ErrProviderNotFound
		}
		return nil, fmt.Errorf("provider service: %w", err)
	}

	photos, err := s.repo.ListWorkPhotos(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("provider service: %w", err)
	}
	for i := range photos {
		url, err := s.objects.PresignURL(photos[i].ObjectKey, s.presignTTL)
		if err != nil {
			s.log.WithError(err).WithField("provider_id", userID).
				Warn("provider service: no se pudo pre-firmar una foto de trabajo")
			continue
		}
		photos[i].URL = url
	}

	return &ProviderView{ProviderProfile: *profile, WorkPhotos: photos}, nil
}

// ListApplications devuelve las postulaciones en el estado dado, para el
// panel de administración.
func (s *ProviderService) ListApplications(ctx context.Context, status string) ([]models.ProviderProfile, error) {
	if status == "" {
		status = models.ApplicationPending
	}
	switch status {
	case models.ApplicationPending, models.ApplicationApproved, models.ApplicationRejected:
	default:
		return nil, apperror.Newf(apperror.ErrCodeValidation, "estado de postulación desconocido: %s", status)
	}
	return s.repo.ListApplications(ctx, status)
}

// Approve aprueba la postulación: el perfil queda aprobado y el rol del
// usuario cambia a proveedor en la misma transacción. El alta en el
// grupo del directorio de identidad y la alerta al postulante son de
// mejor esfuerzo.
func (s *ProviderService) Approve(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return fmt.Errorf("provider service: %w", err)
	}

	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return apperror.ErrProviderNotFound
		}
		return fmt.Errorf("provider service: %w", err)
	}
	if profile.ApplicationStatus != models.ApplicationPending {
		return apperror.Newf(apperror.ErrCodeConflict,
			"la postulación ya fue revisada con estado '%s'", profile.ApplicationStatus)
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.Approve(ctx, tx, userID); err != nil {
			return err
		}
		return s.users.UpdateRole(ctx, tx, userID, models.RoleProvider)
	})
	if err != nil {
		return fmt.Errorf("provider service: %w", err)
	}

	if s.directory != nil {
		sideeffect.Run(s.log, "alta en grupo de proveedores", func() error {
			return s.directory.AddToGroup(ctx, user.Email, s.providerGroup)
		})
	}

	sideeffect.Run(s.log, "alerta de aprobación", func() error {
		return s.notifications.Notify(ctx, &models.Notification{
			RecipientID: userID,
			Kind:        models.NotificationApplicationApproved,
			Message:     "Tu postulación como proveedor fue aprobada. Ya puedes publicar servicios.",
		})
	})

	return nil
}

// Reject rechaza la postulación pendiente y elimina su evidencia.
func (s *ProviderService) Reject(ctx context.Context, userID uuid.UUID) error {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return apperror.ErrProviderNotFound
		}
		return fmt.Errorf("provider service: %w", err)
	}
	if profile.ApplicationStatus != models.ApplicationPending {
		return apperror.Newf(apperror.ErrCodeConflict,
			"la postulación ya fue revisada con estado '%s'", profile.ApplicationStatus)
	}

	photos, err := s.repo.ListWorkPhotos(ctx, userID)
	if err != nil {
		return fmt.Errorf("provider service: %w", err)
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.Delete(ctx, tx, userID)
	})
	if err != nil {
		return fmt.Errorf("provider service: %w", err)
	}

	for _, photo := range photos {
		key := photo.ObjectKey
		sideeffect.Go(s.log, "limpieza de foto "+key, func() error {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return s.objects.Delete(cleanupCtx, key)
		})
	}

	sideeffect.Run(s.log, "alerta de rechazo", func() error {
		return s.notifications.Notify(ctx, &models.Notification{
			RecipientID: userID,
			Kind:        models.NotificationApplicationRejected,
			Message:     "Tu postulación como proveedor fue rechazada. Puedes volver a postular con más información.",
		})
	})

	return nil
}
