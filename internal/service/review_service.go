package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/sideeffect"
	"github.com/easyhome-app/easyhome-backend/internal/repository"
	"github.com/easyhome-app/easyhome-backend/internal/storage"
	"github.com/easyhome-app/easyhome-backend/internal/validation"
)

// ReviewStore describe la persistencia de reseñas.
type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	GetByEngagement(ctx context.Context, engagementID uuid.UUID) (*models.Review, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Review, error)
	GetProviderRating(ctx context.Context, providerID uuid.UUID) (*models.ProviderRating, error)
}

// EngagementReader es la lectura mínima del ciclo de vida que necesitan
// reseñas y reportes.
type EngagementReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error)
}

// ReviewService contiene la lógica de reseñas: una por servicio, solo
// del cliente y solo sobre servicios finalizados.
type ReviewService struct {
	repo        ReviewStore
	engagements EngagementReader
	objects     storage.ObjectStorage
	presignTTL  time.Duration
	log         *logrus.Logger
}

// NewReviewService crea el servicio de reseñas.
func NewReviewService(repo ReviewStore, engagements EngagementReader, objects storage.ObjectStorage, presignTTL time.Duration, log *logrus.Logger) *ReviewService {
	return &ReviewService{
		repo:        repo,
		engagements: engagements,
		objects:     objects,
		presignTTL:  presignTTL,
		log:         log,
	}
}

// ReviewImageUpload son los bytes crudos de una imagen de evidencia.
type ReviewImageUpload struct {
	Filename string
	Data     []byte
}

// SubmitReviewInput describe la reseña que envía el cliente.
type SubmitReviewInput struct {
	EngagementID   uuid.UUID
	ClientID       uuid.UUID
	Scores         models.ReviewScores
	Comment        *string
	Recommendation string
	Images         []ReviewImageUpload
}

// SubmitReview valida y registra la reseña. Si alguna imagen no es
// válida o hay más de las admitidas, la reseña completa se rechaza sin
// registrar nada.
func (s *ReviewService) SubmitReview(ctx context.Context, in SubmitReviewInput) (*models.Review, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	e, err := s.engagements.GetByID(ctx, in.EngagementID)
	if err != nil {
		if errors.Is(err, repository.ErrEngagementNotFound) {
			return nil, apperror.ErrEngagementNotFound
		}
		return nil, fmt.Errorf("review service: %w", err)
	}
	if !e.HasClient(in.ClientID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "solo el cliente del servicio puede dejar una reseña")
	}
	if e.State != models.EngagementFinalized {
		return nil, apperror.Newf(apperror.ErrCodeConflict,
			"solo se puede reseñar un servicio finalizado, no uno en estado '%s'", e.State)
	}

	// Subir las imágenes antes de insertar. Un duplicado detectado por la
	// base deja objetos huérfanos que se limpian mejor que una reseña sin
	// evidencia.
	uploaded := make([]models.ReviewImage, 0, len(in.Images))
	for _, img := range in.Images {
		mime, err := validation.SniffImage(img.Data)
		if err != nil {
			s.cleanupObjects(uploaded)
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		key := fmt.Sprintf("reviews/%s/%s", in.EngagementID, uuid.New())
		if _, err := s.objects.Put(ctx, key, img.Data, mime); err != nil {
			s.cleanupObjects(uploaded)
			return nil, fmt.Errorf("review service: %w", err)
		}
		uploaded = append(uploaded, models.ReviewImage{ObjectKey: key})
	}

	review := &models.Review{
		EngagementID:   in.EngagementID,
		ClientID:       in.ClientID,
		ProviderID:     e.ProviderID,
		ReviewScores:   in.Scores,
		Comment:        in.Comment,
		Recommendation: in.Recommendation,
		Images:         uploaded,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		s.cleanupObjects(uploaded)
		if errors.Is(err, repository.ErrReviewExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "ya existe una reseña para este servicio")
		}
		return nil, fmt.Errorf("review service: %w", err)
	}

	s.resolveImageURLs(review)
	return review, nil
}

// GetByEngagement devuelve la reseña de un servicio, si existe, para una
// de las partes.
func (s *ReviewService) GetByEngagement(ctx context.Context, engagementID, userID uuid.UUID) (*models.Review, error) {
	e, err := s.engagements.GetByID(ctx, engagementID)
	if err != nil {
		if errors.Is(err, repository.ErrEngagementNotFound) {
			return nil, apperror.ErrEngagementNotFound
		}
		return nil, fmt.Errorf("review service: %w", err)
	}
	if !e.HasParticipant(userID) {
		return nil, apperror.ErrForbidden
	}

	review, err := s.repo.GetByEngagement(ctx, engagementID)
	if err != nil {
		return nil, fmt.Errorf("review service: %w", err)
	}
	if review == nil {
		return nil, apperror.ErrReviewNotFound
	}
	s.resolveImageURLs(review)
	return review, nil
}

// ProviderReviews agrupa las reseñas de un proveedor con su calificación
// agregada.
type ProviderReviews struct {
	Reviews []models.Review        `json:"reviews"`
	Rating  *models.ProviderRating `json:"rating"`
}

// ListByProvider devuelve las reseñas públicas de un proveedor.
func (s *ReviewService) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) (*ProviderReviews, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	reviews, err := s.repo.ListByProvider(ctx, providerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("review service: %w", err)
	}
	rating, err := s.repo.GetProviderRating(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("review service: %w", err)
	}

	for i := range reviews {
		s.resolveImageURLs(&reviews[i])
	}
	return &ProviderReviews{Reviews: reviews, Rating: rating}, nil
}

func (s *ReviewService) validateInput(in SubmitReviewInput) error {
	for _, score := range []struct {
		name  string
		value int
	}{
		{"la calificación general", in.Scores.General},
		{"la calificación de puntualidad", in.Scores.Punctuality},
		{"la calificación de calidad", in.Scores.Quality},
		{"la calificación de precio", in.Scores.Value},
	} {
		if err := validation.ValidateScore(score.name, score.value, models.ReviewScoreMin, models.ReviewScoreMax); err != nil {
			return apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}

	if err := validation.ValidateRequired("la recomendación", in.Recommendation); err != nil {
		return apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if in.Comment != nil {
		if err := validation.ValidateLength("el comentario", *in.Comment, 0, validation.MaxCommentLength); err != nil {
			return apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}
	if len(in.Images) > models.ReviewMaxImages {
		return apperror.Newf(apperror.ErrCodeValidation,
			"se admiten como máximo %d imágenes por reseña", models.ReviewMaxImages)
	}
	return nil
}

// resolveImageURLs convierte las llaves de evidencia en URLs temporales.
func (s *ReviewService) resolveImageURLs(review *models.Review) {
	if s.objects == nil {
		return
	}
	for i := range review.Images {
		url, err := s.objects.PresignURL(review.Images[i].ObjectKey, s.presignTTL)
		if err != nil {
			s.log.WithError(err).WithField("review_id", review.ID).
				Warn("review service: no se pudo pre-firmar una imagen de evidencia")
			continue
		}
		review.Images[i].URL = url
	}
}

// cleanupObjects elimina los objetos ya subidos cuando la reseña no se
// concretó.
func (s *ReviewService) cleanupObjects(images []models.ReviewImage) {
	for _, img := range images {
		key := img.ObjectKey
		sideeffect.Go(s.log, "limpieza de imagen "+key, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return s.objects.Delete(ctx, key)
		})
	}
}
