package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
	"github.com/easyhome-app/easyhome-backend/internal/repository"
)

type mockReviewStore struct {
	mock.Mock
}

func (m *mockReviewStore) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	if args.Error(0) == nil {
		review.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockReviewStore) GetByEngagement(ctx context.Context, engagementID uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, engagementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewStore) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]models.Review, error) {
	args := m.Called(ctx, providerID, limit, offset)
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *mockReviewStore) GetProviderRating(ctx context.Context, providerID uuid.UUID) (*models.ProviderRating, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).(*models.ProviderRating), args.Error(1)
}

type mockObjectStorage struct {
	mock.Mock
}

func (m *mockObjectStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockObjectStorage) PresignURL(key string, ttl time.Duration) (string, error) {
	args := m.Called(key, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockObjectStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Encabezado PNG válido para pasar la inspección de bytes mágicos.
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func goodScores() models.ReviewScores {
	return models.ReviewScores{General: 5, Punctuality: 4, Quality: 5, Value: 4}
}

func newReviewService(repo *mockReviewStore, engagements *mockEngagementStore, objects *mockObjectStorage) *ReviewService {
	return NewReviewService(repo, engagements, objects, time.Hour, logrus.New())
}

func TestReviewService_SubmitReview_Success(t *testing.T) {
	repo := new(mockReviewStore)
	engagements := new(mockEngagementStore)
	objects := new(mockObjectStorage)
	svc := newReviewService(repo, engagements, objects)
	ctx := context.Background()

	clientID := uuid.New()
	providerID := uuid.New()
	engagementID := uuid.New()

	engagements.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:         engagementID,
		ClientID:   clientID,
		ProviderID: providerID,
		State:      models.EngagementFinalized,
	}, nil)
	objects.On("Put", ctx, mock.AnythingOfType("string"), pngBytes, "image/png").Return("key", nil)
	objects.On("PresignURL", mock.AnythingOfType("string"), time.Hour).Return("https://example.com/img", nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(nil)

	review, err := svc.SubmitReview(ctx, SubmitReviewInput{
		EngagementID:   engagementID,
		ClientID:       clientID,
		Scores:         goodScores(),
		Recommendation: "Lo recomiendo sin dudas",
		Images:         []ReviewImageUpload{{Filename: "obra.png", Data: pngBytes}},
	})

	assert.NoError(t, err)
	assert.Equal(t, providerID, review.ProviderID)
	assert.Len(t, review.Images, 1)
	assert.Equal(t, "https://example.com/img", review.Images[0].URL)
	repo.AssertExpectations(t)
}

func TestReviewService_SubmitReview_InvalidScore(t *testing.T) {
	svc := newReviewService(new(mockReviewStore), new(mockEngagementStore), new(mockObjectStorage))

	for _, score := range []int{0, 6, -1} {
		scores := goodScores()
		scores.General = score
		_, err := svc.SubmitReview(context.Background(), SubmitReviewInput{
			EngagementID:   uuid.New(),
			ClientID:       uuid.New(),
			Scores:         scores,
			Recommendation: "ok",
		})
		assert.True(t, apperror.IsValidation(err), "puntaje %d", score)
	}
}

func TestReviewService_SubmitReview_TooManyImages(t *testing.T) {
	svc := newReviewService(new(mockReviewStore), new(mockEngagementStore), new(mockObjectStorage))

	images := make([]ReviewImageUpload, models.ReviewMaxImages+1)
	for i := range images {
		images[i] = ReviewImageUpload{Data: pngBytes}
	}

	// Una imagen de más rechaza la reseña completa, no solo el excedente.
	_, err := svc.SubmitReview(context.Background(), SubmitReviewInput{
		EngagementID:   uuid.New(),
		ClientID:       uuid.New(),
		Scores:         goodScores(),
		Recommendation: "ok",
		Images:         images,
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestReviewService_SubmitReview_NotFinalized(t *testing.T) {
	repo := new(mockReviewStore)
	engagements := new(mockEngagementStore)
	svc := newReviewService(repo, engagements, new(mockObjectStorage))
	ctx := context.Background()

	clientID := uuid.New()
	engagementID := uuid.New()

	engagements.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:         engagementID,
		ClientID:   clientID,
		ProviderID: uuid.New(),
		State:      models.EngagementInProgress,
	}, nil)

	_, err := svc.SubmitReview(ctx, SubmitReviewInput{
		EngagementID:   engagementID,
		ClientID:       clientID,
		Scores:         goodScores(),
		Recommendation: "ok",
	})

	assert.True(t, apperror.IsConflict(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_SubmitReview_NotTheClient(t *testing.T) {
	engagements := new(mockEngagementStore)
	svc := newReviewService(new(mockReviewStore), engagements, new(mockObjectStorage))
	ctx := context.Background()

	engagementID := uuid.New()
	engagements.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:         engagementID,
		ClientID:   uuid.New(),
		ProviderID: uuid.New(),
		State:      models.EngagementFinalized,
	}, nil)

	_, err := svc.SubmitReview(ctx, SubmitReviewInput{
		EngagementID:   engagementID,
		ClientID:       uuid.New(),
		Scores:         goodScores(),
		Recommendation: "ok",
	})

	assert.True(t, apperror.IsForbidden(err))
}

func TestReviewService_SubmitReview_Duplicate(t *testing.T) {
	repo := new(mockReviewStore)
	engagements := new(mockEngagementStore)
	svc := newReviewService(repo, engagements, new(mockObjectStorage))
	ctx := context.Background()

	clientID := uuid.New()
	engagementID := uuid.New()

	engagements.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:         engagementID,
		ClientID:   clientID,
		ProviderID: uuid.New(),
		State:      models.EngagementFinalized,
	}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(repository.ErrReviewExists)

	_, err := svc.SubmitReview(ctx, SubmitReviewInput{
		EngagementID:   engagementID,
		ClientID:       clientID,
		Scores:         goodScores(),
		Recommendation: "ok",
	})

	assert.True(t, apperror.IsConflict(err))
	assert.Contains(t, err.Error(), "ya existe una reseña")
}

func TestReviewService_ListByProvider(t *testing.T) {
	repo := new(mockReviewStore)
	svc := newReviewService(repo, new(mockEngagementStore), new(mockObjectStorage))
	ctx := context.Background()

	providerID := uuid.New()
	repo.On("ListByProvider", ctx, providerID, 20, 0).Return([]models.Review{
		{ID: uuid.New(), ProviderID: providerID},
	}, nil)
	repo.On("GetProviderRating", ctx, providerID).Return(&models.ProviderRating{Average: 4.5, Count: 1}, nil)

	result, err := svc.ListByProvider(ctx, providerID, 0, -3)

	assert.NoError(t, err)
	assert.Len(t, result.Reviews, 1)
	assert.InDelta(t, 4.5, result.Rating.Average, 0.001)
}
