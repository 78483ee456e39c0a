package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/easyhome-app/easyhome-backend/internal/models"
	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
)

type mockReportStore struct {
	mock.Mock
}

func (m *mockReportStore) Create(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	if args.Error(0) == nil {
		report.ID = uuid.New()
		report.Status = models.ReportStatusPending
	}
	return args.Error(0)
}

func (m *mockReportStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *mockReportStore) ListByReporter(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Report, error) {
	args := m.Called(ctx, reporterID, limit, offset)
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *mockReportStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Report, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *mockReportStore) UpdateStatus(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func newReportService(repo *mockReportStore, engagements *mockEngagementStore, notifications *mockNotificationStore, adminID uuid.UUID) *ReportService {
	return NewReportService(repo, engagements, notifications, adminID, logrus.New())
}

func TestReportService_FileReport_Success(t *testing.T) {
	repo := new(mockReportStore)
	engagements := new(mockEngagementStore)
	notifications := new(mockNotificationStore)
	adminID := uuid.New()
	svc := newReportService(repo, engagements, notifications, adminID)
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
	repo.On("Create", ctx, mock.AnythingOfType("*models.Report")).Return(nil)
	notifications.On("Create", ctx, mock.MatchedBy(func(n *models.Notification) bool {
		return n.RecipientID == adminID && n.Kind == models.NotificationNewReport
	})).Return(nil)

	report, err := svc.FileReport(ctx, FileReportInput{
		EngagementID: engagementID,
		ReporterID:   clientID,
		Motive:       "trabajo incompleto",
		Description:  "El proveedor dejó la instalación a medias y no volvió.",
	})

	assert.NoError(t, err)
	assert.Equal(t, providerID, report.ProviderID)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	notifications.AssertExpectations(t)
}

func TestReportService_FileReport_NotFinalized(t *testing.T) {
	repo := new(mockReportStore)
	engagements := new(mockEngagementStore)
	svc := newReportService(repo, engagements, new(mockNotificationStore), uuid.New())
	ctx := context.Background()

	clientID := uuid.New()
	engagementID := uuid.New()

	engagements.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:         engagementID,
		ClientID:   clientID,
		ProviderID: uuid.New(),
		State:      models.EngagementInProgress,
	}, nil)

	_, err := svc.FileReport(ctx, FileReportInput{
		EngagementID: engagementID,
		ReporterID:   clientID,
		Motive:       "trabajo incompleto",
		Description:  "El proveedor dejó la instalación a medias y no volvió.",
	})

	assert.True(t, apperror.IsConflict(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReportService_FileReport_NotTheClient(t *testing.T) {
	engagements := new(mockEngagementStore)
	svc := newReportService(new(mockReportStore), engagements, new(mockNotificationStore), uuid.New())
	ctx := context.Background()

	engagementID := uuid.New()
	providerID := uuid.New()
	engagements.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:         engagementID,
		ClientID:   uuid.New(),
		ProviderID: providerID,
		State:      models.EngagementFinalized,
	}, nil)

	// El proveedor no puede reportarse a sí mismo ni reportar al cliente.
	_, err := svc.FileReport(ctx, FileReportInput{
		EngagementID: engagementID,
		ReporterID:   providerID,
		Motive:       "queja",
		Description:  "Una descripción suficientemente larga del problema.",
	})

	assert.True(t, apperror.IsForbidden(err))
}

func TestReportService_FileReport_AdminAlertFailureDoesNotAbort(t *testing.T) {
	repo := new(mockReportStore)
	engagements := new(mockEngagementStore)
	notifications := new(mockNotificationStore)
	adminID := uuid.New()
	svc := newReportService(repo, engagements, notifications, adminID)
	ctx := context.Background()

	clientID := uuid.New()
	engagementID := uuid.New()

	engagements.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:         engagementID,
		ClientID:   clientID,
		ProviderID: uuid.New(),
		State:      models.EngagementFinalized,
	}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Report")).Return(nil)
	notifications.On("Create", ctx, mock.Anything).Return(assert.AnError)

	report, err := svc.FileReport(ctx, FileReportInput{
		EngagementID: engagementID,
		ReporterID:   clientID,
		Motive:       "cobro indebido",
		Description:  "Me cobraron materiales que nunca llegaron a instalarse.",
	})

	assert.NoError(t, err)
	assert.NotNil(t, report)
}

func TestReportService_Resolve(t *testing.T) {
	repo := new(mockReportStore)
	svc := newReportService(repo, new(mockEngagementStore), new(mockNotificationStore), uuid.New())
	ctx := context.Background()

	reportID := uuid.New()
	repo.On("GetByID", ctx, reportID).Return(&models.Report{
		ID:     reportID,
		Status: models.ReportStatusPending,
	}, nil)
	repo.On("UpdateStatus", ctx, mock.AnythingOfType("*models.Report")).Return(nil)

	comment := "Se contactó al proveedor y devolvió el cobro."
	report, err := svc.Resolve(ctx, ResolveInput{
		ReportID:     reportID,
		Status:       models.ReportStatusResolved,
		AdminComment: &comment,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, report.Status)
	assert.NotNil(t, report.ReviewedAt)
}

func TestReportService_Resolve_AlreadyClosed(t *testing.T) {
	repo := new(mockReportStore)
	svc := newReportService(repo, new(mockEngagementStore), new(mockNotificationStore), uuid.New())
	ctx := context.Background()

	reportID := uuid.New()
	repo.On("GetByID", ctx, reportID).Return(&models.Report{
		ID:     reportID,
		Status: models.ReportStatusDismissed,
	}, nil)

	_, err := svc.Resolve(ctx, ResolveInput{ReportID: reportID, Status: models.ReportStatusResolved})

	assert.True(t, apperror.IsConflict(err))
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestReportService_Resolve_InvalidStatus(t *testing.T) {
	svc := newReportService(new(mockReportStore), new(mockEngagementStore), new(mockNotificationStore), uuid.New())

	for _, status := range []string{"", "cerrado", models.ReportStatusPending} {
		_, err := svc.Resolve(context.Background(), ResolveInput{ReportID: uuid.New(), Status: status})
		assert.True(t, apperror.IsValidation(err), "estado %q", status)
	}
}
