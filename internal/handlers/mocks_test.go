package handlers

import (
	"context"

	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/services"

	"github.com/stretchr/testify/mock"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, in services.ProfileInput) (*models.User, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Browse(ctx context.Context, userID, skill string) ([]*models.PublicProfile, error) {
	args := m.Called(ctx, userID, skill)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PublicProfile), args.Error(1)
}

func (m *MockUserService) GetProfile(ctx context.Context, actorID, userID string) (*models.PublicProfile, error) {
	args := m.Called(ctx, actorID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublicProfile), args.Error(1)
}

func (m *MockUserService) Stats(ctx context.Context, user *models.User) (*models.UserStats, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}

func (m *MockUserService) FeedbackReceived(ctx context.Context, userID string) ([]*services.ReceivedFeedback, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*services.ReceivedFeedback), args.Error(1)
}

func (m *MockUserService) SetPushToken(ctx context.Context, userID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

type MockSwapService struct {
	mock.Mock
}

func (m *MockSwapService) swap(args mock.Arguments) (*models.Swap, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Swap), args.Error(1)
}

func (m *MockSwapService) RequestSwap(ctx context.Context, requesterID string, in services.RequestSwapInput) (*models.SwapView, error) {
	args := m.Called(ctx, requesterID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SwapView), args.Error(1)
}

func (m *MockSwapService) Accept(ctx context.Context, actorID, swapID string) (*models.Swap, error) {
	return m.swap(m.Called(ctx, actorID, swapID))
}

func (m *MockSwapService) Reject(ctx context.Context, actorID, swapID string) (*models.Swap, error) {
	return m.swap(m.Called(ctx, actorID, swapID))
}

func (m *MockSwapService) Complete(ctx context.Context, actorID, swapID string) (*models.Swap, error) {
	return m.swap(m.Called(ctx, actorID, swapID))
}

func (m *MockSwapService) Delete(ctx context.Context, actorID, swapID string) error {
	args := m.Called(ctx, actorID, swapID)
	return args.Error(0)
}

func (m *MockSwapService) SubmitFeedback(ctx context.Context, actorID, swapID string, rating int, comment string) (*models.Swap, error) {
	return m.swap(m.Called(ctx, actorID, swapID, rating, comment))
}

func (m *MockSwapService) Get(ctx context.Context, actorID, swapID string) (*models.SwapView, error) {
	args := m.Called(ctx, actorID, swapID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SwapView), args.Error(1)
}

func (m *MockSwapService) ListForUser(ctx context.Context, userID string) (*services.SwapList, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SwapList), args.Error(1)
}

func (m *MockSwapService) RecentActivity(ctx context.Context, userID string) ([]models.Activity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Activity), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) report(args mock.Arguments) (*models.Report, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReportService) FileReport(ctx context.Context, reporterID string, in services.FileReportInput) (*models.Report, error) {
	return m.report(m.Called(ctx, reporterID, in))
}

func (m *MockReportService) MarkInvestigating(ctx context.Context, adminID, reportID string) (*models.Report, error) {
	return m.report(m.Called(ctx, adminID, reportID))
}

func (m *MockReportService) ResolveReport(ctx context.Context, adminID, reportID string, status models.ReportStatus, notes string) (*models.Report, error) {
	return m.report(m.Called(ctx, adminID, reportID, status, notes))
}

func (m *MockReportService) ListReports(ctx context.Context) ([]*models.ReportView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReportView), args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminStats), args.Error(1)
}

func (m *MockAdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockAdminService) ListSwaps(ctx context.Context) ([]*models.SwapView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SwapView), args.Error(1)
}

func (m *MockAdminService) BanUser(ctx context.Context, adminID, userID string) (*models.User, error) {
	args := m.Called(ctx, adminID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAdminService) UnbanUser(ctx context.Context, adminID, userID string) (*models.User, error) {
	args := m.Called(ctx, adminID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAdminService) Broadcast(ctx context.Context, adminID, content string) (*models.PlatformMessage, error) {
	args := m.Called(ctx, adminID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformMessage), args.Error(1)
}

func (m *MockAdminService) Export(ctx context.Context, kind string) ([]byte, string, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) Latest(ctx context.Context) ([]*models.PlatformMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlatformMessage), args.Error(1)
}

type MockPhotoUploader struct {
	mock.Mock
}

func (m *MockPhotoUploader) GetUploadURL(ctx context.Context, userID, contentType string) (*services.UploadResponse, error) {
	args := m.Called(ctx, userID, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.UploadResponse), args.Error(1)
}

func (m *MockPhotoUploader) ConfirmProfilePhoto(ctx context.Context, userID, photoURL string) error {
	args := m.Called(ctx, userID, photoURL)
	return args.Error(0)
}
