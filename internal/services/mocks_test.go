package services

import (
	"context"
	"time"

	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*models.User), args.Error(1)
}

func (m *MockUserStore) UpdateProfile(ctx context.Context, id string, update repository.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) SetBanned(ctx context.Context, id string, banned bool) (*models.User, error) {
	args := m.Called(ctx, id, banned)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) SetProfilePhoto(ctx context.Context, id, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *MockUserStore) SetPushToken(ctx context.Context, id string, token *string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserStore) ListPublic(ctx context.Context, excludeID, skill string) ([]*models.User, error) {
	args := m.Called(ctx, excludeID, skill)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserStore) Count(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

type MockSwapStore struct {
	mock.Mock
}

func (m *MockSwapStore) swap(args mock.Arguments) (*models.Swap, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Swap), args.Error(1)
}

func (m *MockSwapStore) swaps(args mock.Arguments) ([]*models.Swap, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Swap), args.Error(1)
}

func (m *MockSwapStore) Create(ctx context.Context, swap *models.Swap) error {
	args := m.Called(ctx, swap)
	return args.Error(0)
}

func (m *MockSwapStore) GetByID(ctx context.Context, id string) (*models.Swap, error) {
	return m.swap(m.Called(ctx, id))
}

func (m *MockSwapStore) HasPendingBetween(ctx context.Context, userA, userB string) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *MockSwapStore) Transition(ctx context.Context, id string, from, to models.SwapStatus) (*models.Swap, error) {
	return m.swap(m.Called(ctx, id, from, to))
}

func (m *MockSwapStore) Complete(ctx context.Context, id string, completedAt time.Time) (*models.Swap, error) {
	return m.swap(m.Called(ctx, id, completedAt))
}

func (m *MockSwapStore) AttachFeedback(ctx context.Context, id, revieweeID string, feedback models.Feedback) (*models.Swap, *models.User, error) {
	args := m.Called(ctx, id, revieweeID, feedback)
	var (
		swap *models.Swap
		user *models.User
	)
	if v := args.Get(0); v != nil {
		swap = v.(*models.Swap)
	}
	if v := args.Get(1); v != nil {
		user = v.(*models.User)
	}
	return swap, user, args.Error(2)
}

func (m *MockSwapStore) DeletePending(ctx context.Context, id, requesterID string) error {
	args := m.Called(ctx, id, requesterID)
	return args.Error(0)
}

func (m *MockSwapStore) ListByRequester(ctx context.Context, userID string) ([]*models.Swap, error) {
	return m.swaps(m.Called(ctx, userID))
}

func (m *MockSwapStore) ListByTarget(ctx context.Context, userID string) ([]*models.Swap, error) {
	return m.swaps(m.Called(ctx, userID))
}

func (m *MockSwapStore) ListRecentForUser(ctx context.Context, userID string, limit int) ([]*models.Swap, error) {
	return m.swaps(m.Called(ctx, userID, limit))
}

func (m *MockSwapStore) ListFeedbackReceived(ctx context.Context, userID string) ([]*models.Swap, error) {
	return m.swaps(m.Called(ctx, userID))
}

func (m *MockSwapStore) ListAll(ctx context.Context) ([]*models.Swap, error) {
	return m.swaps(m.Called(ctx))
}

func (m *MockSwapStore) ListWithFeedback(ctx context.Context) ([]*models.Swap, error) {
	return m.swaps(m.Called(ctx))
}

func (m *MockSwapStore) CountForUser(ctx context.Context, userID string) (repository.UserSwapCounts, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(repository.UserSwapCounts), args.Error(1)
}

func (m *MockSwapStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) report(args mock.Arguments) (*models.Report, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReportStore) Create(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportStore) GetByID(ctx context.Context, id string) (*models.Report, error) {
	return m.report(m.Called(ctx, id))
}

func (m *MockReportStore) MarkInvestigating(ctx context.Context, id string) (*models.Report, error) {
	return m.report(m.Called(ctx, id))
}

func (m *MockReportStore) Resolve(ctx context.Context, id string, status models.ReportStatus, notes, resolvedBy string, resolvedAt time.Time) (*models.Report, error) {
	return m.report(m.Called(ctx, id, status, notes, resolvedBy, resolvedAt))
}

func (m *MockReportStore) List(ctx context.Context) ([]*models.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Report), args.Error(1)
}

func (m *MockReportStore) CountByStatus(ctx context.Context, status models.ReportStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) Create(ctx context.Context, msg *models.PlatformMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageStore) ListLatest(ctx context.Context, limit int) ([]*models.PlatformMessage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlatformMessage), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendToUser(userID string, message WSMessage) error {
	args := m.Called(userID, message)
	return args.Error(0)
}

func (m *MockNotifier) Broadcast(message WSMessage) {
	m.Called(message)
}

func (m *MockNotifier) IsOnline(userID string) bool {
	args := m.Called(userID)
	return args.Bool(0)
}

type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Send(ctx context.Context, deviceToken, title, body string) error {
	args := m.Called(ctx, deviceToken, title, body)
	return args.Error(0)
}
