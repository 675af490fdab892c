package services

import (
	"context"
	"testing"
	"time"

	"skill-swap-backend/internal/apperr"
	"skill-swap-backend/internal/metrics"
	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReportService() (*ReportService, *MockUserStore, *MockReportStore, *metrics.Metrics) {
	users := new(MockUserStore)
	reports := new(MockReportStore)
	m := metrics.New()
	svc := NewReportService(users, reports, nil, m)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return svc, users, reports, m
}

func testReport(status models.ReportStatus) *models.Report {
	return &models.Report{ID: "r1", ReporterID: "alice", ReportedUserID: "bob", Title: "spam", Description: "d", Status: status}
}

func TestFileReport(t *testing.T) {
	ctx := context.Background()
	svc, users, reports, m := newReportService()

	users.On("GetByID", ctx, "bob").Return(testUser("bob", "Bob"), nil)
	reports.On("Create", ctx, mock.MatchedBy(func(r *models.Report) bool {
		return r.Status == models.ReportPending && r.Title == "Spam" && r.ReporterID == "alice"
	})).Return(nil)

	report, err := svc.FileReport(ctx, "alice", FileReportInput{ReportedUserID: "bob", Title: " Spam ", Description: "sends links"})

	require.NoError(t, err)
	assert.Equal(t, "bob", report.ReportedUserID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsFiled))
	reports.AssertExpectations(t)
}

func TestFileReport_Rejects(t *testing.T) {
	ctx := context.Background()
	svc, users, reports, _ := newReportService()
	users.On("GetByID", ctx, "ghost").Return(nil, apperr.NotFound("User not found"))

	_, err := svc.FileReport(ctx, "alice", FileReportInput{ReportedUserID: "", Title: "t", Description: "d"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.FileReport(ctx, "alice", FileReportInput{ReportedUserID: "bob", Title: "", Description: "d"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.FileReport(ctx, "alice", FileReportInput{ReportedUserID: "alice", Title: "t", Description: "d"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidTarget))

	_, err = svc.FileReport(ctx, "alice", FileReportInput{ReportedUserID: "ghost", Title: "t", Description: "d"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	reports.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestResolveReport(t *testing.T) {
	ctx := context.Background()
	svc, _, reports, _ := newReportService()

	resolved := testReport(models.ReportResolved)
	reports.On("GetByID", ctx, "r1").Return(testReport(models.ReportInvestigating), nil)
	reports.On("Resolve", ctx, "r1", models.ReportResolved, "warned", "admin", svc.now()).Return(resolved, nil)

	report, err := svc.ResolveReport(ctx, "admin", "r1", models.ReportResolved, " warned ")

	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, report.Status)
	reports.AssertExpectations(t)
}

func TestResolveReport_Twice(t *testing.T) {
	ctx := context.Background()
	svc, _, reports, _ := newReportService()
	reports.On("GetByID", ctx, "r1").Return(testReport(models.ReportDismissed), nil)

	_, err := svc.ResolveReport(ctx, "admin", "r1", models.ReportResolved, "")

	assert.True(t, apperr.Is(err, apperr.KindInvalidStatus))
	assert.Equal(t, "Report is already dismissed", apperr.PublicMessage(err))
	reports.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveReport_ConcurrentResolution(t *testing.T) {
	ctx := context.Background()
	svc, _, reports, _ := newReportService()

	reports.On("GetByID", ctx, "r1").Return(testReport(models.ReportPending), nil).Once()
	reports.On("GetByID", ctx, "r1").Return(testReport(models.ReportResolved), nil).Once()
	reports.On("Resolve", ctx, "r1", models.ReportDismissed, "", "admin", mock.Anything).Return(nil, repository.ErrNoMatch)

	_, err := svc.ResolveReport(ctx, "admin", "r1", models.ReportDismissed, "")

	assert.True(t, apperr.Is(err, apperr.KindInvalidStatus))
	reports.AssertExpectations(t)
}

func TestResolveReport_BadStatus(t *testing.T) {
	svc, _, reports, _ := newReportService()

	for _, status := range []models.ReportStatus{models.ReportPending, models.ReportInvestigating, "closed"} {
		_, err := svc.ResolveReport(context.Background(), "admin", "r1", status, "")
		assert.True(t, apperr.Is(err, apperr.KindValidation), string(status))
	}
	reports.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestMarkInvestigating(t *testing.T) {
	ctx := context.Background()

	svc, _, reports, _ := newReportService()
	reports.On("GetByID", ctx, "r1").Return(testReport(models.ReportPending), nil)
	reports.On("MarkInvestigating", ctx, "r1").Return(testReport(models.ReportInvestigating), nil)
	report, err := svc.MarkInvestigating(ctx, "admin", "r1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportInvestigating, report.Status)

	svc, _, reports, _ = newReportService()
	reports.On("GetByID", ctx, "r1").Return(testReport(models.ReportInvestigating), nil)
	_, err = svc.MarkInvestigating(ctx, "admin", "r1")
	assert.True(t, apperr.Is(err, apperr.KindInvalidStatus))
}

func TestListReports(t *testing.T) {
	ctx := context.Background()
	svc, users, reports, _ := newReportService()

	reports.On("List", ctx).Return([]*models.Report{testReport(models.ReportPending)}, nil)
	users.On("GetByIDs", ctx, []string{"alice", "bob"}).Return(map[string]*models.User{
		"alice": testUser("alice", "Alice"),
	}, nil)

	views, err := svc.ListReports(ctx)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Alice", views[0].Reporter.Name)
	assert.Nil(t, views[0].ReportedUser)
}
