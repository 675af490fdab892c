package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"skill-swap-backend/internal/apperr"
	"skill-swap-backend/internal/cache"
	"skill-swap-backend/internal/metrics"
	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReportService files and moderates abuse reports
type ReportService struct {
	users   repository.UserStore
	reports repository.ReportStore
	cache   *cache.Cache
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewReportService creates a new report service
func NewReportService(users repository.UserStore, reports repository.ReportStore, c *cache.Cache, m *metrics.Metrics) *ReportService {
	return &ReportService{
		users:   users,
		reports: reports,
		cache:   c,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// FileReportInput is the body of a new report
type FileReportInput struct {
	ReportedUserID string `json:"reported_user_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
}

// FileReport records a complaint by reporterID against another user
func (s *ReportService) FileReport(ctx context.Context, reporterID string, in FileReportInput) (*models.Report, error) {
	reportedID := strings.TrimSpace(in.ReportedUserID)
	if reportedID == "" {
		return nil, apperr.Validation("Reported user is required")
	}
	if err := models.ValidateReport(in.Title, in.Description); err != nil {
		return nil, err
	}
	if reportedID == reporterID {
		return nil, apperr.InvalidTarget("Cannot report yourself")
	}
	if _, err := s.users.GetByID(ctx, reportedID); err != nil {
		return nil, err
	}

	now := s.now()
	report := &models.Report{
		ID:             uuid.New().String(),
		ReporterID:     reporterID,
		ReportedUserID: reportedID,
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Status:         models.ReportPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	s.metrics.ReportsFiled.Inc()
	invalidateStats(ctx, s.cache)

	log.Info().
		Str("report_id", report.ID).
		Str("reporter_id", reporterID).
		Str("reported_user_id", reportedID).
		Msg("Report filed")
	return report, nil
}

// MarkInvestigating moves a pending report to investigating
func (s *ReportService) MarkInvestigating(ctx context.Context, adminID, reportID string) (*models.Report, error) {
	current, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.ReportPending {
		return nil, apperr.InvalidStatus("Report is already " + string(current.Status))
	}

	report, err := s.reports.MarkInvestigating(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return nil, s.classifyMiss(ctx, reportID)
		}
		return nil, err
	}
	invalidateStats(ctx, s.cache)

	log.Info().Str("report_id", reportID).Str("admin_id", adminID).Msg("Report under investigation")
	return report, nil
}

// ResolveReport closes an open report as resolved or dismissed
func (s *ReportService) ResolveReport(ctx context.Context, adminID, reportID string, status models.ReportStatus, notes string) (*models.Report, error) {
	if status != models.ReportResolved && status != models.ReportDismissed {
		return nil, apperr.Validation("Invalid status provided")
	}

	current, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !current.Status.Open() {
		return nil, apperr.InvalidStatus("Report is already " + string(current.Status))
	}

	report, err := s.reports.Resolve(ctx, reportID, status, strings.TrimSpace(notes), adminID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return nil, s.classifyMiss(ctx, reportID)
		}
		return nil, err
	}
	invalidateStats(ctx, s.cache)

	log.Info().
		Str("report_id", reportID).
		Str("admin_id", adminID).
		Str("status", string(status)).
		Msg("Report resolved")
	return report, nil
}

func (s *ReportService) classifyMiss(ctx context.Context, reportID string) error {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return err
	}
	return apperr.InvalidStatus("Report is already " + string(report.Status))
}

// ListReports lists every report with reporter and reported user resolved
func (s *ReportService) ListReports(ctx context.Context) ([]*models.ReportView, error) {
	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(reports)*2)
	for _, r := range reports {
		ids = append(ids, r.ReporterID, r.ReportedUserID)
	}
	byID, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*models.ReportView, 0, len(reports))
	for _, r := range reports {
		view := &models.ReportView{Report: r}
		if u, ok := byID[r.ReporterID]; ok {
			view.Reporter = u.Summary()
		}
		if u, ok := byID[r.ReportedUserID]; ok {
			view.ReportedUser = u.Summary()
		}
		views = append(views, view)
	}
	return views, nil
}
