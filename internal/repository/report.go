package repository

import (
	"context"
	"fmt"
	"time"

	"skill-swap-backend/internal/apperr"
	"skill-swap-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const reportColumns = `
	id, reporter_id, reported_user_id, title, description, status, admin_notes,
	resolved_by, resolved_at, created_at, updated_at`

// ReportRepository handles database operations for moderation reports
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

func scanReport(row rowScanner) (*models.Report, error) {
	var report models.Report
	err := row.Scan(
		&report.ID, &report.ReporterID, &report.ReportedUserID, &report.Title, &report.Description,
		&report.Status, &report.AdminNotes, &report.ResolvedBy, &report.ResolvedAt,
		&report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Create creates a new report
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (id, reporter_id, reported_user_id, title, description, status,
			admin_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		report.ID, report.ReporterID, report.ReportedUserID, report.Title, report.Description,
		report.Status, report.AdminNotes, report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	report, err := scanReport(r.db.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.Wrap(apperr.KindNotFound, "report not found", err)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// MarkInvestigating moves a pending report to investigating
func (r *ReportRepository) MarkInvestigating(ctx context.Context, id string) (*models.Report, error) {
	query := `
		UPDATE reports SET status = 'investigating', updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + reportColumns
	report, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("failed to update report: %w", err)
	}
	return report, nil
}

// Resolve closes a pending or investigating report
func (r *ReportRepository) Resolve(ctx context.Context, id string, status models.ReportStatus, notes, resolvedBy string, resolvedAt time.Time) (*models.Report, error) {
	query := `
		UPDATE reports
		SET status = $2, admin_notes = $3, resolved_by = $4, resolved_at = $5, updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'investigating')
		RETURNING ` + reportColumns
	report, err := scanReport(r.db.QueryRow(ctx, query, id, status, notes, resolvedBy, resolvedAt))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("failed to resolve report: %w", err)
	}
	return report, nil
}

// List lists every report, newest first
func (r *ReportRepository) List(ctx context.Context) ([]*models.Report, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return reports, nil
}

// CountByStatus counts the reports in one status
func (r *ReportRepository) CountByStatus(ctx context.Context, status models.ReportStatus) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE status = $1`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return n, nil
}
