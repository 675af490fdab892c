package repository

import (
	"context"
	"fmt"
	"time"

	"skill-swap-backend/internal/apperr"
	"skill-swap-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const swapColumns = `
	id, requester_id, target_id, message, status, skills_requested, skills_offered,
	scheduled_date, completed_date, feedback_rating, feedback_comment,
	feedback_reviewer_id, feedback_created_at, created_at, updated_at`

// SwapRepository handles database operations for swaps
type SwapRepository struct {
	db *pgxpool.Pool
}

// NewSwapRepository creates a new swap repository
func NewSwapRepository(db *pgxpool.Pool) *SwapRepository {
	return &SwapRepository{db: db}
}

func scanSwap(row rowScanner) (*models.Swap, error) {
	var (
		swap       models.Swap
		rating     *int16
		comment    *string
		reviewerID *string
		feedbackAt *time.Time
	)
	err := row.Scan(
		&swap.ID, &swap.RequesterID, &swap.TargetID, &swap.Message, &swap.Status,
		&swap.SkillsRequested, &swap.SkillsOffered, &swap.ScheduledDate, &swap.CompletedDate,
		&rating, &comment, &reviewerID, &feedbackAt, &swap.CreatedAt, &swap.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rating != nil {
		swap.Feedback = &models.Feedback{Rating: int(*rating)}
		if comment != nil {
			swap.Feedback.Comment = *comment
		}
		if reviewerID != nil {
			swap.Feedback.ReviewerID = *reviewerID
		}
		if feedbackAt != nil {
			swap.Feedback.CreatedAt = *feedbackAt
		}
	}
	return &swap, nil
}

func (r *SwapRepository) queryOne(ctx context.Context, db queryRower, what, query string, args ...any) (*models.Swap, error) {
	swap, err := scanSwap(db.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	return swap, nil
}

func (r *SwapRepository) queryMany(ctx context.Context, what, query string, args ...any) ([]*models.Swap, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	defer rows.Close()

	var swaps []*models.Swap
	for rows.Next() {
		swap, err := scanSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan swap: %w", err)
		}
		swaps = append(swaps, swap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating swaps: %w", err)
	}
	return swaps, nil
}

// Create creates a new swap. The partial unique index on the unordered
// participant pair rejects a second pending swap.
func (r *SwapRepository) Create(ctx context.Context, swap *models.Swap) error {
	query := `
		INSERT INTO swaps (id, requester_id, target_id, message, status, skills_requested,
			skills_offered, scheduled_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		swap.ID, swap.RequesterID, swap.TargetID, swap.Message, swap.Status,
		nonNil(swap.SkillsRequested), nonNil(swap.SkillsOffered), swap.ScheduledDate,
		swap.CreatedAt, swap.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "swaps_pending_pair_key") {
			return apperr.Conflict("There is already a pending request between you and this user")
		}
		return fmt.Errorf("failed to create swap: %w", err)
	}
	return nil
}

// GetByID retrieves a swap by ID
func (r *SwapRepository) GetByID(ctx context.Context, id string) (*models.Swap, error) {
	swap, err := r.queryOne(ctx, r.db, "get swap", `SELECT `+swapColumns+` FROM swaps WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.Wrap(apperr.KindNotFound, "swap not found", err)
		}
		return nil, err
	}
	return swap, nil
}

// HasPendingBetween checks for a pending swap between two users in either direction
func (r *SwapRepository) HasPendingBetween(ctx context.Context, userA, userB string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM swaps
			WHERE status = 'pending'
				AND ((requester_id = $1 AND target_id = $2) OR (requester_id = $2 AND target_id = $1))
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userA, userB).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pending swaps: %w", err)
	}
	return exists, nil
}

// Transition updates the status only when the swap is still in from
func (r *SwapRepository) Transition(ctx context.Context, id string, from, to models.SwapStatus) (*models.Swap, error) {
	query := `
		UPDATE swaps SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + swapColumns
	swap, err := r.queryOne(ctx, r.db, "transition swap", query, id, from, to)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNoMatch
		}
		return nil, err
	}
	return swap, nil
}

// Complete marks an accepted swap completed and increments both participants'
// swap counters in one transaction
func (r *SwapRepository) Complete(ctx context.Context, id string, completedAt time.Time) (*models.Swap, error) {
	var swap *models.Swap
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE swaps SET status = 'completed', completed_date = $2, updated_at = now()
			WHERE id = $1 AND status = 'accepted'
			RETURNING ` + swapColumns
		var err error
		swap, err = r.queryOne(ctx, tx, "complete swap", query, id, completedAt)
		if err != nil {
			if isNoRows(err) {
				return ErrNoMatch
			}
			return err
		}

		result, err := tx.Exec(ctx,
			`UPDATE users SET total_swaps = total_swaps + 1 WHERE id IN ($1, $2)`,
			swap.RequesterID, swap.TargetID,
		)
		if err != nil {
			return fmt.Errorf("failed to increment swap counts: %w", err)
		}
		if result.RowsAffected() != 2 {
			return fmt.Errorf("failed to increment swap counts: %d of 2 users updated", result.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return swap, nil
}

// AttachFeedback stores feedback on a completed swap that has none yet and
// folds its rating into the reviewee's running average in the same transaction
func (r *SwapRepository) AttachFeedback(ctx context.Context, id, revieweeID string, feedback models.Feedback) (*models.Swap, *models.User, error) {
	var (
		swap     *models.Swap
		reviewee *models.User
	)
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE swaps
			SET feedback_rating = $2, feedback_comment = $3, feedback_reviewer_id = $4,
				feedback_created_at = $5, updated_at = now()
			WHERE id = $1 AND status = 'completed' AND feedback_rating IS NULL
			RETURNING ` + swapColumns
		var err error
		swap, err = r.queryOne(ctx, tx, "attach feedback", query,
			id, int16(feedback.Rating), feedback.Comment, feedback.ReviewerID, feedback.CreatedAt,
		)
		if err != nil {
			if isNoRows(err) {
				return ErrNoMatch
			}
			return err
		}

		reviewee, err = applyRating(ctx, tx, revieweeID, feedback.Rating)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return swap, reviewee, nil
}

// DeletePending deletes a swap that is still pending and owned by requesterID
func (r *SwapRepository) DeletePending(ctx context.Context, id, requesterID string) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM swaps WHERE id = $1 AND requester_id = $2 AND status = 'pending'`,
		id, requesterID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete swap: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNoMatch
	}
	return nil
}

// ListByRequester lists swaps sent by a user, newest first
func (r *SwapRepository) ListByRequester(ctx context.Context, userID string) ([]*models.Swap, error) {
	return r.queryMany(ctx, "list sent swaps",
		`SELECT `+swapColumns+` FROM swaps WHERE requester_id = $1 ORDER BY created_at DESC`, userID)
}

// ListByTarget lists swaps received by a user, newest first
func (r *SwapRepository) ListByTarget(ctx context.Context, userID string) ([]*models.Swap, error) {
	return r.queryMany(ctx, "list received swaps",
		`SELECT `+swapColumns+` FROM swaps WHERE target_id = $1 ORDER BY created_at DESC`, userID)
}

// ListRecentForUser lists the latest swaps a user takes part in
func (r *SwapRepository) ListRecentForUser(ctx context.Context, userID string, limit int) ([]*models.Swap, error) {
	return r.queryMany(ctx, "list recent swaps", `
		SELECT `+swapColumns+` FROM swaps
		WHERE requester_id = $1 OR target_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
}

// ListFeedbackReceived lists completed swaps where the other participant rated userID
func (r *SwapRepository) ListFeedbackReceived(ctx context.Context, userID string) ([]*models.Swap, error) {
	return r.queryMany(ctx, "list received feedback", `
		SELECT `+swapColumns+` FROM swaps
		WHERE status = 'completed'
			AND feedback_rating IS NOT NULL
			AND (requester_id = $1 OR target_id = $1)
			AND feedback_reviewer_id <> $1
		ORDER BY feedback_created_at DESC`, userID)
}

// ListAll lists every swap, newest first
func (r *SwapRepository) ListAll(ctx context.Context) ([]*models.Swap, error) {
	return r.queryMany(ctx, "list swaps", `SELECT `+swapColumns+` FROM swaps ORDER BY created_at DESC`)
}

// ListWithFeedback lists every swap carrying feedback
func (r *SwapRepository) ListWithFeedback(ctx context.Context) ([]*models.Swap, error) {
	return r.queryMany(ctx, "list swaps with feedback",
		`SELECT `+swapColumns+` FROM swaps WHERE feedback_rating IS NOT NULL ORDER BY feedback_created_at DESC`)
}

// CountForUser counts the swaps a user takes part in
func (r *SwapRepository) CountForUser(ctx context.Context, userID string) (UserSwapCounts, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'completed')
		FROM swaps
		WHERE requester_id = $1 OR target_id = $1
	`
	var c UserSwapCounts
	if err := r.db.QueryRow(ctx, query, userID).Scan(&c.Total, &c.Pending, &c.Completed); err != nil {
		return UserSwapCounts{}, fmt.Errorf("failed to count user swaps: %w", err)
	}
	return c, nil
}

// Count counts all swaps
func (r *SwapRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM swaps`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count swaps: %w", err)
	}
	return n, nil
}
