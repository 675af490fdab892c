package repository

import (
	"context"
	"errors"
	"time"

	"skill-swap-backend/internal/models"
)

// ErrNoMatch is returned by conditional updates whose guard matched no record.
// Callers re-read the record to tell a missing record from a stale status.
var ErrNoMatch = errors.New("no record matched the update condition")

// ProfileUpdate holds the self-editable user fields
type ProfileUpdate struct {
	Name          string
	Email         string
	Location      string
	Bio           string
	SkillsOffered []string
	SkillsWanted  []string
	Availability  string
	IsPublic      bool
}

// UserSwapCounts are per-user swap counters used by the dashboard
type UserSwapCounts struct {
	Total     int
	Pending   int
	Completed int
}

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error)
	SetBanned(ctx context.Context, id string, banned bool) (*models.User, error)
	SetProfilePhoto(ctx context.Context, id, url string) error
	SetPushToken(ctx context.Context, id string, token *string) error
	ListPublic(ctx context.Context, excludeID, skill string) ([]*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (total int, active int, err error)
}

// SwapStore persists swaps
type SwapStore interface {
	Create(ctx context.Context, swap *models.Swap) error
	GetByID(ctx context.Context, id string) (*models.Swap, error)
	HasPendingBetween(ctx context.Context, userA, userB string) (bool, error)
	// Transition moves a swap from one status to another only if it is still in from
	Transition(ctx context.Context, id string, from, to models.SwapStatus) (*models.Swap, error)
	// Complete moves an accepted swap to completed and bumps both participants' swap counters
	Complete(ctx context.Context, id string, completedAt time.Time) (*models.Swap, error)
	// AttachFeedback stores feedback only on a completed swap without feedback
	// and applies its rating to revieweeID's running average atomically with it
	AttachFeedback(ctx context.Context, id, revieweeID string, feedback models.Feedback) (*models.Swap, *models.User, error)
	DeletePending(ctx context.Context, id, requesterID string) error
	ListByRequester(ctx context.Context, userID string) ([]*models.Swap, error)
	ListByTarget(ctx context.Context, userID string) ([]*models.Swap, error)
	ListRecentForUser(ctx context.Context, userID string, limit int) ([]*models.Swap, error)
	ListFeedbackReceived(ctx context.Context, userID string) ([]*models.Swap, error)
	ListAll(ctx context.Context) ([]*models.Swap, error)
	ListWithFeedback(ctx context.Context) ([]*models.Swap, error)
	CountForUser(ctx context.Context, userID string) (UserSwapCounts, error)
	Count(ctx context.Context) (int, error)
}

// ReportStore persists moderation reports
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	MarkInvestigating(ctx context.Context, id string) (*models.Report, error)
	// Resolve closes a report that is still pending or investigating
	Resolve(ctx context.Context, id string, status models.ReportStatus, notes, resolvedBy string, resolvedAt time.Time) (*models.Report, error)
	List(ctx context.Context) ([]*models.Report, error)
	CountByStatus(ctx context.Context, status models.ReportStatus) (int, error)
}

// MessageStore persists platform broadcasts
type MessageStore interface {
	Create(ctx context.Context, msg *models.PlatformMessage) error
	ListLatest(ctx context.Context, limit int) ([]*models.PlatformMessage, error)
}

// Stores groups the stores of one backend
type Stores struct {
	Users    UserStore
	Swaps    SwapStore
	Reports  ReportStore
	Messages MessageStore
	Ping     func(ctx context.Context) error
	Close    func()
}
