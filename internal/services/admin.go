package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"skill-swap-backend/internal/apperr"
	"skill-swap-backend/internal/cache"
	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const statsCacheKey = "admin:stats"

// Export kinds
const (
	ExportUsers    = "users"
	ExportSwaps    = "swaps"
	ExportFeedback = "feedback"
)

// AdminService serves the admin dashboard: counters, listings, bans,
// broadcasts and CSV exports
type AdminService struct {
	users    repository.UserStore
	swaps    repository.SwapStore
	reports  repository.ReportStore
	messages repository.MessageStore
	cache    *cache.Cache
	statsTTL time.Duration
	notifier Notifier
	now      func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(stores *repository.Stores, c *cache.Cache, statsTTL time.Duration, notifier Notifier) *AdminService {
	return &AdminService{
		users:    stores.Users,
		swaps:    stores.Swaps,
		reports:  stores.Reports,
		messages: stores.Messages,
		cache:    c,
		statsTTL: statsTTL,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// invalidateStats drops the cached admin counters
func invalidateStats(ctx context.Context, c *cache.Cache) {
	if err := c.Delete(ctx, statsCacheKey); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate stats cache")
	}
}

// Stats returns the platform counters, cached for a short TTL
func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	err := s.cache.Get(ctx, statsCacheKey, &stats)
	if err == nil {
		return &stats, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Msg("Stats cache read failed")
	}

	totalUsers, activeUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalSwaps, err := s.swaps.Count(ctx)
	if err != nil {
		return nil, err
	}
	pendingReports, err := s.reports.CountByStatus(ctx, models.ReportPending)
	if err != nil {
		return nil, err
	}

	stats = models.AdminStats{
		TotalUsers:     totalUsers,
		TotalSwaps:     totalSwaps,
		PendingReports: pendingReports,
		ActiveUsers:    activeUsers,
	}
	if err := s.cache.Set(ctx, statsCacheKey, stats, s.statsTTL); err != nil {
		log.Warn().Err(err).Msg("Stats cache write failed")
	}
	return &stats, nil
}

// ListUsers lists every user, newest first
func (s *AdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

// ListSwaps lists every swap with its participants resolved
func (s *AdminService) ListSwaps(ctx context.Context) ([]*models.SwapView, error) {
	swaps, err := s.swaps.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return resolveSwaps(ctx, s.users, swaps)
}

// BanUser bans userID. Admins cannot ban themselves.
func (s *AdminService) BanUser(ctx context.Context, adminID, userID string) (*models.User, error) {
	if adminID == userID {
		return nil, apperr.InvalidTarget("You cannot ban yourself")
	}
	return s.setBanned(ctx, adminID, userID, true)
}

// UnbanUser lifts a ban
func (s *AdminService) UnbanUser(ctx context.Context, adminID, userID string) (*models.User, error) {
	return s.setBanned(ctx, adminID, userID, false)
}

func (s *AdminService) setBanned(ctx context.Context, adminID, userID string, banned bool) (*models.User, error) {
	user, err := s.users.SetBanned(ctx, userID, banned)
	if err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache)

	log.Info().
		Str("admin_id", adminID).
		Str("user_id", userID).
		Bool("banned", banned).
		Msg("User ban status changed")
	return user, nil
}

// Broadcast stores a platform message and pushes it to connected users
func (s *AdminService) Broadcast(ctx context.Context, adminID, content string) (*models.PlatformMessage, error) {
	if err := models.ValidateBroadcast(content); err != nil {
		return nil, err
	}

	msg := &models.PlatformMessage{
		ID:        uuid.New().String(),
		Content:   strings.TrimSpace(content),
		SentBy:    adminID,
		CreatedAt: s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if admin, err := s.users.GetByID(ctx, adminID); err == nil {
		msg.Sender = &models.UserSummary{ID: admin.ID, Name: admin.Name}
	}
	s.notifier.Broadcast(WSMessage{Type: EventPlatformMessage, Data: msg})

	log.Info().Str("admin_id", adminID).Str("message_id", msg.ID).Msg("Platform message broadcast")
	return msg, nil
}

// Export renders one dataset as CSV. It returns the file name to offer.
func (s *AdminService) Export(ctx context.Context, kind string) ([]byte, string, error) {
	var (
		rows [][]string
		err  error
	)
	switch kind {
	case ExportUsers:
		rows, err = s.exportUsers(ctx)
	case ExportSwaps:
		rows, err = s.exportSwaps(ctx)
	case ExportFeedback:
		rows, err = s.exportFeedback(ctx)
	default:
		return nil, "", apperr.Validation("Invalid report type")
	}
	if err != nil {
		return nil, "", err
	}
	if len(rows) <= 1 {
		return nil, "", apperr.NotFound("No data found for this report type")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, "", fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), kind + "-report.csv", nil
}

func (s *AdminService) exportUsers(ctx context.Context) ([][]string, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	rows := [][]string{{"name", "email", "location", "skillsOffered", "skillsWanted", "totalSwaps", "averageRating", "createdAt"}}
	for _, u := range users {
		rows = append(rows, []string{
			u.Name,
			u.Email,
			orNA(u.Location),
			strings.Join(u.SkillsOffered, "; "),
			strings.Join(u.SkillsWanted, "; "),
			strconv.Itoa(u.TotalSwaps),
			strconv.FormatFloat(u.AverageRating, 'f', -1, 64),
			formatTime(u.CreatedAt),
		})
	}
	return rows, nil
}

func (s *AdminService) exportSwaps(ctx context.Context) ([][]string, error) {
	swaps, err := s.ListSwaps(ctx)
	if err != nil {
		return nil, err
	}
	rows := [][]string{{"requester", "target", "status", "createdAt", "completedAt", "rating"}}
	for _, sw := range swaps {
		completedAt, rating := "N/A", "N/A"
		if sw.CompletedDate != nil {
			completedAt = formatTime(*sw.CompletedDate)
		}
		if sw.HasFeedback() {
			rating = strconv.Itoa(sw.Feedback.Rating)
		}
		rows = append(rows, []string{
			summaryName(sw.Requester),
			summaryName(sw.Target),
			string(sw.Status),
			formatTime(sw.CreatedAt),
			completedAt,
			rating,
		})
	}
	return rows, nil
}

func (s *AdminService) exportFeedback(ctx context.Context) ([][]string, error) {
	swaps, err := s.swaps.ListWithFeedback(ctx)
	if err != nil {
		return nil, err
	}
	views, err := resolveSwaps(ctx, s.users, swaps)
	if err != nil {
		return nil, err
	}
	rows := [][]string{{"reviewer", "reviewee", "rating", "comment", "createdAt"}}
	for _, v := range views {
		reviewer, reviewee := v.Target, v.Requester
		if v.Feedback.ReviewerID == v.RequesterID {
			reviewer, reviewee = v.Requester, v.Target
		}
		rows = append(rows, []string{
			summaryName(reviewer),
			summaryName(reviewee),
			strconv.Itoa(v.Feedback.Rating),
			orNA(v.Feedback.Comment),
			formatTime(v.Feedback.CreatedAt),
		})
	}
	return rows, nil
}

func summaryName(u *models.UserSummary) string {
	if u == nil {
		return "N/A"
	}
	return orNA(u.Name)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
