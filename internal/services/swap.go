package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"skill-swap-backend/internal/apperr"
	"skill-swap-backend/internal/metrics"
	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const recentActivityLimit = 5

// SwapService runs the swap lifecycle: request, accept, reject, complete,
// delete and feedback. Every status change is a conditional store update, so
// a concurrent writer that got there first turns into InvalidState here.
type SwapService struct {
	users    repository.UserStore
	swaps    repository.SwapStore
	ratings  *RatingAggregator
	notifier Notifier
	push     PushSender
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewSwapService creates a new swap service
func NewSwapService(
	users repository.UserStore,
	swaps repository.SwapStore,
	ratings *RatingAggregator,
	notifier Notifier,
	push PushSender,
	m *metrics.Metrics,
) *SwapService {
	return &SwapService{
		users:    users,
		swaps:    swaps,
		ratings:  ratings,
		notifier: notifier,
		push:     push,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RequestSwapInput is the body of a swap request
type RequestSwapInput struct {
	TargetUserID    string     `json:"target_user_id"`
	Message         string     `json:"message"`
	SkillsRequested []string   `json:"skills_requested"`
	SkillsOffered   []string   `json:"skills_offered"`
	ScheduledDate   *time.Time `json:"scheduled_date"`
}

// UnmarshalJSON also accepts the camelCase field names of earlier web clients
func (in *RequestSwapInput) UnmarshalJSON(data []byte) error {
	type fields RequestSwapInput
	var aux struct {
		fields
		TargetUserIDCamel    string     `json:"targetUserId"`
		SkillsRequestedCamel []string   `json:"skillsRequested"`
		SkillsOfferedCamel   []string   `json:"skillsOffered"`
		ScheduledDateCamel   *time.Time `json:"scheduledDate"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*in = RequestSwapInput(aux.fields)
	if in.TargetUserID == "" {
		in.TargetUserID = aux.TargetUserIDCamel
	}
	if in.SkillsRequested == nil {
		in.SkillsRequested = aux.SkillsRequestedCamel
	}
	if in.SkillsOffered == nil {
		in.SkillsOffered = aux.SkillsOfferedCamel
	}
	if in.ScheduledDate == nil {
		in.ScheduledDate = aux.ScheduledDateCamel
	}
	return nil
}

// SwapList holds the swaps a user sent and received
type SwapList struct {
	Sent     []*models.SwapView `json:"sent"`
	Received []*models.SwapView `json:"received"`
}

// RequestSwap creates a pending swap from requesterID to the target user
func (s *SwapService) RequestSwap(ctx context.Context, requesterID string, in RequestSwapInput) (*models.SwapView, error) {
	targetID := strings.TrimSpace(in.TargetUserID)
	if targetID == "" {
		return nil, apperr.Validation("Invalid target user ID")
	}
	if err := models.ValidateSwapMessage(in.Message); err != nil {
		return nil, err
	}
	if targetID == requesterID {
		return nil, apperr.InvalidTarget("Cannot request swap with yourself")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.InvalidTarget("Target user not found").WithStatus(404)
		}
		return nil, err
	}
	if target.IsBanned {
		return nil, apperr.InvalidTarget("Target user not found").WithStatus(404)
	}

	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	pending, err := s.swaps.HasPendingBetween(ctx, requesterID, targetID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperr.Conflict("There is already a pending request between you and this user")
	}

	now := s.now()
	swap := &models.Swap{
		ID:              uuid.New().String(),
		RequesterID:     requesterID,
		TargetID:        targetID,
		Message:         strings.TrimSpace(in.Message),
		Status:          models.SwapPending,
		SkillsRequested: models.NormalizeSkills(in.SkillsRequested),
		SkillsOffered:   models.NormalizeSkills(in.SkillsOffered),
		ScheduledDate:   in.ScheduledDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	// the store's unique pending-pair index rejects a racing duplicate
	if err := s.swaps.Create(ctx, swap); err != nil {
		return nil, err
	}
	s.metrics.SwapTransitions.WithLabelValues(string(models.SwapPending)).Inc()

	view := &models.SwapView{Swap: swap, Requester: requester.Summary(), Target: target.Summary()}

	log.Info().
		Str("swap_id", swap.ID).
		Str("requester_id", requesterID).
		Str("target_id", targetID).
		Msg("Swap requested")

	s.notify(targetID, EventSwapRequested, view)
	if !s.notifier.IsOnline(targetID) && target.PushToken != nil {
		body := fmt.Sprintf("%s wants to swap skills with you", requester.Name)
		if err := s.push.Send(ctx, *target.PushToken, "New swap request", body); err != nil {
			log.Warn().Err(err).Str("user_id", targetID).Msg("Failed to send push notification")
		}
	}
	return view, nil
}

// Accept accepts a pending swap. Only the target may accept.
func (s *SwapService) Accept(ctx context.Context, actorID, swapID string) (*models.Swap, error) {
	swap, err := s.transition(ctx, swapID, models.SwapAccepted, "Request is no longer pending", func(sw *models.Swap) error {
		if sw.TargetID != actorID {
			return apperr.NotAuthorized("Not authorized to accept this request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(swap.RequesterID, EventSwapAccepted, swap)
	return swap, nil
}

// Reject rejects a pending swap. Only the target may reject.
func (s *SwapService) Reject(ctx context.Context, actorID, swapID string) (*models.Swap, error) {
	swap, err := s.transition(ctx, swapID, models.SwapRejected, "Request is no longer pending", func(sw *models.Swap) error {
		if sw.TargetID != actorID {
			return apperr.NotAuthorized("Not authorized to reject this request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(swap.RequesterID, EventSwapRejected, swap)
	return swap, nil
}

// Complete completes an accepted swap and counts it for both participants
func (s *SwapService) Complete(ctx context.Context, actorID, swapID string) (*models.Swap, error) {
	swap, err := s.transition(ctx, swapID, models.SwapCompleted, "Swap must be accepted before completion", func(sw *models.Swap) error {
		if !sw.IsParticipant(actorID) {
			return apperr.NotAuthorized("Not authorized to complete this swap")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(swap.Counterpart(actorID), EventSwapCompleted, swap)
	return swap, nil
}

// transition moves a swap to status to after authorize accepts it. The
// write is conditional on the status read here; if another writer changed
// it in between, the swap is re-read to report NotFound or InvalidState.
func (s *SwapService) transition(
	ctx context.Context,
	swapID string,
	to models.SwapStatus,
	invalidStateMsg string,
	authorize func(*models.Swap) error,
) (*models.Swap, error) {
	current, err := s.swaps.GetByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if err := authorize(current); err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(to) {
		return nil, apperr.InvalidState(invalidStateMsg)
	}

	var updated *models.Swap
	if to == models.SwapCompleted {
		updated, err = s.swaps.Complete(ctx, swapID, s.now())
	} else {
		updated, err = s.swaps.Transition(ctx, swapID, current.Status, to)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return nil, s.classifyMiss(ctx, swapID, invalidStateMsg)
		}
		return nil, err
	}
	s.metrics.SwapTransitions.WithLabelValues(string(to)).Inc()

	log.Info().
		Str("swap_id", swapID).
		Str("from", string(current.Status)).
		Str("to", string(to)).
		Msg("Swap status changed")
	return updated, nil
}

// classifyMiss explains why a conditional update matched nothing
func (s *SwapService) classifyMiss(ctx context.Context, swapID, invalidStateMsg string) error {
	if _, err := s.swaps.GetByID(ctx, swapID); err != nil {
		return err
	}
	return apperr.InvalidState(invalidStateMsg)
}

// Delete removes a pending swap. Only the requester may delete it.
func (s *SwapService) Delete(ctx context.Context, actorID, swapID string) error {
	swap, err := s.swaps.GetByID(ctx, swapID)
	if err != nil {
		return err
	}
	if swap.RequesterID != actorID {
		return apperr.NotAuthorized("Not authorized to delete this request")
	}
	if swap.Status != models.SwapPending {
		return apperr.InvalidState("Can only delete pending requests")
	}

	if err := s.swaps.DeletePending(ctx, swapID, actorID); err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return s.classifyMiss(ctx, swapID, "Can only delete pending requests")
		}
		return err
	}

	log.Info().Str("swap_id", swapID).Str("requester_id", actorID).Msg("Swap deleted")
	s.notify(swap.TargetID, EventSwapDeleted, map[string]string{"swap_id": swapID})
	return nil
}

// SubmitFeedback rates the other participant of a completed swap. Only one
// feedback is accepted per swap; the first participant to submit is the reviewer.
func (s *SwapService) SubmitFeedback(ctx context.Context, actorID, swapID string, rating int, comment string) (*models.Swap, error) {
	if err := models.ValidateFeedback(rating, comment); err != nil {
		return nil, err
	}

	swap, err := s.swaps.GetByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(actorID) {
		return nil, apperr.NotAuthorized("Not authorized to leave feedback for this swap")
	}
	if swap.Status != models.SwapCompleted {
		return nil, apperr.InvalidState("Can only leave feedback for completed swaps")
	}
	if swap.HasFeedback() {
		return nil, apperr.Conflict("Feedback already submitted for this swap")
	}

	feedback := models.Feedback{
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
		ReviewerID: actorID,
		CreatedAt:  s.now(),
	}
	revieweeID := swap.Counterpart(actorID)
	updated, err := s.ratings.Record(ctx, swapID, revieweeID, feedback)
	if err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			// another participant's feedback won the race
			return nil, apperr.Conflict("Feedback already submitted for this swap")
		}
		return nil, err
	}

	s.notify(revieweeID, EventFeedbackReceived, updated)
	return updated, nil
}

// Get returns one swap to one of its participants
func (s *SwapService) Get(ctx context.Context, actorID, swapID string) (*models.SwapView, error) {
	swap, err := s.swaps.GetByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(actorID) {
		return nil, apperr.NotAuthorized("Not authorized to view this swap")
	}
	views, err := s.resolve(ctx, []*models.Swap{swap})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// ListForUser lists the swaps userID sent and received, newest first
func (s *SwapService) ListForUser(ctx context.Context, userID string) (*SwapList, error) {
	sent, err := s.swaps.ListByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	received, err := s.swaps.ListByTarget(ctx, userID)
	if err != nil {
		return nil, err
	}

	sentViews, err := s.resolve(ctx, sent)
	if err != nil {
		return nil, err
	}
	receivedViews, err := s.resolve(ctx, received)
	if err != nil {
		return nil, err
	}
	return &SwapList{Sent: sentViews, Received: receivedViews}, nil
}

// RecentActivity summarises the latest swaps userID takes part in
func (s *SwapService) RecentActivity(ctx context.Context, userID string) ([]models.Activity, error) {
	swaps, err := s.swaps.ListRecentForUser(ctx, userID, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	views, err := s.resolve(ctx, swaps)
	if err != nil {
		return nil, err
	}

	activity := make([]models.Activity, 0, len(views))
	for _, v := range views {
		direction, other := "Request from", v.Requester
		if v.RequesterID == userID {
			direction, other = "Request to", v.Target
		}
		name := "unknown user"
		if other != nil {
			name = other.Name
		}
		activity = append(activity, models.Activity{
			Title:       "Swap " + string(v.Status),
			Description: direction + " " + name,
			Date:        v.CreatedAt,
		})
	}
	return activity, nil
}

// resolve attaches participant summaries with one user lookup
func (s *SwapService) resolve(ctx context.Context, swaps []*models.Swap) ([]*models.SwapView, error) {
	return resolveSwaps(ctx, s.users, swaps)
}

func (s *SwapService) notify(userID, event string, data interface{}) {
	if err := s.notifier.SendToUser(userID, WSMessage{Type: event, Data: data}); err != nil {
		log.Debug().Err(err).Str("user_id", userID).Str("type", event).Msg("Realtime event not delivered")
	}
}

// resolveSwaps looks up the participants of swaps in one query
func resolveSwaps(ctx context.Context, users repository.UserStore, swaps []*models.Swap) ([]*models.SwapView, error) {
	ids := make([]string, 0, len(swaps)*2)
	for _, sw := range swaps {
		ids = append(ids, sw.RequesterID, sw.TargetID)
	}
	byID, err := users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*models.SwapView, 0, len(swaps))
	for _, sw := range swaps {
		view := &models.SwapView{Swap: sw}
		if u, ok := byID[sw.RequesterID]; ok {
			view.Requester = u.Summary()
		}
		if u, ok := byID[sw.TargetID]; ok {
			view.Target = u.Summary()
		}
		views = append(views, view)
	}
	return views, nil
}
