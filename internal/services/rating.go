package services

import (
	"context"

	"skill-swap-backend/internal/apperr"
	"skill-swap-backend/internal/metrics"
	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// RatingAggregator records feedback and folds its rating into the reviewee's
// running average. The store writes both in one transaction, so a rating is
// applied exactly once per stored feedback.
type RatingAggregator struct {
	swaps   repository.SwapStore
	metrics *metrics.Metrics
}

// NewRatingAggregator creates a new rating aggregator
func NewRatingAggregator(swaps repository.SwapStore, m *metrics.Metrics) *RatingAggregator {
	return &RatingAggregator{swaps: swaps, metrics: m}
}

// Record attaches feedback to swapID and adds its rating to revieweeID's
// average. A swap that already has feedback yields repository.ErrNoMatch.
func (a *RatingAggregator) Record(ctx context.Context, swapID, revieweeID string, feedback models.Feedback) (*models.Swap, error) {
	if feedback.Rating < models.MinRating || feedback.Rating > models.MaxRating {
		return nil, apperr.Validation("Rating must be between 1 and 5")
	}

	swap, reviewee, err := a.swaps.AttachFeedback(ctx, swapID, revieweeID, feedback)
	if err != nil {
		return nil, err
	}
	a.metrics.RatingsApplied.Inc()

	log.Info().
		Str("swap_id", swapID).
		Str("user_id", revieweeID).
		Int("rating", feedback.Rating).
		Float64("average_rating", reviewee.AverageRating).
		Int("total_ratings", reviewee.TotalRatings).
		Msg("Rating applied")
	return swap, nil
}
