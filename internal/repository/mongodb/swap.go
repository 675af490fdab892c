package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skill-swap-backend/internal/apperr"
	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SwapStore handles document operations for swaps
type SwapStore struct {
	coll  *mongo.Collection
	users *UserStore
}

// NewSwapStore creates a new swap store
func NewSwapStore(db *mongo.Database, users *UserStore) *SwapStore {
	return &SwapStore{coll: db.Collection(swapsCollection), users: users}
}

func participantOf(userID string) bson.E {
	return bson.E{Key: "$or", Value: bson.A{
		bson.D{{Key: "requester", Value: userID}},
		bson.D{{Key: "target", Value: userID}},
	}}
}

var hasFeedback = bson.E{Key: "feedback.rating", Value: bson.D{{Key: "$gt", Value: 0}}}

func (s *SwapStore) findMany(ctx context.Context, what string, filter any, opts *options.FindOptionsBuilder) ([]*models.Swap, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	var docs []swapDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode swaps: %w", err)
	}
	swaps := make([]*models.Swap, 0, len(docs))
	for i := range docs {
		swaps = append(swaps, docs[i].model())
	}
	return swaps, nil
}

// guardedUpdate applies update only when filter still matches, returning
// repository.ErrNoMatch otherwise
func (s *SwapStore) guardedUpdate(ctx context.Context, what string, filter, update any) (*models.Swap, error) {
	var doc swapDoc
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, returnAfter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNoMatch
		}
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	return doc.model(), nil
}

// Create creates a new swap. The partial unique index on pairKey rejects a
// second pending swap between the same two users.
func (s *SwapStore) Create(ctx context.Context, swap *models.Swap) error {
	if _, err := s.coll.InsertOne(ctx, newSwapDoc(swap)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("There is already a pending request between you and this user")
		}
		return fmt.Errorf("failed to create swap: %w", err)
	}
	return nil
}

// GetByID retrieves a swap by ID
func (s *SwapStore) GetByID(ctx context.Context, id string) (*models.Swap, error) {
	var doc swapDoc
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Wrap(apperr.KindNotFound, "swap not found", err)
		}
		return nil, fmt.Errorf("failed to get swap: %w", err)
	}
	return doc.model(), nil
}

// HasPendingBetween checks for a pending swap between two users in either direction
func (s *SwapStore) HasPendingBetween(ctx context.Context, userA, userB string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{
		{Key: "pairKey", Value: pairKey(userA, userB)},
		{Key: "status", Value: string(models.SwapPending)},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check pending swaps: %w", err)
	}
	return n > 0, nil
}

// Transition updates the status only when the swap is still in from
func (s *SwapStore) Transition(ctx context.Context, id string, from, to models.SwapStatus) (*models.Swap, error) {
	return s.guardedUpdate(ctx, "transition swap",
		bson.D{{Key: "_id", Value: id}, {Key: "status", Value: string(from)}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: string(to)},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	)
}

// inTransaction runs fn in a multi-document transaction. The server must be
// a replica set member.
func (s *SwapStore) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

// Complete marks an accepted swap completed and bumps both participants'
// counters in one transaction
func (s *SwapStore) Complete(ctx context.Context, id string, completedAt time.Time) (*models.Swap, error) {
	var swap *models.Swap
	err := s.inTransaction(ctx, func(ctx context.Context) error {
		var err error
		swap, err = s.guardedUpdate(ctx, "complete swap",
			bson.D{{Key: "_id", Value: id}, {Key: "status", Value: string(models.SwapAccepted)}},
			bson.D{{Key: "$set", Value: bson.D{
				{Key: "status", Value: string(models.SwapCompleted)},
				{Key: "completedDate", Value: completedAt},
				{Key: "updatedAt", Value: time.Now().UTC()},
			}}},
		)
		if err != nil {
			return err
		}

		result, err := s.users.coll.UpdateMany(ctx,
			bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{swap.RequesterID, swap.TargetID}}}}},
			bson.D{{Key: "$inc", Value: bson.D{{Key: "totalSwaps", Value: 1}}}},
		)
		if err != nil {
			return fmt.Errorf("failed to increment swap counts: %w", err)
		}
		if result.ModifiedCount != 2 {
			return fmt.Errorf("failed to increment swap counts: %d of 2 users updated", result.ModifiedCount)
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
func (s *SwapStore) AttachFeedback(ctx context.Context, id, revieweeID string, feedback models.Feedback) (*models.Swap, *models.User, error) {
	var (
		swap     *models.Swap
		reviewee *models.User
	)
	err := s.inTransaction(ctx, func(ctx context.Context) error {
		var err error
		swap, err = s.guardedUpdate(ctx, "attach feedback",
			bson.D{
				{Key: "_id", Value: id},
				{Key: "status", Value: string(models.SwapCompleted)},
				{Key: "feedback.rating", Value: bson.D{{Key: "$not", Value: bson.D{{Key: "$gt", Value: 0}}}}},
			},
			bson.D{{Key: "$set", Value: bson.D{
				{Key: "feedback", Value: feedbackDoc{
					Rating:    feedback.Rating,
					Comment:   feedback.Comment,
					Reviewer:  feedback.ReviewerID,
					CreatedAt: feedback.CreatedAt,
				}},
				{Key: "updatedAt", Value: time.Now().UTC()},
			}}},
		)
		if err != nil {
			return err
		}

		reviewee, err = s.users.applyRating(ctx, revieweeID, feedback.Rating)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return swap, reviewee, nil
}

// DeletePending deletes a swap that is still pending and owned by requesterID
func (s *SwapStore) DeletePending(ctx context.Context, id, requesterID string) error {
	result, err := s.coll.DeleteOne(ctx, bson.D{
		{Key: "_id", Value: id},
		{Key: "requester", Value: requesterID},
		{Key: "status", Value: string(models.SwapPending)},
	})
	if err != nil {
		return fmt.Errorf("failed to delete swap: %w", err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNoMatch
	}
	return nil
}

// ListByRequester lists swaps sent by a user, newest first
func (s *SwapStore) ListByRequester(ctx context.Context, userID string) ([]*models.Swap, error) {
	return s.findMany(ctx, "list sent swaps", bson.D{{Key: "requester", Value: userID}},
		options.Find().SetSort(newestFirst))
}

// ListByTarget lists swaps received by a user, newest first
func (s *SwapStore) ListByTarget(ctx context.Context, userID string) ([]*models.Swap, error) {
	return s.findMany(ctx, "list received swaps", bson.D{{Key: "target", Value: userID}},
		options.Find().SetSort(newestFirst))
}

// ListRecentForUser lists the latest swaps a user takes part in
func (s *SwapStore) ListRecentForUser(ctx context.Context, userID string, limit int) ([]*models.Swap, error) {
	return s.findMany(ctx, "list recent swaps", bson.D{participantOf(userID)},
		options.Find().SetSort(newestFirst).SetLimit(int64(limit)))
}

// ListFeedbackReceived lists completed swaps where the other participant rated userID
func (s *SwapStore) ListFeedbackReceived(ctx context.Context, userID string) ([]*models.Swap, error) {
	filter := bson.D{
		{Key: "status", Value: string(models.SwapCompleted)},
		hasFeedback,
		participantOf(userID),
		{Key: "feedback.reviewer", Value: bson.D{{Key: "$ne", Value: userID}}},
	}
	return s.findMany(ctx, "list received feedback", filter,
		options.Find().SetSort(bson.D{{Key: "feedback.createdAt", Value: -1}}))
}

// ListAll lists every swap, newest first
func (s *SwapStore) ListAll(ctx context.Context) ([]*models.Swap, error) {
	return s.findMany(ctx, "list swaps", bson.D{}, options.Find().SetSort(newestFirst))
}

// ListWithFeedback lists every swap carrying feedback
func (s *SwapStore) ListWithFeedback(ctx context.Context) ([]*models.Swap, error) {
	return s.findMany(ctx, "list swaps with feedback", bson.D{hasFeedback},
		options.Find().SetSort(bson.D{{Key: "feedback.createdAt", Value: -1}}))
}

// CountForUser counts the swaps a user takes part in
func (s *SwapStore) CountForUser(ctx context.Context, userID string) (repository.UserSwapCounts, error) {
	var c repository.UserSwapCounts
	counts := []struct {
		dst    *int
		status models.SwapStatus
	}{
		{&c.Total, ""},
		{&c.Pending, models.SwapPending},
		{&c.Completed, models.SwapCompleted},
	}
	for _, q := range counts {
		filter := bson.D{participantOf(userID)}
		if q.status != "" {
			filter = append(filter, bson.E{Key: "status", Value: string(q.status)})
		}
		n, err := s.coll.CountDocuments(ctx, filter)
		if err != nil {
			return repository.UserSwapCounts{}, fmt.Errorf("failed to count user swaps: %w", err)
		}
		*q.dst = int(n)
	}
	return c, nil
}

// Count counts all swaps
func (s *SwapStore) Count(ctx context.Context) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count swaps: %w", err)
	}
	return int(n), nil
}
