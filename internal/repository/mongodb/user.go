package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"skill-swap-backend/internal/apperr"
	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UserStore handles document operations for users
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore creates a new user store
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (s *UserStore) findOne(ctx context.Context, what string, filter any) (*models.User, error) {
	var doc userDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Wrap(apperr.KindNotFound, "user not found", err)
		}
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	return doc.model(), nil
}

func (s *UserStore) update(ctx context.Context, what, id string, update any) (*models.User, error) {
	var doc userDoc
	err := s.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, returnAfter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Wrap(apperr.KindNotFound, "user not found", err)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("Email already taken")
		}
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	return doc.model(), nil
}

func (s *UserStore) findMany(ctx context.Context, what string, filter any) ([]*models.User, error) {
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	users := make([]*models.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].model())
	}
	return users, nil
}

// Create creates a new user
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if _, err := s.coll.InsertOne(ctx, newUserDoc(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("User already exists with this email")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, "get user", bson.D{{Key: "_id", Value: id}})
}

// GetByEmail retrieves a user by email. Emails are stored normalized.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, "get user by email", bson.D{{Key: "email", Value: models.NormalizeEmail(email)}})
}

// GetByIDs retrieves the users with the given IDs keyed by ID
func (s *UserStore) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := s.findMany(ctx, "get users by ids", bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// UpdateProfile overwrites the self-editable fields of a user
func (s *UserStore) UpdateProfile(ctx context.Context, id string, update repository.ProfileUpdate) (*models.User, error) {
	return s.update(ctx, "update profile", id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: update.Name},
		{Key: "email", Value: update.Email},
		{Key: "location", Value: update.Location},
		{Key: "bio", Value: update.Bio},
		{Key: "skillsOffered", Value: nonNil(update.SkillsOffered)},
		{Key: "skillsWanted", Value: nonNil(update.SkillsWanted)},
		{Key: "availability", Value: update.Availability},
		{Key: "isPublic", Value: update.IsPublic},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
}

// SetBanned sets or clears the banned flag
func (s *UserStore) SetBanned(ctx context.Context, id string, banned bool) (*models.User, error) {
	return s.update(ctx, "update banned flag", id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "isBanned", Value: banned},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
}

// SetProfilePhoto stores the URL of the user's profile photo
func (s *UserStore) SetProfilePhoto(ctx context.Context, id, url string) error {
	_, err := s.update(ctx, "update profile photo", id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "profilePhoto", Value: url},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
	return err
}

// SetPushToken updates or clears the push token for a user
func (s *UserStore) SetPushToken(ctx context.Context, id string, token *string) error {
	update := bson.D{{Key: "$unset", Value: bson.D{{Key: "pushToken", Value: ""}}}}
	if token != nil {
		update = bson.D{{Key: "$set", Value: bson.D{{Key: "pushToken", Value: *token}}}}
	}
	if _, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update); err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

// applyRating recomputes the running average with an aggregation pipeline
// update, so the read and the write happen on the server in one step
func (s *UserStore) applyRating(ctx context.Context, id string, rating int) (*models.User, error) {
	nextCount := bson.D{{Key: "$add", Value: bson.A{"$totalRatings", 1}}}
	sum := bson.D{{Key: "$add", Value: bson.A{
		bson.D{{Key: "$multiply", Value: bson.A{"$averageRating", "$totalRatings"}}},
		float64(rating),
	}}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "averageRating", Value: bson.D{{Key: "$divide", Value: bson.A{sum, nextCount}}}},
			{Key: "totalRatings", Value: nextCount},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
	return s.update(ctx, "apply rating", id, pipeline)
}

// ListPublic lists visible, non-banned users other than excludeID,
// optionally only those offering skill
func (s *UserStore) ListPublic(ctx context.Context, excludeID, skill string) ([]*models.User, error) {
	filter := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}},
		{Key: "isPublic", Value: true},
		{Key: "isBanned", Value: false},
	}
	if skill != "" {
		filter = append(filter, bson.E{
			Key:   "skillsOffered",
			Value: bson.Regex{Pattern: regexp.QuoteMeta(skill), Options: "i"},
		})
	}
	return s.findMany(ctx, "list public users", filter)
}

// List lists every user, newest first
func (s *UserStore) List(ctx context.Context) ([]*models.User, error) {
	return s.findMany(ctx, "list users", bson.D{})
}

// Count returns the number of users and of non-banned users
func (s *UserStore) Count(ctx context.Context) (int, int, error) {
	total, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count users: %w", err)
	}
	active, err := s.coll.CountDocuments(ctx, bson.D{{Key: "isBanned", Value: false}})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return int(total), int(active), nil
}
