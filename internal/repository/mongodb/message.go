package mongodb

import (
	"context"
	"fmt"

	"skill-swap-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessageStore handles document operations for platform messages
type MessageStore struct {
	coll  *mongo.Collection
	users *UserStore
}

// NewMessageStore creates a new message store
func NewMessageStore(db *mongo.Database, users *UserStore) *MessageStore {
	return &MessageStore{coll: db.Collection(messagesCollection), users: users}
}

// Create appends a platform message
func (s *MessageStore) Create(ctx context.Context, msg *models.PlatformMessage) error {
	doc := messageDoc{ID: msg.ID, Content: msg.Content, SentBy: msg.SentBy, CreatedAt: msg.CreatedAt}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create platform message: %w", err)
	}
	return nil
}

// ListLatest returns the newest messages with the sender's name filled in
func (s *MessageStore) ListLatest(ctx context.Context, limit int) ([]*models.PlatformMessage, error) {
	cursor, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(newestFirst).SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to list platform messages: %w", err)
	}
	var docs []messageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode platform messages: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.SentBy)
	}
	senders, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	messages := make([]*models.PlatformMessage, 0, len(docs))
	for _, d := range docs {
		msg := &models.PlatformMessage{ID: d.ID, Content: d.Content, SentBy: d.SentBy, CreatedAt: d.CreatedAt}
		if u, ok := senders[d.SentBy]; ok {
			msg.Sender = &models.UserSummary{ID: u.ID, Name: u.Name}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
