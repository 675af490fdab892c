package repository

import (
	"context"
	"fmt"

	"skill-swap-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository handles database operations for platform messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a platform message
func (r *MessageRepository) Create(ctx context.Context, msg *models.PlatformMessage) error {
	query := `
		INSERT INTO platform_messages (id, content, sent_by, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, msg.ID, msg.Content, msg.SentBy, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create platform message: %w", err)
	}
	return nil
}

// ListLatest returns the newest messages with the sender's name joined in
func (r *MessageRepository) ListLatest(ctx context.Context, limit int) ([]*models.PlatformMessage, error) {
	query := `
		SELECT m.id, m.content, m.sent_by, m.created_at, u.name
		FROM platform_messages m
		LEFT JOIN users u ON u.id = m.sent_by
		ORDER BY m.created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list platform messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.PlatformMessage
	for rows.Next() {
		var (
			msg  models.PlatformMessage
			name *string
		)
		if err := rows.Scan(&msg.ID, &msg.Content, &msg.SentBy, &msg.CreatedAt, &name); err != nil {
			return nil, fmt.Errorf("failed to scan platform message: %w", err)
		}
		if name != nil {
			msg.Sender = &models.UserSummary{ID: msg.SentBy, Name: *name}
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating platform messages: %w", err)
	}
	return messages, nil
}
