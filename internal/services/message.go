package services

import (
	"context"

	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/repository"
)

const latestMessagesLimit = 5

// MessageService reads the platform broadcast log
type MessageService struct {
	messages repository.MessageStore
}

// NewMessageService creates a new message service
func NewMessageService(messages repository.MessageStore) *MessageService {
	return &MessageService{messages: messages}
}

// Latest returns the newest platform messages
func (s *MessageService) Latest(ctx context.Context) ([]*models.PlatformMessage, error) {
	msgs, err := s.messages.ListLatest(ctx, latestMessagesLimit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*models.PlatformMessage{}
	}
	return msgs, nil
}
