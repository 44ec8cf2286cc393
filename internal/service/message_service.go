package service

import (
	"context"
	"fmt"
	"log"

	"github.com/cofoundry-tw/cofoundry-backend/internal/notification"
	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/cofoundry-tw/cofoundry-backend/internal/socket"
)

// ============================================
// Message Service
// ============================================

type MessageService interface {
	StartConversation(ctx context.Context, userID, peerID string) (*repository.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*repository.Conversation, error)
	SendMessage(ctx context.Context, conversationID, senderID, content string) (*repository.Message, error)
	ListMessages(ctx context.Context, conversationID, userID string, page, pageSize int) ([]*repository.Message, error)
	MarkRead(ctx context.Context, conversationID, userID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

type messageService struct {
	convRepo    repository.ConversationRepository
	userRepo    repository.UserRepository
	notifSvc    *notification.Service
	broadcaster *socket.Broadcaster
}

func NewMessageService(
	convRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
) MessageService {
	return &messageService{
		convRepo:    convRepo,
		userRepo:    userRepo,
		notifSvc:    notifSvc,
		broadcaster: broadcaster,
	}
}

func (s *messageService) StartConversation(ctx context.Context, userID, peerID string) (*repository.Conversation, error) {
	if userID == peerID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrInvalidInput)
	}

	peer, err := s.userRepo.FindByID(ctx, peerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if peer == nil {
		return nil, ErrNotFound
	}

	conv, err := s.convRepo.FindOrCreate(ctx, userID, peerID)
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation: %w", err)
	}
	conv.Peer = peer
	return conv, nil
}

func (s *messageService) ListConversations(ctx context.Context, userID string) ([]*repository.Conversation, error) {
	convs, err := s.convRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

func (s *messageService) SendMessage(ctx context.Context, conversationID, senderID, content string) (*repository.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrInvalidInput)
	}

	conv, err := s.authorizeParticipant(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	msg := &repository.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := s.convRepo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	recipientID := conv.UserOneID
	if recipientID == senderID {
		recipientID = conv.UserTwoID
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastNewMessage(recipientID, map[string]interface{}{
			"id":             msg.ID,
			"conversationId": msg.ConversationID,
			"senderId":       msg.SenderID,
			"content":        msg.Content,
			"createdAt":      msg.CreatedAt,
		})
	}
	if s.notifSvc != nil {
		sender, err := s.userRepo.FindByID(ctx, senderID)
		if err == nil && sender != nil {
			if err := s.notifSvc.SendNewMessage(ctx, recipientID, sender.Name, conversationID); err != nil {
				log.Printf("[Message] Failed to notify recipient: %v", err)
			}
		}
	}

	return msg, nil
}

func (s *messageService) ListMessages(ctx context.Context, conversationID, userID string, page, pageSize int) ([]*repository.Message, error) {
	if _, err := s.authorizeParticipant(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	msgs, err := s.convRepo.FindMessages(ctx, conversationID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

func (s *messageService) MarkRead(ctx context.Context, conversationID, userID string) error {
	conv, err := s.authorizeParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}

	if err := s.convRepo.MarkRead(ctx, conversationID, userID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}

	peerID := conv.UserOneID
	if peerID == userID {
		peerID = conv.UserTwoID
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastConversationRead(peerID, conversationID, userID)
	}
	return nil
}

func (s *messageService) CountUnread(ctx context.Context, userID string) (int, error) {
	count, err := s.convRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

func (s *messageService) authorizeParticipant(ctx context.Context, conversationID, userID string) (*repository.Conversation, error) {
	conv, err := s.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	if conv == nil {
		return nil, ErrNotFound
	}
	if conv.UserOneID != userID && conv.UserTwoID != userID {
		return nil, ErrForbidden
	}
	return conv, nil
}
