package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/jackc/pgx/v5"
)

// ============================================
// Notification Service (read side)
// ============================================

type NotificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool) ([]*repository.Notification, error)
	Count(ctx context.Context, userID string) (total int, unread int, err error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, userID string) error
	DeleteAll(ctx context.Context, userID string) error
}

// counterPusher pushes fresh notification counters to a user's live socket
// connections. Satisfied by *notification.Service.
type counterPusher interface {
	PushUnreadCount(ctx context.Context, userID string)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	pusher           counterPusher
}

func NewNotificationService(notificationRepo repository.NotificationRepository, pusher counterPusher) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, pusher: pusher}
}

// pushCounters keeps connected clients' badges in sync after a mutation.
func (s *notificationService) pushCounters(ctx context.Context, userID string) {
	if s.pusher != nil {
		s.pusher.PushUnreadCount(ctx, userID)
	}
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*repository.Notification, error) {
	notifications, err := s.notificationRepo.FindByUserID(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) Count(ctx context.Context, userID string) (int, int, error) {
	total, unread, err := s.notificationRepo.CountByUserID(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return total, unread, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.notificationRepo.MarkAsRead(ctx, id, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	s.pushCounters(ctx, userID)
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	s.pushCounters(ctx, userID)
	return nil
}

func (s *notificationService) Delete(ctx context.Context, id, userID string) error {
	if err := s.notificationRepo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	s.pushCounters(ctx, userID)
	return nil
}

func (s *notificationService) DeleteAll(ctx context.Context, userID string) error {
	if err := s.notificationRepo.DeleteAll(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	s.pushCounters(ctx, userID)
	return nil
}
