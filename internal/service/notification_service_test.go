package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationReadRepo struct {
	repository.NotificationRepository
	markAsRead    func(ctx context.Context, id, userID string) error
	markAllAsRead func(ctx context.Context, userID string) error
	deleteOne     func(ctx context.Context, id, userID string) error
	deleteAll     func(ctx context.Context, userID string) error
}

func (f *fakeNotificationReadRepo) MarkAsRead(ctx context.Context, id, userID string) error {
	if f.markAsRead != nil {
		return f.markAsRead(ctx, id, userID)
	}
	return nil
}

func (f *fakeNotificationReadRepo) MarkAllAsRead(ctx context.Context, userID string) error {
	if f.markAllAsRead != nil {
		return f.markAllAsRead(ctx, userID)
	}
	return nil
}

func (f *fakeNotificationReadRepo) Delete(ctx context.Context, id, userID string) error {
	if f.deleteOne != nil {
		return f.deleteOne(ctx, id, userID)
	}
	return nil
}

func (f *fakeNotificationReadRepo) DeleteAll(ctx context.Context, userID string) error {
	if f.deleteAll != nil {
		return f.deleteAll(ctx, userID)
	}
	return nil
}

type fakeCounterPusher struct {
	pushed []string
}

func (p *fakeCounterPusher) PushUnreadCount(_ context.Context, userID string) {
	p.pushed = append(p.pushed, userID)
}

func TestNotificationMarkRead(t *testing.T) {
	ctx := context.Background()

	t.Run("pushes fresh counters on success", func(t *testing.T) {
		pusher := &fakeCounterPusher{}
		svc := NewNotificationService(&fakeNotificationReadRepo{}, pusher)

		require.NoError(t, svc.MarkRead(ctx, "notif-1", "user-1"))
		assert.Equal(t, []string{"user-1"}, pusher.pushed)
	})

	t.Run("unknown notification", func(t *testing.T) {
		pusher := &fakeCounterPusher{}
		repo := &fakeNotificationReadRepo{
			markAsRead: func(ctx context.Context, id, userID string) error {
				return pgx.ErrNoRows
			},
		}
		svc := NewNotificationService(repo, pusher)

		assert.ErrorIs(t, svc.MarkRead(ctx, "missing", "user-1"), ErrNotFound)
		assert.Empty(t, pusher.pushed)
	})

	t.Run("nil pusher is tolerated", func(t *testing.T) {
		svc := NewNotificationService(&fakeNotificationReadRepo{}, nil)
		require.NoError(t, svc.MarkRead(ctx, "notif-1", "user-1"))
	})
}

func TestNotificationMarkAllRead(t *testing.T) {
	ctx := context.Background()

	t.Run("pushes fresh counters", func(t *testing.T) {
		pusher := &fakeCounterPusher{}
		svc := NewNotificationService(&fakeNotificationReadRepo{}, pusher)

		require.NoError(t, svc.MarkAllRead(ctx, "user-1"))
		assert.Equal(t, []string{"user-1"}, pusher.pushed)
	})

	t.Run("no push on repository error", func(t *testing.T) {
		pusher := &fakeCounterPusher{}
		repo := &fakeNotificationReadRepo{
			markAllAsRead: func(ctx context.Context, userID string) error {
				return errors.New("db down")
			},
		}
		svc := NewNotificationService(repo, pusher)

		assert.Error(t, svc.MarkAllRead(ctx, "user-1"))
		assert.Empty(t, pusher.pushed)
	})
}

func TestNotificationDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("pushes fresh counters on success", func(t *testing.T) {
		pusher := &fakeCounterPusher{}
		svc := NewNotificationService(&fakeNotificationReadRepo{}, pusher)

		require.NoError(t, svc.Delete(ctx, "notif-1", "user-1"))
		assert.Equal(t, []string{"user-1"}, pusher.pushed)
	})

	t.Run("unknown notification", func(t *testing.T) {
		pusher := &fakeCounterPusher{}
		repo := &fakeNotificationReadRepo{
			deleteOne: func(ctx context.Context, id, userID string) error {
				return pgx.ErrNoRows
			},
		}
		svc := NewNotificationService(repo, pusher)

		assert.ErrorIs(t, svc.Delete(ctx, "missing", "user-1"), ErrNotFound)
		assert.Empty(t, pusher.pushed)
	})
}

func TestNotificationDeleteAll(t *testing.T) {
	pusher := &fakeCounterPusher{}
	svc := NewNotificationService(&fakeNotificationReadRepo{}, pusher)

	require.NoError(t, svc.DeleteAll(context.Background(), "user-1"))
	assert.Equal(t, []string{"user-1"}, pusher.pushed)
}
