package notification

import (
	"context"
	"testing"
	"time"

	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/cofoundry-tw/cofoundry-backend/internal/socket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	repository.NotificationRepository

	created []*repository.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *repository.Notification) error {
	n.ID = "notif-1"
	n.CreatedAt = time.Now()
	f.created = append(f.created, n)
	return nil
}

func TestSendApplicationReceived(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewService(repo)

	err := svc.SendApplicationReceived(context.Background(), "creator-1", "Maya Lin", "Ledgerly", "app-1", "proj-1")
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	n := repo.created[0]
	assert.Equal(t, "creator-1", n.UserID)
	assert.Equal(t, TypeApplicationReceived, n.Type)
	assert.Contains(t, n.Message, "Maya Lin")
	assert.Contains(t, n.Message, "Ledgerly")
	assert.Equal(t, "app-1", n.Data["applicationId"])
	assert.Equal(t, "proj-1", n.Data["projectId"])
}

func TestSendNewMessage(t *testing.T) {
	t.Run("persists for offline recipients", func(t *testing.T) {
		repo := &fakeNotificationRepo{}
		svc := NewService(repo)
		svc.SetBroadcaster(socket.NewBroadcaster(socket.NewHub()))

		err := svc.SendNewMessage(context.Background(), "user-2", "Lin Chen", "conv-1")
		require.NoError(t, err)
		require.Len(t, repo.created, 1)
		assert.Equal(t, TypeNewMessage, repo.created[0].Type)
		assert.Equal(t, "conv-1", repo.created[0].Data["conversationId"])
	})
}

func TestCreateSkipsEmptyRecipient(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewService(repo)

	err := svc.SendMemberRemoved(context.Background(), "", "Ledgerly", "proj-1")
	require.NoError(t, err)
	assert.Empty(t, repo.created)
}
