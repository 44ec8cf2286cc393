package socket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, id, userID string) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		Hub:    hub,
		Send:   make(chan []byte, 8),
		Rooms:  make(map[string]bool),
	}
}

func receiveMessage(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestHubPresence(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, "c1", "user-1")
	hub.register <- client

	require.Eventually(t, func() bool {
		return hub.IsUserOnline("user-1")
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.GetConnectedClientsCount())
	assert.Contains(t, hub.GetOnlineUsers(), "user-1")

	hub.unregister <- client
	require.Eventually(t, func() bool {
		return !hub.IsUserOnline("user-1")
	}, time.Second, 10*time.Millisecond)

	// The send channel is closed on disconnect
	_, open := <-client.Send
	for open {
		_, open = <-client.Send
	}
}

func TestHubSendToUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := newTestClient(hub, "c1", "user-1")
	second := newTestClient(hub, "c2", "user-1")
	other := newTestClient(hub, "c3", "user-2")
	hub.register <- first
	hub.register <- second
	hub.register <- other

	require.Eventually(t, func() bool {
		return hub.GetConnectedClientsCount() == 3
	}, time.Second, 10*time.Millisecond)

	// Presence broadcasts may be queued ahead of the direct message
	drain := func(c *Client, want MessageType) Message {
		for {
			msg := receiveMessage(t, c)
			if msg.Type == want {
				return msg
			}
		}
	}

	hub.SendToUser("user-1", MessageNotification, map[string]interface{}{"title": "hello"})

	msg := drain(first, MessageNotification)
	assert.Equal(t, "hello", msg.Payload["title"])
	drain(second, MessageNotification)

	// user-2 only ever sees presence traffic
	select {
	case data := <-other.Send:
		var got Message
		require.NoError(t, json.Unmarshal(data, &got))
		assert.NotEqual(t, MessageNotification, got.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubNotificationCount(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, "c1", "user-1")
	hub.register <- client

	require.Eventually(t, func() bool {
		return hub.IsUserOnline("user-1")
	}, time.Second, 10*time.Millisecond)

	NewBroadcaster(hub).SendNotificationCount("user-1", 5, 2)

	for {
		msg := receiveMessage(t, client)
		if msg.Type == MessageNotificationCount {
			assert.EqualValues(t, 5, msg.Payload["total"])
			assert.EqualValues(t, 2, msg.Payload["unread"])
			break
		}
	}
}

func TestHubRooms(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	member := newTestClient(hub, "c1", "user-1")
	outsider := newTestClient(hub, "c2", "user-2")
	hub.register <- member
	hub.register <- outsider

	require.Eventually(t, func() bool {
		return hub.GetConnectedClientsCount() == 2
	}, time.Second, 10*time.Millisecond)

	hub.JoinRoom(member, "conversation:conv-1")
	hub.SendToRoom("conversation:conv-1", MessageNewMessage, map[string]interface{}{"content": "hi"}, "")

	for {
		msg := receiveMessage(t, member)
		if msg.Type == MessageNewMessage {
			assert.Equal(t, "hi", msg.Payload["content"])
			break
		}
	}
}

func TestHubRoomExclude(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sender := newTestClient(hub, "c1", "user-1")
	hub.register <- sender

	require.Eventually(t, func() bool {
		return hub.GetConnectedClientsCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.JoinRoom(sender, "conversation:conv-1")
	hub.SendToRoom("conversation:conv-1", MessageNewMessage, map[string]interface{}{"content": "hi"}, "user-1")

	select {
	case data := <-sender.Send:
		var got Message
		require.NoError(t, json.Unmarshal(data, &got))
		assert.NotEqual(t, MessageNewMessage, got.Type, "sender should not receive their own room message")
	case <-time.After(100 * time.Millisecond):
	}
}
