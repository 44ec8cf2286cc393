package socket

import "fmt"

// Broadcaster provides high-level methods for broadcasting domain events
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// SendNotification sends an in-app notification to a specific user
func (b *Broadcaster) SendNotification(userID string, notification map[string]interface{}) {
	b.hub.SendToUser(userID, MessageNotification, notification)
}

// SendNotificationCount updates notification counters for a user
func (b *Broadcaster) SendNotificationCount(userID string, total, unread int) {
	b.hub.SendToUser(userID, MessageNotificationCount, map[string]interface{}{
		"total":  total,
		"unread": unread,
	})
}

// BroadcastApplicationReceived notifies a project creator of a new application
func (b *Broadcaster) BroadcastApplicationReceived(creatorID string, application map[string]interface{}) {
	b.hub.SendToUser(creatorID, MessageApplicationReceived, application)
}

// BroadcastApplicationResolved notifies the applicant that their application
// was accepted or rejected
func (b *Broadcaster) BroadcastApplicationResolved(applicantID, applicationID, status string) {
	b.hub.SendToUser(applicantID, MessageApplicationResolved, map[string]interface{}{
		"applicationId": applicationID,
		"status":        status,
	})
}

// BroadcastInvitationReceived notifies a user of a new project invitation
func (b *Broadcaster) BroadcastInvitationReceived(inviteeID string, invitation map[string]interface{}) {
	b.hub.SendToUser(inviteeID, MessageInvitationReceived, invitation)
}

// BroadcastInvitationResolved notifies the inviter of the invitee's decision
func (b *Broadcaster) BroadcastInvitationResolved(inviterID, invitationID, status string) {
	b.hub.SendToUser(inviterID, MessageInvitationResolved, map[string]interface{}{
		"invitationId": invitationID,
		"status":       status,
	})
}

// BroadcastMemberJoined tells everyone watching a project that the team grew
func (b *Broadcaster) BroadcastMemberJoined(projectID string, member map[string]interface{}) {
	room := fmt.Sprintf("project:%s", projectID)
	b.hub.SendToRoom(room, MessageMemberJoined, member, "")
}

// BroadcastMemberRemoved tells everyone watching a project that a member left
func (b *Broadcaster) BroadcastMemberRemoved(projectID, userID string) {
	room := fmt.Sprintf("project:%s", projectID)
	b.hub.SendToRoom(room, MessageMemberRemoved, map[string]interface{}{
		"projectId": projectID,
		"userId":    userID,
	}, "")
}

// BroadcastNewMessage delivers a chat message to the recipient in realtime
func (b *Broadcaster) BroadcastNewMessage(recipientID string, message map[string]interface{}) {
	b.hub.SendToUser(recipientID, MessageNewMessage, message)
}

// BroadcastConversationRead tells the other participant their messages were read
func (b *Broadcaster) BroadcastConversationRead(peerID, conversationID, readerID string) {
	b.hub.SendToUser(peerID, MessageConversationRead, map[string]interface{}{
		"conversationId": conversationID,
		"readerId":       readerID,
	})
}

// IsUserOnline reports whether the user has at least one live connection
func (b *Broadcaster) IsUserOnline(userID string) bool {
	return b.hub.IsUserOnline(userID)
}
