package notification

import (
	"context"
	"fmt"

	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/cofoundry-tw/cofoundry-backend/internal/socket"
)

// Notification types
const (
	TypeApplicationReceived = "APPLICATION_RECEIVED"
	TypeApplicationAccepted = "APPLICATION_ACCEPTED"
	TypeApplicationRejected = "APPLICATION_REJECTED"
	TypeInvitationReceived  = "INVITATION_RECEIVED"
	TypeInvitationAccepted  = "INVITATION_ACCEPTED"
	TypeInvitationRejected  = "INVITATION_REJECTED"
	TypeMemberRemoved       = "MEMBER_REMOVED"
	TypeNewMessage          = "NEW_MESSAGE"
	TypePendingReminder     = "PENDING_APPLICATIONS_REMINDER"
)

// Service creates in-app notifications and pushes them over the socket hub.
type Service struct {
	notificationRepo repository.NotificationRepository
	broadcaster      *socket.Broadcaster
}

// NewService creates a new notification service
func NewService(notificationRepo repository.NotificationRepository) *Service {
	return &Service{notificationRepo: notificationRepo}
}

func (s *Service) SetBroadcaster(b *socket.Broadcaster) {
	s.broadcaster = b
}

// sendWebSocketNotification sends a real-time notification via WebSocket
func (s *Service) sendWebSocketNotification(notification *repository.Notification) {
	if s.broadcaster == nil || notification == nil {
		return
	}

	s.broadcaster.SendNotification(notification.UserID, map[string]interface{}{
		"id":        notification.ID,
		"type":      notification.Type,
		"title":     notification.Title,
		"message":   notification.Message,
		"data":      notification.Data,
		"read":      notification.Read,
		"createdAt": notification.CreatedAt,
	})
}

func (s *Service) create(ctx context.Context, n *repository.Notification) error {
	if n.UserID == "" {
		return nil // nobody to notify
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return err
	}
	s.sendWebSocketNotification(n)
	return nil
}

// ============================================
// Application Notifications
// ============================================

// SendApplicationReceived notifies a project creator of a new application
func (s *Service) SendApplicationReceived(ctx context.Context, creatorID, applicantName, projectTitle, applicationID, projectID string) error {
	return s.create(ctx, &repository.Notification{
		UserID:  creatorID,
		Type:    TypeApplicationReceived,
		Title:   "New Application",
		Message: fmt.Sprintf("%s applied to join %s", applicantName, projectTitle),
		Data: map[string]interface{}{
			"applicationId": applicationID,
			"projectId":     projectID,
			"action":        "view_application",
		},
	})
}

// SendApplicationAccepted notifies an applicant they were accepted
func (s *Service) SendApplicationAccepted(ctx context.Context, applicantID, projectTitle, applicationID, projectID string) error {
	return s.create(ctx, &repository.Notification{
		UserID:  applicantID,
		Type:    TypeApplicationAccepted,
		Title:   "Application Accepted",
		Message: fmt.Sprintf("Your application to %s was accepted. Welcome aboard!", projectTitle),
		Data: map[string]interface{}{
			"applicationId": applicationID,
			"projectId":     projectID,
			"action":        "view_project",
		},
	})
}

// SendApplicationRejected notifies an applicant they were not accepted
func (s *Service) SendApplicationRejected(ctx context.Context, applicantID, projectTitle, applicationID string) error {
	return s.create(ctx, &repository.Notification{
		UserID:  applicantID,
		Type:    TypeApplicationRejected,
		Title:   "Application Update",
		Message: fmt.Sprintf("Your application to %s was not accepted this time", projectTitle),
		Data: map[string]interface{}{
			"applicationId": applicationID,
			"action":        "view_applications",
		},
	})
}

// SendPendingApplicationsReminder nudges a project creator about applications
// that have been waiting for a response.
func (s *Service) SendPendingApplicationsReminder(ctx context.Context, creatorID, projectTitle, projectID string, count int) error {
	message := fmt.Sprintf("You have %d applications waiting for a response on %s", count, projectTitle)
	if count == 1 {
		message = fmt.Sprintf("You have 1 application waiting for a response on %s", projectTitle)
	}
	return s.create(ctx, &repository.Notification{
		UserID:  creatorID,
		Type:    TypePendingReminder,
		Title:   "Pending Applications",
		Message: message,
		Data: map[string]interface{}{
			"projectId": projectID,
			"count":     count,
			"action":    "view_applications",
		},
	})
}

// ============================================
// Invitation Notifications
// ============================================

// SendInvitationReceived notifies a user they were invited to a project
func (s *Service) SendInvitationReceived(ctx context.Context, inviteeID, inviterName, projectTitle, invitationID, projectID string) error {
	return s.create(ctx, &repository.Notification{
		UserID:  inviteeID,
		Type:    TypeInvitationReceived,
		Title:   "Project Invitation",
		Message: fmt.Sprintf("%s invited you to join %s", inviterName, projectTitle),
		Data: map[string]interface{}{
			"invitationId": invitationID,
			"projectId":    projectID,
			"action":       "view_invitation",
		},
	})
}

// SendInvitationAccepted notifies the inviter that the invitee joined
func (s *Service) SendInvitationAccepted(ctx context.Context, inviterID, inviteeName, projectTitle, invitationID, projectID string) error {
	return s.create(ctx, &repository.Notification{
		UserID:  inviterID,
		Type:    TypeInvitationAccepted,
		Title:   "Invitation Accepted",
		Message: fmt.Sprintf("%s accepted your invitation to %s", inviteeName, projectTitle),
		Data: map[string]interface{}{
			"invitationId": invitationID,
			"projectId":    projectID,
			"action":       "view_project",
		},
	})
}

// SendInvitationRejected notifies the inviter that the invitee declined
func (s *Service) SendInvitationRejected(ctx context.Context, inviterID, inviteeName, projectTitle, invitationID string) error {
	return s.create(ctx, &repository.Notification{
		UserID:  inviterID,
		Type:    TypeInvitationRejected,
		Title:   "Invitation Declined",
		Message: fmt.Sprintf("%s declined your invitation to %s", inviteeName, projectTitle),
		Data: map[string]interface{}{
			"invitationId": invitationID,
			"action":       "view_invitations",
		},
	})
}

// ============================================
// Membership / Chat Notifications
// ============================================

// SendMemberRemoved notifies a user they were removed from a project team
func (s *Service) SendMemberRemoved(ctx context.Context, userID, projectTitle, projectID string) error {
	return s.create(ctx, &repository.Notification{
		UserID:  userID,
		Type:    TypeMemberRemoved,
		Title:   "Removed from Project",
		Message: fmt.Sprintf("You were removed from %s", projectTitle),
		Data: map[string]interface{}{
			"projectId": projectID,
		},
	})
}

// SendNewMessage notifies a user of a chat message while they are offline.
// Online users already get the message over the socket.
func (s *Service) SendNewMessage(ctx context.Context, recipientID, senderName, conversationID string) error {
	if s.broadcaster != nil && s.broadcaster.IsUserOnline(recipientID) {
		return nil
	}
	return s.create(ctx, &repository.Notification{
		UserID:  recipientID,
		Type:    TypeNewMessage,
		Title:   "New Message",
		Message: fmt.Sprintf("New message from %s", senderName),
		Data: map[string]interface{}{
			"conversationId": conversationID,
			"action":         "view_conversation",
		},
	})
}

// ============================================
// Counter push
// ============================================

// PushUnreadCount recomputes notification counters for the user and pushes
// them over the socket so badges stay in sync.
func (s *Service) PushUnreadCount(ctx context.Context, userID string) {
	if s.broadcaster == nil {
		return
	}
	total, unread, err := s.notificationRepo.CountByUserID(ctx, userID)
	if err != nil {
		return
	}
	s.broadcaster.SendNotificationCount(userID, total, unread)
}
