package handlers

import (
	"errors"
	"net/http"

	"github.com/cofoundry-tw/cofoundry-backend/internal/models"
	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/cofoundry-tw/cofoundry-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Talent       *TalentHandler
	Project      *ProjectHandler
	Application  *ApplicationHandler
	Invitation   *InvitationHandler
	Message      *MessageHandler
	Notification *NotificationHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:         &AuthHandler{authService: services.Auth},
		User:         &UserHandler{userService: services.User},
		Talent:       &TalentHandler{userService: services.User},
		Project:      &ProjectHandler{projectService: services.Project},
		Application:  &ApplicationHandler{membershipService: services.Membership},
		Invitation:   &InvitationHandler{membershipService: services.Membership},
		Message:      &MessageHandler{messageService: services.Message},
		Notification: &NotificationHandler{notificationService: services.Notification},
	}
}

// handleServiceError translates service sentinel errors into HTTP statuses.
// Workflow races map to 409 so clients can refresh and retry.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, service.ErrProfilePrivate):
		c.JSON(http.StatusForbidden, gin.H{"error": "This profile is private"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to do that"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicatePending):
		c.JSON(http.StatusConflict, gin.H{"error": "A pending request already exists"})
	case errors.Is(err, service.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this project"})
	case errors.Is(err, service.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, gin.H{"error": "This request was already processed"})
	case errors.Is(err, service.ErrMembershipFailed):
		c.JSON(http.StatusConflict, gin.H{"error": "Could not add the member, the request is pending again"})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User) models.UserResponse {
	if u == nil {
		return models.UserResponse{}
	}
	return models.UserResponse{
		ID:                    u.ID,
		Email:                 u.Email,
		Name:                  u.Name,
		ContactInfo:           u.ContactInfo,
		Skills:                safeStringSlice(u.Skills),
		ExperienceDescription: u.ExperienceDescription,
		WorkMode:              string(u.WorkMode),
		PartnerDescription:    u.PartnerDescription,
		LocationPreference:    string(u.LocationPreference),
		SpecificLocation:      u.SpecificLocation,
		IsPublic:              u.IsPublic,
		AvatarURL:             u.AvatarURL,
		CreatedAt:             u.CreatedAt,
	}
}

// toTalentResponse hides fields that are nobody's business in the public
// directory.
func toTalentResponse(u *repository.User) models.UserResponse {
	resp := toUserResponse(u)
	resp.Email = ""
	return resp
}

func toProjectResponse(p *repository.Project) models.ProjectResponse {
	if p == nil {
		return models.ProjectResponse{}
	}
	resp := models.ProjectResponse{
		ID:              p.ID,
		CreatorID:       p.CreatorID,
		Title:           p.Title,
		Description:     p.Description,
		CurrentTeamSize: p.CurrentTeamSize,
		TargetTeamSize:  p.TargetTeamSize,
		RequiredRoles:   safeStringSlice(p.RequiredRoles),
		RequiredSkills:  safeStringSlice(p.RequiredSkills),
		ProjectStage:    string(p.ProjectStage),
		IsRecruiting:    p.IsRecruiting,
		IsPublic:        p.IsPublic,
		CreatedAt:       p.CreatedAt,
	}
	if p.Creator != nil {
		creator := toTalentResponse(p.Creator)
		resp.Creator = &creator
	}
	for _, m := range p.Members {
		resp.Members = append(resp.Members, toProjectMemberResponse(m))
	}
	return resp
}

func toProjectMemberResponse(m *repository.ProjectMember) models.ProjectMemberResponse {
	resp := models.ProjectMemberResponse{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		UserID:    m.UserID,
		Role:      m.Role,
		JoinedAt:  m.JoinedAt,
	}
	if m.User != nil {
		user := toTalentResponse(m.User)
		resp.User = &user
	}
	return resp
}

func toApplicationResponse(a *repository.Application) models.ApplicationResponse {
	resp := models.ApplicationResponse{
		ID:              a.ID,
		ProjectID:       a.ProjectID,
		ApplicantID:     a.ApplicantID,
		Message:         a.Message,
		Status:          string(a.Status),
		ResponseMessage: a.ResponseMessage,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.Project != nil {
		project := toProjectResponse(a.Project)
		resp.Project = &project
	}
	if a.Applicant != nil {
		applicant := toTalentResponse(a.Applicant)
		resp.Applicant = &applicant
	}
	return resp
}

func toInvitationResponse(i *repository.Invitation) models.InvitationResponse {
	resp := models.InvitationResponse{
		ID:              i.ID,
		ProjectID:       i.ProjectID,
		InviterID:       i.InviterID,
		InviteeID:       i.InviteeID,
		Message:         i.Message,
		Status:          string(i.Status),
		ResponseMessage: i.ResponseMessage,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
	if i.Project != nil {
		project := toProjectResponse(i.Project)
		resp.Project = &project
	}
	if i.Inviter != nil {
		inviter := toTalentResponse(i.Inviter)
		resp.Inviter = &inviter
	}
	if i.Invitee != nil {
		invitee := toTalentResponse(i.Invitee)
		resp.Invitee = &invitee
	}
	return resp
}

func toConversationResponse(conv *repository.Conversation) models.ConversationResponse {
	resp := models.ConversationResponse{
		ID:        conv.ID,
		UpdatedAt: conv.UpdatedAt,
	}
	if conv.Peer != nil {
		peer := toTalentResponse(conv.Peer)
		resp.Peer = &peer
	}
	if conv.LastMessage != nil {
		msg := toMessageResponse(conv.LastMessage)
		resp.LastMessage = &msg
	}
	return resp
}

func toMessageResponse(m *repository.Message) models.MessageResponse {
	return models.MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
}

func toNotificationResponse(n *repository.Notification) models.NotificationResponse {
	return models.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func safeStringSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
