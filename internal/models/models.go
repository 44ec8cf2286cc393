package models

import "time"

// ============================================
// Auth DTOs
// ============================================

type RegisterRequest struct {
	Name                  string   `json:"name" binding:"required,min=2"`
	Email                 string   `json:"email" binding:"required,email"`
	Password              string   `json:"password" binding:"required,min=8"`
	Skills                []string `json:"skills"`
	ExperienceDescription string   `json:"experienceDescription"`
	WorkMode              string   `json:"workMode" binding:"omitempty,oneof=fulltime parttime"`
	PartnerDescription    string   `json:"partnerDescription"`
	LocationPreference    string   `json:"locationPreference" binding:"omitempty,oneof=remote specific_location"`
	SpecificLocation      *string  `json:"specificLocation"`
	IsPublic              *bool    `json:"isPublic"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// ============================================
// User DTOs
// ============================================

type UserResponse struct {
	ID                    string    `json:"id"`
	Email                 string    `json:"email,omitempty"`
	Name                  string    `json:"name"`
	ContactInfo           *string   `json:"contactInfo,omitempty"`
	Skills                []string  `json:"skills"`
	ExperienceDescription string    `json:"experienceDescription"`
	WorkMode              string    `json:"workMode"`
	PartnerDescription    string    `json:"partnerDescription"`
	LocationPreference    string    `json:"locationPreference"`
	SpecificLocation      *string   `json:"specificLocation,omitempty"`
	IsPublic              bool      `json:"isPublic"`
	AvatarURL             *string   `json:"avatarUrl,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
}

type UpdateProfileRequest struct {
	Name                  *string  `json:"name" binding:"omitempty,min=2"`
	ContactInfo           *string  `json:"contactInfo"`
	Skills                []string `json:"skills"`
	ExperienceDescription *string  `json:"experienceDescription"`
	WorkMode              *string  `json:"workMode" binding:"omitempty,oneof=fulltime parttime"`
	PartnerDescription    *string  `json:"partnerDescription"`
	LocationPreference    *string  `json:"locationPreference" binding:"omitempty,oneof=remote specific_location"`
	SpecificLocation      *string  `json:"specificLocation"`
	IsPublic              *bool    `json:"isPublic"`
}

type TalentListResponse struct {
	Talents  []UserResponse `json:"talents"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// ============================================
// Project DTOs
// ============================================

type CreateProjectRequest struct {
	Title          string   `json:"title" binding:"required,min=2"`
	Description    string   `json:"description" binding:"required"`
	TargetTeamSize int      `json:"targetTeamSize" binding:"required,min=1"`
	RequiredRoles  []string `json:"requiredRoles"`
	RequiredSkills []string `json:"requiredSkills"`
	ProjectStage   string   `json:"projectStage" binding:"omitempty,oneof=idea prototype beta launched"`
	IsRecruiting   *bool    `json:"isRecruiting"`
	IsPublic       *bool    `json:"isPublic"`
}

type UpdateProjectRequest struct {
	Title          *string  `json:"title" binding:"omitempty,min=2"`
	Description    *string  `json:"description"`
	TargetTeamSize *int     `json:"targetTeamSize" binding:"omitempty,min=1"`
	RequiredRoles  []string `json:"requiredRoles"`
	RequiredSkills []string `json:"requiredSkills"`
	ProjectStage   *string  `json:"projectStage" binding:"omitempty,oneof=idea prototype beta launched"`
	IsRecruiting   *bool    `json:"isRecruiting"`
	IsPublic       *bool    `json:"isPublic"`
}

type ProjectResponse struct {
	ID              string                  `json:"id"`
	CreatorID       string                  `json:"creatorId"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	CurrentTeamSize int                     `json:"currentTeamSize"`
	TargetTeamSize  int                     `json:"targetTeamSize"`
	RequiredRoles   []string                `json:"requiredRoles"`
	RequiredSkills  []string                `json:"requiredSkills"`
	ProjectStage    string                  `json:"projectStage"`
	IsRecruiting    bool                    `json:"isRecruiting"`
	IsPublic        bool                    `json:"isPublic"`
	CreatedAt       time.Time               `json:"createdAt"`
	Creator         *UserResponse           `json:"creator,omitempty"`
	Members         []ProjectMemberResponse `json:"members,omitempty"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

type ProjectMemberResponse struct {
	ID        string        `json:"id"`
	ProjectID string        `json:"projectId"`
	UserID    string        `json:"userId"`
	Role      string        `json:"role"`
	JoinedAt  time.Time     `json:"joinedAt"`
	User      *UserResponse `json:"user,omitempty"`
}

// ============================================
// Application DTOs
// ============================================

type CreateApplicationRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	Message   string `json:"message"`
}

type RespondRequest struct {
	Message string `json:"message"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ApplicationResponse struct {
	ID              string           `json:"id"`
	ProjectID       string           `json:"projectId"`
	ApplicantID     string           `json:"applicantId"`
	Message         string           `json:"message"`
	Status          string           `json:"status"`
	ResponseMessage *string          `json:"responseMessage,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Project         *ProjectResponse `json:"project,omitempty"`
	Applicant       *UserResponse    `json:"applicant,omitempty"`
}

// ============================================
// Invitation DTOs
// ============================================

type CreateInvitationRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	InviteeID string `json:"inviteeId" binding:"required"`
	Message   string `json:"message"`
}

type InvitationResponse struct {
	ID              string           `json:"id"`
	ProjectID       string           `json:"projectId"`
	InviterID       string           `json:"inviterId"`
	InviteeID       string           `json:"inviteeId"`
	Message         string           `json:"message"`
	Status          string           `json:"status"`
	ResponseMessage *string          `json:"responseMessage,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Project         *ProjectResponse `json:"project,omitempty"`
	Inviter         *UserResponse    `json:"inviter,omitempty"`
	Invitee         *UserResponse    `json:"invitee,omitempty"`
}

// ============================================
// Messaging DTOs
// ============================================

type StartConversationRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ConversationResponse struct {
	ID          string           `json:"id"`
	Peer        *UserResponse    `json:"peer,omitempty"`
	LastMessage *MessageResponse `json:"lastMessage,omitempty"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

type UnreadCountResponse struct {
	Unread int `json:"unread"`
}

// ============================================
// Notification DTOs
// ============================================

type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"createdAt"`
}

type NotificationCountResponse struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}
