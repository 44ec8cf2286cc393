// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// ============================================
// Models / Entities
// ============================================

type WorkMode string

const (
	WorkModeFulltime WorkMode = "fulltime"
	WorkModeParttime WorkMode = "parttime"
)

type LocationPreference string

const (
	LocationRemote   LocationPreference = "remote"
	LocationSpecific LocationPreference = "specific_location"
)

type ProjectStage string

const (
	StageIdea      ProjectStage = "idea"
	StagePrototype ProjectStage = "prototype"
	StageBeta      ProjectStage = "beta"
	StageLaunched  ProjectStage = "launched"
)

// RequestStatus is shared by applications and invitations: pending is the
// only non-terminal state.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

type User struct {
	ID                    string             `db:"id"`
	Email                 string             `db:"email"`
	Password              string             `db:"password"`
	Name                  string             `db:"name"`
	ContactInfo           *string            `db:"contact_info"`
	Skills                []string           `db:"skills"`
	ExperienceDescription string             `db:"experience_description"`
	WorkMode              WorkMode           `db:"work_mode"`
	PartnerDescription    string             `db:"partner_description"`
	LocationPreference    LocationPreference `db:"location_preference"`
	SpecificLocation      *string            `db:"specific_location"`
	IsPublic              bool               `db:"is_public"`
	AvatarURL             *string            `db:"avatar_url"`
	CreatedAt             time.Time          `db:"created_at"`
	UpdatedAt             time.Time          `db:"updated_at"`
}

type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Project struct {
	ID              string       `db:"id"`
	CreatorID       string       `db:"creator_id"`
	Title           string       `db:"title"`
	Description     string       `db:"description"`
	CurrentTeamSize int          `db:"current_team_size"`
	TargetTeamSize  int          `db:"target_team_size"`
	RequiredRoles   []string     `db:"required_roles"`
	RequiredSkills  []string     `db:"required_skills"`
	ProjectStage    ProjectStage `db:"project_stage"`
	IsRecruiting    bool         `db:"is_recruiting"`
	IsPublic        bool         `db:"is_public"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`

	// Expanded relations, populated by Find* variants that join.
	Creator *User            `db:"-"`
	Members []*ProjectMember `db:"-"`
}

type ProjectMember struct {
	ID        string
	ProjectID string
	UserID    string
	Role      string // "creator" for the owner, otherwise "member"
	JoinedAt  time.Time

	User *User
}

type Application struct {
	ID              string
	ProjectID       string
	ApplicantID     string
	Message         string
	Status          RequestStatus
	ResponseMessage *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Project   *Project
	Applicant *User
}

type Invitation struct {
	ID              string
	ProjectID       string
	InviterID       string
	InviteeID       string
	Message         string
	Status          RequestStatus
	ResponseMessage *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Project *Project
	Inviter *User
	Invitee *User
}

type Conversation struct {
	ID        string
	UserOneID string
	UserTwoID string
	CreatedAt time.Time
	UpdatedAt time.Time

	LastMessage *Message
	Peer        *User
}

type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Content        string
	IsRead         bool
	CreatedAt      time.Time
}

type Notification struct {
	ID        string
	UserID    string
	Type      string
	Title     string
	Message   string
	Data      map[string]interface{}
	Read      bool
	CreatedAt time.Time
}

// ============================================
// Filters
// ============================================

type TalentFilters struct {
	Keyword             string
	Skills              []string
	WorkModes           []string
	LocationPreferences []string
}

type ProjectFilters struct {
	Keyword       string
	Skills        []string
	RequiredRoles []string
	Stages        []string
}

// ============================================
// Repository interfaces
// ============================================

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateAvatar(ctx context.Context, userID string, avatarURL *string) error
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteUserRefreshTokens(ctx context.Context, userID string) error
}

type ProjectRepository interface {
	// Create inserts the project and the creator's membership row in one
	// transaction; current_team_size starts at 1.
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	FindByCreator(ctx context.Context, creatorID string) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, member *ProjectMember) error
	FindMembers(ctx context.Context, projectID string) ([]*ProjectMember, error)
	FindMember(ctx context.Context, projectID, userID string) (*ProjectMember, error)
	RemoveMember(ctx context.Context, projectID, userID string) error
	IncrementTeamSize(ctx context.Context, projectID string) error
	DecrementTeamSize(ctx context.Context, projectID string) error
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	FindByID(ctx context.Context, id string) (*Application, error)
	FindPendingByPair(ctx context.Context, projectID, applicantID string) (*Application, error)
	FindByApplicant(ctx context.Context, applicantID string) ([]*Application, error)
	FindReceivedByCreator(ctx context.Context, creatorID string) ([]*Application, error)
	FindByProject(ctx context.Context, projectID string) ([]*Application, error)

	// MarkAccepted and MarkRejected are filtered by status = pending and
	// report whether a row was actually transitioned.
	MarkAccepted(ctx context.Context, id, response string) (bool, error)
	MarkRejected(ctx context.Context, id, reason string) (bool, error)
	RevertToPending(ctx context.Context, id string) error
	DeletePending(ctx context.Context, id, applicantID string) (bool, error)
	DeleteStalePending(ctx context.Context, olderThan time.Time) (int, error)
	FindStalePending(ctx context.Context, olderThan time.Time) ([]*Application, error)
}

type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	FindByID(ctx context.Context, id string) (*Invitation, error)
	FindPendingByPair(ctx context.Context, projectID, inviteeID string) (*Invitation, error)
	FindByInviter(ctx context.Context, inviterID string) ([]*Invitation, error)
	FindByInvitee(ctx context.Context, inviteeID string) ([]*Invitation, error)

	MarkAccepted(ctx context.Context, id, inviteeID, response string) (bool, error)
	MarkRejected(ctx context.Context, id, inviteeID, reason string) (bool, error)
	RevertToPending(ctx context.Context, id string) error
	DeletePending(ctx context.Context, id, inviterID string) (bool, error)
	DeleteStalePending(ctx context.Context, olderThan time.Time) (int, error)
}

type ConversationRepository interface {
	FindOrCreate(ctx context.Context, userA, userB string) (*Conversation, error)
	FindByID(ctx context.Context, id string) (*Conversation, error)
	FindByUser(ctx context.Context, userID string) ([]*Conversation, error)
	CreateMessage(ctx context.Context, msg *Message) error
	FindMessages(ctx context.Context, conversationID string, limit, offset int) ([]*Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	FindByUserID(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error)
	CountByUserID(ctx context.Context, userID string) (total int, unread int, err error)
	MarkAsRead(ctx context.Context, id, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, userID string) error
	DeleteAll(ctx context.Context, userID string) error
	DeleteOlderThan(ctx context.Context, olderThan time.Time, readOnly bool) (int, error)
}

// SearchRepository backs the public talent and project directories. It runs
// over database/sql via sqlx because the filter combinations are assembled
// dynamically with named fragments.
type SearchRepository interface {
	SearchTalents(ctx context.Context, filters TalentFilters, limit, offset int) ([]*User, int, error)
	SearchProjects(ctx context.Context, filters ProjectFilters, limit, offset int) ([]*Project, int, error)
}

// ============================================
// Repositories Container
// ============================================

type Repositories struct {
	UserRepo         UserRepository
	ProjectRepo      ProjectRepository
	ApplicationRepo  ApplicationRepository
	InvitationRepo   InvitationRepository
	ConversationRepo ConversationRepository
	NotificationRepo NotificationRepository
	SearchRepo       SearchRepository
}

func NewRepositories(pool *pgxpool.Pool, sqlDB *sqlx.DB) *Repositories {
	return &Repositories{
		UserRepo:         NewUserRepository(pool),
		ProjectRepo:      NewProjectRepository(pool),
		ApplicationRepo:  NewApplicationRepository(pool),
		InvitationRepo:   NewInvitationRepository(pool),
		ConversationRepo: NewConversationRepository(pool),
		NotificationRepo: NewNotificationRepository(pool),
		SearchRepo:       NewSearchRepository(sqlDB),
	}
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// error. The membership and pending-request inserts rely on this to turn
// races into conflicts instead of duplicates.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
