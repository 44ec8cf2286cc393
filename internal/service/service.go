package service

import (
	"errors"

	"github.com/cofoundry-tw/cofoundry-backend/internal/config"
	"github.com/cofoundry-tw/cofoundry-backend/internal/db"
	"github.com/cofoundry-tw/cofoundry-backend/internal/email"
	"github.com/cofoundry-tw/cofoundry-backend/internal/notification"
	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/cofoundry-tw/cofoundry-backend/internal/socket"
	"github.com/cofoundry-tw/cofoundry-backend/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")

	// Profile visibility: the row exists but the owner opted out of the
	// public directory. Distinct from ErrNotFound so the API can say so.
	ErrProfilePrivate = errors.New("profile is private")

	// Request workflow outcomes
	ErrDuplicatePending = errors.New("a pending request already exists")
	ErrAlreadyMember    = errors.New("user is already a project member")
	ErrAlreadyProcessed = errors.New("request was already processed")
	ErrMembershipFailed = errors.New("request accepted but membership could not be created")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth         AuthService
	User         UserService
	Project      ProjectService
	Membership   MembershipService
	Message      MessageService
	Notification NotificationService
	Broadcaster  *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	NotifSvc    *notification.Service
	Emails      *email.EmailQueue
	Broadcaster *socket.Broadcaster
	Avatars     *storage.AvatarStore
	Cache       *db.RedisDB
}

func NewServices(deps *ServiceDeps) *Services {
	return &Services{
		Auth: NewAuthService(deps.Config, deps.Repos.UserRepo),
		User: NewUserService(deps.Repos.UserRepo, deps.Repos.SearchRepo, deps.Avatars, deps.Cache),
		Project: NewProjectService(
			deps.Repos.ProjectRepo,
			deps.Repos.SearchRepo,
			deps.NotifSvc,
			deps.Broadcaster,
			deps.Cache,
		),
		Membership: NewMembershipService(
			deps.Repos.ProjectRepo,
			deps.Repos.ApplicationRepo,
			deps.Repos.InvitationRepo,
			deps.Repos.UserRepo,
			deps.NotifSvc,
			deps.Emails,
			deps.Broadcaster,
			deps.Cache,
		),
		Message: NewMessageService(
			deps.Repos.ConversationRepo,
			deps.Repos.UserRepo,
			deps.NotifSvc,
			deps.Broadcaster,
		),
		Notification: NewNotificationService(deps.Repos.NotificationRepo, deps.NotifSvc),
		Broadcaster:  deps.Broadcaster,
	}
}
