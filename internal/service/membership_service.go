package service

import (
	"context"
	"fmt"
	"log"

	"github.com/cofoundry-tw/cofoundry-backend/internal/db"
	"github.com/cofoundry-tw/cofoundry-backend/internal/email"
	"github.com/cofoundry-tw/cofoundry-backend/internal/notification"
	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/cofoundry-tw/cofoundry-backend/internal/socket"
)

// ============================================
// Membership Service
// ============================================

// MembershipService owns the join-request workflow for both directions:
// applications (user asks to join) and invitations (creator asks a user).
// Accepting either one runs the same three steps: transition the request,
// insert the membership row, bump the team counter.
type MembershipService interface {
	// Applications
	Apply(ctx context.Context, projectID, applicantID, message string) (*repository.Application, error)
	AcceptApplication(ctx context.Context, applicationID, userID, response string) error
	RejectApplication(ctx context.Context, applicationID, userID, reason string) error
	WithdrawApplication(ctx context.Context, applicationID, userID string) error
	ListSentApplications(ctx context.Context, userID string) ([]*repository.Application, error)
	ListReceivedApplications(ctx context.Context, userID string) ([]*repository.Application, error)

	// Invitations
	Invite(ctx context.Context, projectID, inviterID, inviteeID, message string) (*repository.Invitation, error)
	AcceptInvitation(ctx context.Context, invitationID, userID, response string) error
	RejectInvitation(ctx context.Context, invitationID, userID, reason string) error
	CancelInvitation(ctx context.Context, invitationID, userID string) error
	ListSentInvitations(ctx context.Context, userID string) ([]*repository.Invitation, error)
	ListReceivedInvitations(ctx context.Context, userID string) ([]*repository.Invitation, error)
}

type membershipService struct {
	projectRepo    repository.ProjectRepository
	appRepo        repository.ApplicationRepository
	invitationRepo repository.InvitationRepository
	userRepo       repository.UserRepository
	notifSvc       *notification.Service
	emails         *email.EmailQueue
	broadcaster    *socket.Broadcaster
	cache          *db.RedisDB
}

func NewMembershipService(
	projectRepo repository.ProjectRepository,
	appRepo repository.ApplicationRepository,
	invitationRepo repository.InvitationRepository,
	userRepo repository.UserRepository,
	notifSvc *notification.Service,
	emails *email.EmailQueue,
	broadcaster *socket.Broadcaster,
	cache *db.RedisDB,
) MembershipService {
	return &membershipService{
		projectRepo:    projectRepo,
		appRepo:        appRepo,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		notifSvc:       notifSvc,
		emails:         emails,
		broadcaster:    broadcaster,
		cache:          cache,
	}
}

// ============================================
// Applications
// ============================================

func (s *membershipService) Apply(ctx context.Context, projectID, applicantID, message string) (*repository.Application, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if !project.IsRecruiting {
		return nil, fmt.Errorf("%w: project is not recruiting", ErrInvalidInput)
	}

	member, err := s.projectRepo.FindMember(ctx, projectID, applicantID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member != nil {
		return nil, ErrAlreadyMember
	}

	pending, err := s.appRepo.FindPendingByPair(ctx, projectID, applicantID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending applications: %w", err)
	}
	if pending != nil {
		return nil, ErrDuplicatePending
	}

	app := &repository.Application{
		ProjectID:   projectID,
		ApplicantID: applicantID,
		Message:     message,
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		// The partial unique index catches the race the pre-check missed
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicatePending
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.notifyApplicationReceived(ctx, project, app)
	return app, nil
}

func (s *membershipService) AcceptApplication(ctx context.Context, applicationID, userID, response string) error {
	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("failed to find application: %w", err)
	}
	if app == nil {
		return ErrNotFound
	}

	project, err := s.projectRepo.FindByID(ctx, app.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to find project: %w", err)
	}
	if project == nil {
		return ErrNotFound
	}
	if project.CreatorID != userID {
		return ErrForbidden
	}

	if err := s.admit(ctx, project, app.ApplicantID, acceptStep{
		mark:   func() (bool, error) { return s.appRepo.MarkAccepted(ctx, applicationID, response) },
		revert: func() error { return s.appRepo.RevertToPending(ctx, applicationID) },
	}); err != nil {
		return err
	}

	s.notifyApplicationAccepted(ctx, project, app, response)
	return nil
}

func (s *membershipService) RejectApplication(ctx context.Context, applicationID, userID, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: a rejection reason is required", ErrInvalidInput)
	}

	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("failed to find application: %w", err)
	}
	if app == nil {
		return ErrNotFound
	}

	project, err := s.projectRepo.FindByID(ctx, app.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to find project: %w", err)
	}
	if project == nil {
		return ErrNotFound
	}
	if project.CreatorID != userID {
		return ErrForbidden
	}

	transitioned, err := s.appRepo.MarkRejected(ctx, applicationID, reason)
	if err != nil {
		return fmt.Errorf("failed to reject application: %w", err)
	}
	if !transitioned {
		return ErrAlreadyProcessed
	}

	s.notifyApplicationRejected(ctx, project, app)
	return nil
}

func (s *membershipService) WithdrawApplication(ctx context.Context, applicationID, userID string) error {
	app, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("failed to find application: %w", err)
	}
	if app == nil {
		return ErrNotFound
	}
	if app.ApplicantID != userID {
		return ErrForbidden
	}

	deleted, err := s.appRepo.DeletePending(ctx, applicationID, userID)
	if err != nil {
		return fmt.Errorf("failed to withdraw application: %w", err)
	}
	if !deleted {
		// Raced with the creator's decision
		return ErrAlreadyProcessed
	}
	return nil
}

func (s *membershipService) ListSentApplications(ctx context.Context, userID string) ([]*repository.Application, error) {
	apps, err := s.appRepo.FindByApplicant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

func (s *membershipService) ListReceivedApplications(ctx context.Context, userID string) ([]*repository.Application, error) {
	apps, err := s.appRepo.FindReceivedByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list received applications: %w", err)
	}
	return apps, nil
}

// ============================================
// Invitations
// ============================================

func (s *membershipService) Invite(ctx context.Context, projectID, inviterID, inviteeID, message string) (*repository.Invitation, error) {
	if inviterID == inviteeID {
		return nil, fmt.Errorf("%w: cannot invite yourself", ErrInvalidInput)
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if project.CreatorID != inviterID {
		return nil, ErrForbidden
	}

	invitee, err := s.userRepo.FindByID(ctx, inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find invitee: %w", err)
	}
	if invitee == nil {
		return nil, ErrNotFound
	}

	member, err := s.projectRepo.FindMember(ctx, projectID, inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member != nil {
		return nil, ErrAlreadyMember
	}

	pending, err := s.invitationRepo.FindPendingByPair(ctx, projectID, inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if pending != nil {
		return nil, ErrDuplicatePending
	}

	inv := &repository.Invitation{
		ProjectID: projectID,
		InviterID: inviterID,
		InviteeID: inviteeID,
		Message:   message,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicatePending
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.notifyInvitationReceived(ctx, project, inv, invitee)
	return inv, nil
}

func (s *membershipService) AcceptInvitation(ctx context.Context, invitationID, userID, response string) error {
	inv, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		return fmt.Errorf("failed to find invitation: %w", err)
	}
	if inv == nil {
		return ErrNotFound
	}
	if inv.InviteeID != userID {
		return ErrForbidden
	}

	project, err := s.projectRepo.FindByID(ctx, inv.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to find project: %w", err)
	}
	if project == nil {
		return ErrNotFound
	}

	if err := s.admit(ctx, project, inv.InviteeID, acceptStep{
		mark:   func() (bool, error) { return s.invitationRepo.MarkAccepted(ctx, invitationID, userID, response) },
		revert: func() error { return s.invitationRepo.RevertToPending(ctx, invitationID) },
	}); err != nil {
		return err
	}

	s.notifyInvitationAccepted(ctx, project, inv)
	return nil
}

func (s *membershipService) RejectInvitation(ctx context.Context, invitationID, userID, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: a rejection reason is required", ErrInvalidInput)
	}

	inv, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		return fmt.Errorf("failed to find invitation: %w", err)
	}
	if inv == nil {
		return ErrNotFound
	}
	if inv.InviteeID != userID {
		return ErrForbidden
	}

	transitioned, err := s.invitationRepo.MarkRejected(ctx, invitationID, userID, reason)
	if err != nil {
		return fmt.Errorf("failed to reject invitation: %w", err)
	}
	if !transitioned {
		return ErrAlreadyProcessed
	}

	s.notifyInvitationRejected(ctx, inv)
	return nil
}

func (s *membershipService) CancelInvitation(ctx context.Context, invitationID, userID string) error {
	inv, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		return fmt.Errorf("failed to find invitation: %w", err)
	}
	if inv == nil {
		return ErrNotFound
	}
	if inv.InviterID != userID {
		return ErrForbidden
	}

	deleted, err := s.invitationRepo.DeletePending(ctx, invitationID, userID)
	if err != nil {
		return fmt.Errorf("failed to cancel invitation: %w", err)
	}
	if !deleted {
		return ErrAlreadyProcessed
	}
	return nil
}

func (s *membershipService) ListSentInvitations(ctx context.Context, userID string) ([]*repository.Invitation, error) {
	invs, err := s.invitationRepo.FindByInviter(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invs, nil
}

func (s *membershipService) ListReceivedInvitations(ctx context.Context, userID string) ([]*repository.Invitation, error) {
	invs, err := s.invitationRepo.FindByInvitee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list received invitations: %w", err)
	}
	return invs, nil
}

// ============================================
// Shared accept workflow
// ============================================

type acceptStep struct {
	mark   func() (bool, error)
	revert func() error
}

// admit runs the three-step accept workflow. Step 1 transitions the request
// and reports whether a pending row was actually updated; zero rows means
// someone else resolved it first. Step 2 creates the membership; on failure
// the request is reverted to pending so the creator can retry. Step 3 bumps
// the cached team counter and is deliberately non-fatal: the membership row
// is the source of truth.
func (s *membershipService) admit(ctx context.Context, project *repository.Project, newMemberID string, step acceptStep) error {
	transitioned, err := step.mark()
	if err != nil {
		return fmt.Errorf("failed to accept request: %w", err)
	}
	if !transitioned {
		return ErrAlreadyProcessed
	}

	member := &repository.ProjectMember{
		ProjectID: project.ID,
		UserID:    newMemberID,
		Role:      "member",
	}
	if err := s.projectRepo.AddMember(ctx, member); err != nil {
		if revertErr := step.revert(); revertErr != nil {
			log.Printf("[Membership] Failed to revert request after membership error: %v", revertErr)
		}
		if repository.IsUniqueViolation(err) {
			return ErrAlreadyMember
		}
		return fmt.Errorf("%w: %v", ErrMembershipFailed, err)
	}

	if err := s.projectRepo.IncrementTeamSize(ctx, project.ID); err != nil {
		log.Printf("[Membership] Failed to increment team size for %s: %v", project.ID, err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberJoined(project.ID, map[string]interface{}{
			"projectId": project.ID,
			"userId":    newMemberID,
			"role":      "member",
		})
	}

	s.invalidateProjectCache(ctx)
	return nil
}

func (s *membershipService) invalidateProjectCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateListing(ctx, "projects:"); err != nil {
		log.Printf("[Membership] Failed to invalidate project cache: %v", err)
	}
}

// ============================================
// Notifications (best-effort)
// ============================================

func (s *membershipService) notifyApplicationReceived(ctx context.Context, project *repository.Project, app *repository.Application) {
	applicant, err := s.userRepo.FindByID(ctx, app.ApplicantID)
	if err != nil || applicant == nil {
		return
	}

	if s.notifSvc != nil {
		if err := s.notifSvc.SendApplicationReceived(ctx, project.CreatorID, applicant.Name, project.Title, app.ID, project.ID); err != nil {
			log.Printf("[Membership] Failed to notify creator of application: %v", err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastApplicationReceived(project.CreatorID, map[string]interface{}{
			"applicationId": app.ID,
			"projectId":     project.ID,
			"applicantId":   app.ApplicantID,
			"applicantName": applicant.Name,
		})
	}
	if s.emails != nil {
		creator, err := s.userRepo.FindByID(ctx, project.CreatorID)
		if err == nil && creator != nil {
			s.emails.QueueApplicationReceived(creator.Email, email.ApplicationReceivedData{
				CreatorName:   creator.Name,
				ApplicantName: applicant.Name,
				ProjectTitle:  project.Title,
				Message:       app.Message,
			})
		}
	}
}

func (s *membershipService) notifyApplicationAccepted(ctx context.Context, project *repository.Project, app *repository.Application, response string) {
	if s.notifSvc != nil {
		if err := s.notifSvc.SendApplicationAccepted(ctx, app.ApplicantID, project.Title, app.ID, project.ID); err != nil {
			log.Printf("[Membership] Failed to notify applicant of acceptance: %v", err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastApplicationResolved(app.ApplicantID, app.ID, string(repository.StatusAccepted))
	}
	if s.emails != nil {
		applicant, err := s.userRepo.FindByID(ctx, app.ApplicantID)
		if err == nil && applicant != nil {
			s.emails.QueueApplicationResolved(applicant.Email, email.ApplicationResolvedData{
				ApplicantName: applicant.Name,
				ProjectTitle:  project.Title,
				Accepted:      true,
				Response:      response,
			})
		}
	}
}

func (s *membershipService) notifyApplicationRejected(ctx context.Context, project *repository.Project, app *repository.Application) {
	if s.notifSvc != nil {
		if err := s.notifSvc.SendApplicationRejected(ctx, app.ApplicantID, project.Title, app.ID); err != nil {
			log.Printf("[Membership] Failed to notify applicant of rejection: %v", err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastApplicationResolved(app.ApplicantID, app.ID, string(repository.StatusRejected))
	}
}

func (s *membershipService) notifyInvitationReceived(ctx context.Context, project *repository.Project, inv *repository.Invitation, invitee *repository.User) {
	inviter, err := s.userRepo.FindByID(ctx, inv.InviterID)
	if err != nil || inviter == nil {
		return
	}

	if s.notifSvc != nil {
		if err := s.notifSvc.SendInvitationReceived(ctx, inv.InviteeID, inviter.Name, project.Title, inv.ID, project.ID); err != nil {
			log.Printf("[Membership] Failed to notify invitee: %v", err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastInvitationReceived(inv.InviteeID, map[string]interface{}{
			"invitationId": inv.ID,
			"projectId":    project.ID,
			"inviterId":    inv.InviterID,
			"inviterName":  inviter.Name,
		})
	}
	if s.emails != nil {
		s.emails.QueueInvitationReceived(invitee.Email, email.InvitationReceivedData{
			InviteeName:  invitee.Name,
			InviterName:  inviter.Name,
			ProjectTitle: project.Title,
			Message:      inv.Message,
		})
	}
}

func (s *membershipService) notifyInvitationAccepted(ctx context.Context, project *repository.Project, inv *repository.Invitation) {
	invitee, err := s.userRepo.FindByID(ctx, inv.InviteeID)
	if err != nil || invitee == nil {
		return
	}

	if s.notifSvc != nil {
		if err := s.notifSvc.SendInvitationAccepted(ctx, inv.InviterID, invitee.Name, project.Title, inv.ID, project.ID); err != nil {
			log.Printf("[Membership] Failed to notify inviter of acceptance: %v", err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastInvitationResolved(inv.InviterID, inv.ID, string(repository.StatusAccepted))
	}
}

func (s *membershipService) notifyInvitationRejected(ctx context.Context, inv *repository.Invitation) {
	invitee, err := s.userRepo.FindByID(ctx, inv.InviteeID)
	if err != nil || invitee == nil {
		return
	}

	projectTitle := ""
	if project, err := s.projectRepo.FindByID(ctx, inv.ProjectID); err == nil && project != nil {
		projectTitle = project.Title
	}

	if s.notifSvc != nil {
		if err := s.notifSvc.SendInvitationRejected(ctx, inv.InviterID, invitee.Name, projectTitle, inv.ID); err != nil {
			log.Printf("[Membership] Failed to notify inviter of rejection: %v", err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastInvitationResolved(inv.InviterID, inv.ID, string(repository.StatusRejected))
	}
}
