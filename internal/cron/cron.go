package cron

import (
	"context"
	"log"
	"time"

	"github.com/cofoundry-tw/cofoundry-backend/internal/config"
	"github.com/cofoundry-tw/cofoundry-backend/internal/notification"
	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/robfig/cron/v3"
)

// How long a pending application can sit before the creator gets a nudge.
const reminderAge = 72 * time.Hour

// Read notifications older than this are deleted by the weekly cleanup.
const notificationRetention = 30 * 24 * time.Hour

// Scheduler handles scheduled background jobs
type Scheduler struct {
	cron             *cron.Cron
	config           *config.Config
	notifSvc         *notification.Service
	appRepo          repository.ApplicationRepository
	invitationRepo   repository.InvitationRepository
	projectRepo      repository.ProjectRepository
	notificationRepo repository.NotificationRepository
}

// NewScheduler creates a scheduler with direct repository access
func NewScheduler(
	cfg *config.Config,
	notifSvc *notification.Service,
	appRepo repository.ApplicationRepository,
	invitationRepo repository.InvitationRepository,
	projectRepo repository.ProjectRepository,
	notificationRepo repository.NotificationRepository,
) *Scheduler {
	return &Scheduler{
		cron:             cron.New(),
		config:           cfg,
		notifSvc:         notifSvc,
		appRepo:          appRepo,
		invitationRepo:   invitationRepo,
		projectRepo:      projectRepo,
		notificationRepo: notificationRepo,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every day at 3 AM - Expire stale pending requests
	s.cron.AddFunc("0 3 * * *", func() {
		log.Println("[Cron] Running stale pending request cleanup...")
		s.cleanupStalePendingRequests()
	})

	// Run every day at 9 AM - Remind creators about waiting applications
	s.cron.AddFunc("0 9 * * *", func() {
		log.Println("[Cron] Running pending application reminder check...")
		s.remindPendingApplications()
	})

	// Clean up old read notifications - Run every Sunday at midnight
	s.cron.AddFunc("0 0 * * 0", func() {
		log.Println("[Cron] Running notification cleanup...")
		s.cleanupOldNotifications()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

// cleanupStalePendingRequests deletes pending applications and invitations
// that were never answered within the configured TTL.
func (s *Scheduler) cleanupStalePendingRequests() {
	ctx := context.Background()
	cutoff := time.Now().AddDate(0, 0, -s.config.PendingRequestTTLDays)

	deleted, err := s.appRepo.DeleteStalePending(ctx, cutoff)
	if err != nil {
		log.Printf("[Cron] Error deleting stale applications: %v", err)
	} else if deleted > 0 {
		log.Printf("[Cron] Deleted %d stale pending applications", deleted)
	}

	deleted, err = s.invitationRepo.DeleteStalePending(ctx, cutoff)
	if err != nil {
		log.Printf("[Cron] Error deleting stale invitations: %v", err)
	} else if deleted > 0 {
		log.Printf("[Cron] Deleted %d stale pending invitations", deleted)
	}
}

// remindPendingApplications notifies project creators about applications that
// have been waiting longer than reminderAge, one notification per project.
func (s *Scheduler) remindPendingApplications() {
	ctx := context.Background()

	apps, err := s.appRepo.FindStalePending(ctx, time.Now().Add(-reminderAge))
	if err != nil {
		log.Printf("[Cron] Error finding stale pending applications: %v", err)
		return
	}
	if len(apps) == 0 {
		return
	}

	counts := make(map[string]int)
	for _, app := range apps {
		counts[app.ProjectID]++
	}

	for projectID, count := range counts {
		project, err := s.projectRepo.FindByID(ctx, projectID)
		if err != nil || project == nil {
			continue
		}
		if err := s.notifSvc.SendPendingApplicationsReminder(ctx, project.CreatorID, project.Title, project.ID, count); err != nil {
			log.Printf("[Cron] Error sending pending reminder for project %s: %v", projectID, err)
		} else {
			log.Printf("[Cron] Sent pending application reminder for project %s (%d waiting)", projectID, count)
		}
	}
}

// cleanupOldNotifications deletes read notifications past the retention window.
func (s *Scheduler) cleanupOldNotifications() {
	ctx := context.Background()

	deleted, err := s.notificationRepo.DeleteOlderThan(ctx, time.Now().Add(-notificationRetention), true)
	if err != nil {
		log.Printf("[Cron] Error cleaning up notifications: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[Cron] Deleted %d old notifications", deleted)
	}
}
