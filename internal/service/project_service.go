package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cofoundry-tw/cofoundry-backend/internal/db"
	"github.com/cofoundry-tw/cofoundry-backend/internal/notification"
	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/cofoundry-tw/cofoundry-backend/internal/socket"
)

// ============================================
// Project Service
// ============================================

type ProjectService interface {
	Create(ctx context.Context, project *repository.Project) (*repository.Project, error)
	GetByID(ctx context.Context, id, viewerID string) (*repository.Project, error)
	Update(ctx context.Context, projectID, userID string, update ProjectUpdate) (*repository.Project, error)
	Delete(ctx context.Context, projectID, userID string) error
	List(ctx context.Context, filters repository.ProjectFilters, page, pageSize int) ([]*repository.Project, int, error)
	ListMine(ctx context.Context, userID string) ([]*repository.Project, error)

	ListMembers(ctx context.Context, projectID string) ([]*repository.ProjectMember, error)
	RemoveMember(ctx context.Context, projectID, userID, memberID string) error
}

// ProjectUpdate carries editable project fields; nil means unchanged.
type ProjectUpdate struct {
	Title          *string
	Description    *string
	TargetTeamSize *int
	RequiredRoles  []string
	RequiredSkills []string
	ProjectStage   *repository.ProjectStage
	IsRecruiting   *bool
	IsPublic       *bool
}

type projectService struct {
	projectRepo repository.ProjectRepository
	searchRepo  repository.SearchRepository
	notifSvc    *notification.Service
	broadcaster *socket.Broadcaster
	cache       *db.RedisDB
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	searchRepo repository.SearchRepository,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
	cache *db.RedisDB,
) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		searchRepo:  searchRepo,
		notifSvc:    notifSvc,
		broadcaster: broadcaster,
		cache:       cache,
	}
}

func (s *projectService) Create(ctx context.Context, project *repository.Project) (*repository.Project, error) {
	if project.Title == "" || project.Description == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrInvalidInput)
	}
	if project.TargetTeamSize < 1 {
		return nil, fmt.Errorf("%w: target_team_size must be at least 1", ErrInvalidInput)
	}
	if project.ProjectStage == "" {
		project.ProjectStage = repository.StageIdea
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.invalidateProjectCache(ctx)
	return project, nil
}

func (s *projectService) GetByID(ctx context.Context, id, viewerID string) (*repository.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if !project.IsPublic && project.CreatorID != viewerID && !s.isMember(ctx, id, viewerID) {
		return nil, ErrNotFound
	}
	return project, nil
}

func (s *projectService) isMember(ctx context.Context, projectID, userID string) bool {
	if userID == "" {
		return false
	}
	member, err := s.projectRepo.FindMember(ctx, projectID, userID)
	return err == nil && member != nil
}

func (s *projectService) Update(ctx context.Context, projectID, userID string, update ProjectUpdate) (*repository.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if project.CreatorID != userID {
		return nil, ErrForbidden
	}

	if update.Title != nil {
		project.Title = *update.Title
	}
	if update.Description != nil {
		project.Description = *update.Description
	}
	if update.TargetTeamSize != nil {
		if *update.TargetTeamSize < 1 {
			return nil, fmt.Errorf("%w: target_team_size must be at least 1", ErrInvalidInput)
		}
		project.TargetTeamSize = *update.TargetTeamSize
	}
	if update.RequiredRoles != nil {
		project.RequiredRoles = update.RequiredRoles
	}
	if update.RequiredSkills != nil {
		project.RequiredSkills = update.RequiredSkills
	}
	if update.ProjectStage != nil {
		project.ProjectStage = *update.ProjectStage
	}
	if update.IsRecruiting != nil {
		project.IsRecruiting = *update.IsRecruiting
	}
	if update.IsPublic != nil {
		project.IsPublic = *update.IsPublic
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.invalidateProjectCache(ctx)
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, projectID, userID string) error {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to find project: %w", err)
	}
	if project == nil {
		return ErrNotFound
	}
	if project.CreatorID != userID {
		return ErrForbidden
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.invalidateProjectCache(ctx)
	return nil
}

type projectPage struct {
	Projects []*repository.Project `json:"projects"`
	Total    int                   `json:"total"`
}

func (s *projectService) List(ctx context.Context, filters repository.ProjectFilters, page, pageSize int) ([]*repository.Project, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	cacheKey := fmt.Sprintf("projects:%v:%d:%d", filters, page, pageSize)
	if s.cache != nil {
		var cached projectPage
		if err := s.cache.GetListing(ctx, cacheKey, &cached); err == nil {
			return cached.Projects, cached.Total, nil
		}
	}

	projects, total, err := s.searchRepo.SearchProjects(ctx, filters, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("project search failed: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetListing(ctx, cacheKey, projectPage{Projects: projects, Total: total}, time.Minute); err != nil {
			log.Printf("[Project] Failed to cache project listing: %v", err)
		}
	}

	return projects, total, nil
}

func (s *projectService) ListMine(ctx context.Context, userID string) ([]*repository.Project, error) {
	projects, err := s.projectRepo.FindByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *projectService) ListMembers(ctx context.Context, projectID string) ([]*repository.ProjectMember, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}

	members, err := s.projectRepo.FindMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

func (s *projectService) RemoveMember(ctx context.Context, projectID, userID, memberID string) error {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to find project: %w", err)
	}
	if project == nil {
		return ErrNotFound
	}
	if project.CreatorID != userID {
		return ErrForbidden
	}
	if memberID == project.CreatorID {
		return fmt.Errorf("%w: the creator cannot be removed", ErrInvalidInput)
	}

	member, err := s.projectRepo.FindMember(ctx, projectID, memberID)
	if err != nil {
		return fmt.Errorf("failed to find member: %w", err)
	}
	if member == nil {
		return ErrNotFound
	}

	if err := s.projectRepo.RemoveMember(ctx, projectID, memberID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if err := s.projectRepo.DecrementTeamSize(ctx, projectID); err != nil {
		log.Printf("[Project] Failed to decrement team size for %s: %v", projectID, err)
	}

	if s.notifSvc != nil {
		if err := s.notifSvc.SendMemberRemoved(ctx, memberID, project.Title, projectID); err != nil {
			log.Printf("[Project] Failed to notify removed member: %v", err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberRemoved(projectID, memberID)
	}

	s.invalidateProjectCache(ctx)
	return nil
}

func (s *projectService) invalidateProjectCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateListing(ctx, "projects:"); err != nil {
		log.Printf("[Project] Failed to invalidate project cache: %v", err)
	}
}
