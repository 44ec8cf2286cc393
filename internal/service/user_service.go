package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/cofoundry-tw/cofoundry-backend/internal/db"
	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/cofoundry-tw/cofoundry-backend/internal/storage"
)

// ============================================
// User Service
// ============================================

type UserService interface {
	GetByID(ctx context.Context, id string) (*repository.User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*repository.User, error)
	UploadAvatar(ctx context.Context, userID, filename string, file io.Reader) (string, error)
	RemoveAvatar(ctx context.Context, userID string) error

	// GetTalent applies the public-profile rule: callers other than the
	// owner get ErrProfilePrivate for hidden profiles.
	GetTalent(ctx context.Context, id, viewerID string) (*repository.User, error)
	ListTalents(ctx context.Context, filters repository.TalentFilters, page, pageSize int) ([]*repository.User, int, error)
}

// ProfileUpdate carries the editable profile fields. Nil pointers mean
// "leave unchanged".
type ProfileUpdate struct {
	Name                  *string
	ContactInfo           *string
	Skills                []string
	ExperienceDescription *string
	WorkMode              *repository.WorkMode
	PartnerDescription    *string
	LocationPreference    *repository.LocationPreference
	SpecificLocation      *string
	IsPublic              *bool
}

type userService struct {
	userRepo   repository.UserRepository
	searchRepo repository.SearchRepository
	avatars    *storage.AvatarStore
	cache      *db.RedisDB
}

func NewUserService(userRepo repository.UserRepository, searchRepo repository.SearchRepository, avatars *storage.AvatarStore, cache *db.RedisDB) UserService {
	return &userService{userRepo: userRepo, searchRepo: searchRepo, avatars: avatars, cache: cache}
}

func (s *userService) GetByID(ctx context.Context, id string) (*repository.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*repository.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.ContactInfo != nil {
		user.ContactInfo = update.ContactInfo
	}
	if update.Skills != nil {
		user.Skills = update.Skills
	}
	if update.ExperienceDescription != nil {
		user.ExperienceDescription = *update.ExperienceDescription
	}
	if update.WorkMode != nil {
		user.WorkMode = *update.WorkMode
	}
	if update.PartnerDescription != nil {
		user.PartnerDescription = *update.PartnerDescription
	}
	if update.LocationPreference != nil {
		user.LocationPreference = *update.LocationPreference
	}
	if update.SpecificLocation != nil {
		user.SpecificLocation = update.SpecificLocation
	}
	if update.IsPublic != nil {
		user.IsPublic = *update.IsPublic
	}

	// A specific-location preference without a location is meaningless;
	// a remote preference clears any stale location.
	if user.LocationPreference == repository.LocationRemote {
		user.SpecificLocation = nil
	} else if user.SpecificLocation == nil || *user.SpecificLocation == "" {
		return nil, fmt.Errorf("%w: specific_location is required", ErrInvalidInput)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.invalidateTalentCache(ctx)
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID, filename string, file io.Reader) (string, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.avatars.Save(userID, filename, file)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.userRepo.UpdateAvatar(ctx, userID, &url); err != nil {
		s.avatars.Remove(url)
		return "", fmt.Errorf("failed to save avatar: %w", err)
	}

	// Replace, don't accumulate
	if user.AvatarURL != nil {
		if err := s.avatars.Remove(*user.AvatarURL); err != nil {
			log.Printf("[User] Failed to remove old avatar for %s: %v", userID, err)
		}
	}

	s.invalidateTalentCache(ctx)
	return url, nil
}

func (s *userService) RemoveAvatar(ctx context.Context, userID string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.AvatarURL == nil {
		return nil
	}

	if err := s.userRepo.UpdateAvatar(ctx, userID, nil); err != nil {
		return fmt.Errorf("failed to clear avatar: %w", err)
	}
	if err := s.avatars.Remove(*user.AvatarURL); err != nil {
		log.Printf("[User] Failed to remove avatar file for %s: %v", userID, err)
	}

	s.invalidateTalentCache(ctx)
	return nil
}

func (s *userService) GetTalent(ctx context.Context, id, viewerID string) (*repository.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if !user.IsPublic && user.ID != viewerID {
		return nil, ErrProfilePrivate
	}
	return user, nil
}

type talentPage struct {
	Users []*repository.User `json:"users"`
	Total int                `json:"total"`
}

func (s *userService) ListTalents(ctx context.Context, filters repository.TalentFilters, page, pageSize int) ([]*repository.User, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	cacheKey := fmt.Sprintf("talents:%v:%d:%d", filters, page, pageSize)
	if s.cache != nil {
		var cached talentPage
		if err := s.cache.GetListing(ctx, cacheKey, &cached); err == nil {
			return cached.Users, cached.Total, nil
		}
	}

	users, total, err := s.searchRepo.SearchTalents(ctx, filters, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("talent search failed: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetListing(ctx, cacheKey, talentPage{Users: users, Total: total}, time.Minute); err != nil {
			log.Printf("[User] Failed to cache talent listing: %v", err)
		}
	}

	return users, total, nil
}

func (s *userService) invalidateTalentCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateListing(ctx, "talents:"); err != nil {
		log.Printf("[User] Failed to invalidate talent cache: %v", err)
	}
}
