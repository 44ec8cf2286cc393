package service

import (
	"context"
	"strings"
	"testing"

	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/cofoundry-tw/cofoundry-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearchRepo struct {
	searchTalents func(filters repository.TalentFilters, limit, offset int) ([]*repository.User, int, error)
}

func (f *fakeSearchRepo) SearchTalents(ctx context.Context, filters repository.TalentFilters, limit, offset int) ([]*repository.User, int, error) {
	if f.searchTalents == nil {
		return nil, 0, nil
	}
	return f.searchTalents(filters, limit, offset)
}

func (f *fakeSearchRepo) SearchProjects(ctx context.Context, filters repository.ProjectFilters, limit, offset int) ([]*repository.Project, int, error) {
	return nil, 0, nil
}

func newUserSvcForTest(t *testing.T, users *fakeUserRepo, search *fakeSearchRepo) UserService {
	t.Helper()
	if search == nil {
		search = &fakeSearchRepo{}
	}
	avatars, err := storage.NewAvatarStore(t.TempDir(), "")
	require.NoError(t, err)
	return NewUserService(users, search, avatars, nil)
}

func strp(s string) *string { return &s }

func TestGetTalent(t *testing.T) {
	ctx := context.Background()

	public := &repository.User{ID: "user-1", Name: "Lin Chen", IsPublic: true}
	private := &repository.User{ID: "user-2", Name: "Daniel Wu", IsPublic: false}

	t.Run("public profile is visible to anyone", func(t *testing.T) {
		svc := newUserSvcForTest(t, newFakeUserRepo(public, private), nil)

		got, err := svc.GetTalent(ctx, "user-1", "")
		require.NoError(t, err)
		assert.Equal(t, "Lin Chen", got.Name)
	})

	t.Run("private profile is hidden from other viewers", func(t *testing.T) {
		svc := newUserSvcForTest(t, newFakeUserRepo(public, private), nil)

		_, err := svc.GetTalent(ctx, "user-2", "user-1")
		assert.ErrorIs(t, err, ErrProfilePrivate)
	})

	t.Run("private profile is visible to its owner", func(t *testing.T) {
		svc := newUserSvcForTest(t, newFakeUserRepo(public, private), nil)

		got, err := svc.GetTalent(ctx, "user-2", "user-2")
		require.NoError(t, err)
		assert.Equal(t, "Daniel Wu", got.Name)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := newUserSvcForTest(t, newFakeUserRepo(), nil)

		_, err := svc.GetTalent(ctx, "ghost", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	baseUser := func() *repository.User {
		return &repository.User{
			ID:                 "user-1",
			Name:               "Lin Chen",
			WorkMode:           repository.WorkModeFulltime,
			LocationPreference: repository.LocationRemote,
			IsPublic:           true,
		}
	}

	t.Run("nil fields are left unchanged", func(t *testing.T) {
		users := newFakeUserRepo(baseUser())
		svc := newUserSvcForTest(t, users, nil)

		updated, err := svc.UpdateProfile(ctx, "user-1", ProfileUpdate{
			Skills: []string{"Go", "Postgres"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Lin Chen", updated.Name)
		assert.Equal(t, []string{"Go", "Postgres"}, updated.Skills)
	})

	t.Run("specific location preference requires a location", func(t *testing.T) {
		users := newFakeUserRepo(baseUser())
		svc := newUserSvcForTest(t, users, nil)

		pref := repository.LocationSpecific
		_, err := svc.UpdateProfile(ctx, "user-1", ProfileUpdate{LocationPreference: &pref})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("switching to remote clears the stale location", func(t *testing.T) {
		u := baseUser()
		u.LocationPreference = repository.LocationSpecific
		u.SpecificLocation = strp("Taipei")
		users := newFakeUserRepo(u)
		svc := newUserSvcForTest(t, users, nil)

		pref := repository.LocationRemote
		updated, err := svc.UpdateProfile(ctx, "user-1", ProfileUpdate{LocationPreference: &pref})
		require.NoError(t, err)
		assert.Nil(t, updated.SpecificLocation)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := newUserSvcForTest(t, newFakeUserRepo(), nil)

		_, err := svc.UpdateProfile(ctx, "ghost", ProfileUpdate{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUploadAvatar(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the file and records the URL", func(t *testing.T) {
		users := newFakeUserRepo(&repository.User{ID: "user-1"})
		svc := newUserSvcForTest(t, users, nil)

		url, err := svc.UploadAvatar(ctx, "user-1", "photo.png", strings.NewReader("fake image bytes"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "/uploads/"))
		require.NotNil(t, users.users["user-1"].AvatarURL)
		assert.Equal(t, url, *users.users["user-1"].AvatarURL)
	})

	t.Run("rejects unsupported extensions", func(t *testing.T) {
		users := newFakeUserRepo(&repository.User{ID: "user-1"})
		svc := newUserSvcForTest(t, users, nil)

		_, err := svc.UploadAvatar(ctx, "user-1", "resume.pdf", strings.NewReader("%PDF"))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestListTalents(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes paging", func(t *testing.T) {
		var gotLimit, gotOffset int
		search := &fakeSearchRepo{
			searchTalents: func(filters repository.TalentFilters, limit, offset int) ([]*repository.User, int, error) {
				gotLimit, gotOffset = limit, offset
				return []*repository.User{{ID: "user-1"}}, 1, nil
			},
		}
		svc := newUserSvcForTest(t, newFakeUserRepo(), search)

		users, total, err := svc.ListTalents(ctx, repository.TalentFilters{}, 0, 500)
		require.NoError(t, err)
		assert.Len(t, users, 1)
		assert.Equal(t, 1, total)
		assert.Equal(t, 20, gotLimit)
		assert.Equal(t, 0, gotOffset)
	})

	t.Run("passes filters through", func(t *testing.T) {
		var gotFilters repository.TalentFilters
		search := &fakeSearchRepo{
			searchTalents: func(filters repository.TalentFilters, limit, offset int) ([]*repository.User, int, error) {
				gotFilters = filters
				return nil, 0, nil
			},
		}
		svc := newUserSvcForTest(t, newFakeUserRepo(), search)

		_, _, err := svc.ListTalents(ctx, repository.TalentFilters{
			Keyword: "go",
			Skills:  []string{"Go"},
		}, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, "go", gotFilters.Keyword)
		assert.Equal(t, []string{"Go"}, gotFilters.Skills)
	})
}
