package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
)

// Function-field fakes: embed the interface so only the methods a test
// actually exercises need an implementation. Unset fields return zero values.

type fakeUserRepo struct {
	repository.UserRepository

	users  map[string]*repository.User
	tokens map[string]*repository.RefreshToken

	createErr error
	nextID    int
}

func newFakeUserRepo(users ...*repository.User) *fakeUserRepo {
	f := &fakeUserRepo{
		users:  make(map[string]*repository.User),
		tokens: make(map[string]*repository.RefreshToken),
	}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, user *repository.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*repository.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *repository.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdateAvatar(ctx context.Context, userID string, avatarURL *string) error {
	if u, ok := f.users[userID]; ok {
		u.AvatarURL = avatarURL
	}
	return nil
}

func (f *fakeUserRepo) SaveRefreshToken(ctx context.Context, token *repository.RefreshToken) error {
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeUserRepo) FindRefreshToken(ctx context.Context, token string) (*repository.RefreshToken, error) {
	return f.tokens[token], nil
}

func (f *fakeUserRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

type fakeProjectRepo struct {
	repository.ProjectRepository

	findByID          func(id string) (*repository.Project, error)
	findMember        func(projectID, userID string) (*repository.ProjectMember, error)
	addMember         func(m *repository.ProjectMember) error
	removeMember      func(projectID, userID string) error
	findMembers       func(projectID string) ([]*repository.ProjectMember, error)
	incrementTeamSize func(projectID string) error
	decrementTeamSize func(projectID string) error
}

func (f *fakeProjectRepo) FindByID(ctx context.Context, id string) (*repository.Project, error) {
	if f.findByID == nil {
		return nil, nil
	}
	return f.findByID(id)
}

func (f *fakeProjectRepo) FindMember(ctx context.Context, projectID, userID string) (*repository.ProjectMember, error) {
	if f.findMember == nil {
		return nil, nil
	}
	return f.findMember(projectID, userID)
}

func (f *fakeProjectRepo) AddMember(ctx context.Context, m *repository.ProjectMember) error {
	if f.addMember == nil {
		return nil
	}
	return f.addMember(m)
}

func (f *fakeProjectRepo) RemoveMember(ctx context.Context, projectID, userID string) error {
	if f.removeMember == nil {
		return nil
	}
	return f.removeMember(projectID, userID)
}

func (f *fakeProjectRepo) FindMembers(ctx context.Context, projectID string) ([]*repository.ProjectMember, error) {
	if f.findMembers == nil {
		return nil, nil
	}
	return f.findMembers(projectID)
}

func (f *fakeProjectRepo) IncrementTeamSize(ctx context.Context, projectID string) error {
	if f.incrementTeamSize == nil {
		return nil
	}
	return f.incrementTeamSize(projectID)
}

func (f *fakeProjectRepo) DecrementTeamSize(ctx context.Context, projectID string) error {
	if f.decrementTeamSize == nil {
		return nil
	}
	return f.decrementTeamSize(projectID)
}

type fakeApplicationRepo struct {
	repository.ApplicationRepository

	create            func(app *repository.Application) error
	findByID          func(id string) (*repository.Application, error)
	findPendingByPair func(projectID, applicantID string) (*repository.Application, error)
	markAccepted      func(id, response string) (bool, error)
	markRejected      func(id, reason string) (bool, error)
	revertToPending   func(id string) error
	deletePending     func(id, applicantID string) (bool, error)
}

func (f *fakeApplicationRepo) Create(ctx context.Context, app *repository.Application) error {
	if f.create == nil {
		app.ID = "app-1"
		return nil
	}
	return f.create(app)
}

func (f *fakeApplicationRepo) FindByID(ctx context.Context, id string) (*repository.Application, error) {
	if f.findByID == nil {
		return nil, nil
	}
	return f.findByID(id)
}

func (f *fakeApplicationRepo) FindPendingByPair(ctx context.Context, projectID, applicantID string) (*repository.Application, error) {
	if f.findPendingByPair == nil {
		return nil, nil
	}
	return f.findPendingByPair(projectID, applicantID)
}

func (f *fakeApplicationRepo) MarkAccepted(ctx context.Context, id, response string) (bool, error) {
	if f.markAccepted == nil {
		return true, nil
	}
	return f.markAccepted(id, response)
}

func (f *fakeApplicationRepo) MarkRejected(ctx context.Context, id, reason string) (bool, error) {
	if f.markRejected == nil {
		return true, nil
	}
	return f.markRejected(id, reason)
}

func (f *fakeApplicationRepo) RevertToPending(ctx context.Context, id string) error {
	if f.revertToPending == nil {
		return nil
	}
	return f.revertToPending(id)
}

func (f *fakeApplicationRepo) DeletePending(ctx context.Context, id, applicantID string) (bool, error) {
	if f.deletePending == nil {
		return true, nil
	}
	return f.deletePending(id, applicantID)
}

type fakeInvitationRepo struct {
	repository.InvitationRepository

	create            func(inv *repository.Invitation) error
	findByID          func(id string) (*repository.Invitation, error)
	findPendingByPair func(projectID, inviteeID string) (*repository.Invitation, error)
	markAccepted      func(id, inviteeID, response string) (bool, error)
	markRejected      func(id, inviteeID, reason string) (bool, error)
	revertToPending   func(id string) error
	deletePending     func(id, inviterID string) (bool, error)
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *repository.Invitation) error {
	if f.create == nil {
		inv.ID = "inv-1"
		return nil
	}
	return f.create(inv)
}

func (f *fakeInvitationRepo) FindByID(ctx context.Context, id string) (*repository.Invitation, error) {
	if f.findByID == nil {
		return nil, nil
	}
	return f.findByID(id)
}

func (f *fakeInvitationRepo) FindPendingByPair(ctx context.Context, projectID, inviteeID string) (*repository.Invitation, error) {
	if f.findPendingByPair == nil {
		return nil, nil
	}
	return f.findPendingByPair(projectID, inviteeID)
}

func (f *fakeInvitationRepo) MarkAccepted(ctx context.Context, id, inviteeID, response string) (bool, error) {
	if f.markAccepted == nil {
		return true, nil
	}
	return f.markAccepted(id, inviteeID, response)
}

func (f *fakeInvitationRepo) MarkRejected(ctx context.Context, id, inviteeID, reason string) (bool, error) {
	if f.markRejected == nil {
		return true, nil
	}
	return f.markRejected(id, inviteeID, reason)
}

func (f *fakeInvitationRepo) RevertToPending(ctx context.Context, id string) error {
	if f.revertToPending == nil {
		return nil
	}
	return f.revertToPending(id)
}

func (f *fakeInvitationRepo) DeletePending(ctx context.Context, id, inviterID string) (bool, error) {
	if f.deletePending == nil {
		return true, nil
	}
	return f.deletePending(id, inviterID)
}
