package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cofoundry-tw/cofoundry-backend/internal/email"
	"github.com/cofoundry-tw/cofoundry-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recruitingProject(creatorID string) *repository.Project {
	return &repository.Project{
		ID:           "proj-1",
		CreatorID:    creatorID,
		Title:        "Ledgerly",
		IsRecruiting: true,
		IsPublic:     true,
	}
}

func newMembershipForTest(projects *fakeProjectRepo, apps *fakeApplicationRepo, invs *fakeInvitationRepo, users *fakeUserRepo) MembershipService {
	if users == nil {
		users = newFakeUserRepo()
	}
	return NewMembershipService(projects, apps, invs, users, nil, nil, nil, nil)
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending application", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
		}
		var created *repository.Application
		apps := &fakeApplicationRepo{
			create: func(app *repository.Application) error {
				app.ID = "app-1"
				created = app
				return nil
			},
		}
		svc := newMembershipForTest(projects, apps, &fakeInvitationRepo{}, nil)

		app, err := svc.Apply(ctx, "proj-1", "user-2", "let me in")
		require.NoError(t, err)
		assert.Equal(t, "app-1", app.ID)
		assert.Equal(t, "user-2", created.ApplicantID)
		assert.Equal(t, "let me in", created.Message)
	})

	t.Run("unknown project", func(t *testing.T) {
		svc := newMembershipForTest(&fakeProjectRepo{}, &fakeApplicationRepo{}, &fakeInvitationRepo{}, nil)

		_, err := svc.Apply(ctx, "nope", "user-2", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("project not recruiting", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) {
				p := recruitingProject("creator-1")
				p.IsRecruiting = false
				return p, nil
			},
		}
		svc := newMembershipForTest(projects, &fakeApplicationRepo{}, &fakeInvitationRepo{}, nil)

		_, err := svc.Apply(ctx, "proj-1", "user-2", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("applicant is already a member", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
			findMember: func(projectID, userID string) (*repository.ProjectMember, error) {
				return &repository.ProjectMember{ProjectID: projectID, UserID: userID}, nil
			},
		}
		svc := newMembershipForTest(projects, &fakeApplicationRepo{}, &fakeInvitationRepo{}, nil)

		_, err := svc.Apply(ctx, "proj-1", "user-2", "")
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("duplicate pending application", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
		}
		apps := &fakeApplicationRepo{
			findPendingByPair: func(projectID, applicantID string) (*repository.Application, error) {
				return &repository.Application{ID: "app-existing"}, nil
			},
		}
		svc := newMembershipForTest(projects, apps, &fakeInvitationRepo{}, nil)

		_, err := svc.Apply(ctx, "proj-1", "user-2", "")
		assert.ErrorIs(t, err, ErrDuplicatePending)
	})

	t.Run("succeeds with email delivery configured", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
		}
		apps := &fakeApplicationRepo{
			create: func(app *repository.Application) error {
				app.ID = "app-1"
				return nil
			},
		}
		users := newFakeUserRepo(
			&repository.User{ID: "creator-1", Name: "Lin", Email: "lin@example.com"},
			&repository.User{ID: "user-2", Name: "Maya", Email: "maya@example.com"},
		)
		emails := email.NewEmailQueue(email.NewService(&email.Config{}), 1)
		defer emails.Stop()
		svc := NewMembershipService(projects, apps, &fakeInvitationRepo{}, users, nil, emails, nil, nil)

		app, err := svc.Apply(ctx, "proj-1", "user-2", "hello")
		require.NoError(t, err)
		assert.Equal(t, "app-1", app.ID)
	})

	t.Run("duplicate caught by the unique index", func(t *testing.T) {
		// Two concurrent applies can both pass the pre-check; the second
		// insert fails on the partial unique index instead.
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
		}
		apps := &fakeApplicationRepo{
			create: func(app *repository.Application) error {
				return &pgconn.PgError{Code: "23505"}
			},
		}
		svc := newMembershipForTest(projects, apps, &fakeInvitationRepo{}, nil)

		_, err := svc.Apply(ctx, "proj-1", "user-2", "")
		assert.ErrorIs(t, err, ErrDuplicatePending)
	})
}

func TestAcceptApplication(t *testing.T) {
	ctx := context.Background()

	pendingApp := func() *repository.Application {
		return &repository.Application{ID: "app-1", ProjectID: "proj-1", ApplicantID: "user-2", Status: repository.StatusPending}
	}

	t.Run("adds the applicant as a member", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
		}
		var added *repository.ProjectMember
		projects.addMember = func(m *repository.ProjectMember) error {
			added = m
			return nil
		}
		apps := &fakeApplicationRepo{
			findByID: func(id string) (*repository.Application, error) { return pendingApp(), nil },
		}
		svc := newMembershipForTest(projects, apps, &fakeInvitationRepo{}, nil)

		err := svc.AcceptApplication(ctx, "app-1", "creator-1", "welcome")
		require.NoError(t, err)
		require.NotNil(t, added)
		assert.Equal(t, "proj-1", added.ProjectID)
		assert.Equal(t, "user-2", added.UserID)
		assert.Equal(t, "member", added.Role)
	})

	t.Run("only the creator can accept", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
		}
		apps := &fakeApplicationRepo{
			findByID: func(id string) (*repository.Application, error) { return pendingApp(), nil },
		}
		svc := newMembershipForTest(projects, apps, &fakeInvitationRepo{}, nil)

		err := svc.AcceptApplication(ctx, "app-1", "user-2", "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("already resolved application", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
		}
		apps := &fakeApplicationRepo{
			findByID:     func(id string) (*repository.Application, error) { return pendingApp(), nil },
			markAccepted: func(id, response string) (bool, error) { return false, nil },
		}
		svc := newMembershipForTest(projects, apps, &fakeInvitationRepo{}, nil)

		err := svc.AcceptApplication(ctx, "app-1", "creator-1", "")
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
	})

	t.Run("membership failure reverts the application", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID:  func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
			addMember: func(m *repository.ProjectMember) error { return errors.New("insert failed") },
		}
		reverted := false
		apps := &fakeApplicationRepo{
			findByID: func(id string) (*repository.Application, error) { return pendingApp(), nil },
			revertToPending: func(id string) error {
				reverted = true
				return nil
			},
		}
		svc := newMembershipForTest(projects, apps, &fakeInvitationRepo{}, nil)

		err := svc.AcceptApplication(ctx, "app-1", "creator-1", "")
		assert.ErrorIs(t, err, ErrMembershipFailed)
		assert.True(t, reverted, "application should go back to pending")
	})

	t.Run("membership unique violation means already a member", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID:  func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
			addMember: func(m *repository.ProjectMember) error { return &pgconn.PgError{Code: "23505"} },
		}
		apps := &fakeApplicationRepo{
			findByID: func(id string) (*repository.Application, error) { return pendingApp(), nil },
		}
		svc := newMembershipForTest(projects, apps, &fakeInvitationRepo{}, nil)

		err := svc.AcceptApplication(ctx, "app-1", "creator-1", "")
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("team size counter failure is not fatal", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID:          func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
			incrementTeamSize: func(projectID string) error { return errors.New("counter update failed") },
		}
		apps := &fakeApplicationRepo{
			findByID: func(id string) (*repository.Application, error) { return pendingApp(), nil },
		}
		svc := newMembershipForTest(projects, apps, &fakeInvitationRepo{}, nil)

		err := svc.AcceptApplication(ctx, "app-1", "creator-1", "")
		assert.NoError(t, err)
	})
}

func TestRejectApplication(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a reason", func(t *testing.T) {
		svc := newMembershipForTest(&fakeProjectRepo{}, &fakeApplicationRepo{}, &fakeInvitationRepo{}, nil)

		err := svc.RejectApplication(ctx, "app-1", "creator-1", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects a pending application", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
		}
		var gotReason string
		apps := &fakeApplicationRepo{
			findByID: func(id string) (*repository.Application, error) {
				return &repository.Application{ID: "app-1", ProjectID: "proj-1", ApplicantID: "user-2"}, nil
			},
			markRejected: func(id, reason string) (bool, error) {
				gotReason = reason
				return true, nil
			},
		}
		svc := newMembershipForTest(projects, apps, &fakeInvitationRepo{}, nil)

		err := svc.RejectApplication(ctx, "app-1", "creator-1", "team is full")
		require.NoError(t, err)
		assert.Equal(t, "team is full", gotReason)
	})
}

func TestWithdrawApplication(t *testing.T) {
	ctx := context.Background()

	app := &repository.Application{ID: "app-1", ProjectID: "proj-1", ApplicantID: "user-2"}

	t.Run("only the applicant can withdraw", func(t *testing.T) {
		apps := &fakeApplicationRepo{
			findByID: func(id string) (*repository.Application, error) { return app, nil },
		}
		svc := newMembershipForTest(&fakeProjectRepo{}, apps, &fakeInvitationRepo{}, nil)

		err := svc.WithdrawApplication(ctx, "app-1", "someone-else")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("withdraw races with a decision", func(t *testing.T) {
		apps := &fakeApplicationRepo{
			findByID:      func(id string) (*repository.Application, error) { return app, nil },
			deletePending: func(id, applicantID string) (bool, error) { return false, nil },
		}
		svc := newMembershipForTest(&fakeProjectRepo{}, apps, &fakeInvitationRepo{}, nil)

		err := svc.WithdrawApplication(ctx, "app-1", "user-2")
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
	})

	t.Run("withdraws a pending application", func(t *testing.T) {
		apps := &fakeApplicationRepo{
			findByID: func(id string) (*repository.Application, error) { return app, nil },
		}
		svc := newMembershipForTest(&fakeProjectRepo{}, apps, &fakeInvitationRepo{}, nil)

		assert.NoError(t, svc.WithdrawApplication(ctx, "app-1", "user-2"))
	})
}

func TestInvite(t *testing.T) {
	ctx := context.Background()

	invitee := &repository.User{ID: "user-2", Name: "Maya Lin", Email: "maya@example.com"}

	t.Run("creates a pending invitation", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
		}
		var created *repository.Invitation
		invs := &fakeInvitationRepo{
			create: func(inv *repository.Invitation) error {
				inv.ID = "inv-1"
				created = inv
				return nil
			},
		}
		svc := newMembershipForTest(projects, &fakeApplicationRepo{}, invs, newFakeUserRepo(invitee))

		inv, err := svc.Invite(ctx, "proj-1", "creator-1", "user-2", "join us")
		require.NoError(t, err)
		assert.Equal(t, "inv-1", inv.ID)
		assert.Equal(t, "creator-1", created.InviterID)
		assert.Equal(t, "user-2", created.InviteeID)
	})

	t.Run("cannot invite yourself", func(t *testing.T) {
		svc := newMembershipForTest(&fakeProjectRepo{}, &fakeApplicationRepo{}, &fakeInvitationRepo{}, nil)

		_, err := svc.Invite(ctx, "proj-1", "creator-1", "creator-1", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("only the creator can invite", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
		}
		svc := newMembershipForTest(projects, &fakeApplicationRepo{}, &fakeInvitationRepo{}, newFakeUserRepo(invitee))

		_, err := svc.Invite(ctx, "proj-1", "user-3", "user-2", "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown invitee", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
		}
		svc := newMembershipForTest(projects, &fakeApplicationRepo{}, &fakeInvitationRepo{}, newFakeUserRepo())

		_, err := svc.Invite(ctx, "proj-1", "creator-1", "ghost", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate pending invitation", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
		}
		invs := &fakeInvitationRepo{
			findPendingByPair: func(projectID, inviteeID string) (*repository.Invitation, error) {
				return &repository.Invitation{ID: "inv-existing"}, nil
			},
		}
		svc := newMembershipForTest(projects, &fakeApplicationRepo{}, invs, newFakeUserRepo(invitee))

		_, err := svc.Invite(ctx, "proj-1", "creator-1", "user-2", "")
		assert.ErrorIs(t, err, ErrDuplicatePending)
	})
}

func TestAcceptInvitation(t *testing.T) {
	ctx := context.Background()

	pendingInv := func() *repository.Invitation {
		return &repository.Invitation{ID: "inv-1", ProjectID: "proj-1", InviterID: "creator-1", InviteeID: "user-2", Status: repository.StatusPending}
	}

	t.Run("adds the invitee as a member", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID: func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
		}
		var added *repository.ProjectMember
		projects.addMember = func(m *repository.ProjectMember) error {
			added = m
			return nil
		}
		invs := &fakeInvitationRepo{
			findByID: func(id string) (*repository.Invitation, error) { return pendingInv(), nil },
		}
		svc := newMembershipForTest(projects, &fakeApplicationRepo{}, invs, nil)

		err := svc.AcceptInvitation(ctx, "inv-1", "user-2", "happy to join")
		require.NoError(t, err)
		require.NotNil(t, added)
		assert.Equal(t, "user-2", added.UserID)
	})

	t.Run("only the invitee can accept", func(t *testing.T) {
		invs := &fakeInvitationRepo{
			findByID: func(id string) (*repository.Invitation, error) { return pendingInv(), nil },
		}
		svc := newMembershipForTest(&fakeProjectRepo{}, &fakeApplicationRepo{}, invs, nil)

		err := svc.AcceptInvitation(ctx, "inv-1", "creator-1", "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("membership failure reverts the invitation", func(t *testing.T) {
		projects := &fakeProjectRepo{
			findByID:  func(id string) (*repository.Project, error) { return recruitingProject("creator-1"), nil },
			addMember: func(m *repository.ProjectMember) error { return errors.New("insert failed") },
		}
		reverted := false
		invs := &fakeInvitationRepo{
			findByID: func(id string) (*repository.Invitation, error) { return pendingInv(), nil },
			revertToPending: func(id string) error {
				reverted = true
				return nil
			},
		}
		svc := newMembershipForTest(projects, &fakeApplicationRepo{}, invs, nil)

		err := svc.AcceptInvitation(ctx, "inv-1", "user-2", "")
		assert.ErrorIs(t, err, ErrMembershipFailed)
		assert.True(t, reverted)
	})
}

func TestCancelInvitation(t *testing.T) {
	ctx := context.Background()

	inv := &repository.Invitation{ID: "inv-1", ProjectID: "proj-1", InviterID: "creator-1", InviteeID: "user-2"}

	t.Run("only the inviter can cancel", func(t *testing.T) {
		invs := &fakeInvitationRepo{
			findByID: func(id string) (*repository.Invitation, error) { return inv, nil },
		}
		svc := newMembershipForTest(&fakeProjectRepo{}, &fakeApplicationRepo{}, invs, nil)

		err := svc.CancelInvitation(ctx, "inv-1", "user-2")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("cancel races with the invitee's answer", func(t *testing.T) {
		invs := &fakeInvitationRepo{
			findByID:      func(id string) (*repository.Invitation, error) { return inv, nil },
			deletePending: func(id, inviterID string) (bool, error) { return false, nil },
		}
		svc := newMembershipForTest(&fakeProjectRepo{}, &fakeApplicationRepo{}, invs, nil)

		err := svc.CancelInvitation(ctx, "inv-1", "creator-1")
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
	})
}
