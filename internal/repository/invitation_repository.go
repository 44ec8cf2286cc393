package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgInvitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) InvitationRepository {
	return &pgInvitationRepository{pool: pool}
}

const invitationColumns = `id, project_id, inviter_id, invitee_id, message, status, response_message, created_at, updated_at`

const invitationColumnsI = `i.id, i.project_id, i.inviter_id, i.invitee_id, i.message, i.status, i.response_message, i.created_at, i.updated_at`

func scanInvitation(row pgx.Row) (*Invitation, error) {
	inv := &Invitation{}
	err := row.Scan(
		&inv.ID, &inv.ProjectID, &inv.InviterID, &inv.InviteeID, &inv.Message,
		&inv.Status, &inv.ResponseMessage, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *pgInvitationRepository) Create(ctx context.Context, inv *Invitation) error {
	query := `
		INSERT INTO invitations (project_id, inviter_id, invitee_id, message, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING id, status, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query, inv.ProjectID, inv.InviterID, inv.InviteeID, inv.Message).
		Scan(&inv.ID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
}

func (r *pgInvitationRepository) FindByID(ctx context.Context, id string) (*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	return scanInvitation(r.pool.QueryRow(ctx, query, id))
}

func (r *pgInvitationRepository) FindPendingByPair(ctx context.Context, projectID, inviteeID string) (*Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE project_id = $1 AND invitee_id = $2 AND status = 'pending'
	`
	return scanInvitation(r.pool.QueryRow(ctx, query, projectID, inviteeID))
}

func (r *pgInvitationRepository) FindByInviter(ctx context.Context, inviterID string) ([]*Invitation, error) {
	query := `
		SELECT ` + invitationColumnsI + `,
			p.id, p.creator_id, p.title, p.description, p.current_team_size, p.target_team_size,
			p.required_roles, p.required_skills, p.project_stage, p.is_recruiting, p.is_public,
			p.created_at, p.updated_at,
			` + prefixedUserColumns("u") + `
		FROM invitations i
		JOIN projects p ON p.id = i.project_id
		JOIN users u ON u.id = i.invitee_id
		WHERE i.inviter_id = $1
		ORDER BY i.created_at DESC
	`
	return r.queryExpanded(ctx, query, inviterID, false)
}

func (r *pgInvitationRepository) FindByInvitee(ctx context.Context, inviteeID string) ([]*Invitation, error) {
	query := `
		SELECT ` + invitationColumnsI + `,
			p.id, p.creator_id, p.title, p.description, p.current_team_size, p.target_team_size,
			p.required_roles, p.required_skills, p.project_stage, p.is_recruiting, p.is_public,
			p.created_at, p.updated_at,
			` + prefixedUserColumns("u") + `
		FROM invitations i
		JOIN projects p ON p.id = i.project_id
		JOIN users u ON u.id = i.inviter_id
		WHERE i.invitee_id = $1
		ORDER BY i.created_at DESC
	`
	return r.queryExpanded(ctx, query, inviteeID, true)
}

// queryExpanded scans invitation rows joined with their project and the
// counterpart user (invitee for sent lists, inviter for received lists).
func (r *pgInvitationRepository) queryExpanded(ctx context.Context, query, arg string, userIsInviter bool) ([]*Invitation, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []*Invitation
	for rows.Next() {
		inv := &Invitation{Project: &Project{}}
		p := inv.Project
		u := &User{}
		if err := rows.Scan(
			&inv.ID, &inv.ProjectID, &inv.InviterID, &inv.InviteeID, &inv.Message,
			&inv.Status, &inv.ResponseMessage, &inv.CreatedAt, &inv.UpdatedAt,
			&p.ID, &p.CreatorID, &p.Title, &p.Description, &p.CurrentTeamSize,
			&p.TargetTeamSize, &p.RequiredRoles, &p.RequiredSkills, &p.ProjectStage,
			&p.IsRecruiting, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt,
			&u.ID, &u.Email, &u.Password, &u.Name, &u.ContactInfo, &u.Skills,
			&u.ExperienceDescription, &u.WorkMode, &u.PartnerDescription,
			&u.LocationPreference, &u.SpecificLocation, &u.IsPublic, &u.AvatarURL,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if userIsInviter {
			inv.Inviter = u
		} else {
			inv.Invitee = u
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (r *pgInvitationRepository) MarkAccepted(ctx context.Context, id, inviteeID, response string) (bool, error) {
	query := `
		UPDATE invitations
		SET status = 'accepted', response_message = $3, updated_at = NOW()
		WHERE id = $1 AND invitee_id = $2 AND status = 'pending'
	`
	tag, err := r.pool.Exec(ctx, query, id, inviteeID, response)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgInvitationRepository) MarkRejected(ctx context.Context, id, inviteeID, reason string) (bool, error) {
	query := `
		UPDATE invitations
		SET status = 'rejected', response_message = $3, updated_at = NOW()
		WHERE id = $1 AND invitee_id = $2 AND status = 'pending'
	`
	tag, err := r.pool.Exec(ctx, query, id, inviteeID, reason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgInvitationRepository) RevertToPending(ctx context.Context, id string) error {
	query := `
		UPDATE invitations
		SET status = 'pending', response_message = NULL, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *pgInvitationRepository) DeletePending(ctx context.Context, id, inviterID string) (bool, error) {
	query := `DELETE FROM invitations WHERE id = $1 AND inviter_id = $2 AND status = 'pending'`
	tag, err := r.pool.Exec(ctx, query, id, inviterID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgInvitationRepository) DeleteStalePending(ctx context.Context, olderThan time.Time) (int, error) {
	query := `DELETE FROM invitations WHERE status = 'pending' AND created_at < $1`
	tag, err := r.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
