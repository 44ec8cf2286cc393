package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &pgProjectRepository{pool: pool}
}

const projectColumns = `id, creator_id, title, description, current_team_size, target_team_size,
	required_roles, required_skills, project_stage, is_recruiting, is_public,
	created_at, updated_at`

func scanProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	err := row.Scan(
		&p.ID, &p.CreatorID, &p.Title, &p.Description, &p.CurrentTeamSize,
		&p.TargetTeamSize, &p.RequiredRoles, &p.RequiredSkills, &p.ProjectStage,
		&p.IsRecruiting, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProjectRepository) Create(ctx context.Context, project *Project) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO projects (creator_id, title, description, current_team_size, target_team_size,
			required_roles, required_skills, project_stage, is_recruiting, is_public)
		VALUES ($1, $2, $3, 1, $4, $5, $6, $7, $8, $9)
		RETURNING id, current_team_size, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		project.CreatorID, project.Title, project.Description, project.TargetTeamSize,
		project.RequiredRoles, project.RequiredSkills, project.ProjectStage,
		project.IsRecruiting, project.IsPublic,
	).Scan(&project.ID, &project.CurrentTeamSize, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id, role) VALUES ($1, $2, 'creator')`,
		project.ID, project.CreatorID,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	project, err := scanProject(r.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil || project == nil {
		return project, err
	}

	creator, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, project.CreatorID))
	if err != nil {
		return nil, err
	}
	project.Creator = creator

	members, err := r.FindMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Members = members

	return project, nil
}

func (r *pgProjectRepository) FindByCreator(ctx context.Context, creatorID string) ([]*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE creator_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p := &Project{}
		if err := rows.Scan(
			&p.ID, &p.CreatorID, &p.Title, &p.Description, &p.CurrentTeamSize,
			&p.TargetTeamSize, &p.RequiredRoles, &p.RequiredSkills, &p.ProjectStage,
			&p.IsRecruiting, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *pgProjectRepository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects
		SET title = $2, description = $3, target_team_size = $4, required_roles = $5,
			required_skills = $6, project_stage = $7, is_recruiting = $8, is_public = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		project.ID, project.Title, project.Description, project.TargetTeamSize,
		project.RequiredRoles, project.RequiredSkills, project.ProjectStage,
		project.IsRecruiting, project.IsPublic,
	).Scan(&project.UpdatedAt)
}

func (r *pgProjectRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

func (r *pgProjectRepository) AddMember(ctx context.Context, member *ProjectMember) error {
	// Plain insert so a duplicate membership surfaces as a unique violation
	// instead of being silently upserted.
	query := `
		INSERT INTO project_members (project_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at
	`
	return r.pool.QueryRow(ctx, query, member.ProjectID, member.UserID, member.Role).
		Scan(&member.ID, &member.JoinedAt)
}

func (r *pgProjectRepository) FindMembers(ctx context.Context, projectID string) ([]*ProjectMember, error) {
	query := `
		SELECT m.id, m.project_id, m.user_id, m.role, m.joined_at, ` + prefixedUserColumns("u") + `
		FROM project_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.project_id = $1
		ORDER BY m.joined_at
	`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*ProjectMember
	for rows.Next() {
		m := &ProjectMember{User: &User{}}
		u := m.User
		if err := rows.Scan(
			&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.JoinedAt,
			&u.ID, &u.Email, &u.Password, &u.Name, &u.ContactInfo, &u.Skills,
			&u.ExperienceDescription, &u.WorkMode, &u.PartnerDescription,
			&u.LocationPreference, &u.SpecificLocation, &u.IsPublic, &u.AvatarURL,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *pgProjectRepository) FindMember(ctx context.Context, projectID, userID string) (*ProjectMember, error) {
	query := `
		SELECT id, project_id, user_id, role, joined_at
		FROM project_members WHERE project_id = $1 AND user_id = $2
	`
	m := &ProjectMember{}
	err := r.pool.QueryRow(ctx, query, projectID, userID).Scan(
		&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.JoinedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2 AND role <> 'creator'`,
		projectID, userID)
	return err
}

func (r *pgProjectRepository) IncrementTeamSize(ctx context.Context, projectID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE projects SET current_team_size = current_team_size + 1, updated_at = NOW() WHERE id = $1`,
		projectID)
	return err
}

func (r *pgProjectRepository) DecrementTeamSize(ctx context.Context, projectID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE projects SET current_team_size = GREATEST(current_team_size - 1, 1), updated_at = NOW() WHERE id = $1`,
		projectID)
	return err
}

// prefixedUserColumns qualifies the shared user column list for joins.
func prefixedUserColumns(alias string) string {
	return alias + `.id, ` + alias + `.email, ` + alias + `.password, ` + alias + `.name, ` +
		alias + `.contact_info, ` + alias + `.skills, ` + alias + `.experience_description, ` +
		alias + `.work_mode, ` + alias + `.partner_description, ` + alias + `.location_preference, ` +
		alias + `.specific_location, ` + alias + `.is_public, ` + alias + `.avatar_url, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}
