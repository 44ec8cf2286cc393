package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &pgApplicationRepository{pool: pool}
}

const applicationColumns = `id, project_id, applicant_id, message, status, response_message, created_at, updated_at`

const applicationColumnsA = `a.id, a.project_id, a.applicant_id, a.message, a.status, a.response_message, a.created_at, a.updated_at`

func scanApplication(row pgx.Row) (*Application, error) {
	a := &Application{}
	err := row.Scan(
		&a.ID, &a.ProjectID, &a.ApplicantID, &a.Message, &a.Status,
		&a.ResponseMessage, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *pgApplicationRepository) Create(ctx context.Context, app *Application) error {
	query := `
		INSERT INTO applications (project_id, applicant_id, message, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id, status, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query, app.ProjectID, app.ApplicantID, app.Message).
		Scan(&app.ID, &app.Status, &app.CreatedAt, &app.UpdatedAt)
}

func (r *pgApplicationRepository) FindByID(ctx context.Context, id string) (*Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(r.pool.QueryRow(ctx, query, id))
}

func (r *pgApplicationRepository) FindPendingByPair(ctx context.Context, projectID, applicantID string) (*Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE project_id = $1 AND applicant_id = $2 AND status = 'pending'
	`
	return scanApplication(r.pool.QueryRow(ctx, query, projectID, applicantID))
}

func (r *pgApplicationRepository) FindByApplicant(ctx context.Context, applicantID string) ([]*Application, error) {
	query := `
		SELECT ` + applicationColumnsA + `,
			p.id, p.creator_id, p.title, p.description, p.current_team_size, p.target_team_size,
			p.required_roles, p.required_skills, p.project_stage, p.is_recruiting, p.is_public,
			p.created_at, p.updated_at
		FROM applications a
		JOIN projects p ON p.id = a.project_id
		WHERE a.applicant_id = $1
		ORDER BY a.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*Application
	for rows.Next() {
		a := &Application{Project: &Project{}}
		p := a.Project
		if err := rows.Scan(
			&a.ID, &a.ProjectID, &a.ApplicantID, &a.Message, &a.Status,
			&a.ResponseMessage, &a.CreatedAt, &a.UpdatedAt,
			&p.ID, &p.CreatorID, &p.Title, &p.Description, &p.CurrentTeamSize,
			&p.TargetTeamSize, &p.RequiredRoles, &p.RequiredSkills, &p.ProjectStage,
			&p.IsRecruiting, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *pgApplicationRepository) FindReceivedByCreator(ctx context.Context, creatorID string) ([]*Application, error) {
	query := `
		SELECT ` + applicationColumnsA + `,
			p.id, p.creator_id, p.title, p.description, p.current_team_size, p.target_team_size,
			p.required_roles, p.required_skills, p.project_stage, p.is_recruiting, p.is_public,
			p.created_at, p.updated_at,
			` + prefixedUserColumns("u") + `
		FROM applications a
		JOIN projects p ON p.id = a.project_id
		JOIN users u ON u.id = a.applicant_id
		WHERE p.creator_id = $1
		ORDER BY a.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*Application
	for rows.Next() {
		a := &Application{Project: &Project{}, Applicant: &User{}}
		p, u := a.Project, a.Applicant
		if err := rows.Scan(
			&a.ID, &a.ProjectID, &a.ApplicantID, &a.Message, &a.Status,
			&a.ResponseMessage, &a.CreatedAt, &a.UpdatedAt,
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
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *pgApplicationRepository) FindByProject(ctx context.Context, projectID string) ([]*Application, error) {
	query := `
		SELECT ` + applicationColumnsA + `, ` + prefixedUserColumns("u") + `
		FROM applications a
		JOIN users u ON u.id = a.applicant_id
		WHERE a.project_id = $1
		ORDER BY a.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*Application
	for rows.Next() {
		a := &Application{Applicant: &User{}}
		u := a.Applicant
		if err := rows.Scan(
			&a.ID, &a.ProjectID, &a.ApplicantID, &a.Message, &a.Status,
			&a.ResponseMessage, &a.CreatedAt, &a.UpdatedAt,
			&u.ID, &u.Email, &u.Password, &u.Name, &u.ContactInfo, &u.Skills,
			&u.ExperienceDescription, &u.WorkMode, &u.PartnerDescription,
			&u.LocationPreference, &u.SpecificLocation, &u.IsPublic, &u.AvatarURL,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *pgApplicationRepository) MarkAccepted(ctx context.Context, id, response string) (bool, error) {
	query := `
		UPDATE applications
		SET status = 'accepted', response_message = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.pool.Exec(ctx, query, id, response)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgApplicationRepository) MarkRejected(ctx context.Context, id, reason string) (bool, error) {
	query := `
		UPDATE applications
		SET status = 'rejected', response_message = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.pool.Exec(ctx, query, id, reason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgApplicationRepository) RevertToPending(ctx context.Context, id string) error {
	query := `
		UPDATE applications
		SET status = 'pending', response_message = NULL, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *pgApplicationRepository) DeletePending(ctx context.Context, id, applicantID string) (bool, error) {
	query := `DELETE FROM applications WHERE id = $1 AND applicant_id = $2 AND status = 'pending'`
	tag, err := r.pool.Exec(ctx, query, id, applicantID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgApplicationRepository) DeleteStalePending(ctx context.Context, olderThan time.Time) (int, error) {
	query := `DELETE FROM applications WHERE status = 'pending' AND created_at < $1`
	tag, err := r.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *pgApplicationRepository) FindStalePending(ctx context.Context, olderThan time.Time) ([]*Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*Application
	for rows.Next() {
		a := &Application{}
		if err := rows.Scan(
			&a.ID, &a.ProjectID, &a.ApplicantID, &a.Message, &a.Status,
			&a.ResponseMessage, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}
