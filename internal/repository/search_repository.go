package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// sqlxSearchRepository assembles the directory queries dynamically from the
// caller's filter set. Both directories follow the same shape the original
// listings had: public rows only, newest first, windowed total for
// pagination.
type sqlxSearchRepository struct {
	db *sqlx.DB
}

func NewSearchRepository(db *sqlx.DB) SearchRepository {
	return &sqlxSearchRepository{db: db}
}

type talentRow struct {
	ID                    string         `db:"id"`
	Email                 string         `db:"email"`
	Name                  string         `db:"name"`
	ContactInfo           *string        `db:"contact_info"`
	Skills                pq.StringArray `db:"skills"`
	ExperienceDescription string         `db:"experience_description"`
	WorkMode              string         `db:"work_mode"`
	PartnerDescription    string         `db:"partner_description"`
	LocationPreference    string         `db:"location_preference"`
	SpecificLocation      *string        `db:"specific_location"`
	IsPublic              bool           `db:"is_public"`
	AvatarURL             *string        `db:"avatar_url"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
	TotalCount            int            `db:"total_count"`
}

type projectRow struct {
	ID              string         `db:"id"`
	CreatorID       string         `db:"creator_id"`
	Title           string         `db:"title"`
	Description     string         `db:"description"`
	CurrentTeamSize int            `db:"current_team_size"`
	TargetTeamSize  int            `db:"target_team_size"`
	RequiredRoles   pq.StringArray `db:"required_roles"`
	RequiredSkills  pq.StringArray `db:"required_skills"`
	ProjectStage    string         `db:"project_stage"`
	IsRecruiting    bool           `db:"is_recruiting"`
	IsPublic        bool           `db:"is_public"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
	TotalCount      int            `db:"total_count"`

	CreatorName      string  `db:"creator_name"`
	CreatorAvatarURL *string `db:"creator_avatar_url"`
}

func (r *sqlxSearchRepository) SearchTalents(ctx context.Context, filters TalentFilters, limit, offset int) ([]*User, int, error) {
	conds := []string{"is_public = TRUE"}
	var args []interface{}

	if kw := strings.TrimSpace(filters.Keyword); kw != "" {
		args = append(args, "%"+kw+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(name ILIKE $%d OR experience_description ILIKE $%d OR partner_description ILIKE $%d)", n, n, n))
	}
	if len(filters.Skills) > 0 {
		args = append(args, pq.Array(filters.Skills))
		conds = append(conds, fmt.Sprintf("skills && $%d", len(args)))
	}
	if len(filters.WorkModes) > 0 {
		args = append(args, pq.Array(filters.WorkModes))
		conds = append(conds, fmt.Sprintf("work_mode = ANY($%d)", len(args)))
	}
	if len(filters.LocationPreferences) > 0 {
		args = append(args, pq.Array(filters.LocationPreferences))
		conds = append(conds, fmt.Sprintf("location_preference = ANY($%d)", len(args)))
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, email, name, contact_info, skills, experience_description,
			work_mode, partner_description, location_preference, specific_location,
			is_public, avatar_url, created_at, updated_at,
			COUNT(*) OVER() AS total_count
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(conds, " AND "), len(args)-1, len(args))

	var rows []talentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	users := make([]*User, len(rows))
	total := 0
	for i, row := range rows {
		total = row.TotalCount
		users[i] = &User{
			ID:                    row.ID,
			Email:                 row.Email,
			Name:                  row.Name,
			ContactInfo:           row.ContactInfo,
			Skills:                row.Skills,
			ExperienceDescription: row.ExperienceDescription,
			WorkMode:              WorkMode(row.WorkMode),
			PartnerDescription:    row.PartnerDescription,
			LocationPreference:    LocationPreference(row.LocationPreference),
			SpecificLocation:      row.SpecificLocation,
			IsPublic:              row.IsPublic,
			AvatarURL:             row.AvatarURL,
			CreatedAt:             row.CreatedAt,
			UpdatedAt:             row.UpdatedAt,
		}
	}
	return users, total, nil
}

func (r *sqlxSearchRepository) SearchProjects(ctx context.Context, filters ProjectFilters, limit, offset int) ([]*Project, int, error) {
	conds := []string{"p.is_public = TRUE", "p.is_recruiting = TRUE"}
	var args []interface{}

	if kw := strings.TrimSpace(filters.Keyword); kw != "" {
		args = append(args, "%"+kw+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", n, n))
	}
	if len(filters.Skills) > 0 {
		args = append(args, pq.Array(filters.Skills))
		conds = append(conds, fmt.Sprintf("p.required_skills && $%d", len(args)))
	}
	if len(filters.RequiredRoles) > 0 {
		args = append(args, pq.Array(filters.RequiredRoles))
		conds = append(conds, fmt.Sprintf("p.required_roles && $%d", len(args)))
	}
	if len(filters.Stages) > 0 {
		args = append(args, pq.Array(filters.Stages))
		conds = append(conds, fmt.Sprintf("p.project_stage = ANY($%d)", len(args)))
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT p.id, p.creator_id, p.title, p.description, p.current_team_size,
			p.target_team_size, p.required_roles, p.required_skills, p.project_stage,
			p.is_recruiting, p.is_public, p.created_at, p.updated_at,
			u.name AS creator_name, u.avatar_url AS creator_avatar_url,
			COUNT(*) OVER() AS total_count
		FROM projects p
		JOIN users u ON u.id = p.creator_id
		WHERE %s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(conds, " AND "), len(args)-1, len(args))

	var rows []projectRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	projects := make([]*Project, len(rows))
	total := 0
	for i, row := range rows {
		total = row.TotalCount
		projects[i] = &Project{
			ID:              row.ID,
			CreatorID:       row.CreatorID,
			Title:           row.Title,
			Description:     row.Description,
			CurrentTeamSize: row.CurrentTeamSize,
			TargetTeamSize:  row.TargetTeamSize,
			RequiredRoles:   row.RequiredRoles,
			RequiredSkills:  row.RequiredSkills,
			ProjectStage:    ProjectStage(row.ProjectStage),
			IsRecruiting:    row.IsRecruiting,
			IsPublic:        row.IsPublic,
			CreatedAt:       row.CreatedAt,
			UpdatedAt:       row.UpdatedAt,
			Creator: &User{
				ID:        row.CreatorID,
				Name:      row.CreatorName,
				AvatarURL: row.CreatorAvatarURL,
			},
		}
	}
	return projects, total, nil
}
