package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/teampulse/teampulse/internal/types"
)

// CreateProject inserts a new project and fills in its ID.
func (s *SQLiteStorage) CreateProject(ctx context.Context, p *types.Project) error {
	if p.Name == "" {
		return fmt.Errorf("project requires a name")
	}
	if p.Status == "" {
		p.Status = types.ProjectActive
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name, status, created_at) VALUES (?, ?, ?)`,
		p.Name, p.Status, fmtTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create project %q: %w", p.Name, err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read project id: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID.
func (s *SQLiteStorage) GetProject(ctx context.Context, id int64) (*types.Project, error) {
	return s.getProject(ctx, `SELECT id, name, status, created_at FROM projects WHERE id = ?`, id)
}

// GetProjectByName retrieves a project by its unique name.
func (s *SQLiteStorage) GetProjectByName(ctx context.Context, name string) (*types.Project, error) {
	return s.getProject(ctx, `SELECT id, name, status, created_at FROM projects WHERE name = ?`, name)
}

func (s *SQLiteStorage) getProject(ctx context.Context, query string, arg any) (*types.Project, error) {
	var p types.Project
	var createdAt string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Name, &p.Status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project not found: %v", arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListActiveProjects returns all projects with status active, ordered by name.
func (s *SQLiteStorage) ListActiveProjects(ctx context.Context) ([]*types.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, status, created_at FROM projects WHERE status = ? ORDER BY name`,
		types.ProjectActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*types.Project
	for rows.Next() {
		var p types.Project
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// AddTeamMember inserts a roster entry and fills in its ID.
func (s *SQLiteStorage) AddTeamMember(ctx context.Context, m *types.TeamMember) error {
	if m.Username == "" {
		return fmt.Errorf("team member requires a username")
	}
	if m.Role == "" {
		m.Role = types.RoleDeveloper
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO team_members (project_id, username, email, role, is_active, joined_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ProjectID, m.Username, m.Email, m.Role, m.IsActive, fmtTime(m.JoinedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to add team member %q: %w", m.Username, err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read member id: %w", err)
	}
	return nil
}

// ListTeamMembers returns the active members of a project.
func (s *SQLiteStorage) ListTeamMembers(ctx context.Context, projectID int64) ([]*types.TeamMember, error) {
	return s.listMembers(ctx,
		`SELECT id, project_id, username, email, role, is_active, joined_at
		 FROM team_members WHERE project_id = ? AND is_active = 1 ORDER BY username`,
		projectID,
	)
}

// ListManagers returns the active managers of a project.
func (s *SQLiteStorage) ListManagers(ctx context.Context, projectID int64) ([]*types.TeamMember, error) {
	return s.listMembers(ctx,
		`SELECT id, project_id, username, email, role, is_active, joined_at
		 FROM team_members WHERE project_id = ? AND role = 'manager' AND is_active = 1 ORDER BY username`,
		projectID,
	)
}

// ListAllManagers returns every active manager across projects. Used as the
// notification fallback when a project has no manager of its own.
func (s *SQLiteStorage) ListAllManagers(ctx context.Context) ([]*types.TeamMember, error) {
	return s.listMembers(ctx,
		`SELECT id, project_id, username, email, role, is_active, joined_at
		 FROM team_members WHERE role = 'manager' AND is_active = 1 ORDER BY username`,
	)
}

func (s *SQLiteStorage) listMembers(ctx context.Context, query string, args ...any) ([]*types.TeamMember, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	var members []*types.TeamMember
	for rows.Next() {
		var m types.TeamMember
		var joinedAt string
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Username, &m.Email, &m.Role, &m.IsActive, &joinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		if m.JoinedAt, err = parseTime(joinedAt); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}
