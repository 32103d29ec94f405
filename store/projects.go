package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"KanbanService/models"
)

// ListProjects returns every project ordered by id.
func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, startDate, endDate FROM projects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// GetProject retrieves a project by id. It returns ErrNotFound when it does not exist.
func (s *Store) GetProject(ctx context.Context, id int) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, startDate, endDate FROM projects WHERE id = ?", id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return p, err
}

// CreateProject inserts a project and sets its Id.
func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO projects(name, description, startDate, endDate) VALUES(?, ?, ?, ?)",
		p.Name, nullString(p.Description), nullTime(p.StartDate), nullTime(p.EndDate))
	if err != nil {
		return fmt.Errorf("failed to execute SQL statement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to retrieve the last inserted ID: %w", err)
	}
	p.Id = int(id)
	return nil
}

// CreateUser inserts a user and sets its UserId.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users(username, profilePictureUrl) VALUES(?, ?)",
		u.Username, nullString(u.ProfilePictureUrl))
	if err != nil {
		return fmt.Errorf("failed to execute SQL statement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to retrieve the last inserted ID: %w", err)
	}
	u.UserId = int(id)
	return nil
}

func scanProject(row scanner) (*models.Project, error) {
	var (
		p           models.Project
		description sql.NullString
		start, end  sql.NullTime
	)
	if err := row.Scan(&p.Id, &p.Name, &description, &start, &end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan row into Project struct: %w", err)
	}
	p.Description = description.String
	p.StartDate = timePtr(start)
	p.EndDate = timePtr(end)
	return &p, nil
}
