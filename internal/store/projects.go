package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Project is one design document plus its canvas settings and sharing list.
type Project struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	OwnerID          string    `json:"ownerId"`
	CanvasWidth      int       `json:"canvasWidth"`
	CanvasHeight     int       `json:"canvasHeight"`
	CanvasBackground string    `json:"canvasBackground"`
	Collaborators    []string  `json:"collaborators"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ProjectPatch carries the mutable project fields; nil means unchanged.
type ProjectPatch struct {
	Name             *string
	CanvasWidth      *int
	CanvasHeight     *int
	CanvasBackground *string
}

// CreateProject inserts a new project owned by ownerID and returns it.
func (s *Store) CreateProject(ctx context.Context, ownerID, name string, width, height int, background string) (*Project, error) {
	if width <= 0 {
		width = 1200
	}
	if height <= 0 {
		height = 800
	}
	if background == "" {
		background = "#ffffff"
	}

	p := &Project{
		ID:               uuid.NewString(),
		Name:             name,
		OwnerID:          ownerID,
		CanvasWidth:      width,
		CanvasHeight:     height,
		CanvasBackground: background,
		CreatedAt:        time.Now().UTC(),
	}
	p.UpdatedAt = p.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, owner_id, canvas_width, canvas_height, canvas_background, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.OwnerID, p.CanvasWidth, p.CanvasHeight, p.CanvasBackground, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// GetProject loads a project by id, including its collaborator list. The
// caller is responsible for access checks.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	p := &Project{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id, canvas_width, canvas_height, canvas_background, created_at, updated_at
		 FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.OwnerID, &p.CanvasWidth, &p.CanvasHeight, &p.CanvasBackground, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM project_collaborators WHERE project_id = ? ORDER BY added_at`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load collaborators: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan collaborator: %w", err)
		}
		p.Collaborators = append(p.Collaborators, userID)
	}
	return p, rows.Err()
}

// ListProjects returns every project the user owns or collaborates on,
// newest first.
func (s *Store) ListProjects(ctx context.Context, userID string) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT p.id, p.name, p.owner_id, p.canvas_width, p.canvas_height, p.canvas_background, p.created_at, p.updated_at
		 FROM projects p
		 LEFT JOIN project_collaborators c ON c.project_id = p.id
		 WHERE p.owner_id = ? OR c.user_id = ?
		 ORDER BY p.updated_at DESC`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p := &Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.OwnerID, &p.CanvasWidth, &p.CanvasHeight, &p.CanvasBackground, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateProject applies the patch. Only the owner may change project settings.
func (s *Store) UpdateProject(ctx context.Context, userID, id string, patch ProjectPatch) (*Project, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != userID {
		return nil, ErrForbidden
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.CanvasWidth != nil {
		p.CanvasWidth = *patch.CanvasWidth
	}
	if patch.CanvasHeight != nil {
		p.CanvasHeight = *patch.CanvasHeight
	}
	if patch.CanvasBackground != nil {
		p.CanvasBackground = *patch.CanvasBackground
	}
	p.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, canvas_width = ?, canvas_height = ?, canvas_background = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.CanvasWidth, p.CanvasHeight, p.CanvasBackground, p.UpdatedAt, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return p, nil
}

// DeleteProject removes a project and, via cascade, its elements and
// collaborator rows. Only the owner may delete.
func (s *Store) DeleteProject(ctx context.Context, userID, id string) error {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerID != userID {
		return ErrForbidden
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// ShareProject grants collaboratorID access. Only the owner may share, and
// re-sharing with an existing collaborator is a no-op.
func (s *Store) ShareProject(ctx context.Context, userID, id, collaboratorID string) error {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerID != userID {
		return ErrForbidden
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO project_collaborators (project_id, user_id, added_at) VALUES (?, ?, ?)`,
		id, collaboratorID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to share project: %w", err)
	}
	return nil
}

// Access reports whether the user may open the project: ErrNotFound if the
// project does not exist, ErrForbidden if they are neither owner nor
// collaborator, nil otherwise.
func (s *Store) Access(ctx context.Context, userID, id string) error {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerID == userID {
		return nil
	}
	for _, c := range p.Collaborators {
		if c == userID {
			return nil
		}
	}
	return ErrForbidden
}

// Touch bumps a project's updated_at. Called after element mutations so the
// project list sorts recently edited work first.
func (s *Store) Touch(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to touch project: %w", err)
	}
	return nil
}
