package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"main/internal/element"
)

// CreateElement inserts one element row. An empty ID gets a fresh one;
// timestamps are stamped here.
func (s *Store) CreateElement(ctx context.Context, el *element.Element) (*element.Element, error) {
	cp := el.Clone()
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now

	if cp.ParentID != "" {
		if _, err := s.getElement(ctx, cp.ProjectID, cp.ParentID); err != nil {
			return nil, fmt.Errorf("parent element: %w", err)
		}
	}

	styles, err := marshalStyles(cp.Styles)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO elements (id, project_id, type, name, content, x, y, width, height, styles, parent_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cp.ID, cp.ProjectID, cp.Type, cp.Name, cp.Content,
		cp.Position.X, cp.Position.Y, cp.Size.Width, cp.Size.Height,
		styles, cp.ParentID, cp.CreatedAt, cp.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create element: %w", err)
	}
	return cp, nil
}

// GetElement loads one element without its Children list populated.
func (s *Store) GetElement(ctx context.Context, projectID, id string) (*element.Element, error) {
	return s.getElement(ctx, projectID, id)
}

func (s *Store) getElement(ctx context.Context, projectID, id string) (*element.Element, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, type, name, content, x, y, width, height, styles, parent_id, created_at, updated_at
		 FROM elements WHERE project_id = ? AND id = ?`, projectID, id)
	el, err := scanElement(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load element: %w", err)
	}
	return el, nil
}

// ListElements returns a project's elements in creation order with Children
// rebuilt from the parent references. Creation order is what the tree store
// and the code generator both key rendering on.
func (s *Store) ListElements(ctx context.Context, projectID string) ([]*element.Element, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, type, name, content, x, y, width, height, styles, parent_id, created_at, updated_at
		 FROM elements WHERE project_id = ? ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list elements: %w", err)
	}
	defer rows.Close()

	var elements []*element.Element
	byID := make(map[string]*element.Element)
	for rows.Next() {
		el, err := scanElement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan element: %w", err)
		}
		elements = append(elements, el)
		byID[el.ID] = el
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, el := range elements {
		if el.ParentID == "" {
			continue
		}
		if parent, ok := byID[el.ParentID]; ok {
			parent.Children = append(parent.Children, el.ID)
		}
	}
	return elements, nil
}

// CountElements reports how many elements a project holds.
func (s *Store) CountElements(ctx context.Context, projectID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM elements WHERE project_id = ?`, projectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count elements: %w", err)
	}
	return n, nil
}

// UpdateElement applies a field-granular patch. Reparenting validates that
// the new parent exists and is not the element itself or a descendant.
func (s *Store) UpdateElement(ctx context.Context, projectID, id string, patch element.Patch) (*element.Element, error) {
	el, err := s.getElement(ctx, projectID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		el.Name = *patch.Name
	}
	if patch.Content != nil {
		el.Content = *patch.Content
	}
	if patch.Position != nil {
		el.Position = *patch.Position
	}
	if patch.Size != nil {
		el.Size = *patch.Size
	}
	if patch.Styles != nil {
		el.Styles = patch.Styles
	}
	if patch.ParentID != nil && *patch.ParentID != el.ParentID {
		if err := s.checkParent(ctx, projectID, id, *patch.ParentID); err != nil {
			return nil, err
		}
		el.ParentID = *patch.ParentID
	}
	el.UpdatedAt = time.Now().UTC()

	styles, err := marshalStyles(el.Styles)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE elements SET name = ?, content = ?, x = ?, y = ?, width = ?, height = ?, styles = ?, parent_id = ?, updated_at = ?
		 WHERE project_id = ? AND id = ?`,
		el.Name, el.Content, el.Position.X, el.Position.Y, el.Size.Width, el.Size.Height,
		styles, el.ParentID, el.UpdatedAt, projectID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update element: %w", err)
	}
	return el, nil
}

// checkParent walks from the candidate parent to the root and rejects the
// move when id appears on the path.
func (s *Store) checkParent(ctx context.Context, projectID, id, parentID string) error {
	for cur := parentID; cur != ""; {
		if cur == id {
			return element.ErrCycle
		}
		var next string
		err := s.db.QueryRowContext(ctx,
			`SELECT parent_id FROM elements WHERE project_id = ? AND id = ?`, projectID, cur).Scan(&next)
		if err == sql.ErrNoRows {
			return element.ErrInvalidParent
		}
		if err != nil {
			return fmt.Errorf("failed to walk ancestry: %w", err)
		}
		cur = next
	}
	return nil
}

// DeleteElement removes an element and every descendant, returning the
// removed ids children-first.
func (s *Store) DeleteElement(ctx context.Context, projectID, id string) ([]string, error) {
	if _, err := s.getElement(ctx, projectID, id); err != nil {
		return nil, err
	}

	var removed []string
	var walk func(string) error
	walk = func(cur string) error {
		rows, err := s.db.QueryContext(ctx,
			`SELECT id FROM elements WHERE project_id = ? AND parent_id = ? ORDER BY created_at, id`, projectID, cur)
		if err != nil {
			return fmt.Errorf("failed to list children: %w", err)
		}
		var children []string
		for rows.Next() {
			var childID string
			if err := rows.Scan(&childID); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan child: %w", err)
			}
			children = append(children, childID)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		for _, childID := range children {
			if err := walk(childID); err != nil {
				return err
			}
		}
		removed = append(removed, cur)
		return nil
	}
	if err := walk(id); err != nil {
		return nil, err
	}

	for _, rid := range removed {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM elements WHERE project_id = ? AND id = ?`, projectID, rid); err != nil {
			return nil, fmt.Errorf("failed to delete element: %w", err)
		}
	}
	return removed, nil
}

// DuplicateElement copies a single element (not its subtree) under the same
// parent, offset on the canvas so the copy is visible.
func (s *Store) DuplicateElement(ctx context.Context, projectID, id string) (*element.Element, error) {
	src, err := s.getElement(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	cp := src.Clone()
	cp.ID = ""
	cp.Name = src.Name + " copy"
	cp.Position.X += 20
	cp.Position.Y += 20
	cp.Children = nil
	return s.CreateElement(ctx, cp)
}

func marshalStyles(styles map[string]any) (string, error) {
	if styles == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(styles)
	if err != nil {
		return "", fmt.Errorf("failed to encode styles: %w", err)
	}
	return string(raw), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanElement(row scanner) (*element.Element, error) {
	el := &element.Element{}
	var styles string
	err := row.Scan(&el.ID, &el.ProjectID, &el.Type, &el.Name, &el.Content,
		&el.Position.X, &el.Position.Y, &el.Size.Width, &el.Size.Height,
		&styles, &el.ParentID, &el.CreatedAt, &el.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if styles != "" && styles != "{}" {
		if err := json.Unmarshal([]byte(styles), &el.Styles); err != nil {
			return nil, fmt.Errorf("failed to decode styles: %w", err)
		}
	}
	return el, nil
}
