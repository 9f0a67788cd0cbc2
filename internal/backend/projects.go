package backend

import (
	"database/sql"
	"errors"
	"fmt"
)

const projectCols = `id, user_id, title, description, color, icon, start_date, end_date, type, created_at, updated_at`

func scanProject(s scanner) (ProjectRow, error) {
	var p ProjectRow
	var desc, color, icon, start, end sql.NullString
	var createdAt, updatedAt string
	if err := s.Scan(&p.ID, &p.UserID, &p.Title, &desc, &color, &icon, &start, &end, &p.Type, &createdAt, &updatedAt); err != nil {
		return p, err
	}
	p.Description = nullString(desc)
	p.Color = nullString(color)
	p.Icon = nullString(icon)
	p.StartDate = nullString(start)
	p.EndDate = nullString(end)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

func (b *Backend) CreateProject(userID string, in ProjectRow) (*ProjectRow, error) {
	id := newID()
	now := b.stamp()
	if in.Type == "" {
		in.Type = "other"
	}
	_, err := b.db.Exec(
		`INSERT INTO projects (id, user_id, title, description, color, icon, start_date, end_date, type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, in.Title, in.Description, in.Color, in.Icon, in.StartDate, in.EndDate, in.Type, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return b.GetProject(userID, id)
}

func (b *Backend) GetProject(userID, id string) (*ProjectRow, error) {
	p, err := scanProject(b.db.QueryRow(
		`SELECT `+projectCols+` FROM projects WHERE user_id = ? AND id = ?`, userID, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return &p, nil
}

// ListProjects returns the user's projects, newest first.
func (b *Backend) ListProjects(userID string) ([]ProjectRow, error) {
	rows, err := b.db.Query(
		`SELECT `+projectCols+` FROM projects WHERE user_id = ? ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []ProjectRow{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (b *Backend) UpdateProject(userID, id string, f Fields) (*ProjectRow, error) {
	set, args, err := setClause(f, projectColumns)
	if err != nil {
		return nil, err
	}
	if set != "" {
		set += ", "
	}
	args = append(args, b.stamp(), userID, id)
	err = requireOne(b.db.Exec(
		`UPDATE projects SET `+set+`updated_at = ? WHERE user_id = ? AND id = ?`, args...,
	))
	if err != nil {
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}
	return b.GetProject(userID, id)
}

// DeleteProject removes the project. Tasks, time blocks and goals that
// referenced it keep existing with a null project_id.
func (b *Backend) DeleteProject(userID, id string) error {
	err := requireOne(b.db.Exec(`DELETE FROM projects WHERE user_id = ? AND id = ?`, userID, id))
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return nil
}

// ownProject rejects a project reference that is not one of the user's
// projects. A nil reference is fine.
func (b *Backend) ownProject(userID string, id *string) error {
	if id == nil {
		return nil
	}
	var n int
	err := b.db.QueryRow(`SELECT COUNT(*) FROM projects WHERE user_id = ? AND id = ?`, userID, *id).Scan(&n)
	if err != nil {
		return fmt.Errorf("check project %s: %w", *id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: unknown project %q", ErrInvalid, *id)
	}
	return nil
}

// ownPatchProject applies ownProject to the project_id of a patch.
func (b *Backend) ownPatchProject(userID string, f Fields) error {
	switch id := f["project_id"].(type) {
	case string:
		return b.ownProject(userID, &id)
	case *string:
		return b.ownProject(userID, id)
	}
	// Absent, null, or a type setClause rejects.
	return nil
}
