package backend

import (
	"database/sql"
	"errors"
	"fmt"
)

const taskCols = `id, user_id, project_id, title, description, completed, priority, category, due_date, due_time,
	estimated_minutes, actual_minutes, status, "order", created_at, updated_at`

func scanTask(s scanner) (TaskRow, error) {
	var t TaskRow
	var project, desc, dueDate, dueTime sql.NullString
	var est, actual sql.NullInt64
	var completed int
	var createdAt, updatedAt string
	err := s.Scan(&t.ID, &t.UserID, &project, &t.Title, &desc, &completed, &t.Priority, &t.Category,
		&dueDate, &dueTime, &est, &actual, &t.Status, &t.Order, &createdAt, &updatedAt)
	if err != nil {
		return t, err
	}
	t.ProjectID = nullString(project)
	t.Description = nullString(desc)
	t.Completed = completed == 1
	t.DueDate = nullString(dueDate)
	t.DueTime = nullString(dueTime)
	t.EstimatedMinutes = nullInt(est)
	t.ActualMinutes = nullInt(actual)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return t, nil
}

func (b *Backend) CreateTask(userID string, in TaskRow) (*TaskRow, error) {
	if err := b.ownProject(userID, in.ProjectID); err != nil {
		return nil, err
	}
	id := newID()
	now := b.stamp()
	_, err := b.db.Exec(
		`INSERT INTO tasks (id, user_id, project_id, title, description, completed, priority, category,
			due_date, due_time, estimated_minutes, actual_minutes, status, "order", created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, in.ProjectID, in.Title, in.Description, in.Completed, in.Priority, in.Category,
		in.DueDate, in.DueTime, in.EstimatedMinutes, in.ActualMinutes, in.Status, in.Order, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return b.GetTask(userID, id)
}

func (b *Backend) GetTask(userID, id string) (*TaskRow, error) {
	t, err := scanTask(b.db.QueryRow(
		`SELECT `+taskCols+` FROM tasks WHERE user_id = ? AND id = ?`, userID, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return &t, nil
}

// ListTasks returns the user's tasks ordered by rank within their status group.
func (b *Backend) ListTasks(userID string) ([]TaskRow, error) {
	rows, err := b.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE user_id = ? ORDER BY "order", created_at`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []TaskRow{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (b *Backend) UpdateTask(userID, id string, f Fields) (*TaskRow, error) {
	set, args, err := setClause(f, taskColumns)
	if err != nil {
		return nil, err
	}
	if err := b.ownPatchProject(userID, f); err != nil {
		return nil, err
	}
	if set != "" {
		set += ", "
	}
	args = append(args, b.stamp(), userID, id)
	err = requireOne(b.db.Exec(
		`UPDATE tasks SET `+set+`updated_at = ? WHERE user_id = ? AND id = ?`, args...,
	))
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}
	return b.GetTask(userID, id)
}

func (b *Backend) DeleteTask(userID, id string) error {
	err := requireOne(b.db.Exec(`DELETE FROM tasks WHERE user_id = ? AND id = ?`, userID, id))
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}
