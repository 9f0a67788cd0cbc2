package backend

import (
	"database/sql"
	"errors"
	"fmt"
)

const focusSessionCols = `id, user_id, start_time, end_time, duration, task_id, type, completed, created_at`

func scanFocusSession(s scanner) (FocusSessionRow, error) {
	var fs FocusSessionRow
	var start, createdAt string
	var end, task sql.NullString
	var completed int
	if err := s.Scan(&fs.ID, &fs.UserID, &start, &end, &fs.Duration, &task, &fs.Type, &completed, &createdAt); err != nil {
		return fs, err
	}
	fs.StartTime = parseTime(start)
	fs.EndTime = nullTime(end)
	fs.TaskID = nullString(task)
	fs.Completed = completed == 1
	fs.CreatedAt = parseTime(createdAt)
	return fs, nil
}

func (b *Backend) CreateFocusSession(userID string, in FocusSessionRow) (*FocusSessionRow, error) {
	id := newID()
	if in.StartTime.IsZero() {
		in.StartTime = b.now()
	}
	if in.Type == "" {
		in.Type = "pomodoro"
	}
	var end any
	if in.EndTime != nil {
		end = formatTime(*in.EndTime)
	}
	_, err := b.db.Exec(
		`INSERT INTO focus_sessions (id, user_id, start_time, end_time, duration, task_id, type, completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, formatTime(in.StartTime), end, in.Duration, in.TaskID, in.Type, in.Completed, b.stamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert focus session: %w", err)
	}
	return b.GetFocusSession(userID, id)
}

func (b *Backend) GetFocusSession(userID, id string) (*FocusSessionRow, error) {
	fs, err := scanFocusSession(b.db.QueryRow(
		`SELECT `+focusSessionCols+` FROM focus_sessions WHERE user_id = ? AND id = ?`, userID, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get focus session %s: %w", id, err)
	}
	return &fs, nil
}

// ListFocusSessions returns the user's sessions, most recent first.
func (b *Backend) ListFocusSessions(userID string) ([]FocusSessionRow, error) {
	rows, err := b.db.Query(
		`SELECT `+focusSessionCols+` FROM focus_sessions WHERE user_id = ? ORDER BY start_time DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list focus sessions: %w", err)
	}
	defer rows.Close()

	sessions := []FocusSessionRow{}
	for rows.Next() {
		fs, err := scanFocusSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, fs)
	}
	return sessions, rows.Err()
}

func (b *Backend) UpdateFocusSession(userID, id string, f Fields) (*FocusSessionRow, error) {
	set, args, err := setClause(f, focusSessionColumns)
	if err != nil {
		return nil, err
	}
	if set == "" {
		return b.GetFocusSession(userID, id)
	}
	args = append(args, userID, id)
	err = requireOne(b.db.Exec(`UPDATE focus_sessions SET `+set+` WHERE user_id = ? AND id = ?`, args...))
	if err != nil {
		return nil, fmt.Errorf("update focus session %s: %w", id, err)
	}
	return b.GetFocusSession(userID, id)
}
