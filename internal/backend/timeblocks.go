package backend

import (
	"database/sql"
	"errors"
	"fmt"
)

const timeBlockCols = `id, user_id, project_id, title, start_time, end_time, date, category, color, task_id, is_blocked, created_at`

func scanTimeBlock(s scanner) (TimeBlockRow, error) {
	var tb TimeBlockRow
	var project, color, task sql.NullString
	var blocked int
	var createdAt string
	err := s.Scan(&tb.ID, &tb.UserID, &project, &tb.Title, &tb.StartTime, &tb.EndTime, &tb.Date,
		&tb.Category, &color, &task, &blocked, &createdAt)
	if err != nil {
		return tb, err
	}
	tb.ProjectID = nullString(project)
	tb.Color = nullString(color)
	tb.TaskID = nullString(task)
	tb.IsBlocked = blocked == 1
	tb.CreatedAt = parseTime(createdAt)
	return tb, nil
}

func (b *Backend) CreateTimeBlock(userID string, in TimeBlockRow) (*TimeBlockRow, error) {
	if err := b.ownProject(userID, in.ProjectID); err != nil {
		return nil, err
	}
	id := newID()
	_, err := b.db.Exec(
		`INSERT INTO time_blocks (id, user_id, project_id, title, start_time, end_time, date, category, color, task_id, is_blocked, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, in.ProjectID, in.Title, in.StartTime, in.EndTime, in.Date, in.Category, in.Color, in.TaskID, in.IsBlocked, b.stamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert time block: %w", err)
	}
	return b.GetTimeBlock(userID, id)
}

func (b *Backend) GetTimeBlock(userID, id string) (*TimeBlockRow, error) {
	tb, err := scanTimeBlock(b.db.QueryRow(
		`SELECT `+timeBlockCols+` FROM time_blocks WHERE user_id = ? AND id = ?`, userID, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get time block %s: %w", id, err)
	}
	return &tb, nil
}

// ListTimeBlocks returns the user's blocks ordered by start time.
func (b *Backend) ListTimeBlocks(userID string) ([]TimeBlockRow, error) {
	rows, err := b.db.Query(
		`SELECT `+timeBlockCols+` FROM time_blocks WHERE user_id = ? ORDER BY start_time, date`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list time blocks: %w", err)
	}
	defer rows.Close()

	blocks := []TimeBlockRow{}
	for rows.Next() {
		tb, err := scanTimeBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, tb)
	}
	return blocks, rows.Err()
}

func (b *Backend) UpdateTimeBlock(userID, id string, f Fields) (*TimeBlockRow, error) {
	set, args, err := setClause(f, timeBlockColumns)
	if err != nil {
		return nil, err
	}
	if err := b.ownPatchProject(userID, f); err != nil {
		return nil, err
	}
	if set == "" {
		return b.GetTimeBlock(userID, id)
	}
	args = append(args, userID, id)
	err = requireOne(b.db.Exec(`UPDATE time_blocks SET `+set+` WHERE user_id = ? AND id = ?`, args...))
	if err != nil {
		return nil, fmt.Errorf("update time block %s: %w", id, err)
	}
	return b.GetTimeBlock(userID, id)
}

func (b *Backend) DeleteTimeBlock(userID, id string) error {
	err := requireOne(b.db.Exec(`DELETE FROM time_blocks WHERE user_id = ? AND id = ?`, userID, id))
	if err != nil {
		return fmt.Errorf("delete time block %s: %w", id, err)
	}
	return nil
}
