package backend

import (
	"database/sql"
	"errors"
	"fmt"
)

const habitCols = `id, user_id, title, icon, frequency, target_count, color, created_at`

func scanHabit(s scanner) (HabitRow, error) {
	var h HabitRow
	var createdAt string
	if err := s.Scan(&h.ID, &h.UserID, &h.Title, &h.Icon, &h.Frequency, &h.TargetCount, &h.Color, &createdAt); err != nil {
		return h, err
	}
	h.CreatedAt = parseTime(createdAt)
	return h, nil
}

func (b *Backend) CreateHabit(userID string, in HabitRow) (*HabitRow, error) {
	id := newID()
	if in.Frequency == "" {
		in.Frequency = "daily"
	}
	if in.TargetCount == 0 {
		in.TargetCount = 1
	}
	_, err := b.db.Exec(
		`INSERT INTO habits (id, user_id, title, icon, frequency, target_count, color, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, in.Title, in.Icon, in.Frequency, in.TargetCount, in.Color, b.stamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert habit: %w", err)
	}
	return b.GetHabit(userID, id)
}

func (b *Backend) GetHabit(userID, id string) (*HabitRow, error) {
	h, err := scanHabit(b.db.QueryRow(
		`SELECT `+habitCols+` FROM habits WHERE user_id = ? AND id = ?`, userID, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get habit %s: %w", id, err)
	}
	return &h, nil
}

// ListHabits returns the user's habits with their completion records joined.
func (b *Backend) ListHabits(userID string) ([]HabitRow, error) {
	rows, err := b.db.Query(
		`SELECT `+habitCols+` FROM habits WHERE user_id = ? ORDER BY created_at`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	habits := []HabitRow{}
	index := make(map[string]int)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		h.Completions = []HabitCompletionRow{}
		index[h.ID] = len(habits)
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	crows, err := b.db.Query(
		`SELECT c.id, c.habit_id, c.completed_date, c.created_at
		 FROM habit_completions c
		 JOIN habits h ON h.id = c.habit_id
		 WHERE h.user_id = ?
		 ORDER BY c.completed_date`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list habit completions: %w", err)
	}
	defer crows.Close()

	for crows.Next() {
		c, err := scanCompletion(crows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[c.HabitID]; ok {
			habits[i].Completions = append(habits[i].Completions, c)
		}
	}
	return habits, crows.Err()
}

func (b *Backend) DeleteHabit(userID, id string) error {
	err := requireOne(b.db.Exec(`DELETE FROM habits WHERE user_id = ? AND id = ?`, userID, id))
	if err != nil {
		return fmt.Errorf("delete habit %s: %w", id, err)
	}
	return nil
}

func scanCompletion(s scanner) (HabitCompletionRow, error) {
	var c HabitCompletionRow
	var createdAt string
	if err := s.Scan(&c.ID, &c.HabitID, &c.CompletedDate, &createdAt); err != nil {
		return c, err
	}
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}

// CompletionFilter narrows ListCompletions. Empty fields match everything.
type CompletionFilter struct {
	HabitID       string
	CompletedDate string
}

func (b *Backend) ListCompletions(userID string, f CompletionFilter) ([]HabitCompletionRow, error) {
	query := `SELECT c.id, c.habit_id, c.completed_date, c.created_at
		FROM habit_completions c JOIN habits h ON h.id = c.habit_id
		WHERE h.user_id = ?`
	args := []any{userID}
	if f.HabitID != "" {
		query += ` AND c.habit_id = ?`
		args = append(args, f.HabitID)
	}
	if f.CompletedDate != "" {
		query += ` AND c.completed_date = ?`
		args = append(args, f.CompletedDate)
	}
	query += ` ORDER BY c.completed_date`

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	out := []HabitCompletionRow{}
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (b *Backend) CreateCompletion(userID string, in HabitCompletionRow) (*HabitCompletionRow, error) {
	if _, err := b.GetHabit(userID, in.HabitID); err != nil {
		return nil, err
	}
	c := HabitCompletionRow{ID: newID(), HabitID: in.HabitID, CompletedDate: in.CompletedDate}
	now := b.stamp()
	_, err := b.db.Exec(
		`INSERT INTO habit_completions (id, habit_id, completed_date, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.HabitID, c.CompletedDate, now,
	)
	if isUnique(err) {
		return nil, fmt.Errorf("insert completion %s: %w", in.CompletedDate, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	c.CreatedAt = parseTime(now)
	return &c, nil
}

func (b *Backend) DeleteCompletion(userID, id string) error {
	err := requireOne(b.db.Exec(
		`DELETE FROM habit_completions
		 WHERE id = ? AND habit_id IN (SELECT id FROM habits WHERE user_id = ?)`, id, userID,
	))
	if err != nil {
		return fmt.Errorf("delete completion %s: %w", id, err)
	}
	return nil
}
