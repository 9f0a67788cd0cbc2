package backend

import (
	"database/sql"
	"errors"
	"fmt"
)

const dailyGoalCols = `id, user_id, project_id, title, completed, date, "order", created_at`

func scanDailyGoal(s scanner) (DailyGoalRow, error) {
	var g DailyGoalRow
	var project sql.NullString
	var completed int
	var createdAt string
	if err := s.Scan(&g.ID, &g.UserID, &project, &g.Title, &completed, &g.Date, &g.Order, &createdAt); err != nil {
		return g, err
	}
	g.ProjectID = nullString(project)
	g.Completed = completed == 1
	g.CreatedAt = parseTime(createdAt)
	return g, nil
}

func (b *Backend) CreateDailyGoal(userID string, in DailyGoalRow) (*DailyGoalRow, error) {
	if err := b.ownProject(userID, in.ProjectID); err != nil {
		return nil, err
	}
	id := newID()
	_, err := b.db.Exec(
		`INSERT INTO daily_goals (id, user_id, project_id, title, completed, date, "order", created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, in.ProjectID, in.Title, in.Completed, in.Date, in.Order, b.stamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert daily goal: %w", err)
	}
	return b.GetDailyGoal(userID, id)
}

func (b *Backend) GetDailyGoal(userID, id string) (*DailyGoalRow, error) {
	g, err := scanDailyGoal(b.db.QueryRow(
		`SELECT `+dailyGoalCols+` FROM daily_goals WHERE user_id = ? AND id = ?`, userID, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get daily goal %s: %w", id, err)
	}
	return &g, nil
}

func (b *Backend) ListDailyGoals(userID string) ([]DailyGoalRow, error) {
	rows, err := b.db.Query(
		`SELECT `+dailyGoalCols+` FROM daily_goals WHERE user_id = ? ORDER BY "order", created_at`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list daily goals: %w", err)
	}
	defer rows.Close()

	goals := []DailyGoalRow{}
	for rows.Next() {
		g, err := scanDailyGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (b *Backend) UpdateDailyGoal(userID, id string, f Fields) (*DailyGoalRow, error) {
	set, args, err := setClause(f, dailyGoalColumns)
	if err != nil {
		return nil, err
	}
	if err := b.ownPatchProject(userID, f); err != nil {
		return nil, err
	}
	if set == "" {
		return b.GetDailyGoal(userID, id)
	}
	args = append(args, userID, id)
	err = requireOne(b.db.Exec(`UPDATE daily_goals SET `+set+` WHERE user_id = ? AND id = ?`, args...))
	if err != nil {
		return nil, fmt.Errorf("update daily goal %s: %w", id, err)
	}
	return b.GetDailyGoal(userID, id)
}

func (b *Backend) DeleteDailyGoal(userID, id string) error {
	err := requireOne(b.db.Exec(`DELETE FROM daily_goals WHERE user_id = ? AND id = ?`, userID, id))
	if err != nil {
		return fmt.Errorf("delete daily goal %s: %w", id, err)
	}
	return nil
}
