// Package mapper converts between backend rows (snake_case, nullable columns)
// and the client entities in package model. The functions are total: a
// missing backend value becomes a nil optional, never an error.
package mapper

import (
	"github.com/sadopc/planner/internal/backend"
	"github.com/sadopc/planner/internal/model"
)

func DBProjectToProject(r backend.ProjectRow) model.Project {
	return model.Project{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Color:       r.Color,
		Icon:        r.Icon,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Type:        model.ProjectType(r.Type),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func ProjectToDB(p model.Project) backend.ProjectRow {
	return backend.ProjectRow{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Color:       p.Color,
		Icon:        p.Icon,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Type:        string(p.Type),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// DBTaskToTask maps a task row. Subtasks are not persisted and always start empty.
func DBTaskToTask(r backend.TaskRow) model.Task {
	return model.Task{
		ID:               r.ID,
		ProjectID:        r.ProjectID,
		Title:            r.Title,
		Description:      r.Description,
		Completed:        r.Completed,
		Priority:         model.Priority(r.Priority),
		Category:         model.Category(r.Category),
		DueDate:          r.DueDate,
		DueTime:          r.DueTime,
		EstimatedMinutes: r.EstimatedMinutes,
		ActualMinutes:    r.ActualMinutes,
		Subtasks:         []model.SubTask{},
		Status:           model.Status(r.Status),
		Order:            r.Order,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func TaskToDB(t model.Task) backend.TaskRow {
	return backend.TaskRow{
		ID:               t.ID,
		ProjectID:        t.ProjectID,
		Title:            t.Title,
		Description:      t.Description,
		Completed:        t.Completed,
		Priority:         string(t.Priority),
		Category:         string(t.Category),
		DueDate:          t.DueDate,
		DueTime:          t.DueTime,
		EstimatedMinutes: t.EstimatedMinutes,
		ActualMinutes:    t.ActualMinutes,
		Status:           string(t.Status),
		Order:            t.Order,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func DBTimeBlockToTimeBlock(r backend.TimeBlockRow) model.TimeBlock {
	return model.TimeBlock{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		Title:     r.Title,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Date:      r.Date,
		Category:  model.Category(r.Category),
		Color:     r.Color,
		TaskID:    r.TaskID,
		IsBlocked: r.IsBlocked,
	}
}

func TimeBlockToDB(b model.TimeBlock) backend.TimeBlockRow {
	return backend.TimeBlockRow{
		ID:        b.ID,
		ProjectID: b.ProjectID,
		Title:     b.Title,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Date:      b.Date,
		Category:  string(b.Category),
		Color:     b.Color,
		TaskID:    b.TaskID,
		IsBlocked: b.IsBlocked,
	}
}

func DBGoalToGoal(r backend.DailyGoalRow) model.DailyGoal {
	return model.DailyGoal{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		Title:     r.Title,
		Completed: r.Completed,
		Date:      r.Date,
		Order:     r.Order,
	}
}

func GoalToDB(g model.DailyGoal) backend.DailyGoalRow {
	return backend.DailyGoalRow{
		ID:        g.ID,
		ProjectID: g.ProjectID,
		Title:     g.Title,
		Completed: g.Completed,
		Date:      g.Date,
		Order:     g.Order,
	}
}

// DBHabitToHabit flattens the joined completion rows into completed dates.
func DBHabitToHabit(r backend.HabitRow) model.Habit {
	dates := make([]string, 0, len(r.Completions))
	for _, c := range r.Completions {
		dates = append(dates, c.CompletedDate)
	}
	return model.Habit{
		ID:             r.ID,
		Title:          r.Title,
		Icon:           r.Icon,
		Color:          r.Color,
		Frequency:      model.Frequency(r.Frequency),
		TargetCount:    r.TargetCount,
		CompletedDates: dates,
	}
}

// HabitToDB drops completed dates; those live in their own table.
func HabitToDB(h model.Habit) backend.HabitRow {
	return backend.HabitRow{
		ID:          h.ID,
		Title:       h.Title,
		Icon:        h.Icon,
		Color:       h.Color,
		Frequency:   string(h.Frequency),
		TargetCount: h.TargetCount,
	}
}

func DBSessionToSession(r backend.FocusSessionRow) model.FocusSession {
	return model.FocusSession{
		ID:        r.ID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Duration:  r.Duration,
		TaskID:    r.TaskID,
		Type:      model.SessionType(r.Type),
		Completed: r.Completed,
	}
}

func SessionToDB(s model.FocusSession) backend.FocusSessionRow {
	return backend.FocusSessionRow{
		ID:        s.ID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Duration:  s.Duration,
		TaskID:    s.TaskID,
		Type:      string(s.Type),
		Completed: s.Completed,
	}
}
