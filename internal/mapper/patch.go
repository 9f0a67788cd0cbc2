package mapper

import (
	"github.com/sadopc/planner/internal/backend"
	"github.com/sadopc/planner/internal/model"
)

func TaskPatch(u model.TaskUpdate) backend.Fields {
	f := backend.Fields{}
	if u.ProjectID != nil {
		f["project_id"] = nullable(*u.ProjectID)
	}
	if u.Title != nil {
		f["title"] = *u.Title
	}
	if u.Description != nil {
		f["description"] = nullable(*u.Description)
	}
	if u.Completed != nil {
		f["completed"] = *u.Completed
	}
	if u.Priority != nil {
		f["priority"] = string(*u.Priority)
	}
	if u.Category != nil {
		f["category"] = string(*u.Category)
	}
	if u.DueDate != nil {
		f["due_date"] = nullable(*u.DueDate)
	}
	if u.DueTime != nil {
		f["due_time"] = nullable(*u.DueTime)
	}
	if u.EstimatedMinutes != nil {
		f["estimated_minutes"] = nullableInt(*u.EstimatedMinutes)
	}
	if u.ActualMinutes != nil {
		f["actual_minutes"] = nullableInt(*u.ActualMinutes)
	}
	if u.Status != nil {
		f["status"] = string(*u.Status)
	}
	if u.Order != nil {
		f["order"] = *u.Order
	}
	return f
}

func ProjectPatch(u model.ProjectUpdate) backend.Fields {
	f := backend.Fields{}
	if u.Title != nil {
		f["title"] = *u.Title
	}
	if u.Description != nil {
		f["description"] = nullable(*u.Description)
	}
	if u.Color != nil {
		f["color"] = nullable(*u.Color)
	}
	if u.Icon != nil {
		f["icon"] = nullable(*u.Icon)
	}
	if u.StartDate != nil {
		f["start_date"] = nullable(*u.StartDate)
	}
	if u.EndDate != nil {
		f["end_date"] = nullable(*u.EndDate)
	}
	if u.Type != nil {
		f["type"] = string(*u.Type)
	}
	return f
}

func TimeBlockPatch(u model.TimeBlockUpdate) backend.Fields {
	f := backend.Fields{}
	if u.Title != nil {
		f["title"] = *u.Title
	}
	if u.StartTime != nil {
		f["start_time"] = *u.StartTime
	}
	if u.EndTime != nil {
		f["end_time"] = *u.EndTime
	}
	if u.Date != nil {
		f["date"] = *u.Date
	}
	if u.Category != nil {
		f["category"] = string(*u.Category)
	}
	if u.Color != nil {
		f["color"] = nullable(*u.Color)
	}
	if u.TaskID != nil {
		f["task_id"] = nullable(*u.TaskID)
	}
	if u.IsBlocked != nil {
		f["is_blocked"] = *u.IsBlocked
	}
	return f
}

// nullable sends an empty string as SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
