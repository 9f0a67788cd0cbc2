package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/planner/internal/model"
)

type jsonExport struct {
	ExportedAt   string        `json:"exported_at"`
	TaskCount    int           `json:"task_count"`
	SessionCount int           `json:"session_count"`
	Tasks        []jsonTask    `json:"tasks"`
	Sessions     []jsonSession `json:"sessions"`
}

type jsonTask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Project   string `json:"project"`
	ProjectID string `json:"project_id,omitempty"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
	Category  string `json:"category"`
	DueDate   string `json:"due_date,omitempty"`
	Completed bool   `json:"completed"`
}

type jsonSession struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Task        string `json:"task,omitempty"`
	TaskID      string `json:"task_id,omitempty"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	DurationMin int    `json:"duration_minutes"`
	Duration    string `json:"duration"`
	Completed   bool   `json:"completed"`
}

// ToJSON writes tasks and focus sessions as one indented document.
func ToJSON(tasks []model.Task, sessions []model.FocusSession, projects map[string]model.Project, path string) error {
	export := jsonExport{
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		TaskCount:    len(tasks),
		SessionCount: len(sessions),
	}

	byID := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		export.Tasks = append(export.Tasks, jsonTask{
			ID:        t.ID,
			Title:     t.Title,
			Project:   projectName(t.ProjectID, projects),
			ProjectID: deref(t.ProjectID),
			Status:    string(t.Status),
			Priority:  string(t.Priority),
			Category:  string(t.Category),
			DueDate:   deref(t.DueDate),
			Completed: t.Completed,
		})
	}

	for _, s := range sessions {
		endStr := ""
		if s.EndTime != nil {
			endStr = s.EndTime.Local().Format(time.RFC3339)
		}
		export.Sessions = append(export.Sessions, jsonSession{
			ID:          s.ID,
			Type:        string(s.Type),
			Task:        taskTitle(s.TaskID, byID),
			TaskID:      deref(s.TaskID),
			StartTime:   s.StartTime.Local().Format(time.RFC3339),
			EndTime:     endStr,
			DurationMin: s.Duration,
			Duration:    formatDuration(s.Duration),
			Completed:   s.Completed,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
