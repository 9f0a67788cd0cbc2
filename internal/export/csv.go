package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/planner/internal/model"
)

var (
	taskHeader    = []string{"ID", "Title", "Project", "Status", "Priority", "Category", "Due", "Completed", "Estimate (min)"}
	sessionHeader = []string{"ID", "Type", "Task", "Start", "End", "Duration (min)", "Duration", "Completed"}
)

// TasksToCSV writes one row per task. Tasks without a known project get "Inbox".
func TasksToCSV(tasks []model.Task, projects map[string]model.Project, path string) error {
	return writeCSV(path, taskHeader, len(tasks), func(i int) []string {
		t := tasks[i]
		return []string{
			t.ID,
			t.Title,
			projectName(t.ProjectID, projects),
			string(t.Status),
			string(t.Priority),
			string(t.Category),
			deref(t.DueDate),
			strconv.FormatBool(t.Completed),
			derefInt(t.EstimatedMinutes),
		}
	})
}

// SessionsToCSV writes one row per focus session. Open sessions have no end.
func SessionsToCSV(sessions []model.FocusSession, tasks map[string]model.Task, path string) error {
	return writeCSV(path, sessionHeader, len(sessions), func(i int) []string {
		s := sessions[i]
		endStr := ""
		if s.EndTime != nil {
			endStr = s.EndTime.Local().Format(time.RFC3339)
		}
		return []string{
			s.ID,
			string(s.Type),
			taskTitle(s.TaskID, tasks),
			s.StartTime.Local().Format(time.RFC3339),
			endStr,
			strconv.Itoa(s.Duration),
			formatDuration(s.Duration),
			strconv.FormatBool(s.Completed),
		}
	})
}

func writeCSV(path string, header []string, n int, row func(int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func projectName(id *string, projects map[string]model.Project) string {
	if id == nil {
		return "Inbox"
	}
	if p, ok := projects[*id]; ok {
		return p.Title
	}
	return "Unknown"
}

func taskTitle(id *string, tasks map[string]model.Task) string {
	if id == nil {
		return ""
	}
	if t, ok := tasks[*id]; ok {
		return t.Title
	}
	return "Unknown"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// formatDuration renders minutes as HH:MM.
func formatDuration(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
