package mapper

import (
	"reflect"
	"testing"
	"time"

	"github.com/sadopc/planner/internal/backend"
	"github.com/sadopc/planner/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestTaskRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		row  backend.TaskRow
	}{
		{
			name: "all fields set",
			row: backend.TaskRow{
				ID: "t1", ProjectID: strPtr("p1"), Title: "Write", Description: strPtr("draft"),
				Completed: true, Priority: "urgent", Category: "learning",
				DueDate: strPtr("2024-03-11"), DueTime: strPtr("14:00"),
				EstimatedMinutes: intPtr(30), ActualMinutes: intPtr(0),
				Status: "done", Order: 4, CreatedAt: now, UpdatedAt: now.Add(time.Hour),
			},
		},
		{
			name: "nullable fields null",
			row: backend.TaskRow{
				ID: "t2", Title: "Plain", Priority: "low", Category: "work",
				Status: "backlog", CreatedAt: now, UpdatedAt: now,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := DBTaskToTask(tt.row)
			if task.Subtasks == nil || len(task.Subtasks) != 0 {
				t.Fatal("subtasks should be an empty list")
			}
			if tt.row.ProjectID == nil && task.ProjectID != nil {
				t.Fatal("null project_id should map to nil")
			}
			back := TaskToDB(task)
			if !reflect.DeepEqual(back, tt.row) {
				t.Fatalf("round trip changed the row:\n got %+v\nwant %+v", back, tt.row)
			}
		})
	}
}

func TestHabitCompletedDates(t *testing.T) {
	row := backend.HabitRow{
		ID: "h1", Title: "Read", Icon: "book", Frequency: "daily", TargetCount: 1,
		Completions: []backend.HabitCompletionRow{
			{ID: "c1", HabitID: "h1", CompletedDate: "2024-03-09"},
			{ID: "c2", HabitID: "h1", CompletedDate: "2024-03-10"},
		},
	}
	h := DBHabitToHabit(row)
	if !reflect.DeepEqual(h.CompletedDates, []string{"2024-03-09", "2024-03-10"}) {
		t.Fatalf("unexpected dates %v", h.CompletedDates)
	}

	empty := DBHabitToHabit(backend.HabitRow{ID: "h2"})
	if empty.CompletedDates == nil {
		t.Fatal("habit without completions should have an empty, non-nil list")
	}
}

func TestSessionMapping(t *testing.T) {
	start := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	row := backend.FocusSessionRow{ID: "s1", StartTime: start, Type: "deepWork"}
	s := DBSessionToSession(row)
	if !s.Open() || s.Type != model.SessionDeepWork {
		t.Fatalf("unexpected session %+v", s)
	}
	if !reflect.DeepEqual(SessionToDB(s), row) {
		t.Fatal("session round trip changed the row")
	}
}

func TestTaskPatch(t *testing.T) {
	f := TaskPatch(model.TaskUpdate{
		Title:            model.Ptr("New"),
		Description:      model.Ptr(""),
		EstimatedMinutes: model.Ptr(0),
		Status:           model.Ptr(model.StatusDone),
		Order:            model.Ptr(3),
	})
	want := backend.Fields{
		"title":             "New",
		"description":       nil,
		"estimated_minutes": nil,
		"status":            "done",
		"order":             3,
	}
	if !reflect.DeepEqual(f, want) {
		t.Fatalf("got %v, want %v", f, want)
	}

	if len(TaskPatch(model.TaskUpdate{})) != 0 {
		t.Fatal("empty update should produce an empty patch")
	}
}

func TestProjectPatchMatchesApply(t *testing.T) {
	p := model.Project{ID: "p1", Title: "Old", Color: strPtr("#f00"), Type: model.ProjectWork}
	u := model.ProjectUpdate{Title: model.Ptr("New"), Color: model.Ptr(""), Type: model.Ptr(model.ProjectTrip)}

	got := u.Apply(p)
	if got.Title != "New" || got.Color != nil || got.Type != model.ProjectTrip {
		t.Fatalf("unexpected apply %+v", got)
	}
	f := ProjectPatch(u)
	if f["color"] != nil || f["title"] != "New" || f["type"] != "trip" {
		t.Fatalf("unexpected patch %v", f)
	}
}
