package planner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sadopc/planner/internal/auth"
	"github.com/sadopc/planner/internal/model"
)

var ctx = context.Background()

func addTask(t *testing.T, s *Store, title string, status model.Status) model.Task {
	t.Helper()
	task, err := s.AddTask(ctx, model.Task{Title: title, Status: status})
	if err != nil {
		t.Fatalf("add task %q: %v", title, err)
	}
	return task
}

// ============================================================
// Tasks
// ============================================================

func TestAddTaskOrder(t *testing.T) {
	s, _, _ := newTestStore(t)

	first := addTask(t, s, "first", model.StatusTodo)
	if first.Order != 0 {
		t.Fatalf("first todo order = %d, want 0", first.Order)
	}
	addTask(t, s, "backlog", model.StatusBacklog)
	second := addTask(t, s, "second", model.StatusTodo)
	if second.Order != 1 {
		t.Fatalf("second todo order = %d, want 1", second.Order)
	}
	if len(s.Tasks()) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(s.Tasks()))
	}
	if second.Subtasks == nil {
		t.Fatal("subtasks should be an empty list")
	}
}

func TestAddTaskProject(t *testing.T) {
	s, _, _ := newTestStore(t)
	p, err := s.AddProject(ctx, model.Project{Title: "Trip"})
	if err != nil {
		t.Fatal(err)
	}

	inherited := addTask(t, s, "pack", model.StatusTodo)
	if inherited.ProjectID == nil || *inherited.ProjectID != p.ID {
		t.Fatal("task without a project should join the active project")
	}

	explicit, _ := s.AddTask(ctx, model.Task{Title: "other", ProjectID: model.Ptr("elsewhere")})
	if *explicit.ProjectID != "elsewhere" {
		t.Fatal("explicit project should win over the active one")
	}

	s.SetActiveProject(nil)
	loose := addTask(t, s, "loose", model.StatusTodo)
	if loose.ProjectID != nil {
		t.Fatal("no active project should leave the task unassigned")
	}
}

func TestToggleTaskKeepsStatus(t *testing.T) {
	s, gw, _ := newTestStore(t)
	task := addTask(t, s, "t", model.StatusTodo)

	if err := s.ToggleTask(ctx, task.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Task(task.ID)
	if !got.Completed || got.Status != model.StatusTodo {
		t.Fatalf("toggle should flip completed only: %+v", got)
	}
	if !got.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("updatedAt should be stamped, got %v", got.UpdatedAt)
	}
	if patches := gw.tasks.updates[task.ID]; len(patches) != 1 || patches[0]["completed"] != true {
		t.Fatalf("unexpected patches %v", patches)
	}

	if err := s.ToggleTask(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMoveTaskToStatus(t *testing.T) {
	s, _, _ := newTestStore(t)
	addTask(t, s, "done-1", model.StatusDone)
	a := addTask(t, s, "a", model.StatusTodo)
	b := addTask(t, s, "b", model.StatusTodo)

	if err := s.MoveTaskToStatus(ctx, a.ID, model.StatusDone); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Task(a.ID)
	if got.Status != model.StatusDone || got.Order != 1 || !got.Completed {
		t.Fatalf("unexpected moved task %+v", got)
	}

	// The source group keeps its gap.
	left, _ := s.Task(b.ID)
	if left.Order != 1 {
		t.Fatalf("source group should not be renumbered, b.order = %d", left.Order)
	}

	// Leaving done does not clear completed.
	if err := s.MoveTaskToStatus(ctx, a.ID, model.StatusInProgress); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Task(a.ID)
	if !got.Completed || got.Order != 0 {
		t.Fatalf("unexpected task after leaving done %+v", got)
	}
}

func TestUpdateTask(t *testing.T) {
	s, gw, _ := newTestStore(t)
	task, _ := s.AddTask(ctx, model.Task{Title: "t", Description: model.Ptr("old")})

	err := s.UpdateTask(ctx, task.ID, model.TaskUpdate{
		Title:       model.Ptr("renamed"),
		Description: model.Ptr(""),
		DueDate:     model.Ptr("2024-03-11"),
	})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := s.Task(task.ID)
	if got.Title != "renamed" || got.Description != nil || got.DueDate == nil || *got.DueDate != "2024-03-11" {
		t.Fatalf("unexpected update %+v", got)
	}
	patch := gw.tasks.updates[task.ID][0]
	if v, ok := patch["description"]; !ok || v != nil {
		t.Fatalf("cleared description should be sent as null: %v", patch)
	}
}

func TestDeleteTask(t *testing.T) {
	s, _, _ := newTestStore(t)
	task := addTask(t, s, "t", model.StatusTodo)
	if err := s.DeleteTask(ctx, task.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Task(task.ID); ok {
		t.Fatal("task should be gone")
	}
}

func TestReorderTask(t *testing.T) {
	s, gw, _ := newTestStore(t)
	a := addTask(t, s, "a", model.StatusTodo)
	b := addTask(t, s, "b", model.StatusTodo)
	c := addTask(t, s, "c", model.StatusTodo)
	x := addTask(t, s, "x", model.StatusDone)

	// Move a to the top of done.
	if err := s.ReorderTask(ctx, a.ID, model.StatusDone, 0); err != nil {
		t.Fatal(err)
	}
	order := func(id string) (model.Status, int, bool) {
		task, _ := s.Task(id)
		return task.Status, task.Order, task.Completed
	}

	if st, o, done := order(a.ID); st != model.StatusDone || o != 0 || !done {
		t.Fatalf("a: %s %d %v", st, o, done)
	}
	if _, o, _ := order(x.ID); o != 1 {
		t.Fatalf("x should shift to 1, got %d", o)
	}
	if _, o, _ := order(b.ID); o != 0 {
		t.Fatalf("b should close the gap, got %d", o)
	}
	if _, o, _ := order(c.ID); o != 1 {
		t.Fatalf("c should close the gap, got %d", o)
	}

	if _, ok := gw.tasks.updates[a.ID]; !ok {
		t.Fatal("moved task should be written")
	}

	// Within a column, an oversized index clamps to the end.
	if err := s.ReorderTask(ctx, b.ID, model.StatusTodo, 99); err != nil {
		t.Fatal(err)
	}
	col := s.TasksByStatus(model.StatusTodo)
	if len(col) != 2 || col[0].ID != c.ID || col[1].ID != b.ID {
		t.Fatalf("unexpected todo column %+v", col)
	}

	if err := s.ReorderTask(ctx, "missing", model.StatusTodo, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReorderSkipsUnchanged(t *testing.T) {
	s, gw, _ := newTestStore(t)
	a := addTask(t, s, "a", model.StatusTodo)
	addTask(t, s, "b", model.StatusTodo)

	if err := s.ReorderTask(ctx, a.ID, model.StatusTodo, 0); err != nil {
		t.Fatal(err)
	}
	if len(gw.tasks.updates) != 0 {
		t.Fatalf("no-op reorder should write nothing, got %v", gw.tasks.updates)
	}
}

// ============================================================
// Projects
// ============================================================

func TestAddProjectActivates(t *testing.T) {
	s, _, prefs := newTestStore(t)
	older, _ := s.AddProject(ctx, model.Project{Title: "old"})
	newer, _ := s.AddProject(ctx, model.Project{Title: "new", Type: model.ProjectTrip})

	projects := s.Projects()
	if len(projects) != 2 || projects[0].ID != newer.ID || projects[1].ID != older.ID {
		t.Fatal("new project should be first")
	}
	if older.Type != model.ProjectOther {
		t.Fatalf("default type should be other, got %q", older.Type)
	}
	ui := s.UI()
	if ui.ActiveProjectID == nil || *ui.ActiveProjectID != newer.ID {
		t.Fatal("new project should be active")
	}
	if prefs.state == nil || prefs.state.ActiveProjectID == nil || *prefs.state.ActiveProjectID != newer.ID {
		t.Fatal("active project should be persisted")
	}
}

func TestDeleteProjectDetaches(t *testing.T) {
	s, _, _ := newTestStore(t)
	p, _ := s.AddProject(ctx, model.Project{Title: "Trip"})
	addTask(t, s, "pack", model.StatusTodo)
	s.AddTimeBlock(ctx, model.TimeBlock{Title: "flight", StartTime: "09:00", EndTime: "10:00", Date: "2024-03-10"})
	s.AddDailyGoal(ctx, "book hotel", "2024-03-10")

	if err := s.DeleteProject(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	for _, task := range s.Tasks() {
		if refers(task.ProjectID, p.ID) {
			t.Fatal("task still references the deleted project")
		}
	}
	for _, b := range s.TimeBlocks() {
		if refers(b.ProjectID, p.ID) {
			t.Fatal("time block still references the deleted project")
		}
	}
	for _, g := range s.DailyGoals() {
		if refers(g.ProjectID, p.ID) {
			t.Fatal("goal still references the deleted project")
		}
	}
	if s.UI().ActiveProjectID != nil {
		t.Fatal("active project should be cleared")
	}
	if len(s.Tasks()) != 1 {
		t.Fatal("tasks are detached, not deleted")
	}
}

func TestUpdateProject(t *testing.T) {
	s, _, _ := newTestStore(t)
	p, _ := s.AddProject(ctx, model.Project{Title: "Trip", Color: model.Ptr("#f00")})
	if err := s.UpdateProject(ctx, p.ID, model.ProjectUpdate{Title: model.Ptr("Rome"), Color: model.Ptr("")}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Project(p.ID)
	if got.Title != "Rome" || got.Color != nil || !got.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected project %+v", got)
	}
}

// ============================================================
// Time blocks and goals
// ============================================================

func TestTimeBlocks(t *testing.T) {
	s, _, _ := newTestStore(t)
	late, _ := s.AddTimeBlock(ctx, model.TimeBlock{Title: "late", StartTime: "15:00", EndTime: "16:00", Date: "2024-03-10"})
	s.AddTimeBlock(ctx, model.TimeBlock{Title: "early", StartTime: "09:00", EndTime: "10:00", Date: "2024-03-10"})
	s.AddTimeBlock(ctx, model.TimeBlock{Title: "other day", StartTime: "09:00", EndTime: "10:00", Date: "2024-03-11"})

	day := s.BlocksForDate("2024-03-10")
	if len(day) != 2 || day[0].Title != "early" {
		t.Fatalf("unexpected blocks %+v", day)
	}

	if err := s.UpdateTimeBlock(ctx, late.ID, model.TimeBlockUpdate{StartTime: model.Ptr("08:00")}); err != nil {
		t.Fatal(err)
	}
	if day := s.BlocksForDate("2024-03-10"); day[0].ID != late.ID {
		t.Fatal("updated block should sort first")
	}

	if err := s.DeleteTimeBlock(ctx, late.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.TimeBlock(late.ID); ok {
		t.Fatal("block should be gone")
	}
}

func TestDailyGoalLimit(t *testing.T) {
	s, _, _ := newTestStore(t)
	for i := 0; i < MaxGoalsPerDay; i++ {
		g, err := s.AddDailyGoal(ctx, "goal", "2024-03-10")
		if err != nil {
			t.Fatal(err)
		}
		if g.Order != i {
			t.Fatalf("goal %d has order %d", i, g.Order)
		}
	}
	if _, err := s.AddDailyGoal(ctx, "one too many", "2024-03-10"); !errors.Is(err, ErrGoalLimit) {
		t.Fatalf("expected ErrGoalLimit, got %v", err)
	}
	if _, err := s.AddDailyGoal(ctx, "tomorrow", "2024-03-11"); err != nil {
		t.Fatalf("other dates are unaffected: %v", err)
	}

	// A different project has its own three slots.
	s.SetActiveProject(model.Ptr("p1"))
	if _, err := s.AddDailyGoal(ctx, "project goal", "2024-03-10"); err != nil {
		t.Fatalf("project goals are counted separately: %v", err)
	}
}

func TestToggleDailyGoal(t *testing.T) {
	s, _, _ := newTestStore(t)
	g, _ := s.AddDailyGoal(ctx, "goal", "2024-03-10")
	if err := s.ToggleDailyGoal(ctx, g.ID); err != nil {
		t.Fatal(err)
	}
	if goals := s.GoalsForDate("2024-03-10"); !goals[0].Completed {
		t.Fatal("goal should be completed")
	}
	if err := s.DeleteDailyGoal(ctx, g.ID); err != nil {
		t.Fatal(err)
	}
	if len(s.DailyGoals()) != 0 {
		t.Fatal("goal should be gone")
	}
}

// ============================================================
// Habits
// ============================================================

func TestHabitStreakScenario(t *testing.T) {
	s, _, _ := newTestStore(t)
	h, err := s.AddHabit(ctx, model.Habit{Title: "Read", Icon: "book"})
	if err != nil {
		t.Fatal(err)
	}
	if len(h.CompletedDates) != 0 || s.Streak(h.ID) != 0 {
		t.Fatal("new habit starts empty")
	}

	today := model.FormatDate(fixedNow)
	yesterday := model.FormatDate(fixedNow.AddDate(0, 0, -1))

	steps := []struct {
		date string
		want int
	}{
		{today, 1},
		{yesterday, 2},
		{today, 0},
	}
	for _, step := range steps {
		streak, err := s.ToggleHabitForDate(ctx, h.ID, step.date)
		if err != nil {
			t.Fatal(err)
		}
		if streak != step.want || s.Streak(h.ID) != step.want {
			t.Fatalf("after toggling %s: streak %d, want %d", step.date, streak, step.want)
		}
	}

	got, _ := s.Habit(h.ID)
	if len(got.CompletedDates) != 1 || got.CompletedDates[0] != yesterday {
		t.Fatalf("unexpected dates %v", got.CompletedDates)
	}
}

func TestDeleteHabit(t *testing.T) {
	s, _, _ := newTestStore(t)
	h, _ := s.AddHabit(ctx, model.Habit{Title: "Run"})
	if h.Frequency != model.FrequencyDaily || h.TargetCount != 1 {
		t.Fatalf("unexpected defaults %+v", h)
	}
	if err := s.DeleteHabit(ctx, h.ID); err != nil {
		t.Fatal(err)
	}
	if len(s.Habits()) != 0 {
		t.Fatal("habit should be gone")
	}
}

// ============================================================
// Focus sessions
// ============================================================

func TestFocusSessionLifecycle(t *testing.T) {
	gw := newFakeGateway()
	now := fixedNow
	s := New(gw.gateway(), Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return now },
	})

	id, err := s.StartFocusSession(ctx, nil, "")
	if err != nil || id == "" {
		t.Fatalf("start: %q %v", id, err)
	}
	open, ok := s.OpenFocusSession()
	if !ok || open.ID != id || open.Type != model.SessionPomodoro {
		t.Fatalf("unexpected open session %+v", open)
	}

	now = now.Add(25*time.Minute + 59*time.Second)
	if err := s.EndFocusSession(ctx, id); err != nil {
		t.Fatal(err)
	}
	got, _ := s.FocusSession(id)
	if got.Open() || !got.Completed || got.Duration != 25 {
		t.Fatalf("unexpected closed session %+v", got)
	}
	if _, ok := s.OpenFocusSession(); ok {
		t.Fatal("no session should be open")
	}

	// Closed sessions stay closed.
	now = now.Add(time.Hour)
	if err := s.EndFocusSession(ctx, id); err != nil {
		t.Fatal(err)
	}
	if again, _ := s.FocusSession(id); again.Duration != 25 {
		t.Fatal("ending twice should not change the session")
	}
	if len(gw.sessions.updates[id]) != 1 {
		t.Fatal("only the first end should be written")
	}
}

func TestEndFocusSessionImmediately(t *testing.T) {
	s, _, _ := newTestStore(t)
	id, _ := s.StartFocusSession(ctx, model.Ptr("task-1"), model.SessionDeepWork)
	if err := s.EndFocusSession(ctx, id); err != nil {
		t.Fatal(err)
	}
	got, _ := s.FocusSession(id)
	if !got.Completed || got.Duration != 0 || got.EndTime == nil {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestFocusMinutesByDay(t *testing.T) {
	s, gw, _ := newTestStore(t)
	end := fixedNow
	gw.sessions.rows = append(gw.sessions.rows,
		sessionRow("a", fixedNow.AddDate(0, 0, -1), 25, true, &end),
		sessionRow("b", fixedNow.AddDate(0, 0, -1), 50, true, &end),
		sessionRow("c", fixedNow, 90, true, &end),
		sessionRow("d", fixedNow, 0, false, nil),
		sessionRow("e", fixedNow.AddDate(0, 0, -10), 30, true, &end),
	)
	if err := s.LoadFocusSessions(ctx); err != nil {
		t.Fatal(err)
	}

	got := s.FocusMinutesByDay(fixedNow.AddDate(0, 0, -2), fixedNow)
	want := map[string]int{
		model.FormatDate(fixedNow.AddDate(0, 0, -2)): 0,
		model.FormatDate(fixedNow.AddDate(0, 0, -1)): 75,
		model.FormatDate(fixedNow):                   90,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// ============================================================
// Failures, loading and sign out
// ============================================================

func TestFailedActionLeavesState(t *testing.T) {
	s, gw, _ := newTestStore(t)
	task := addTask(t, s, "t", model.StatusTodo)
	gw.tasks.err = errBackend

	if _, err := s.AddTask(ctx, model.Task{Title: "lost"}); !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if err := s.ToggleTask(ctx, task.ID); !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if err := s.DeleteTask(ctx, task.ID); !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}

	tasks := s.Tasks()
	if len(tasks) != 1 || tasks[0].Completed {
		t.Fatalf("failed actions must not change local state: %+v", tasks)
	}
}

func TestInitialize(t *testing.T) {
	s, gw, _ := newTestStore(t)
	gw.tasks.rows = append(gw.tasks.rows, taskRow("t1", "todo", 0))
	gw.habits.rows = append(gw.habits.rows, habitRow("h1", "Read"))

	// Without a user nothing is loaded.
	if err := s.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if len(s.Tasks()) != 0 {
		t.Fatal("signed-out initialize should not load")
	}

	s.SetUser(&auth.User{ID: "u1"})
	if err := s.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if len(s.Tasks()) != 1 || len(s.Habits()) != 1 || s.Loading() || s.Error() != "" {
		t.Fatal("initialize should load every collection")
	}

	gw.projects.err = errBackend
	if err := s.Initialize(ctx); !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if s.Error() == "" || s.Loading() {
		t.Fatal("bulk load failure should be surfaced in Error")
	}
}

func TestSignOutClearsEverything(t *testing.T) {
	s, _, prefs := newTestStore(t)
	s.SetUser(&auth.User{ID: "u1"})
	s.AddProject(ctx, model.Project{Title: "p"})
	for i := 0; i < 5; i++ {
		addTask(t, s, "t", model.StatusTodo)
	}
	s.AddHabit(ctx, model.Habit{Title: "h"})

	if err := s.SignOut(ctx); err != nil {
		t.Fatal(err)
	}
	if s.User() != nil || s.UI().ActiveProjectID != nil {
		t.Fatal("user and active project should be cleared")
	}
	if len(s.Tasks()) != 0 || len(s.Projects()) != 0 || len(s.Habits()) != 0 {
		t.Fatal("collections should be cleared on sign out")
	}
	if prefs.state.ActiveProjectID != nil {
		t.Fatal("cleared active project should be persisted")
	}
}

func TestSignOutDuringLoadDropsResults(t *testing.T) {
	s, gw, _ := newTestStore(t)
	gw.tasks.rows = append(gw.tasks.rows, taskRow("t1", "todo", 0))
	gw.habits.rows = append(gw.habits.rows, habitRow("h1", "Read"))
	s.SetUser(&auth.User{ID: "u1"})

	// Sign out while the task load is in flight.
	gw.tasks.beforeGetAll = func() { s.SignOut(ctx) }
	if err := s.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if len(s.Tasks()) != 0 {
		t.Fatal("a load that finishes after sign out must not restore tasks")
	}
	if s.User() != nil || s.Loading() {
		t.Fatal("sign out should win over the in-flight load")
	}

	// A later load after signing back in works normally.
	gw.tasks.beforeGetAll = nil
	s.SetUser(&auth.User{ID: "u1"})
	if err := s.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if len(s.Tasks()) != 1 || len(s.Habits()) != 1 {
		t.Fatal("fresh load should fill the collections")
	}
}

// ============================================================
// UI state
// ============================================================

func TestUIStateDefaultsAndPersistence(t *testing.T) {
	s, _, prefs := newTestStore(t)
	ui := s.UI()
	if ui.SelectedDate != "2024-03-10" || !ui.SidebarOpen || ui.ActiveView != model.ViewDay {
		t.Fatalf("unexpected defaults %+v", ui)
	}

	s.SetSelectedDate("2024-03-12")
	s.SetSidebarOpen(false)
	s.SetActiveView(model.ViewKanban)
	if prefs.saves != 3 {
		t.Fatalf("every change should be saved, got %d saves", prefs.saves)
	}

	restored := New(newFakeGateway().gateway(), Options{Prefs: prefs, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	ui = restored.UI()
	if ui.SelectedDate != "2024-03-12" || ui.SidebarOpen || ui.ActiveView != model.ViewKanban {
		t.Fatalf("state should be restored, got %+v", ui)
	}
}

func TestActiveProjectFilter(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.AddTask(ctx, model.Task{Title: "a", ProjectID: model.Ptr("p1"), DueDate: model.Ptr("2024-03-10")})
	s.AddTask(ctx, model.Task{Title: "b", ProjectID: model.Ptr("p2"), DueDate: model.Ptr("2024-03-10")})
	s.AddTask(ctx, model.Task{Title: "c"})

	if n := len(s.TasksForDate("2024-03-10")); n != 2 {
		t.Fatalf("no filter: got %d tasks", n)
	}
	s.SetActiveProject(model.Ptr("p1"))
	if day := s.TasksForDate("2024-03-10"); len(day) != 1 || day[0].Title != "a" {
		t.Fatalf("filter: got %+v", day)
	}
	if inbox := s.Inbox(); len(inbox) != 0 {
		t.Fatalf("inbox should be filtered too, got %+v", inbox)
	}
}
