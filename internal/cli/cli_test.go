package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sadopc/planner/internal/auth"
	"github.com/sadopc/planner/internal/backend"
	"github.com/sadopc/planner/internal/model"
	"github.com/sadopc/planner/internal/planner"
	"github.com/sadopc/planner/internal/server"
)

type testEnv struct {
	dir    string
	config string
}

// newTestEnv starts an in-memory backend and points a config file at it.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := backend.NewMemory()
	if err != nil {
		t.Fatalf("new memory backend: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := auth.NewService(db, auth.NewIssuer("test-secret", time.Hour))
	ts := httptest.NewServer(server.New(db, svc, server.Options{Quiet: true, Logger: discard}).Handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	config := filepath.Join(dir, "planner.yaml")
	body := "data_dir: " + filepath.Join(dir, "data") + "\n" +
		"client:\n  url: " + ts.URL + "\n" +
		"log:\n  level: error\n"
	if err := os.WriteFile(config, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return &testEnv{dir: dir, config: config}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("planner %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func (e *testEnv) signUp(t *testing.T) {
	t.Helper()
	out := e.mustRun(t, "signup", "--email", "cli@example.com", "--password", "correct horse")
	if !strings.Contains(out, "Signed in as cli@example.com") {
		t.Fatalf("unexpected signup output %q", out)
	}
}

// addedID pulls the short id out of "Added <kind> <id> <title>".
func addedID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	if len(fields) < 3 || fields[0] != "Added" {
		t.Fatalf("unexpected output %q", out)
	}
	return fields[2]
}

func TestNotSignedIn(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.run(t, "tasks", "list"); !errors.Is(err, errNotSignedIn) {
		t.Fatalf("expected errNotSignedIn, got %v", err)
	}
	if _, err := env.run(t, "whoami"); !errors.Is(err, errNotSignedIn) {
		t.Fatalf("expected errNotSignedIn, got %v", err)
	}
}

func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)
	if out := env.mustRun(t, "whoami"); !strings.Contains(out, "cli@example.com") {
		t.Fatalf("whoami = %q", out)
	}

	env.mustRun(t, "logout")
	if _, err := env.run(t, "whoami"); !errors.Is(err, errNotSignedIn) {
		t.Fatal("logout should forget the session")
	}

	if _, err := env.run(t, "login", "--email", "cli@example.com", "--password", "wrong"); err == nil {
		t.Fatal("a wrong password should fail")
	}
	env.mustRun(t, "login", "--email", "cli@example.com", "--password", "correct horse")
	env.mustRun(t, "whoami")
}

func TestTasks(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)

	id := addedID(t, env.mustRun(t, "tasks", "add", "Write", "tests", "--due", "2024-03-10", "--priority", "high"))
	other := addedID(t, env.mustRun(t, "tasks", "add", "Review"))

	out := env.mustRun(t, "tasks", "list")
	if !strings.Contains(out, "Write tests") || !strings.Contains(out, "Review") {
		t.Fatalf("list should show both tasks:\n%s", out)
	}
	if out := env.mustRun(t, "tasks", "list", "--date", "2024-03-10"); strings.Contains(out, "Review") {
		t.Fatalf("--date should filter:\n%s", out)
	}
	if out := env.mustRun(t, "tasks", "list", "--inbox"); !strings.Contains(out, "Review") || strings.Contains(out, "Write tests") {
		t.Fatalf("--inbox shows undated tasks only:\n%s", out)
	}

	env.mustRun(t, "tasks", "move", id, "doing")
	if out := env.mustRun(t, "tasks", "list", "--status", "inProgress"); !strings.Contains(out, "Write tests") {
		t.Fatalf("task should be in progress:\n%s", out)
	}

	env.mustRun(t, "tasks", "move", other, "inProgress", "--index", "0")
	out = env.mustRun(t, "tasks", "list", "--status", "inProgress")
	if strings.Index(out, "Review") > strings.Index(out, "Write tests") {
		t.Fatalf("--index 0 should put Review first:\n%s", out)
	}

	env.mustRun(t, "tasks", "done", id)
	if out := env.mustRun(t, "tasks", "list"); strings.Contains(out, "Write tests") {
		t.Fatalf("completed tasks are hidden by default:\n%s", out)
	}
	if out := env.mustRun(t, "tasks", "list", "--all"); !strings.Contains(out, "Write tests") {
		t.Fatalf("--all shows completed tasks:\n%s", out)
	}

	env.mustRun(t, "tasks", "rm", other)
	if _, err := env.run(t, "tasks", "done", other); err == nil {
		t.Fatal("a deleted task cannot be found")
	}
	if _, err := env.run(t, "tasks", "move", id, "sideways"); err == nil {
		t.Fatal("unknown status should fail")
	}
}

func TestProjects(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)

	env.mustRun(t, "projects", "add", "Japan", "--type", "trip", "--description", "## Itinerary\n\nTokyo then Kyoto", "--start", "2024-04-01")
	out := env.mustRun(t, "projects", "list")
	if !strings.Contains(out, "*") || !strings.Contains(out, "Japan") {
		t.Fatalf("new project should be active:\n%s", out)
	}

	// Tasks join the active project.
	env.mustRun(t, "tasks", "add", "Book flights")
	out = env.mustRun(t, "projects", "show", "japan", "--plain")
	if !strings.Contains(out, "Itinerary") || !strings.Contains(out, "Book flights") {
		t.Fatalf("show should render the description and tasks:\n%s", out)
	}

	env.mustRun(t, "projects", "use", "all")
	if out := env.mustRun(t, "projects", "list"); strings.Contains(out, "*") {
		t.Fatalf("no project should be active:\n%s", out)
	}

	if _, err := env.run(t, "projects", "add", "X", "--type", "holiday"); err == nil {
		t.Fatal("unknown type should fail")
	}

	env.mustRun(t, "projects", "rm", "Japan")
	if out := env.mustRun(t, "tasks", "list", "--inbox"); !strings.Contains(out, "Book flights") {
		t.Fatalf("tasks of a deleted project stay in the inbox:\n%s", out)
	}
}

func TestHabits(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)

	env.mustRun(t, "habits", "add", "Read")
	out := env.mustRun(t, "habits", "check", "read")
	if !strings.Contains(out, "checked") || !strings.Contains(out, "streak 1") {
		t.Fatalf("check = %q", out)
	}
	if out := env.mustRun(t, "habits", "list"); !strings.Contains(out, "1 🔥") {
		t.Fatalf("list should show the streak:\n%s", out)
	}
	out = env.mustRun(t, "habits", "check", "Read")
	if !strings.Contains(out, "unchecked") || !strings.Contains(out, "streak 0") {
		t.Fatalf("second check should undo: %q", out)
	}
	if _, err := env.run(t, "habits", "add", "Run", "--frequency", "hourly"); err == nil {
		t.Fatal("unknown frequency should fail")
	}
}

func TestGoalsAndToday(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)

	var first string
	for i, title := range []string{"one", "two", "three"} {
		id := addedID(t, env.mustRun(t, "goals", "add", title, "--date", "2024-03-10"))
		if i == 0 {
			first = id
		}
	}
	if _, err := env.run(t, "goals", "add", "four", "--date", "2024-03-10"); !errors.Is(err, planner.ErrGoalLimit) {
		t.Fatalf("a fourth goal should hit the limit, got %v", err)
	}
	if out := env.mustRun(t, "goals", "done", first); !strings.Contains(out, "✓") {
		t.Fatalf("goal should be done: %q", out)
	}

	env.mustRun(t, "tasks", "add", "Pack", "--due", "2024-03-10")
	out := env.mustRun(t, "today", "--date", "2024-03-10")
	for _, want := range []string{"Goals (3/3)", "one", "Tasks (1)", "Pack"} {
		if !strings.Contains(out, want) {
			t.Errorf("agenda should contain %q:\n%s", want, out)
		}
	}
}

func TestFocus(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)
	task := addedID(t, env.mustRun(t, "tasks", "add", "Deep thing"))

	if _, err := env.run(t, "focus", "stop"); !errors.Is(err, errNoOpenSession) {
		t.Fatalf("expected errNoOpenSession, got %v", err)
	}
	out := env.mustRun(t, "focus", "start", "--deep", "--task", task)
	if !strings.Contains(out, string(model.SessionDeepWork)) || !strings.Contains(out, "Deep thing") {
		t.Fatalf("start = %q", out)
	}
	if _, err := env.run(t, "focus", "start"); err == nil {
		t.Fatal("only one session at a time")
	}
	if out := env.mustRun(t, "focus", "status"); !strings.Contains(out, "session running for") {
		t.Fatalf("status = %q", out)
	}
	if out := env.mustRun(t, "focus", "stop"); !strings.Contains(out, "Focused 0 min") {
		t.Fatalf("stop = %q", out)
	}
	if out := env.mustRun(t, "focus", "status"); !strings.Contains(out, "No session running") {
		t.Fatalf("status = %q", out)
	}
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)
	env.mustRun(t, "tasks", "add", "Ship it")
	env.mustRun(t, "focus", "start")
	env.mustRun(t, "focus", "stop")

	tasksCSV := filepath.Join(env.dir, "tasks.csv")
	env.mustRun(t, "export", "--output", tasksCSV)
	if data, _ := os.ReadFile(tasksCSV); !strings.Contains(string(data), "Ship it") {
		t.Fatalf("tasks csv = %s", data)
	}

	sessionsCSV := filepath.Join(env.dir, "sessions.csv")
	env.mustRun(t, "export", "--what", "sessions", "-o", sessionsCSV)
	if data, _ := os.ReadFile(sessionsCSV); !strings.Contains(string(data), "pomodoro") {
		t.Fatalf("sessions csv = %s", data)
	}

	all := filepath.Join(env.dir, "all.json")
	env.mustRun(t, "export", "--format", "json", "-o", all)
	data, _ := os.ReadFile(all)
	if !strings.Contains(string(data), `"task_count": 1`) || !strings.Contains(string(data), `"session_count": 1`) {
		t.Fatalf("json = %s", data)
	}

	if _, err := env.run(t, "export", "--format", "xml"); err == nil {
		t.Fatal("unknown format should fail")
	}
}

func TestResolveID(t *testing.T) {
	ids := []string{"abc123", "abd456", "xyz"}
	tests := []struct {
		prefix  string
		want    string
		wantErr bool
	}{
		{"abc123", "abc123", false},
		{"abc", "abc123", false},
		{"x", "xyz", false},
		{"ab", "", true},
		{"nope", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, err := resolveID("task", tt.prefix, ids)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("resolveID(%q) = %q, %v", tt.prefix, got, err)
			}
		})
	}
	var amb ambiguousError
	if _, err := resolveID("task", "ab", ids); !errors.As(err, &amb) || len(amb.matches) != 2 {
		t.Fatalf("expected an ambiguous match, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	tests := map[string]model.Status{
		"backlog":     model.StatusBacklog,
		"TODO":        model.StatusTodo,
		"inprogress":  model.StatusInProgress,
		"in-progress": model.StatusInProgress,
		"done":        model.StatusDone,
	}
	for in, want := range tests {
		if got, err := parseStatus(in); err != nil || got != want {
			t.Errorf("parseStatus(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := parseStatus("later"); err == nil {
		t.Error("unknown status should fail")
	}
}
