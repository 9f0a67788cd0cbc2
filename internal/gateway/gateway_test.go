package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sadopc/planner/internal/auth"
	"github.com/sadopc/planner/internal/backend"
	"github.com/sadopc/planner/internal/server"
)

type staticToken string

func (s staticToken) AccessToken() (string, error) { return string(s), nil }

func newTestBackendURL(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := backend.NewMemory()
	if err != nil {
		t.Fatalf("new memory backend: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	svc := auth.NewService(db, auth.NewIssuer("test-secret", time.Hour))
	srv := server.New(db, svc, server.Options{Quiet: true, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

// newSignedInClient returns a gateway whose calls carry a fresh user's token.
func newSignedInClient(t *testing.T) *Client {
	t.Helper()
	url := newTestBackendURL(t)
	c := New(url, nil, 5*time.Second)
	sess, err := c.Auth.SignUp(context.Background(), "me@example.com", "correct horse")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	c.SetTokenSource(staticToken(sess.AccessToken))
	return c
}

func strPtr(s string) *string { return &s }

func TestHealth(t *testing.T) {
	c := New(newTestBackendURL(t), nil, 0)
	if err := c.Health(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestAuthAPI(t *testing.T) {
	ctx := context.Background()
	c := New(newTestBackendURL(t), nil, 0)

	sess, err := c.Auth.SignUp(ctx, "me@example.com", "correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Auth.SignIn(ctx, "me@example.com", "wrong pass"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	u, err := c.Auth.User(ctx, sess.AccessToken)
	if err != nil || u.ID != sess.User.ID {
		t.Fatalf("user: %+v %v", u, err)
	}
	if err := c.Auth.SignOut(ctx, sess.AccessToken); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Auth.User(ctx, sess.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected revoked token to fail, got %v", err)
	}
}

func TestNoTokenSource(t *testing.T) {
	c := New(newTestBackendURL(t), nil, 0)
	if _, err := c.Tasks.GetAll(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTasksOrdered(t *testing.T) {
	ctx := context.Background()
	c := newSignedInClient(t)

	for i, title := range []string{"c", "a", "b"} {
		order := []int{2, 0, 1}[i]
		_, err := c.Tasks.Create(ctx, backend.TaskRow{
			Title: title, Priority: "medium", Category: "work", Status: "todo", Order: order,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	rows, err := c.Tasks.GetAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0].Title != "a" || rows[1].Title != "b" || rows[2].Title != "c" {
		t.Fatalf("tasks should be ordered by order: %+v", rows)
	}
}

func TestUpdateAndNotFound(t *testing.T) {
	ctx := context.Background()
	c := newSignedInClient(t)

	p, err := c.Projects.Create(ctx, backend.ProjectRow{Title: "Trip", Type: "trip", Color: strPtr("#00f")})
	if err != nil {
		t.Fatal(err)
	}
	updated, err := c.Projects.Update(ctx, p.ID, backend.Fields{"color": nil, "title": "Trip to Rome"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Color != nil || updated.Title != "Trip to Rome" {
		t.Fatalf("unexpected update %+v", updated)
	}

	err = c.Projects.Delete(ctx, "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 404 {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
	if !errors.Is(err, backend.ErrNotFound) {
		t.Fatal("404 should unwrap to backend.ErrNotFound")
	}
}

func TestToggleCompletion(t *testing.T) {
	ctx := context.Background()
	c := newSignedInClient(t)

	h, err := c.Habits.Create(ctx, backend.HabitRow{Title: "Read", Icon: "book", Frequency: "daily", TargetCount: 1})
	if err != nil {
		t.Fatal(err)
	}

	added, err := c.Habits.ToggleCompletion(ctx, h.ID, "2024-03-10")
	if err != nil || !added {
		t.Fatalf("first toggle should add: %v %v", added, err)
	}
	habits, _ := c.Habits.GetAll(ctx)
	if len(habits) != 1 || len(habits[0].Completions) != 1 || habits[0].Completions[0].CompletedDate != "2024-03-10" {
		t.Fatalf("completion should be joined: %+v", habits)
	}

	added, err = c.Habits.ToggleCompletion(ctx, h.ID, "2024-03-10")
	if err != nil || added {
		t.Fatalf("second toggle should remove: %v %v", added, err)
	}
	habits, _ = c.Habits.GetAll(ctx)
	if len(habits[0].Completions) != 0 {
		t.Fatal("completion should be removed")
	}
}

func TestFocusSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newSignedInClient(t)

	s, err := c.FocusSessions.Create(ctx, backend.FocusSessionRow{Type: "pomodoro"})
	if err != nil {
		t.Fatal(err)
	}
	if s.EndTime != nil || s.Completed || s.StartTime.IsZero() {
		t.Fatalf("new session should be open: %+v", s)
	}

	end := time.Now()
	closed, err := c.FocusSessions.Update(ctx, s.ID, backend.Fields{"end_time": end, "duration": 0, "completed": true})
	if err != nil {
		t.Fatal(err)
	}
	if closed.EndTime == nil || !closed.Completed {
		t.Fatalf("session should be closed: %+v", closed)
	}
}
