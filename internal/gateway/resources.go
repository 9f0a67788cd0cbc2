package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sadopc/planner/internal/auth"
	"github.com/sadopc/planner/internal/backend"
)

// Table is the operation set shared by every resource.
type Table[T any] struct {
	c    *Client
	path string
}

func (t Table[T]) GetAll(ctx context.Context) ([]T, error) {
	var rows []T
	if err := t.c.do(ctx, http.MethodGet, t.path, nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (t Table[T]) Create(ctx context.Context, in T) (*T, error) {
	var row T
	if err := t.c.do(ctx, http.MethodPost, t.path, nil, in, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (t Table[T]) Update(ctx context.Context, id string, f backend.Fields) (*T, error) {
	var row T
	if err := t.c.do(ctx, http.MethodPatch, t.path+"/"+url.PathEscape(id), nil, f, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (t Table[T]) Delete(ctx context.Context, id string) error {
	return t.c.do(ctx, http.MethodDelete, t.path+"/"+url.PathEscape(id), nil, nil, nil)
}

// HabitsAPI adds completion toggling to the habit table. GetAll returns
// habits with their completions joined.
type HabitsAPI struct {
	Table[backend.HabitRow]
	completions Table[backend.HabitCompletionRow]
}

// ToggleCompletion removes the completion for (habitID, date) when one exists
// and records it otherwise. It reports whether the date is now completed.
func (h HabitsAPI) ToggleCompletion(ctx context.Context, habitID, date string) (bool, error) {
	q := url.Values{}
	q.Set("habit_id", habitID)
	q.Set("completed_date", date)

	var existing []backend.HabitCompletionRow
	if err := h.c.do(ctx, http.MethodGet, h.completions.path, q, nil, &existing); err != nil {
		return false, err
	}
	if len(existing) > 0 {
		if err := h.completions.Delete(ctx, existing[0].ID); err != nil {
			return false, err
		}
		return false, nil
	}
	if _, err := h.completions.Create(ctx, backend.HabitCompletionRow{HabitID: habitID, CompletedDate: date}); err != nil {
		return false, err
	}
	return true, nil
}

// AuthAPI talks to the identity endpoints. It satisfies auth.Remote.
type AuthAPI struct {
	c *Client
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a AuthAPI) SignUp(ctx context.Context, email, password string) (*auth.Session, error) {
	var s auth.Session
	if err := a.c.send(ctx, http.MethodPost, "/auth/v1/signup", "", credentials{email, password}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (a AuthAPI) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	var s auth.Session
	if err := a.c.send(ctx, http.MethodPost, "/auth/v1/token", "", credentials{email, password}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (a AuthAPI) SignOut(ctx context.Context, accessToken string) error {
	return a.c.send(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

// User returns the identity behind accessToken.
func (a AuthAPI) User(ctx context.Context, accessToken string) (*auth.User, error) {
	var u auth.User
	if err := a.c.send(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
