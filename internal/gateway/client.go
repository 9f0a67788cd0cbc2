// Package gateway is the client side of the REST backend: one stateless API
// per resource that returns rows in backend shape or an error.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sadopc/planner/internal/backend"
)

var ErrUnauthorized = errors.New("unauthorized")

// TokenSource supplies the bearer token for data calls.
type TokenSource interface {
	AccessToken() (string, error)
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Unwrap lets callers match the backend's sentinels with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return backend.ErrNotFound
	case http.StatusConflict:
		return backend.ErrConflict
	case http.StatusBadRequest:
		return backend.ErrInvalid
	case http.StatusUnauthorized:
		return ErrUnauthorized
	}
	return nil
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource

	Auth          AuthAPI
	Projects      Table[backend.ProjectRow]
	Tasks         Table[backend.TaskRow]
	TimeBlocks    Table[backend.TimeBlockRow]
	DailyGoals    Table[backend.DailyGoalRow]
	Habits        HabitsAPI
	FocusSessions Table[backend.FocusSessionRow]
}

// New builds a client for the backend at baseURL. A zero timeout leaves
// requests unbounded.
func New(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
	c.Auth = AuthAPI{c: c}
	c.Projects = Table[backend.ProjectRow]{c: c, path: "/rest/v1/projects"}
	c.Tasks = Table[backend.TaskRow]{c: c, path: "/rest/v1/tasks"}
	c.TimeBlocks = Table[backend.TimeBlockRow]{c: c, path: "/rest/v1/time_blocks"}
	c.DailyGoals = Table[backend.DailyGoalRow]{c: c, path: "/rest/v1/daily_goals"}
	c.Habits = HabitsAPI{
		Table:       Table[backend.HabitRow]{c: c, path: "/rest/v1/habits"},
		completions: Table[backend.HabitCompletionRow]{c: c, path: "/rest/v1/habit_completions"},
	}
	c.FocusSessions = Table[backend.FocusSessionRow]{c: c, path: "/rest/v1/focus_sessions"}
	return c
}

// SetTokenSource swaps the token source, used when the auth client is built
// on top of this gateway.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// Health checks that the backend answers.
func (c *Client) Health(ctx context.Context) error {
	return c.send(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *Client) bearer() (string, error) {
	if c.tokens == nil {
		return "", fmt.Errorf("%w: no token source", ErrUnauthorized)
	}
	return c.tokens.AccessToken()
}

// do sends an authenticated request.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := c.bearer()
	if err != nil {
		return err
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.send(ctx, method, path, token, body, out)
}

func (c *Client) send(ctx context.Context, method, path, token string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
