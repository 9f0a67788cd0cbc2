package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sadopc/planner/internal/backend"
	"github.com/sadopc/planner/internal/model"
)

var errBackend = errors.New("backend unavailable")

// fakeTable is an in-memory Resource. Setting err makes every call fail.
type fakeTable[T any] struct {
	mu      sync.Mutex
	rows    []T
	idOf    func(T) string
	setID   func(*T, string)
	next    int
	err     error
	updates map[string][]backend.Fields
	// beforeGetAll runs at the start of GetAll, outside the lock.
	beforeGetAll func()
}

func newFakeTable[T any](idOf func(T) string, setID func(*T, string)) *fakeTable[T] {
	return &fakeTable[T]{idOf: idOf, setID: setID, updates: make(map[string][]backend.Fields)}
}

func (f *fakeTable[T]) GetAll(ctx context.Context) ([]T, error) {
	if f.beforeGetAll != nil {
		f.beforeGetAll()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]T(nil), f.rows...), nil
}

func (f *fakeTable[T]) Create(ctx context.Context, in T) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.next++
	f.setID(&in, fmt.Sprintf("id-%d", f.next))
	f.rows = append(f.rows, in)
	return &in, nil
}

func (f *fakeTable[T]) Update(ctx context.Context, id string, patch backend.Fields) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rows {
		if f.idOf(r) == id {
			f.updates[id] = append(f.updates[id], patch)
			return &r, nil
		}
	}
	return nil, backend.ErrNotFound
}

func (f *fakeTable[T]) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, r := range f.rows {
		if f.idOf(r) == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return backend.ErrNotFound
}

type fakeHabits struct {
	*fakeTable[backend.HabitRow]
	done map[string]bool
}

func (f *fakeHabits) ToggleCompletion(ctx context.Context, habitID, date string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	key := habitID + "|" + date
	f.done[key] = !f.done[key]
	return f.done[key], nil
}

type fakeGateway struct {
	projects *fakeTable[backend.ProjectRow]
	tasks    *fakeTable[backend.TaskRow]
	blocks   *fakeTable[backend.TimeBlockRow]
	goals    *fakeTable[backend.DailyGoalRow]
	habits   *fakeHabits
	sessions *fakeTable[backend.FocusSessionRow]
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		projects: newFakeTable(func(r backend.ProjectRow) string { return r.ID }, func(r *backend.ProjectRow, id string) { r.ID = id }),
		tasks:    newFakeTable(func(r backend.TaskRow) string { return r.ID }, func(r *backend.TaskRow, id string) { r.ID = id }),
		blocks:   newFakeTable(func(r backend.TimeBlockRow) string { return r.ID }, func(r *backend.TimeBlockRow, id string) { r.ID = id }),
		goals:    newFakeTable(func(r backend.DailyGoalRow) string { return r.ID }, func(r *backend.DailyGoalRow, id string) { r.ID = id }),
		habits: &fakeHabits{
			fakeTable: newFakeTable(func(r backend.HabitRow) string { return r.ID }, func(r *backend.HabitRow, id string) { r.ID = id }),
			done:      make(map[string]bool),
		},
		sessions: newFakeTable(func(r backend.FocusSessionRow) string { return r.ID }, func(r *backend.FocusSessionRow, id string) { r.ID = id }),
	}
}

func (f *fakeGateway) gateway() Gateway {
	return Gateway{
		Projects:      f.projects,
		Tasks:         f.tasks,
		TimeBlocks:    f.blocks,
		DailyGoals:    f.goals,
		Habits:        f.habits,
		FocusSessions: f.sessions,
	}
}

type memPrefs struct {
	mu    sync.Mutex
	state *model.UIState
	saves int
}

func (m *memPrefs) LoadUI() (*model.UIState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *memPrefs) SaveUI(ui model.UIState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &ui
	m.saves++
	return nil
}

// fixedNow is 2024-03-10 10:00 local time.
var fixedNow = time.Date(2024, 3, 10, 10, 0, 0, 0, time.Local)

func newTestStore(t *testing.T) (*Store, *fakeGateway, *memPrefs) {
	t.Helper()
	gw := newFakeGateway()
	prefs := &memPrefs{}
	now := fixedNow
	s := New(gw.gateway(), Options{
		Prefs:  prefs,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return now },
	})
	return s, gw, prefs
}

func taskRow(id, status string, order int) backend.TaskRow {
	return backend.TaskRow{ID: id, Title: id, Priority: "medium", Category: "work", Status: status, Order: order}
}

func habitRow(id, title string) backend.HabitRow {
	return backend.HabitRow{ID: id, Title: title, Frequency: "daily", TargetCount: 1}
}

func sessionRow(id string, start time.Time, minutes int, completed bool, end *time.Time) backend.FocusSessionRow {
	return backend.FocusSessionRow{
		ID: id, StartTime: start, EndTime: end, Duration: minutes, Type: "pomodoro", Completed: completed,
	}
}
