// Package planner holds the client-side state: the six resource collections
// plus UI cursor state. Every action calls the gateway first and only
// mutates local state once the call succeeded.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sadopc/planner/internal/auth"
	"github.com/sadopc/planner/internal/backend"
	"github.com/sadopc/planner/internal/gateway"
	"github.com/sadopc/planner/internal/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrGoalLimit = errors.New("at most 3 goals per day")
)

// MaxGoalsPerDay caps daily goals for one (date, project) pair.
const MaxGoalsPerDay = 3

// Resource is the gateway surface of one backend table.
type Resource[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, in T) (*T, error)
	Update(ctx context.Context, id string, f backend.Fields) (*T, error)
	Delete(ctx context.Context, id string) error
}

type HabitResource interface {
	Resource[backend.HabitRow]
	ToggleCompletion(ctx context.Context, habitID, date string) (bool, error)
}

// Gateway bundles the six resources the store synchronizes.
type Gateway struct {
	Projects      Resource[backend.ProjectRow]
	Tasks         Resource[backend.TaskRow]
	TimeBlocks    Resource[backend.TimeBlockRow]
	DailyGoals    Resource[backend.DailyGoalRow]
	Habits        HabitResource
	FocusSessions Resource[backend.FocusSessionRow]
}

// FromClient adapts the HTTP gateway.
func FromClient(c *gateway.Client) Gateway {
	return Gateway{
		Projects:      c.Projects,
		Tasks:         c.Tasks,
		TimeBlocks:    c.TimeBlocks,
		DailyGoals:    c.DailyGoals,
		Habits:        c.Habits,
		FocusSessions: c.FocusSessions,
	}
}

// Auth is the session holder the store reads the user from.
type Auth interface {
	User() *auth.User
	SignOut(ctx context.Context) error
	OnAuthStateChange(fn auth.Listener) func()
}

// UIStore persists UI cursor state.
type UIStore interface {
	LoadUI() (*model.UIState, error)
	SaveUI(model.UIState) error
}

type Options struct {
	Auth   Auth
	Prefs  UIStore
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type Store struct {
	gw    Gateway
	auth  Auth
	prefs UIStore
	log   *slog.Logger
	now   func() time.Time

	// mu guards the fields below. It is never held across a gateway call.
	mu            sync.RWMutex
	user          *auth.User
	loading       bool
	loadErr       string
	projects      []model.Project
	tasks         []model.Task
	timeBlocks    []model.TimeBlock
	dailyGoals    []model.DailyGoal
	habits        []model.Habit
	focusSessions []model.FocusSession
	ui            model.UIState
	generation    uint64
}

func New(gw Gateway, opts Options) *Store {
	s := &Store{
		gw:    gw,
		auth:  opts.Auth,
		prefs: opts.Prefs,
		log:   opts.Logger,
		now:   opts.Now,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.ui = model.UIState{
		SelectedDate: model.FormatDate(s.now()),
		SidebarOpen:  true,
		ActiveView:   model.ViewDay,
	}
	if s.prefs != nil {
		saved, err := s.prefs.LoadUI()
		if err != nil {
			s.log.Warn("load ui state", "err", err)
		} else if saved != nil {
			s.ui = *saved
			if s.ui.SelectedDate == "" {
				s.ui.SelectedDate = model.FormatDate(s.now())
			}
			if s.ui.ActiveView == "" {
				s.ui.ActiveView = model.ViewDay
			}
		}
	}
	return s
}

// fail logs a failed action and returns it wrapped with the action name.
func (s *Store) fail(op string, err error) error {
	s.log.Error("planner action failed", "op", op, "err", err)
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Store) today() string {
	return model.FormatDate(s.now())
}

// User returns the signed-in user, or nil.
func (s *Store) User() *auth.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) SetUser(u *auth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error returns the last bulk-load failure, or "".
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

func (s *Store) Projects() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Project(nil), s.projects...)
}

func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Task(nil), s.tasks...)
}

func (s *Store) TimeBlocks() []model.TimeBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.TimeBlock(nil), s.timeBlocks...)
}

func (s *Store) DailyGoals() []model.DailyGoal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.DailyGoal(nil), s.dailyGoals...)
}

// Habits returns copies; CompletedDates is not shared with the store.
func (s *Store) Habits() []model.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Habit, len(s.habits))
	for i, h := range s.habits {
		h.CompletedDates = append([]string(nil), h.CompletedDates...)
		out[i] = h
	}
	return out
}

func (s *Store) FocusSessions() []model.FocusSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.FocusSession(nil), s.focusSessions...)
}
