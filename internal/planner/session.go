package planner

import (
	"context"

	"github.com/sadopc/planner/internal/auth"
	"github.com/sadopc/planner/internal/mapper"
	"github.com/sadopc/planner/internal/model"
	"golang.org/x/sync/errgroup"
)

// Initialize reads the current session and, when one exists, loads all six
// collections in parallel. A failure is kept in Error as well as returned.
func (s *Store) Initialize(ctx context.Context) error {
	user := s.User()
	if s.auth != nil {
		user = s.auth.User()
	}

	s.mu.Lock()
	s.user = user
	if user == nil {
		s.loading = false
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.loadErr = ""
	gen := s.generation
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.loadProjects(gctx, gen) })
	g.Go(func() error { return s.loadTasks(gctx, gen) })
	g.Go(func() error { return s.loadTimeBlocks(gctx, gen) })
	g.Go(func() error { return s.loadDailyGoals(gctx, gen) })
	g.Go(func() error { return s.loadHabits(gctx, gen) })
	g.Go(func() error { return s.loadFocusSessions(gctx, gen) })
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		// Signed out meanwhile; clear already reset the flags.
		return err
	}
	s.loading = false
	if err != nil {
		s.loadErr = err.Error()
	}
	return err
}

// Watch reloads everything whenever a session becomes active and clears
// local state on sign out. The returned func stops watching.
func (s *Store) Watch(ctx context.Context, a Auth) func() {
	return a.OnAuthStateChange(func(event auth.Event, sess *auth.Session) {
		switch event {
		case auth.EventInitialSession, auth.EventSignedIn:
			if sess == nil {
				return
			}
			u := sess.User
			s.SetUser(&u)
			// Failures are already logged and kept in Error.
			_ = s.Initialize(ctx)
		case auth.EventSignedOut:
			s.clear()
		}
	})
}

// SignOut ends the session and drops every cached collection.
func (s *Store) SignOut(ctx context.Context) error {
	var err error
	if s.auth != nil {
		if err = s.auth.SignOut(ctx); err != nil {
			s.log.Warn("sign out", "err", err)
		}
	}
	s.clear()
	return err
}

func (s *Store) clear() {
	s.mu.Lock()
	s.generation++
	s.loading = false
	s.user = nil
	s.ui.ActiveProjectID = nil
	s.projects = nil
	s.tasks = nil
	s.timeBlocks = nil
	s.dailyGoals = nil
	s.habits = nil
	s.focusSessions = nil
	s.loadErr = ""
	ui := s.ui
	s.mu.Unlock()
	s.saveUI(ui)
}

// currentGeneration returns the counter clear bumps. A load that started
// under an older generation drops its result.
func (s *Store) currentGeneration() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func loadInto[R, T any](s *Store, ctx context.Context, gen uint64, op string,
	get func(context.Context) ([]R, error), conv func(R) T, set func([]T)) error {
	rows, err := get(ctx)
	if err != nil {
		return s.fail(op, err)
	}
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = conv(r)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.log.Debug("discarding stale load", "op", op)
		return nil
	}
	set(out)
	return nil
}

func (s *Store) LoadProjects(ctx context.Context) error {
	return s.loadProjects(ctx, s.currentGeneration())
}

func (s *Store) loadProjects(ctx context.Context, gen uint64) error {
	return loadInto(s, ctx, gen, "load projects", s.gw.Projects.GetAll, mapper.DBProjectToProject,
		func(v []model.Project) { s.projects = v })
}

func (s *Store) LoadTasks(ctx context.Context) error {
	return s.loadTasks(ctx, s.currentGeneration())
}

func (s *Store) loadTasks(ctx context.Context, gen uint64) error {
	return loadInto(s, ctx, gen, "load tasks", s.gw.Tasks.GetAll, mapper.DBTaskToTask,
		func(v []model.Task) { s.tasks = v })
}

func (s *Store) LoadTimeBlocks(ctx context.Context) error {
	return s.loadTimeBlocks(ctx, s.currentGeneration())
}

func (s *Store) loadTimeBlocks(ctx context.Context, gen uint64) error {
	return loadInto(s, ctx, gen, "load time blocks", s.gw.TimeBlocks.GetAll, mapper.DBTimeBlockToTimeBlock,
		func(v []model.TimeBlock) { s.timeBlocks = v })
}

func (s *Store) LoadDailyGoals(ctx context.Context) error {
	return s.loadDailyGoals(ctx, s.currentGeneration())
}

func (s *Store) loadDailyGoals(ctx context.Context, gen uint64) error {
	return loadInto(s, ctx, gen, "load daily goals", s.gw.DailyGoals.GetAll, mapper.DBGoalToGoal,
		func(v []model.DailyGoal) { s.dailyGoals = v })
}

func (s *Store) LoadHabits(ctx context.Context) error {
	return s.loadHabits(ctx, s.currentGeneration())
}

func (s *Store) loadHabits(ctx context.Context, gen uint64) error {
	return loadInto(s, ctx, gen, "load habits", s.gw.Habits.GetAll, mapper.DBHabitToHabit,
		func(v []model.Habit) { s.habits = v })
}

func (s *Store) LoadFocusSessions(ctx context.Context) error {
	return s.loadFocusSessions(ctx, s.currentGeneration())
}

func (s *Store) loadFocusSessions(ctx context.Context, gen uint64) error {
	return loadInto(s, ctx, gen, "load focus sessions", s.gw.FocusSessions.GetAll, mapper.DBSessionToSession,
		func(v []model.FocusSession) { s.focusSessions = v })
}
