package planner

import (
	"context"

	"github.com/sadopc/planner/internal/backend"
	"github.com/sadopc/planner/internal/mapper"
	"github.com/sadopc/planner/internal/model"
)

// AddDailyGoal appends a goal for date under the active project. A fourth
// goal for the same date and project is refused with ErrGoalLimit.
func (s *Store) AddDailyGoal(ctx context.Context, title, date string) (model.DailyGoal, error) {
	project := s.activeProject()

	s.mu.RLock()
	n := 0
	for _, g := range s.dailyGoals {
		if g.Date == date && sameProject(g.ProjectID, project) {
			n++
		}
	}
	s.mu.RUnlock()
	if n >= MaxGoalsPerDay {
		return model.DailyGoal{}, ErrGoalLimit
	}

	row, err := s.gw.DailyGoals.Create(ctx, mapper.GoalToDB(model.DailyGoal{
		ProjectID: project,
		Title:     title,
		Date:      date,
		Order:     n,
	}))
	if err != nil {
		return model.DailyGoal{}, s.fail("add daily goal", err)
	}
	created := mapper.DBGoalToGoal(*row)

	s.mu.Lock()
	s.dailyGoals = append(s.dailyGoals, created)
	s.mu.Unlock()
	return created, nil
}

func sameProject(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *Store) ToggleDailyGoal(ctx context.Context, id string) error {
	s.mu.RLock()
	var goal *model.DailyGoal
	for i := range s.dailyGoals {
		if s.dailyGoals[i].ID == id {
			g := s.dailyGoals[i]
			goal = &g
		}
	}
	s.mu.RUnlock()
	if goal == nil {
		return ErrNotFound
	}

	completed := !goal.Completed
	if _, err := s.gw.DailyGoals.Update(ctx, id, backend.Fields{"completed": completed}); err != nil {
		return s.fail("toggle daily goal", err)
	}
	s.mu.Lock()
	for i := range s.dailyGoals {
		if s.dailyGoals[i].ID == id {
			s.dailyGoals[i].Completed = completed
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteDailyGoal(ctx context.Context, id string) error {
	if err := s.gw.DailyGoals.Delete(ctx, id); err != nil {
		return s.fail("delete daily goal", err)
	}
	s.mu.Lock()
	s.dailyGoals = removeByID(s.dailyGoals, id, func(g model.DailyGoal) string { return g.ID })
	s.mu.Unlock()
	return nil
}
