package planner

import (
	"context"

	"github.com/sadopc/planner/internal/mapper"
	"github.com/sadopc/planner/internal/model"
)

func (s *Store) AddHabit(ctx context.Context, h model.Habit) (model.Habit, error) {
	if h.Frequency == "" {
		h.Frequency = model.FrequencyDaily
	}
	if h.TargetCount <= 0 {
		h.TargetCount = 1
	}
	row, err := s.gw.Habits.Create(ctx, mapper.HabitToDB(h))
	if err != nil {
		return model.Habit{}, s.fail("add habit", err)
	}
	created := mapper.DBHabitToHabit(*row)
	created.CompletedDates = []string{}

	s.mu.Lock()
	s.habits = append(s.habits, created)
	s.mu.Unlock()
	return created, nil
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	if err := s.gw.Habits.Delete(ctx, id); err != nil {
		return s.fail("delete habit", err)
	}
	s.mu.Lock()
	s.habits = removeByID(s.habits, id, func(h model.Habit) string { return h.ID })
	s.mu.Unlock()
	return nil
}

// ToggleHabitForDate flips the completion of date and returns the habit's
// streak afterwards.
func (s *Store) ToggleHabitForDate(ctx context.Context, id, date string) (int, error) {
	added, err := s.gw.Habits.ToggleCompletion(ctx, id, date)
	if err != nil {
		return 0, s.fail("toggle habit", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, h := range s.habits {
		if h.ID != id {
			continue
		}
		dates := make([]string, 0, len(h.CompletedDates)+1)
		for _, d := range h.CompletedDates {
			if d != date {
				dates = append(dates, d)
			}
		}
		if added {
			dates = append(dates, date)
		}
		s.habits[i].CompletedDates = dates
		return model.Streak(dates, s.now()), nil
	}
	return 0, nil
}

// Streak returns the current streak of habit id.
func (s *Store) Streak(id string) int {
	h, ok := s.Habit(id)
	if !ok {
		return 0
	}
	return h.Streak(s.now())
}
