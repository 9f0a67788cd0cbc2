package planner

import (
	"sort"

	"github.com/sadopc/planner/internal/model"
)

// Lookups by id. Relationships between entities are resolved through these.

func (s *Store) Project(id string) (model.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return model.Project{}, false
}

func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (s *Store) TimeBlock(id string) (model.TimeBlock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.timeBlocks {
		if b.ID == id {
			return b, true
		}
	}
	return model.TimeBlock{}, false
}

func (s *Store) Habit(id string) (model.Habit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.habits {
		if h.ID == id {
			h.CompletedDates = append([]string(nil), h.CompletedDates...)
			return h, true
		}
	}
	return model.Habit{}, false
}

func (s *Store) FocusSession(id string) (model.FocusSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fs := range s.focusSessions {
		if fs.ID == id {
			return fs, true
		}
	}
	return model.FocusSession{}, false
}

// ProjectIndex maps project ids to projects.
func (s *Store) ProjectIndex() map[string]model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.Project, len(s.projects))
	for _, p := range s.projects {
		out[p.ID] = p
	}
	return out
}

// inScope reports whether ref passes the active project filter.
func (s *Store) inScope(ref *string) bool {
	return s.ui.ActiveProjectID == nil || refers(ref, *s.ui.ActiveProjectID)
}

// TasksByStatus returns one kanban column in order, narrowed to the active project.
func (s *Store) TasksByStatus(status model.Status) []model.Task {
	s.mu.RLock()
	var out []model.Task
	for _, t := range s.tasks {
		if t.Status == status && s.inScope(t.ProjectID) {
			out = append(out, t)
		}
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// TasksForDate returns tasks due on date, narrowed to the active project.
func (s *Store) TasksForDate(date string) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Task
	for _, t := range s.tasks {
		if t.DueDate != nil && *t.DueDate == date && s.inScope(t.ProjectID) {
			out = append(out, t)
		}
	}
	return out
}

// Inbox returns open tasks that have no due date.
func (s *Store) Inbox() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Task
	for _, t := range s.tasks {
		if t.DueDate == nil && !t.Completed && s.inScope(t.ProjectID) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) GoalsForDate(date string) []model.DailyGoal {
	s.mu.RLock()
	var out []model.DailyGoal
	for _, g := range s.dailyGoals {
		if g.Date == date && s.inScope(g.ProjectID) {
			out = append(out, g)
		}
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// BlocksForDate returns the day's time blocks by start time.
func (s *Store) BlocksForDate(date string) []model.TimeBlock {
	s.mu.RLock()
	var out []model.TimeBlock
	for _, b := range s.timeBlocks {
		if b.Date == date && s.inScope(b.ProjectID) {
			out = append(out, b)
		}
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}
