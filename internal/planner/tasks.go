package planner

import (
	"context"
	"sort"

	"github.com/sadopc/planner/internal/backend"
	"github.com/sadopc/planner/internal/mapper"
	"github.com/sadopc/planner/internal/model"
)

// AddTask creates t at the end of its status group. A task without a project
// joins the active project, if any.
func (s *Store) AddTask(ctx context.Context, t model.Task) (model.Task, error) {
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.Category == "" {
		t.Category = model.CategoryWork
	}

	s.mu.RLock()
	if t.ProjectID == nil && s.ui.ActiveProjectID != nil {
		id := *s.ui.ActiveProjectID
		t.ProjectID = &id
	}
	t.Order = countStatus(s.tasks, t.Status)
	s.mu.RUnlock()

	row, err := s.gw.Tasks.Create(ctx, mapper.TaskToDB(t))
	if err != nil {
		return model.Task{}, s.fail("add task", err)
	}
	created := mapper.DBTaskToTask(*row)

	s.mu.Lock()
	s.tasks = append(s.tasks, created)
	s.mu.Unlock()
	return created, nil
}

func countStatus(tasks []model.Task, status model.Status) int {
	n := 0
	for _, t := range tasks {
		if t.Status == status {
			n++
		}
	}
	return n
}

// UpdateTask applies a partial update and stamps updatedAt locally.
func (s *Store) UpdateTask(ctx context.Context, id string, u model.TaskUpdate) error {
	patch := mapper.TaskPatch(u)
	if len(patch) == 0 {
		return nil
	}
	if _, err := s.gw.Tasks.Update(ctx, id, patch); err != nil {
		return s.fail("update task", err)
	}

	now := s.now()
	s.mu.Lock()
	for i, t := range s.tasks {
		if t.ID == id {
			t = u.Apply(t)
			t.UpdatedAt = now
			s.tasks[i] = t
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := s.gw.Tasks.Delete(ctx, id); err != nil {
		return s.fail("delete task", err)
	}
	s.mu.Lock()
	s.tasks = removeByID(s.tasks, id, func(t model.Task) string { return t.ID })
	s.mu.Unlock()
	return nil
}

// ToggleTask flips completed. Status is left alone.
func (s *Store) ToggleTask(ctx context.Context, id string) error {
	task, ok := s.Task(id)
	if !ok {
		return ErrNotFound
	}
	completed := !task.Completed
	if _, err := s.gw.Tasks.Update(ctx, id, backend.Fields{"completed": completed}); err != nil {
		return s.fail("toggle task", err)
	}

	now := s.now()
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Completed = completed
			s.tasks[i].UpdatedAt = now
		}
	}
	s.mu.Unlock()
	return nil
}

// MoveTaskToStatus appends the task to the destination group. Entering done
// marks it completed; other groups keep the completed flag as it was. The
// source group is not renumbered.
func (s *Store) MoveTaskToStatus(ctx context.Context, id string, status model.Status) error {
	task, ok := s.Task(id)
	if !ok {
		return ErrNotFound
	}

	s.mu.RLock()
	order := countStatus(s.tasks, status)
	s.mu.RUnlock()

	completed := task.Completed || status == model.StatusDone
	patch := backend.Fields{"status": string(status), "order": order, "completed": completed}
	if _, err := s.gw.Tasks.Update(ctx, id, patch); err != nil {
		return s.fail("move task", err)
	}

	now := s.now()
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Status = status
			s.tasks[i].Order = order
			s.tasks[i].Completed = completed
			s.tasks[i].UpdatedAt = now
		}
	}
	s.mu.Unlock()
	return nil
}

type taskMove struct {
	id        string
	status    model.Status
	order     int
	completed bool
}

// ReorderTask moves a task into status at index and renumbers both the
// source and destination groups 0..n-1. Only tasks whose position or flags
// changed are written. Index is clamped to the group bounds.
func (s *Store) ReorderTask(ctx context.Context, id string, status model.Status, index int) error {
	s.mu.RLock()
	moves, ok := planReorder(s.tasks, id, status, index)
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	var firstErr error
	applied := make([]taskMove, 0, len(moves))
	for _, m := range moves {
		patch := backend.Fields{"status": string(m.status), "order": m.order, "completed": m.completed}
		if _, err := s.gw.Tasks.Update(ctx, m.id, patch); err != nil {
			firstErr = s.fail("reorder task", err)
			break
		}
		applied = append(applied, m)
	}

	now := s.now()
	s.mu.Lock()
	for _, m := range applied {
		for i := range s.tasks {
			if s.tasks[i].ID == m.id {
				s.tasks[i].Status = m.status
				s.tasks[i].Order = m.order
				s.tasks[i].Completed = m.completed
				s.tasks[i].UpdatedAt = now
			}
		}
	}
	s.mu.Unlock()
	return firstErr
}

func planReorder(tasks []model.Task, id string, status model.Status, index int) ([]taskMove, bool) {
	var moved *model.Task
	for i := range tasks {
		if tasks[i].ID == id {
			moved = &tasks[i]
			break
		}
	}
	if moved == nil {
		return nil, false
	}

	group := func(st model.Status) []model.Task {
		var out []model.Task
		for _, t := range tasks {
			if t.Status == st && t.ID != id {
				out = append(out, t)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
		return out
	}

	dest := group(status)
	if index < 0 {
		index = 0
	}
	if index > len(dest) {
		index = len(dest)
	}
	m := *moved
	m.Status = status
	if status == model.StatusDone && moved.Status != model.StatusDone {
		m.Completed = true
	}
	dest = append(dest[:index], append([]model.Task{m}, dest[index:]...)...)

	var moves []taskMove
	renumber := func(group []model.Task) {
		for i, t := range group {
			orig := t
			if t.ID == id {
				orig = *moved
			}
			if orig.Order != i || orig.Status != t.Status || orig.Completed != t.Completed {
				moves = append(moves, taskMove{id: t.ID, status: t.Status, order: i, completed: t.Completed})
			}
		}
	}
	renumber(dest)
	if moved.Status != status {
		renumber(group(moved.Status))
	}
	return moves, true
}

func removeByID[T any](items []T, id string, key func(T) string) []T {
	out := items[:0:0]
	for _, it := range items {
		if key(it) != id {
			out = append(out, it)
		}
	}
	return out
}
