package planner

import (
	"context"

	"github.com/sadopc/planner/internal/mapper"
	"github.com/sadopc/planner/internal/model"
)

// AddProject creates a project, puts it first and makes it the active filter.
func (s *Store) AddProject(ctx context.Context, p model.Project) (model.Project, error) {
	if p.Type == "" {
		p.Type = model.ProjectOther
	}
	row, err := s.gw.Projects.Create(ctx, mapper.ProjectToDB(p))
	if err != nil {
		return model.Project{}, s.fail("add project", err)
	}
	created := mapper.DBProjectToProject(*row)

	s.mu.Lock()
	s.projects = append([]model.Project{created}, s.projects...)
	id := created.ID
	s.ui.ActiveProjectID = &id
	ui := s.ui
	s.mu.Unlock()

	s.saveUI(ui)
	return created, nil
}

func (s *Store) UpdateProject(ctx context.Context, id string, u model.ProjectUpdate) error {
	patch := mapper.ProjectPatch(u)
	if len(patch) == 0 {
		return nil
	}
	if _, err := s.gw.Projects.Update(ctx, id, patch); err != nil {
		return s.fail("update project", err)
	}

	now := s.now()
	s.mu.Lock()
	for i, p := range s.projects {
		if p.ID == id {
			p = u.Apply(p)
			p.UpdatedAt = now
			s.projects[i] = p
		}
	}
	s.mu.Unlock()
	return nil
}

// DeleteProject removes the project and detaches it from every task, time
// block and daily goal held locally. The backend nulls the same references.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	if err := s.gw.Projects.Delete(ctx, id); err != nil {
		return s.fail("delete project", err)
	}

	s.mu.Lock()
	uiChanged := false
	if s.ui.ActiveProjectID != nil && *s.ui.ActiveProjectID == id {
		s.ui.ActiveProjectID = nil
		uiChanged = true
	}
	s.projects = removeByID(s.projects, id, func(p model.Project) string { return p.ID })
	for i := range s.tasks {
		if refers(s.tasks[i].ProjectID, id) {
			s.tasks[i].ProjectID = nil
		}
	}
	for i := range s.timeBlocks {
		if refers(s.timeBlocks[i].ProjectID, id) {
			s.timeBlocks[i].ProjectID = nil
		}
	}
	for i := range s.dailyGoals {
		if refers(s.dailyGoals[i].ProjectID, id) {
			s.dailyGoals[i].ProjectID = nil
		}
	}
	ui := s.ui
	s.mu.Unlock()

	if uiChanged {
		s.saveUI(ui)
	}
	return nil
}

func refers(ref *string, id string) bool {
	return ref != nil && *ref == id
}
