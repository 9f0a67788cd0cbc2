package planner

import (
	"context"

	"github.com/sadopc/planner/internal/mapper"
	"github.com/sadopc/planner/internal/model"
)

// AddTimeBlock stores b under the active project. Overlap with other blocks
// is not checked.
func (s *Store) AddTimeBlock(ctx context.Context, b model.TimeBlock) (model.TimeBlock, error) {
	if b.Category == "" {
		b.Category = model.CategoryWork
	}
	b.ProjectID = s.activeProject()

	row, err := s.gw.TimeBlocks.Create(ctx, mapper.TimeBlockToDB(b))
	if err != nil {
		return model.TimeBlock{}, s.fail("add time block", err)
	}
	created := mapper.DBTimeBlockToTimeBlock(*row)

	s.mu.Lock()
	s.timeBlocks = append(s.timeBlocks, created)
	s.mu.Unlock()
	return created, nil
}

func (s *Store) UpdateTimeBlock(ctx context.Context, id string, u model.TimeBlockUpdate) error {
	patch := mapper.TimeBlockPatch(u)
	if len(patch) == 0 {
		return nil
	}
	if _, err := s.gw.TimeBlocks.Update(ctx, id, patch); err != nil {
		return s.fail("update time block", err)
	}
	s.mu.Lock()
	for i, b := range s.timeBlocks {
		if b.ID == id {
			s.timeBlocks[i] = u.Apply(b)
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteTimeBlock(ctx context.Context, id string) error {
	if err := s.gw.TimeBlocks.Delete(ctx, id); err != nil {
		return s.fail("delete time block", err)
	}
	s.mu.Lock()
	s.timeBlocks = removeByID(s.timeBlocks, id, func(b model.TimeBlock) string { return b.ID })
	s.mu.Unlock()
	return nil
}

func (s *Store) activeProject() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ui.ActiveProjectID == nil {
		return nil
	}
	id := *s.ui.ActiveProjectID
	return &id
}
