package planner

import "github.com/sadopc/planner/internal/model"

// UI returns the cursor state.
func (s *Store) UI() model.UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ui := s.ui
	if ui.ActiveProjectID != nil {
		id := *ui.ActiveProjectID
		ui.ActiveProjectID = &id
	}
	return ui
}

func (s *Store) SetSelectedDate(date string) {
	s.updateUI(func(ui *model.UIState) { ui.SelectedDate = date })
}

func (s *Store) SetSidebarOpen(open bool) {
	s.updateUI(func(ui *model.UIState) { ui.SidebarOpen = open })
}

func (s *Store) SetActiveView(v model.View) {
	s.updateUI(func(ui *model.UIState) { ui.ActiveView = v })
}

// SetActiveProject narrows views to one project. nil shows everything.
func (s *Store) SetActiveProject(id *string) {
	s.updateUI(func(ui *model.UIState) {
		if id == nil {
			ui.ActiveProjectID = nil
			return
		}
		v := *id
		ui.ActiveProjectID = &v
	})
}

func (s *Store) updateUI(fn func(*model.UIState)) {
	s.mu.Lock()
	fn(&s.ui)
	ui := s.ui
	s.mu.Unlock()
	s.saveUI(ui)
}

func (s *Store) saveUI(ui model.UIState) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.SaveUI(ui); err != nil {
		s.log.Warn("save ui state", "err", err)
	}
}
