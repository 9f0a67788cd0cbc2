package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planner/internal/model"
	"github.com/sadopc/planner/internal/planner"
)

// inboxModel lists open tasks that have not been given a day yet.
type inboxModel struct {
	store  *planner.Store
	width  int
	height int

	tasks    []model.Task
	projects map[string]model.Project
	cursor   int

	form      formState
	fTitle    *string
	fPriority *model.Priority
	fCategory *model.Category
}

func newInboxModel(s *planner.Store) inboxModel {
	title := ""
	priority, category := model.PriorityMedium, model.CategoryWork
	m := inboxModel{
		store:     s,
		fTitle:    &title,
		fPriority: &priority,
		fCategory: &category,
	}
	m.refresh()
	return m
}

func (m *inboxModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *inboxModel) refresh() {
	m.tasks = m.store.Inbox()
	m.projects = m.store.ProjectIndex()
	if m.cursor >= len(m.tasks) {
		m.cursor = max(0, len(m.tasks)-1)
	}
}

func (m inboxModel) selected() (model.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return model.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m inboxModel) update(msg tea.Msg) (inboxModel, tea.Cmd) {
	if m.form.active {
		done, cmd := m.form.update(msg)
		if done {
			return m, m.submit()
		}
		return m, cmd
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Toggle):
		if t, ok := m.selected(); ok {
			return m, act("Task completed", func(ctx context.Context) error {
				return m.store.ToggleTask(ctx, t.ID)
			})
		}
	case key.Matches(km, keys.Today):
		return m, m.schedule()
	case key.Matches(km, keys.Delete):
		if t, ok := m.selected(); ok {
			return m, act("Task deleted", func(ctx context.Context) error {
				return m.store.DeleteTask(ctx, t.ID)
			})
		}
	case key.Matches(km, keys.New):
		return m, m.showTaskForm()
	}
	return m, nil
}

// schedule gives the selected task the selected date, which moves it out of
// the inbox.
func (m inboxModel) schedule() tea.Cmd {
	t, ok := m.selected()
	if !ok {
		return nil
	}
	date := m.store.UI().SelectedDate
	return act("Scheduled for "+date, func(ctx context.Context) error {
		return m.store.UpdateTask(ctx, t.ID, model.TaskUpdate{DueDate: &date})
	})
}

func (m *inboxModel) showTaskForm() tea.Cmd {
	*m.fTitle = ""
	*m.fPriority, *m.fCategory = model.PriorityMedium, model.CategoryWork
	return m.form.open("task", huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(m.fTitle).Validate(required),
			huh.NewSelect[model.Priority]().Title("Priority").Options(options(model.Priorities)...).Value(m.fPriority),
			huh.NewSelect[model.Category]().Title("Category").Options(options(model.TaskCategories)...).Value(m.fCategory),
		),
	))
}

func (m inboxModel) submit() tea.Cmd {
	title := strings.TrimSpace(*m.fTitle)
	if title == "" {
		return nil
	}
	t := model.Task{Title: title, Priority: *m.fPriority, Category: *m.fCategory}
	return act("Task added", func(ctx context.Context) error {
		_, err := m.store.AddTask(ctx, t)
		return err
	})
}

func (m inboxModel) view() string {
	w := m.width - 4
	if m.form.active {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Inbox Task"), "", m.form.view()))
	}

	rows := []string{titleStyle.Render(fmt.Sprintf("Inbox (%d)", len(m.tasks)))}
	if len(m.tasks) == 0 {
		rows = append(rows, mutedStyle.Render("  Inbox zero. Press n to capture a task."))
	}
	for i, t := range m.tasks {
		cursor, style := "  ", normalItemStyle
		if i == m.cursor {
			cursor, style = "> ", selectedItemStyle
		}
		line := style.Render(cursor) + priorityBadge(t.Priority) + " " + style.Render(t.Title)
		line += " " + categoryStyle(t.Category).Render(string(t.Category))
		if t.ProjectID != nil {
			if p, ok := m.projects[*t.ProjectID]; ok {
				line += " " + dot(deref(p.Color)) + " " + mutedStyle.Render(p.Title)
			}
		}
		rows = append(rows, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(w).Render(strings.Join(rows, "\n")),
		mutedStyle.Render("  space: complete  t: schedule for selected day  n: new  d: delete"),
	)
}
