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

var statusTitles = map[model.Status]string{
	model.StatusBacklog:    "Backlog",
	model.StatusTodo:       "To Do",
	model.StatusInProgress: "In Progress",
	model.StatusDone:       "Done",
}

// boardModel is the kanban board: one column per status.
type boardModel struct {
	store  *planner.Store
	width  int
	height int

	columns [][]model.Task
	col     int
	row     int

	form      formState
	fTitle    *string
	fPriority *model.Priority
	fCategory *model.Category
	fDue      *string
}

func newBoardModel(s *planner.Store) boardModel {
	title, due := "", ""
	priority, category := model.PriorityMedium, model.CategoryWork
	b := boardModel{
		store:     s,
		fTitle:    &title,
		fPriority: &priority,
		fCategory: &category,
		fDue:      &due,
	}
	b.refresh()
	return b
}

func (b *boardModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

func (b *boardModel) refresh() {
	b.columns = make([][]model.Task, len(model.Statuses))
	for i, s := range model.Statuses {
		b.columns[i] = b.store.TasksByStatus(s)
	}
	b.clamp()
}

func (b *boardModel) clamp() {
	if b.row >= len(b.columns[b.col]) {
		b.row = max(0, len(b.columns[b.col])-1)
	}
}

func (b boardModel) selected() (model.Task, bool) {
	column := b.columns[b.col]
	if b.row < 0 || b.row >= len(column) {
		return model.Task{}, false
	}
	return column[b.row], true
}

func (b boardModel) update(msg tea.Msg) (boardModel, tea.Cmd) {
	if b.form.active {
		done, cmd := b.form.update(msg)
		if done {
			return b, b.submit()
		}
		return b, cmd
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}
	switch {
	case key.Matches(km, keys.Left):
		if b.col > 0 {
			b.col--
			b.clamp()
		}
	case key.Matches(km, keys.Right):
		if b.col < len(b.columns)-1 {
			b.col++
			b.clamp()
		}
	case key.Matches(km, keys.OrderUp):
		return b, b.reorder(b.col, b.row-1)
	case key.Matches(km, keys.OrderDown):
		return b, b.reorder(b.col, b.row+1)
	case key.Matches(km, keys.Up):
		if b.row > 0 {
			b.row--
		}
	case key.Matches(km, keys.Down):
		if b.row < len(b.columns[b.col])-1 {
			b.row++
		}
	case key.Matches(km, keys.MoveLeft):
		if b.col > 0 {
			cmd := b.move(b.col - 1)
			b.col--
			b.row = len(b.columns[b.col])
			return b, cmd
		}
	case key.Matches(km, keys.MoveRight):
		if b.col < len(b.columns)-1 {
			cmd := b.move(b.col + 1)
			b.col++
			b.row = len(b.columns[b.col])
			return b, cmd
		}
	case key.Matches(km, keys.Toggle):
		if t, ok := b.selected(); ok {
			return b, act("Task updated", func(ctx context.Context) error {
				return b.store.ToggleTask(ctx, t.ID)
			})
		}
	case key.Matches(km, keys.Delete):
		if t, ok := b.selected(); ok {
			return b, act("Task deleted", func(ctx context.Context) error {
				return b.store.DeleteTask(ctx, t.ID)
			})
		}
	case key.Matches(km, keys.New):
		return b, b.showTaskForm()
	}
	return b, nil
}

// move sends the selected task to the end of another column.
func (b boardModel) move(col int) tea.Cmd {
	t, ok := b.selected()
	if !ok {
		return nil
	}
	to := model.Statuses[col]
	return act("Moved to "+statusTitles[to], func(ctx context.Context) error {
		return b.store.MoveTaskToStatus(ctx, t.ID, to)
	})
}

// reorder moves the selected task to index within its column.
func (b *boardModel) reorder(col, index int) tea.Cmd {
	t, ok := b.selected()
	if !ok || index < 0 || index >= len(b.columns[col]) {
		return nil
	}
	b.row = index
	status := model.Statuses[col]
	return act("", func(ctx context.Context) error {
		return b.store.ReorderTask(ctx, t.ID, status, index)
	})
}

func (b *boardModel) showTaskForm() tea.Cmd {
	*b.fTitle, *b.fDue = "", ""
	*b.fPriority, *b.fCategory = model.PriorityMedium, model.CategoryWork
	return b.form.open("task", huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(b.fTitle).Validate(required),
			huh.NewSelect[model.Priority]().Title("Priority").Options(options(model.Priorities)...).Value(b.fPriority),
			huh.NewSelect[model.Category]().Title("Category").Options(options(model.TaskCategories)...).Value(b.fCategory),
			huh.NewInput().Title("Due date (YYYY-MM-DD, optional)").Value(b.fDue).Validate(validDate),
		),
	))
}

func (b boardModel) submit() tea.Cmd {
	title := strings.TrimSpace(*b.fTitle)
	if title == "" {
		return nil
	}
	t := model.Task{
		Title:    title,
		Priority: *b.fPriority,
		Category: *b.fCategory,
		Status:   model.Statuses[b.col],
		DueDate:  optionalText(*b.fDue),
	}
	return act("Task added", func(ctx context.Context) error {
		_, err := b.store.AddTask(ctx, t)
		return err
	})
}

func (b boardModel) view() string {
	if b.form.active {
		return panelStyle.Width(b.width - 4).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Task in "+statusTitles[model.Statuses[b.col]]), "", b.form.view()),
		)
	}

	n := len(model.Statuses)
	colWidth := (b.width - 2*n) / n
	if colWidth < 14 {
		colWidth = 14
	}

	var cols []string
	for i, s := range model.Statuses {
		cols = append(cols, b.renderColumn(i, s, colWidth))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	hint := mutedStyle.Render("  ←/→: column  [/]: move  K/J: reorder  space: toggle  n: new  d: delete")
	return lipgloss.JoinVertical(lipgloss.Left, board, hint)
}

func (b boardModel) renderColumn(i int, s model.Status, w int) string {
	tasks := b.columns[i]
	rows := []string{titleStyle.Render(fmt.Sprintf("%s (%d)", statusTitles[s], len(tasks))), ""}
	for j, t := range tasks {
		style := normalItemStyle
		if t.Completed {
			style = doneStyle
		}
		if i == b.col && j == b.row {
			style = selectedItemStyle
		}
		line := priorityBadge(t.Priority) + style.Render(truncate(t.Title, w-4))
		if t.DueDate != nil {
			line += "\n  " + mutedStyle.Render(*t.DueDate)
		}
		rows = append(rows, line)
	}
	if len(tasks) == 0 {
		rows = append(rows, mutedStyle.Render("empty"))
	}

	style := panelStyle
	if i == b.col {
		style = activePanelStyle
	}
	return style.Width(w).Render(strings.Join(rows, "\n"))
}
