package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planner/internal/model"
	"github.com/sadopc/planner/internal/planner"
)

type weekDay struct {
	date   string
	tasks  []model.Task
	blocks []model.TimeBlock
}

// weekModel lays the week around the selected date out as seven columns of
// tasks and time blocks.
type weekModel struct {
	store       *planner.Store
	now         func() time.Time
	startOfWeek time.Weekday
	width       int
	height      int

	days []weekDay
	col  int
	row  int
}

func newWeekModel(s *planner.Store, now func() time.Time, startOfWeek string) weekModel {
	w := weekModel{store: s, now: now, startOfWeek: weekStart(startOfWeek)}
	w.refresh()
	return w
}

func (w *weekModel) setSize(width, height int) {
	w.width = width
	w.height = height
}

func (w *weekModel) setStartOfWeek(day string) {
	w.startOfWeek = weekStart(day)
}

func (w *weekModel) refresh() {
	selected := w.store.UI().SelectedDate
	first := firstOfWeek(selected, w.startOfWeek)
	w.days = make([]weekDay, 7)
	for i := range w.days {
		date := shiftDate(first, i)
		w.days[i] = weekDay{
			date:   date,
			tasks:  w.store.TasksForDate(date),
			blocks: w.store.BlocksForDate(date),
		}
		if date == selected {
			w.col = i
		}
	}
	if n := len(w.days[w.col].tasks); w.row >= n {
		w.row = max(0, n-1)
	}
}

func (w weekModel) selected() (model.Task, bool) {
	tasks := w.days[w.col].tasks
	if w.row < 0 || w.row >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[w.row], true
}

func (w weekModel) update(msg tea.Msg) (weekModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return w, nil
	}
	date := w.days[w.col].date
	switch {
	case key.Matches(km, keys.Left):
		w.selectDate(shiftDate(date, -1))
	case key.Matches(km, keys.Right):
		w.selectDate(shiftDate(date, 1))
	case key.Matches(km, keys.MoveLeft):
		w.selectDate(shiftDate(date, -7))
	case key.Matches(km, keys.MoveRight):
		w.selectDate(shiftDate(date, 7))
	case key.Matches(km, keys.Today):
		w.selectDate(model.FormatDate(w.now()))
	case key.Matches(km, keys.Up):
		if w.row > 0 {
			w.row--
		}
	case key.Matches(km, keys.Down):
		if w.row < len(w.days[w.col].tasks)-1 {
			w.row++
		}
	case key.Matches(km, keys.Toggle):
		if t, ok := w.selected(); ok {
			return w, act("Task updated", func(ctx context.Context) error {
				return w.store.ToggleTask(ctx, t.ID)
			})
		}
	case key.Matches(km, keys.Enter):
		return w, func() tea.Msg { return openDayMsg{} }
	}
	return w, nil
}

func (w *weekModel) selectDate(date string) {
	w.store.SetSelectedDate(date)
	w.row = 0
	w.refresh()
}

func (w weekModel) view() string {
	if w.width < 20 {
		return "Terminal too small"
	}
	colWidth := max((w.width-2*7)/7, 12)

	cols := make([]string, 0, len(w.days))
	for i := range w.days {
		cols = append(cols, w.renderDay(i, colWidth))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		" "+titleStyle.Render(w.title()),
		lipgloss.JoinHorizontal(lipgloss.Top, cols...),
		mutedStyle.Render("  ←/→: day  [/]: week  t: today  space: toggle  enter: open day"),
	)
}

func (w weekModel) title() string {
	from, err1 := model.ParseDate(w.days[0].date)
	to, err2 := model.ParseDate(w.days[6].date)
	if err1 != nil || err2 != nil {
		return w.days[0].date
	}
	return fmt.Sprintf("%s – %s", from.Format("Jan 2"), to.Format("Jan 2 2006"))
}

func (w weekModel) renderDay(i int, width int) string {
	day := w.days[i]
	label := day.date
	if t, err := model.ParseDate(day.date); err == nil {
		label = t.Format("Mon 2")
	}
	head := titleStyle.Render(label)
	if day.date == model.FormatDate(w.now()) {
		head = successStyle.Bold(true).Render(label)
	}

	rows := []string{head, ""}
	for j, t := range day.tasks {
		style := normalItemStyle
		if t.Completed {
			style = doneStyle
		}
		if i == w.col && j == w.row {
			style = selectedItemStyle
		}
		rows = append(rows, priorityBadge(t.Priority)+style.Render(truncate(t.Title, width-4)))
	}
	for _, b := range day.blocks {
		rows = append(rows, categoryStyle(b.Category).Render(truncate(b.StartTime+" "+b.Title, width-3)))
	}
	if len(day.tasks)+len(day.blocks) == 0 {
		rows = append(rows, mutedStyle.Render("free"))
	}

	style := panelStyle
	if i == w.col {
		style = activePanelStyle
	}
	return style.Width(width).Render(strings.Join(rows, "\n"))
}
