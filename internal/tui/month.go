package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planner/internal/model"
	"github.com/sadopc/planner/internal/planner"
)

type monthCell struct {
	date   string
	inside bool // part of the displayed month rather than padding
	open   int
	done   int
	blocks int
}

// monthModel is a calendar grid of the month holding the selected date, with
// the selected day's tasks listed beneath it.
type monthModel struct {
	store       *planner.Store
	now         func() time.Time
	startOfWeek time.Weekday
	width       int
	height      int

	selected string
	month    time.Time
	cells    []monthCell
	tasks    []model.Task
}

func newMonthModel(s *planner.Store, now func() time.Time, startOfWeek string) monthModel {
	m := monthModel{store: s, now: now, startOfWeek: weekStart(startOfWeek)}
	m.refresh()
	return m
}

func (m *monthModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *monthModel) setStartOfWeek(day string) {
	m.startOfWeek = weekStart(day)
}

func (m *monthModel) refresh() {
	m.selected = m.store.UI().SelectedDate
	day, err := model.ParseDate(m.selected)
	if err != nil {
		day = m.now()
	}
	m.month = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.Local)
	m.tasks = m.store.TasksForDate(m.selected)

	// Whole weeks covering the month.
	first := firstOfWeek(model.FormatDate(m.month), m.startOfWeek)
	last := m.month.AddDate(0, 1, -1)
	m.cells = nil
	for date := first; ; date = shiftDate(date, 1) {
		t, err := model.ParseDate(date)
		if err != nil || (t.After(last) && len(m.cells)%7 == 0) {
			break
		}
		c := monthCell{date: date, inside: t.Month() == m.month.Month()}
		for _, task := range m.store.TasksForDate(date) {
			if task.Completed {
				c.done++
			} else {
				c.open++
			}
		}
		c.blocks = len(m.store.BlocksForDate(date))
		m.cells = append(m.cells, c)
	}
}

func (m monthModel) update(msg tea.Msg) (monthModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, keys.Left):
		m.selectDate(shiftDate(m.selected, -1))
	case key.Matches(km, keys.Right):
		m.selectDate(shiftDate(m.selected, 1))
	case key.Matches(km, keys.Up):
		m.selectDate(shiftDate(m.selected, -7))
	case key.Matches(km, keys.Down):
		m.selectDate(shiftDate(m.selected, 7))
	case key.Matches(km, keys.MoveLeft):
		m.selectDate(shiftMonth(m.selected, -1))
	case key.Matches(km, keys.MoveRight):
		m.selectDate(shiftMonth(m.selected, 1))
	case key.Matches(km, keys.Today):
		m.selectDate(model.FormatDate(m.now()))
	case key.Matches(km, keys.Enter):
		return m, func() tea.Msg { return openDayMsg{} }
	}
	return m, nil
}

func (m *monthModel) selectDate(date string) {
	m.store.SetSelectedDate(date)
	m.refresh()
}

// shiftMonth moves date by n months, pinning the day to the end of shorter
// months.
func shiftMonth(date string, n int) string {
	t, err := model.ParseDate(date)
	if err != nil {
		return date
	}
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.Local)
	lastDay := first.AddDate(0, 1, -1).Day()
	return model.FormatDate(time.Date(first.Year(), first.Month(), min(t.Day(), lastDay), 0, 0, 0, 0, time.Local))
}

func (m monthModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}
	cellWidth := max((m.width-4)/7, 6)

	var head []string
	for i := range 7 {
		name := time.Weekday((int(m.startOfWeek) + i) % 7).String()[:3]
		head = append(head, lipgloss.NewStyle().Width(cellWidth).Render(mutedStyle.Render(name)))
	}
	rows := []string{" " + titleStyle.Render(m.month.Format("January 2006")), lipgloss.JoinHorizontal(lipgloss.Top, head...)}
	for i := 0; i < len(m.cells); i += 7 {
		var week []string
		for _, c := range m.cells[i:min(i+7, len(m.cells))] {
			week = append(week, m.renderCell(c, cellWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, week...))
	}

	rows = append(rows, "", m.renderTasks(m.width-4),
		mutedStyle.Render("  ←/→/↑/↓: day  [/]: month  t: today  enter: open day"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m monthModel) renderCell(c monthCell, w int) string {
	num := c.date[len(c.date)-2:]
	style := normalItemStyle
	switch {
	case c.date == m.selected:
		style = selectedItemStyle.Reverse(true)
	case c.date == model.FormatDate(m.now()):
		style = successStyle.Bold(true)
	case !c.inside:
		style = mutedStyle
	}
	marks := ""
	if c.open > 0 {
		marks += accentStyle.Render(fmt.Sprintf(" %d", c.open))
	}
	if c.done > 0 {
		marks += successStyle.Render(fmt.Sprintf(" ✓%d", c.done))
	}
	if c.blocks > 0 {
		marks += highlightStyle.Render(" ▪")
	}
	return lipgloss.NewStyle().Width(w).Render(style.Render(num) + marks)
}

func (m monthModel) renderTasks(w int) string {
	label := m.selected
	if t, err := model.ParseDate(m.selected); err == nil {
		label = t.Format("Monday, January 2")
	}
	rows := []string{titleStyle.Render(label)}
	if len(m.tasks) == 0 {
		rows = append(rows, mutedStyle.Render("  Nothing due."))
	}
	for _, t := range m.tasks {
		title := normalItemStyle.Render(t.Title)
		if t.Completed {
			title = doneStyle.Render(t.Title)
		}
		rows = append(rows, "  "+priorityBadge(t.Priority)+" "+title)
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
