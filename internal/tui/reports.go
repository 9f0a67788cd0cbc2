package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planner/internal/model"
	"github.com/sadopc/planner/internal/planner"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
)

// dayReport is one row of the reports table.
type dayReport struct {
	date      string
	label     string
	minutes   int
	sessions  int
	tasksDone int
	habits    int
}

type reportsModel struct {
	store       *planner.Store
	now         func() time.Time
	startOfWeek time.Weekday
	width       int
	height      int

	mode   reportMode
	offset int // weeks or 7-day blocks back from today (0 = current)
	days   []dayReport

	chart barchart.Model
}

func newReportsModel(s *planner.Store, now func() time.Time, startOfWeek string) reportsModel {
	r := reportsModel{
		store: s,
		now:   now,
		chart: barchart.New(60, 12),
	}
	r.setStartOfWeek(startOfWeek)
	r.refresh()
	return r
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

func (r *reportsModel) setStartOfWeek(day string) {
	r.startOfWeek = weekStart(day)
}

// dateRange returns the first and last day shown, both inclusive.
func (r reportsModel) dateRange() (time.Time, time.Time) {
	now := r.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.Local)

	switch r.mode {
	case reportWeekly:
		back := (int(today.Weekday()) - int(r.startOfWeek) + 7) % 7
		start := today.AddDate(0, 0, -back-7*r.offset)
		return start, start.AddDate(0, 0, 6)
	default:
		end := today.AddDate(0, 0, -7*r.offset)
		return end.AddDate(0, 0, -6), end
	}
}

func (r *reportsModel) refresh() {
	from, to := r.dateRange()
	minutes := r.store.FocusMinutesByDay(from, to)

	sessions := make(map[string]int)
	for _, fs := range r.store.FocusSessions() {
		if fs.Completed {
			sessions[model.FormatDate(fs.StartTime)]++
		}
	}
	// Tasks carry no completion time; the last update of a finished task
	// stands in for it.
	done := make(map[string]int)
	for _, t := range r.store.Tasks() {
		if t.Completed && !t.UpdatedAt.IsZero() {
			done[model.FormatDate(t.UpdatedAt)]++
		}
	}
	habits := make(map[string]int)
	for _, h := range r.store.Habits() {
		for _, d := range h.CompletedDates {
			habits[d]++
		}
	}

	r.days = r.days[:0:0]
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := model.FormatDate(d)
		r.days = append(r.days, dayReport{
			date:      date,
			label:     d.Format("Mon 02"),
			minutes:   minutes[date],
			sessions:  sessions[date],
			tasksDone: done[date],
			habits:    habits[date],
		})
	}
	r.buildChart()
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil
	}
	switch {
	case key.Matches(km, keys.Left):
		r.offset++
		r.refresh()
	case key.Matches(km, keys.Right):
		if r.offset > 0 {
			r.offset--
			r.refresh()
		}
	case key.Matches(km, keys.Mode):
		if r.mode == reportDaily {
			r.mode = reportWeekly
		} else {
			r.mode = reportDaily
		}
		r.offset = 0
		r.refresh()
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}
	r.chart = barchart.New(chartWidth, chartHeight)

	bars := make([]barchart.BarData, 0, len(r.days))
	for _, d := range r.days {
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if d.minutes == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: d.label,
			Values: []barchart.BarValue{{
				Name:  "focus",
				Value: float64(d.minutes) / 60,
				Style: style,
			}},
		})
	}
	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate  m: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("  focus hours per day"), r.chart.View(), "",
			r.renderTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderTable(w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %8s %9s %6s %7s", "Date", "Focus", "Sessions", "Done", "Habits")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 46))))

	var total dayReport
	for _, d := range r.days {
		rows = append(rows, fmt.Sprintf("  %-12s %8s %9d %6d %7d",
			d.date, formatMinutes(d.minutes), d.sessions, d.tasksDone, d.habits))
		total.minutes += d.minutes
		total.sessions += d.sessions
		total.tasksDone += d.tasksDone
		total.habits += d.habits
	}
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 46))))
	rows = append(rows, accentStyle.Render(fmt.Sprintf("  %-12s %8s %9d %6d %7d",
		"Total", formatMinutes(total.minutes), total.sessions, total.tasksDone, total.habits)))
	return strings.Join(rows, "\n")
}
