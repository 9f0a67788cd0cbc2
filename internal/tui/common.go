package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/planner/internal/model"
	"github.com/sadopc/planner/internal/prefs"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDay viewState = iota
	viewWeek
	viewMonth
	viewBoard
	viewInbox
	viewHabits
	viewFocus
	viewProjects
	viewReports
	viewSettings
	viewCount
)

var viewNames = []string{"Day", "Week", "Month", "Board", "Inbox", "Habits", "Focus", "Projects", "Reports", "Settings"}

// persisted maps views onto the saved UI view. Views without an entry are
// not remembered between runs.
var persisted = map[viewState]model.View{
	viewDay:    model.ViewDay,
	viewWeek:   model.ViewWeek,
	viewMonth:  model.ViewMonth,
	viewBoard:  model.ViewKanban,
	viewInbox:  model.ViewInbox,
	viewHabits: model.ViewHabits,
	viewFocus:  model.ViewFocus,
}

// viewFor finds the view for a saved one. The terminal has no separate
// timeline; the day view's schedule shows the same time blocks.
func viewFor(v model.View) (viewState, bool) {
	if v == model.ViewTimeline {
		return viewDay, true
	}
	for state, saved := range persisted {
		if saved == v {
			return state, true
		}
	}
	return viewDay, false
}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// changedMsg reports a successful store action. Every view re-reads the store.
type changedMsg struct {
	status string
}

type tickMsg time.Time

type focusStartedMsg struct {
	id string
}

type focusEndedMsg struct {
	id       string
	finished bool // the countdown ran out rather than being stopped
}

type settingsSavedMsg struct {
	settings prefs.Settings
}

// openDayMsg asks the app to show the day view for the selected date.
type openDayMsg struct{}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// act runs a store action off the update loop and reports the outcome.
// The only deadline is the gateway's client.timeout, if one is configured.
func act(done string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return changedMsg{status: done}
	}
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatMinutes renders a minute count as "1h 05m" or "25m".
func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// shiftDate moves a calendar day by n days. Unparseable input is returned as is.
func shiftDate(date string, n int) string {
	t, err := model.ParseDate(date)
	if err != nil {
		return date
	}
	return model.FormatDate(t.AddDate(0, 0, n))
}

// weekStart reads the start-of-week setting. Anything but "monday" is Sunday.
func weekStart(day string) time.Weekday {
	if day == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// firstOfWeek returns the calendar day that opens the week containing date.
func firstOfWeek(date string, start time.Weekday) string {
	t, err := model.ParseDate(date)
	if err != nil {
		return date
	}
	back := (int(t.Weekday()) - int(start) + 7) % 7
	return model.FormatDate(t.AddDate(0, 0, -back))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
