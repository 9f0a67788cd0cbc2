package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planner/internal/model"
	"github.com/sadopc/planner/internal/notify"
	"github.com/sadopc/planner/internal/planner"
	"github.com/sadopc/planner/internal/prefs"
)

type focusPhase int

const (
	focusIdle focusPhase = iota
	focusStarting
	focusWork
	focusBreak
	focusDone
)

var phaseNames = map[focusPhase]string{
	focusIdle:     "READY",
	focusStarting: "STARTING",
	focusWork:     "FOCUS",
	focusBreak:    "BREAK",
	focusDone:     "COMPLETE",
}

// focusModel runs pomodoro and deep work countdowns. Each work phase is one
// focus session on the backend; breaks are not recorded.
type focusModel struct {
	store    *planner.Store
	notifier notify.Notifier
	log      *slog.Logger
	now      func() time.Time
	width    int
	height   int

	settings prefs.Settings
	kind     model.SessionType
	phase    focusPhase
	clock    countdown

	sessionID string
	completed int

	// Open tasks the next session can be attached to. taskCursor -1 = none.
	tasks      []model.Task
	taskCursor int
}

func newFocusModel(s *planner.Store, settings prefs.Settings, n notify.Notifier, log *slog.Logger, now func() time.Time) focusModel {
	f := focusModel{
		store:      s,
		notifier:   n,
		log:        log,
		now:        now,
		settings:   settings,
		kind:       model.SessionPomodoro,
		taskCursor: -1,
	}
	f.refresh()
	f.adoptOpenSession()
	return f
}

func (f *focusModel) setSize(w, h int) {
	f.width = w
	f.height = h
}

func (f *focusModel) refresh() {
	f.tasks = nil
	for _, s := range []model.Status{model.StatusInProgress, model.StatusTodo} {
		for _, t := range f.store.TasksByStatus(s) {
			if !t.Completed {
				f.tasks = append(f.tasks, t)
			}
		}
	}
	if f.taskCursor >= len(f.tasks) {
		f.taskCursor = len(f.tasks) - 1
	}
}

// adoptOpenSession picks up a session left open by an earlier run or another
// client so that it can be finished here.
func (f *focusModel) adoptOpenSession() {
	if f.phase != focusIdle {
		return
	}
	open, ok := f.store.OpenFocusSession()
	if !ok {
		return
	}
	f.kind = open.Type
	f.sessionID = open.ID
	f.phase = focusWork
	f.clock.resumeFrom(f.workDuration(), open.StartTime)
}

func (f focusModel) workDuration() time.Duration {
	if f.kind == model.SessionDeepWork {
		return time.Duration(f.settings.DeepWorkDuration) * time.Minute
	}
	return time.Duration(f.settings.PomodoroWork) * time.Minute
}

func (f focusModel) breakDuration() time.Duration {
	return time.Duration(f.settings.PomodoroBreak) * time.Minute
}

func (f focusModel) active() bool {
	return f.phase == focusStarting || f.phase == focusWork || f.phase == focusBreak
}

func (f focusModel) update(msg tea.Msg) (focusModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return f.tick()

	case focusStartedMsg:
		f.sessionID = msg.id
		f.phase = focusWork
		f.clock.start(f.workDuration(), f.now())
		return f, nil

	case focusEndedMsg:
		if msg.id == f.sessionID {
			f.sessionID = ""
		}
		return f, nil

	case statusMsg:
		// A failed start leaves nothing to count down.
		if msg.isError && f.phase == focusStarting {
			f.phase = focusIdle
		}
		return f, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if !f.active() {
				return f.start()
			}
		case key.Matches(msg, keys.Stop):
			if f.active() {
				return f.stop()
			}
		case key.Matches(msg, keys.Pause), key.Matches(msg, keys.Toggle):
			if f.phase == focusBreak {
				// Skip the rest of the break.
				f.phase = focusIdle
				f.clock.stop()
				return f, nil
			}
			f.clock.toggle(f.now())
		case key.Matches(msg, keys.Mode):
			if !f.active() {
				if f.kind == model.SessionPomodoro {
					f.kind = model.SessionDeepWork
				} else {
					f.kind = model.SessionPomodoro
				}
			}
		case key.Matches(msg, keys.Up):
			if !f.active() && f.taskCursor >= 0 {
				f.taskCursor--
			}
		case key.Matches(msg, keys.Down):
			if !f.active() && f.taskCursor < len(f.tasks)-1 {
				f.taskCursor++
			}
		}
	}
	return f, nil
}

func (f focusModel) selectedTask() *string {
	if f.taskCursor < 0 || f.taskCursor >= len(f.tasks) {
		return nil
	}
	id := f.tasks[f.taskCursor].ID
	return &id
}

func (f focusModel) start() (focusModel, tea.Cmd) {
	f.phase = focusStarting
	taskID, kind := f.selectedTask(), f.kind
	return f, func() tea.Msg {
		ctx := context.Background()
		id, err := f.store.StartFocusSession(ctx, taskID, kind)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return focusStartedMsg{id: id}
	}
}

// stop ends the session early. Nothing is announced.
func (f focusModel) stop() (focusModel, tea.Cmd) {
	id := f.sessionID
	f.phase = focusIdle
	f.clock.stop()
	if id == "" {
		return f, status("Focus cancelled")
	}
	return f, f.end(id, false)
}

func (f focusModel) tick() (focusModel, tea.Cmd) {
	now := f.now()
	if !f.clock.finished(now) {
		return f, nil
	}
	switch f.phase {
	case focusWork:
		f.completed++
		id := f.sessionID
		if f.kind == model.SessionPomodoro && f.breakDuration() > 0 {
			f.phase = focusBreak
			f.clock.start(f.breakDuration(), now)
		} else {
			f.phase = focusDone
			f.clock.stop()
		}
		return f, f.end(id, true)
	case focusBreak:
		f.phase = focusIdle
		f.clock.stop()
		return f, status("Break over")
	}
	return f, nil
}

// end closes session id. A finished countdown is announced when
// notifications are enabled.
func (f focusModel) end(id string, finished bool) tea.Cmd {
	announce := finished && f.settings.NotificationsEnabled
	kind := f.kind
	minutes := int(f.workDuration() / time.Minute)
	return func() tea.Msg {
		ctx := context.Background()
		if err := f.store.EndFocusSession(ctx, id); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if announce {
			label := "pomodoro"
			if kind == model.SessionDeepWork {
				label = "deep work"
			}
			notify.Send(f.notifier, f.log, "Focus Session Complete!",
				fmt.Sprintf("You finished a %d minute %s session.", minutes, label))
		}
		return focusEndedMsg{id: id, finished: finished}
	}
}

func (f focusModel) view() string {
	w := f.width - 4
	now := f.now()

	kindLabel := "Pomodoro"
	if f.kind == model.SessionDeepWork {
		kindLabel = "Deep Work"
	}
	title := titleStyle.Render("Focus · " + kindLabel)

	var display, label, hint string
	switch f.phase {
	case focusIdle, focusStarting:
		display = timerStyle.Width(w - 6).Render(formatCountdown(f.workDuration()))
		label = mutedStyle.Render(phaseNames[f.phase])
		hint = mutedStyle.Render("s: start  m: pomodoro/deep work  ↑/↓: task")
	case focusWork:
		style := accentStyle.Bold(true)
		if f.clock.paused() {
			style = warningStyle.Bold(true)
		}
		display = style.Width(w - 6).Align(lipgloss.Center).Render(formatCountdown(f.clock.remaining(now)))
		label = style.Render(phaseNames[f.phase])
		if f.clock.paused() {
			label = style.Render("PAUSED")
		}
		hint = mutedStyle.Render("p: pause/resume  x: stop")
	case focusBreak:
		display = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatCountdown(f.clock.remaining(now)))
		label = successStyle.Bold(true).Render(phaseNames[f.phase])
		hint = mutedStyle.Render("space: skip break  x: stop")
	case focusDone:
		display = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render("Done!")
		label = successStyle.Bold(true).Render(phaseNames[f.phase])
		hint = mutedStyle.Render("s: start another")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title, "", display, label, "", f.renderProgress(), "", f.renderTasks(), "", hint,
	)
	return panelStyle.Width(w).Render(content)
}

func (f focusModel) renderProgress() string {
	today := model.FormatDate(f.now())
	minutes := f.store.FocusMinutesByDay(f.now(), f.now())[today]
	return mutedStyle.Render(fmt.Sprintf("%d this sitting · %s focused today", f.completed, formatMinutes(minutes)))
}

func (f focusModel) renderTasks() string {
	if f.active() {
		if f.taskCursor >= 0 && f.taskCursor < len(f.tasks) {
			return highlightStyle.Render("Working on: " + f.tasks[f.taskCursor].Title)
		}
		return ""
	}
	rows := []string{f.taskRow(-1, "No task")}
	for i, t := range f.tasks {
		if i >= 5 {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", len(f.tasks)-i)))
			break
		}
		rows = append(rows, f.taskRow(i, t.Title))
	}
	return strings.Join(rows, "\n")
}

func (f focusModel) taskRow(i int, title string) string {
	if i == f.taskCursor {
		return selectedItemStyle.Render("> " + title)
	}
	return normalItemStyle.Render("  " + title)
}

func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

func (f *focusModel) setSettings(settings prefs.Settings, n notify.Notifier) {
	f.settings = settings
	f.notifier = n
}
