package tui

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planner/internal/export"
	"github.com/sadopc/planner/internal/model"
	"github.com/sadopc/planner/internal/notify"
	"github.com/sadopc/planner/internal/planner"
	"github.com/sadopc/planner/internal/prefs"
)

// Options configures NewApp. Zero values fall back to defaults.
type Options struct {
	Settings SettingsStore
	// Notifier overrides the desktop notifier built from the settings.
	Notifier  notify.Notifier
	Logger    *slog.Logger
	Now       func() time.Time
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	store  *planner.Store
	opts   Options
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	day      dayModel
	week     weekModel
	month    monthModel
	board    boardModel
	inbox    inboxModel
	habits   habitsModel
	focus    focusModel
	projects projectsModel
	reports  reportsModel
	settings settingsModel

	help   help.Model
	status string
}

func NewApp(s *planner.Store, opts Options) App {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	settings := prefs.DefaultSettings()
	if opts.Settings != nil {
		loaded, err := opts.Settings.LoadSettings()
		if err != nil {
			opts.Logger.Warn("load settings", "err", err)
		}
		settings = loaded
	}

	account := ""
	if u := s.User(); u != nil {
		account = u.Email
	}

	h := help.New()
	h.ShowAll = false

	a := App{
		store:    s,
		opts:     opts,
		day:      newDayModel(s, opts.Now),
		week:     newWeekModel(s, opts.Now, settings.StartOfWeek),
		month:    newMonthModel(s, opts.Now, settings.StartOfWeek),
		board:    newBoardModel(s),
		inbox:    newInboxModel(s),
		habits:   newHabitsModel(s, opts.Now),
		focus:    newFocusModel(s, settings, notifierFor(opts, settings), opts.Logger, opts.Now),
		projects: newProjectsModel(s),
		reports:  newReportsModel(s, opts.Now, settings.StartOfWeek),
		settings: newSettingsModel(opts.Settings, settings, account),
		help:     h,
	}

	// A remembered view other than the store's default day view wins over
	// the configured start view.
	a.activeView, _ = viewFor(settings.DefaultView)
	if saved := s.UI().ActiveView; saved != model.ViewDay {
		if v, ok := viewFor(saved); ok {
			a.activeView = v
		}
	}
	// An open session takes the user straight to the timer.
	if a.focus.active() {
		a.activeView = viewFocus
	}
	return a
}

func notifierFor(opts Options, settings prefs.Settings) notify.Notifier {
	if opts.Notifier != nil {
		return opts.Notifier
	}
	return notify.New(settings.NotificationsEnabled, settings.SoundEnabled)
}

func (a App) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.day.setSize(a.width, contentHeight)
		a.week.setSize(a.width, contentHeight)
		a.month.setSize(a.width, contentHeight)
		a.board.setSize(a.width, contentHeight)
		a.inbox.setSize(a.width, contentHeight)
		a.habits.setSize(a.width, contentHeight)
		a.focus.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A view capturing input (a form) sees every key.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewCount), nil
		}
		tabs := []key.Binding{keys.Tab1, keys.Tab2, keys.Tab3, keys.Tab4, keys.Tab5,
			keys.Tab6, keys.Tab7, keys.Tab8, keys.Tab9, keys.Tab0}
		for i, tab := range tabs {
			if key.Matches(msg, tab) {
				return a.switchTo(viewState(i)), nil
			}
		}

	case tickMsg:
		var cmd tea.Cmd
		a.focus, cmd = a.focus.update(msg)
		return a, tea.Batch(tickCmd(), cmd)

	case changedMsg:
		a.refreshAll()
		if msg.status != "" {
			a.status = msg.status
		}
		return a, nil

	case statusMsg:
		a.status = msg.text
		// The focus view also needs to hear about a failed start.
		var cmd tea.Cmd
		a.focus, cmd = a.focus.update(msg)
		return a, cmd

	case focusStartedMsg:
		a.refreshAll()
		var cmd tea.Cmd
		a.focus, cmd = a.focus.update(msg)
		a.status = "Focus session started"
		return a, cmd

	case focusEndedMsg:
		a.refreshAll()
		var cmd tea.Cmd
		a.focus, cmd = a.focus.update(msg)
		a.status = "Focus session stopped"
		if msg.finished {
			a.status = "Focus session complete"
		}
		return a, cmd

	case openDayMsg:
		return a.switchTo(viewDay), nil

	case settingsSavedMsg:
		a.focus.setSettings(msg.settings, notifierFor(a.opts, msg.settings))
		a.week.setStartOfWeek(msg.settings.StartOfWeek)
		a.month.setStartOfWeek(msg.settings.StartOfWeek)
		a.reports.setStartOfWeek(msg.settings.StartOfWeek)
		a.refreshAll()
		a.status = "Settings saved"
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		return a, nil
	}

	return a.updateActiveView(msg)
}

// switchTo changes tabs. Views the store knows about are remembered for the
// next run.
func (a App) switchTo(v viewState) App {
	a.activeView = v
	if saved, ok := persisted[v]; ok {
		a.store.SetActiveView(saved)
	}
	a.refreshAll()
	return a
}

// refreshAll re-reads the store into every view.
func (a *App) refreshAll() {
	a.day.refresh()
	a.week.refresh()
	a.month.refresh()
	a.board.refresh()
	a.inbox.refresh()
	a.habits.refresh()
	a.focus.refresh()
	a.projects.refresh()
	a.reports.refresh()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDay:
		a.day, cmd = a.day.update(msg)
	case viewWeek:
		a.week, cmd = a.week.update(msg)
	case viewMonth:
		a.month, cmd = a.month.update(msg)
	case viewBoard:
		a.board, cmd = a.board.update(msg)
	case viewInbox:
		a.inbox, cmd = a.inbox.update(msg)
	case viewHabits:
		a.habits, cmd = a.habits.update(msg)
	case viewFocus:
		a.focus, cmd = a.focus.update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDay:
		return a.day.form.active
	case viewBoard:
		return a.board.form.active
	case viewInbox:
		return a.inbox.form.active
	case viewHabits:
		return a.habits.form.active
	case viewProjects:
		return a.projects.form.active
	case viewSettings:
		return a.settings.form.active
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDay:
		content = a.day.view()
	case viewWeek:
		content = a.week.view()
	case viewMonth:
		content = a.month.view()
	case viewBoard:
		content = a.board.view()
	case viewInbox:
		content = a.inbox.view()
	case viewHabits:
		content = a.habits.view()
	case viewFocus:
		content = a.focus.view()
	case viewProjects:
		content = a.projects.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", (i+1)%10, name)
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	name := "planner"
	if id := a.store.UI().ActiveProjectID; id != nil {
		if p, ok := a.store.Project(*id); ok {
			name += " · " + p.Title
		}
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render(name)
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Focus indicator, visible from every tab.
	timerInfo := ""
	if a.focus.phase == focusWork {
		left := formatCountdown(a.focus.clock.remaining(a.opts.Now()))
		timerInfo = successStyle.Render(" ● " + left)
		if a.focus.clock.paused() {
			timerInfo = warningStyle.Render(" ⏸ " + left)
		}
	} else if a.focus.phase == focusBreak {
		timerInfo = mutedStyle.Render(" ☕ " + formatCountdown(a.focus.clock.remaining(a.opts.Now())))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

type exportChoice struct {
	label string
	ext   string
	what  string
}

var exportChoices = []exportChoice{
	{"Tasks (CSV)", "csv", "tasks"},
	{"Focus sessions (CSV)", "csv", "sessions"},
	{"Everything (JSON)", "json", "all"},
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export"), ""}
	for i, c := range exportChoices {
		cursor, style := "  ", normalItemStyle
		if i == a.exportCursor {
			cursor, style = "> ", selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+c.label))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportChoices)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportChoices[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(c exportChoice) tea.Cmd {
	s, dir, now := a.store, a.opts.ExportDir, a.opts.Now()
	return func() tea.Msg {
		path := filepath.Join(dir, fmt.Sprintf("planner-%s-%s.%s", c.what, now.Format("2006-01-02"), c.ext))

		tasks := s.Tasks()
		var err error
		switch c.what {
		case "tasks":
			err = export.TasksToCSV(tasks, s.ProjectIndex(), path)
		case "sessions":
			err = export.SessionsToCSV(s.FocusSessions(), taskIndex(tasks), path)
		default:
			err = export.ToJSON(tasks, s.FocusSessions(), s.ProjectIndex(), path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

func taskIndex(tasks []model.Task) map[string]model.Task {
	out := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		out[t.ID] = t
	}
	return out
}
