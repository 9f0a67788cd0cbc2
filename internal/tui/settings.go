package tui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planner/internal/model"
	"github.com/sadopc/planner/internal/prefs"
)

// SettingsStore loads and saves the local settings.
type SettingsStore interface {
	LoadSettings() (prefs.Settings, error)
	SaveSettings(prefs.Settings) error
}

type settingsModel struct {
	store   SettingsStore
	account string
	width   int
	height  int

	settings prefs.Settings
	form     formState

	// Form values as pointers (survive value copies)
	defaultView   *model.View
	startOfWeek   *string
	timeFormat    *string
	pomodoroWork  *string
	pomodoroBreak *string
	deepWork      *string
	notifications *bool
	sound         *bool
}

func newSettingsModel(store SettingsStore, settings prefs.Settings, account string) settingsModel {
	dv := settings.DefaultView
	sw, tf, pw, pb, dw := "", "", "", "", ""
	n, snd := false, false
	return settingsModel{
		store:         store,
		account:       account,
		settings:      settings,
		defaultView:   &dv,
		startOfWeek:   &sw,
		timeFormat:    &tf,
		pomodoroWork:  &pw,
		pomodoroBreak: &pb,
		deepWork:      &dw,
		notifications: &n,
		sound:         &snd,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.form.active {
		done, cmd := s.form.update(msg)
		if done {
			return s.save()
		}
		return s, cmd
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(km, keys.Enter) || key.Matches(km, keys.Edit) {
			return s, s.showForm()
		}
	}
	return s, nil
}

func (s *settingsModel) showForm() tea.Cmd {
	*s.defaultView = s.settings.DefaultView
	*s.startOfWeek = s.settings.StartOfWeek
	*s.timeFormat = s.settings.TimeFormat
	*s.pomodoroWork = strconv.Itoa(s.settings.PomodoroWork)
	*s.pomodoroBreak = strconv.Itoa(s.settings.PomodoroBreak)
	*s.deepWork = strconv.Itoa(s.settings.DeepWorkDuration)
	*s.notifications = s.settings.NotificationsEnabled
	*s.sound = s.settings.SoundEnabled

	return s.form.open("settings", huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.View]().Title("Start in").
				Options(
					huh.NewOption("Day", model.ViewDay),
					huh.NewOption("Week", model.ViewWeek),
					huh.NewOption("Month", model.ViewMonth),
					huh.NewOption("Board", model.ViewKanban),
					huh.NewOption("Inbox", model.ViewInbox),
					huh.NewOption("Habits", model.ViewHabits),
					huh.NewOption("Focus", model.ViewFocus),
				).Value(s.defaultView),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Sunday", "sunday"),
					huh.NewOption("Monday", "monday"),
				).Value(s.startOfWeek),
			huh.NewSelect[string]().Title("Time format").
				Options(
					huh.NewOption("24 hour", "24h"),
					huh.NewOption("12 hour", "12h"),
				).Value(s.timeFormat),
		).Title("General"),
		huh.NewGroup(
			huh.NewInput().Title("Pomodoro work (min)").Value(s.pomodoroWork).Validate(positiveMinutes),
			huh.NewInput().Title("Pomodoro break (min)").Value(s.pomodoroBreak).Validate(positiveMinutes),
			huh.NewInput().Title("Deep work (min)").Value(s.deepWork).Validate(positiveMinutes),
		).Title("Focus"),
		huh.NewGroup(
			huh.NewConfirm().Title("Desktop notifications").Value(s.notifications),
			huh.NewConfirm().Title("Sound").Value(s.sound),
		).Title("Notifications"),
	))
}

func positiveMinutes(v string) error {
	if n, err := strconv.Atoi(v); err != nil || n <= 0 {
		return errors.New("whole minutes above zero")
	}
	return nil
}

func (s settingsModel) save() (settingsModel, tea.Cmd) {
	next := s.settings
	next.DefaultView = *s.defaultView
	next.StartOfWeek = *s.startOfWeek
	next.TimeFormat = *s.timeFormat
	next.PomodoroWork, _ = strconv.Atoi(*s.pomodoroWork)
	next.PomodoroBreak, _ = strconv.Atoi(*s.pomodoroBreak)
	next.DeepWorkDuration, _ = strconv.Atoi(*s.deepWork)
	next.NotificationsEnabled = *s.notifications
	next.SoundEnabled = *s.sound

	store := s.store
	s.settings = next
	return s, func() tea.Msg {
		if store != nil {
			if err := store.SaveSettings(next); err != nil {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
		return settingsSavedMsg{settings: next}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.form.active {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.view()),
		)
	}

	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	entries := []struct{ label, value string }{
		{"Account", s.account},
		{"Start in", string(s.settings.DefaultView)},
		{"Week starts on", s.settings.StartOfWeek},
		{"Time format", s.settings.TimeFormat},
		{"Pomodoro work", fmt.Sprintf("%d min", s.settings.PomodoroWork)},
		{"Pomodoro break", fmt.Sprintf("%d min", s.settings.PomodoroBreak)},
		{"Deep work", fmt.Sprintf("%d min", s.settings.DeepWorkDuration)},
		{"Notifications", onOff(s.settings.NotificationsEnabled)},
		{"Sound", onOff(s.settings.SoundEnabled)},
	}

	rows := []string{title, ""}
	for _, e := range entries {
		label := lipgloss.NewStyle().Width(24).Render(e.label)
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(e.value)))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
