package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planner/internal/model"
	"github.com/sadopc/planner/internal/planner"
)

// habitDays is how many days the habit grid shows, ending today.
const habitDays = 7

var habitIcons = []string{"✦", "📚", "🏃", "💧", "🧘", "✍", "🎸", "🥗"}

type habitsModel struct {
	store  *planner.Store
	now    func() time.Time
	width  int
	height int

	habits []model.Habit
	cursor int
	// day is the selected grid column, 0 = today, counting back.
	day int

	form       formState
	fTitle     *string
	fIcon      *string
	fColor     *string
	fFrequency *model.Frequency
}

func newHabitsModel(s *planner.Store, now func() time.Time) habitsModel {
	title, icon, color := "", habitIcons[0], projectColors[1]
	freq := model.FrequencyDaily
	h := habitsModel{
		store:      s,
		now:        now,
		fTitle:     &title,
		fIcon:      &icon,
		fColor:     &color,
		fFrequency: &freq,
	}
	h.refresh()
	return h
}

func (h *habitsModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

func (h *habitsModel) refresh() {
	h.habits = h.store.Habits()
	if h.cursor >= len(h.habits) {
		h.cursor = max(0, len(h.habits)-1)
	}
}

// dates returns the grid's days, oldest first.
func (h habitsModel) dates() []string {
	today := h.now()
	out := make([]string, habitDays)
	for i := 0; i < habitDays; i++ {
		out[habitDays-1-i] = model.FormatDate(today.AddDate(0, 0, -i))
	}
	return out
}

func (h habitsModel) update(msg tea.Msg) (habitsModel, tea.Cmd) {
	if h.form.active {
		done, cmd := h.form.update(msg)
		if done {
			return h, h.submit()
		}
		return h, cmd
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return h, nil
	}
	switch {
	case key.Matches(km, keys.Up):
		if h.cursor > 0 {
			h.cursor--
		}
	case key.Matches(km, keys.Down):
		if h.cursor < len(h.habits)-1 {
			h.cursor++
		}
	case key.Matches(km, keys.Left):
		if h.day < habitDays-1 {
			h.day++
		}
	case key.Matches(km, keys.Right):
		if h.day > 0 {
			h.day--
		}
	case key.Matches(km, keys.Today):
		h.day = 0
	case key.Matches(km, keys.Toggle), key.Matches(km, keys.Enter):
		return h, h.toggle()
	case key.Matches(km, keys.Delete):
		if len(h.habits) > 0 {
			id := h.habits[h.cursor].ID
			return h, act("Habit deleted", func(ctx context.Context) error {
				return h.store.DeleteHabit(ctx, id)
			})
		}
	case key.Matches(km, keys.New):
		return h, h.showForm()
	}
	return h, nil
}

func (h habitsModel) toggle() tea.Cmd {
	if len(h.habits) == 0 {
		return nil
	}
	habit := h.habits[h.cursor]
	date := model.FormatDate(h.now().AddDate(0, 0, -h.day))
	return func() tea.Msg {
		ctx := context.Background()
		streak, err := h.store.ToggleHabitForDate(ctx, habit.ID, date)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return changedMsg{status: fmt.Sprintf("%s: %d day streak", habit.Title, streak)}
	}
}

func (h *habitsModel) showForm() tea.Cmd {
	*h.fTitle, *h.fIcon, *h.fColor = "", habitIcons[0], projectColors[1]
	*h.fFrequency = model.FrequencyDaily

	icons := make([]huh.Option[string], len(habitIcons))
	for i, ic := range habitIcons {
		icons[i] = huh.NewOption(ic, ic)
	}
	colors := make([]huh.Option[string], len(projectColors))
	for i, c := range projectColors {
		colors[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}
	return h.form.open("habit", huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Habit").Value(h.fTitle).Validate(required),
			huh.NewSelect[string]().Title("Icon").Options(icons...).Value(h.fIcon),
			huh.NewSelect[string]().Title("Color").Options(colors...).Value(h.fColor),
			huh.NewSelect[model.Frequency]().Title("Frequency").
				Options(options([]model.Frequency{model.FrequencyDaily, model.FrequencyWeekly})...).
				Value(h.fFrequency),
		),
	))
}

func (h habitsModel) submit() tea.Cmd {
	title := strings.TrimSpace(*h.fTitle)
	if title == "" {
		return nil
	}
	habit := model.Habit{Title: title, Icon: *h.fIcon, Color: *h.fColor, Frequency: *h.fFrequency}
	return act("Habit added", func(ctx context.Context) error {
		_, err := h.store.AddHabit(ctx, habit)
		return err
	})
}

func (h habitsModel) view() string {
	w := h.width - 4
	if h.form.active {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Habit"), "", h.form.view()))
	}

	rows := []string{titleStyle.Render("Habits"), ""}
	if len(h.habits) == 0 {
		rows = append(rows, mutedStyle.Render("No habits yet. Press n to start one."))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	dates := h.dates()
	header := fmt.Sprintf("  %-24s", "")
	for i, d := range dates {
		label := d[8:]
		if t, err := model.ParseDate(d); err == nil {
			label = t.Format("Mon")[:2]
		}
		style := mutedStyle
		if habitDays-1-i == h.day {
			style = highlightStyle
		}
		header += style.Render(fmt.Sprintf(" %-3s", label))
	}
	rows = append(rows, header+mutedStyle.Render("  streak"))

	today := h.now()
	for i, habit := range h.habits {
		cursor, style := "  ", normalItemStyle
		if i == h.cursor {
			cursor, style = "> ", selectedItemStyle
		}
		line := style.Render(cursor + fmt.Sprintf("%-24s", truncate(habit.Icon+" "+habit.Title, 24)))
		color := lipgloss.NewStyle().Foreground(lipgloss.Color(habit.Color))
		for _, d := range dates {
			if habit.Done(d) {
				line += color.Render("  ● ")
			} else {
				line += mutedStyle.Render("  · ")
			}
		}
		streak := habit.Streak(today)
		streakText := mutedStyle.Render(fmt.Sprintf("  %d", streak))
		if streak > 0 {
			streakText = warningStyle.Render(fmt.Sprintf("  🔥 %d", streak))
		}
		rows = append(rows, line+streakText)
	}

	rows = append(rows, "", mutedStyle.Render("  ←/→: day  space: check  n: new  d: delete"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
