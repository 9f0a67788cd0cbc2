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

type dayItemKind int

const (
	itemTask dayItemKind = iota
	itemGoal
	itemBlock
)

type dayItem struct {
	kind dayItemKind
	id   string
}

// dayModel shows what is planned for the selected date: tasks due, the daily
// goals and the schedule of time blocks.
type dayModel struct {
	store  *planner.Store
	now    func() time.Time
	width  int
	height int

	date     string
	tasks    []model.Task
	goals    []model.DailyGoal
	blocks   []model.TimeBlock
	projects map[string]model.Project
	cursor   int

	form      formState
	fTitle    *string
	fPriority *model.Priority
	fCategory *model.Category
	fEstimate *string
	fStart    *string
	fEnd      *string
}

func newDayModel(s *planner.Store, now func() time.Time) dayModel {
	title, start, end, estimate := "", "09:00", "10:00", ""
	priority, category := model.PriorityMedium, model.CategoryWork
	d := dayModel{
		store:     s,
		now:       now,
		fTitle:    &title,
		fPriority: &priority,
		fCategory: &category,
		fEstimate: &estimate,
		fStart:    &start,
		fEnd:      &end,
	}
	d.refresh()
	return d
}

func (d *dayModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d *dayModel) refresh() {
	d.date = d.store.UI().SelectedDate
	d.tasks = d.store.TasksForDate(d.date)
	d.goals = d.store.GoalsForDate(d.date)
	d.blocks = d.store.BlocksForDate(d.date)
	d.projects = d.store.ProjectIndex()
	if n := len(d.items()); d.cursor >= n {
		d.cursor = max(0, n-1)
	}
}

// items lists the selectable rows in display order.
func (d dayModel) items() []dayItem {
	out := make([]dayItem, 0, len(d.tasks)+len(d.goals)+len(d.blocks))
	for _, t := range d.tasks {
		out = append(out, dayItem{itemTask, t.ID})
	}
	for _, g := range d.goals {
		out = append(out, dayItem{itemGoal, g.ID})
	}
	for _, b := range d.blocks {
		out = append(out, dayItem{itemBlock, b.ID})
	}
	return out
}

func (d dayModel) selected() (dayItem, bool) {
	items := d.items()
	if d.cursor < 0 || d.cursor >= len(items) {
		return dayItem{}, false
	}
	return items[d.cursor], true
}

func (d dayModel) update(msg tea.Msg) (dayModel, tea.Cmd) {
	if d.form.active {
		done, cmd := d.form.update(msg)
		if done {
			return d, d.submit()
		}
		return d, cmd
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}
	switch {
	case key.Matches(km, keys.Left):
		d.store.SetSelectedDate(shiftDate(d.date, -1))
		d.refresh()
	case key.Matches(km, keys.Right):
		d.store.SetSelectedDate(shiftDate(d.date, 1))
		d.refresh()
	case key.Matches(km, keys.Today):
		d.store.SetSelectedDate(model.FormatDate(d.now()))
		d.refresh()
	case key.Matches(km, keys.Up):
		if d.cursor > 0 {
			d.cursor--
		}
	case key.Matches(km, keys.Down):
		if d.cursor < len(d.items())-1 {
			d.cursor++
		}
	case key.Matches(km, keys.Toggle), key.Matches(km, keys.Enter):
		return d, d.toggleSelected()
	case key.Matches(km, keys.Delete):
		return d, d.deleteSelected()
	case key.Matches(km, keys.New):
		return d, d.showTaskForm()
	case key.Matches(km, keys.Goal):
		if len(d.goals) >= planner.MaxGoalsPerDay {
			return d, status(fmt.Sprintf("Only %d goals per day", planner.MaxGoalsPerDay))
		}
		return d, d.showGoalForm()
	case key.Matches(km, keys.Block):
		return d, d.showBlockForm()
	}
	return d, nil
}

func (d dayModel) toggleSelected() tea.Cmd {
	item, ok := d.selected()
	if !ok {
		return nil
	}
	switch item.kind {
	case itemTask:
		return act("Task updated", func(ctx context.Context) error {
			return d.store.ToggleTask(ctx, item.id)
		})
	case itemGoal:
		return act("Goal updated", func(ctx context.Context) error {
			return d.store.ToggleDailyGoal(ctx, item.id)
		})
	}
	return nil
}

func (d dayModel) deleteSelected() tea.Cmd {
	item, ok := d.selected()
	if !ok {
		return nil
	}
	switch item.kind {
	case itemTask:
		return act("Task deleted", func(ctx context.Context) error {
			return d.store.DeleteTask(ctx, item.id)
		})
	case itemGoal:
		return act("Goal deleted", func(ctx context.Context) error {
			return d.store.DeleteDailyGoal(ctx, item.id)
		})
	default:
		return act("Time block deleted", func(ctx context.Context) error {
			return d.store.DeleteTimeBlock(ctx, item.id)
		})
	}
}

func (d *dayModel) showTaskForm() tea.Cmd {
	*d.fTitle, *d.fEstimate = "", ""
	*d.fPriority, *d.fCategory = model.PriorityMedium, model.CategoryWork
	return d.form.open("task", huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(d.fTitle).Validate(required),
			huh.NewSelect[model.Priority]().Title("Priority").Options(options(model.Priorities)...).Value(d.fPriority),
			huh.NewSelect[model.Category]().Title("Category").Options(options(model.TaskCategories)...).Value(d.fCategory),
			huh.NewInput().Title("Estimate (min)").Value(d.fEstimate).Validate(validMinutes),
		),
	))
}

func (d *dayModel) showGoalForm() tea.Cmd {
	*d.fTitle = ""
	return d.form.open("goal", huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Goal for " + d.date).Value(d.fTitle).Validate(required),
		),
	))
}

func (d *dayModel) showBlockForm() tea.Cmd {
	*d.fTitle, *d.fStart, *d.fEnd = "", "09:00", "10:00"
	*d.fCategory = model.CategoryFocus
	categories := append(append([]model.Category{}, model.TaskCategories...), model.CategoryFocus, model.CategoryBreak)
	return d.form.open("block", huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Time block").Value(d.fTitle).Validate(required),
			huh.NewInput().Title("Start").Value(d.fStart).Validate(validClock),
			huh.NewInput().Title("End").Value(d.fEnd).Validate(validClock),
			huh.NewSelect[model.Category]().Title("Category").Options(options(categories)...).Value(d.fCategory),
		),
	))
}

// submit saves whatever the completed form describes.
func (d dayModel) submit() tea.Cmd {
	title := strings.TrimSpace(*d.fTitle)
	if title == "" {
		return nil
	}
	date := d.date
	switch d.form.kind {
	case "task":
		t := model.Task{
			Title:            title,
			Priority:         *d.fPriority,
			Category:         *d.fCategory,
			DueDate:          &date,
			EstimatedMinutes: optionalMinutes(*d.fEstimate),
		}
		return act("Task added", func(ctx context.Context) error {
			_, err := d.store.AddTask(ctx, t)
			return err
		})
	case "goal":
		return act("Goal added", func(ctx context.Context) error {
			_, err := d.store.AddDailyGoal(ctx, title, date)
			return err
		})
	case "block":
		start, end := *d.fStart, *d.fEnd
		if end <= start {
			return status("A time block must end after it starts")
		}
		b := model.TimeBlock{Title: title, StartTime: start, EndTime: end, Date: date, Category: *d.fCategory}
		return act("Time block added", func(ctx context.Context) error {
			_, err := d.store.AddTimeBlock(ctx, b)
			return err
		})
	}
	return nil
}

func (d dayModel) view() string {
	w := d.width - 4
	if d.form.active {
		title := map[string]string{"task": "New Task", "goal": "New Goal", "block": "New Time Block"}[d.form.kind]
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", d.form.view()))
	}
	if d.width < 20 {
		return "Terminal too small"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderHeader(),
		d.renderTasks(w),
		d.renderGoals(w),
		d.renderBlocks(w),
		mutedStyle.Render("  ←/→: day  t: today  space: toggle  n: task  g: goal  b: block  d: delete"),
	)
}

func (d dayModel) renderHeader() string {
	label := d.date
	if t, err := model.ParseDate(d.date); err == nil {
		label = t.Format("Monday, January 2 2006")
	}
	header := titleStyle.Render(label)
	if d.date == model.FormatDate(d.now()) {
		header += "  " + successStyle.Render("Today")
	}
	if ui := d.store.UI(); ui.ActiveProjectID != nil {
		if p, ok := d.projects[*ui.ActiveProjectID]; ok {
			header += "  " + dot(deref(p.Color)) + " " + highlightStyle.Render(p.Title)
		}
	}
	return " " + header
}

func (d dayModel) row(i int, text string) string {
	cursor, style := "  ", normalItemStyle
	if i == d.cursor {
		cursor, style = "> ", selectedItemStyle
	}
	return style.Render(cursor) + text
}

func (d dayModel) renderTasks(w int) string {
	rows := []string{titleStyle.Render(fmt.Sprintf("Tasks (%d)", len(d.tasks)))}
	if len(d.tasks) == 0 {
		rows = append(rows, mutedStyle.Render("  Nothing due. Press n to add a task."))
	}
	for i, t := range d.tasks {
		check := "[ ]"
		title := normalItemStyle.Render(t.Title)
		if t.Completed {
			check = successStyle.Render("[✓]")
			title = doneStyle.Render(t.Title)
		}
		extra := ""
		if t.DueTime != nil {
			extra += mutedStyle.Render(" " + *t.DueTime)
		}
		if t.EstimatedMinutes != nil {
			extra += mutedStyle.Render(" ~" + formatMinutes(*t.EstimatedMinutes))
		}
		if t.ProjectID != nil {
			if p, ok := d.projects[*t.ProjectID]; ok {
				extra += " " + dot(deref(p.Color))
			}
		}
		rows = append(rows, d.row(i, fmt.Sprintf("%s %s %s%s", priorityBadge(t.Priority), check, title, extra)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dayModel) renderGoals(w int) string {
	rows := []string{titleStyle.Render(fmt.Sprintf("Goals %d/%d", len(d.goals), planner.MaxGoalsPerDay))}
	if len(d.goals) == 0 {
		rows = append(rows, mutedStyle.Render("  No goals yet. Press g to set one."))
	}
	offset := len(d.tasks)
	for i, g := range d.goals {
		text := fmt.Sprintf("%d. %s", i+1, g.Title)
		if g.Completed {
			text = successStyle.Render("✓ ") + doneStyle.Render(text)
		}
		rows = append(rows, d.row(offset+i, text))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dayModel) renderBlocks(w int) string {
	rows := []string{titleStyle.Render("Schedule")}
	if len(d.blocks) == 0 {
		rows = append(rows, mutedStyle.Render("  No time blocks. Press b to add one."))
	}
	offset := len(d.tasks) + len(d.goals)
	for i, b := range d.blocks {
		span := highlightStyle.Render(b.StartTime + "–" + b.EndTime)
		label := categoryStyle(b.Category).Render(string(b.Category))
		rows = append(rows, d.row(offset+i, fmt.Sprintf("%s  %s %s", span, b.Title, label)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
