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

type projectsModel struct {
	store  *planner.Store
	width  int
	height int

	projects []model.Project
	counts   map[string]int // open tasks per project
	active   *string
	cursor   int

	form   formState
	editID string

	// Form field pointers (survive value copies)
	fTitle       *string
	fType        *model.ProjectType
	fColor       *string
	fDescription *string
	fStart       *string
	fEnd         *string
}

func newProjectsModel(s *planner.Store) projectsModel {
	title, color, desc, start, end := "", projectColors[0], "", "", ""
	typ := model.ProjectWork
	p := projectsModel{
		store:        s,
		fTitle:       &title,
		fType:        &typ,
		fColor:       &color,
		fDescription: &desc,
		fStart:       &start,
		fEnd:         &end,
	}
	p.refresh()
	return p
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p *projectsModel) refresh() {
	p.projects = p.store.Projects()
	p.active = p.store.UI().ActiveProjectID
	p.counts = make(map[string]int)
	for _, t := range p.store.Tasks() {
		if t.ProjectID != nil && !t.Completed {
			p.counts[*t.ProjectID]++
		}
	}
	if p.cursor >= len(p.projects) {
		p.cursor = max(0, len(p.projects)-1)
	}
}

func (p projectsModel) selected() (model.Project, bool) {
	if p.cursor < 0 || p.cursor >= len(p.projects) {
		return model.Project{}, false
	}
	return p.projects[p.cursor], true
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.form.active {
		done, cmd := p.form.update(msg)
		if done {
			return p, p.submit()
		}
		return p, cmd
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch {
	case key.Matches(km, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(km, keys.Down):
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case key.Matches(km, keys.Enter):
		if proj, ok := p.selected(); ok {
			p.store.SetActiveProject(&proj.ID)
			p.refresh()
			return p, status("Showing " + proj.Title)
		}
	case key.Matches(km, keys.ShowAll):
		p.store.SetActiveProject(nil)
		p.refresh()
		return p, status("Showing all projects")
	case key.Matches(km, keys.New):
		return p, p.showForm(model.Project{Type: model.ProjectWork, Color: &projectColors[0]})
	case key.Matches(km, keys.Edit):
		if proj, ok := p.selected(); ok {
			return p, p.showForm(proj)
		}
	case key.Matches(km, keys.Delete):
		if proj, ok := p.selected(); ok {
			return p, act("Project deleted", func(ctx context.Context) error {
				return p.store.DeleteProject(ctx, proj.ID)
			})
		}
	}
	return p, nil
}

// showForm opens the project form prefilled from proj. A proj with an id is
// edited in place.
func (p *projectsModel) showForm(proj model.Project) tea.Cmd {
	p.editID = proj.ID
	*p.fTitle = proj.Title
	*p.fType = proj.Type
	*p.fColor = deref(proj.Color)
	*p.fDescription = deref(proj.Description)
	*p.fStart = deref(proj.StartDate)
	*p.fEnd = deref(proj.EndDate)

	colorOptions := make([]huh.Option[string], len(projectColors))
	for i, c := range projectColors {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}

	kind := "project"
	if proj.ID != "" {
		kind = "edit_project"
	}
	return p.form.open(kind, huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.fTitle).Validate(required),
			huh.NewSelect[model.ProjectType]().Title("Type").Options(options(model.ProjectTypes)...).Value(p.fType),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(p.fColor),
		),
		huh.NewGroup(
			huh.NewText().Title("Description (markdown)").Value(p.fDescription),
			huh.NewInput().Title("Start date").Value(p.fStart).Validate(validDate),
			huh.NewInput().Title("End date").Value(p.fEnd).Validate(validDate),
		),
	))
}

func (p projectsModel) submit() tea.Cmd {
	title := strings.TrimSpace(*p.fTitle)
	if title == "" {
		return nil
	}
	if p.editID != "" {
		id := p.editID
		u := model.ProjectUpdate{
			Title:       &title,
			Type:        model.Ptr(*p.fType),
			Color:       model.Ptr(*p.fColor),
			Description: model.Ptr(strings.TrimSpace(*p.fDescription)),
			StartDate:   model.Ptr(*p.fStart),
			EndDate:     model.Ptr(*p.fEnd),
		}
		return act("Project updated", func(ctx context.Context) error {
			return p.store.UpdateProject(ctx, id, u)
		})
	}
	proj := model.Project{
		Title:       title,
		Type:        *p.fType,
		Color:       optionalText(*p.fColor),
		Description: optionalText(*p.fDescription),
		StartDate:   optionalText(*p.fStart),
		EndDate:     optionalText(*p.fEnd),
	}
	return act("Project added", func(ctx context.Context) error {
		_, err := p.store.AddProject(ctx, proj)
		return err
	})
}

func (p projectsModel) view() string {
	w := p.width - 4
	if p.form.active {
		title := titleStyle.Render("New Project")
		if p.editID != "" {
			title = titleStyle.Render("Edit Project")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.view()))
	}
	if len(p.projects) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Projects"), "", mutedStyle.Render("No projects yet. Press n to create one."),
		))
	}

	listWidth := w
	showDetail := w >= 80
	if showDetail {
		listWidth = w / 2
	}
	list := p.renderList(listWidth)
	if !showDetail {
		return list
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, list, p.renderDetail(w-listWidth-2))
}

func (p projectsModel) renderList(w int) string {
	rows := []string{titleStyle.Render("Projects"), ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-22s %-9s %s", "Name", "Type", "Open")))
	for i, proj := range p.projects {
		cursor, style := "  ", normalItemStyle
		if i == p.cursor {
			cursor, style = "> ", selectedItemStyle
		}
		marker := " "
		if p.active != nil && *p.active == proj.ID {
			marker = successStyle.Render("*")
		}
		rows = append(rows, style.Render(cursor)+marker+dot(deref(proj.Color))+" "+
			style.Render(fmt.Sprintf("%-22s %-9s %d", truncate(proj.Title, 22), proj.Type, p.counts[proj.ID])))
	}
	filter := "all projects"
	if p.active != nil {
		for _, proj := range p.projects {
			if proj.ID == *p.active {
				filter = proj.Title
			}
		}
	}
	rows = append(rows, "",
		mutedStyle.Render("  showing: "+filter),
		mutedStyle.Render("  enter: focus  a: all  n: new  r: edit  d: delete"),
	)
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p projectsModel) renderDetail(w int) string {
	proj, ok := p.selected()
	if !ok {
		return ""
	}
	rows := []string{dot(deref(proj.Color)) + " " + titleStyle.Render(proj.Title)}
	if proj.StartDate != nil || proj.EndDate != nil {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("%s → %s", deref(proj.StartDate), deref(proj.EndDate))))
	}
	rows = append(rows, "")
	if desc := RenderMarkdown(deref(proj.Description), w-4, false); desc != "" {
		rows = append(rows, desc)
	} else {
		rows = append(rows, mutedStyle.Render("No description"))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
