package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sadopc/planner/internal/model"
	"github.com/sadopc/planner/internal/planner"
	"github.com/sadopc/planner/internal/tui"
	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Project commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsShowCmd(app))
	cmd.AddCommand(newProjectsAddCmd(app))
	cmd.AddCommand(newProjectsUseCmd(app))
	cmd.AddCommand(newProjectsRmCmd(app))
	return cmd
}

// resolveProject accepts an id prefix or a project title.
func resolveProject(s *planner.Store, ref string) (model.Project, error) {
	projects := s.Projects()
	ids := make([]string, len(projects))
	for i, p := range projects {
		if strings.EqualFold(p.Title, ref) {
			return p, nil
		}
		ids[i] = p.ID
	}
	id, err := resolveID("project", ref, ids)
	if err != nil {
		return model.Project{}, err
	}
	p, _ := s.Project(id)
	return p, nil
}

func parseProjectType(s string) (model.ProjectType, error) {
	for _, t := range model.ProjectTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown project type %q (trip, work, personal, other)", s)
}

func newProjectsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			projects := s.store.Projects()
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects.")
				return nil
			}
			open := make(map[string]int)
			for _, t := range s.store.Tasks() {
				if t.ProjectID != nil && !t.Completed {
					open[*t.ProjectID]++
				}
			}
			active := s.store.UI().ActiveProjectID

			tbl := newTable("", "ID", "TITLE", "TYPE", "OPEN", "DATES")
			for _, p := range projects {
				marker := ""
				if active != nil && *active == p.ID {
					marker = done.Sprint("*")
				}
				dates := ""
				if p.StartDate != nil || p.EndDate != nil {
					dates = fmt.Sprintf("%s → %s", orDash(p.StartDate), orDash(p.EndDate))
				}
				tbl.AddRow(marker, shortID(p.ID), p.Title, p.Type, open[p.ID], dates)
			}
			printTable(cmd, tbl)
			return nil
		},
	}
}

func newProjectsShowCmd(app *App) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "show <id|title>",
		Short: "Show a project with its description and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			p, err := resolveProject(s.store, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, header.Sprint(p.Title))
			fmt.Fprintf(out, "%s %s\n", faint.Sprint("type:"), p.Type)
			if p.StartDate != nil || p.EndDate != nil {
				fmt.Fprintf(out, "%s %s → %s\n", faint.Sprint("dates:"), orDash(p.StartDate), orDash(p.EndDate))
			}
			if p.Description != nil {
				fmt.Fprintln(out, tui.RenderMarkdown(*p.Description, 80, plain || color.NoColor))
			}

			tbl := newTable("ID", "", "STATUS", "TITLE", "DUE")
			n := 0
			for _, t := range s.store.Tasks() {
				if t.ProjectID != nil && *t.ProjectID == p.ID {
					tbl.AddRow(shortID(t.ID), check(t.Completed), t.Status, t.Title, orDash(t.DueDate))
					n++
				}
			}
			if n > 0 {
				fmt.Fprintln(out)
				printTable(cmd, tbl)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Render the description without colour")
	return cmd
}

func newProjectsAddCmd(app *App) *cobra.Command {
	var (
		typ         string
		hex         string
		description string
		start       string
		end         string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a project and make it active",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pt, err := parseProjectType(typ)
			if err != nil {
				return err
			}
			for _, d := range []string{start, end} {
				if d == "" {
					continue
				}
				if _, err := model.ParseDate(d); err != nil {
					return err
				}
			}
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			p := model.Project{Title: strings.Join(args, " "), Type: pt}
			if hex != "" {
				p.Color = &hex
			}
			if description != "" {
				p.Description = &description
			}
			if start != "" {
				p.StartDate = &start
			}
			if end != "" {
				p.EndDate = &end
			}
			created, err := s.store.AddProject(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added project %s %s (now active)\n", faint.Sprint(shortID(created.ID)), created.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", string(model.ProjectWork), "trip, work, personal or other")
	cmd.Flags().StringVar(&hex, "color", "", "Hex colour, e.g. #6C63FF")
	cmd.Flags().StringVar(&description, "description", "", "Markdown description")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	return cmd
}

func newProjectsUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <id|title|all>",
		Short: "Narrow the planner to one project, or `all` to show everything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			if args[0] == "all" {
				s.store.SetActiveProject(nil)
				fmt.Fprintln(cmd.OutOrStdout(), "Showing all projects")
				return nil
			}
			p, err := resolveProject(s.store, args[0])
			if err != nil {
				return err
			}
			s.store.SetActiveProject(&p.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Showing %s\n", p.Title)
			return nil
		},
	}
}

func newProjectsRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id|title>",
		Aliases: []string{"delete"},
		Short:   "Delete a project; its tasks move to the inbox",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			p, err := resolveProject(s.store, args[0])
			if err != nil {
				return err
			}
			if err := s.store.DeleteProject(cmd.Context(), p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", p.Title)
			return nil
		},
	}
}
