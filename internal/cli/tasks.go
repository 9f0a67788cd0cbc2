package cli

import (
	"fmt"
	"strings"

	"github.com/sadopc/planner/internal/model"
	"github.com/sadopc/planner/internal/planner"
	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksDoneCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	cmd.AddCommand(newTasksRmCmd(app))
	return cmd
}

func taskIDs(s *planner.Store) []string {
	tasks := s.Tasks()
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func resolveTask(s *planner.Store, ref string) (model.Task, error) {
	id, err := resolveID("task", ref, taskIDs(s))
	if err != nil {
		return model.Task{}, err
	}
	t, _ := s.Task(id)
	return t, nil
}

func parseStatus(s string) (model.Status, error) {
	for _, st := range model.Statuses {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	// Friendlier spellings of inProgress.
	if s == "doing" || s == "in-progress" || s == "in_progress" {
		return model.StatusInProgress, nil
	}
	return "", fmt.Errorf("unknown status %q (backlog, todo, inProgress, done)", s)
}

func newTasksListCmd(app *App) *cobra.Command {
	var (
		status string
		date   string
		inbox  bool
		all    bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks in the active project",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			st := s.store

			var tasks []model.Task
			switch {
			case inbox:
				tasks = st.Inbox()
			case date != "":
				if _, err := model.ParseDate(date); err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				tasks = st.TasksForDate(date)
			case status != "":
				want, err := parseStatus(status)
				if err != nil {
					return err
				}
				tasks = st.TasksByStatus(want)
			default:
				for _, col := range model.Statuses {
					tasks = append(tasks, st.TasksByStatus(col)...)
				}
			}

			projects := st.ProjectIndex()
			tbl := newTable("ID", "", "STATUS", "PRIORITY", "TITLE", "DUE", "PROJECT")
			shown := 0
			for _, t := range tasks {
				if t.Completed && !all && status == "" {
					continue
				}
				due := orDash(t.DueDate)
				if t.DueTime != nil {
					due += " " + *t.DueTime
				}
				tbl.AddRow(shortID(t.ID), check(t.Completed), t.Status, priority(t.Priority), t.Title, due, projectName(t.ProjectID, projects))
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
				return nil
			}
			printTable(cmd, tbl)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only one column (backlog, todo, inProgress, done)")
	cmd.Flags().StringVar(&date, "date", "", "Only tasks due on this day (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&inbox, "inbox", false, "Only open tasks without a due date")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed tasks")
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var (
		description string
		priority    string
		category    string
		status      string
		due         string
		dueTime     string
		estimate    int
		project     string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			t := model.Task{
				Title:    strings.Join(args, " "),
				Priority: model.Priority(priority),
				Category: model.Category(category),
			}
			if description != "" {
				t.Description = &description
			}
			if status != "" {
				if t.Status, err = parseStatus(status); err != nil {
					return err
				}
			}
			if due != "" {
				if _, err := model.ParseDate(due); err != nil {
					return fmt.Errorf("--due: %w", err)
				}
				t.DueDate = &due
			}
			if dueTime != "" {
				t.DueTime = &dueTime
			}
			if estimate > 0 {
				t.EstimatedMinutes = &estimate
			}
			if project != "" {
				p, err := resolveProject(s.store, project)
				if err != nil {
					return err
				}
				t.ProjectID = &p.ID
			}

			created, err := s.store.AddTask(cmd.Context(), t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %s %s\n", faint.Sprint(shortID(created.ID)), created.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Longer notes")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(model.PriorityMedium), "urgent, high, medium or low")
	cmd.Flags().StringVarP(&category, "category", "c", string(model.CategoryWork), "work, personal, health, learning or social")
	cmd.Flags().StringVar(&status, "status", "", "Board column (default todo)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dueTime, "time", "", "Due time (HH:MM)")
	cmd.Flags().IntVar(&estimate, "estimate", 0, "Estimated minutes")
	cmd.Flags().StringVar(&project, "project", "", "Project id or name (default: the active project)")
	return cmd
}

func newTasksDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Move a task to done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			t, err := resolveTask(s.store, args[0])
			if err != nil {
				return err
			}
			if err := s.store.MoveTaskToStatus(cmd.Context(), t.ID, model.StatusDone); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", done.Sprint("Done:"), t.Title)
			return nil
		},
	}
}

func newTasksMoveCmd(app *App) *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "move <id> <status>",
		Short: "Move a task to another board column",
		Long:  "Move a task to another board column. With --index the task is placed at that position and both columns are renumbered.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			t, err := resolveTask(s.store, args[0])
			if err != nil {
				return err
			}
			to, err := parseStatus(args[1])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("index") {
				err = s.store.ReorderTask(cmd.Context(), t.ID, to, index)
			} else {
				err = s.store.MoveTaskToStatus(cmd.Context(), t.ID, to)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", t.Title, to)
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "Position in the column, from 0")
	return cmd
}

func newTasksRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			t, err := resolveTask(s.store, args[0])
			if err != nil {
				return err
			}
			if err := s.store.DeleteTask(cmd.Context(), t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", t.Title)
			return nil
		},
	}
}
