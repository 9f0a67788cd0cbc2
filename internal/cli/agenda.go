package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/planner/internal/model"
	"github.com/sadopc/planner/internal/planner"
	"github.com/spf13/cobra"
)

// dateArg returns the --date value, defaulting to today.
func dateArg(date string) (string, error) {
	if date == "" {
		return model.FormatDate(time.Now()), nil
	}
	if _, err := model.ParseDate(date); err != nil {
		return "", fmt.Errorf("--date: %w", err)
	}
	return date, nil
}

func newTodayCmd(app *App) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the day's tasks, goals and time blocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dateArg(date)
			if err != nil {
				return err
			}
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			printAgenda(cmd, s.store, day)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to show (YYYY-MM-DD)")
	return cmd
}

func printAgenda(cmd *cobra.Command, st *planner.Store, day string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, header.Sprint(day))

	goals := st.GoalsForDate(day)
	fmt.Fprintf(out, "\nGoals (%d/%d)\n", len(goals), planner.MaxGoalsPerDay)
	for _, g := range goals {
		fmt.Fprintf(out, "  %s %s %s\n", check(g.Completed), faint.Sprint(shortID(g.ID)), g.Title)
	}

	blocks := st.BlocksForDate(day)
	if len(blocks) > 0 {
		fmt.Fprintln(out, "\nSchedule")
		tbl := newTable()
		for _, b := range blocks {
			tbl.AddRow("  "+b.StartTime+"-"+b.EndTime, b.Title, faint.Sprint(b.Category))
		}
		printTable(cmd, tbl)
	}

	tasks := st.TasksForDate(day)
	fmt.Fprintf(out, "\nTasks (%d)\n", len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(out, "  %s %s %s %s\n", check(t.Completed), faint.Sprint(shortID(t.ID)), priority(t.Priority), t.Title)
	}
}

func newGoalsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goals",
		Aliases: []string{"goal"},
		Short:   "Daily goal commands (at most three a day)",
	}
	cmd.AddCommand(newGoalsAddCmd(app))
	cmd.AddCommand(newGoalsDoneCmd(app))
	return cmd
}

func newGoalsAddCmd(app *App) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a goal for today (or --date)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dateArg(date)
			if err != nil {
				return err
			}
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			g, err := s.store.AddDailyGoal(cmd.Context(), strings.Join(args, " "), day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added goal %s %s for %s\n", faint.Sprint(shortID(g.ID)), g.Title, g.Date)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD)")
	return cmd
}

func newGoalsDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			goals := s.store.DailyGoals()
			ids := make([]string, len(goals))
			for i, g := range goals {
				ids[i] = g.ID
			}
			id, err := resolveID("goal", args[0], ids)
			if err != nil {
				return err
			}
			if err := s.store.ToggleDailyGoal(cmd.Context(), id); err != nil {
				return err
			}
			for _, g := range s.store.DailyGoals() {
				if g.ID == id {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", check(g.Completed), g.Title)
				}
			}
			return nil
		},
	}
}
