package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/planner/internal/model"
	"github.com/sadopc/planner/internal/planner"
	"github.com/spf13/cobra"
)

func newHabitsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "habits",
		Aliases: []string{"habit"},
		Short:   "Habit commands",
	}
	cmd.AddCommand(newHabitsListCmd(app))
	cmd.AddCommand(newHabitsAddCmd(app))
	cmd.AddCommand(newHabitsCheckCmd(app))
	cmd.AddCommand(newHabitsRmCmd(app))
	return cmd
}

func resolveHabit(s *planner.Store, ref string) (model.Habit, error) {
	habits := s.Habits()
	ids := make([]string, len(habits))
	for i, h := range habits {
		if strings.EqualFold(h.Title, ref) {
			return h, nil
		}
		ids[i] = h.ID
	}
	id, err := resolveID("habit", ref, ids)
	if err != nil {
		return model.Habit{}, err
	}
	h, _ := s.Habit(id)
	return h, nil
}

func newHabitsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List habits with the last seven days",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			habits := s.store.Habits()
			if len(habits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No habits.")
				return nil
			}

			today := time.Now()
			columns := []any{"ID", "HABIT"}
			var days []string
			for i := 6; i >= 0; i-- {
				d := today.AddDate(0, 0, -i)
				days = append(days, model.FormatDate(d))
				columns = append(columns, d.Format("Mon")[:2])
			}
			columns = append(columns, "STREAK")

			tbl := newTable(columns...)
			for _, h := range habits {
				row := []any{shortID(h.ID), strings.TrimSpace(h.Icon + " " + h.Title)}
				for _, d := range days {
					row = append(row, check(h.Done(d)))
				}
				row = append(row, fmt.Sprintf("%d 🔥", s.store.Streak(h.ID)))
				tbl.AddRow(row...)
			}
			printTable(cmd, tbl)
			return nil
		},
	}
}

func newHabitsAddCmd(app *App) *cobra.Command {
	var (
		icon      string
		hex       string
		frequency string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a habit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			freq := model.Frequency(frequency)
			if freq != model.FrequencyDaily && freq != model.FrequencyWeekly {
				return fmt.Errorf("unknown frequency %q (daily, weekly)", frequency)
			}
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			h, err := s.store.AddHabit(cmd.Context(), model.Habit{
				Title:     strings.Join(args, " "),
				Icon:      icon,
				Color:     hex,
				Frequency: freq,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added habit %s %s\n", faint.Sprint(shortID(h.ID)), h.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&icon, "icon", "✦", "Icon shown next to the habit")
	cmd.Flags().StringVar(&hex, "color", "#2EC4B6", "Hex colour")
	cmd.Flags().StringVar(&frequency, "frequency", string(model.FrequencyDaily), "daily or weekly")
	return cmd
}

func newHabitsCheckCmd(app *App) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "check <id|title>",
		Short: "Toggle a habit for today (or --date)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = model.FormatDate(time.Now())
			} else if _, err := model.ParseDate(date); err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			h, err := resolveHabit(s.store, args[0])
			if err != nil {
				return err
			}
			streak, err := s.store.ToggleHabitForDate(cmd.Context(), h.ID, date)
			if err != nil {
				return err
			}
			state := "unchecked"
			if updated, _ := s.store.Habit(h.ID); updated.Done(date) {
				state = done.Sprint("checked")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s for %s · streak %d\n", h.Title, state, date, streak)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to toggle (YYYY-MM-DD)")
	return cmd
}

func newHabitsRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id|title>",
		Aliases: []string{"delete"},
		Short:   "Delete a habit and its history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			h, err := resolveHabit(s.store, args[0])
			if err != nil {
				return err
			}
			if err := s.store.DeleteHabit(cmd.Context(), h.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", h.Title)
			return nil
		},
	}
}
