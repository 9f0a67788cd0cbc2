package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/planner/internal/model"
	"github.com/spf13/cobra"
)

var errNoOpenSession = errors.New("no focus session is running")

func newFocusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Start and stop focus sessions",
	}
	cmd.AddCommand(newFocusStartCmd(app))
	cmd.AddCommand(newFocusStopCmd(app))
	cmd.AddCommand(newFocusStatusCmd(app))
	return cmd
}

func newFocusStartCmd(app *App) *cobra.Command {
	var (
		task string
		deep bool
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Open a focus session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			if open, ok := s.store.OpenFocusSession(); ok {
				return fmt.Errorf("a focus session is already running since %s", open.StartTime.Local().Format("15:04"))
			}

			var taskID *string
			label := ""
			if task != "" {
				t, err := resolveTask(s.store, task)
				if err != nil {
					return err
				}
				taskID, label = &t.ID, " on "+t.Title
			}
			kind := model.SessionPomodoro
			if deep {
				kind = model.SessionDeepWork
			}
			id, err := s.store.StartFocusSession(cmd.Context(), taskID, kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started %s session %s%s\n", kind, faint.Sprint(shortID(id)), label)
			return nil
		},
	}
	cmd.Flags().StringVar(&task, "task", "", "Task id to attach")
	cmd.Flags().BoolVar(&deep, "deep", false, "Deep work instead of a pomodoro")
	return cmd
}

func newFocusStopCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "End the running focus session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			open, ok := s.store.OpenFocusSession()
			if !ok {
				return errNoOpenSession
			}
			if err := s.store.EndFocusSession(cmd.Context(), open.ID); err != nil {
				return err
			}
			ended, _ := s.store.FocusSession(open.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d min of %s\n", done.Sprint("Focused"), ended.Duration, ended.Type)
			return nil
		},
	}
}

func newFocusStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running session and today's total",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			now := time.Now()
			if open, ok := s.store.OpenFocusSession(); ok {
				fmt.Fprintf(out, "%s session running for %s\n", open.Type, now.Sub(open.StartTime).Truncate(time.Second))
			} else {
				fmt.Fprintln(out, "No session running.")
			}
			today := model.FormatDate(now)
			fmt.Fprintf(out, "Focused today: %d min\n", s.store.FocusMinutesByDay(now, now)[today])
			return nil
		},
	}
}
