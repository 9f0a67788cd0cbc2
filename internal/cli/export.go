package cli

import (
	"fmt"
	"time"

	"github.com/sadopc/planner/internal/export"
	"github.com/sadopc/planner/internal/model"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		format string
		what   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks and focus sessions to CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q (csv, json)", format)
			}
			if format == "csv" && what != "tasks" && what != "sessions" {
				return fmt.Errorf("csv exports tasks or sessions, got %q", what)
			}
			s, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" {
				name := what
				if format == "json" {
					name = "all"
				}
				output = fmt.Sprintf("planner-%s-%s.%s", name, time.Now().Format("2006-01-02"), format)
			}

			st := s.store
			tasks := st.Tasks()
			switch {
			case format == "json":
				err = export.ToJSON(tasks, st.FocusSessions(), st.ProjectIndex(), output)
			case what == "tasks":
				err = export.TasksToCSV(tasks, st.ProjectIndex(), output)
			default:
				byID := make(map[string]model.Task, len(tasks))
				for _, t := range tasks {
					byID[t.ID] = t
				}
				err = export.SessionsToCSV(st.FocusSessions(), byID, output)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVar(&what, "what", "tasks", "tasks or sessions (csv only; json holds both)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file")
	return cmd
}
