package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mitchellh/go-homedir"
	"github.com/sadopc/planner/internal/tui"
	"github.com/spf13/cobra"
)

func newUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := app.connect()
	if err != nil {
		return err
	}
	if s.auth.User() == nil {
		return errNotSignedIn
	}
	// Watch replays the current session, which loads everything, and
	// reloads whenever it changes.
	stop := s.store.Watch(ctx, s.auth)
	defer stop()
	if msg := s.store.Error(); msg != "" {
		return fmt.Errorf("load planner data: %s", msg)
	}

	exportDir, err := homedir.Dir()
	if err != nil {
		exportDir, _ = os.Getwd()
	}

	model := tui.NewApp(s.store, tui.Options{
		Settings:  s.prefs,
		Logger:    app.Log,
		ExportDir: exportDir,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
