// Package cli is the planner command tree. With no subcommand it opens the
// terminal UI.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sadopc/planner/internal/config"
	"github.com/spf13/cobra"
)

type App struct {
	ConfigFile string
	Cfg        *config.Config
	Log        *slog.Logger

	logFile io.Closer
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "planner",
		Short:        "Tasks, time blocks, habits and focus sessions",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the backend
  planner serve

  # Create an account, then open the interactive UI
  planner signup --email me@example.com
  planner

  # Scriptable commands
  planner tasks add "Book flights" --due 2024-03-10 --priority high
  planner focus start --task 3f2a
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigFile)
		if err != nil {
			return err
		}
		app.Cfg = cfg
		return app.setupLogging(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logFile != nil {
			return app.logFile.Close()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigFile, "config", "", "Config file (default: planner.yaml in ~/.config/planner or .)")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newSignUpCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoAmICmd(app))
	cmd.AddCommand(newUICmd(app))
	cmd.AddCommand(newTodayCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newGoalsCmd(app))
	cmd.AddCommand(newHabitsCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newFocusCmd(app))
	cmd.AddCommand(newExportCmd(app))

	return cmd
}

// setupLogging sends logs to a file while the terminal UI owns the screen and
// to stderr otherwise.
func (app *App) setupLogging(cmd *cobra.Command) error {
	var w io.Writer = cmd.ErrOrStderr()
	if cmd == cmd.Root() || cmd.Name() == "ui" {
		if err := os.MkdirAll(filepath.Dir(app.Cfg.LogPath()), 0o700); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(app.Cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		app.logFile = f
		w = f
	}
	app.Log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: app.Cfg.Level()}))
	slog.SetDefault(app.Log)
	return nil
}
