package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/sadopc/planner/internal/auth"
	"github.com/spf13/cobra"
)

type credentials struct {
	email    string
	password string
}

func (c *credentials) flags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.email, "email", "", "Account email")
	cmd.Flags().StringVar(&c.password, "password", "", "Password (prompted when omitted)")
}

// complete prompts for whatever was not given on the command line.
func (c *credentials) complete() error {
	var fields []huh.Field
	if strings.TrimSpace(c.email) == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&c.email).Validate(func(s string) error {
			if !strings.Contains(s, "@") {
				return errors.New("enter an email address")
			}
			return nil
		}))
	}
	if c.password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&c.password))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func newSignUpCmd(app *App) *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.complete(); err != nil {
				return err
			}
			s, err := app.connect()
			if err != nil {
				return err
			}
			sess, err := s.auth.SignUp(cmd.Context(), strings.TrimSpace(creds.email), creds.password)
			if err != nil {
				return err
			}
			printSignedIn(cmd, sess)
			return nil
		},
	}
	creds.flags(cmd)
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.complete(); err != nil {
				return err
			}
			s, err := app.connect()
			if err != nil {
				return err
			}
			sess, err := s.auth.SignIn(cmd.Context(), strings.TrimSpace(creds.email), creds.password)
			if err != nil {
				return err
			}
			printSignedIn(cmd, sess)
			return nil
		},
	}
	creds.flags(cmd)
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.connect()
			if err != nil {
				return err
			}
			if s.auth.User() == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			if err := s.store.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.connect()
			if err != nil {
				return err
			}
			sess := s.auth.Session()
			if sess == nil {
				return errNotSignedIn
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (session expires %s)\n", sess.User.Email, sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
}

func printSignedIn(cmd *cobra.Command, sess *auth.Session) {
	green := color.New(color.FgGreen, color.Bold)
	fmt.Fprintf(cmd.OutOrStdout(), "%s as %s\n", green.Sprint("Signed in"), sess.User.Email)
}
