package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/sadopc/planner/internal/auth"
	"github.com/sadopc/planner/internal/gateway"
	"github.com/sadopc/planner/internal/planner"
	"github.com/sadopc/planner/internal/prefs"
)

var errNotSignedIn = errors.New("not signed in: run `planner login` first")

// session bundles the client side of the stack for one command.
type session struct {
	prefs *prefs.Store
	gw    *gateway.Client
	auth  *auth.Client
	store *planner.Store
}

// connect wires prefs, the gateway and the session holder. It does not load
// any data.
func (app *App) connect() (*session, error) {
	p, err := prefs.New(app.Cfg.PrefsDir())
	if err != nil {
		return nil, err
	}
	defaults := prefs.DefaultSettings()
	defaults.PomodoroWork = int(app.Cfg.Focus.Pomodoro.Minutes())
	defaults.DeepWorkDuration = int(app.Cfg.Focus.DeepWork.Minutes())
	defaults.NotificationsEnabled = app.Cfg.Notifications.Enabled
	p.SetDefaults(defaults)

	gw := gateway.New(app.Cfg.Client.URL, nil, app.Cfg.Client.Timeout)
	authClient := auth.NewClient(gw.Auth, p)
	gw.SetTokenSource(authClient)

	store := planner.New(planner.FromClient(gw), planner.Options{
		Auth:   authClient,
		Prefs:  p,
		Logger: app.Log,
	})
	return &session{prefs: p, gw: gw, auth: authClient, store: store}, nil
}

// open connects and loads every collection for the signed-in user.
func (app *App) open(ctx context.Context) (*session, error) {
	s, err := app.connect()
	if err != nil {
		return nil, err
	}
	if s.auth.User() == nil {
		return nil, errNotSignedIn
	}
	if err := s.store.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("load planner data: %w", err)
	}
	return s, nil
}
