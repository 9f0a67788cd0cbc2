package cli

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/sadopc/planner/internal/auth"
	"github.com/sadopc/planner/internal/backend"
	"github.com/sadopc/planner/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the planner backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Cfg
			if addr == "" {
				addr = cfg.Server.Addr
			}
			db, err := backend.New(cfg.Server.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			secret, dev := cfg.Secret()
			if dev {
				app.Log.Warn("server.jwt_secret is not set, using the development secret")
			}
			if app.Cfg.Level() > slog.LevelDebug {
				gin.SetMode(gin.ReleaseMode)
			}

			svc := auth.NewService(db, auth.NewIssuer(secret, cfg.Server.TokenTTL))
			srv := server.New(db, svc, server.Options{
				RequestsPerMin: cfg.Server.RequestsPerMin,
				Burst:          cfg.Server.Burst,
				CORSOrigins:    cfg.Server.CORSOrigins,
				Logger:         app.Log,
			})
			app.Log.Info("backend database", "path", cfg.Server.DBPath)
			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")
	return cmd
}
