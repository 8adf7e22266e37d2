package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Priyanshu525/trading-alert/internal/engine"
	"github.com/Priyanshu525/trading-alert/internal/server"
)

// shutdownGrace bounds how long a shutdown waits for the current evaluation
// cycle and in-flight requests to finish.
const shutdownGrace = 10 * time.Second

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the evaluation loop and HTTP control surface",
		Long: `Start the background evaluation loop and the HTTP API.

The loop is started before the listener accepts traffic, and a shutdown
signal gives both a bounded grace period to finish their current work.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			eng := engine.New(app.Store, app.Oracle, app.Notifier, app.Config.Engine, app.Logger)
			srv := server.New(app.Config, app.Store, app.Oracle, app.Notifier, eng, app.Logger)

			engineDone := make(chan struct{})
			go func() {
				defer close(engineDone)
				eng.Run(ctx)
			}()

			serveErr := make(chan error, 1)
			go func() {
				serveErr <- srv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
			case err := <-serveErr:
				if err != nil {
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.Logger.Warn().Err(err).Msg("Control surface shutdown incomplete")
			}

			select {
			case <-engineDone:
			case <-shutdownCtx.Done():
				app.Logger.Warn().Msg("Evaluation loop did not stop within grace period")
			}

			return nil
		},
	}
}
