package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lab1702/starbattle/game"
	"github.com/lab1702/starbattle/logging"
	"github.com/lab1702/starbattle/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var addr string
	var gridCell float64

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the battle over WebSocket",
		Long: `Run the battle and stream a snapshot to every connected client each frame.
The battle pauses while no client is visible with motion enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			var opts []game.Option
			if gridCell > 0 {
				opts = append(opts, game.WithSpatialIndex(gridCell))
			}

			log := logging.Component(logger, "serve")
			log.Info().Str("addr", cfg.Server.Addr).Int("tick_rate", cfg.Server.TickRate).Msg("starting starbattle server")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			gameServer := server.NewServer(cfg.Server, cfg.Battle, logging.Component(logger, "server"), opts...)
			go gameServer.Run(ctx)

			srv := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      gameServer.Routes(),
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 10 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				gameServer.Shutdown()
				return fmt.Errorf("server failed to start: %w", err)
			case <-ctx.Done():
			}
			log.Info().Msg("shutting down server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Signal game server to stop background goroutines
			gameServer.Shutdown()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown error")
			}

			log.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().Float64Var(&gridCell, "grid", 0, "Spatial index cell size for collision checks (0 = linear scan)")

	return cmd
}
