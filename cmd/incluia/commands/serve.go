package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/incluia/assessment-adapter/internal/observability"
	"github.com/incluia/assessment-adapter/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireKeys(); err != nil {
				return err
			}
			cfg := a.cfg
			logger := a.logger

			var metrics *observability.Metrics
			if cfg.Observability.MetricsEnabled {
				metrics = observability.NewMetrics()
			}

			svc, closer, err := buildService(context.Background(), cfg, logger, metrics)
			if closer != nil {
				defer closer.Close()
			}
			if err != nil {
				return err
			}

			router := server.NewRouter(svc, logger, metrics, server.Options{
				RequestTimeout: cfg.Model.RequestTimeout,
				MaxUploadBytes: cfg.Server.MaxUploadBytes,
			})

			addr := cfg.Address()
			srv := &http.Server{
				Addr:         addr,
				Handler:      router,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				IdleTimeout:  cfg.Server.IdleTimeout,
			}

			serverErrors := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", addr).Str("provider", cfg.Model.Provider).Msg("HTTP server listening")
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErrors:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case sig := <-shutdown:
				logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error().Err(err).Msg("graceful shutdown failed")
				return srv.Close()
			}

			logger.Info().Msg("server stopped")
			return nil
		},
	}
}
