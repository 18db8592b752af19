package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/flood-signal-etl/internal/adapter/httpadapter"
	"github.com/couchcryptid/flood-signal-etl/internal/observability"
)

const serveCmdName = "serve"

var serveCmd = &cobra.Command{
	Use:   serveCmdName,
	Short: "Run the pipeline once and serve the series over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		metrics := observability.NewMetrics()
		p, closeFn := newPipeline(metrics)
		defer closeFn()

		srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srvErr := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				srvErr <- err
			}
			close(srvErr)
		}()

		var runErr error
		if _, err := p.Run(ctx); err != nil {
			if _, ok := p.Bundle(); ok {
				// Series are built; only the sink failed.
				logger.Error("pipeline run finished with errors", "error", err)
			} else {
				runErr = err
				stop()
			}
		}

		select {
		case <-ctx.Done():
		case err, ok := <-srvErr:
			if ok {
				logger.Error("http server error", "error", err)
				runErr = errors.Join(runErr, err)
			}
		}
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}

		logger.Info("shutdown complete")
		return runErr
	},
}
