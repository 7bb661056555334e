package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lakehouse/internal/app"
	"lakehouse/internal/db"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()

			store, err := db.Open(ctx, cfg.MetaDBPath, 0)
			if err != nil {
				return fmt.Errorf("open metadata store: %w", err)
			}
			defer store.Close() //nolint:errcheck

			deps := app.Deps{Cfg: cfg, Store: store, Logger: logger}
			application, err := app.New(ctx, deps)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           application.Router(ctx, deps),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       5 * time.Minute,
				WriteTimeout:      5 * time.Minute,
				IdleTimeout:       120 * time.Second,
			}

			go func() {
				<-ctx.Done()
				logger.Info("shutting down")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer shutdownCancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			scheme := "http"
			if cfg.TLSCertFile != "" {
				scheme = "https"
			}
			logger.Info("lakehouse API listening", "addr", cfg.ListenAddr, "env", cfg.Env,
				"try", fmt.Sprintf("curl %s://%s/healthz", scheme, curlHostForListenAddr(cfg.ListenAddr)))

			if cfg.TLSCertFile != "" {
				err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			} else {
				err = srv.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		},
	}
}
