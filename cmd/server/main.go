// Command server runs the lakehouse API and its administrative tasks.
package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lakehouse/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "lakehouse",
		Short:         "Tenant-scoped SQL views and tabular ingestion",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "path to a YAML config file")
	pf.String("meta-db-path", "", "SQLite metadata file")
	pf.String("listen-addr", "", "HTTP listen address")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("env", "", "development or production")

	load := func(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
		if err := config.LoadDotEnv(".env"); err != nil {
			return nil, nil, fmt.Errorf("load .env: %w", err)
		}
		cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
		if err != nil {
			return nil, nil, err
		}
		logger := newLogger(cfg)
		for _, w := range cfg.Warnings {
			logger.Warn(w)
		}
		return cfg, logger, nil
	}

	serve := newServeCmd(load)
	rootCmd.AddCommand(serve, newMigrateCmd(load), newUserCmd(load), newTokenCmd(load))
	rootCmd.RunE = serve.RunE
	return rootCmd
}

type loadFunc func(cmd *cobra.Command) (*config.Config, *slog.Logger, error)

// newLogger writes JSON in production and text otherwise.
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var logger *slog.Logger
	if cfg.IsProduction() {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	slog.SetDefault(logger)
	return logger
}

// curlHostForListenAddr turns a listen address into a host:port usable in
// a local curl hint. Wildcard hosts become localhost.
func curlHostForListenAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost:8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
