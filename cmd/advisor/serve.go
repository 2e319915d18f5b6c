package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pario-ai/advisor/pkg/server"
)

const pruneInterval = 5 * time.Minute

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the advisor HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			rt, err := newRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			rt.sessions.StartPruning(pruneInterval, cfg.Session.IdleTimeout)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			zap.L().Info("starting advisor server",
				zap.String("config", *configPath),
				zap.String("listen", cfg.Listen),
				zap.Strings("backends", rt.cascade.Backends()),
			)
			return server.New(cfg, rt.advisor, rt.sessions).ListenAndServe(ctx)
		},
	}
}
