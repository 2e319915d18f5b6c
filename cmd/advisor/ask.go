package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pario-ai/advisor/pkg/models"
)

func newAskCmd(configPath *string) *cobra.Command {
	var q models.QueryRequest

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask an insurance or claim question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Question = strings.Join(args, " ")

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			rt, err := newRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := rt.advisor.Ask(ctx, rt.sessions.Create(), q)
			if err != nil {
				return err
			}
			printResult(cmd, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&q.ClaimCategory, "claim-type", "", "claim type for claim guidance")
	cmd.Flags().StringVar(&q.Locale, "locale", "", "answer language code")
	return cmd
}
