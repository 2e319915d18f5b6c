package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCmd(configPath *string) *cobra.Command {
	var (
		since     time.Duration
		sessionID string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show resolution statistics from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Journal is disabled; set journal.enabled in the config.")
				return nil
			}
			rt, err := newRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := context.Background()
			out := cmd.OutOrStdout()

			// Per-session detail
			if sessionID != "" {
				recs, err := rt.journal.Recent(ctx, sessionID, limit)
				if err != nil {
					return err
				}
				if len(recs) == 0 {
					fmt.Fprintln(out, "No resolutions found for session.")
					return nil
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TIME\tCATEGORY\tBACKEND\tCACHE\tLATENCY")
				for _, r := range recs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%dms\n",
						r.CreatedAt.Format("2006-01-02T15:04:05"), r.Category, r.Backend, r.CacheHit, r.LatencyMs)
				}
				return w.Flush()
			}

			rows, err := rt.journal.Summary(ctx, time.Now().Add(-since))
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No resolutions recorded.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tBACKEND\tREQUESTS\tCACHE HITS\tAVG LATENCY")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.0fms\n",
					r.Category, r.Backend, r.Count, r.CacheHits, r.AvgLatencyMs)
			}
			return w.Flush()
		},
	}

	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "summary window")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "show recent resolutions for one session")
	cmd.Flags().IntVar(&limit, "limit", 20, "rows to show with --session-id")
	return cmd
}
