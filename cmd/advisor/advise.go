package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pario-ai/advisor/pkg/advisor"
	"github.com/pario-ai/advisor/pkg/catalog"
	"github.com/pario-ai/advisor/pkg/models"
)

func newAdviseCmd(configPath *string) *cobra.Command {
	var (
		p       models.ProfileRequest
		bracket string
	)

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Get portfolio advice for a profile",
		Example: `  advisor advise --age 35 --occupation Farmer --income-bracket "₹10,000-15,000" \
    --location "Nashik, Maharashtra" --family-size 4-5 --health Good --goal "Family Security"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bracket != "" {
				income, ok := catalog.IncomeForBracket(bracket)
				if !ok {
					return fmt.Errorf("unknown income bracket %q", bracket)
				}
				p.MonthlyIncome = income
			}

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

			sess := rt.sessions.Create()
			res, err := rt.advisor.Advise(ctx, sess, p)
			if err != nil {
				return err
			}
			printResult(cmd, res)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&p.Age, "age", 0, "age in years")
	f.StringVar(&p.Occupation, "occupation", "", "occupation, see the options command")
	f.IntVar(&p.MonthlyIncome, "income", 0, "monthly income in rupees")
	f.StringVar(&bracket, "income-bracket", "", "income bracket label, overrides --income")
	f.StringVar(&p.Location, "location", "", "village or district and state")
	f.StringVar(&p.FamilySize, "family-size", "", "family size bracket")
	f.StringVar(&p.Health, "health", "", "health status")
	f.StringVar(&p.Goal, "goal", "", "primary financial goal")
	f.StringVar(&p.Locale, "locale", "", "answer language code")
	return cmd
}

func printResult(cmd *cobra.Command, res advisor.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Text)
	source := res.Backend
	switch {
	case res.CacheHit:
		source = "cache"
	case source == models.BackendNone:
		source = "offline guidance"
	}
	fmt.Fprintf(out, "\n(source: %s)\n", source)
}
