package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newOptionsCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the accepted profile and claim values",
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

			opts, err := rt.advisor.Options(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(opts)
			}

			section := func(title string, items []string) {
				fmt.Fprintf(out, "%s:\n  %s\n", title, strings.Join(items, "\n  "))
			}
			section("Occupations", opts.Occupations)
			brackets := make([]string, len(opts.IncomeBrackets))
			for i, b := range opts.IncomeBrackets {
				brackets[i] = fmt.Sprintf("%s (₹%d/month)", b.Label, b.Monthly)
			}
			section("Income brackets", brackets)
			section("Family sizes", opts.FamilySizes)
			section("Health", opts.HealthStatuses)
			section("Goals", opts.FinancialGoals)
			section("Claim types", opts.ClaimTypes)
			section("Locales", opts.Locales)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
