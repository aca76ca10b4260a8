package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/pricingdef/internal/tiers"
	"github.com/angelmondragon/pricingdef/pkg/enums"
)

type validateOptions struct {
	minimum         int64
	maximum         int64
	highestBoundary string
	categories      []string
}

func newValidateCmd() *cobra.Command {
	var opts validateOptions
	c := &cobra.Command{
		Use:   "validate [tiers.json]",
		Short: "Validate a tier set",
		Long: `Validate a JSON object of tier key to pricing spec and print the report.
Exits non-zero when the tier set has issues.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			var raw tiers.RawTiers
			if err := readJSONFile(args[0], &raw); err != nil {
				return fmt.Errorf("read tiers: %w", err)
			}
			mode, err := enums.ParseBoundaryMode(opts.highestBoundary)
			if err != nil {
				return err
			}

			bounds := tiers.Bounds{Mode: mode, Categories: opts.categories}
			if c.Flags().Changed("minimum") {
				bounds.Minimum = &opts.minimum
			}
			if c.Flags().Changed("maximum") {
				bounds.Maximum = &opts.maximum
			}

			report := tiers.Validate(raw, bounds)
			if err := writeJSON(c.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Valid() {
				return fmt.Errorf("%d issue(s) found", len(report.Issues))
			}
			return nil
		},
	}
	c.Flags().Int64Var(&opts.minimum, "minimum", 1, "lowest volume the tiers must cover")
	c.Flags().Int64Var(&opts.maximum, "maximum", 0, "configured maximum volume")
	c.Flags().StringVar(&opts.highestBoundary, "highest-boundary", string(enums.BoundaryModeUnbounded), "unbounded or configured_maximum")
	c.Flags().StringSliceVar(&opts.categories, "categories", nil, "price categories (default adults,children)")
	return c
}
