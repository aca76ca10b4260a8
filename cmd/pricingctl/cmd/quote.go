package cmd

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/angelmondragon/pricingdef/internal/definitions"
	"github.com/angelmondragon/pricingdef/internal/quote"
	"github.com/angelmondragon/pricingdef/internal/resource"
	"github.com/angelmondragon/pricingdef/internal/setup"
	"github.com/angelmondragon/pricingdef/internal/tiers"
)

// quoteFixture is a resource record plus the definitions its priceable owns.
type quoteFixture struct {
	ResourceType string                   `json:"resource_type"`
	Resource     resource.Map             `json:"resource"`
	Definitions  []definitions.Definition `json:"definitions"`
}

func newQuoteCmd() *cobra.Command {
	var timezone string
	c := &cobra.Command{
		Use:   "quote [fixture.json]",
		Short: "Compute a quote from a JSON fixture",
		Long: `Compute the quote for a resource record using the definitions listed in the
fixture. Every definition is validated against the priceable first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return err
			}
			registry, err := setup.Load(setupFile)
			if err != nil {
				return err
			}
			var fixture quoteFixture
			if err := readJSONFile(args[0], &fixture); err != nil {
				return fmt.Errorf("read fixture: %w", err)
			}
			q, err := computeQuote(registry, definitions.NewSelector(loc), fixture)
			if err != nil {
				return err
			}
			return writeJSON(c.OutOrStdout(), q)
		},
	}
	c.Flags().StringVar(&timezone, "timezone", "UTC", "timezone that decides today's date")
	return c
}

func computeQuote(registry *setup.Registry, selector definitions.Selector, fixture quoteFixture) (quote.Quote, error) {
	calc, err := quote.New(registry, fixture.ResourceType, fixture.Resource, quote.WithSelector(selector))
	if err != nil {
		return quote.Quote{}, err
	}
	priceable, err := calc.Priceable()
	if err != nil {
		return quote.Quote{}, err
	}
	bounds, err := priceable.Config.Bounds(priceable.Record)
	if err != nil {
		return quote.Quote{}, err
	}

	var errs error
	for i, def := range fixture.Definitions {
		report := definitions.Validate(def, bounds)
		if !report.Valid() {
			kinds := lo.Map(report.Kinds(), func(k tiers.IssueKind, _ int) string { return string(k) })
			errs = multierr.Append(errs, fmt.Errorf("definition %d: %v", i, kinds))
		}
	}
	modifiers, err := calc.Modifiers()
	if err != nil {
		return quote.Quote{}, err
	}
	for _, m := range modifiers {
		for _, issue := range m.Validate() {
			errs = multierr.Append(errs, fmt.Errorf("modifier %s: %s", issue.Key, issue.Message))
		}
	}
	if errs != nil {
		return quote.Quote{}, errs
	}

	return calc.WithDefinitions(fixture.Definitions).Serialized()
}
