package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/pricingdef/internal/setup"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Check the pricing setup file",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			registry, err := setup.Load(setupFile)
			if err != nil {
				return err
			}
			out := c.OutOrStdout()
			fmt.Fprintf(out, "priceables: %v\n", registry.PriceableTypes())
			for _, resourceType := range registry.ResourceTypes() {
				fmt.Fprintf(out, "calculator %s: parties %v\n", resourceType, registry.PartyNames(resourceType))
			}
			return nil
		},
	}
}
