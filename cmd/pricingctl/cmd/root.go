// Package cmd provides the pricingctl commands.
package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var setupFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pricingctl",
		Short: "Check tier definitions and compute quotes offline",
		Long: `pricingctl runs the tier validator and the quote calculator against local
files, without a database.

Examples:
  pricingctl validate tiers.json --minimum 2
  pricingctl setup --setup config/pricing.yaml
  pricingctl quote booking.json --setup config/pricing.yaml`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&setupFile, "setup", "config/pricing.yaml", "pricing setup file")

	root.AddCommand(newValidateCmd())
	root.AddCommand(newQuoteCmd())
	root.AddCommand(newSetupCmd())
	return root
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func readJSONFile(path string, dest any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	dec.UseNumber()
	return dec.Decode(dest)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
