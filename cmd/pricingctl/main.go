// Package main is the entry point for the pricingctl CLI.
package main

import (
	"os"

	"github.com/angelmondragon/pricingdef/cmd/pricingctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
