package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "perps",
	Short: "A leveraged perpetual-futures simulator over influence indices",
	Long: `Perps is a demo exchange for trading attention and influence as
leveraged perpetual futures against a virtual USD balance.

It provides tools for:
  - Serving the trading API for a browser front end
  - Running a scripted demo session from the terminal
  - Inspecting and validating the index registry
  - Exporting activity journals to CSV
  - Generating and validating configuration files

No custody, no real money. Product concept only.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
