package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comodofi/perps/config"
	"github.com/comodofi/perps/registry"
	"github.com/comodofi/perps/series"
)

var indicesCmd = &cobra.Command{
	Use:   "indices",
	Short: "Inspect the index registry",
	Long: `Inspect and check the configured influence indices.

Subcommands:
  list   - Print the registered indices
  check  - Fetch every index's source and verify the series contract

Examples:
  perps indices list -f perps.yaml
  perps indices check -f perps.yaml`,
}

var indicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the registered indices",
	Args:  cobra.NoArgs,
	RunE:  runIndicesList,
}

var indicesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch every index source and verify it parses",
	Args:  cobra.NoArgs,
	RunE:  runIndicesCheck,
}

var indicesConfigPath string

func init() {
	rootCmd.AddCommand(indicesCmd)
	indicesCmd.AddCommand(indicesListCmd)
	indicesCmd.AddCommand(indicesCheckCmd)

	indicesCmd.PersistentFlags().StringVarP(&indicesConfigPath, "config", "f", "./perps.yaml", "path to config file")
}

func loadRegistry() (*registry.Registry, *config.Config, error) {
	cfg, err := config.LoadFromFile(indicesConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	reg, err := registry.LoadFile(cfg.IndicesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load indices: %w", err)
	}
	return reg, cfg, nil
}

func runIndicesList(cmd *cobra.Command, args []string) error {
	reg, _, err := loadRegistry()
	if err != nil {
		return err
	}

	for _, idx := range reg.List() {
		fmt.Printf("%-16s %s\n", idx.Symbol, idx.Name)
		fmt.Printf("                 %s\n", idx.Description)
		switch idx.Source.Type {
		case "csv":
			fmt.Printf("                 source: %s\n", idx.Source.Path)
		case "url_csv":
			fmt.Printf("                 source: %s\n", idx.Source.URL)
		}
	}
	return nil
}

func runIndicesCheck(cmd *cobra.Command, args []string) error {
	reg, cfg, err := loadRegistry()
	if err != nil {
		return err
	}

	timeout, err := cfg.Series.FetchTimeoutDuration()
	if err != nil {
		return err
	}
	loader := series.NewLoader(timeout)

	failed := 0
	for _, idx := range reg.List() {
		s, err := loader.Fetch(cmd.Context(), idx.Source)
		if err != nil {
			fmt.Printf("✗ %-16s %v\n", idx.Symbol, err)
			failed++
			continue
		}
		fmt.Printf("✓ %-16s %d points, last %.4f at %s\n",
			idx.Symbol, len(s), s[len(s)-1].Value, s[len(s)-1].Time.Format("2006-01-02 15:04"))
	}

	if failed > 0 {
		return fmt.Errorf("%d index source(s) failed", failed)
	}
	return nil
}
