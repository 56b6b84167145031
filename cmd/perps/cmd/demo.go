package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comodofi/perps/config"
	"github.com/comodofi/perps/market"
	"github.com/comodofi/perps/risk"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted trading session in the terminal",
	Long: `Run a complete demo session against the first registered index:
show the mark and funding estimate, open a leveraged position, mark it to
the current price, close it, and print the activity log.

Example:
  perps demo -f perps.yaml --notional 500 --leverage 5 --side LONG`,
	RunE: runDemo,
}

var (
	demoConfigPath string
	demoSymbol     string
	demoSide       string
	demoNotional   float64
	demoLeverage   int
)

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVarP(&demoConfigPath, "config", "f", "./perps.yaml", "path to config file")
	demoCmd.Flags().StringVarP(&demoSymbol, "symbol", "s", "", "index symbol (default: first registered)")
	demoCmd.Flags().StringVar(&demoSide, "side", "LONG", "order side: LONG or SHORT")
	demoCmd.Flags().Float64VarP(&demoNotional, "notional", "n", 500, "order notional in USD")
	demoCmd.Flags().IntVarP(&demoLeverage, "leverage", "l", 5, "leverage multiplier")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(demoConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	core, err := buildApp(cfg, newLogger())
	if err != nil {
		return err
	}

	side, err := market.ParseSide(demoSide)
	if err != nil {
		return err
	}

	symbol := demoSymbol
	if symbol == "" {
		indices := core.ListIndices()
		symbol = indices[0].Symbol
	}

	ctx := cmd.Context()

	idx, err := core.Registry.Get(symbol)
	if err != nil {
		return err
	}

	mark, err := core.Mark(ctx, symbol)
	if err != nil {
		return fmt.Errorf("mark: %w", err)
	}
	funding, err := core.FundingEstimate(ctx, symbol)
	if err != nil {
		return fmt.Errorf("funding: %w", err)
	}

	fmt.Printf("%s — %s\n", idx.Name, idx.Description)
	fmt.Printf("  Mark: %.4f\n", mark)
	fmt.Printf("  Est. 24h funding: %+.3f%%\n", funding)
	fmt.Println()

	sess := core.Sessions.GetOrCreate("")
	fmt.Printf("Session %s (balance $%.2f)\n\n", sess.ID, core.Balance(sess.ID))

	pos, priced, err := core.PlaceOrder(ctx, sess.ID, risk.Order{
		Symbol:   symbol,
		Side:     side,
		Notional: demoNotional,
		Leverage: demoLeverage,
	})
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	fmt.Printf("Opened %s %s at %.4f\n", side, symbol, pos.Entry)
	fmt.Printf("  Quantity: %+.4f  Fee: $%.4f\n", pos.Quantity, priced.Fee)
	if priced.EstLiquidation != nil {
		fmt.Printf("  Est. liquidation: %.4f\n", *priced.EstLiquidation)
	} else {
		fmt.Println("  Est. liquidation: not available")
	}
	fmt.Printf("  Balance: $%.2f\n\n", core.Balance(sess.ID))

	views, err := core.Positions(ctx, sess.ID)
	if err != nil {
		return err
	}
	for _, v := range views {
		fmt.Printf("Open position %s: entry %.4f, mark %.4f, unrealized PnL %+.2f\n",
			v.Symbol, v.Entry, v.Mark, v.UnrealizedPnL)
	}

	pnl, err := core.ClosePosition(ctx, sess.ID, pos.ID)
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}
	fmt.Printf("\nClosed %s: PnL %+.2f USD, balance $%.2f\n\n", symbol, pnl, core.Balance(sess.ID))

	recs, err := core.ActivityLog(sess.ID)
	if err != nil {
		return err
	}
	fmt.Println("Activity:")
	for _, rec := range recs {
		switch rec.Action {
		case "OPEN":
			fmt.Printf("  %s  OPEN   %-12s %s $%.2f %dx @ %.4f\n",
				rec.Time.Format("15:04:05"), rec.Symbol, rec.Side, rec.Notional, rec.Leverage, rec.Price)
		case "CLOSE":
			fmt.Printf("  %s  CLOSE  %-12s PnL %+.2f @ %.4f\n",
				rec.Time.Format("15:04:05"), rec.Symbol, rec.PnL, rec.Price)
		}
	}

	return nil
}
