package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stocksim/config"
	"github.com/rustyeddy/stocksim/engine"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted example session",
	Long: `Run a short scripted session against the default market:
buy, advance the market a few ticks, sell half, snapshot, and save
the session to a folder.

Example:
  stocksim demo --dir ./demo-data`,
	RunE: runDemo,
}

var demoDir string

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().StringVar(&demoDir, "dir", "demo-data", "folder to save the demo session")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	cfg.Market.Seed = 1 // reproducible demo path

	session, j, err := buildSession(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	fmt.Println("=== Stocksim Demo ===")
	fmt.Println()

	if err := session.RecordSnapshot("INIT"); err != nil {
		return err
	}

	tr, err := session.PlaceOrder("AAPL", 100, engine.Buy)
	if err != nil {
		return err
	}
	fmt.Printf("BUY   %d AAPL @ %.2f (cash impact %.2f)\n", tr.Qty, tr.Price, tr.CashImpact())

	for i := 0; i < 5; i++ {
		session.AdvanceMarket()
	}
	fmt.Printf("TICK  advanced market to tick %d\n", session.Market().Ticks())

	tr, err = session.PlaceOrder("AAPL", 50, engine.Sell)
	if err != nil {
		return err
	}
	fmt.Printf("SELL  %d AAPL @ %.2f (cash impact %.2f)\n", -tr.Qty, tr.Price, tr.CashImpact())

	if err := session.RecordSnapshot(fmt.Sprintf("T%d", session.Market().Ticks())); err != nil {
		return err
	}

	view := session.ViewAccount()
	fmt.Printf("\nCash: %.2f | Market Value: %.2f | Equity: %.2f | Unrealized PnL: %.2f\n",
		view.Cash, view.MarketValue, view.Equity, view.UnrealizedPL)

	if err := session.SaveTo(demoDir); err != nil {
		return err
	}
	fmt.Printf("\nSaved session to %q (%s ...)\n", demoDir, filepath.Join(demoDir, "positions.csv"))
	return nil
}
