package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stocksim",
	Short: "A single-user stock trading simulator with a synthetic market",
	Long: `Stocksim is a console stock trading simulator written in Go.

It provides:
  - Simulated market data with random-walk price updates
  - Buy/Sell market orders with instant execution
  - A portfolio with cash, positions, P&L and performance history
  - Trade and equity journaling to CSV or SQLite
  - Flat-file persistence of the whole session`,
}

// Execute runs the root command tree.
func Execute() error {
	return rootCmd.Execute()
}
