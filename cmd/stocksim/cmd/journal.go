package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stocksim/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the SQLite trade journal",
	Long: `Query fill and equity records from a SQLite journal database.

Subcommands:
  fill   - Get details of a specific fill by trade ID
  fills  - List fills, optionally for one symbol
  equity - List equity points for a specific day

Examples:
  stocksim journal fill 01HV...
  stocksim journal fills --symbol AAPL
  stocksim journal equity 2024-01-15`,
}

var journalFillCmd = &cobra.Command{
	Use:   "fill <trade-id>",
	Short: "Get details of a specific fill",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalFill,
}

var journalFillsCmd = &cobra.Command{
	Use:   "fills",
	Short: "List fills in execution order",
	Args:  cobra.NoArgs,
	RunE:  runJournalFills,
}

var journalEquityCmd = &cobra.Command{
	Use:   "equity <YYYY-MM-DD>",
	Short: "List equity points for a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalEquity,
}

var (
	journalDBPath string
	journalSymbol string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalFillCmd)
	journalCmd.AddCommand(journalFillsCmd)
	journalCmd.AddCommand(journalEquityCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./stocksim.sqlite", "path to SQLite journal DB")
	journalFillsCmd.Flags().StringVarP(&journalSymbol, "symbol", "s", "", "only fills for this symbol")
}

func runJournalFill(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetFill(args[0])
	if err != nil {
		return fmt.Errorf("get fill: %w", err)
	}

	printFill(rec)
	return nil
}

func runJournalFills(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListFills(journalSymbol)
	if err != nil {
		return fmt.Errorf("query fills: %w", err)
	}

	for _, rec := range recs {
		printFill(rec)
	}
	if len(recs) == 0 {
		fmt.Println("(no fills)")
	}
	return nil
}

func runJournalEquity(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListEquityBetween(start, end)
	if err != nil {
		return fmt.Errorf("query equity: %w", err)
	}

	for _, rec := range recs {
		fmt.Printf("%-19s %-8s cash=%.2f mv=%.2f equity=%.2f\n",
			rec.Time.Format("2006-01-02 15:04:05"), rec.Label,
			rec.Cash, rec.MarketValue, rec.Equity)
	}
	if len(recs) == 0 {
		fmt.Println("(no equity points)")
	}
	return nil
}

func printFill(rec journal.FillRecord) {
	fmt.Printf("%s  %-19s %-6s qty=%d price=%.2f impact=%.2f\n",
		rec.TradeID, rec.Time.Format("2006-01-02 15:04:05"),
		rec.Symbol, rec.Qty, rec.Price, rec.CashImpact)
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.Add(24 * time.Hour), nil
}
