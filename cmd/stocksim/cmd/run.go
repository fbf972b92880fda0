package cmd

import (
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stocksim/config"
	"github.com/rustyeddy/stocksim/engine"
	"github.com/rustyeddy/stocksim/journal"
	"github.com/rustyeddy/stocksim/market"
	"github.com/rustyeddy/stocksim/portfolio"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive trading session",
	Long: `Start the interactive console session: view the market, place
buy/sell orders, advance the market, record performance snapshots and
save or load the whole session from a folder.

Every error is reported and control returns to the menu; nothing is
fatal. Quit returns exit code 0.`,
	RunE: runSession,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "config file (defaults to built-in market)")
}

// buildSession assembles the book, account, journal and engine from config.
func buildSession(cfg *config.Config) (*engine.Session, journal.Journal, error) {
	seed := cfg.Market.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	book := market.NewBook(rand.New(rand.NewSource(seed)))
	for _, ic := range cfg.Market.Instruments {
		book.Add(market.NewInstrument(ic.Symbol, ic.Name, ic.Price, ic.Vol))
	}

	var j journal.Journal = journal.Nop{}
	var err error
	switch cfg.Journal.Type {
	case "", "none":
	case "csv":
		j, err = journal.NewCSV(cfg.Journal.FillsFile, cfg.Journal.EquityFile)
	case "sqlite":
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}

	e := engine.New(book, j)
	e.SetCommission(cfg.Account.Commission)
	acct := portfolio.NewAccount(cfg.Account.Cash)

	return engine.NewSession(e, acct), j, nil
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if runConfigPath != "" {
		loaded, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	session, j, err := buildSession(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	if err := session.RecordSnapshot("INIT"); err != nil {
		fmt.Println("Error:", err)
	}

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println()
		fmt.Println("================ STOCK SIMULATOR ================")
		fmt.Printf("Time: %s  |  Ticks: %d\n",
			time.Now().Format("2006-01-02 15:04:05"), session.Market().Ticks())
		fmt.Println("1) View market")
		fmt.Println("2) Buy")
		fmt.Println("3) Sell")
		fmt.Println("4) View portfolio")
		fmt.Println("5) Advance market (+1 tick)")
		fmt.Println("6) Record performance snapshot")
		fmt.Println("7) View performance history")
		fmt.Println("8) Save to folder")
		fmt.Println("9) Load from folder")
		fmt.Println("0) Quit")
		fmt.Print("Select: ")

		if !sc.Scan() {
			fmt.Println("\nGoodbye!")
			return nil
		}

		switch strings.TrimSpace(sc.Text()) {
		case "1":
			showMarket(session)
		case "2":
			placeOrder(sc, session, engine.Buy)
		case "3":
			placeOrder(sc, session, engine.Sell)
		case "4":
			showPortfolio(session)
		case "5":
			session.AdvanceMarket()
			fmt.Println("Market advanced by one tick.")
		case "6":
			label := fmt.Sprintf("T%d", session.Market().Ticks())
			if err := session.RecordSnapshot(label); err != nil {
				fmt.Println("Error:", err)
			} else {
				fmt.Println("Snapshot recorded.")
			}
		case "7":
			showHistory(session)
		case "8":
			saveSession(sc, session, cfg.SaveDir)
		case "9":
			loadSession(sc, session, cfg.SaveDir)
		case "0":
			fmt.Println("Goodbye!")
			return nil
		default:
			fmt.Println("Invalid option.")
		}
	}
}

func showMarket(s *engine.Session) {
	fmt.Println("\n--- Market ---")
	fmt.Printf("%-6s %-22s %12s\n", "SYM", "NAME", "PRICE")
	for _, inst := range s.ListInstruments() {
		fmt.Printf("%-6s %-22s %12.2f\n", inst.Symbol, truncate(inst.Name, 20), inst.Price)
	}
}

func placeOrder(sc *bufio.Scanner, s *engine.Session, side engine.Side) {
	fmt.Print("Symbol: ")
	if !sc.Scan() {
		return
	}
	sym := strings.TrimSpace(sc.Text())

	fmt.Print("Quantity: ")
	if !sc.Scan() {
		return
	}
	qty, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		fmt.Println("Error: quantity must be a whole number.")
		return
	}

	tr, err := s.PlaceOrder(sym, qty, side)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Executed: %s %d %s @ %.2f\n",
		side, int(math.Abs(float64(tr.Qty))), tr.Symbol, tr.Price)

	if err := s.RecordSnapshot("TRADE"); err != nil {
		fmt.Println("Error:", err)
	}
}

func showPortfolio(s *engine.Session) {
	view := s.ViewAccount()

	fmt.Println("\n--- Portfolio ---")
	fmt.Printf("Cash: %.2f\n", view.Cash)
	fmt.Printf("%-6s %8s %12s %12s %12s\n", "SYM", "QTY", "AVG PRICE", "LAST PRICE", "UNREAL.PnL")
	for _, p := range view.Positions {
		fmt.Printf("%-6s %8d %12.2f %12.2f %12.2f\n",
			p.Symbol, p.Qty, p.AvgPrice, p.LastPrice, p.UnrealizedPL)
	}
	fmt.Printf("Market Value: %.2f | Total Equity: %.2f | Unrealized PnL: %.2f\n",
		view.MarketValue, view.Equity, view.UnrealizedPL)

	if len(view.RecentTrades) > 0 {
		fmt.Println("\nRecent Trades:")
		fmt.Printf("%-19s %-6s %6s %12s %12s\n", "TIME", "SYM", "QTY", "PRICE", "CASH IMPL")
		for _, t := range view.RecentTrades {
			fmt.Printf("%-19s %-6s %6d %12.2f %12.2f\n",
				t.Time.Format("2006-01-02 15:04:05"), t.Symbol, t.Qty, t.Price, t.CashImpact())
		}
	}
}

func showHistory(s *engine.Session) {
	history := s.ViewHistory()

	fmt.Println("\n--- Performance History ---")
	fmt.Printf("%-19s %-8s %12s %12s %12s\n", "TIME", "LABEL", "CASH", "MKT VALUE", "EQUITY")
	for _, snap := range history {
		fmt.Printf("%-19s %-8s %12.2f %12.2f %12.2f\n",
			snap.Time.Format("2006-01-02 15:04:05"), truncate(snap.Label, 8),
			snap.Cash, snap.MarketValue, snap.Equity)
	}
	if len(history) == 0 {
		fmt.Println("(No snapshots yet. Use option 6 to record.)")
	}
}

func saveSession(sc *bufio.Scanner, s *engine.Session, defaultDir string) {
	folder := promptFolder(sc, defaultDir)
	if err := s.SaveTo(folder); err != nil {
		fmt.Println("Save failed:", err)
		return
	}
	fmt.Printf("Saved to %q. Files: cash.txt, positions.csv, trades.csv, history.csv, market.csv\n", folder)
}

func loadSession(sc *bufio.Scanner, s *engine.Session, defaultDir string) {
	folder := promptFolder(sc, defaultDir)
	if err := s.LoadFrom(folder); err != nil {
		fmt.Println("Load failed:", err)
		return
	}
	fmt.Printf("Loaded portfolio and logs from %q.\n", folder)
}

func promptFolder(sc *bufio.Scanner, defaultDir string) string {
	fmt.Printf("Folder (default %q): ", defaultDir)
	if !sc.Scan() {
		return defaultDir
	}
	folder := strings.TrimSpace(sc.Text())
	if folder == "" {
		return defaultDir
	}
	return folder
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
