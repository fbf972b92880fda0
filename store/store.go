// Package store serializes account and market state to a directory of flat
// files and restores it. Both operations are whole-file, whole-state; there
// is no incremental persistence and no locking against concurrent writers.
//
// The file set is fixed:
//
//	cash.txt       single 2-decimal line
//	positions.csv  symbol,qty,avgPrice
//	trades.csv     time,symbol,qty,price,cashImpact
//	history.csv    time,label,cash,marketValue,equity
//	market.csv     symbol,name,price
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/stocksim/market"
	"github.com/rustyeddy/stocksim/portfolio"
)

var (
	// ErrLocationNotFound reports a Load against a directory that does
	// not exist.
	ErrLocationNotFound = errors.New("save location not found")
	// ErrParse reports a malformed persisted file.
	ErrParse = errors.New("parse")
)

const (
	cashFile      = "cash.txt"
	positionsFile = "positions.csv"
	tradesFile    = "trades.csv"
	historyFile   = "history.csv"
	marketFile    = "market.csv"

	tsLayout = "2006-01-02 15:04:05"
)

// Save writes the five artifacts, creating dir if absent. Files are written
// sequentially, each fully written and closed before the next; a failure
// partway leaves a partial set on disk and is reported, never retried.
func Save(acct *portfolio.Account, book *market.Book, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create save location: %w", err)
	}

	if err := saveCash(acct, filepath.Join(dir, cashFile)); err != nil {
		return err
	}
	if err := savePositions(acct, filepath.Join(dir, positionsFile)); err != nil {
		return err
	}
	if err := saveTrades(acct, filepath.Join(dir, tradesFile)); err != nil {
		return err
	}
	if err := saveHistory(acct, filepath.Join(dir, historyFile)); err != nil {
		return err
	}
	return saveMarket(book, filepath.Join(dir, marketFile))
}

func saveCash(acct *portfolio.Account, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save cash: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%.2f\n", acct.Cash); err != nil {
		return fmt.Errorf("save cash: %w", err)
	}
	return f.Close()
}

func savePositions(acct *portfolio.Account, path string) error {
	return writeCSV(path, "save positions",
		[]string{"symbol", "qty", "avgPrice"},
		func(w *csv.Writer) error {
			for _, sym := range acct.Symbols() {
				p, _ := acct.Position(sym)
				if err := w.Write([]string{sym, strconv.Itoa(p.Qty), f6(p.AvgPrice)}); err != nil {
					return err
				}
			}
			return nil
		})
}

func saveTrades(acct *portfolio.Account, path string) error {
	return writeCSV(path, "save trades",
		[]string{"time", "symbol", "qty", "price", "cashImpact"},
		func(w *csv.Writer) error {
			for _, t := range acct.Trades() {
				row := []string{
					t.Time.Format(tsLayout),
					t.Symbol,
					strconv.Itoa(t.Qty),
					f6(t.Price),
					f6(t.CashImpact()),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
			return nil
		})
}

func saveHistory(acct *portfolio.Account, path string) error {
	return writeCSV(path, "save history",
		[]string{"time", "label", "cash", "marketValue", "equity"},
		func(w *csv.Writer) error {
			for _, s := range acct.Snapshots() {
				row := []string{
					s.Time.Format(tsLayout),
					flatten(s.Label),
					f6(s.Cash),
					f6(s.MarketValue),
					f6(s.Equity),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
			return nil
		})
}

func saveMarket(book *market.Book, path string) error {
	return writeCSV(path, "save market",
		[]string{"symbol", "name", "price"},
		func(w *csv.Writer) error {
			for _, inst := range book.All() {
				if err := w.Write([]string{inst.Symbol, flatten(inst.Name), f6(inst.Price)}); err != nil {
					return err
				}
			}
			return nil
		})
}

// Load restores state from dir. Each artifact is parsed completely before
// any of it is applied, so a failure never leaves the account mutated
// beyond files that already loaded cleanly.
//
// Positions are restored by flattening what is held (cash-neutral sell-out
// at each position's own average cost) and replaying the stored rows as
// synthetic trades. Cash is then restored as a delta through AdjustCash so
// every mutation still flows through the account; the delta runs after the
// replay, making the file's cash value authoritative regardless of what the
// replay moved. Trade and snapshot history are replaced wholesale, never
// merged.
func Load(acct *portfolio.Account, book *market.Book, dir string) error {
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrLocationNotFound, dir)
	}

	if err := loadPositions(acct, filepath.Join(dir, positionsFile)); err != nil {
		return err
	}
	if err := loadCash(acct, filepath.Join(dir, cashFile)); err != nil {
		return err
	}
	if err := loadTrades(acct, filepath.Join(dir, tradesFile)); err != nil {
		return err
	}
	if err := loadHistory(acct, filepath.Join(dir, historyFile)); err != nil {
		return err
	}
	return loadMarket(book, filepath.Join(dir, marketFile))
}

func loadCash(acct *portfolio.Account, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load cash: %w", err)
	}

	line, _, _ := strings.Cut(string(data), "\n")
	cash, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		return fmt.Errorf("%w: %s: %q is not a number", ErrParse, cashFile, strings.TrimSpace(line))
	}

	delta := cash - acct.Cash
	if math.Abs(delta) > 1e-8 {
		acct.AdjustCash(delta)
	}
	return nil
}

func loadPositions(acct *portfolio.Account, path string) error {
	rows, err := readCSV(path, positionsFile, 3)
	if err != nil || rows == nil {
		return err
	}

	type row struct {
		sym string
		qty int
		avg float64
	}
	parsed := make([]row, 0, len(rows))
	for i, rec := range rows {
		qty, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return parseErr(positionsFile, i, "qty", rec[1])
		}
		avg, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return parseErr(positionsFile, i, "avgPrice", rec[2])
		}
		parsed = append(parsed, row{sym: strings.TrimSpace(rec[0]), qty: qty, avg: avg})
	}

	// Flatten what is held: selling each position out at its own average
	// cost is cash-neutral by construction.
	for _, sym := range acct.Symbols() {
		p, _ := acct.Position(sym)
		if p.Qty != 0 {
			acct.Apply(portfolio.Trade{Symbol: sym, Qty: -p.Qty, Price: p.AvgPrice, Time: time.Now()})
		}
	}
	for _, r := range parsed {
		if r.qty != 0 {
			acct.Apply(portfolio.Trade{Symbol: r.sym, Qty: r.qty, Price: r.avg, Time: time.Now()})
		}
	}
	return nil
}

func loadTrades(acct *portfolio.Account, path string) error {
	rows, err := readCSV(path, tradesFile, 5)
	if err != nil || rows == nil {
		return err
	}

	trades := make([]portfolio.Trade, 0, len(rows))
	for i, rec := range rows {
		ts, err := time.ParseInLocation(tsLayout, strings.TrimSpace(rec[0]), time.Local)
		if err != nil {
			return parseErr(tradesFile, i, "time", rec[0])
		}
		qty, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil {
			return parseErr(tradesFile, i, "qty", rec[2])
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if err != nil {
			return parseErr(tradesFile, i, "price", rec[3])
		}
		trades = append(trades, portfolio.Trade{
			Symbol: strings.ToUpper(strings.TrimSpace(rec[1])),
			Qty:    qty,
			Price:  price,
			Time:   ts,
		})
	}

	acct.ReplaceTrades(trades)
	return nil
}

func loadHistory(acct *portfolio.Account, path string) error {
	rows, err := readCSV(path, historyFile, 5)
	if err != nil || rows == nil {
		return err
	}

	snaps := make([]portfolio.Snapshot, 0, len(rows))
	for i, rec := range rows {
		ts, err := time.ParseInLocation(tsLayout, strings.TrimSpace(rec[0]), time.Local)
		if err != nil {
			return parseErr(historyFile, i, "time", rec[0])
		}
		cash, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return parseErr(historyFile, i, "cash", rec[2])
		}
		mv, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if err != nil {
			return parseErr(historyFile, i, "marketValue", rec[3])
		}
		eq, err := strconv.ParseFloat(strings.TrimSpace(rec[4]), 64)
		if err != nil {
			return parseErr(historyFile, i, "equity", rec[4])
		}
		snaps = append(snaps, portfolio.Snapshot{
			Time:        ts,
			Label:       rec[1],
			Cash:        cash,
			MarketValue: mv,
			Equity:      eq,
		})
	}

	acct.ReplaceSnapshots(snaps)
	return nil
}

// loadMarket restores saved prices. A symbol the book already holds keeps
// its volatility and takes the saved price; an unknown symbol is added with
// zero volatility, since volatility is not persisted.
func loadMarket(book *market.Book, path string) error {
	rows, err := readCSV(path, marketFile, 3)
	if err != nil || rows == nil {
		return err
	}

	for i, rec := range rows {
		sym := strings.ToUpper(strings.TrimSpace(rec[0]))
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return parseErr(marketFile, i, "price", rec[2])
		}
		if inst, ok := book.Get(sym); ok {
			inst.Price = price
			continue
		}
		book.Add(market.NewInstrument(sym, rec[1], price, 0))
	}
	return nil
}

// writeCSV opens path, writes the header and rows, and closes the file
// before returning, so each artifact is a fully scoped resource.
func writeCSV(path, op string, header []string, rows func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := rows(w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return f.Close()
}

// readCSV returns the data rows of a persisted file, or nil rows when the
// file does not exist (a missing artifact is not an error on load).
func readCSV(path, name string, wantFields int) ([][]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, name, err)
	}
	if len(records) == 0 {
		return [][]string{}, nil
	}

	rows := records[1:] // drop header
	for i, rec := range rows {
		if len(rec) < wantFields {
			return nil, fmt.Errorf("%w: %s: row %d has %d fields, want %d",
				ErrParse, name, i+1, len(rec), wantFields)
		}
	}
	return rows, nil
}

func parseErr(file string, row int, field, value string) error {
	return fmt.Errorf("%w: %s: row %d: bad %s %q", ErrParse, file, row+1, field, value)
}

func flatten(s string) string {
	return strings.ReplaceAll(s, ",", " ")
}

func f6(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
