package portfolio

import (
	"sort"
	"time"

	"github.com/rustyeddy/stocksim/market"
)

// DefaultCash is the initial endowment for a fresh account.
const DefaultCash = 100_000.00

// Snapshot is an immutable point-in-time record of account performance.
type Snapshot struct {
	Time        time.Time
	Label       string
	Cash        float64
	MarketValue float64
	Equity      float64
}

// Account aggregates the cash balance, the per-symbol ledger, the trade
// history and the performance snapshots of the single user. It owns all of
// them exclusively.
//
// Apply and AdjustCash are unconditional mutations; validation belongs to
// the execution engine.
type Account struct {
	Cash float64

	positions map[string]*Position
	trades    []Trade
	snapshots []Snapshot
}

// NewAccount creates an account with the given starting cash.
func NewAccount(cash float64) *Account {
	return &Account{
		Cash:      cash,
		positions: make(map[string]*Position),
	}
}

// Apply moves the trade's cash impact and folds the trade into the ledger,
// creating the position on first reference. A position whose quantity lands
// on zero is removed, so no zero-quantity entries linger.
//
// Apply performs no validation and does not log the trade; callers must
// pre-validate and call LogTrade themselves.
func (a *Account) Apply(t Trade) {
	a.Cash += t.CashImpact()

	p, ok := a.positions[t.Symbol]
	if !ok {
		p = &Position{}
		a.positions[t.Symbol] = p
	}
	p.apply(t)
	if p.Qty == 0 {
		delete(a.positions, t.Symbol)
	}
}

// AdjustCash applies a signed, symbol-less cash movement such as a
// commission or a persistence cash delta. It never touches the ledger.
func (a *Account) AdjustCash(delta float64) {
	a.Cash += delta
}

// LogTrade appends a trade to the account's history.
func (a *Account) LogTrade(t Trade) {
	a.trades = append(a.trades, t)
}

// Trades returns the full trade history, oldest first.
func (a *Account) Trades() []Trade {
	return a.trades
}

// RecentTrades returns up to n of the most recent trades, oldest first.
func (a *Account) RecentTrades(n int) []Trade {
	if n >= len(a.trades) {
		return a.trades
	}
	return a.trades[len(a.trades)-n:]
}

// ReplaceTrades discards the current trade history and installs the given
// one wholesale. Used by persistence load; history is replaced, not merged.
func (a *Account) ReplaceTrades(trades []Trade) {
	a.trades = trades
}

// Position returns a copy of the position for symbol, if any.
func (a *Account) Position(symbol string) (Position, bool) {
	p, ok := a.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Symbols returns the held symbols in sorted order for deterministic
// display and persistence.
func (a *Account) Symbols() []string {
	syms := make([]string, 0, len(a.positions))
	for sym := range a.positions {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}

// MarketValue sums qty*price over every held position at current book
// prices. A symbol the book does not know contributes zero; it is silently
// excluded from valuation rather than treated as an error.
func (a *Account) MarketValue(b *market.Book) float64 {
	var val float64
	for sym, p := range a.positions {
		if inst, ok := b.Get(sym); ok {
			val += float64(p.Qty) * inst.Price
		}
	}
	return val
}

// TotalEquity is cash plus market value.
func (a *Account) TotalEquity(b *market.Book) float64 {
	return a.Cash + a.MarketValue(b)
}

// UnrealizedPL is the total open profit across positions at current book
// prices. A position whose symbol is missing from the book is marked at its
// own average cost, contributing zero.
func (a *Account) UnrealizedPL(b *market.Book) float64 {
	var pl float64
	for sym, p := range a.positions {
		last := p.AvgPrice
		if inst, ok := b.Get(sym); ok {
			last = inst.Price
		}
		pl += p.UnrealizedPL(last)
	}
	return pl
}

// RecordSnapshot appends a performance snapshot at current book prices,
// stamped now. The label is stored as given.
func (a *Account) RecordSnapshot(b *market.Book, label string) Snapshot {
	s := Snapshot{
		Time:        time.Now(),
		Label:       label,
		Cash:        a.Cash,
		MarketValue: a.MarketValue(b),
		Equity:      a.TotalEquity(b),
	}
	a.snapshots = append(a.snapshots, s)
	return s
}

// Snapshots returns the snapshot history, oldest first.
func (a *Account) Snapshots() []Snapshot {
	return a.snapshots
}

// ReplaceSnapshots discards the current snapshot history and installs the
// given one wholesale. Used by persistence load.
func (a *Account) ReplaceSnapshots(snaps []Snapshot) {
	a.snapshots = snaps
}
