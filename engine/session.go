package engine

import (
	"fmt"

	"github.com/rustyeddy/stocksim/journal"
	"github.com/rustyeddy/stocksim/market"
	"github.com/rustyeddy/stocksim/portfolio"
	"github.com/rustyeddy/stocksim/store"
)

// recentTradeWindow bounds the trade list in the account view.
const recentTradeWindow = 10

// Session ties the engine to the single user's account and exposes the
// operations the interactive layer needs. Every method runs to completion
// before the next is issued; there is no concurrency to coordinate.
type Session struct {
	engine *Engine
	acct   *portfolio.Account
}

func NewSession(e *Engine, acct *portfolio.Account) *Session {
	return &Session{engine: e, acct: acct}
}

// Account returns the session's account.
func (s *Session) Account() *portfolio.Account {
	return s.acct
}

// Market returns the session's book.
func (s *Session) Market() *market.Book {
	return s.engine.Market()
}

// ListInstruments returns the tradable instruments in display order.
func (s *Session) ListInstruments() []*market.Instrument {
	return s.engine.Market().All()
}

// PlaceOrder executes a market order for the session's account.
func (s *Session) PlaceOrder(symbol string, qty int, side Side) (portfolio.Trade, error) {
	return s.engine.PlaceMarketOrder(s.acct, NewOrder(symbol, qty, side))
}

// AdvanceMarket moves every instrument one tick.
func (s *Session) AdvanceMarket() {
	s.engine.Market().Advance()
}

// RecordSnapshot captures a performance point and journals it.
func (s *Session) RecordSnapshot(label string) error {
	snap := s.acct.RecordSnapshot(s.engine.Market(), label)
	if err := s.engine.journal.RecordEquity(journal.EquityRecord{
		Time:        snap.Time,
		Label:       snap.Label,
		Cash:        snap.Cash,
		MarketValue: snap.MarketValue,
		Equity:      snap.Equity,
	}); err != nil {
		return fmt.Errorf("journal equity: %w", err)
	}
	return nil
}

// ViewHistory returns the snapshot history, oldest first.
func (s *Session) ViewHistory() []portfolio.Snapshot {
	return s.acct.Snapshots()
}

// SaveTo persists the account and market state to a directory.
func (s *Session) SaveTo(path string) error {
	return store.Save(s.acct, s.engine.Market(), path)
}

// LoadFrom restores account and market state from a directory.
func (s *Session) LoadFrom(path string) error {
	return store.Load(s.acct, s.engine.Market(), path)
}

// PositionView is one ledger row marked at the current book price. When
// the book no longer knows the symbol the position is marked at its own
// average cost, so its open P&L reads zero.
type PositionView struct {
	Symbol       string
	Qty          int
	AvgPrice     float64
	LastPrice    float64
	UnrealizedPL float64
}

// AccountView is a point-in-time rendering of the account for display.
type AccountView struct {
	Cash         float64
	Positions    []PositionView
	MarketValue  float64
	Equity       float64
	UnrealizedPL float64
	RecentTrades []portfolio.Trade
}

// ViewAccount assembles the account view at current book prices. Positions
// appear in sorted symbol order.
func (s *Session) ViewAccount() AccountView {
	book := s.engine.Market()

	view := AccountView{
		Cash:         s.acct.Cash,
		MarketValue:  s.acct.MarketValue(book),
		Equity:       s.acct.TotalEquity(book),
		RecentTrades: s.acct.RecentTrades(recentTradeWindow),
	}

	for _, sym := range s.acct.Symbols() {
		p, _ := s.acct.Position(sym)
		last := p.AvgPrice
		if inst, ok := book.Get(sym); ok {
			last = inst.Price
		}
		pl := p.UnrealizedPL(last)
		view.UnrealizedPL += pl
		view.Positions = append(view.Positions, PositionView{
			Symbol:       sym,
			Qty:          p.Qty,
			AvgPrice:     p.AvgPrice,
			LastPrice:    last,
			UnrealizedPL: pl,
		})
	}

	return view
}
