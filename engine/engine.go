// Package engine validates and executes market orders against current book
// prices. It is the single state-changing entry point besides persistence
// load; the account itself performs no validation.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/stocksim/internal/id"
	"github.com/rustyeddy/stocksim/journal"
	"github.com/rustyeddy/stocksim/market"
	"github.com/rustyeddy/stocksim/portfolio"
)

// Validation errors. All of them reject the order and leave the account
// untouched.
var (
	ErrUnknownSymbol     = errors.New("unknown symbol")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientFunds = errors.New("insufficient cash")
)

// cashEpsilon absorbs floating-point noise in the cash-sufficiency check.
const cashEpsilon = 1e-6

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// ParseSide maps "buy"/"sell" (any case) to a Side.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown side %q", s)
	}
}

// Order is an ephemeral market-order request, consumed immediately by
// PlaceMarketOrder and never persisted.
type Order struct {
	Symbol string
	Qty    int
	Side   Side
	Time   time.Time
}

// NewOrder builds an order with an upper-cased symbol, stamped now.
func NewOrder(symbol string, qty int, side Side) Order {
	return Order{
		Symbol: strings.ToUpper(symbol),
		Qty:    qty,
		Side:   side,
		Time:   time.Now(),
	}
}

// Engine executes orders against a market book and journals every fill.
type Engine struct {
	book       *market.Book
	journal    journal.Journal
	commission float64 // flat fee per executed order, 0 disables
}

// New creates an engine over the given book. A nil journal disables
// journaling.
func New(book *market.Book, j journal.Journal) *Engine {
	if j == nil {
		j = journal.Nop{}
	}
	return &Engine{book: book, journal: j}
}

// Market exposes the book so callers can list instruments or advance time
// without a back channel.
func (e *Engine) Market() *market.Book {
	return e.book
}

// SetCommission sets a flat per-order fee. The fee participates in the
// cash-sufficiency check and is charged as a cash adjustment after the
// fill, never through the ledger.
func (e *Engine) SetCommission(fee float64) {
	e.commission = fee
}

// PlaceMarketOrder validates the order and executes the full quantity
// atomically at the instrument's current price. No slippage, no partial
// fills. On any validation error the account is left exactly as it was.
//
// Only cash is guarded: a SELL may exceed the held quantity and drive the
// position negative. Long and short positions are both permitted; there is
// no margin model.
func (e *Engine) PlaceMarketOrder(acct *portfolio.Account, o Order) (portfolio.Trade, error) {
	inst, ok := e.book.Get(o.Symbol)
	if !ok {
		return portfolio.Trade{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, o.Symbol)
	}
	if o.Qty <= 0 {
		return portfolio.Trade{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, o.Qty)
	}

	signedQty := o.Qty
	if o.Side == Sell {
		signedQty = -o.Qty
	}

	trade := portfolio.NewTrade(id.New(), o.Symbol, signedQty, inst.Price)

	impact := trade.CashImpact() - e.commission
	if acct.Cash+impact < -cashEpsilon {
		return portfolio.Trade{}, fmt.Errorf("%w: need %.2f, available %.2f",
			ErrInsufficientFunds, -impact, acct.Cash)
	}

	acct.Apply(trade)
	if e.commission != 0 {
		acct.AdjustCash(-e.commission)
	}
	acct.LogTrade(trade)

	// The trade stands even if the audit write fails; the error is
	// surfaced so the caller can report it.
	if err := e.journal.RecordFill(journal.FillRecord{
		TradeID:    trade.ID,
		Symbol:     trade.Symbol,
		Qty:        trade.Qty,
		Price:      trade.Price,
		CashImpact: trade.CashImpact(),
		Time:       trade.Time,
	}); err != nil {
		return trade, fmt.Errorf("journal fill: %w", err)
	}

	return trade, nil
}
