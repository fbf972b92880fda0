package portfolio

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stocksim/market"
)

func testBook(t *testing.T) *market.Book {
	t.Helper()
	b := market.NewBook(rand.New(rand.NewSource(1)))
	b.Add(market.NewInstrument("AAPL", "Apple Inc.", 190.00, 0))
	b.Add(market.NewInstrument("MSFT", "Microsoft Corp.", 340.00, 0))
	return b
}

func TestAccountApplyMovesCashAndLedger(t *testing.T) {
	a := NewAccount(10_000)
	a.Apply(Trade{Symbol: "AAPL", Qty: 10, Price: 190})

	assert.InDelta(t, 10_000-1900, a.Cash, 1e-9)
	p, ok := a.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, 10, p.Qty)
	assert.InDelta(t, 190.0, p.AvgPrice, 1e-9)
}

func TestAccountFlatPositionIsRemoved(t *testing.T) {
	a := NewAccount(10_000)
	a.Apply(Trade{Symbol: "AAPL", Qty: 10, Price: 100})
	a.Apply(Trade{Symbol: "AAPL", Qty: -10, Price: 100})

	_, ok := a.Position("AAPL")
	assert.False(t, ok, "flat position must not linger in the ledger")
	assert.InDelta(t, 10_000, a.Cash, 1e-9)
	assert.Empty(t, a.Symbols())
}

func TestAccountAdjustCashSkipsLedger(t *testing.T) {
	a := NewAccount(500)
	a.AdjustCash(-12.5)
	a.AdjustCash(100)

	assert.InDelta(t, 587.5, a.Cash, 1e-9)
	assert.Empty(t, a.Symbols())
	assert.Empty(t, a.Trades())
}

func TestAccountMarketValueSkipsUnknownSymbols(t *testing.T) {
	b := testBook(t)
	a := NewAccount(0)
	a.Apply(Trade{Symbol: "AAPL", Qty: 10, Price: 150})
	a.Apply(Trade{Symbol: "GONE", Qty: 5, Price: 50})

	// GONE is not in the book: it contributes nothing to valuation.
	assert.InDelta(t, 10*190.0, a.MarketValue(b), 1e-9)
	assert.InDelta(t, a.Cash+10*190.0, a.TotalEquity(b), 1e-9)
}

func TestAccountUnrealizedPL(t *testing.T) {
	b := testBook(t)
	a := NewAccount(100_000)
	a.Apply(Trade{Symbol: "AAPL", Qty: 10, Price: 150})

	// Marked at book price 190 against cost 150.
	assert.InDelta(t, 10*(190.0-150.0), a.UnrealizedPL(b), 1e-9)
}

func TestAccountSymbolsSorted(t *testing.T) {
	a := NewAccount(100_000)
	a.Apply(Trade{Symbol: "MSFT", Qty: 1, Price: 1})
	a.Apply(Trade{Symbol: "AAPL", Qty: 1, Price: 1})
	a.Apply(Trade{Symbol: "GOOG", Qty: 1, Price: 1})

	assert.Equal(t, []string{"AAPL", "GOOG", "MSFT"}, a.Symbols())
}

func TestAccountRecentTrades(t *testing.T) {
	a := NewAccount(100_000)
	for i := 0; i < 15; i++ {
		tr := Trade{Symbol: "AAPL", Qty: 1, Price: float64(i)}
		a.Apply(tr)
		a.LogTrade(tr)
	}

	recent := a.RecentTrades(10)
	require.Len(t, recent, 10)
	assert.Equal(t, 5.0, recent[0].Price, "oldest of the recent window")
	assert.Equal(t, 14.0, recent[9].Price)

	assert.Len(t, a.RecentTrades(100), 15)
}

func TestAccountSnapshotCapturesCurrentState(t *testing.T) {
	b := testBook(t)
	a := NewAccount(100_000)
	a.Apply(Trade{Symbol: "AAPL", Qty: 10, Price: 190})

	s := a.RecordSnapshot(b, "T0")
	assert.Equal(t, "T0", s.Label)
	assert.InDelta(t, a.Cash, s.Cash, 1e-9)
	assert.InDelta(t, 1900.0, s.MarketValue, 1e-9)
	assert.InDelta(t, s.Cash+s.MarketValue, s.Equity, 1e-9)
	require.Len(t, a.Snapshots(), 1)
}

func TestAccountReplaceHistoryWholesale(t *testing.T) {
	a := NewAccount(100_000)
	a.LogTrade(Trade{Symbol: "AAPL", Qty: 1, Price: 10})
	a.RecordSnapshot(testBook(t), "OLD")

	a.ReplaceTrades([]Trade{{Symbol: "MSFT", Qty: 2, Price: 20}})
	a.ReplaceSnapshots([]Snapshot{{Label: "NEW"}})

	require.Len(t, a.Trades(), 1)
	assert.Equal(t, "MSFT", a.Trades()[0].Symbol)
	require.Len(t, a.Snapshots(), 1)
	assert.Equal(t, "NEW", a.Snapshots()[0].Label)
}
