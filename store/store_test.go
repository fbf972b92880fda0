package store

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stocksim/market"
	"github.com/rustyeddy/stocksim/portfolio"
)

func seededBook() *market.Book {
	b := market.NewBook(rand.New(rand.NewSource(1)))
	b.Add(market.NewInstrument("AAPL", "Apple Inc.", 190.00, 0.015))
	b.Add(market.NewInstrument("MSFT", "Microsoft Corp.", 340.00, 0.012))
	return b
}

func TestSaveWritesAllArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "save")
	book := seededBook()
	acct := portfolio.NewAccount(portfolio.DefaultCash)

	tr := portfolio.NewTrade("T1", "AAPL", 10, 190)
	acct.Apply(tr)
	acct.LogTrade(tr)
	acct.RecordSnapshot(book, "INIT, with comma")

	require.NoError(t, Save(acct, book, dir))

	for _, name := range []string{"cash.txt", "positions.csv", "trades.csv", "history.csv", "market.csv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	cash, err := os.ReadFile(filepath.Join(dir, "cash.txt"))
	require.NoError(t, err)
	assert.Equal(t, "98100.00\n", string(cash))

	positions, err := os.ReadFile(filepath.Join(dir, "positions.csv"))
	require.NoError(t, err)
	assert.Equal(t, "symbol,qty,avgPrice\nAAPL,10,190.000000\n", string(positions))

	history, err := os.ReadFile(filepath.Join(dir, "history.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(history), "INIT  with comma", "label commas become spaces")
}

func TestRoundTripIntoFreshAccount(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "save")
	book := seededBook()

	acct := portfolio.NewAccount(portfolio.DefaultCash)
	for _, tr := range []portfolio.Trade{
		portfolio.NewTrade("T1", "AAPL", 10, 100),
		portfolio.NewTrade("T2", "AAPL", 10, 120),
		portfolio.NewTrade("T3", "MSFT", 5, 340),
	} {
		acct.Apply(tr)
		acct.LogTrade(tr)
	}
	acct.RecordSnapshot(book, "T0")
	require.NoError(t, Save(acct, book, dir))

	fresh := portfolio.NewAccount(portfolio.DefaultCash)
	freshBook := seededBook()
	require.NoError(t, Load(fresh, freshBook, dir))

	assert.InDelta(t, acct.Cash, fresh.Cash, 1e-6)
	assert.Equal(t, acct.Symbols(), fresh.Symbols())
	for _, sym := range acct.Symbols() {
		want, _ := acct.Position(sym)
		got, ok := fresh.Position(sym)
		require.True(t, ok, sym)
		assert.Equal(t, want.Qty, got.Qty, sym)
		assert.InDelta(t, want.AvgPrice, got.AvgPrice, 1e-6, sym)
	}

	require.Len(t, fresh.Trades(), 3)
	assert.Equal(t, "AAPL", fresh.Trades()[0].Symbol)
	require.Len(t, fresh.Snapshots(), 1)
	assert.Equal(t, "T0", fresh.Snapshots()[0].Label)
}

func TestLoadSetsCashToFileValueNotSum(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "save")
	book := seededBook()

	acct := portfolio.NewAccount(500.00)
	tr := portfolio.NewTrade("T1", "AAPL", 1, 100)
	// Keep one position but force cash to exactly 500 afterwards.
	acct.Apply(tr)
	acct.LogTrade(tr)
	acct.AdjustCash(100)
	require.InDelta(t, 500.00, acct.Cash, 1e-9)
	require.NoError(t, Save(acct, book, dir))

	fresh := portfolio.NewAccount(portfolio.DefaultCash)
	require.NoError(t, Load(fresh, seededBook(), dir))

	assert.InDelta(t, 500.00, fresh.Cash, 1e-6,
		"loaded cash must be the file value, not default plus file value")
}

func TestLoadReplacesExistingPositionsCashNeutrally(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "save")
	book := seededBook()

	saved := portfolio.NewAccount(portfolio.DefaultCash)
	tr := portfolio.NewTrade("T1", "AAPL", 10, 100)
	saved.Apply(tr)
	saved.LogTrade(tr)
	require.NoError(t, Save(saved, book, dir))

	// The target account holds something else entirely.
	target := portfolio.NewAccount(portfolio.DefaultCash)
	target.Apply(portfolio.NewTrade("X1", "MSFT", 3, 340))
	require.NoError(t, Load(target, seededBook(), dir))

	_, hasMSFT := target.Position("MSFT")
	assert.False(t, hasMSFT, "pre-load positions are flattened out")
	p, ok := target.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, 10, p.Qty)
	assert.InDelta(t, 100.0, p.AvgPrice, 1e-6)
	assert.InDelta(t, saved.Cash, target.Cash, 1e-6)
}

func TestLoadMissingDirectory(t *testing.T) {
	acct := portfolio.NewAccount(portfolio.DefaultCash)
	err := Load(acct, seededBook(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrLocationNotFound)
	assert.InDelta(t, portfolio.DefaultCash, acct.Cash, 1e-9, "state untouched on failure")
}

func TestLoadParseErrorLeavesArtifactUnapplied(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "positions.csv"),
		[]byte("symbol,qty,avgPrice\nAAPL,ten,190.0\n"), 0o644))

	acct := portfolio.NewAccount(portfolio.DefaultCash)
	acct.Apply(portfolio.NewTrade("X1", "MSFT", 3, 340))
	cashBefore := acct.Cash

	err := Load(acct, seededBook(), dir)
	assert.ErrorIs(t, err, ErrParse)

	// The malformed file must not have flattened or replayed anything.
	p, ok := acct.Position("MSFT")
	require.True(t, ok)
	assert.Equal(t, 3, p.Qty)
	assert.InDelta(t, cashBefore, acct.Cash, 1e-9)
}

func TestLoadBadCash(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cash.txt"), []byte("lots\n"), 0o644))

	err := Load(portfolio.NewAccount(portfolio.DefaultCash), seededBook(), dir)
	assert.ErrorIs(t, err, ErrParse)
}

func TestLoadRestoresMarketPrices(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "save")
	book := seededBook()
	inst, _ := book.Get("AAPL")
	inst.Price = 212.34

	acct := portfolio.NewAccount(portfolio.DefaultCash)
	require.NoError(t, Save(acct, book, dir))

	freshBook := seededBook()
	require.NoError(t, Load(portfolio.NewAccount(portfolio.DefaultCash), freshBook, dir))

	got, ok := freshBook.Get("AAPL")
	require.True(t, ok)
	assert.InDelta(t, 212.34, got.Price, 1e-6)
	assert.Equal(t, 0.015, got.Vol, "existing instrument keeps its volatility")
}

func TestSaveLoadMarketNameWithComma(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "save")
	book := market.NewBook(rand.New(rand.NewSource(1)))
	book.Add(market.NewInstrument("BRK", "Berkshire Hathaway, Inc.", 600000, 0.01))

	require.NoError(t, Save(portfolio.NewAccount(0), book, dir))

	data, err := os.ReadFile(filepath.Join(dir, "market.csv"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "Berkshire Hathaway  Inc."),
		"name commas become spaces: %s", data)

	freshBook := market.NewBook(rand.New(rand.NewSource(1)))
	require.NoError(t, Load(portfolio.NewAccount(0), freshBook, dir))
	inst, ok := freshBook.Get("BRK")
	require.True(t, ok)
	assert.Equal(t, "Berkshire Hathaway  Inc.", inst.Name)
}
