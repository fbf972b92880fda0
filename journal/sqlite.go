package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite keeps the journal in a single-file database so sessions can be
// queried after the fact.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordFill(r FillRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO fills (trade_id, symbol, qty, price, cash_impact, time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.TradeID, r.Symbol, r.Qty, r.Price, r.CashImpact, r.Time,
	)
	return err
}

func (j *SQLite) RecordEquity(r EquityRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (time, label, cash, market_value, equity)
		VALUES (?, ?, ?, ?, ?)`,
		r.Time, r.Label, r.Cash, r.MarketValue, r.Equity,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
