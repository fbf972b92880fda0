package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetFill returns a single fill by trade ID.
func (j *SQLite) GetFill(tradeID string) (FillRecord, error) {
	var rec FillRecord

	row := j.db.QueryRow(`
		SELECT trade_id, symbol, qty, price, cash_impact, time
		FROM fills
		WHERE trade_id = ?`, tradeID)

	err := row.Scan(&rec.TradeID, &rec.Symbol, &rec.Qty, &rec.Price, &rec.CashImpact, &rec.Time)
	if err != nil {
		if err == sql.ErrNoRows {
			return FillRecord{}, fmt.Errorf("fill %q not found", tradeID)
		}
		return FillRecord{}, err
	}
	return rec, nil
}

// ListFills returns the fills for one symbol in execution order. An empty
// symbol returns everything.
func (j *SQLite) ListFills(symbol string) ([]FillRecord, error) {
	q := `
		SELECT trade_id, symbol, qty, price, cash_impact, time
		FROM fills
		ORDER BY time ASC`
	args := []any{}
	if symbol != "" {
		q = `
		SELECT trade_id, symbol, qty, price, cash_impact, time
		FROM fills
		WHERE symbol = ?
		ORDER BY time ASC`
		args = append(args, symbol)
	}

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		var rec FillRecord
		if err := rows.Scan(&rec.TradeID, &rec.Symbol, &rec.Qty, &rec.Price, &rec.CashImpact, &rec.Time); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEquityBetween returns equity points with time in [start, end).
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT time, label, cash, market_value, equity
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var rec EquityRecord
		if err := rows.Scan(&rec.Time, &rec.Label, &rec.Cash, &rec.MarketValue, &rec.Equity); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
