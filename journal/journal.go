// Package journal records executed fills and equity points as they happen.
// It is an audit trail, separate from the store package's whole-state
// save/load.
package journal

import "time"

// FillRecord is one executed market order. Qty is signed, matching the
// portfolio trade it mirrors.
type FillRecord struct {
	TradeID    string
	Symbol     string
	Qty        int
	Price      float64
	CashImpact float64
	Time       time.Time
}

// EquityRecord is one performance point.
type EquityRecord struct {
	Time        time.Time
	Label       string
	Cash        float64
	MarketValue float64
	Equity      float64
}

type Journal interface {
	RecordFill(FillRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}

// Nop discards everything. It is the default when no journal is configured.
type Nop struct{}

func (Nop) RecordFill(FillRecord) error     { return nil }
func (Nop) RecordEquity(EquityRecord) error { return nil }
func (Nop) Close() error                    { return nil }
