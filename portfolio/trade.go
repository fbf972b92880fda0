package portfolio

import (
	"strings"
	"time"
)

// Trade is an immutable record of a fill. Qty is signed: positive means
// bought, negative means sold. Price is the instrument's price at the
// execution instant. Trades are append-only history once created.
type Trade struct {
	ID     string
	Symbol string
	Qty    int
	Price  float64
	Time   time.Time
}

// NewTrade builds a trade with an upper-cased symbol, stamped now.
func NewTrade(id, symbol string, signedQty int, price float64) Trade {
	return Trade{
		ID:     id,
		Symbol: strings.ToUpper(symbol),
		Qty:    signedQty,
		Price:  price,
		Time:   time.Now(),
	}
}

// CashImpact is the signed cash movement of the trade: negative when
// buying, positive inflow when selling.
func (t Trade) CashImpact() float64 {
	return -float64(t.Qty) * t.Price
}
