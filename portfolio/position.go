package portfolio

// Position is the net held quantity and volume-weighted average cost basis
// for one symbol. A sell never reprices the remainder; only buys move
// AvgPrice.
type Position struct {
	Qty      int
	AvgPrice float64
}

// apply folds one trade into the position. Buys blend the average cost:
//
//	avg' = (avg*qty + price*tradeQty) / (qty+tradeQty)
//
// Sells reduce quantity and leave AvgPrice unchanged for what remains.
// When the quantity lands exactly on zero the average resets to zero; the
// account removes the entry entirely at that point.
func (p *Position) apply(t Trade) {
	if t.Qty > 0 {
		cost := p.AvgPrice*float64(p.Qty) + t.Price*float64(t.Qty)
		p.Qty += t.Qty
		if p.Qty == 0 {
			p.AvgPrice = 0
		} else {
			p.AvgPrice = cost / float64(p.Qty)
		}
		return
	}
	p.Qty += t.Qty
	if p.Qty == 0 {
		p.AvgPrice = 0
	}
}

// UnrealizedPL is the open profit against a mark price.
func (p Position) UnrealizedPL(lastPrice float64) float64 {
	return (lastPrice - p.AvgPrice) * float64(p.Qty)
}
