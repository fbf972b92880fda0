package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionAverageCostTwoBuys(t *testing.T) {
	var p Position
	p.apply(Trade{Symbol: "AAPL", Qty: 10, Price: 100})
	p.apply(Trade{Symbol: "AAPL", Qty: 30, Price: 120})

	assert.Equal(t, 40, p.Qty)
	want := (10*100.0 + 30*120.0) / 40.0
	assert.InDelta(t, want, p.AvgPrice, 1e-9)
}

func TestPositionSellLeavesAverageUnchanged(t *testing.T) {
	var p Position
	p.apply(Trade{Symbol: "AAPL", Qty: 10, Price: 100})
	p.apply(Trade{Symbol: "AAPL", Qty: 10, Price: 150})
	avg := p.AvgPrice

	p.apply(Trade{Symbol: "AAPL", Qty: -5, Price: 200})
	assert.Equal(t, 15, p.Qty)
	assert.Equal(t, avg, p.AvgPrice, "selling must not reprice the remainder")
}

func TestPositionFlatResetsAverage(t *testing.T) {
	var p Position
	p.apply(Trade{Symbol: "AAPL", Qty: 10, Price: 100})
	p.apply(Trade{Symbol: "AAPL", Qty: -10, Price: 130})

	assert.Equal(t, 0, p.Qty)
	assert.Equal(t, 0.0, p.AvgPrice)
}

func TestPositionUnrealizedPL(t *testing.T) {
	p := Position{Qty: 10, AvgPrice: 100}
	assert.InDelta(t, 250.0, p.UnrealizedPL(125), 1e-9)
	assert.InDelta(t, -100.0, p.UnrealizedPL(90), 1e-9)
}
