package market

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// PriceFloor is the lowest price an instrument can reach. The random walk
// clamps here instead of letting a price go to zero or negative.
const PriceFloor = 0.01

// Instrument is a tradable synthetic security. Price is the last traded
// price and is only mutated by Step. Vol is a daily-ish volatility proxy
// (0.01 = 1%) fixed at creation.
type Instrument struct {
	Symbol string
	Name   string
	Price  float64
	Vol    float64
}

// NewInstrument builds an instrument with an upper-cased symbol.
func NewInstrument(symbol, name string, price, vol float64) *Instrument {
	return &Instrument{
		Symbol: strings.ToUpper(symbol),
		Name:   name,
		Price:  price,
		Vol:    vol,
	}
}

// Step advances the price one discrete step of a geometric random walk
// (geometric Brownian motion approximation):
//
//	r = mu*dt + vol*z*sqrt(dt)   with dt=1, mu=0, z ~ N(0,1)
//	price = max(PriceFloor, price*exp(r))
//
// The generator is injected so a fixed seed reproduces the same path.
func (inst *Instrument) Step(rng *rand.Rand) {
	const (
		dt = 1.0
		mu = 0.0
	)
	shock := rng.NormFloat64() * math.Sqrt(dt)
	ret := mu*dt + inst.Vol*shock
	inst.Price = math.Max(PriceFloor, inst.Price*math.Exp(ret))
}

func (inst *Instrument) String() string {
	return fmt.Sprintf("%s (%s) @ %.2f", inst.Symbol, inst.Name, inst.Price)
}
