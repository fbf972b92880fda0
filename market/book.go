package market

import (
	"math/rand"
	"strings"
)

// Book owns the set of instruments for a session. Lookup is by upper-cased
// symbol; All preserves insertion order for display. Advance steps every
// instrument through the random walk and bumps the tick counter by one.
//
// The Book is not safe for concurrent use; the simulator is strictly
// single-threaded.
type Book struct {
	instruments map[string]*Instrument
	order       []string
	rng         *rand.Rand
	ticks       int64
}

// NewBook creates an empty book driven by the given generator. Tests pass a
// fixed-seed rand.New so price paths are reproducible.
func NewBook(rng *rand.Rand) *Book {
	return &Book{
		instruments: make(map[string]*Instrument),
		rng:         rng,
	}
}

// Add inserts an instrument, or overwrites an existing one with the same
// symbol. An overwrite keeps the original insertion slot.
func (b *Book) Add(inst *Instrument) {
	sym := strings.ToUpper(inst.Symbol)
	inst.Symbol = sym
	if _, ok := b.instruments[sym]; !ok {
		b.order = append(b.order, sym)
	}
	b.instruments[sym] = inst
}

// Get looks up an instrument by symbol, case-insensitively. The comma-ok
// result lets callers decide how to treat a miss.
func (b *Book) Get(symbol string) (*Instrument, bool) {
	inst, ok := b.instruments[strings.ToUpper(symbol)]
	return inst, ok
}

// All returns the instruments in insertion order. Callers must not add or
// remove entries through the returned slice.
func (b *Book) All() []*Instrument {
	out := make([]*Instrument, 0, len(b.order))
	for _, sym := range b.order {
		out = append(out, b.instruments[sym])
	}
	return out
}

// Advance steps every instrument one tick and increments the tick counter
// by exactly one.
func (b *Book) Advance() {
	for _, sym := range b.order {
		b.instruments[sym].Step(b.rng)
	}
	b.ticks++
}

// Ticks returns the number of Advance calls since the book was created.
func (b *Book) Ticks() int64 {
	return b.ticks
}
