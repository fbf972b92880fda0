package market

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepZeroVolIsNoOp(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	inst := NewInstrument("X", "Test Co.", 100.00, 0)

	for i := 0; i < 100; i++ {
		inst.Step(rng)
	}
	assert.Equal(t, 100.00, inst.Price, "zero volatility must leave price untouched")
}

func TestStepNeverGoesBelowFloor(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	inst := NewInstrument("PENNY", "Penny Stock", 0.02, 2.5)

	for i := 0; i < 10_000; i++ {
		inst.Step(rng)
		if inst.Price < PriceFloor {
			t.Fatalf("price %.6f fell below floor at step %d", inst.Price, i)
		}
	}
}

func TestNewInstrumentNormalizesSymbol(t *testing.T) {
	inst := NewInstrument("msft", "Microsoft Corp.", 340.00, 0.012)
	assert.Equal(t, "MSFT", inst.Symbol)
	assert.Equal(t, "MSFT (Microsoft Corp.) @ 340.00", inst.String())
}
