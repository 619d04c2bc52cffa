package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/librarian/librarian-backend/internal/llm"
)

func TestLedger_ComputeZeroUsage(t *testing.T) {
	ledger := NewLedger(DefaultRates())

	b := ledger.Compute(llm.Usage{})

	assert.Zero(t, b.Input)
	assert.Zero(t, b.CacheWrite)
	assert.Zero(t, b.CacheRead)
	assert.Zero(t, b.Output)
	assert.Zero(t, b.Total)
	assert.Zero(t, b.Savings)
	assert.Zero(t, b.SavingsPercent)
}

func TestLedger_ComputeBreakdown(t *testing.T) {
	ledger := NewLedger(DefaultRates())

	b := ledger.Compute(llm.Usage{
		InputTokens:      1000,
		CacheWriteTokens: 0,
		CacheReadTokens:  5000,
		OutputTokens:     200,
	})

	assert.InDelta(t, 0.003, b.Input, 1e-9)
	assert.Zero(t, b.CacheWrite)
	assert.InDelta(t, 0.0015, b.CacheRead, 1e-9)
	assert.InDelta(t, 0.003, b.Output, 1e-9)
	assert.InDelta(t, 0.0075, b.Total, 1e-9)

	// 5000 cache-read tokens at (3.00 - 0.30)/MTok.
	assert.InDelta(t, 0.0135, b.Savings, 1e-9)
	assert.InDelta(t, 0.0135/(0.0075+0.0135)*100, b.SavingsPercent, 1e-9)
}

func TestLedger_ComputeLinearity(t *testing.T) {
	ledger := NewLedger(DefaultRates())

	single := ledger.Compute(llm.Usage{InputTokens: 100})
	double := ledger.Compute(llm.Usage{InputTokens: 200})
	assert.InDelta(t, single.Input*2, double.Input, 1e-9)

	out1 := ledger.Compute(llm.Usage{OutputTokens: 50})
	out3 := ledger.Compute(llm.Usage{OutputTokens: 150})
	assert.InDelta(t, out1.Output*3, out3.Output, 1e-9)
}

func TestLedger_SavingsZeroWithoutCacheReads(t *testing.T) {
	ledger := NewLedger(DefaultRates())

	b := ledger.Compute(llm.Usage{InputTokens: 10000, OutputTokens: 500})

	assert.Zero(t, b.Savings)
	assert.Zero(t, b.SavingsPercent)
	assert.True(t, b.Total > 0)
}

func TestLedger_SavingsPositiveWithCacheReads(t *testing.T) {
	ledger := NewLedger(DefaultRates())

	b := ledger.Compute(llm.Usage{CacheReadTokens: 1})

	assert.True(t, b.Savings > 0)
}

func TestLedger_NegativeCountsTreatedAsZero(t *testing.T) {
	ledger := NewLedger(DefaultRates())

	b := ledger.Compute(llm.Usage{
		InputTokens:      -50,
		CacheWriteTokens: -1,
		CacheReadTokens:  -1000,
		OutputTokens:     -7,
	})

	assert.Zero(t, b.Total)
	assert.Zero(t, b.Savings)
}
