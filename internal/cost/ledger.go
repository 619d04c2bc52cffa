// Package cost computes monetary cost and cache-derived savings from model
// token usage.
package cost

import (
	"github.com/librarian/librarian-backend/internal/llm"
)

// Rates holds per-million-token prices for each usage category. Cache writes
// are priced above fresh input (write overhead); cache reads well below it.
type Rates struct {
	InputPerMTok      float64 `json:"input_per_mtok"`
	CacheWritePerMTok float64 `json:"cache_write_per_mtok"`
	CacheReadPerMTok  float64 `json:"cache_read_per_mtok"`
	OutputPerMTok     float64 `json:"output_per_mtok"`
}

// DefaultRates mirrors Claude Sonnet pricing.
func DefaultRates() Rates {
	return Rates{
		InputPerMTok:      3.00,
		CacheWritePerMTok: 3.75,
		CacheReadPerMTok:  0.30,
		OutputPerMTok:     15.00,
	}
}

// Breakdown is the per-request cost attribution. Savings is what the cache
// reads would have cost at the fresh-input rate minus what they actually
// cost; it is zero exactly when no tokens were read from cache.
type Breakdown struct {
	Input          float64 `json:"input"`
	CacheWrite     float64 `json:"cache_write"`
	CacheRead      float64 `json:"cache_read"`
	Output         float64 `json:"output"`
	Total          float64 `json:"total"`
	Savings        float64 `json:"savings"`
	SavingsPercent float64 `json:"savings_percentage"`
}

// Ledger prices usage records against a fixed rate table.
type Ledger struct {
	rates Rates
}

// NewLedger creates a ledger with the given rates.
func NewLedger(rates Rates) *Ledger {
	return &Ledger{rates: rates}
}

// Rates returns the configured rate table.
func (l *Ledger) Rates() Rates {
	return l.rates
}

// Compute prices a usage record. Negative counts are treated as zero, so the
// result is always a valid, non-negative breakdown.
func (l *Ledger) Compute(usage llm.Usage) Breakdown {
	input := clampTokens(usage.InputTokens)
	cacheWrite := clampTokens(usage.CacheWriteTokens)
	cacheRead := clampTokens(usage.CacheReadTokens)
	output := clampTokens(usage.OutputTokens)

	b := Breakdown{
		Input:      tokenCost(input, l.rates.InputPerMTok),
		CacheWrite: tokenCost(cacheWrite, l.rates.CacheWritePerMTok),
		CacheRead:  tokenCost(cacheRead, l.rates.CacheReadPerMTok),
		Output:     tokenCost(output, l.rates.OutputPerMTok),
	}
	b.Total = b.Input + b.CacheWrite + b.CacheRead + b.Output

	if cacheRead > 0 {
		wouldHavePaid := tokenCost(cacheRead, l.rates.InputPerMTok)
		b.Savings = wouldHavePaid - b.CacheRead
		if b.Savings < 0 {
			b.Savings = 0
		}
	}
	if b.Savings > 0 {
		b.SavingsPercent = b.Savings / (b.Total + b.Savings) * 100
	}

	return b
}

func tokenCost(tokens int, ratePerMTok float64) float64 {
	return float64(tokens) * ratePerMTok / 1_000_000
}

func clampTokens(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
