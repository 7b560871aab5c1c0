package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EnrichedHolding is a holding joined with its resolved price and derived
// valuation figures. Nil pointer fields mean "unavailable", which is distinct
// from zero: an unpriced holding keeps its cost basis but has no current
// value, P&L or allocation.
type EnrichedHolding struct {
	Holding

	// Key the price was looked up under: the symbol for equities, the
	// provider id for crypto. Empty when resolution failed.
	PriceKey string `json:"price_key"`

	Price         *decimal.Decimal `json:"price"`
	CostBasis     decimal.Decimal  `json:"cost_basis"`
	CurrentValue  *decimal.Decimal `json:"current_value"`
	PnL           *decimal.Decimal `json:"pnl"`
	PnLPct        *decimal.Decimal `json:"pnl_pct"`
	AllocationPct *decimal.Decimal `json:"allocation_pct"`
}

// PortfolioTotals aggregates valuation across all holdings
type PortfolioTotals struct {
	TotalValue  decimal.Decimal  `json:"total_value"`
	TotalCost   decimal.Decimal  `json:"total_cost"`
	TotalPnL    decimal.Decimal  `json:"total_pnl"`
	TotalPnLPct *decimal.Decimal `json:"total_pnl_pct"`
}

// PortfolioSummary is the dashboard payload: totals, per-holding enrichment
// and the money-weighted annual return. Computed on every read, never stored.
type PortfolioSummary struct {
	Totals       PortfolioTotals   `json:"totals"`
	IRRAnnualPct *float64          `json:"irr_annual_pct"`
	Holdings     []EnrichedHolding `json:"holdings"`
	Currency     string            `json:"currency"`
	LastUpdated  time.Time         `json:"last_updated"`
}
