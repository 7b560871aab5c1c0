package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/minhtc/folio/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

type valuationService struct {
	resolver SymbolResolver
	equities PriceFetcher
	crypto   PriceFetcher
	logger   *zap.Logger
	currency string
	now      func() time.Time
}

// NewValuationService wires the resolver and the two price fetchers into the
// portfolio aggregator
func NewValuationService(resolver SymbolResolver, equities, crypto PriceFetcher, logger *zap.Logger) ValuationService {
	return &valuationService{
		resolver: resolver,
		equities: equities,
		crypto:   crypto,
		logger:   logger,
		currency: "EUR",
		now:      time.Now,
	}
}

// BuildSummary joins holdings with resolved prices and computes per-holding
// valuation, portfolio totals and the money-weighted annual return. Any
// single holding whose price cannot be resolved degrades to null-valued
// fields; the summary itself is always produced.
func (s *valuationService) BuildSummary(ctx context.Context, holdings []models.Holding, flows []models.CashFlowItem) *models.PortfolioSummary {
	var equitySymbols []string
	var cryptoHoldings []models.Holding
	for _, h := range holdings {
		switch h.Class {
		case models.AssetClassEquity:
			equitySymbols = append(equitySymbols, h.Symbol)
		case models.AssetClassCrypto:
			cryptoHoldings = append(cryptoHoldings, h)
		}
	}

	coinIDs := s.resolveCoinIDs(ctx, cryptoHoldings)

	var cryptoKeys []string
	for _, id := range coinIDs {
		if id != "" {
			cryptoKeys = append(cryptoKeys, id)
		}
	}

	equityQuotes := s.equities.FetchPrices(ctx, equitySymbols)
	cryptoQuotes := s.crypto.FetchPrices(ctx, cryptoKeys)

	totalValue := decimal.Zero
	totalCost := decimal.Zero

	enriched := make([]models.EnrichedHolding, 0, len(holdings))
	for _, h := range holdings {
		e := models.EnrichedHolding{Holding: h, CostBasis: h.CostBasis()}

		var quote Quote
		switch h.Class {
		case models.AssetClassEquity:
			e.PriceKey = h.Symbol
			quote = equityQuotes[h.Symbol]
		case models.AssetClassCrypto:
			e.PriceKey = coinIDs[h.ID]
			if e.PriceKey != "" {
				quote = cryptoQuotes[e.PriceKey]
			} else {
				quote = quoteUnavailable("symbol not resolved")
			}
		}

		if quote.Available() {
			price := *quote.Price
			value := h.Quantity.Mul(price)
			pnl := value.Sub(e.CostBasis)
			e.Price = &price
			e.CurrentValue = &value
			e.PnL = &pnl
			if !e.CostBasis.IsZero() {
				pct := pnl.Div(e.CostBasis).Mul(oneHundred)
				e.PnLPct = &pct
			}
			totalValue = totalValue.Add(value)
		} else if quote.Reason != "" {
			s.logger.Debug("holding left unpriced",
				zap.String("symbol", h.Symbol),
				zap.String("class", string(h.Class)),
				zap.String("reason", quote.Reason))
		}
		totalCost = totalCost.Add(e.CostBasis)

		enriched = append(enriched, e)
	}

	// Allocation needs the final total, so it is a second pass. Convention:
	// nil when the holding is unpriced or the portfolio has no value, so a
	// zero share stays distinguishable from "unknown".
	for i := range enriched {
		if enriched[i].CurrentValue != nil && totalValue.IsPositive() {
			pct := enriched[i].CurrentValue.Div(totalValue).Mul(oneHundred)
			enriched[i].AllocationPct = &pct
		}
	}

	totals := models.PortfolioTotals{
		TotalValue: totalValue,
		TotalCost:  totalCost,
		TotalPnL:   totalValue.Sub(totalCost),
	}
	if !totalCost.IsZero() {
		pct := totals.TotalPnL.Div(totalCost).Mul(oneHundred)
		totals.TotalPnLPct = &pct
	}

	var irrAnnualPct *float64
	if irr := XIRR(flows); irr != nil {
		pct := *irr * 100
		irrAnnualPct = &pct
	}

	return &models.PortfolioSummary{
		Totals:       totals,
		IRRAnnualPct: irrAnnualPct,
		Holdings:     enriched,
		Currency:     s.currency,
		LastUpdated:  s.now().UTC(),
	}
}

// resolveCoinIDs maps holding id -> provider coin id. A stored external id
// wins; otherwise symbols resolve through the resolver, fanned out since
// each miss may cost a network round trip. Stored ids are filled before any
// goroutine starts so every concurrent map write goes through the mutex.
func (s *valuationService) resolveCoinIDs(ctx context.Context, holdings []models.Holding) map[string]string {
	ids := make(map[string]string, len(holdings))

	var toResolve []models.Holding
	for _, h := range holdings {
		if h.ExternalID != nil && *h.ExternalID != "" {
			ids[h.ID] = *h.ExternalID
			continue
		}
		toResolve = append(toResolve, h)
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, h := range toResolve {
		wg.Add(1)
		go func(h models.Holding) {
			defer wg.Done()
			id := s.resolver.Resolve(ctx, h.Symbol)
			mu.Lock()
			ids[h.ID] = id
			mu.Unlock()
		}(h)
	}
	wg.Wait()

	return ids
}
