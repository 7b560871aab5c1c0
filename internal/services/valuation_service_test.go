package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/minhtc/folio/internal/models"
)

type stubResolver struct {
	ids map[string]string
}

func (r *stubResolver) Resolve(_ context.Context, symbol string) string {
	return r.ids[symbol]
}

type stubFetcher struct {
	quotes map[string]Quote
	calls  [][]string
}

func (f *stubFetcher) FetchPrices(_ context.Context, keys []string) map[string]Quote {
	f.calls = append(f.calls, keys)
	out := make(map[string]Quote, len(keys))
	for _, k := range keys {
		if q, ok := f.quotes[k]; ok {
			out[k] = q
		} else {
			out[k] = quoteUnavailable("no quote configured")
		}
	}
	return out
}

func priced(price float64) Quote {
	return quoteOK(decimal.NewFromFloat(price), time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
}

func newTestValuation(resolver SymbolResolver, equities, crypto PriceFetcher) *valuationService {
	return &valuationService{
		resolver: resolver,
		equities: equities,
		crypto:   crypto,
		logger:   zap.NewNop(),
		currency: "EUR",
		now:      func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) },
	}
}

func holding(id string, class models.AssetClass, symbol string, qty, avgCost float64) models.Holding {
	return models.Holding{
		ID:          id,
		UserID:      "user-1",
		Class:       class,
		Symbol:      symbol,
		Quantity:    decimal.NewFromFloat(qty),
		AverageCost: decimal.NewFromFloat(avgCost),
	}
}

func TestBuildSummary_PricedPortfolio(t *testing.T) {
	resolver := &stubResolver{ids: map[string]string{"BTC": "bitcoin"}}
	equities := &stubFetcher{quotes: map[string]Quote{"AAPL": priced(200)}}
	crypto := &stubFetcher{quotes: map[string]Quote{"bitcoin": priced(50000)}}
	svc := newTestValuation(resolver, equities, crypto)

	holdings := []models.Holding{
		holding("h1", models.AssetClassEquity, "AAPL", 10, 150),
		holding("h2", models.AssetClassCrypto, "BTC", 0.5, 40000),
	}

	summary := svc.BuildSummary(context.Background(), holdings, nil)
	require.Len(t, summary.Holdings, 2)

	aapl := summary.Holdings[0]
	require.NotNil(t, aapl.Price)
	assert.Equal(t, "AAPL", aapl.PriceKey)
	assert.True(t, aapl.CurrentValue.Equal(decimal.NewFromInt(2000)))
	assert.True(t, aapl.PnL.Equal(decimal.NewFromInt(500)))
	require.NotNil(t, aapl.PnLPct)
	assert.InDelta(t, 100.0/3, aapl.PnLPct.InexactFloat64(), 1e-9)

	btc := summary.Holdings[1]
	assert.Equal(t, "bitcoin", btc.PriceKey)
	assert.True(t, btc.CurrentValue.Equal(decimal.NewFromInt(25000)))
	assert.True(t, btc.PnL.Equal(decimal.NewFromInt(5000)))

	assert.True(t, summary.Totals.TotalValue.Equal(decimal.NewFromInt(27000)))
	assert.True(t, summary.Totals.TotalCost.Equal(decimal.NewFromInt(21500)))
	assert.True(t, summary.Totals.TotalPnL.Equal(decimal.NewFromInt(5500)))
	assert.Equal(t, "EUR", summary.Currency)
	assert.Equal(t, time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), summary.LastUpdated)
}

func TestBuildSummary_TotalsIdentity(t *testing.T) {
	// total_pnl must equal the sum of per-holding pnl when all are priced
	resolver := &stubResolver{ids: map[string]string{}}
	equities := &stubFetcher{quotes: map[string]Quote{
		"AAPL": priced(180),
		"MSFT": priced(410),
	}}
	svc := newTestValuation(resolver, equities, &stubFetcher{})

	holdings := []models.Holding{
		holding("h1", models.AssetClassEquity, "AAPL", 3, 120),
		holding("h2", models.AssetClassEquity, "MSFT", 2, 395),
	}

	summary := svc.BuildSummary(context.Background(), holdings, nil)

	sum := decimal.Zero
	for _, h := range summary.Holdings {
		require.NotNil(t, h.PnL)
		sum = sum.Add(*h.PnL)
	}
	assert.True(t, summary.Totals.TotalPnL.Equal(sum))
}

func TestBuildSummary_UnpricedHoldingDegrades(t *testing.T) {
	// One failing symbol must not poison the others, and its cost basis still
	// counts toward total cost.
	resolver := &stubResolver{ids: map[string]string{}}
	equities := &stubFetcher{quotes: map[string]Quote{"AAPL": priced(200)}}
	svc := newTestValuation(resolver, equities, &stubFetcher{})

	holdings := []models.Holding{
		holding("h1", models.AssetClassEquity, "AAPL", 10, 150),
		holding("h2", models.AssetClassEquity, "GHOST", 5, 100),
	}

	summary := svc.BuildSummary(context.Background(), holdings, nil)
	require.Len(t, summary.Holdings, 2)

	ghost := summary.Holdings[1]
	assert.Nil(t, ghost.Price)
	assert.Nil(t, ghost.CurrentValue)
	assert.Nil(t, ghost.PnL)
	assert.Nil(t, ghost.PnLPct)
	assert.Nil(t, ghost.AllocationPct)
	assert.True(t, ghost.CostBasis.Equal(decimal.NewFromInt(500)))

	// Unpriced value is excluded from total value but not from total cost
	assert.True(t, summary.Totals.TotalValue.Equal(decimal.NewFromInt(2000)))
	assert.True(t, summary.Totals.TotalCost.Equal(decimal.NewFromInt(2000)))

	// The priced holding owns the whole allocation
	aapl := summary.Holdings[0]
	require.NotNil(t, aapl.AllocationPct)
	assert.True(t, aapl.AllocationPct.Equal(oneHundred))
}

func TestBuildSummary_UnresolvedCryptoSymbol(t *testing.T) {
	resolver := &stubResolver{ids: map[string]string{}}
	crypto := &stubFetcher{quotes: map[string]Quote{}}
	svc := newTestValuation(resolver, &stubFetcher{}, crypto)

	holdings := []models.Holding{
		holding("h1", models.AssetClassCrypto, "NOCOIN", 1, 10),
	}

	summary := svc.BuildSummary(context.Background(), holdings, nil)
	require.Len(t, summary.Holdings, 1)

	h := summary.Holdings[0]
	assert.Empty(t, h.PriceKey)
	assert.Nil(t, h.Price)

	// An unresolved symbol never reaches the fetcher
	for _, call := range crypto.calls {
		assert.Empty(t, call)
	}
}

type slowResolver struct {
	delay time.Duration
	ids   map[string]string
}

func (r *slowResolver) Resolve(_ context.Context, symbol string) string {
	time.Sleep(r.delay)
	return r.ids[symbol]
}

func TestResolveCoinIDs_MixedStoredAndResolved(t *testing.T) {
	// Holdings with stored provider ids are interleaved with ones needing
	// resolution, so stored-id map writes overlap in time with the resolver
	// goroutines. Sized to make the race detector's job easy.
	resolver := &slowResolver{delay: time.Millisecond, ids: map[string]string{"AAA": "aaa-coin"}}
	svc := newTestValuation(resolver, &stubFetcher{}, &stubFetcher{})

	holdings := make([]models.Holding, 0, 200)
	for i := 0; i < 200; i++ {
		h := holding(fmt.Sprintf("h%d", i), models.AssetClassCrypto, "AAA", 1, 1)
		if i%2 == 0 {
			stored := fmt.Sprintf("stored-%d", i)
			h.ExternalID = &stored
		}
		holdings = append(holdings, h)
	}

	ids := svc.resolveCoinIDs(context.Background(), holdings)
	require.Len(t, ids, 200)
	for i, h := range holdings {
		if i%2 == 0 {
			assert.Equal(t, *h.ExternalID, ids[h.ID])
		} else {
			assert.Equal(t, "aaa-coin", ids[h.ID])
		}
	}
}

func TestBuildSummary_StoredExternalIDWins(t *testing.T) {
	// A stored provider id skips symbol resolution entirely
	resolver := &stubResolver{ids: map[string]string{"BTC": "wrong-id"}}
	crypto := &stubFetcher{quotes: map[string]Quote{"bitcoin": priced(50000)}}
	svc := newTestValuation(resolver, &stubFetcher{}, crypto)

	externalID := "bitcoin"
	h := holding("h1", models.AssetClassCrypto, "BTC", 1, 40000)
	h.ExternalID = &externalID

	summary := svc.BuildSummary(context.Background(), []models.Holding{h}, nil)
	require.Len(t, summary.Holdings, 1)
	assert.Equal(t, "bitcoin", summary.Holdings[0].PriceKey)
	require.NotNil(t, summary.Holdings[0].Price)
	assert.True(t, summary.Holdings[0].Price.Equal(decimal.NewFromInt(50000)))
}

func TestBuildSummary_ZeroCostBasisHasNoPnLPct(t *testing.T) {
	// Airdropped coins: value and pnl exist, the percentage does not
	resolver := &stubResolver{ids: map[string]string{"DOGE": "dogecoin"}}
	crypto := &stubFetcher{quotes: map[string]Quote{"dogecoin": priced(0.2)}}
	svc := newTestValuation(resolver, &stubFetcher{}, crypto)

	holdings := []models.Holding{
		holding("h1", models.AssetClassCrypto, "DOGE", 1000, 0),
	}

	summary := svc.BuildSummary(context.Background(), holdings, nil)
	h := summary.Holdings[0]
	require.NotNil(t, h.CurrentValue)
	require.NotNil(t, h.PnL)
	assert.True(t, h.PnL.Equal(*h.CurrentValue))
	assert.Nil(t, h.PnLPct)
	assert.Nil(t, summary.Totals.TotalPnLPct)
}

func TestBuildSummary_AllocationSumsToHundred(t *testing.T) {
	resolver := &stubResolver{ids: map[string]string{}}
	equities := &stubFetcher{quotes: map[string]Quote{
		"A": priced(100),
		"B": priced(50),
		"C": priced(25),
	}}
	svc := newTestValuation(resolver, equities, &stubFetcher{})

	holdings := []models.Holding{
		holding("h1", models.AssetClassEquity, "A", 1, 90),
		holding("h2", models.AssetClassEquity, "B", 2, 40),
		holding("h3", models.AssetClassEquity, "C", 4, 20),
	}

	summary := svc.BuildSummary(context.Background(), holdings, nil)

	sum := decimal.Zero
	for _, h := range summary.Holdings {
		require.NotNil(t, h.AllocationPct)
		sum = sum.Add(*h.AllocationPct)
	}
	assert.True(t, sum.Sub(oneHundred).Abs().LessThan(decimal.NewFromFloat(1e-9)),
		"allocations sum to %s", sum)
}

func TestBuildSummary_EmptyPortfolio(t *testing.T) {
	svc := newTestValuation(&stubResolver{}, &stubFetcher{}, &stubFetcher{})

	summary := svc.BuildSummary(context.Background(), nil, nil)
	require.NotNil(t, summary)
	assert.Empty(t, summary.Holdings)
	assert.True(t, summary.Totals.TotalValue.IsZero())
	assert.True(t, summary.Totals.TotalCost.IsZero())
	assert.Nil(t, summary.Totals.TotalPnLPct)
	assert.Nil(t, summary.IRRAnnualPct)
}

func TestBuildSummary_IRRFromFlows(t *testing.T) {
	svc := newTestValuation(&stubResolver{}, &stubFetcher{}, &stubFetcher{})

	flows := []models.CashFlowItem{
		{Amount: decimal.NewFromInt(-1000), Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Amount: decimal.NewFromInt(1100), Date: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	summary := svc.BuildSummary(context.Background(), nil, flows)
	require.NotNil(t, summary.IRRAnnualPct)
	assert.InDelta(t, 10.0, *summary.IRRAnnualPct, 1e-2)
}
