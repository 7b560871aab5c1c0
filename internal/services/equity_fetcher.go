package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/minhtc/folio/internal/cache"
)

const stooqBaseURL = "https://stooq.com"

// StooqFetcher batch-fetches last-close equity prices by ticker symbol from
// Stooq's daily CSV endpoint, cache-first with bounded-concurrency network
// fill. Closes are end-of-day figures, so they are cached for a full day.
type StooqFetcher struct {
	baseURL     string
	httpClient  *http.Client
	cache       *cache.Cache[Quote]
	logger      *zap.Logger
	concurrency int
}

// NewStooqFetcher creates an equity price fetcher backed by the given cache
func NewStooqFetcher(c *cache.Cache[Quote], logger *zap.Logger) *StooqFetcher {
	return &StooqFetcher{
		baseURL:     stooqBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		cache:       c,
		logger:      logger,
		concurrency: defaultFetchConcurrency,
	}
}

// FetchPrices returns one quote per requested ticker symbol
func (f *StooqFetcher) FetchPrices(ctx context.Context, symbols []string) map[string]Quote {
	out := make(map[string]Quote)

	upper := make([]string, 0, len(symbols))
	for _, s := range symbols {
		upper = append(upper, strings.ToUpper(s))
	}
	unique := dedupeKeys(upper)

	var toFetch []string
	for _, sym := range unique {
		if q, ok := f.cache.Get("stooq:lastclose:" + sym); ok {
			out[sym] = q
		} else {
			toFetch = append(toFetch, sym)
		}
	}

	fetched := fetchBatch(ctx, toFetch, f.concurrency, func(ctx context.Context, sym string) Quote {
		q := f.fetchLastClose(ctx, sym)
		if q.Available() {
			f.cache.Set("stooq:lastclose:"+sym, q, dailyPriceTTL)
		} else {
			f.logger.Debug("equity price unavailable", zap.String("symbol", sym), zap.String("reason", q.Reason))
			f.cache.Set("stooq:lastclose:"+sym, q, priceNegativeTTL)
		}
		return q
	})
	for sym, q := range fetched {
		out[sym] = q
	}
	return out
}

// stooqTicker maps an exchange symbol to Stooq's naming: plain US tickers
// get the ".us" suffix, symbols that already carry a market suffix are used
// as-is.
func stooqTicker(symbol string) string {
	s := strings.ToLower(symbol)
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".us"
}

// fetchLastClose downloads the daily CSV series and extracts the close of
// the last data row. The header row names the columns; the close column is
// located by name, case-insensitively.
func (f *StooqFetcher) fetchLastClose(ctx context.Context, symbol string) Quote {
	u := fmt.Sprintf("%s/q/d/l/?s=%s&i=d", f.baseURL, stooqTicker(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return quoteUnavailable(err.Error())
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return quoteUnavailable(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return quoteUnavailable(fmt.Sprintf("stooq status %d", resp.StatusCode))
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return quoteUnavailable("malformed csv: " + err.Error())
	}
	if len(rows) < 2 {
		return quoteUnavailable("no data rows")
	}

	closeIdx := -1
	dateIdx := -1
	for i, name := range rows[0] {
		switch {
		case strings.EqualFold(strings.TrimSpace(name), "close"):
			closeIdx = i
		case strings.EqualFold(strings.TrimSpace(name), "date"):
			dateIdx = i
		}
	}
	if closeIdx < 0 {
		return quoteUnavailable("close column not found")
	}

	last := rows[len(rows)-1]
	if closeIdx >= len(last) {
		return quoteUnavailable("close column missing in last row")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(last[closeIdx]), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return quoteUnavailable("close is not a finite number")
	}

	asOf := time.Now().UTC()
	if dateIdx >= 0 && dateIdx < len(last) {
		if d, err := time.Parse("2006-01-02", strings.TrimSpace(last[dateIdx])); err == nil {
			asOf = d
		}
	}
	return quoteOK(decimal.NewFromFloat(price), asOf)
}
