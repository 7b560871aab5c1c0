package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/minhtc/folio/internal/cache"
)

const (
	// Both providers serve daily-close prices, so a fetched value stays
	// valid until the next daily point lands.
	dailyPriceTTL = 24 * time.Hour

	// A failed lookup is remembered briefly so a burst of dashboard reloads
	// does not hammer a provider that is already erroring.
	priceNegativeTTL = 5 * time.Minute
)

// CoinGeckoFetcher batch-fetches last-daily crypto prices by coin id,
// cache-first with bounded-concurrency network fill.
type CoinGeckoFetcher struct {
	baseURL     string
	httpClient  *http.Client
	cache       *cache.Cache[Quote]
	logger      *zap.Logger
	concurrency int
	vsCurrency  string
}

// NewCoinGeckoFetcher creates a crypto price fetcher backed by the given cache
func NewCoinGeckoFetcher(c *cache.Cache[Quote], logger *zap.Logger) *CoinGeckoFetcher {
	return &CoinGeckoFetcher{
		baseURL:     coinGeckoBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		cache:       c,
		logger:      logger,
		concurrency: defaultFetchConcurrency,
		vsCurrency:  "eur",
	}
}

// FetchPrices returns one quote per requested coin id. Cached quotes,
// including cached misses, are served without touching the network.
func (f *CoinGeckoFetcher) FetchPrices(ctx context.Context, ids []string) map[string]Quote {
	out := make(map[string]Quote)
	unique := dedupeKeys(ids)

	var toFetch []string
	for _, id := range unique {
		if q, ok := f.cache.Get("cg:lastdaily:" + id); ok {
			out[id] = q
		} else {
			toFetch = append(toFetch, id)
		}
	}

	fetched := fetchBatch(ctx, toFetch, f.concurrency, func(ctx context.Context, id string) Quote {
		q := f.fetchLastDaily(ctx, id)
		if q.Available() {
			f.cache.Set("cg:lastdaily:"+id, q, dailyPriceTTL)
		} else {
			f.logger.Debug("crypto price unavailable", zap.String("id", id), zap.String("reason", q.Reason))
			f.cache.Set("cg:lastdaily:"+id, q, priceNegativeTTL)
		}
		return q
	})
	for id, q := range fetched {
		out[id] = q
	}
	return out
}

// fetchLastDaily pulls the 30-day market chart and takes the price of the
// final [timestamp, price] pair
func (f *CoinGeckoFetcher) fetchLastDaily(ctx context.Context, id string) Quote {
	u := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=%s&days=30", f.baseURL, url.PathEscape(id), f.vsCurrency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return quoteUnavailable(err.Error())
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return quoteUnavailable(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return quoteUnavailable(fmt.Sprintf("coingecko market_chart status %d", resp.StatusCode))
	}

	var payload struct {
		Prices [][2]float64 `json:"prices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return quoteUnavailable("malformed market_chart payload: " + err.Error())
	}
	if len(payload.Prices) == 0 {
		return quoteUnavailable("empty price series")
	}

	last := payload.Prices[len(payload.Prices)-1]
	ts, price := last[0], last[1]
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return quoteUnavailable("non-finite price in series")
	}
	return quoteOK(decimal.NewFromFloat(price), time.UnixMilli(int64(ts)).UTC())
}
