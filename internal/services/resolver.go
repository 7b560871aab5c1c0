package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/minhtc/folio/internal/cache"
)

const (
	coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

	// Resolved ids are effectively static, so they live a full day; misses
	// and failures are kept short so a provider hiccup does not pin a symbol
	// as unresolvable for 24 hours.
	resolveTTL         = 24 * time.Hour
	resolveNegativeTTL = 5 * time.Minute
)

// staticCoinIDs short-circuits resolution for the handful of symbols that
// cover nearly all traffic. Hits bypass both the cache and the network.
var staticCoinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"ADA":  "cardano",
	"XRP":  "ripple",
	"DOGE": "dogecoin",
}

// CoinGeckoResolver maps a ticker symbol to a CoinGecko coin id using the
// static table first, then the cache, then the provider's search endpoint.
type CoinGeckoResolver struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache[string]
	logger     *zap.Logger
}

// NewCoinGeckoResolver creates a resolver backed by the given cache
func NewCoinGeckoResolver(c *cache.Cache[string], logger *zap.Logger) *CoinGeckoResolver {
	return &CoinGeckoResolver{
		baseURL:    coinGeckoBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      c,
		logger:     logger,
	}
}

// Resolve returns the CoinGecko id for symbol, or "" when the symbol cannot
// be resolved. It never returns an error: an unresolved symbol simply leaves
// the holding unpriced.
func (r *CoinGeckoResolver) Resolve(ctx context.Context, symbol string) string {
	upper := strings.ToUpper(strings.TrimSpace(symbol))
	if upper == "" {
		return ""
	}
	if id, ok := staticCoinIDs[upper]; ok {
		return id
	}

	key := "resolve:" + upper
	if id, ok := r.cache.Get(key); ok {
		return id
	}

	id, err := r.search(ctx, upper)
	if err != nil {
		r.logger.Warn("coin id resolution failed", zap.String("symbol", upper), zap.Error(err))
		r.cache.Set(key, "", resolveNegativeTTL)
		return ""
	}
	if id == "" {
		r.cache.Set(key, "", resolveNegativeTTL)
		return ""
	}
	r.cache.Set(key, id, resolveTTL)
	return id
}

// search queries the provider's /search endpoint and returns the first
// matching coin id
func (r *CoinGeckoResolver) search(ctx context.Context, query string) (string, error) {
	u := fmt.Sprintf("%s/search?query=%s", r.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("coingecko search status %d", resp.StatusCode)
	}

	var payload struct {
		Coins []struct {
			ID string `json:"id"`
		} `json:"coins"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if len(payload.Coins) == 0 {
		return "", nil
	}
	return payload.Coins[0].ID, nil
}
