package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/minhtc/folio/internal/cache"
	"github.com/minhtc/folio/internal/models"
)

const (
	yahooSearchBaseURL = "https://query1.finance.yahoo.com"

	searchTTL        = 30 * time.Second
	searchMaxResults = 10
)

// searchService looks up asset candidates: equities via Yahoo Finance
// search, crypto via the CoinGecko search endpoint. Either provider failing
// yields an empty slice for its class, never an error.
type searchService struct {
	yahooBaseURL string
	geckoBaseURL string
	httpClient   *http.Client
	cache        *cache.Cache[[]SearchResult]
	logger       *zap.Logger
}

// NewSearchService creates the cross-provider asset search
func NewSearchService(c *cache.Cache[[]SearchResult], logger *zap.Logger) SearchService {
	return &searchService{
		yahooBaseURL: yahooSearchBaseURL,
		geckoBaseURL: coinGeckoBaseURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		cache:        c,
		logger:       logger,
	}
}

// Search returns candidates for query. class is "equity", "crypto" or "all".
func (s *searchService) Search(ctx context.Context, query string, class string) []SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	class = strings.ToLower(class)
	if class == "" {
		class = "all"
	}

	key := "search:" + class + ":" + strings.ToLower(query)
	if cached, ok := s.cache.Get(key); ok {
		return cached
	}

	var results []SearchResult
	switch class {
	case string(models.AssetClassEquity):
		results = s.searchEquities(ctx, query)
	case string(models.AssetClassCrypto):
		results = s.searchCrypto(ctx, query)
	default:
		// Both providers in parallel; one failing still returns the other's
		// candidates.
		var wg sync.WaitGroup
		var equities, crypto []SearchResult
		wg.Add(2)
		go func() {
			defer wg.Done()
			equities = s.searchEquities(ctx, query)
		}()
		go func() {
			defer wg.Done()
			crypto = s.searchCrypto(ctx, query)
		}()
		wg.Wait()
		results = append(equities, crypto...)
	}

	s.cache.Set(key, results, searchTTL)
	return results
}

func (s *searchService) searchEquities(ctx context.Context, query string) []SearchResult {
	u := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=%d&newsCount=0", s.yahooBaseURL, url.QueryEscape(query), searchMaxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("equity search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("equity search failed", zap.String("query", query), zap.Int("status", resp.StatusCode))
		return nil
	}

	var payload struct {
		Quotes []struct {
			Symbol    string `json:"symbol"`
			ShortName string `json:"shortname"`
			LongName  string `json:"longname"`
		} `json:"quotes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		s.logger.Warn("equity search payload malformed", zap.String("query", query), zap.Error(err))
		return nil
	}

	var out []SearchResult
	for _, q := range payload.Quotes {
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		if name == "" || q.Symbol == "" {
			continue
		}
		sym := strings.ToUpper(q.Symbol)
		out = append(out, SearchResult{
			Value:  sym,
			Label:  fmt.Sprintf("%s (%s)", name, sym),
			Class:  models.AssetClassEquity,
			Symbol: sym,
		})
		if len(out) == searchMaxResults {
			break
		}
	}
	return out
}

func (s *searchService) searchCrypto(ctx context.Context, query string) []SearchResult {
	u := fmt.Sprintf("%s/search?query=%s", s.geckoBaseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("crypto search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("crypto search failed", zap.String("query", query), zap.Int("status", resp.StatusCode))
		return nil
	}

	var payload struct {
		Coins []struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		} `json:"coins"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		s.logger.Warn("crypto search payload malformed", zap.String("query", query), zap.Error(err))
		return nil
	}

	var out []SearchResult
	for _, c := range payload.Coins {
		if c.ID == "" || c.Symbol == "" {
			continue
		}
		sym := strings.ToUpper(c.Symbol)
		out = append(out, SearchResult{
			Value:      sym,
			Label:      fmt.Sprintf("%s (%s)", c.Name, sym),
			Class:      models.AssetClassCrypto,
			Symbol:     sym,
			ExternalID: c.ID,
		})
		if len(out) == searchMaxResults {
			break
		}
	}
	return out
}
