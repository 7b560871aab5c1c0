package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/minhtc/folio/internal/cache"
	"github.com/minhtc/folio/internal/models"
)

const (
	yahooSearchBody = `{"quotes":[
		{"symbol":"AAPL","shortname":"Apple Inc."},
		{"symbol":"APLE","longname":"Apple Hospitality REIT"},
		{"symbol":"NONAME"},
		{"shortname":"No Symbol Inc."}
	]}`
	geckoSearchBody = `{"coins":[
		{"id":"bitcoin","name":"Bitcoin","symbol":"btc"},
		{"id":"","name":"Broken","symbol":"brk"}
	]}`
)

func newTestSearchService(t *testing.T, yahoo, gecko http.HandlerFunc) *searchService {
	t.Helper()
	yahooSrv := httptest.NewServer(yahoo)
	geckoSrv := httptest.NewServer(gecko)
	t.Cleanup(yahooSrv.Close)
	t.Cleanup(geckoSrv.Close)

	svc := NewSearchService(cache.New[[]SearchResult](), zap.NewNop()).(*searchService)
	svc.yahooBaseURL = yahooSrv.URL
	svc.geckoBaseURL = geckoSrv.URL
	return svc
}

func TestSearch_Equities(t *testing.T) {
	svc := newTestSearchService(t,
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "apple", r.URL.Query().Get("q"))
			w.Write([]byte(yahooSearchBody))
		},
		func(w http.ResponseWriter, _ *http.Request) {
			t.Error("crypto provider must not be called for class=equity")
		},
	)

	results := svc.Search(context.Background(), "apple", "equity")
	require.Len(t, results, 2, "entries without both symbol and name are dropped")

	assert.Equal(t, "AAPL", results[0].Symbol)
	assert.Equal(t, "Apple Inc. (AAPL)", results[0].Label)
	assert.Equal(t, models.AssetClassEquity, results[0].Class)
	assert.Empty(t, results[0].ExternalID)
	assert.Equal(t, "Apple Hospitality REIT (APLE)", results[1].Label)
}

func TestSearch_Crypto(t *testing.T) {
	svc := newTestSearchService(t,
		func(w http.ResponseWriter, _ *http.Request) {
			t.Error("equity provider must not be called for class=crypto")
		},
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(geckoSearchBody))
		},
	)

	results := svc.Search(context.Background(), "bitcoin", "crypto")
	require.Len(t, results, 1)
	assert.Equal(t, "BTC", results[0].Symbol)
	assert.Equal(t, "bitcoin", results[0].ExternalID)
	assert.Equal(t, models.AssetClassCrypto, results[0].Class)
}

func TestSearch_AllMergesProviders(t *testing.T) {
	svc := newTestSearchService(t,
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(yahooSearchBody))
		},
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(geckoSearchBody))
		},
	)

	results := svc.Search(context.Background(), "app", "")
	require.Len(t, results, 3, "equities first, then crypto")
	assert.Equal(t, models.AssetClassEquity, results[0].Class)
	assert.Equal(t, models.AssetClassCrypto, results[2].Class)
}

func TestSearch_OneProviderFailing(t *testing.T) {
	svc := newTestSearchService(t,
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(geckoSearchBody))
		},
	)

	results := svc.Search(context.Background(), "bitcoin", "all")
	require.Len(t, results, 1)
	assert.Equal(t, models.AssetClassCrypto, results[0].Class)
}

func TestSearch_ResultsAreCached(t *testing.T) {
	var hits atomic.Int32
	svc := newTestSearchService(t,
		func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.Write([]byte(yahooSearchBody))
		},
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(geckoSearchBody))
		},
	)

	svc.Search(context.Background(), "Apple", "equity")
	svc.Search(context.Background(), "apple", "equity")
	assert.Equal(t, int32(1), hits.Load(), "queries differing only in case share a cache entry")
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newTestSearchService(t,
		func(w http.ResponseWriter, _ *http.Request) { t.Error("no request expected") },
		func(w http.ResponseWriter, _ *http.Request) { t.Error("no request expected") },
	)

	assert.Nil(t, svc.Search(context.Background(), "", "all"))
	assert.Nil(t, svc.Search(context.Background(), "   ", "all"))
}
