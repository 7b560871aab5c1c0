package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minhtc/folio/internal/models"
)

// Quote is the tagged outcome of a single price lookup. A nil Price means
// the quote is unavailable; Reason says why, for logs only. The external
// contract collapses an unavailable quote to a JSON null.
type Quote struct {
	Price  *decimal.Decimal
	AsOf   time.Time
	Reason string
}

// Available reports whether the quote carries a usable price
func (q Quote) Available() bool {
	return q.Price != nil
}

func quoteOK(price decimal.Decimal, asOf time.Time) Quote {
	return Quote{Price: &price, AsOf: asOf}
}

func quoteUnavailable(reason string) Quote {
	return Quote{Reason: reason}
}

// SymbolResolver maps a ticker symbol to the canonical identifier of the
// external price provider. An empty result means the symbol could not be
// resolved; resolution never fails hard.
type SymbolResolver interface {
	Resolve(ctx context.Context, symbol string) string
}

// PriceFetcher returns one quote per requested lookup key. Implementations
// must isolate per-key failures: a failed key yields an unavailable quote,
// never an aborted batch.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, keys []string) map[string]Quote
}

// ValuationService turns holdings and cash-flow history into the dashboard
// summary. Pricing failures degrade individual holdings; building the
// summary itself never fails.
type ValuationService interface {
	BuildSummary(ctx context.Context, holdings []models.Holding, flows []models.CashFlowItem) *models.PortfolioSummary
}

// AuthService handles registration, login and token verification
type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	VerifyToken(token string) (string, error)
}

// SearchResult is one asset candidate returned by the search endpoint
type SearchResult struct {
	Value  string            `json:"value"`
	Label  string            `json:"label"`
	Class  models.AssetClass `json:"class"`
	Symbol string            `json:"symbol"`

	// Provider id for crypto results, empty for equities
	ExternalID string `json:"external_id,omitempty"`
}

// SearchService looks up asset candidates across both providers
type SearchService interface {
	Search(ctx context.Context, query string, class string) []SearchResult
}
