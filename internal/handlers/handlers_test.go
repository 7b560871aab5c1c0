package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/minhtc/folio/internal/errors"
	"github.com/minhtc/folio/internal/models"
	"github.com/minhtc/folio/internal/services"
)

// In-memory fakes for the repository and service interfaces the handlers
// depend on. Error fields force failures for the unhappy paths.

type fakeAuth struct {
	registerErr error
	loginErr    error
	verifyErr   error
	user        *models.User
	token       string
	userID      string
}

func (f *fakeAuth) Register(_ context.Context, _, _ string) (*models.User, string, error) {
	if f.registerErr != nil {
		return nil, "", f.registerErr
	}
	return f.user, f.token, nil
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (*models.User, string, error) {
	if f.loginErr != nil {
		return nil, "", f.loginErr
	}
	return f.user, f.token, nil
}

func (f *fakeAuth) VerifyToken(_ string) (string, error) {
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	return f.userID, nil
}

type memHoldings struct {
	items   map[string]*models.Holding
	listErr error
}

func newMemHoldings() *memHoldings {
	return &memHoldings{items: make(map[string]*models.Holding)}
}

func (m *memHoldings) Create(_ context.Context, h *models.Holding) error {
	m.items[h.ID] = h
	return nil
}

func (m *memHoldings) ListByUser(_ context.Context, userID string) ([]models.Holding, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Holding
	for _, h := range m.items {
		if h.UserID == userID {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (m *memHoldings) Update(_ context.Context, h *models.Holding) error {
	existing, ok := m.items[h.ID]
	if !ok || existing.UserID != h.UserID {
		return apperrors.ErrNotFound
	}
	m.items[h.ID] = h
	return nil
}

func (m *memHoldings) Delete(_ context.Context, userID, id string) error {
	h, ok := m.items[id]
	if !ok || h.UserID != userID {
		return apperrors.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memHoldings) FindByID(_ context.Context, userID, id string) (*models.Holding, error) {
	h, ok := m.items[id]
	if !ok || h.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	return h, nil
}

func (m *memHoldings) FindByAsset(_ context.Context, userID string, class models.AssetClass, symbol string) (*models.Holding, error) {
	for _, h := range m.items {
		if h.UserID == userID && h.Class == class && h.Symbol == symbol {
			return h, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type memTransactions struct {
	items    map[string]*models.Transaction
	flowsErr error
}

func newMemTransactions() *memTransactions {
	return &memTransactions{items: make(map[string]*models.Transaction)}
}

func (m *memTransactions) Create(_ context.Context, tx *models.Transaction) error {
	m.items[tx.ID] = tx
	return nil
}

func (m *memTransactions) ListByUser(_ context.Context, userID string) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, tx := range m.items {
		if tx.UserID == userID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (m *memTransactions) ListCashFlows(_ context.Context, userID string) ([]models.CashFlowItem, error) {
	if m.flowsErr != nil {
		return nil, m.flowsErr
	}
	var out []models.CashFlowItem
	for _, tx := range m.items {
		if tx.UserID == userID {
			out = append(out, models.CashFlowItem{Amount: tx.CashFlow, Date: tx.Date})
		}
	}
	return out, nil
}

func (m *memTransactions) Delete(_ context.Context, userID, id string) error {
	tx, ok := m.items[id]
	if !ok || tx.UserID != userID {
		return apperrors.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memSnapshots struct {
	items     map[string]*models.Snapshot
	upsertErr error
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{items: make(map[string]*models.Snapshot)}
}

func (m *memSnapshots) Upsert(_ context.Context, s *models.Snapshot) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	key := s.UserID + "|" + s.Date.Format("2006-01-02")
	m.items[key] = s
	return nil
}

func (m *memSnapshots) ListSince(_ context.Context, userID string, since time.Time) ([]models.Snapshot, error) {
	var out []models.Snapshot
	for _, s := range m.items {
		if s.UserID == userID && !s.Date.Before(since) {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeValuation struct {
	summary *models.PortfolioSummary

	gotHoldings []models.Holding
	gotFlows    []models.CashFlowItem
}

func (f *fakeValuation) BuildSummary(_ context.Context, holdings []models.Holding, flows []models.CashFlowItem) *models.PortfolioSummary {
	f.gotHoldings = holdings
	f.gotFlows = flows
	if f.summary != nil {
		return f.summary
	}
	return &models.PortfolioSummary{Currency: "EUR", LastUpdated: time.Now().UTC()}
}

type fakeFetcher struct {
	quotes map[string]services.Quote
}

func (f *fakeFetcher) FetchPrices(_ context.Context, keys []string) map[string]services.Quote {
	out := make(map[string]services.Quote, len(keys))
	for _, k := range keys {
		out[k] = f.quotes[k]
	}
	return out
}

func priced(v float64) services.Quote {
	d := decimal.NewFromFloat(v)
	return services.Quote{Price: &d, AsOf: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)}
}

// authedRequest builds a request whose context already carries the user id,
// as RequireAuth would have left it
func authedRequest(method, target, userID string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(context.WithValue(req.Context(), userIDKey, userID))
}
