package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minhtc/folio/internal/models"
	"github.com/minhtc/folio/internal/services"
)

// PriceHandler exposes single-asset last-price lookups
type PriceHandler struct {
	equities services.PriceFetcher
	crypto   services.PriceFetcher
}

// NewPriceHandler creates a new price handler
func NewPriceHandler(equities, crypto services.PriceFetcher) *PriceHandler {
	return &PriceHandler{equities: equities, crypto: crypto}
}

type lastPriceResponse struct {
	Class  string           `json:"class"`
	Key    string           `json:"key"`
	Price  *decimal.Decimal `json:"price"`
	AsOf   time.Time        `json:"as_of"`
	Source string           `json:"source"`
}

// HandleLast serves GET /api/prices/last?class=equity&symbol=MSFT and
// GET /api/prices/last?class=crypto&externalId=ripple
func (h *PriceHandler) HandleLast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	class := strings.ToLower(q.Get("class"))

	switch class {
	case string(models.AssetClassEquity):
		symbol := strings.ToUpper(strings.TrimSpace(q.Get("symbol")))
		if symbol == "" {
			writeMessage(w, http.StatusBadRequest, "missing symbol")
			return
		}
		quote := h.equities.FetchPrices(r.Context(), []string{symbol})[symbol]
		writeJSON(w, http.StatusOK, lastPriceResponse{
			Class:  class,
			Key:    symbol,
			Price:  quote.Price,
			AsOf:   asOfOrNow(quote),
			Source: "stooq",
		})
	case string(models.AssetClassCrypto):
		id := strings.TrimSpace(q.Get("externalId"))
		if id == "" {
			writeMessage(w, http.StatusBadRequest, "missing externalId")
			return
		}
		quote := h.crypto.FetchPrices(r.Context(), []string{id})[id]
		writeJSON(w, http.StatusOK, lastPriceResponse{
			Class:  class,
			Key:    id,
			Price:  quote.Price,
			AsOf:   asOfOrNow(quote),
			Source: "coingecko_market_chart",
		})
	default:
		writeMessage(w, http.StatusBadRequest, "invalid class, use equity or crypto")
	}
}

func asOfOrNow(q services.Quote) time.Time {
	if q.AsOf.IsZero() {
		return time.Now().UTC()
	}
	return q.AsOf
}
