package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/minhtc/folio/internal/repositories"
	"github.com/minhtc/folio/internal/services"
)

// PortfolioHandler serves the computed dashboard summary
type PortfolioHandler struct {
	holdings     repositories.HoldingRepository
	transactions repositories.TransactionRepository
	valuation    services.ValuationService
	logger       *zap.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(
	holdings repositories.HoldingRepository,
	transactions repositories.TransactionRepository,
	valuation services.ValuationService,
	logger *zap.Logger,
) *PortfolioHandler {
	return &PortfolioHandler{
		holdings:     holdings,
		transactions: transactions,
		valuation:    valuation,
		logger:       logger,
	}
}

// HandleSummary builds the portfolio summary. Pricing problems degrade
// individual holdings to null-valued fields; only the stores failing aborts
// the request.
func (h *PortfolioHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	holdings, err := h.holdings.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load holdings for summary", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	flows, err := h.transactions.ListCashFlows(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load cash flows for summary", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	summary := h.valuation.BuildSummary(r.Context(), holdings, flows)
	writeJSON(w, http.StatusOK, summary)
}
