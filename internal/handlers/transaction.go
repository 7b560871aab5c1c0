package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/minhtc/folio/internal/models"
	"github.com/minhtc/folio/internal/repositories"
)

// TransactionHandler serves the cash/trade event history
type TransactionHandler struct {
	transactions repositories.TransactionRepository
	logger       *zap.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactions repositories.TransactionRepository, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, logger: logger}
}

type transactionRequest struct {
	Kind     models.TransactionKind `json:"kind"`
	Class    *models.AssetClass     `json:"class"`
	Symbol   *string                `json:"symbol"`
	Quantity *decimal.Decimal       `json:"quantity"`
	Price    *decimal.Decimal       `json:"price"`
	Fees     *decimal.Decimal       `json:"fees"`
	Amount   *decimal.Decimal       `json:"amount"`
	Date     time.Time              `json:"date"`
}

// HandleList returns the user's transactions, most recent first
func (h *TransactionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	txs, err := h.transactions.ListByUser(r.Context(), UserID(r.Context()))
	if err != nil {
		h.logger.Error("failed to list transactions", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// HandleCreate records a transaction, deriving its canonical cash flow
func (h *TransactionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx := &models.Transaction{
		ID:       uuid.NewString(),
		UserID:   UserID(r.Context()),
		Kind:     req.Kind,
		Class:    req.Class,
		Symbol:   req.Symbol,
		Quantity: req.Quantity,
		Price:    req.Price,
		Amount:   req.Amount,
		Date:     req.Date,
	}
	if req.Fees != nil {
		tx.Fees = *req.Fees
	}
	tx.Normalize()

	if err := tx.DeriveCashFlow(); err != nil {
		writeError(w, err)
		return
	}

	if err := h.transactions.Create(r.Context(), tx); err != nil {
		h.logger.Error("failed to create transaction", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// HandleDelete removes a transaction
func (h *TransactionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.transactions.Delete(r.Context(), UserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "deleted")
}
