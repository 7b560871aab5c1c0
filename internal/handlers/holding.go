package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/minhtc/folio/internal/errors"
	"github.com/minhtc/folio/internal/models"
	"github.com/minhtc/folio/internal/repositories"
)

// HoldingHandler serves CRUD for portfolio positions
type HoldingHandler struct {
	holdings repositories.HoldingRepository
	logger   *zap.Logger
}

// NewHoldingHandler creates a new holding handler
func NewHoldingHandler(holdings repositories.HoldingRepository, logger *zap.Logger) *HoldingHandler {
	return &HoldingHandler{holdings: holdings, logger: logger}
}

type holdingRequest struct {
	Class      models.AssetClass `json:"class"`
	Symbol     string            `json:"symbol"`
	ExternalID *string           `json:"external_id"`
	Quantity   decimal.Decimal   `json:"quantity"`
	AvgCost    decimal.Decimal   `json:"avg_cost"`
}

// HandleList returns the user's holdings, newest first
func (h *HoldingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.holdings.ListByUser(r.Context(), UserID(r.Context()))
	if err != nil {
		h.logger.Error("failed to list holdings", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, holdings)
}

// HandleCreate adds a new position
func (h *HoldingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req holdingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	holding := &models.Holding{
		ID:          uuid.NewString(),
		UserID:      UserID(r.Context()),
		Class:       req.Class,
		Symbol:      req.Symbol,
		ExternalID:  req.ExternalID,
		Quantity:    req.Quantity,
		AverageCost: req.AvgCost,
	}
	holding.Normalize()
	if err := holding.Validate(); err != nil {
		writeError(w, err)
		return
	}

	// One row per (owner, class, symbol); buying more should edit the
	// existing position instead
	if existing, err := h.holdings.FindByAsset(r.Context(), holding.UserID, holding.Class, holding.Symbol); err == nil && existing != nil {
		writeMessage(w, http.StatusConflict, "you already have this asset in your portfolio")
		return
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		h.logger.Error("failed to check existing holding", zap.Error(err))
		writeError(w, err)
		return
	}

	if err := h.holdings.Create(r.Context(), holding); err != nil {
		h.logger.Error("failed to create holding", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, holding)
}

// HandleUpdate edits an existing position
func (h *HoldingHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req holdingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	holding := &models.Holding{
		ID:          id,
		UserID:      UserID(r.Context()),
		Class:       req.Class,
		Symbol:      req.Symbol,
		ExternalID:  req.ExternalID,
		Quantity:    req.Quantity,
		AverageCost: req.AvgCost,
	}
	holding.Normalize()
	if err := holding.Validate(); err != nil {
		writeError(w, err)
		return
	}

	if err := h.holdings.Update(r.Context(), holding); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.holdings.FindByID(r.Context(), holding.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes a position
func (h *HoldingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.holdings.Delete(r.Context(), UserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "deleted")
}
