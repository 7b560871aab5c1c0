package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minhtc/folio/internal/models"
	"github.com/minhtc/folio/internal/repositories"
	"github.com/minhtc/folio/internal/services"
)

const defaultSnapshotDays = 90

// SnapshotHandler captures and lists daily portfolio value snapshots
type SnapshotHandler struct {
	holdings  repositories.HoldingRepository
	snapshots repositories.SnapshotRepository
	valuation services.ValuationService
	logger    *zap.Logger
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(
	holdings repositories.HoldingRepository,
	snapshots repositories.SnapshotRepository,
	valuation services.ValuationService,
	logger *zap.Logger,
) *SnapshotHandler {
	return &SnapshotHandler{
		holdings:  holdings,
		snapshots: snapshots,
		valuation: valuation,
		logger:    logger,
	}
}

// HandleCreate values the portfolio now and upserts today's snapshot
func (h *SnapshotHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	holdings, err := h.holdings.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load holdings for snapshot", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "failed to create snapshot")
		return
	}

	// Cash flows are irrelevant here; only the total value is captured
	summary := h.valuation.BuildSummary(r.Context(), holdings, nil)

	snapshot := &models.Snapshot{
		ID:         uuid.NewString(),
		UserID:     userID,
		Date:       models.StartOfDay(time.Now().UTC()),
		TotalValue: summary.Totals.TotalValue,
		Currency:   summary.Currency,
	}
	if err := h.snapshots.Upsert(r.Context(), snapshot); err != nil {
		h.logger.Error("failed to upsert snapshot", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshot)
}

// HandleList returns the snapshot history for the line chart, oldest first
func (h *SnapshotHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	days := defaultSnapshotDays
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}

	since := models.StartOfDay(time.Now().UTC().AddDate(0, 0, -days))
	snaps, err := h.snapshots.ListSince(r.Context(), UserID(r.Context()), since)
	if err != nil {
		h.logger.Error("failed to list snapshots", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snaps)
}
