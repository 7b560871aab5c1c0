package repositories

import (
	"context"
	"fmt"

	"github.com/minhtc/folio/internal/db"
	apperrors "github.com/minhtc/folio/internal/errors"
	"github.com/minhtc/folio/internal/models"
)

type transactionRepository struct {
	db *db.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(database *db.DB) TransactionRepository {
	return &transactionRepository{db: database}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// ListByUser returns the user's transactions, most recent first
func (r *transactionRepository) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// ListCashFlows projects the transaction history down to the dated signed
// amounts the return solver consumes
func (r *transactionRepository) ListCashFlows(ctx context.Context, userID string) ([]models.CashFlowItem, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Select("cash_flow", "date").
		Where("user_id = ?", userID).
		Order("date ASC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cash flows: %w", err)
	}

	flows := make([]models.CashFlowItem, 0, len(txs))
	for _, tx := range txs {
		flows = append(flows, models.CashFlowItem{Amount: tx.CashFlow, Date: tx.Date})
	}
	return flows, nil
}

func (r *transactionRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Transaction{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
