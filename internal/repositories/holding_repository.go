package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/minhtc/folio/internal/db"
	apperrors "github.com/minhtc/folio/internal/errors"
	"github.com/minhtc/folio/internal/models"
)

type holdingRepository struct {
	db *db.DB
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(database *db.DB) HoldingRepository {
	return &holdingRepository{db: database}
}

func (r *holdingRepository) Create(ctx context.Context, holding *models.Holding) error {
	if err := r.db.WithContext(ctx).Create(holding).Error; err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}
	return nil
}

// ListByUser returns the user's holdings, newest first
func (r *holdingRepository) ListByUser(ctx context.Context, userID string) ([]models.Holding, error) {
	var holdings []models.Holding
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	return holdings, nil
}

func (r *holdingRepository) Update(ctx context.Context, holding *models.Holding) error {
	res := r.db.WithContext(ctx).
		Model(&models.Holding{}).
		Where("id = ? AND user_id = ?", holding.ID, holding.UserID).
		Updates(map[string]interface{}{
			"symbol":      holding.Symbol,
			"class":       holding.Class,
			"external_id": holding.ExternalID,
			"quantity":    holding.Quantity,
			"avg_cost":    holding.AverageCost,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update holding: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *holdingRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Holding{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete holding: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *holdingRepository) FindByID(ctx context.Context, userID, id string) (*models.Holding, error) {
	var holding models.Holding
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find holding: %w", err)
	}
	return &holding, nil
}

// FindByAsset looks up the unique position for (owner, class, symbol)
func (r *holdingRepository) FindByAsset(ctx context.Context, userID string, class models.AssetClass, symbol string) (*models.Holding, error) {
	var holding models.Holding
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND class = ? AND symbol = ?", userID, class, symbol).
		First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find holding by asset: %w", err)
	}
	return &holding, nil
}
