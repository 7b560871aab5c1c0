package repositories

import (
	"context"
	"time"

	"github.com/minhtc/folio/internal/models"
)

// UserRepository persists user accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// HoldingRepository persists portfolio positions, always scoped to an owner
type HoldingRepository interface {
	Create(ctx context.Context, holding *models.Holding) error
	ListByUser(ctx context.Context, userID string) ([]models.Holding, error)
	Update(ctx context.Context, holding *models.Holding) error
	Delete(ctx context.Context, userID, id string) error
	FindByID(ctx context.Context, userID, id string) (*models.Holding, error)
	FindByAsset(ctx context.Context, userID string, class models.AssetClass, symbol string) (*models.Holding, error)
}

// TransactionRepository persists cash and trade events
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
	ListCashFlows(ctx context.Context, userID string) ([]models.CashFlowItem, error)
	Delete(ctx context.Context, userID, id string) error
}

// SnapshotRepository persists daily portfolio value snapshots
type SnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *models.Snapshot) error
	ListSince(ctx context.Context, userID string, since time.Time) ([]models.Snapshot, error)
}
