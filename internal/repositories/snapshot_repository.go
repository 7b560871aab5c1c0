package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/minhtc/folio/internal/db"
	"github.com/minhtc/folio/internal/models"
)

type snapshotRepository struct {
	db *db.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(database *db.DB) SnapshotRepository {
	return &snapshotRepository{db: database}
}

// Upsert inserts the snapshot or, when one already exists for (user, day),
// overwrites its value
func (r *snapshotRepository) Upsert(ctx context.Context, snapshot *models.Snapshot) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_value", "currency"}),
		}).
		Create(snapshot).Error
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// ListSince returns snapshots on or after since, oldest first
func (r *snapshotRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]models.Snapshot, error) {
	var snaps []models.Snapshot
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date ASC").
		Find(&snaps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snaps, nil
}
