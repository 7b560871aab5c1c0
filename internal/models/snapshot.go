package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot records a portfolio's total value at the start of a day. One row
// per user per day; re-capturing the same day overwrites the value.
type Snapshot struct {
	ID         string          `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	UserID     string          `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index;uniqueIndex:idx_snapshots_user_day,priority:1"`
	Date       time.Time       `json:"date" gorm:"column:date;type:timestamptz;not null;uniqueIndex:idx_snapshots_user_day,priority:2"`
	TotalValue decimal.Decimal `json:"total_value" gorm:"column:total_value;type:decimal(30,18);not null"`
	Currency   string          `json:"currency" gorm:"column:currency;type:varchar(10);not null;default:EUR"`
	CreatedAt  time.Time       `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
}

// TableName returns the table name for the Snapshot model
func (Snapshot) TableName() string {
	return "snapshots"
}

// StartOfDay truncates t to midnight UTC, the snapshot bucketing key
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
