package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/minhtc/folio/internal/errors"
)

// AssetClass discriminates how a holding is priced
type AssetClass string

const (
	AssetClassEquity AssetClass = "equity"
	AssetClassCrypto AssetClass = "crypto"
)

// Valid reports whether the asset class is one of the supported values
func (c AssetClass) Valid() bool {
	return c == AssetClassEquity || c == AssetClassCrypto
}

// Holding represents a position owned by a user. Price and valuation fields
// are never persisted here; they are computed on read (see EnrichedHolding).
type Holding struct {
	ID     string     `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	UserID string     `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index;uniqueIndex:idx_holdings_owner_asset,priority:1"`
	Class  AssetClass `json:"class" gorm:"column:class;type:varchar(20);not null;uniqueIndex:idx_holdings_owner_asset,priority:2"`
	Symbol string     `json:"symbol" gorm:"column:symbol;type:varchar(50);not null;uniqueIndex:idx_holdings_owner_asset,priority:3"`

	// Provider-specific identifier (e.g. CoinGecko coin id). Optional; crypto
	// holdings without one are resolved by symbol at valuation time.
	ExternalID *string `json:"external_id" gorm:"column:external_id;type:varchar(100)"`

	Quantity    decimal.Decimal `json:"quantity" gorm:"column:quantity;type:decimal(30,18);not null"`
	AverageCost decimal.Decimal `json:"avg_cost" gorm:"column:avg_cost;type:decimal(30,18);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;type:timestamptz;autoUpdateTime"`
}

// TableName returns the table name for the Holding model
func (Holding) TableName() string {
	return "holdings"
}

// Normalize uppercases the symbol so 'btc' and 'BTC' are the same position
func (h *Holding) Normalize() {
	h.Symbol = strings.ToUpper(strings.TrimSpace(h.Symbol))
}

// Validate validates the holding data
func (h *Holding) Validate() error {
	if h.UserID == "" {
		return &apperrors.ErrValidation{Field: "user_id", Message: "is required"}
	}
	if !h.Class.Valid() {
		return &apperrors.ErrValidation{Field: "class", Message: "must be equity or crypto"}
	}
	if h.Symbol == "" {
		return &apperrors.ErrValidation{Field: "symbol", Message: "is required"}
	}
	if h.Quantity.IsNegative() {
		return &apperrors.ErrValidation{Field: "quantity", Message: "must be >= 0"}
	}
	if h.AverageCost.IsNegative() {
		return &apperrors.ErrValidation{Field: "avg_cost", Message: "must be >= 0"}
	}
	return nil
}

// CostBasis returns quantity x average cost: what was paid for the position
func (h *Holding) CostBasis() decimal.Decimal {
	return h.Quantity.Mul(h.AverageCost)
}
