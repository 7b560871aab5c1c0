package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/minhtc/folio/internal/errors"
)

// TransactionKind enumerates the supported transaction types
type TransactionKind string

const (
	TransactionDeposit    TransactionKind = "deposit"
	TransactionWithdrawal TransactionKind = "withdrawal"
	TransactionBuy        TransactionKind = "buy"
	TransactionSell       TransactionKind = "sell"
)

// Transaction represents a single cash or trade event in a user's history.
// CashFlow is derived once at creation time and is the canonical input to the
// money-weighted return computation: negative = money invested, positive =
// money received.
type Transaction struct {
	ID     string          `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	UserID string          `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index"`
	Kind   TransactionKind `json:"kind" gorm:"column:kind;type:varchar(20);not null;index"`

	// Asset fields, only meaningful for buy/sell
	Class  *AssetClass `json:"class" gorm:"column:class;type:varchar(20)"`
	Symbol *string     `json:"symbol" gorm:"column:symbol;type:varchar(50)"`

	Quantity *decimal.Decimal `json:"quantity" gorm:"column:quantity;type:decimal(30,18)"`
	Price    *decimal.Decimal `json:"price" gorm:"column:price;type:decimal(30,18)"`
	Fees     decimal.Decimal  `json:"fees" gorm:"column:fees;type:decimal(30,18);not null;default:0"`

	// Direct amount for deposit/withdrawal
	Amount *decimal.Decimal `json:"amount" gorm:"column:amount;type:decimal(30,18)"`

	CashFlow decimal.Decimal `json:"cash_flow" gorm:"column:cash_flow;type:decimal(30,18);not null"`
	Date     time.Time       `json:"date" gorm:"column:date;type:timestamptz;not null;index"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// Normalize uppercases the symbol when present
func (t *Transaction) Normalize() {
	if t.Symbol != nil {
		s := strings.ToUpper(strings.TrimSpace(*t.Symbol))
		t.Symbol = &s
	}
}

// Validate checks kind-specific required fields
func (t *Transaction) Validate() error {
	if t.UserID == "" {
		return &apperrors.ErrValidation{Field: "user_id", Message: "is required"}
	}
	if t.Date.IsZero() {
		return &apperrors.ErrValidation{Field: "date", Message: "is required"}
	}
	switch t.Kind {
	case TransactionDeposit, TransactionWithdrawal:
		if t.Amount == nil || !t.Amount.IsPositive() {
			return &apperrors.ErrValidation{Field: "amount", Message: "must be > 0"}
		}
	case TransactionBuy, TransactionSell:
		if t.Class == nil || !t.Class.Valid() {
			return &apperrors.ErrValidation{Field: "class", Message: "is required for buy/sell"}
		}
		if t.Symbol == nil || *t.Symbol == "" {
			return &apperrors.ErrValidation{Field: "symbol", Message: "is required for buy/sell"}
		}
		if t.Quantity == nil || !t.Quantity.IsPositive() {
			return &apperrors.ErrValidation{Field: "quantity", Message: "must be > 0"}
		}
		if t.Price == nil || !t.Price.IsPositive() {
			return &apperrors.ErrValidation{Field: "price", Message: "must be > 0"}
		}
		if t.Fees.IsNegative() {
			return &apperrors.ErrValidation{Field: "fees", Message: "must be >= 0"}
		}
	default:
		return &apperrors.ErrValidation{Field: "kind", Message: "must be deposit, withdrawal, buy or sell"}
	}
	return nil
}

// DeriveCashFlow computes the signed cash flow for the transaction and
// stores it on the record. Sign convention: money put into the portfolio is
// negative, money taken out is positive.
func (t *Transaction) DeriveCashFlow() error {
	if err := t.Validate(); err != nil {
		return err
	}
	switch t.Kind {
	case TransactionDeposit:
		t.CashFlow = t.Amount.Neg()
	case TransactionWithdrawal:
		t.CashFlow = *t.Amount
	case TransactionBuy:
		gross := t.Quantity.Mul(*t.Price)
		t.CashFlow = gross.Add(t.Fees).Neg()
	case TransactionSell:
		gross := t.Quantity.Mul(*t.Price)
		t.CashFlow = gross.Sub(t.Fees)
	}
	return nil
}

// CashFlowItem is a dated signed amount, the only transaction projection the
// return solver needs.
type CashFlowItem struct {
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}
