package models

import (
	"strings"
	"time"

	apperrors "github.com/minhtc/folio/internal/errors"
)

// User represents a registered account
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	Email        string    `json:"email" gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NormalizeEmail lowercases and trims an email address for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate validates registration input
func (u *User) Validate() error {
	if u.Email == "" {
		return &apperrors.ErrValidation{Field: "email", Message: "is required"}
	}
	if !strings.Contains(u.Email, "@") {
		return &apperrors.ErrValidation{Field: "email", Message: "is invalid"}
	}
	if u.PasswordHash == "" {
		return &apperrors.ErrValidation{Field: "password", Message: "hash is required"}
	}
	return nil
}
