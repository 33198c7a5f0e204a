package models

import (
	"time"

	"github.com/router-for-me/CourseMarket/internal/market"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Balance holds a user's spendable points.
type Balance struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64          `gorm:"not null;uniqueIndex"`                                                // Owning user ID.
	Amount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0;check:chk_balances_amount,amount >= 0"` // Spendable points.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Validate enforces the non-negative amount invariant.
func (b *Balance) Validate() error {
	if b.Amount.IsNegative() {
		return market.ErrNegativeBalance
	}
	return nil
}

// BeforeSave rejects negative balances on every create and save.
func (b *Balance) BeforeSave(_ *gorm.DB) error {
	return b.Validate()
}
