// Package ledger keeps one non-negative points balance per user.
package ledger

import (
	"context"
	"fmt"

	"github.com/router-for-me/CourseMarket/internal/market"
	"github.com/router-for-me/CourseMarket/internal/models"
	"github.com/router-for-me/CourseMarket/internal/store"
	"github.com/shopspring/decimal"
)

// Ledger debits and credits balances inside a caller-supplied transaction.
type Ledger struct {
	defaultAmount func() decimal.Decimal
}

// New constructs a Ledger. defaultAmount supplies the opening balance for new
// users; nil means zero.
func New(defaultAmount func() decimal.Decimal) *Ledger {
	if defaultAmount == nil {
		defaultAmount = func() decimal.Decimal { return decimal.Zero }
	}
	return &Ledger{defaultAmount: defaultAmount}
}

// Open creates the balance of a newly created user with the default amount.
func (l *Ledger) Open(ctx context.Context, tx store.Store, userID uint64) (*models.Balance, error) {
	balance := &models.Balance{
		UserID: userID,
		Amount: l.defaultAmount().Round(2),
	}
	if errCreate := tx.Balances().Create(ctx, balance); errCreate != nil {
		return nil, fmt.Errorf("ledger: open balance: %w", errCreate)
	}
	return balance, nil
}

// Get returns the current balance of userID.
func (l *Ledger) Get(ctx context.Context, tx store.Store, userID uint64) (*models.Balance, error) {
	return tx.Balances().Get(ctx, userID)
}

// Debit subtracts amount from the user's balance. The balance is locked for
// the rest of the transaction and left untouched when it cannot cover amount.
func (l *Ledger) Debit(ctx context.Context, tx store.Store, userID uint64, amount decimal.Decimal) (*models.Balance, error) {
	if amount.IsNegative() {
		return nil, market.Invalid("amount", "must not be negative")
	}
	balance, errGet := tx.Balances().GetForUpdate(ctx, userID)
	if errGet != nil {
		return nil, errGet
	}
	if balance.Amount.LessThan(amount) {
		return nil, &market.InsufficientFundsError{
			UserID:   userID,
			Balance:  balance.Amount,
			Required: amount,
		}
	}
	balance.Amount = balance.Amount.Sub(amount)
	if errSave := tx.Balances().Save(ctx, balance); errSave != nil {
		return nil, errSave
	}
	return balance, nil
}

// Credit adds a positive amount to the user's balance.
func (l *Ledger) Credit(ctx context.Context, tx store.Store, userID uint64, amount decimal.Decimal) (*models.Balance, error) {
	if !amount.IsPositive() {
		return nil, market.Invalid("amount", "must be positive")
	}
	balance, errGet := tx.Balances().GetForUpdate(ctx, userID)
	if errGet != nil {
		return nil, errGet
	}
	balance.Amount = balance.Amount.Add(amount)
	if errSave := tx.Balances().Save(ctx, balance); errSave != nil {
		return nil, errSave
	}
	return balance, nil
}
