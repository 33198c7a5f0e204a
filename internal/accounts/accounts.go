// Package accounts creates users together with their opening balance.
package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/router-for-me/CourseMarket/internal/ledger"
	"github.com/router-for-me/CourseMarket/internal/market"
	"github.com/router-for-me/CourseMarket/internal/models"
	"github.com/router-for-me/CourseMarket/internal/security"
	"github.com/router-for-me/CourseMarket/internal/store"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ErrInvalidCredentials is returned by Authenticate for unknown users, wrong
// passwords and disabled accounts alike.
var ErrInvalidCredentials = errors.New("accounts: invalid credentials")

// NewUser holds the fields of a user to create.
type NewUser struct {
	Email     string `json:"email" validate:"required,email,max=250"`
	Username  string `json:"username" validate:"max=150"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	IsAdmin   bool   `json:"is_admin"`
}

// Service implements user account use cases.
type Service struct {
	store  store.Store
	ledger *ledger.Ledger
}

// NewService constructs a Service.
func NewService(st store.Store, l *ledger.Ledger) *Service {
	return &Service{store: st, ledger: l}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a user and opens their balance in one transaction.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	in.Email = NormalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if errValidate := market.ValidateStruct(in); errValidate != nil {
		return nil, errValidate
	}
	email := in.Email
	username := in.Username
	if username == "" {
		username = email
	}

	hash, errHash := security.HashPassword(in.Password)
	if errHash != nil {
		return nil, errHash
	}

	user := &models.User{
		Email:     email,
		Username:  username,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  hash,
		IsAdmin:   in.IsAdmin,
		Active:    true,
	}
	errTx := s.store.Transaction(ctx, func(tx store.Store) error {
		if errCreate := tx.Users().Create(ctx, user); errCreate != nil {
			return errCreate
		}
		balance, errOpen := s.ledger.Open(ctx, tx, user.ID)
		if errOpen != nil {
			return errOpen
		}
		user.Balance = balance
		return nil
	})
	if errTx != nil {
		return nil, market.WrapTx("create user", errTx)
	}
	log.WithFields(log.Fields{"user_id": user.ID, "is_admin": user.IsAdmin}).Info("accounts: user created")
	return user, nil
}

// Authenticate returns the active user matching email and password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, errFind := s.store.Users().GetByEmail(ctx, NormalizeEmail(email))
	if errFind != nil {
		if errors.Is(errFind, market.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errFind
	}
	if !user.Active || !security.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Profile returns a user with their balance loaded.
func (s *Service) Profile(ctx context.Context, userID uint64) (*models.User, error) {
	user, errGet := s.store.Users().Get(ctx, userID)
	if errGet != nil {
		return nil, errGet
	}
	balance, errBalance := s.ledger.Get(ctx, s.store, userID)
	if errBalance != nil {
		return nil, errBalance
	}
	user.Balance = balance
	return user, nil
}

// CreditBalance tops up a user's balance.
func (s *Service) CreditBalance(ctx context.Context, userID uint64, amount decimal.Decimal) (*models.Balance, error) {
	var balance *models.Balance
	errTx := s.store.Transaction(ctx, func(tx store.Store) error {
		if _, errUser := tx.Users().Get(ctx, userID); errUser != nil {
			return errUser
		}
		updated, errCredit := s.ledger.Credit(ctx, tx, userID, amount)
		if errCredit != nil {
			return errCredit
		}
		balance = updated
		return nil
	})
	if errTx != nil {
		return nil, market.WrapTx("credit balance", errTx)
	}
	log.WithFields(log.Fields{"user_id": userID, "amount": amount.StringFixed(2)}).Info("accounts: balance credited")
	return balance, nil
}
