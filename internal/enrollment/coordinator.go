// Package enrollment implements course purchase: balance debit, subscription
// and group assignment committed as one unit.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/router-for-me/CourseMarket/internal/groups"
	"github.com/router-for-me/CourseMarket/internal/ledger"
	"github.com/router-for-me/CourseMarket/internal/market"
	"github.com/router-for-me/CourseMarket/internal/models"
	"github.com/router-for-me/CourseMarket/internal/store"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Confirmation describes a committed purchase.
type Confirmation struct {
	SubscriptionID uint64          `json:"subscription_id"`
	UserID         uint64          `json:"user_id"`
	CourseID       uint64          `json:"course_id"`
	GroupID        uint64          `json:"group_id"`
	GroupNumber    int             `json:"group_number"`
	Charged        decimal.Decimal `json:"charged"`
	Balance        decimal.Decimal `json:"balance"`
	EnrolledAt     time.Time       `json:"enrolled_at"`
}

// Coordinator runs purchases against a Store.
type Coordinator struct {
	store     store.Store
	ledger    *ledger.Ledger
	allocator *groups.Allocator
	now       func() time.Time
}

// NewCoordinator constructs a Coordinator.
func NewCoordinator(st store.Store, l *ledger.Ledger, a *groups.Allocator) *Coordinator {
	return &Coordinator{
		store:     st,
		ledger:    l,
		allocator: a,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Purchase enrolls userID into courseID, charging the course price. Either the
// debit, the subscription and the group enrollment are all committed, or none
// of them is.
func (c *Coordinator) Purchase(ctx context.Context, userID, courseID uint64) (*Confirmation, error) {
	if c == nil || c.store == nil {
		return nil, fmt.Errorf("enrollment: coordinator not initialized")
	}

	var confirmation *Confirmation
	errTx := c.store.Transaction(ctx, func(tx store.Store) error {
		if _, errUser := tx.Users().Get(ctx, userID); errUser != nil {
			return errUser
		}
		course, errCourse := tx.Courses().Get(ctx, courseID)
		if errCourse != nil {
			return errCourse
		}

		enrolled, errExists := tx.Subscriptions().Exists(ctx, userID, courseID)
		if errExists != nil {
			return errExists
		}
		if enrolled {
			return market.ErrAlreadyEnrolled
		}

		balance, errDebit := c.ledger.Debit(ctx, tx, userID, course.Price)
		if errDebit != nil {
			return errDebit
		}

		sub := &models.Subscription{
			StudentID:  userID,
			CourseID:   courseID,
			EnrolledAt: c.now(),
		}
		if errSub := tx.Subscriptions().Create(ctx, sub); errSub != nil {
			return errSub
		}

		group, errAssign := c.allocator.Assign(ctx, tx, courseID, userID)
		if errAssign != nil {
			return errAssign
		}

		confirmation = &Confirmation{
			SubscriptionID: sub.ID,
			UserID:         userID,
			CourseID:       courseID,
			GroupID:        group.ID,
			GroupNumber:    group.GroupNumber,
			Charged:        course.Price,
			Balance:        balance.Amount,
			EnrolledAt:     sub.EnrolledAt,
		}
		return nil
	})

	fields := log.Fields{"user_id": userID, "course_id": courseID}
	if errTx != nil {
		err := market.WrapTx("purchase", errTx)
		var txErr *market.TransactionFailedError
		if errors.As(err, &txErr) {
			log.WithFields(fields).WithError(errTx).Error("enrollment: purchase transaction failed")
		} else {
			log.WithFields(fields).WithError(err).Info("enrollment: purchase rejected")
		}
		return nil, err
	}

	fields["group_number"] = confirmation.GroupNumber
	fields["charged"] = confirmation.Charged.StringFixed(2)
	log.WithFields(fields).Info("enrollment: purchase committed")
	return confirmation, nil
}
