package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/router-for-me/CourseMarket/internal/market"
	"github.com/router-for-me/CourseMarket/internal/models"
	"github.com/router-for-me/CourseMarket/internal/store"
	"github.com/shopspring/decimal"
)

var _ store.Store = (*Store)(nil)

func TestStore_TransactionRestoresSnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()

	user := &models.User{Email: "a@example.com", Username: "a"}
	if err := s.Users().Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.Balances().Create(ctx, &models.Balance{UserID: user.ID, Amount: decimal.NewFromInt(10)}); err != nil {
		t.Fatalf("create balance: %v", err)
	}

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx store.Store) error {
		balance, errGet := tx.Balances().GetForUpdate(ctx, user.ID)
		if errGet != nil {
			return errGet
		}
		balance.Amount = decimal.NewFromInt(3)
		if errSave := tx.Balances().Save(ctx, balance); errSave != nil {
			return errSave
		}
		return tx.Transaction(ctx, func(inner store.Store) error {
			if errCreate := inner.Courses().Create(ctx, &models.Course{Title: "Go"}); errCreate != nil {
				return errCreate
			}
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	balance, err := s.Balances().Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if !balance.Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected balance 10 after rollback, got %s", balance.Amount)
	}
	if rows, _ := s.Courses().List(ctx); len(rows) != 0 {
		t.Fatalf("expected no courses after rollback, got %d", len(rows))
	}
}

func TestStore_RejectsNegativeBalanceAndDuplicates(t *testing.T) {
	s := New()
	ctx := context.Background()

	user := &models.User{Email: "a@example.com"}
	if err := s.Users().Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.Users().Create(ctx, &models.User{Email: "a@example.com"}); !errors.Is(err, market.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if err := s.Balances().Create(ctx, &models.Balance{UserID: user.ID, Amount: decimal.NewFromInt(-1)}); !errors.Is(err, market.ErrNegativeBalance) {
		t.Fatalf("expected ErrNegativeBalance, got %v", err)
	}

	course := &models.Course{Title: "Go"}
	if err := s.Courses().Create(ctx, course); err != nil {
		t.Fatalf("create course: %v", err)
	}
	sub := &models.Subscription{StudentID: user.ID, CourseID: course.ID}
	if err := s.Subscriptions().Create(ctx, sub); err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if err := s.Subscriptions().Create(ctx, &models.Subscription{StudentID: user.ID, CourseID: course.ID}); !errors.Is(err, market.ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}
}

func TestStore_ListAvailable(t *testing.T) {
	s := New()
	ctx := context.Background()

	viewer := &models.User{Email: "v@example.com"}
	_ = s.Users().Create(ctx, viewer)
	a := &models.Course{Title: "A", IsActive: true}
	b := &models.Course{Title: "B"}
	c := &models.Course{Title: "C"}
	for _, course := range []*models.Course{a, b, c} {
		_ = s.Courses().Create(ctx, course)
	}
	_ = s.Subscriptions().Create(ctx, &models.Subscription{StudentID: viewer.ID, CourseID: a.ID})
	_ = s.Subscriptions().Create(ctx, &models.Subscription{StudentID: viewer.ID, CourseID: b.ID})

	rows, err := s.Courses().ListAvailable(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != c.ID || rows[1].ID != a.ID {
		t.Fatalf("expected [C A], got %+v", rows)
	}
}

func TestStore_RollbackKeepsWritesMadeOutsideTransaction(t *testing.T) {
	s := New()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	boom := errors.New("boom")
	go func() {
		txDone <- s.Transaction(ctx, func(tx store.Store) error {
			if errCreate := tx.Courses().Create(ctx, &models.Course{Title: "Go"}); errCreate != nil {
				return errCreate
			}
			close(started)
			<-release
			return boom
		})
	}()
	<-started

	user := &models.User{Email: "outside@example.com"}
	createDone := make(chan error, 1)
	go func() {
		createDone <- s.Users().Create(ctx, user)
	}()
	close(release)

	if err := <-txDone; !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if err := <-createDone; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.Users().Get(ctx, user.ID); err != nil {
		t.Fatalf("expected user created outside the transaction to survive rollback, got %v", err)
	}
	if rows, _ := s.Courses().List(ctx); len(rows) != 0 {
		t.Fatalf("expected rolled back course to be gone, got %d", len(rows))
	}
}

func TestStore_SearchCourses(t *testing.T) {
	s := New()
	ctx := context.Background()
	golang := &models.Course{Title: "Intro to Go", Author: "Ann"}
	rust := &models.Course{Title: "Rust", Author: "Bob"}
	for _, course := range []*models.Course{golang, rust} {
		if err := s.Courses().Create(ctx, course); err != nil {
			t.Fatalf("create course: %v", err)
		}
	}
	rows, err := s.Courses().Search(ctx, "bOb")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != rust.ID {
		t.Fatalf("expected [Rust], got %+v", rows)
	}
}
