package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	dbutil "github.com/router-for-me/CourseMarket/internal/db"
	"github.com/router-for-me/CourseMarket/internal/market"
	"github.com/router-for-me/CourseMarket/internal/models"
	"github.com/shopspring/decimal"
)

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "store-test.db")
	conn, err := dbutil.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := dbutil.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return NewGormStore(conn)
}

func seedUser(t *testing.T, s Store, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Username: email, Password: "x", Active: true}
	if err := s.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func seedCourse(t *testing.T, s Store, title string, active bool) *models.Course {
	t.Helper()
	course := &models.Course{
		Author:    "author",
		Title:     title,
		StartDate: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		Price:     decimal.NewFromInt(100),
		IsActive:  active,
	}
	if err := s.Courses().Create(context.Background(), course); err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

func TestGormStore_DuplicateEmail(t *testing.T) {
	s := newTestGormStore(t)
	seedUser(t, s, "a@example.com")

	dup := &models.User{Email: "a@example.com", Username: "b", Password: "x"}
	if err := s.Users().Create(context.Background(), dup); !errors.Is(err, market.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGormStore_GetMissingIsNotFound(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	if _, err := s.Users().Get(ctx, 42); !errors.Is(err, market.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for user, got %v", err)
	}
	if _, err := s.Courses().Get(ctx, 42); !errors.Is(err, market.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for course, got %v", err)
	}
	if _, err := s.Balances().GetForUpdate(ctx, 42); !errors.Is(err, market.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for balance, got %v", err)
	}
}

func TestGormStore_BalanceRejectsNegative(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "a@example.com")

	balance := &models.Balance{UserID: user.ID, Amount: decimal.NewFromInt(5)}
	if err := s.Balances().Create(ctx, balance); err != nil {
		t.Fatalf("create balance: %v", err)
	}
	balance.Amount = decimal.NewFromInt(-1)
	if err := s.Balances().Save(ctx, balance); !errors.Is(err, market.ErrNegativeBalance) {
		t.Fatalf("expected ErrNegativeBalance, got %v", err)
	}
	stored, err := s.Balances().Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if !stored.Amount.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected stored amount 5, got %s", stored.Amount)
	}
}

func TestGormStore_TransactionRollsBack(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx Store) error {
		seedUser(t, tx, "rollback@example.com")
		// Nested calls join the outer transaction.
		return tx.Transaction(ctx, func(inner Store) error {
			seedCourse(t, inner, "Go", true)
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if count, _ := s.Users().Count(ctx); count != 0 {
		t.Fatalf("expected no users after rollback, got %d", count)
	}
	if courses, _ := s.Courses().List(ctx); len(courses) != 0 {
		t.Fatalf("expected no courses after rollback, got %d", len(courses))
	}
}

func TestGormStore_SubscriptionDuplicate(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "a@example.com")
	course := seedCourse(t, s, "Go", true)

	sub := &models.Subscription{StudentID: user.ID, CourseID: course.ID, EnrolledAt: time.Now().UTC()}
	if err := s.Subscriptions().Create(ctx, sub); err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	dup := &models.Subscription{StudentID: user.ID, CourseID: course.ID, EnrolledAt: time.Now().UTC()}
	if err := s.Subscriptions().Create(ctx, dup); !errors.Is(err, market.ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}
	exists, err := s.Subscriptions().Exists(ctx, user.ID, course.ID)
	if err != nil || !exists {
		t.Fatalf("expected subscription to exist, got %v (err=%v)", exists, err)
	}
}

func TestGormStore_ListAvailable(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()
	viewer := seedUser(t, s, "viewer@example.com")

	courseA := seedCourse(t, s, "A", true)
	courseB := seedCourse(t, s, "B", false)
	courseC := seedCourse(t, s, "C", false)

	for _, courseID := range []uint64{courseA.ID, courseB.ID} {
		sub := &models.Subscription{StudentID: viewer.ID, CourseID: courseID, EnrolledAt: time.Now().UTC()}
		if err := s.Subscriptions().Create(ctx, sub); err != nil {
			t.Fatalf("create subscription: %v", err)
		}
	}

	rows, err := s.Courses().ListAvailable(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	got := map[uint64]bool{}
	for _, row := range rows {
		got[row.ID] = true
	}
	if len(got) != 2 || !got[courseA.ID] || !got[courseC.ID] {
		t.Fatalf("expected courses A and C, got %+v", got)
	}
}

func TestGormStore_MemberCountsAndCascade(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()
	user := seedUser(t, s, "a@example.com")
	course := seedCourse(t, s, "Go", true)

	groups := []models.Group{
		{CourseID: course.ID, GroupNumber: 1},
		{CourseID: course.ID, GroupNumber: 2},
	}
	if err := s.Groups().CreateBatch(ctx, groups); err != nil {
		t.Fatalf("create groups: %v", err)
	}
	listed, err := s.Groups().ListByCourse(ctx, course.ID)
	if err != nil || len(listed) != 2 {
		t.Fatalf("expected 2 groups, got %d (err=%v)", len(listed), err)
	}
	if errCreate := s.Enrollments().Create(ctx, &models.GroupEnrollment{GroupID: listed[1].ID, StudentID: user.ID}); errCreate != nil {
		t.Fatalf("create enrollment: %v", errCreate)
	}
	if errCreate := s.Lessons().Create(ctx, &models.Lesson{CourseID: course.ID, Title: "Intro", Link: "https://example.com/1"}); errCreate != nil {
		t.Fatalf("create lesson: %v", errCreate)
	}

	counts, err := s.Groups().MemberCounts(ctx, course.ID)
	if err != nil {
		t.Fatalf("member counts: %v", err)
	}
	if counts[listed[0].ID] != 0 || counts[listed[1].ID] != 1 {
		t.Fatalf("unexpected member counts %+v", counts)
	}

	if errDelete := s.Transaction(ctx, func(tx Store) error {
		return tx.Courses().Delete(ctx, course.ID)
	}); errDelete != nil {
		t.Fatalf("delete course: %v", errDelete)
	}
	if _, errGet := s.Courses().Get(ctx, course.ID); !errors.Is(errGet, market.ErrNotFound) {
		t.Fatalf("expected course to be gone, got %v", errGet)
	}
	if n, _ := s.Lessons().CountByCourse(ctx, course.ID); n != 0 {
		t.Fatalf("expected lessons to be removed, got %d", n)
	}
	if rows, _ := s.Enrollments().ListByCourse(ctx, course.ID); len(rows) != 0 {
		t.Fatalf("expected enrollments to be removed, got %d", len(rows))
	}
	if errDelete := s.Courses().Delete(ctx, course.ID); !errors.Is(errDelete, market.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", errDelete)
	}
}

func TestGormStore_SearchCoursesIgnoresCase(t *testing.T) {
	s := newTestGormStore(t)
	golang := seedCourse(t, s, "Intro to Go", true)
	seedCourse(t, s, "Rust Basics", true)
	course := seedCourse(t, s, "Databases", false)
	course.Author = "Gopher Team"
	if err := s.Courses().Update(context.Background(), course); err != nil {
		t.Fatalf("update course: %v", err)
	}

	rows, err := s.Courses().Search(context.Background(), "GO")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != course.ID || rows[1].ID != golang.ID {
		t.Fatalf("expected [Databases, Intro to Go], got %+v", rows)
	}
	if rows, _ = s.Courses().Search(context.Background(), "python"); len(rows) != 0 {
		t.Fatalf("expected no match, got %d", len(rows))
	}
}
