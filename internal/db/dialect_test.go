package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Fatalf("nil must not be a unique violation")
	}
	if !IsUniqueViolation(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)) {
		t.Fatalf("expected gorm.ErrDuplicatedKey to match")
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("expected postgres 23505 to match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation must not match")
	}
	if !IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: subscriptions.student_id (2067)")) {
		t.Fatalf("expected sqlite message to match")
	}
	if IsUniqueViolation(errors.New("database is locked")) {
		t.Fatalf("unrelated error must not match")
	}
}
