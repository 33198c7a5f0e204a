package security

import (
	"testing"
	"time"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("expected hashed value")
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
	if _, errEmpty := HashPassword(""); errEmpty == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestUserToken_RoundTrip(t *testing.T) {
	token, expiresAt, err := IssueUserToken("secret", 7, true, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected expiry in the future, got %v", expiresAt)
	}
	claims, err := ParseUserToken("secret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 7 || !claims.IsAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseUserToken_Rejects(t *testing.T) {
	token, _, err := IssueUserToken("secret", 7, false, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, errParse := ParseUserToken("other", token); errParse == nil {
		t.Fatalf("expected wrong secret to fail")
	}

	expired, _, err := IssueUserToken("secret", 7, false, -time.Minute)
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	if _, errParse := ParseUserToken("secret", expired); errParse == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestGenerateRandomString(t *testing.T) {
	value, err := GenerateRandomString(16)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(value) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(value))
	}
}
