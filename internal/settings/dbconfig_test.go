package settings

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultBalanceAmount_Fallback(t *testing.T) {
	StoreDBConfig(nil)
	if got := DefaultBalanceAmount(); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected 1000, got %s", got)
	}
}

func TestDefaultBalanceAmount_FromSetting(t *testing.T) {
	t.Cleanup(func() { StoreDBConfig(nil) })

	StoreDBConfig(map[string]json.RawMessage{DefaultBalanceKey: json.RawMessage(`"250.50"`)})
	if got := DefaultBalanceAmount(); !got.Equal(decimal.RequireFromString("250.50")) {
		t.Fatalf("expected 250.50, got %s", got)
	}

	SetDBConfigValue(DefaultBalanceKey, json.RawMessage(`75`))
	if got := DefaultBalanceAmount(); !got.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected 75, got %s", got)
	}
}

func TestDefaultBalanceAmount_RejectsNegative(t *testing.T) {
	t.Cleanup(func() { StoreDBConfig(nil) })

	StoreDBConfig(map[string]json.RawMessage{DefaultBalanceKey: json.RawMessage(`-5`)})
	if got := DefaultBalanceAmount(); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected fallback 1000, got %s", got)
	}
}
