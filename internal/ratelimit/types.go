package ratelimit

import (
	"context"
	"time"
)

// DefaultWindow is the fixed window length used by marketplace limits.
const DefaultWindow = time.Minute

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides fixed-window rate limit checks.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error)
}

// Scope indicates which action the rate limit applies to.
type Scope int

const (
	ScopeNone Scope = iota
	ScopePurchase
	ScopeLogin
)

// Decision describes the resolved limit for one caller.
type Decision struct {
	Limit   int
	Window  time.Duration
	Scope   Scope
	Subject string // user ID or client IP
}
