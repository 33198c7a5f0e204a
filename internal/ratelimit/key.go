package ratelimit

import (
	"fmt"
	"strings"
)

// KeyForDecision builds a limiter key for the resolved scope.
func KeyForDecision(decision Decision) string {
	subject := strings.TrimSpace(decision.Subject)
	if subject == "" || decision.Limit <= 0 {
		return ""
	}
	switch decision.Scope {
	case ScopePurchase:
		return fmt.Sprintf("purchase:u:%s", subject)
	case ScopeLogin:
		return fmt.Sprintf("login:ip:%s", subject)
	default:
		return ""
	}
}
