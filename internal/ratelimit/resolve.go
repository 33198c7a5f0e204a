package ratelimit

import (
	"strconv"
	"strings"
)

// ResolvePurchase returns the purchase limit for userID.
func ResolvePurchase(cfg SettingsConfig, userID uint64) Decision {
	if userID == 0 || cfg.PurchaseLimit <= 0 {
		return Decision{}
	}
	return Decision{
		Limit:   cfg.PurchaseLimit,
		Window:  DefaultWindow,
		Scope:   ScopePurchase,
		Subject: strconv.FormatUint(userID, 10),
	}
}

// ResolveLogin returns the login limit for a client IP.
func ResolveLogin(cfg SettingsConfig, clientIP string) Decision {
	clientIP = strings.TrimSpace(clientIP)
	if clientIP == "" || cfg.LoginLimit <= 0 {
		return Decision{}
	}
	return Decision{
		Limit:   cfg.LoginLimit,
		Window:  DefaultWindow,
		Scope:   ScopeLogin,
		Subject: clientIP,
	}
}
