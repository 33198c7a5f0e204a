package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	errEmptySecret  = errors.New("security: empty jwt secret")
	errInvalidToken = errors.New("security: invalid token")
)

// UserClaims are the claims carried by a user bearer token.
type UserClaims struct {
	UserID  uint64 `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// IssueUserToken signs an HS256 token for userID valid for ttl.
func IssueUserToken(secret string, userID uint64, isAdmin bool, ttl time.Duration) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errEmptySecret
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	claims := &UserClaims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("security: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseUserToken validates a token and returns its claims.
func ParseUserToken(secret, tokenString string) (*UserClaims, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	if claims.UserID == 0 {
		return nil, errInvalidToken
	}
	return claims, nil
}
