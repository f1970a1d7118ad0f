package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NewToken signs an HS256 token for sub with the given role, valid for ttl.
func NewToken(secret []byte, sub, role string, ttl time.Duration, now time.Time) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return tok.SignedString(secret)
}
