package auth

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// MinSecretLength is the shortest JWT secret accepted at startup.
const MinSecretLength = 32

var weakSecrets = []string{
	"secret",
	"password",
	"changeme",
	"jwt-secret",
	"your-secret-key",
	"default",
	"test",
}

// ValidateSecret rejects empty, short and well-known JWT secrets.
func ValidateSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if len(secret) < MinSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters (got %d)", MinSecretLength, len(secret))
	}
	lower := strings.ToLower(secret)
	if lo.ContainsBy(weakSecrets, func(w string) bool { return strings.HasPrefix(lower, w) }) {
		return fmt.Errorf("JWT_SECRET starts with a well-known weak value")
	}
	if len(lo.Uniq([]rune(secret))) < 8 {
		return fmt.Errorf("JWT_SECRET has too few distinct characters")
	}
	return nil
}
