// Package auth guards the admin endpoints with HS256 bearer tokens.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mediawatch/internal/handler/http/respond"
)

// RoleAdmin is the only role allowed past RequireAdmin.
const RoleAdmin = "admin"

type ctxKey struct{}

// Claims are the fields a valid token carries.
type Claims struct {
	Subject string
	Role    string
	Expires time.Time
}

// UserFromContext returns the subject stored by RequireAdmin.
func UserFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(ctxKey{}).(string)
	return sub, ok
}

// RequireAdmin rejects requests without a valid bearer token (401) and
// tokens whose role is not admin (403).
func RequireAdmin(secret []byte, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := Validate(r.Header.Get("Authorization"), secret, time.Now())
			if err != nil {
				recordAuth("unknown", "failure")
				logger.Warn("admin auth failed",
					slog.String("path", r.URL.Path),
					slog.String("reason", err.Error()))
				respond.SafeError(w, respond.NewAppError(http.StatusUnauthorized, "unauthorized", nil))
				return
			}
			if claims.Role != RoleAdmin {
				recordAuth(claims.Role, "forbidden")
				logger.Warn("admin access denied",
					slog.String("path", r.URL.Path),
					slog.String("role", claims.Role))
				respond.SafeError(w, respond.NewAppError(http.StatusForbidden, "forbidden", nil))
				return
			}
			recordAuth(claims.Role, "success")
			ctx := context.WithValue(r.Context(), ctxKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Validate parses an Authorization header value of the form "Bearer <jwt>".
func Validate(header string, secret []byte, now time.Time) (Claims, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return Claims{}, errors.New("missing bearer token")
	}
	tok, err := jwt.Parse(strings.TrimPrefix(header, prefix), func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !tok.Valid {
		return Claims{}, errors.New("invalid token")
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims")
	}
	// exp は必須
	exp, ok := mc["exp"].(float64)
	if !ok || int64(exp) < now.Unix() {
		return Claims{}, errors.New("token expired")
	}
	sub, ok := mc["sub"].(string)
	if !ok {
		return Claims{}, errors.New("invalid sub claim")
	}
	role, ok := mc["role"].(string)
	if !ok {
		return Claims{}, errors.New("invalid role claim")
	}
	return Claims{Subject: sub, Role: role, Expires: time.Unix(int64(exp), 0).UTC()}, nil
}
