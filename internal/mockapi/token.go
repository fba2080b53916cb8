package mockapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nurse24/platform/internal/account"
)

const tokenTTL = 24 * time.Hour

// claims carries the account identity inside the mock's bearer tokens.
type claims struct {
	Role account.Role `json:"role"`
	jwt.RegisteredClaims
}

// mintToken issues an HS256 token for the account. The token is opaque
// to the client; the mock only reads the role claim back out of it.
func (s *Server) mintToken(acc *account.Account, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: acc.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("mockapi: sign token: %w", err)
	}
	return signed, nil
}

// parseToken validates a bearer token and returns its claims.
func (s *Server) parseToken(raw string) (*claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("mockapi: unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return nil, err
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !c.Role.Valid() {
		return nil, errors.New("mockapi: malformed claims")
	}
	return c, nil
}
