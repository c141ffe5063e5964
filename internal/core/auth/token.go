// Package auth issues and verifies session tokens and handles password
// hashing and policy.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

// DefaultTokenTTL is used when no lifetime is configured.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the payload carried by a session token.
type Claims struct {
	UserID string      `json:"userId"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Token is a freshly signed session token.
type Token struct {
	Value     string
	ExpiresAt time.Time
	ExpiresIn time.Duration
}

// TokenIssuer signs and verifies HS256 session tokens with a server-held secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns a TokenIssuer. A non-positive ttl falls back to
// DefaultTokenTTL.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("auth: token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for user.
func (t *TokenIssuer) Issue(user domain.User) (Token, error) {
	now := t.now().UTC()
	exp := now.Add(t.ttl)
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ExpiresAt: exp, ExpiresIn: t.ttl}, nil
}

// Verify checks signature, algorithm and expiry. It never fails loudly: any
// problem with the token yields ok == false.
func (t *TokenIssuer) Verify(raw string) (*Claims, bool) {
	if raw == "" {
		return nil, false
	}

	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tkn.Valid {
		return nil, false
	}
	if claims.UserID == "" {
		return nil, false
	}
	if _, ok := domain.ParseRole(string(claims.Role)); !ok {
		return nil, false
	}
	return claims, true
}
