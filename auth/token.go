// Package auth binds HTTP callers to board identities with signed tokens.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"noteboard/domain"
	"noteboard/errors"
)

// CallerClaims is the payload of a caller token: the address the bearer
// acts as on the board.
type CallerClaims struct {
	Address string `json:"addr"`
	jwt.RegisteredClaims
}

// Authenticator issues and validates caller tokens (HS256).
type Authenticator struct {
	key []byte
	ttl time.Duration
}

func NewAuthenticator(key []byte, ttl time.Duration) Authenticator {
	return Authenticator{key: key, ttl: ttl}
}

// GenerateToken creates a signed token for the given board identity.
func (a Authenticator) GenerateToken(addr domain.Address) (string, error) {
	now := time.Now()
	claims := &CallerClaims{
		Address: addr.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "noteboard",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.key)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return signed, nil
}

// ValidateToken checks signature and expiry, returning the caller address.
func (a Authenticator) ValidateToken(tokenString string) (domain.Address, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CallerClaims{}, func(*jwt.Token) (interface{}, error) {
		return a.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.ZeroAddress, errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*CallerClaims)
	if !ok || !token.Valid {
		return domain.ZeroAddress, errors.ErrInvalidToken
	}
	addr, err := domain.ParseAddress(claims.Address)
	if err != nil {
		return domain.ZeroAddress, errors.ErrInvalidToken
	}
	return addr, nil
}
