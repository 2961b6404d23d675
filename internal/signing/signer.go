// Package signing mints the short-lived HS256 tokens that authenticate requests to the parsing API.
package signing

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the validity window of a freshly minted token.
const DefaultTTL = 120 * time.Second

// Claims is the payload carried by a signed token.
type Claims struct {
	Account string `json:"account"`
	jwt.RegisteredClaims
}

// Error indicates a token could not be constructed.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("signing error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("signing error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Signer mints tokens. The zero value uses the wall clock and random UUIDs.
type Signer struct {
	Now   func() time.Time
	NewID func() string
}

// Sign mints a token bound to account using the package default Signer.
func Sign(account string, secret []byte, ttl time.Duration) (string, error) {
	var s Signer
	return s.Sign(account, secret, ttl)
}

// Sign mints a new token for account, valid for ttl from now.
func (s *Signer) Sign(account string, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", &Error{Message: "secret is empty"}
	}
	if ttl < time.Second {
		return "", &Error{Message: fmt.Sprintf("ttl must be at least one second, got %v", ttl)}
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	newID := uuid.NewString
	if s.NewID != nil {
		newID = s.NewID
	}

	issuedAt := now().Truncate(time.Second)
	claims := &Claims{
		Account: account,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl.Truncate(time.Second))),
			ID:        newID(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", &Error{Message: "failed to sign token", Cause: err}
	}
	return signed, nil
}

// Parse verifies a token against secret and returns its claims.
func Parse(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}
