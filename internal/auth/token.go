package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStatus is the outcome of verifying a token.
type TokenStatus int

const (
	TokenMissing TokenStatus = iota
	TokenValid
	TokenInvalid
	TokenExpired
)

func (s TokenStatus) String() string {
	switch s {
	case TokenMissing:
		return "missing"
	case TokenValid:
		return "valid"
	case TokenInvalid:
		return "invalid"
	case TokenExpired:
		return "expired"
	default:
		return fmt.Sprintf("TokenStatus(%d)", int(s))
	}
}

// Verification is the result of Tokens.Verify. UserID is set only when Status is TokenValid.
type Verification struct {
	Status TokenStatus
	UserID string
}

type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 identity tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a signer. A zero ttl issues tokens without an expiry.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) Sign(userID string) (string, error) {
	now := t.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("Tokens.Sign: %w", err)
	}
	return signed, nil
}

// Verify never fails: every problem with the token is reported through the status.
func (t *Tokens) Verify(token string) Verification {
	if token == "" {
		return Verification{Status: TokenMissing}
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Verification{Status: TokenExpired}
	case err != nil, !parsed.Valid, claims.UserID == "":
		return Verification{Status: TokenInvalid}
	}
	return Verification{Status: TokenValid, UserID: claims.UserID}
}
