package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single error Verify returns. Malformed, expired,
// tampered and future-dated tokens are deliberately indistinguishable to
// callers.
var ErrInvalidToken = errors.New("invalid session token")

// DefaultTTL matches the reference behavior: sessions live for 7 days.
const DefaultTTL = 7 * 24 * time.Hour

// Claims binds a token to one account for a bounded lifetime.
type Claims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies HS256-signed bearer tokens. The secret is
// process-wide and read-only after construction; tokens are opaque to every
// other component.
type Issuer struct {
	secret []byte
	name   string
	ttl    time.Duration
}

func NewIssuer(secret, name string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), name: name, ttl: ttl}
}

// Issue produces a signed token encoding the account identity, issuance
// instant and expiration.
func (i *Issuer) Issue(accountID, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		AccountID: accountID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature integrity and lifetime, returning the bound
// account identity. Any failure collapses to ErrInvalidToken.
func (i *Issuer) Verify(tokenStr string) (accountID, email string, err error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !time.Now().Before(claims.ExpiresAt.Time) {
		return "", "", ErrInvalidToken
	}
	// a token "issued" in the future is as bad as a tampered one
	if claims.IssuedAt != nil && claims.IssuedAt.After(time.Now().Add(time.Minute)) {
		return "", "", ErrInvalidToken
	}
	if claims.AccountID == "" {
		return "", "", ErrInvalidToken
	}
	return claims.AccountID, claims.Email, nil
}
