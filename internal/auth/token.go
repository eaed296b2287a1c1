// Package auth provides session token issuance/verification and password
// hashing.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parley-ai/chat-broker/internal/apperr"
)

// Issuer mints and verifies HMAC-signed session tokens. Tokens carry the
// user ID in the subject claim and are otherwise stateless: nothing is
// persisted server-side.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates a token issuer. A zero ttl issues tokens without an
// expiry claim.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token binding the given user ID.
func (i *Issuer) Issue(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(i.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}
	return signed, nil
}

// Verify parses and validates a token and returns the bound user ID. It does
// not check that the user still exists; that is the middleware's job.
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperr.Wrap(apperr.KindUnauthenticated, "invalid token", err)
	}
	if claims.Subject == "" {
		return "", apperr.E(apperr.KindUnauthenticated, "invalid token")
	}
	return claims.Subject, nil
}
