// Package auth verifies the signed identity tokens presented at connection
// time. Tokens are issued by the identity service; this package only
// validates them and extracts the identity they assert.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/flowcanvas/backend/internal/model"
)

// Claims is the payload carried by a collaboration token.
type Claims struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	jwt.RegisteredClaims
}

// Verifier validates HMAC-signed identity tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier using the given shared secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a raw token and returns the identity it
// asserts. It returns model.ErrInvalidToken for missing, malformed,
// mis-signed, or expired tokens.
func (v *Verifier) Verify(rawToken string) (model.Identity, error) {
	if rawToken == "" {
		return model.Identity{}, model.ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(rawToken, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return model.Identity{}, model.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" || claims.Username == "" {
		return model.Identity{}, model.ErrInvalidToken
	}

	ident := model.Identity{
		UserID:      claims.UserID,
		Username:    claims.Username,
		DisplayName: claims.DisplayName,
	}
	if ident.DisplayName == "" {
		ident.DisplayName = ident.Username
	}
	return ident, nil
}

// Issue signs a token for the given identity with the given lifetime.
// Used by tests and local tooling; production tokens come from the
// identity service.
func (v *Verifier) Issue(ident model.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      ident.UserID,
		Username:    ident.Username,
		DisplayName: ident.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
