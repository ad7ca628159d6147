package relay

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken    = errors.New("join token required")
	ErrSubjectMismatch = errors.New("token subject does not match asserted identity")
)

// JoinAuth verifies the signed credential carried by join events against the
// identity the client asserts. It shares the HMAC secret with the HTTP API's
// bearer tokens, closing the trust gap of accepting a bare identifier.
type JoinAuth struct {
	secret []byte
}

func NewJoinAuth(secret string) *JoinAuth {
	return &JoinAuth{secret: []byte(secret)}
}

// Verify parses the token and checks that its subject equals the asserted
// id. An empty asserted id skips the subject check, which operator joins
// without an explicit admin id rely on.
func (a *JoinAuth) Verify(token, assertedID string) error {
	if token == "" {
		return ErrMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return a.secret, nil
	})
	if err != nil {
		return fmt.Errorf("parse join token: %w", err)
	}
	if !parsed.Valid {
		return errors.New("invalid join token")
	}

	if assertedID != "" && claims.Subject != assertedID {
		return ErrSubjectMismatch
	}

	return nil
}
