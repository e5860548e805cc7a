// Package token signs and verifies the opaque credentials issued to
// clients. A token encodes the subject (user id) and an access label;
// validity against the stored token list is the caller's concern.
package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token cannot be parsed or its
// signature does not verify.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the registered claims plus the access label.
type Claims struct {
	jwt.RegisteredClaims
	Access string `json:"access"`
}

// Codec issues and verifies HS256-signed tokens with a process-wide
// secret. Tokens carry no expiry; they stay valid until the owning user
// record drops them.
type Codec struct {
	secret []byte
}

// NewCodec constructs a Codec signing with the given secret.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Issue produces a signed token string for the subject and access label.
func (c *Codec) Issue(subject, access string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: subject,
		},
		Access: access,
	})

	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and verifies a token string, returning the encoded
// subject and access label. Any parse or signature failure yields
// ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (subject, access string, err error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !t.Valid {
		return "", "", ErrInvalidToken
	}

	return claims.Subject, claims.Access, nil
}
