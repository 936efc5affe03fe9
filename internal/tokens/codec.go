package tokens

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpired      = errors.New("token expired")
	ErrBadSignature = errors.New("token signature invalid")
	ErrMalformed    = errors.New("token malformed")
	ErrWrongScope   = errors.New("invalid scope for token")
	ErrWrongPurpose = errors.New("invalid purpose for token")
)

// Codec signs and verifies claim sets with a secret fixed at construction.
// The signing algorithm is pinned to HS256 server-side and is never taken
// from the token header.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

func (c *Codec) Encode(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (c *Codec) Decode(raw string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected sign method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !tkn.Valid {
		return nil, ErrMalformed
	}
	return &claims, nil
}

// DecodeScoped decodes raw and requires an exact scope match.
func (c *Codec) DecodeScoped(raw, scope string) (*Claims, error) {
	claims, err := c.Decode(raw)
	if err != nil {
		return nil, err
	}
	if claims.Scope != scope {
		return nil, ErrWrongScope
	}
	return claims, nil
}

// DecodeAction decodes raw and requires an exact purpose match.
func (c *Codec) DecodeAction(raw, purpose string) (*Claims, error) {
	claims, err := c.Decode(raw)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

// Expiry is checked before signature/structure so an expired token never
// surfaces as malformed.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	default:
		return ErrMalformed
	}
}
