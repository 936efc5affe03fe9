package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour

	EmailConfirmDays  = 7
	PasswordResetDays = 1
)

// Issuer builds the concrete token kinds on top of the codec. The subject of
// every token is the user's normalized email address.
type Issuer struct {
	Codec *Codec
	Now   func() time.Time
}

func NewIssuer(codec *Codec) *Issuer {
	return &Issuer{Codec: codec, Now: time.Now}
}

func (i *Issuer) Access(email string) (string, error) {
	return i.issue(email, ScopeAccess, "", AccessTTL)
}

func (i *Issuer) Refresh(email string) (string, error) {
	return i.issue(email, ScopeRefresh, "", RefreshTTL)
}

func (i *Issuer) Action(email, purpose string, days int) (string, error) {
	return i.issue(email, "", purpose, time.Duration(days)*24*time.Hour)
}

func (i *Issuer) issue(email, scope, purpose string, ttl time.Duration) (string, error) {
	now := i.Now()
	claims := Claims{
		Scope:   scope,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return i.Codec.Encode(claims)
}
