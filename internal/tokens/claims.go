package tokens

import "github.com/golang-jwt/jwt/v5"

// Token scopes distinguishing bearer kinds. An access token presented where
// a refresh token is expected (or vice versa) is rejected outright.
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
)

// Action token purposes. A confirmation token cannot be redeemed against the
// password-reset endpoint and vice versa.
const (
	PurposeEmailConfirm  = "email_confirm"
	PurposePasswordReset = "password_reset"
)

type Claims struct {
	Scope   string `json:"scope,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}
