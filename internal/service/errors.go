package service

import "errors"

// Authentication outcomes. Handlers translate these to HTTP statuses; the
// caller-visible message stays generic while the precise cause is logged.
var (
	ErrEmailTaken          = errors.New("account already exists")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrNotConfirmed        = errors.New("email not confirmed")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrVerification        = errors.New("verification error")
	ErrCredentials         = errors.New("could not validate credentials")
	ErrAccountAbsent       = errors.New("account is absent")
	// ErrResetTarget covers a reset token whose subject cannot be resolved,
	// or a token of the wrong purpose presented for reset.
	ErrResetTarget = errors.New("invalid email for password reset")
)
