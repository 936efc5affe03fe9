package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vlasenko/contacts_api/internal/cache"
	"github.com/vlasenko/contacts_api/internal/hash"
	"github.com/vlasenko/contacts_api/internal/logging"
	"github.com/vlasenko/contacts_api/internal/mail"
	"github.com/vlasenko/contacts_api/internal/models"
	"github.com/vlasenko/contacts_api/internal/repository"
	"github.com/vlasenko/contacts_api/internal/tokens"
)

// UserStore is the narrow slice of the persistent store the auth workflows
// need. *repository.UserRepo satisfies it.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRefreshToken(ctx context.Context, email, token string) error
	RotateRefreshToken(ctx context.Context, email, presented, next string) error
	ConfirmEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	UpdateAvatar(ctx context.Context, email, url string) (*models.User, error)
}

type AuthService struct {
	Users  UserStore
	Cache  cache.SessionCache
	Issuer *tokens.Issuer
	Mail   mail.Sender

	// MailTimeout bounds the fire-and-forget mail dispatch.
	MailTimeout time.Duration
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Signup creates an unconfirmed account and dispatches the verification
// mail without blocking the caller.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		l.Warn("signup_failed", "status", 409, "reason", "account_exists")
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.dispatchMail(ctx, user, s.Mail.SendVerification)

	l.Info("signup_success", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials and returns a fresh token pair. The new
// refresh token overwrites the stored one: at most one refresh token is live
// per user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("login_failed", "status", 401, "reason", "unknown_email")
		return nil, ErrInvalidEmail
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.Confirmed {
		l.Warn("login_failed", "status", 401, "reason", "not_confirmed")
		return nil, ErrNotConfirmed
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "bad_password")
		return nil, ErrInvalidPassword
	}

	pair, err := s.issuePair(user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.Users.UpdateRefreshToken(ctx, user.Email, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	s.invalidate(ctx, user.Email)

	l.Info("login_success", "user_id", user.ID)
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. A structurally
// valid token that does not match the stored one is treated as theft or
// staleness: the stored token is cleared so the legitimate holder has to log
// in again.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Issuer.Codec.DecodeScoped(refreshToken, tokens.ScopeRefresh)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "decode", "error", err)
		return nil, ErrInvalidRefreshToken
	}
	email := claims.Subject

	if _, err := s.Users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "unknown_subject")
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	pair, err := s.issuePair(email)
	if err != nil {
		return nil, err
	}

	err = s.Users.RotateRefreshToken(ctx, email, refreshToken, pair.RefreshToken)
	if errors.Is(err, repository.ErrStaleRefresh) {
		s.invalidate(ctx, email)
		l.Warn("refresh_failed", "status", 401, "reason", "stale_token")
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	s.invalidate(ctx, email)

	l.Info("refresh_success")
	return pair, nil
}

// ConfirmEmail redeems an email-confirmation action token. Returns true if
// the email was already confirmed (idempotent, no state change).
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	l := logging.FromContext(ctx).With("svc", "auth.confirm_email")

	claims, err := s.Issuer.Codec.DecodeAction(token, tokens.PurposeEmailConfirm)
	if err != nil {
		l.Warn("confirm_failed", "status", 400, "reason", "decode", "error", err)
		return false, ErrVerification
	}

	user, err := s.Users.GetByEmail(ctx, claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("confirm_failed", "status", 400, "reason", "unknown_subject")
		return false, ErrVerification
	}
	if err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}
	if user.Confirmed {
		return true, nil
	}

	if err := s.Users.ConfirmEmail(ctx, user.Email); err != nil {
		return false, fmt.Errorf("confirm email: %w", err)
	}
	s.invalidate(ctx, user.Email)

	l.Info("confirm_success", "user_id", user.ID)
	return false, nil
}

// RequestEmailVerification re-sends the confirmation mail. Returns true if
// the email is already confirmed.
func (s *AuthService) RequestEmailVerification(ctx context.Context, email string) (bool, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return false, ErrVerification
	}
	if err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}
	if user.Confirmed {
		return true, nil
	}

	s.dispatchMail(ctx, user, s.Mail.SendVerification)
	return false, nil
}

// RequestPasswordReset dispatches the reset mail. It mutates nothing.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_request")

	user, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("reset_request_failed", "status", 409, "reason", "unknown_email")
		return ErrAccountAbsent
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !user.Confirmed {
		l.Warn("reset_request_failed", "status", 401, "reason", "not_confirmed")
		return ErrNotConfirmed
	}

	s.dispatchMail(ctx, user, s.Mail.SendPasswordReset)
	return nil
}

// ResetPassword redeems a password-reset action token and overwrites the
// stored password hash. The stored refresh token is cleared along with it.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	claims, err := s.Issuer.Codec.DecodeAction(token, tokens.PurposePasswordReset)
	if err != nil {
		l.Warn("reset_failed", "status", 406, "reason", "decode", "error", err)
		return ErrResetTarget
	}

	user, err := s.Users.GetByEmail(ctx, claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("reset_failed", "status", 406, "reason", "unknown_subject")
		return ErrResetTarget
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Users.UpdatePassword(ctx, user.Email, pwHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.invalidate(ctx, user.Email)

	l.Info("reset_success", "user_id", user.ID)
	return nil
}

// CurrentUser resolves the identity behind an access token. The session
// cache short-circuits the store lookup; a cold lookup writes through with
// the cache TTL. Cache failures degrade to the store, never to a rejection.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.current_user")

	claims, err := s.Issuer.Codec.DecodeScoped(accessToken, tokens.ScopeAccess)
	if err != nil {
		l.Warn("auth_failed", "status", 401, "reason", "decode", "error", err)
		return nil, ErrCredentials
	}
	email := claims.Subject
	if email == "" {
		return nil, ErrCredentials
	}

	if user, err := s.Cache.Get(ctx, email); err == nil {
		return user, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		l.Warn("cache_degraded", "error", err)
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("auth_failed", "status", 401, "reason", "unknown_subject")
		return nil, ErrCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.Cache.Put(ctx, email, user); err != nil {
		l.Warn("cache_degraded", "error", err)
	}
	return user, nil
}

// UpdateAvatar overwrites the avatar reference and drops the cached session
// snapshot so the change is visible immediately.
func (s *AuthService) UpdateAvatar(ctx context.Context, email, url string) (*models.User, error) {
	user, err := s.Users.UpdateAvatar(ctx, email, url)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("update avatar: %w", err)
	}
	s.invalidate(ctx, email)
	return user, nil
}

func (s *AuthService) issuePair(email string) (*TokenPair, error) {
	access, err := s.Issuer.Access(email)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.Issuer.Refresh(email)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// invalidate drops the cached snapshot after a user mutation. The TTL caps
// staleness if this fails; the failure itself is only logged.
func (s *AuthService) invalidate(ctx context.Context, email string) {
	if err := s.Cache.Invalidate(ctx, email); err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_failed", "error", err)
	}
}

func (s *AuthService) dispatchMail(ctx context.Context, user *models.User, send func(context.Context, string, string) error) {
	l := logging.FromContext(ctx)
	timeout := s.MailTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	email, username := user.Email, user.Username
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := send(sendCtx, email, username); err != nil {
			l.Error("mail_send_failed", "email", email, "error", err)
		}
	}()
}
