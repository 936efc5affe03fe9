package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vlasenko/contacts_api/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrStaleRefresh  = errors.New("stored refresh token mismatch")
	ErrAlreadyExists = errors.New("record already exists")
)

type UserRepo struct {
	DB *gorm.DB
}

// GetByEmail resolves a user by normalized (case-insensitive) email, the
// identity every token subject and cache key refers to.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("lower(email) = lower(?)", email).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	if user.Avatar == "" {
		user.Avatar = GravatarURL(user.Email)
	}
	if err := r.DB.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UpdateRefreshToken overwrites the stored refresh token. An empty token
// clears it, forcing re-login.
func (r *UserRepo) UpdateRefreshToken(ctx context.Context, email, token string) error {
	result := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("lower(email) = lower(?)", email).
		Update("refresh_token", token)
	if result.Error != nil {
		return fmt.Errorf("db error: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RotateRefreshToken replaces the stored refresh token only if the presented
// one still matches. The compare-and-swap is a single conditional UPDATE, so
// two concurrent refresh attempts cannot both observe the old token as valid.
// On mismatch the stored token is cleared and ErrStaleRefresh returned; the
// clear runs as its own statement so the sentinel cannot undo it.
func (r *UserRepo) RotateRefreshToken(ctx context.Context, email, presented, next string) error {
	result := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("lower(email) = lower(?) AND refresh_token = ?", email, presented).
		Update("refresh_token", next)
	if result.Error != nil {
		return fmt.Errorf("db error: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if err := r.DB.WithContext(ctx).Model(&models.User{}).
			Where("lower(email) = lower(?)", email).
			Update("refresh_token", "").Error; err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return ErrStaleRefresh
	}
	return nil
}

func (r *UserRepo) ConfirmEmail(ctx context.Context, email string) error {
	result := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("lower(email) = lower(?)", email).
		Update("confirmed", true)
	if result.Error != nil {
		return fmt.Errorf("db error: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	result := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("lower(email) = lower(?)", email).
		Updates(map[string]any{"password_hash": passwordHash, "refresh_token": ""})
	if result.Error != nil {
		return fmt.Errorf("db error: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) UpdateAvatar(ctx context.Context, email, url string) (*models.User, error) {
	result := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("lower(email) = lower(?)", email).
		Update("avatar", url)
	if result.Error != nil {
		return nil, fmt.Errorf("db error: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByEmail(ctx, email)
}

func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:])
}
