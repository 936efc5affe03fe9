package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vlasenko/contacts_api/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Contact{}))
	return db
}

func TestUserRepo_GetByEmail_CaseInsensitive(t *testing.T) {
	t.Parallel()

	r := &UserRepo{DB: initTestDB(t)}
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.User{Username: "Roy", Email: "RoyBebru@gmail.com", PasswordHash: "h"}))

	user, err := r.GetByEmail(ctx, "roybebru@GMAIL.com")
	require.NoError(t, err)
	assert.Equal(t, "RoyBebru@gmail.com", user.Email)

	_, err = r.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_Create_DerivesGravatar(t *testing.T) {
	t.Parallel()

	r := &UserRepo{DB: initTestDB(t)}
	ctx := context.Background()

	user := &models.User{Username: "Roy", Email: "roybebru@gmail.com", PasswordHash: "h"}
	require.NoError(t, r.Create(ctx, user))
	assert.Equal(t, GravatarURL("roybebru@gmail.com"), user.Avatar)

	withAvatar := &models.User{Username: "Ann", Email: "ann@example.com", PasswordHash: "h", Avatar: "https://example.com/a.png"}
	require.NoError(t, r.Create(ctx, withAvatar))
	assert.Equal(t, "https://example.com/a.png", withAvatar.Avatar)
}

func TestUserRepo_RotateRefreshToken(t *testing.T) {
	t.Parallel()

	r := &UserRepo{DB: initTestDB(t)}
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.User{Username: "Roy", Email: "roy@example.com", PasswordHash: "h"}))
	require.NoError(t, r.UpdateRefreshToken(ctx, "roy@example.com", "current"))

	// Matching token rotates.
	require.NoError(t, r.RotateRefreshToken(ctx, "roy@example.com", "current", "next"))
	user, err := r.GetByEmail(ctx, "roy@example.com")
	require.NoError(t, err)
	assert.Equal(t, "next", user.RefreshToken)

	// Mismatch clears the stored token entirely.
	err = r.RotateRefreshToken(ctx, "roy@example.com", "current", "newer")
	assert.ErrorIs(t, err, ErrStaleRefresh)

	user, err = r.GetByEmail(ctx, "roy@example.com")
	require.NoError(t, err)
	assert.Empty(t, user.RefreshToken)

	// After the clear, even the token that was valid before it is dead.
	err = r.RotateRefreshToken(ctx, "roy@example.com", "next", "latest")
	assert.ErrorIs(t, err, ErrStaleRefresh)
}

func TestUserRepo_ConfirmAndPassword(t *testing.T) {
	t.Parallel()

	r := &UserRepo{DB: initTestDB(t)}
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.User{Username: "Roy", Email: "roy@example.com", PasswordHash: "old"}))
	require.NoError(t, r.UpdateRefreshToken(ctx, "roy@example.com", "live"))

	require.NoError(t, r.ConfirmEmail(ctx, "ROY@example.com"))
	user, err := r.GetByEmail(ctx, "roy@example.com")
	require.NoError(t, err)
	assert.True(t, user.Confirmed)

	require.NoError(t, r.UpdatePassword(ctx, "roy@example.com", "new"))
	user, err = r.GetByEmail(ctx, "roy@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new", user.PasswordHash)
	// Password change revokes the live refresh token.
	assert.Empty(t, user.RefreshToken)

	assert.ErrorIs(t, r.ConfirmEmail(ctx, "ghost@example.com"), ErrNotFound)
	assert.ErrorIs(t, r.UpdatePassword(ctx, "ghost@example.com", "x"), ErrNotFound)
}

func TestUserRepo_UpdateAvatar(t *testing.T) {
	t.Parallel()

	r := &UserRepo{DB: initTestDB(t)}
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.User{Username: "Roy", Email: "roy@example.com", PasswordHash: "h"}))

	user, err := r.UpdateAvatar(ctx, "roy@example.com", "https://example.com/new.png")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/new.png", user.Avatar)

	_, err = r.UpdateAvatar(ctx, "ghost@example.com", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}
